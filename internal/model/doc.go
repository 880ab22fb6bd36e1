// Package model contains the shared interfaces and data structures.
//
// The interfaces are the capabilities a probe needs from the outside
// world (resolving names, dialing, handshaking, speaking HTTP, and
// telling time). The data structures are the summaries each stage
// produces and the final [Report].
//
// This package should not contain logic, except for the small
// helpers that derive display strings from the data structures.
//
// The following list summarizes where things live:
//
// - logger.go: apex/log compatible logger;
//
// - netx.go: capability interfaces used by the pipeline;
//
// - report.go: per-stage summaries and the final report.
package model
