package model

// DebugLogger is what the network adapters need: they only trace at
// debug level.
type DebugLogger interface {
	Debug(msg string)
	Debugf(format string, v ...any)
}

// InfoLogger adds the info level used to narrate hops.
type InfoLogger interface {
	DebugLogger
	Info(msg string)
	Infof(format string, v ...any)
}

// Logger is the logger the pipeline and the CLI use. The apex/log
// *log.Logger implements it.
type Logger interface {
	InfoLogger
	Warn(msg string)
	Warnf(format string, v ...any)
}

// DiscardLogger drops every message.
var DiscardLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Info(string) {}
func (nopLogger) Infof(string, ...any) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Warnf(string, ...any) {}

// ValidLoggerOrDefault returns logger, or DiscardLogger when logger is nil.
func ValidLoggerOrDefault(logger Logger) Logger {
	if logger == nil {
		return DiscardLogger
	}
	return logger
}
