// Package render turns a report into human readable or JSON output.
package render

import (
	"time"

	"github.com/udoc-dev/udoc/internal/model"
)

// Renderer formats a report.
type Renderer interface {
	Render(report *model.Report) string
}

// New returns the JSON renderer when json is true and the pretty
// renderer otherwise.
func New(json bool, color bool) Renderer {
	if json {
		return &JSON{}
	}
	return &Pretty{Color: color}
}

// millis converts d to fractional milliseconds.
func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
