// Package logx contains the apex/log handler used by the udoc CLI.
package logx

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/udoc-dev/udoc/internal/model"
)

// Strings maps levels to the symbol printed before the message.
var Strings = [...]string{
	log.DebugLevel: "•",
	log.InfoLevel:  "•",
	log.WarnLevel:  "•",
	log.ErrorLevel: "⨯",
	log.FatalLevel: "⨯",
}

// Handler writes one line per log entry.
type Handler struct {
	mu      sync.Mutex
	Writer  io.Writer
	Padding int
	colors  [log.FatalLevel + 1]*color.Color
	bold    *color.Color
}

var _ log.Handler = &Handler{}

// NewHandler creates a handler writing to w. When w is an *os.File we write
// through go-colorable so that ANSI sequences also work on Windows consoles.
func NewHandler(w io.Writer, useColor bool) *Handler {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	h := &Handler{
		Writer:  w,
		Padding: 3,
		colors: [...]*color.Color{
			log.DebugLevel: color.New(color.FgWhite),
			log.InfoLevel:  color.New(color.FgBlue),
			log.WarnLevel:  color.New(color.FgYellow),
			log.ErrorLevel: color.New(color.FgRed),
			log.FatalLevel: color.New(color.FgRed),
		},
		bold: color.New(color.Bold),
	}
	for _, c := range append(h.colors[:], h.bold) {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return h
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	level := e.Level
	if level < log.DebugLevel || level > log.FatalLevel {
		level = log.InfoLevel
	}
	c := h.colors[level]
	s := c.Sprintf("%s %s", h.bold.Sprintf("%*s", h.Padding+1, Strings[level]), e.Message)
	for _, name := range e.Fields.Names() {
		s += fmt.Sprintf(" %s=%v", c.Sprint(name), e.Fields.Get(name))
	}
	_, err := fmt.Fprintln(h.Writer, s)
	return err
}

// NewLogger returns a model.Logger that emits entries at or above level
// through a Handler writing to w. An unknown level name selects warn.
func NewLogger(w io.Writer, level string, useColor bool) model.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	return &log.Logger{
		Handler: NewHandler(w, useColor),
		Level:   lvl,
	}
}
