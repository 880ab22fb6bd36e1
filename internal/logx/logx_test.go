package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/google/go-cmp/cmp"
)

func TestNewLogger(t *testing.T) {
	t.Run("filters entries below the configured level", func(t *testing.T) {
		w := &bytes.Buffer{}
		logger := NewLogger(w, "info", false)
		logger.Debugf("resolve %s...", "example.com")
		logger.Infof("hop %d: GET %s", 1, "http://example.com/")
		logger.Warn("redirect downgrades HTTPS to HTTP")
		expect := "   • hop 1: GET http://example.com/\n" +
			"   • redirect downgrades HTTPS to HTTP\n"
		if diff := cmp.Diff(expect, w.String()); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("an unknown level selects warn", func(t *testing.T) {
		w := &bytes.Buffer{}
		logger := NewLogger(w, "chatty", false)
		logger.Info("invisible")
		logger.Warnf("visible %d", 1)
		if w.String() != "   • visible 1\n" {
			t.Fatalf("unexpected output %q", w.String())
		}
	})

	t.Run("debug shows everything", func(t *testing.T) {
		w := &bytes.Buffer{}
		logger := NewLogger(w, "debug", false)
		logger.Debug("a")
		logger.Info("b")
		logger.Warn("c")
		if n := strings.Count(w.String(), "\n"); n != 3 {
			t.Fatal("expected three lines, got", n)
		}
	})
}

func TestHandler(t *testing.T) {
	t.Run("prints fields and the error symbol", func(t *testing.T) {
		w := &bytes.Buffer{}
		h := NewHandler(w, false)
		logger := &log.Logger{Handler: h, Level: log.DebugLevel}
		logger.WithFields(log.Fields{"port": 443, "host": "example.com"}).Error("dial failed")
		expect := "   ⨯ dial failed host=example.com port=443\n"
		if diff := cmp.Diff(expect, w.String()); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("emits ANSI sequences when colors are enabled", func(t *testing.T) {
		w := &bytes.Buffer{}
		logger := &log.Logger{Handler: NewHandler(w, true), Level: log.DebugLevel}
		logger.Warn("careful")
		if !strings.Contains(w.String(), "\x1b[") {
			t.Fatalf("expected colors in %q", w.String())
		}
		if !strings.Contains(w.String(), "careful") {
			t.Fatal("missing message")
		}
	})
}
