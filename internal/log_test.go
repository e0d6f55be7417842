package internal

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestLoggerSuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := NewLogger(LogLevelWarn)
	l.Info("analysis progress %d", 1)
	l.Warn("degenerate fit at lambda=%g", 10.0)
	l.Error("solver failed")

	out := buf.String()
	if strings.Contains(out, "analysis progress") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, "[WARN] degenerate fit at lambda=10") {
		t.Errorf("warn message missing from output: %q", out)
	}
	if !strings.Contains(out, "[ERROR] solver failed") {
		t.Errorf("error message missing from output: %q", out)
	}
}

func TestNewDefaultLoggerReadsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	if l := NewDefaultLogger(); l.level != LogLevelError {
		t.Errorf("LOG_LEVEL=error gave level %d", l.level)
	}

	t.Setenv("LOG_LEVEL", "WARN")
	if l := NewDefaultLogger(); l.level != LogLevelWarn {
		t.Errorf("LOG_LEVEL=WARN gave level %d", l.level)
	}

	t.Setenv("LOG_LEVEL", "verbose")
	if l := NewDefaultLogger(); l.level != LogLevelInfo {
		t.Errorf("unrecognized LOG_LEVEL should fall back to info, got %d", l.level)
	}
}
