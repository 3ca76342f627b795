package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	slog.SetDefault(NewLogger(&buf, LevelTrace))
	Trace("detector state", "state", "in_value")

	out := buf.String()
	if !strings.Contains(out, "level=TRACE") {
		t.Errorf("TRACE-Level fehlt: %s", out)
	}
	if !strings.Contains(out, "source=logutil_test.go:") {
		t.Errorf("Quellangabe sollte nur den Dateinamen enthalten: %s", out)
	}
	if !strings.Contains(out, "state=in_value") {
		t.Errorf("Attribut fehlt: %s", out)
	}
}

func TestTraceSuppressedAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	slog.SetDefault(NewLogger(&buf, slog.LevelDebug))
	Trace("unsichtbar")
	slog.Debug("sichtbar")

	out := buf.String()
	if strings.Contains(out, "unsichtbar") {
		t.Errorf("Trace darf bei Debug nicht erscheinen: %s", out)
	}
	if !strings.Contains(out, "level=DEBUG") {
		t.Errorf("Debug-Zeile fehlt: %s", out)
	}
}
