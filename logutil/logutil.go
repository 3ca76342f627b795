// Package logutil stellt den slog-Logger und ein zusaetzliches Trace-Level bereit.
//
// Modul: logutil.go - Logger-Konstruktion
// Enthaelt: LevelTrace, NewLogger, Trace, TraceContext
package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"
)

// LevelTrace liegt unterhalb von Debug und wird fuer Detector-Uebergaenge genutzt.
const LevelTrace slog.Level = slog.LevelDebug - 4

// NewLogger erzeugt einen Text-Logger mit Quellangabe (nur Dateiname).
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	}))
}

// Trace loggt msg auf LevelTrace ueber den Default-Logger.
func Trace(msg string, args ...any) {
	TraceContext(context.Background(), msg, args...)
}

func TraceContext(ctx context.Context, msg string, args ...any) {
	if logger := slog.Default(); logger.Enabled(ctx, LevelTrace) {
		var pcs [1]uintptr
		// Trace/TraceContext und runtime.Callers ueberspringen
		runtime.Callers(3, pcs[:])
		r := slog.NewRecord(time.Now(), LevelTrace, msg, pcs[0])
		r.Add(args...)
		_ = logger.Handler().Handle(ctx, r)
	}
}
