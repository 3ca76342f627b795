// template_watch.go - Laedt ein eigenes Chat-Template bei Aenderungen neu
// Hauptfunktionen: watchTemplate
package server

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchTemplate beobachtet das Verzeichnis der Template-Datei. Editoren
// ersetzen Dateien oft per Rename, darum nicht die Datei selbst.
// Ein kaputtes Template wird geloggt, das alte bleibt aktiv.
func (s *Server) watchTemplate(ctx context.Context, path string) (*fsnotify.Watcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}

				t, err := readChatTemplate(path)
				if err != nil {
					slog.Warn("chat template reload failed", "path", path, "error", err)
					continue
				}
				s.setChatTemplate(t)
				slog.Info("chat template reloaded", "path", path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("chat template watcher", "error", err)
			}
		}
	}()

	return w, nil
}
