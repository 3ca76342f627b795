// config.go - Haupt-Konfigurationsfunktionen fuer toolfence
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (TOOLFENCE_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (TOOLFENCE_ORIGINS)
// - Upstream: Gibt die Basis-URL des Modell-Backends zurueck (TOOLFENCE_UPSTREAM)
// - LogLevel: Gibt Log-Level zurueck (TOOLFENCE_DEBUG)
// - LoadDotEnv: Laedt eine optionale .env-Datei
//
// Weitere Konfigurationen sind ausgelagert:
// - config_detection.go: Backend, Modell und Detector-Limits
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultPort ist der Port des toolfence-Servers, direkt neben ollama.
const DefaultPort = "11435"

// Host gibt Scheme und Host zurueck
// Konfigurierbar via TOOLFENCE_HOST
// Default: http://127.0.0.1:11435
func Host() *url.URL {
	defaultPort := DefaultPort

	s := strings.TrimSpace(Var("TOOLFENCE_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via TOOLFENCE_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("TOOLFENCE_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	origins = append(origins,
		"app://*",
		"file://*",
		"vscode-webview://*",
		"vscode-file://*",
	)

	return origins
}

// Upstream gibt die Basis-URL des Modell-Backends zurueck
// Konfigurierbar via TOOLFENCE_UPSTREAM
// Default: abhaengig von TOOLFENCE_BACKEND
func Upstream() string {
	if s := Var("TOOLFENCE_UPSTREAM"); s != "" {
		return strings.TrimRight(s, "/")
	}

	if Backend() == BackendOpenAI {
		return "https://api.openai.com/v1"
	}
	return "http://127.0.0.1:11434"
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via TOOLFENCE_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TOOLFENCE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// LoadDotEnv laedt Variablen aus den angegebenen Dateien (Default: .env).
// Bereits gesetzte Variablen werden nicht ueberschrieben, fehlende Dateien
// sind kein Fehler.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
