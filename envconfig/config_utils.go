// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String: String-Getter
// - Uint: Integer-Getter mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
)

// =============================================================================
// Boolean-Getter
// =============================================================================

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// =============================================================================
// String-Getter
// =============================================================================

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// =============================================================================
// Integer-Getter
// =============================================================================

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	ret := map[string]EnvVar{
		"TOOLFENCE_DEBUG":           {"TOOLFENCE_DEBUG", LogLevel(), "Show additional debug information (e.g. TOOLFENCE_DEBUG=1)"},
		"TOOLFENCE_HOST":            {"TOOLFENCE_HOST", Host(), "IP Address for the toolfence server (default 127.0.0.1:11435)"},
		"TOOLFENCE_ORIGINS":         {"TOOLFENCE_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"TOOLFENCE_BACKEND":         {"TOOLFENCE_BACKEND", Backend(), "Model backend: ollama or openai (default: ollama)"},
		"TOOLFENCE_UPSTREAM":        {"TOOLFENCE_UPSTREAM", Upstream(), "Base URL of the model backend"},
		"TOOLFENCE_MODEL":           {"TOOLFENCE_MODEL", Model(), "Model used when a request names none"},
		"TOOLFENCE_MODE":            {"TOOLFENCE_MODE", Mode(), "Tool call detection mode: fenced or bare (default: fenced)"},
		"TOOLFENCE_MAX_PREFIX":      {"TOOLFENCE_MAX_PREFIX", MaxPrefix(), "Characters allowed before a bare JSON payload (default: 500)"},
		"TOOLFENCE_MAX_FENCE_BYTES": {"TOOLFENCE_MAX_FENCE_BYTES", MaxFenceBytes(), "Maximum size of a fenced tool call block (default: 65536)"},
		"TOOLFENCE_STRICT":          {"TOOLFENCE_STRICT", Strict(), "Drop tool calls whose name matches no requested tool"},
		"TOOLFENCE_TEMPLATE":        {"TOOLFENCE_TEMPLATE", Template(), "Path to a custom chat transcript template"},

		// Proxy-Einstellungen
		"HTTP_PROXY":  {"HTTP_PROXY", String("HTTP_PROXY")(), "HTTP proxy"},
		"HTTPS_PROXY": {"HTTPS_PROXY", String("HTTPS_PROXY")(), "HTTPS proxy"},
		"NO_PROXY":    {"NO_PROXY", String("NO_PROXY")(), "No proxy"},
	}

	// Nicht-Windows: Case-sensitive Proxy-Variablen
	if runtime.GOOS != "windows" {
		ret["http_proxy"] = EnvVar{"http_proxy", String("http_proxy")(), "HTTP proxy"}
		ret["https_proxy"] = EnvVar{"https_proxy", String("https_proxy")(), "HTTPS proxy"}
		ret["no_proxy"] = EnvVar{"no_proxy", String("no_proxy")(), "No proxy"}
	}

	return ret
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
