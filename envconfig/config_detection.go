// config_detection.go - Backend- und Detector-Konfiguration
//
// Dieses Modul enthaelt:
// - Backend/Model: Auswahl des Modell-Backends
// - Mode: Standard-Erkennungsmodus (fenced oder bare)
// - MaxPrefix/MaxFenceBytes: Limits der Detectoren
// - Strict: unbekannte Tool-Namen verwerfen
// - Template: eigenes Transkript-Template
package envconfig

import (
	"log/slog"
	"strings"
)

const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

var (
	// Model ist das Standard-Modell, wenn ein Request keines angibt
	Model = String("TOOLFENCE_MODEL")

	// Mode ist der Standard-Erkennungsmodus (fenced | bare)
	Mode = String("TOOLFENCE_MODE")

	// MaxPrefix begrenzt den Text vor einem nackten JSON-Payload (Zeichen)
	MaxPrefix = Uint("TOOLFENCE_MAX_PREFIX", 500)

	// MaxFenceBytes begrenzt den Inhalt eines Fence-Blocks
	MaxFenceBytes = Uint("TOOLFENCE_MAX_FENCE_BYTES", 64*1024)

	// Strict verwirft Tool-Calls, deren Name in keinem Request-Tool vorkommt
	Strict = Bool("TOOLFENCE_STRICT")

	// Template ist der Pfad zu einem eigenen Chat-Template (text/template)
	Template = String("TOOLFENCE_TEMPLATE")

	// OpenAIKey ist der API-Key fuer OpenAI-kompatible Backends
	OpenAIKey = String("OPENAI_API_KEY")
)

// Backend gibt das Modell-Backend zurueck
// Konfigurierbar via TOOLFENCE_BACKEND
// Default: ollama
func Backend() string {
	switch s := strings.ToLower(Var("TOOLFENCE_BACKEND")); s {
	case "", BackendOllama:
		return BackendOllama
	case BackendOpenAI:
		return BackendOpenAI
	default:
		slog.Warn("unknown backend, using default", "backend", s, "default", BackendOllama)
		return BackendOllama
	}
}
