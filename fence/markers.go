// markers.go - Fence-Syntax fuer emulierte Tool-Calls
// Enthaelt: Start-/End-Marker, Mode, Options, Fehlerwerte
package fence

import (
	"errors"
	"fmt"
	"strings"
)

// ToolCallTag ist die kanonische Schreibweise des Start-Markers. Sie wird
// im System-Prompt verwendet.
const ToolCallTag = "```tool_call"

// EndMarker schliesst einen Tool-Call-Block.
const EndMarker = "```"

// StartMarkers enthaelt alle akzeptierten Schreibweisen des Start-Markers.
// Modelle variieren die Interpunktion im Marker-Wort, daher werden mehrere
// Varianten erkannt.
var StartMarkers = []string{
	ToolCallTag,
	"```tool-call",
	"```toolcall",
}

// DefaultMaxPrefix ist die Anzahl Zeichen, die im Bare-Modus vor dem
// ersten '{' oder '[' stehen duerfen.
const DefaultMaxPrefix = 500

// DefaultMaxFenceBytes begrenzt den Inhalt eines Fence-Blocks.
const DefaultMaxFenceBytes = 64 * 1024

var (
	ErrRootMismatch  = errors.New("root mismatch")
	ErrPrefixTooLong = errors.New("prefix too long")
	ErrFenceTooLong  = errors.New("fence too long")
)

// Mode waehlt zwischen Bare-JSON- und Fence-Erkennung.
type Mode int

const (
	ModeFenced Mode = iota
	ModeBare
)

func (m Mode) String() string {
	switch m {
	case ModeFenced:
		return "fenced"
	case ModeBare:
		return "bare"
	default:
		return "unknown"
	}
}

// ParseMode liest einen Mode aus Konfiguration oder Request.
// Ein leerer String ergibt ModeFenced.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fenced", "fence":
		return ModeFenced, nil
	case "bare", "json":
		return ModeBare, nil
	default:
		return ModeFenced, fmt.Errorf("unknown detection mode %q", s)
	}
}

// Options konfiguriert einen Detector. Nullwerte werden durch die Defaults
// ersetzt, negative Werte schalten das jeweilige Limit ab.
type Options struct {
	MaxPrefix     int
	MaxFenceBytes int
}

func (o Options) normalize() Options {
	if o.MaxPrefix == 0 {
		o.MaxPrefix = DefaultMaxPrefix
	}
	if o.MaxFenceBytes == 0 {
		o.MaxFenceBytes = DefaultMaxFenceBytes
	}
	return o
}
