// Package llm - Anbindung an das Modell-Backend
//
// Definiert die Typen fuer Text-Generierung:
// - Completer Interface, das jedes Backend implementiert
// - CompletionRequest/CompletionResponse fuer einen Generierungslauf
// - FromEnvironment waehlt das Backend anhand der Konfiguration
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/envconfig"
)

const maxBufferSize = 512 * 1024

// Completer erzeugt Text zu einem fertig gerenderten Prompt. fn wird fuer
// jeden Chunk aufgerufen, die letzte Antwort hat Done gesetzt. Liefert fn
// einen Fehler, wird die Generierung abgebrochen.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest, fn func(CompletionResponse) error) error
}

// CompletionRequest enthaelt alle Parameter fuer Text-Generierung
type CompletionRequest struct {
	Model   string
	Prompt  string
	Options *api.Options
}

// DoneReason gibt an warum die Generierung beendet wurde
type DoneReason int

const (
	DoneReasonStop             DoneReason = iota // Natuerliches Ende
	DoneReasonLength                             // Laengenlimit erreicht
	DoneReasonConnectionClosed                   // Verbindung geschlossen
)

func (d DoneReason) String() string {
	switch d {
	case DoneReasonLength:
		return "length"
	case DoneReasonStop:
		return "stop"
	default:
		return "" // closed
	}
}

func parseDoneReason(s string) DoneReason {
	switch s {
	case "length":
		return DoneReasonLength
	case "", "stop", "eos":
		return DoneReasonStop
	default:
		return DoneReasonConnectionClosed
	}
}

// CompletionResponse ist ein Chunk einer Completion
type CompletionResponse struct {
	Content      string
	DoneReason   DoneReason
	Done         bool
	EvalCount    int
	EvalDuration time.Duration
}

// FromEnvironment erzeugt den Completer fuer TOOLFENCE_BACKEND und
// TOOLFENCE_UPSTREAM.
func FromEnvironment() (Completer, error) {
	switch backend := envconfig.Backend(); backend {
	case envconfig.BackendOllama:
		return NewOllamaCompleter(envconfig.Upstream(), http.DefaultClient)
	case envconfig.BackendOpenAI:
		return NewOpenAICompleter(envconfig.Upstream(), envconfig.OpenAIKey()), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}
}
