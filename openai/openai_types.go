// openai_types.go - Typdefinitionen fuer die OpenAI-kompatible Chat-API
//
// Enthaelt:
// - Error und ErrorResponse Typen
// - Message, Choice und ChunkChoice Typen
// - ChatCompletionRequest, ChatCompletion, ChatCompletionChunk
// - Usage, StreamOptions und ToolCall
//
// Verwandte Dateien:
// - openai_to.go: Konvertierung API -> OpenAI Format
// - openai_from.go: Konvertierung OpenAI -> API Format
package openai

import (
	"net/http"

	"github.com/7blacky7/toolfence/api"
)

// finishReasonToolCalls wird verwendet wenn Tool-Calls vorhanden sind
var finishReasonToolCalls = "tool_calls"

// Error repraesentiert einen OpenAI-kompatiblen Fehler
type Error struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Param   any     `json:"param"`
	Code    *string `json:"code"`
}

// ErrorResponse ist die Wrapper-Struktur fuer Fehlerantworten
type ErrorResponse struct {
	Error Error `json:"error"`
}

// Message repraesentiert eine Chat-Nachricht. Content ist ein String oder
// eine Liste von Text-Parts.
type Message struct {
	Role       string     `json:"role"`
	Content    any        `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Choice repraesentiert eine Antwort-Option bei Chat-Completions
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason"`
}

// ChunkChoice repraesentiert eine Antwort-Option beim Streaming
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Message `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Usage enthaelt Verbrauchsinformationen. CompletionTokens zaehlt die
// Chunks des Backends.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamOptions fuer Streaming-Konfiguration
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// ChatCompletionRequest ist ein Request fuer Chat-Completions
type ChatCompletionRequest struct {
	Model            string         `json:"model"`
	Messages         []Message      `json:"messages"`
	Stream           bool           `json:"stream"`
	StreamOptions    *StreamOptions `json:"stream_options"`
	MaxTokens        *int           `json:"max_tokens"`
	Seed             *int           `json:"seed"`
	Stop             any            `json:"stop"`
	Temperature      *float64       `json:"temperature"`
	FrequencyPenalty *float64       `json:"frequency_penalty"`
	PresencePenalty  *float64       `json:"presence_penalty"`
	TopP             *float64       `json:"top_p"`
	Tools            []api.Tool     `json:"tools"`

	// ToolCallMode waehlt die Erkennung wie api.ChatRequest.Mode.
	ToolCallMode string `json:"tool_call_mode,omitempty"`
}

// ChatCompletion ist die Antwort fuer Chat-Completions
type ChatCompletion struct {
	Id                string   `json:"id"`
	Object            string   `json:"object"`
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	SystemFingerprint string   `json:"system_fingerprint"`
	Choices           []Choice `json:"choices"`
	Usage             Usage    `json:"usage,omitempty"`
}

// ChatCompletionChunk ist ein Streaming-Chunk fuer Chat-Completions
type ChatCompletionChunk struct {
	Id                string        `json:"id"`
	Object            string        `json:"object"`
	Created           int64         `json:"created"`
	Model             string        `json:"model"`
	SystemFingerprint string        `json:"system_fingerprint"`
	Choices           []ChunkChoice `json:"choices"`
	Usage             *Usage        `json:"usage,omitempty"`
}

// ToolCall repraesentiert einen Tool-Aufruf
type ToolCall struct {
	ID       string `json:"id"`
	Index    int    `json:"index"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// NewError erstellt eine neue ErrorResponse basierend auf HTTP-Statuscode
func NewError(code int, message string) ErrorResponse {
	var etype string
	switch code {
	case http.StatusBadRequest:
		etype = "invalid_request_error"
	case http.StatusNotFound:
		etype = "not_found_error"
	default:
		etype = "api_error"
	}

	return ErrorResponse{Error{Type: etype, Message: message}}
}
