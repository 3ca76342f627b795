// types_chat.go - Request/Response Types der toolfence-API
// Enthaelt: Message, ChatRequest, ChatResponse, ParseRequest, ParseResponse,
//           ExtractRequest, ExtractResponse, PromptRequest, PromptResponse
package api

import (
	"encoding/json"
	"strings"
	"time"
)

// Message is a single message in a chat sequence.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

func (m *Message) UnmarshalJSON(b []byte) error {
	type Alias Message
	var a Alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}

	*m = Message(a)
	m.Role = strings.ToLower(m.Role)
	return nil
}

// ChatRequest describes a request sent by [Client.Chat].
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   *bool     `json:"stream,omitempty"`
	Tools    `json:"tools,omitempty"`

	// Mode waehlt die Tool-Call-Erkennung: "fenced" (Default) oder "bare".
	Mode string `json:"mode,omitempty"`

	Options map[string]any `json:"options"`
}

// ChatResponse is the response returned by [Client.Chat].
type ChatResponse struct {
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
	Message    Message   `json:"message"`
	Done       bool      `json:"done"`
	DoneReason string    `json:"done_reason,omitempty"`

	// Failed ist gesetzt, sobald die Tool-Call-Erkennung aufgegeben hat;
	// der restliche Text wird dann unveraendert als Content geliefert.
	// FailedReason nennt den Grund. Fatale Fehler kommen als eigene
	// {"error": ...} Zeile.
	Failed       bool   `json:"failed,omitempty"`
	FailedReason string `json:"failed_reason,omitempty"`

	Metrics
}

// ParseRequest laesst fertigen Modell-Text durch die Tool-Call-Erkennung laufen.
type ParseRequest struct {
	Text  string `json:"text"`
	Mode  string `json:"mode,omitempty"`
	Tools Tools  `json:"tools,omitempty"`
}

type ParseResponse struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Failed    bool       `json:"failed,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ExtractRequest sucht JSON-Literale in beliebigem Text.
type ExtractRequest struct {
	Text string `json:"text"`

	// All liefert alle gueltigen Literale statt nur des ersten.
	All bool `json:"all,omitempty"`
}

type ExtractResponse struct {
	Values []json.RawMessage `json:"values"`
}

// PromptRequest erzeugt den System-Prompt fuer eine Tool-Liste.
type PromptRequest struct {
	System string `json:"system,omitempty"`
	Tools  Tools  `json:"tools,omitempty"`
}

type PromptResponse struct {
	Prompt string `json:"prompt"`
}
