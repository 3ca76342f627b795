// openai_from.go - Konvertierungsfunktionen von OpenAI-Format zu API-Format
//
// Enthaelt:
// - FromChatRequest: Chat-Completion Request konvertieren
// - FromCompletionToolCall: Tool-Aufrufe konvertieren
// - Hilfsfunktionen: nameFromToolCallID, textContent
//
// Verwandte Dateien:
// - openai_types.go: Typdefinitionen
// - openai_to.go: Konvertierung API -> OpenAI Format
package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/7blacky7/toolfence/api"
)

// FromChatRequest konvertiert einen ChatCompletionRequest zu api.ChatRequest
func FromChatRequest(r ChatCompletionRequest) (*api.ChatRequest, error) {
	var messages []api.Message
	for _, msg := range r.Messages {
		toolName := ""
		if strings.ToLower(msg.Role) == "tool" {
			toolName = msg.Name
			if toolName == "" && msg.ToolCallID != "" {
				toolName = nameFromToolCallID(r.Messages, msg.ToolCallID)
			}
		}

		toolCalls, err := FromCompletionToolCall(msg.ToolCalls)
		if err != nil {
			return nil, err
		}

		content, err := textContent(msg.Content)
		if err != nil {
			return nil, err
		}
		// Content ist nur optional wenn Tool-Calls vorhanden sind
		if msg.Content == nil && len(toolCalls) == 0 {
			return nil, fmt.Errorf("invalid message content type: %T", msg.Content)
		}

		messages = append(messages, api.Message{
			Role:       msg.Role,
			Content:    content,
			ToolCalls:  toolCalls,
			ToolName:   toolName,
			ToolCallID: msg.ToolCallID,
		})
	}

	options := make(map[string]any)

	switch stop := r.Stop.(type) {
	case string:
		options["stop"] = []string{stop}
	case []any:
		var stops []string
		for _, s := range stop {
			if str, ok := s.(string); ok {
				stops = append(stops, str)
			}
		}
		options["stop"] = stops
	}

	if r.MaxTokens != nil {
		options["num_predict"] = *r.MaxTokens
	}

	if r.Temperature != nil {
		options["temperature"] = *r.Temperature
	} else {
		options["temperature"] = 1.0
	}

	if r.Seed != nil {
		options["seed"] = *r.Seed
	}

	if r.FrequencyPenalty != nil {
		options["frequency_penalty"] = *r.FrequencyPenalty
	}

	if r.PresencePenalty != nil {
		options["presence_penalty"] = *r.PresencePenalty
	}

	if r.TopP != nil {
		options["top_p"] = *r.TopP
	} else {
		options["top_p"] = 1.0
	}

	return &api.ChatRequest{
		Model:    r.Model,
		Messages: messages,
		Options:  options,
		Stream:   &r.Stream,
		Tools:    r.Tools,
		Mode:     r.ToolCallMode,
	}, nil
}

// textContent fasst String- und Text-Part-Inhalte zusammen. Bilder und
// andere Part-Typen werden abgelehnt.
func textContent(content any) (string, error) {
	switch content := content.(type) {
	case nil:
		return "", nil
	case string:
		return content, nil
	case []any:
		var sb strings.Builder
		for _, c := range content {
			data, ok := c.(map[string]any)
			if !ok {
				return "", errors.New("invalid message format")
			}
			switch data["type"] {
			case "text":
				text, ok := data["text"].(string)
				if !ok {
					return "", errors.New("invalid message format")
				}
				sb.WriteString(text)
			default:
				return "", fmt.Errorf("unsupported content part %v", data["type"])
			}
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("invalid message content type: %T", content)
	}
}

// nameFromToolCallID findet den Funktionsnamen anhand der ToolCallID
func nameFromToolCallID(messages []Message, toolCallID string) string {
	// Rueckwaerts iterieren um bei doppelten IDs die letzte zu nehmen
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		for _, tc := range msg.ToolCalls {
			if tc.ID == toolCallID {
				return tc.Function.Name
			}
		}
	}
	return ""
}

// FromCompletionToolCall konvertiert OpenAI ToolCall Format zu api.ToolCall
func FromCompletionToolCall(toolCalls []ToolCall) ([]api.ToolCall, error) {
	if len(toolCalls) == 0 {
		return nil, nil
	}

	apiToolCalls := make([]api.ToolCall, len(toolCalls))
	for i, tc := range toolCalls {
		apiToolCalls[i].ID = tc.ID
		apiToolCalls[i].Function.Index = tc.Index
		apiToolCalls[i].Function.Name = tc.Function.Name
		if tc.Function.Arguments == "" {
			continue
		}
		err := json.Unmarshal([]byte(tc.Function.Arguments), &apiToolCalls[i].Function.Arguments)
		if err != nil {
			return nil, errors.New("invalid tool call arguments")
		}
	}

	return apiToolCalls, nil
}
