// converter.go - Uebersetzung zwischen Messages-API und nativem Chat
// Enthaelt: FromMessagesRequest, ToMessagesResponse, mapStopReason
package anthropic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/7blacky7/toolfence/api"
)

// requestBlock ist ein Content-Block einer eingehenden Nachricht. Input
// bleibt roh, damit die Argumente ihre Reihenfolge behalten.
type requestBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
}

func decodeBlocks(v any) ([]requestBlock, error) {
	bts, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var blocks []requestBlock
	if err := json.Unmarshal(bts, &blocks); err != nil {
		return nil, fmt.Errorf("invalid content block format: %w", err)
	}
	return blocks, nil
}

// blockText liest Content als String oder als Liste von Text-Bloecken
func blockText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	blocks, err := decodeBlocks(raw)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range blocks {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// FromMessagesRequest baut den nativen Chat-Request. max_tokens wird
// num_predict, tool_result-Bloecke werden tool-Nachrichten.
func FromMessagesRequest(r MessagesRequest) (*api.ChatRequest, error) {
	var messages []api.Message

	if r.System != nil {
		raw, err := json.Marshal(r.System)
		if err != nil {
			return nil, err
		}
		system, err := blockText(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid system: %w", err)
		}
		if system != "" {
			messages = append(messages, api.Message{Role: "system", Content: system})
		}
	}

	// tool_use-ID -> Tool-Name fuer spaetere tool_result-Bloecke
	names := make(map[string]string)
	for _, msg := range r.Messages {
		converted, err := convertMessage(msg, names)
		if err != nil {
			return nil, err
		}
		messages = append(messages, converted...)
	}

	options := make(map[string]any)
	if r.MaxTokens > 0 {
		options["num_predict"] = r.MaxTokens
	}
	if r.Temperature != nil {
		options["temperature"] = *r.Temperature
	}
	if r.TopP != nil {
		options["top_p"] = *r.TopP
	}
	if len(r.StopSequences) > 0 {
		options["stop"] = r.StopSequences
	}

	var tools api.Tools
	for _, t := range r.Tools {
		tool, err := convertTool(t)
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}

	stream := r.Stream
	return &api.ChatRequest{
		Model:    r.Model,
		Messages: messages,
		Options:  options,
		Stream:   &stream,
		Tools:    tools,
	}, nil
}

func convertMessage(msg MessageParam, names map[string]string) ([]api.Message, error) {
	role := strings.ToLower(msg.Role)

	switch content := msg.Content.(type) {
	case string:
		return []api.Message{{Role: role, Content: content}}, nil
	case []any:
	default:
		return nil, fmt.Errorf("invalid message content type: %T", content)
	}

	blocks, err := decodeBlocks(msg.Content)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	var calls []api.ToolCall
	var results []api.Message

	for _, b := range blocks {
		switch b.Type {
		case "text":
			text.WriteString(b.Text)

		case "tool_use":
			if b.ID == "" || b.Name == "" {
				return nil, errors.New("tool_use block requires 'id' and 'name'")
			}
			tc := api.ToolCall{ID: b.ID, Function: api.ToolCallFunction{Index: len(calls), Name: b.Name}}
			if len(b.Input) > 0 && string(b.Input) != "null" {
				if err := json.Unmarshal(b.Input, &tc.Function.Arguments); err != nil {
					return nil, fmt.Errorf("tool_use %s: input must be an object: %w", b.ID, err)
				}
			}
			names[b.ID] = b.Name
			calls = append(calls, tc)

		case "tool_result":
			content, err := blockText(b.Content)
			if err != nil {
				return nil, fmt.Errorf("tool_result %s: %w", b.ToolUseID, err)
			}
			results = append(results, api.Message{
				Role:       "tool",
				Content:    content,
				ToolName:   names[b.ToolUseID],
				ToolCallID: b.ToolUseID,
			})

		default:
			return nil, fmt.Errorf("unsupported content block type %q", b.Type)
		}
	}

	var messages []api.Message
	if text.Len() > 0 || len(calls) > 0 {
		messages = append(messages, api.Message{Role: role, Content: text.String(), ToolCalls: calls})
	}
	return append(messages, results...), nil
}

func convertTool(t Tool) (api.Tool, error) {
	var params api.ToolFunctionParameters
	if len(t.InputSchema) > 0 {
		if err := json.Unmarshal(t.InputSchema, &params); err != nil {
			return api.Tool{}, fmt.Errorf("invalid input_schema for tool %q: %w", t.Name, err)
		}
	}

	return api.Tool{
		Type:     "function",
		Function: api.ToolFunction{Name: t.Name, Description: t.Description, Parameters: params},
	}, nil
}

// ToMessagesResponse baut die nicht-gestreamte Antwort aus der
// aggregierten Chat-Antwort
func ToMessagesResponse(id string, r api.ChatResponse) MessagesResponse {
	content := []ContentBlock{}
	if r.Message.Content != "" {
		content = append(content, ContentBlock{Type: "text", Text: ptr(r.Message.Content)})
	}
	for _, tc := range r.Message.ToolCalls {
		content = append(content, ContentBlock{Type: "tool_use", ID: tc.ID, Name: tc.Function.Name, Input: tc.Function.Arguments})
	}

	return MessagesResponse{
		ID:         id,
		Type:       "message",
		Role:       "assistant",
		Model:      r.Model,
		Content:    content,
		StopReason: mapStopReason(r.DoneReason, len(r.Message.ToolCalls) > 0),
		Usage:      Usage{OutputTokens: r.Metrics.EvalCount},
	}
}

// mapStopReason: erkannte Tool-Calls gewinnen immer, sonst stop -> end_turn,
// length -> max_tokens und jeder andere Grund -> stop_sequence
func mapStopReason(reason string, hasToolCalls bool) string {
	switch {
	case hasToolCalls:
		return "tool_use"
	case reason == "stop":
		return "end_turn"
	case reason == "length":
		return "max_tokens"
	case reason != "":
		return "stop_sequence"
	default:
		return ""
	}
}
