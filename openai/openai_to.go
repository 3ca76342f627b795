// openai_to.go - Konvertierungsfunktionen von API-Format zu OpenAI-Format
//
// Enthaelt:
// - ToUsage: Verbrauch konvertieren
// - ToToolCalls: Tool-Aufrufe konvertieren
// - ToChatCompletion, ToChunk: Chat-Antworten konvertieren
//
// Verwandte Dateien:
// - openai_types.go: Typdefinitionen
// - openai_from.go: Konvertierung OpenAI -> API Format
package openai

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/7blacky7/toolfence/api"
)

const systemFingerprint = "fp_toolfence"

// ToUsage konvertiert eine api.ChatResponse zu Usage
func ToUsage(r api.ChatResponse) Usage {
	return Usage{
		CompletionTokens: r.Metrics.EvalCount,
		TotalTokens:      r.Metrics.EvalCount,
	}
}

// ToToolCalls konvertiert api.ToolCall zu OpenAI ToolCall Format
func ToToolCalls(tc []api.ToolCall) []ToolCall {
	toolCalls := make([]ToolCall, len(tc))
	for i, tc := range tc {
		toolCalls[i].ID = tc.ID
		toolCalls[i].Type = "function"
		toolCalls[i].Function.Name = tc.Function.Name
		toolCalls[i].Index = tc.Function.Index

		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			slog.Error("could not marshall function arguments to json", "error", err)
			continue
		}

		toolCalls[i].Function.Arguments = string(args)
	}
	return toolCalls
}

func finishReason(reason string, toolCalls bool) *string {
	if len(reason) == 0 {
		return nil
	}
	if toolCalls {
		return &finishReasonToolCalls
	}
	return &reason
}

// ToChatCompletion konvertiert eine gesammelte api.ChatResponse zu ChatCompletion
func ToChatCompletion(id string, r api.ChatResponse) ChatCompletion {
	toolCalls := ToToolCalls(r.Message.ToolCalls)

	return ChatCompletion{
		Id:                id,
		Object:            "chat.completion",
		Created:           r.CreatedAt.Unix(),
		Model:             r.Model,
		SystemFingerprint: systemFingerprint,
		Choices: []Choice{{
			Index:        0,
			Message:      Message{Role: r.Message.Role, Content: r.Message.Content, ToolCalls: toolCalls},
			FinishReason: finishReason(r.DoneReason, len(toolCalls) > 0),
		}},
		Usage: ToUsage(r),
	}
}

// ToChunk konvertiert eine api.ChatResponse zu ChatCompletionChunk.
// toolCallSent markiert, dass frueher im Stream schon Calls kamen.
func ToChunk(id string, r api.ChatResponse, toolCallSent bool) ChatCompletionChunk {
	toolCalls := ToToolCalls(r.Message.ToolCalls)

	return ChatCompletionChunk{
		Id:                id,
		Object:            "chat.completion.chunk",
		Created:           time.Now().Unix(),
		Model:             r.Model,
		SystemFingerprint: systemFingerprint,
		Choices: []ChunkChoice{{
			Index:        0,
			Delta:        Message{Role: "assistant", Content: r.Message.Content, ToolCalls: toolCalls},
			FinishReason: finishReason(r.DoneReason, toolCallSent || len(toolCalls) > 0),
		}},
	}
}
