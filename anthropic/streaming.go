// streaming.go - Chat-Zeilen als Messages-SSE-Events
// Enthaelt: StreamConverter, StreamEvent
package anthropic

import (
	"encoding/json"
	"log/slog"

	"github.com/7blacky7/toolfence/api"
)

// StreamEvent ist ein SSE-Event mit Name und JSON-Daten
type StreamEvent struct {
	Event string
	Data  any
}

// StreamConverter macht aus den Zeilen eines Chat-Streams die Event-Folge
// der Messages-API. Text laeuft in einem offenen Block, jeder erkannte
// Tool-Call wird als eigener, sofort geschlossener tool_use-Block gesendet.
type StreamConverter struct {
	ID    string
	Model string

	started  bool
	index    int
	textOpen bool
	sent     map[string]bool
}

func NewStreamConverter(id, model string) *StreamConverter {
	return &StreamConverter{ID: id, Model: model, sent: make(map[string]bool)}
}

// Process wandelt eine Chat-Zeile in null oder mehr Events
func (c *StreamConverter) Process(r api.ChatResponse) []StreamEvent {
	var events []StreamEvent
	if !c.started {
		c.started = true
		events = append(events, StreamEvent{"message_start", MessageStartEvent{
			Type: "message_start",
			Message: MessagesResponse{
				ID:      c.ID,
				Type:    "message",
				Role:    "assistant",
				Model:   c.Model,
				Content: []ContentBlock{},
			},
		}})
	}

	if r.Message.Content != "" {
		events = append(events, c.text(r.Message.Content)...)
	}

	for _, tc := range r.Message.ToolCalls {
		if c.sent[tc.ID] {
			continue
		}
		events = append(events, c.toolUse(tc)...)
	}

	if r.Done {
		events = append(events, c.finish(r)...)
	}
	return events
}

func (c *StreamConverter) text(s string) []StreamEvent {
	var events []StreamEvent
	if !c.textOpen {
		c.textOpen = true
		events = append(events, c.blockStart(ContentBlock{Type: "text", Text: ptr("")}))
	}
	return append(events, c.blockDelta(Delta{Type: "text_delta", Text: s}))
}

func (c *StreamConverter) toolUse(tc api.ToolCall) []StreamEvent {
	args, err := json.Marshal(tc.Function.Arguments)
	if err != nil {
		slog.Error("failed to marshal tool arguments", "error", err, "tool_id", tc.ID)
		return nil
	}

	events := c.closeText()
	events = append(events,
		c.blockStart(ContentBlock{Type: "tool_use", ID: tc.ID, Name: tc.Function.Name, Input: map[string]any{}}),
		c.blockDelta(Delta{Type: "input_json_delta", PartialJSON: string(args)}),
		c.blockStop(),
	)
	c.sent[tc.ID] = true
	c.index++
	return events
}

func (c *StreamConverter) finish(r api.ChatResponse) []StreamEvent {
	events := c.closeText()
	return append(events,
		StreamEvent{"message_delta", MessageDeltaEvent{
			Type:  "message_delta",
			Delta: MessageDelta{StopReason: mapStopReason(r.DoneReason, len(c.sent) > 0)},
			Usage: DeltaUsage{OutputTokens: r.Metrics.EvalCount},
		}},
		StreamEvent{"message_stop", MessageStopEvent{Type: "message_stop"}},
	)
}

func (c *StreamConverter) closeText() []StreamEvent {
	if !c.textOpen {
		return nil
	}
	c.textOpen = false
	ev := c.blockStop()
	c.index++
	return []StreamEvent{ev}
}

func (c *StreamConverter) blockStart(b ContentBlock) StreamEvent {
	return StreamEvent{"content_block_start", ContentBlockStartEvent{Type: "content_block_start", Index: c.index, ContentBlock: b}}
}

func (c *StreamConverter) blockDelta(d Delta) StreamEvent {
	return StreamEvent{"content_block_delta", ContentBlockDeltaEvent{Type: "content_block_delta", Index: c.index, Delta: d}}
}

func (c *StreamConverter) blockStop() StreamEvent {
	return StreamEvent{"content_block_stop", ContentBlockStopEvent{Type: "content_block_stop", Index: c.index}}
}
