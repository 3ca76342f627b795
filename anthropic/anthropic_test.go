package anthropic

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/toolfence/api"
)

func TestFromMessagesRequest(t *testing.T) {
	var req MessagesRequest
	body := `{
		"model": "m",
		"max_tokens": 128,
		"system": [{"type": "text", "text": "Sei knapp."}],
		"stop_sequences": ["\n\nHuman:"],
		"tools": [{"name": "get_weather", "description": "Wetter", "input_schema": {"type": "object", "properties": {"city": {"type": "string"}}}}],
		"messages": [
			{"role": "user", "content": "Wetter in Berlin?"},
			{"role": "assistant", "content": [
				{"type": "text", "text": "Moment."},
				{"type": "tool_use", "id": "toolu_1", "name": "get_weather", "input": {"city": "Berlin"}}
			]},
			{"role": "user", "content": [
				{"type": "tool_result", "tool_use_id": "toolu_1", "content": [{"type": "text", "text": "21 Grad"}]}
			]}
		]
	}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}

	got, err := FromMessagesRequest(req)
	if err != nil {
		t.Fatal(err)
	}

	roles := make([]string, len(got.Messages))
	for i, m := range got.Messages {
		roles[i] = m.Role
	}
	if diff := cmp.Diff([]string{"system", "user", "assistant", "tool"}, roles); diff != "" {
		t.Fatalf("Rollen (-want +got):\n%s", diff)
	}

	assistant := got.Messages[2]
	if assistant.Content != "Moment." || len(assistant.ToolCalls) != 1 {
		t.Fatalf("assistant = %+v", assistant)
	}
	if city, _ := assistant.ToolCalls[0].Function.Arguments.Get("city"); city != "Berlin" {
		t.Errorf("city = %v", city)
	}

	result := got.Messages[3]
	if result.Content != "21 Grad" || result.ToolCallID != "toolu_1" || result.ToolName != "get_weather" {
		t.Errorf("tool result = %+v", result)
	}

	if len(got.Tools) != 1 || got.Tools[0].Function.Name != "get_weather" {
		t.Errorf("Tools = %v", got.Tools)
	}
	if _, ok := got.Tools[0].Function.Parameters.Properties.Get("city"); !ok {
		t.Error("input_schema Properties fehlen")
	}

	if got.Options["num_predict"] != 128 {
		t.Errorf("num_predict = %v", got.Options["num_predict"])
	}
	if got.Stream == nil || *got.Stream {
		t.Error("Stream muss false sein")
	}
}

func TestFromMessagesRequestErrors(t *testing.T) {
	cases := map[string]string{
		"image":    `[{"type": "image", "source": {"type": "base64", "data": "AA=="}}]`,
		"tool_use": `[{"type": "tool_use", "name": "x"}]`,
		"block":    `["text"]`,
		"number":   `42`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			var req MessagesRequest
			body := `{"model": "m", "messages": [{"role": "user", "content": ` + content + `}]}`
			if err := json.Unmarshal([]byte(body), &req); err != nil {
				t.Fatal(err)
			}
			if _, err := FromMessagesRequest(req); err == nil {
				t.Error("Fehler erwartet")
			}
		})
	}
}

func TestToMessagesResponse(t *testing.T) {
	args := api.NewToolCallFunctionArguments()
	args.Set("city", "Rom")

	r := api.ChatResponse{
		Model:      "m",
		DoneReason: "stop",
		Message: api.Message{
			Role:      "assistant",
			Content:   "Moment.",
			ToolCalls: []api.ToolCall{{ID: "call_0_abcdef12", Function: api.ToolCallFunction{Name: "get_weather", Arguments: args}}},
		},
	}

	got := ToMessagesResponse("msg_1", r)
	if got.StopReason != "tool_use" {
		t.Errorf("StopReason = %q", got.StopReason)
	}
	if len(got.Content) != 2 || got.Content[0].Type != "text" || got.Content[1].Type != "tool_use" {
		t.Fatalf("Content = %+v", got.Content)
	}

	bts, err := json.Marshal(got.Content[1])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bts), `"input":{"city":"Rom"}`) {
		t.Errorf("tool_use = %s", bts)
	}
}

func TestMapStopReason(t *testing.T) {
	cases := []struct {
		reason string
		tools  bool
		want   string
	}{
		{"stop", false, "end_turn"},
		{"length", false, "max_tokens"},
		{"", false, ""},
		{"other", false, "stop_sequence"},
		{"stop", true, "tool_use"},
	}
	for _, tt := range cases {
		if got := mapStopReason(tt.reason, tt.tools); got != tt.want {
			t.Errorf("mapStopReason(%q, %v) = %q, erwartet %q", tt.reason, tt.tools, got, tt.want)
		}
	}
}

func TestStreamConverter(t *testing.T) {
	args := api.NewToolCallFunctionArguments()
	args.Set("city", "Rom")
	call := api.ToolCall{ID: "call_0_abcdef12", Function: api.ToolCallFunction{Name: "get_weather", Arguments: args}}

	c := NewStreamConverter("msg_1", "m")

	var events []string
	for _, r := range []api.ChatResponse{
		{Message: api.Message{Content: "Moment."}},
		{Message: api.Message{ToolCalls: []api.ToolCall{call}}},
		{Message: api.Message{ToolCalls: []api.ToolCall{call}}},
		{Done: true, DoneReason: "stop", Metrics: api.Metrics{EvalCount: 4}},
	} {
		for _, ev := range c.Process(r) {
			events = append(events, ev.Event)
		}
	}

	want := []string{
		"message_start",
		"content_block_start", "content_block_delta", "content_block_stop",
		"content_block_start", "content_block_delta", "content_block_stop",
		"message_delta", "message_stop",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("Events (-want +got):\n%s", diff)
	}
}

func TestNewError(t *testing.T) {
	e := NewError(404, "fehlt")
	if e.Type != "error" || e.Error.Type != "not_found_error" || !strings.HasPrefix(e.RequestID, "req_") {
		t.Errorf("NewError = %+v", e)
	}
}

func TestFromMessagesRequestKeepsArgumentOrder(t *testing.T) {
	var req MessagesRequest
	body := `{"model": "m", "messages": [{"role": "assistant", "content": [
		{"type": "tool_use", "id": "toolu_1", "name": "search", "input": {"query": "go", "limit": 3, "lang": "de"}}
	]}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}

	got, err := FromMessagesRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != 1 || len(got.Messages[0].ToolCalls) != 1 {
		t.Fatalf("Messages = %+v", got.Messages)
	}
	args := got.Messages[0].ToolCalls[0].Function.Arguments
	if s := args.String(); s != `{"query":"go","limit":3,"lang":"de"}` {
		t.Errorf("Argumente = %s", s)
	}
}

func TestFromMessagesRequestInvalidSystem(t *testing.T) {
	req := MessagesRequest{Model: "m", System: 42, Messages: []MessageParam{{Role: "user", Content: "hi"}}}
	if _, err := FromMessagesRequest(req); err == nil {
		t.Error("Fehler fuer system=42 erwartet")
	}
}
