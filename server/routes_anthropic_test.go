package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/7blacky7/toolfence/anthropic"
)

const messagesBody = `{
	"model": "test",
	"max_tokens": 64,
	"stream": %s,
	"tools": [{"name": "get_weather", "input_schema": {"type": "object", "properties": {"city": {"type": "string"}}}}],
	"messages": [{"role": "user", "content": "Wie ist das Wetter in Rom?"}]
}`

func messagesRequest(stream bool) string {
	return fmt.Sprintf(messagesBody, strconv.FormatBool(stream))
}

type sseEvent struct {
	Event string
	Data  json.RawMessage
}

func readSSE(t *testing.T, body []byte) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.Data = json.RawMessage(strings.TrimPrefix(line, "data: "))
		case line == "" && cur.Event != "":
			events = append(events, cur)
			cur = sseEvent{}
		}
	}
	return events
}

func TestAnthropicMessagesStream(t *testing.T) {
	fake := &fakeCompleter{chunks: []string{
		"Moment.\n```tool_call\n{\"name\": \"get_weather\", ",
		"\"arguments\": {\"city\": \"Rom\"}}\n```",
	}}
	h := newTestRouter(t, fake)

	w := doRequest(t, h, http.MethodPost, "/v1/messages", messagesRequest(true))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/event-stream", w.Header.Get("Content-Type"))

	events := readSSE(t, w.Body)
	require.NotEmpty(t, events)
	require.Equal(t, "message_start", events[0].Event)
	require.Equal(t, "message_stop", events[len(events)-1].Event)

	var toolStart anthropic.ContentBlockStartEvent
	var toolInput string
	var delta anthropic.MessageDeltaEvent
	for _, ev := range events {
		switch ev.Event {
		case "content_block_start":
			var e anthropic.ContentBlockStartEvent
			require.NoError(t, json.Unmarshal(ev.Data, &e))
			if e.ContentBlock.Type == "tool_use" {
				toolStart = e
			}
		case "content_block_delta":
			var e anthropic.ContentBlockDeltaEvent
			require.NoError(t, json.Unmarshal(ev.Data, &e))
			if e.Delta.Type == "input_json_delta" {
				toolInput += e.Delta.PartialJSON
			}
		case "message_delta":
			require.NoError(t, json.Unmarshal(ev.Data, &delta))
		}
	}

	require.Equal(t, "get_weather", toolStart.ContentBlock.Name)
	require.True(t, strings.HasPrefix(toolStart.ContentBlock.ID, "call_"))
	require.JSONEq(t, `{"city": "Rom"}`, toolInput)
	require.Equal(t, "tool_use", delta.Delta.StopReason)

	// max_tokens wird zu num_predict
	require.Equal(t, 64, fake.got.Options.NumPredict)
}

func TestAnthropicMessagesNonStreaming(t *testing.T) {
	fake := &fakeCompleter{chunks: []string{"Es ist sonnig."}}
	h := newTestRouter(t, fake)

	w := doRequest(t, h, http.MethodPost, "/v1/messages", messagesRequest(false))
	require.Equal(t, http.StatusOK, w.Code)

	var resp anthropic.MessagesResponse
	require.NoError(t, json.Unmarshal(w.Body, &resp))
	require.Equal(t, "message", resp.Type)
	require.True(t, strings.HasPrefix(resp.ID, "msg_"))
	require.Equal(t, "end_turn", resp.StopReason)
	require.Len(t, resp.Content, 1)
	require.Equal(t, "text", resp.Content[0].Type)
	require.Equal(t, "Es ist sonnig.", *resp.Content[0].Text)
}

func TestAnthropicMessagesErrors(t *testing.T) {
	h := newTestRouter(t, &fakeCompleter{})

	w := doRequest(t, h, http.MethodPost, "/v1/messages", `{"model": "test", "messages": []}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp anthropic.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body, &resp))
	require.Equal(t, "error", resp.Type)
	require.Equal(t, "invalid_request_error", resp.Error.Type)
}
