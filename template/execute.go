// Modul execute: Gespraechsverlauf als Completion-Prompt rendern
package template

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/7blacky7/toolfence/api"
)

type Values struct {
	Messages []api.Message
	api.Tools
}

// Execute rendert den Verlauf. System-Nachrichten werden zusammengefasst und
// um den Tool-Prompt ergaenzt, Tool-Calls des Assistenten erscheinen wieder
// als Fence-Bloecke.
func (t *Template) Execute(w io.Writer, v Values) error {
	system, messages := collate(v.Messages)
	return t.Template.Execute(w, map[string]any{
		"System":   SystemPrompt(system, v.Tools),
		"Messages": convertMessages(messages),
		"Tools":    v.Tools,
	})
}

// Chat rendert den Verlauf mit dem eingebauten Template.
func Chat(messages []api.Message, tools api.Tools) (string, error) {
	var b strings.Builder
	if err := DefaultChat().Execute(&b, Values{Messages: messages, Tools: tools}); err != nil {
		return "", err
	}
	return b.String(), nil
}

// collate sammelt alle System-Nachrichten und fasst aufeinanderfolgende
// Nachrichten derselben Rolle zusammen (ausser Tool-Ergebnissen).
func collate(msgs []api.Message) (string, []api.Message) {
	var system []string
	var collated []api.Message
	for _, m := range msgs {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}

		if n := len(collated); n > 0 && collated[n-1].Role == m.Role && m.Role != "tool" {
			last := &collated[n-1]
			switch {
			case last.Content == "":
				last.Content = m.Content
			case m.Content != "":
				last.Content += "\n\n" + m.Content
			}
			last.ToolCalls = append(last.ToolCalls, m.ToolCalls...)
			continue
		}

		m.ToolCalls = append([]api.ToolCall(nil), m.ToolCalls...)
		collated = append(collated, m)
	}

	return strings.Join(system, "\n\n"), collated
}

type templateToolCall struct {
	ID        string
	Name      string
	Arguments string

	// JSON ist der Call so, wie das Modell ihn schreiben soll.
	JSON string
}

type templateMessage struct {
	Role       string
	Content    string
	ToolCalls  []templateToolCall
	ToolName   string
	ToolCallID string
}

func convertMessages(messages []api.Message) []templateMessage {
	result := make([]templateMessage, len(messages))
	for i, msg := range messages {
		var calls []templateToolCall
		for _, tc := range msg.ToolCalls {
			name, _ := json.Marshal(tc.Function.Name)
			args := tc.Function.Arguments.String()
			calls = append(calls, templateToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: args,
				JSON:      fmt.Sprintf(`{"name": %s, "arguments": %s}`, name, args),
			})
		}
		result[i] = templateMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCalls:  calls,
			ToolName:   msg.ToolName,
			ToolCallID: msg.ToolCallID,
		}
	}
	return result
}
