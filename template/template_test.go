package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/fence"
)

func weatherTool(desc string) api.Tool {
	props := api.NewToolPropertiesMap()
	props.Set("city", api.ToolProperty{Type: api.PropertyType{"string"}, Description: "Stadt"})
	props.Set("unit", api.ToolProperty{Type: api.PropertyType{"string"}, Enum: []any{"c", "f"}})

	return api.Tool{
		Type: "function",
		Function: api.ToolFunction{
			Name:        "get_weather",
			Description: desc,
			Parameters: api.ToolFunctionParameters{
				Type:       "object",
				Required:   []string{"city"},
				Properties: props,
			},
		},
	}
}

func TestSystemPromptEmpty(t *testing.T) {
	if got := SystemPrompt("", nil); got != "" {
		t.Errorf("Leere Eingaben: %q", got)
	}
	if got := SystemPrompt("Sei kurz.", nil); got != "Sei kurz." {
		t.Errorf("Ohne Tools muss der Prompt unveraendert bleiben: %q", got)
	}
}

func TestSystemPromptOrder(t *testing.T) {
	got := SystemPrompt("", api.Tools{weatherTool("")})

	if !strings.HasPrefix(got, "# Tools\n") {
		t.Errorf("Prompt beginnt nicht mit der Tool-Ueberschrift:\n%s", got)
	}

	// Name, Beschreibung, Beispiel, Regel in dieser Reihenfolge
	markers := []string{
		"## get_weather",
		noDescription,
		fence.ToolCallTag + "\n{\"name\": \"tool_name\"",
		"Request only one tool call at a time",
		"Use the exact tool and parameter names",
	}
	last := -1
	for _, m := range markers {
		i := strings.Index(got, m)
		if i == -1 {
			t.Fatalf("%q fehlt im Prompt:\n%s", m, got)
		}
		if i <= last {
			t.Errorf("%q steht an falscher Stelle", m)
		}
		last = i
	}

	params := "{\n  \"type\": \"object\",\n  \"required\": [\n    \"city\"\n  ],\n  \"properties\": {\n    \"city\": {\n      \"type\": \"string\",\n      \"description\": \"Stadt\"\n    },\n    \"unit\": {\n      \"type\": \"string\",\n      \"enum\": [\n        \"c\",\n        \"f\"\n      ]\n    }\n  }\n}"
	if !strings.Contains(got, "Parameters:\n"+params+"\n") {
		t.Errorf("Parameter fehlen oder sind falsch eingerueckt:\n%s", got)
	}
}

func TestSystemPromptExistingAndOrder(t *testing.T) {
	search := api.Tool{Type: "function", Function: api.ToolFunction{Name: "search", Description: "Websuche"}}
	got := SystemPrompt("Du bist hilfreich.", api.Tools{search, weatherTool("Aktuelles Wetter")})

	if !strings.HasPrefix(got, "Du bist hilfreich.\n\n# Tools\n") {
		t.Errorf("Bestehender Prompt muss vorne stehen:\n%s", got)
	}
	if strings.Index(got, "## search") > strings.Index(got, "## get_weather") {
		t.Error("Tools muessen in Eingabereihenfolge erscheinen")
	}
	if strings.Contains(got, noDescription) {
		t.Error("Fallback-Beschreibung trotz vorhandener Beschreibung")
	}
	if got != SystemPrompt("Du bist hilfreich.", api.Tools{search, weatherTool("Aktuelles Wetter")}) {
		t.Error("SystemPrompt ist nicht deterministisch")
	}
}

func TestChat(t *testing.T) {
	args := api.NewToolCallFunctionArguments()
	args.Set("city", "Berlin")

	messages := []api.Message{
		{Role: "system", Content: "Du bist hilfreich."},
		{Role: "user", Content: "Wetter?"},
		{Role: "assistant", Content: "Moment.", ToolCalls: []api.ToolCall{{ID: "call_1", Function: api.ToolCallFunction{Name: "get_weather", Arguments: args}}}},
		{Role: "tool", Content: "22 Grad", ToolName: "get_weather"},
	}

	got, err := Chat(messages, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := "### System\nDu bist hilfreich.\n\n" +
		"### User\nWetter?\n\n" +
		"### Assistant\nMoment.\n```tool_call\n{\"name\": \"get_weather\", \"arguments\": {\"city\":\"Berlin\"}}\n```\n\n" +
		"### Tool result (get_weather)\n22 Grad\n\n" +
		"### Assistant\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transkript falsch (-want +got):\n%s", diff)
	}

	payload, ok := fence.Extract(got)
	if !ok || payload != `{"name": "get_weather", "arguments": {"city":"Berlin"}}` {
		t.Errorf("Tool-Call im Transkript nicht wieder lesbar: %q", payload)
	}
}

func TestChatWithTools(t *testing.T) {
	got, err := Chat([]api.Message{{Role: "user", Content: "Hi"}}, api.Tools{weatherTool("")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "### System\n# Tools\n") {
		t.Errorf("Tool-Prompt fehlt im System-Abschnitt:\n%s", got)
	}
	if !strings.HasSuffix(got, "### User\nHi\n\n### Assistant\n") {
		t.Errorf("Verlauf fehlt:\n%s", got)
	}
}

func TestCollate(t *testing.T) {
	system, msgs := collate([]api.Message{
		{Role: "system", Content: "A"},
		{Role: "user", Content: "eins"},
		{Role: "user", Content: "zwei"},
		{Role: "system", Content: "B"},
		{Role: "tool", Content: "r1"},
		{Role: "tool", Content: "r2"},
	})

	if system != "A\n\nB" {
		t.Errorf("System = %q", system)
	}

	var got []string
	for _, m := range msgs {
		got = append(got, m.Role+":"+m.Content)
	}
	if diff := cmp.Diff([]string{"user:eins\n\nzwei", "tool:r1", "tool:r2"}, got); diff != "" {
		t.Errorf("Nachrichten (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("{{ .Prompt }}"); !errors.Is(err, errNoMessages) {
		t.Errorf("Template ohne .Messages: %v", err)
	}
	if _, err := Parse("{{ range .Messages }"); err == nil {
		t.Error("Syntaxfehler erwartet")
	}

	tmpl, err := Parse("{{ .System }}|{{ range .Messages }}{{ .Role }}={{ .Content }};{{ end }}")
	if err != nil {
		t.Fatal(err)
	}

	vars, err := tmpl.Vars()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"content", "messages", "role", "system"}, vars); diff != "" {
		t.Errorf("Vars (-want +got):\n%s", diff)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, Values{Messages: []api.Message{{Role: "system", Content: "S"}, {Role: "user", Content: "U"}}}); err != nil {
		t.Fatal(err)
	}
	if b.String() != "S|user=U;" {
		t.Errorf("Ausgabe = %q", b.String())
	}
}
