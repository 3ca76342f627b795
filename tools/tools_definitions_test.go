package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefinitions(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		want   []string
	}{
		{
			name:   "OpenAI-Form",
			format: "json",
			input:  `[{"type":"function","function":{"name":"get_weather","description":"Wetter","parameters":{"type":"object","properties":{"city":{"type":"string"}}}}}]`,
			want:   []string{"get_weather"},
		},
		{
			name:  "Flache Form mit tools-Schluessel",
			input: `{"tools":[{"name":"a"},{"name":"b","description":"B"}]}`,
			want:  []string{"a", "b"},
		},
		{
			name:  "Einzelnes Tool",
			input: `{"name":"solo"}`,
			want:  []string{"solo"},
		},
		{
			name: "YAML automatisch",
			input: `
- name: search
  description: Websuche
  parameters:
    type: object
    properties:
      query:
        type: string
      limit:
        type: integer
`,
			want: []string{"search"},
		},
		{
			name:   "TOML",
			format: "toml",
			input: `
[[tools]]
name = "search"
description = "Websuche"

[tools.parameters]
type = "object"
required = ["query"]

[tools.parameters.properties.query]
type = "string"

[[tools]]
name = "fetch"
`,
			want: []string{"search", "fetch"},
		},
		{
			name:   "Leer",
			format: "yaml",
			input:  "   ",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools, err := LoadDefinitions(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("LoadDefinitions: %v", err)
			}
			var names []string
			for _, tool := range tools {
				names = append(names, tool.Function.Name)
				if tool.Type != "function" || tool.Function.Parameters.Type != "object" {
					t.Errorf("Defaults fehlen: %+v", tool)
				}
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("Namen (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadDefinitionsYAMLKeepsPropertyOrder(t *testing.T) {
	input := `
tools:
  - name: search
    parameters:
      type: object
      required: [query]
      properties:
        query: {type: string, description: Suchbegriff}
        limit: {type: integer}
        lang: {type: [string, "null"]}
`
	tools, err := LoadDefinitions(strings.NewReader(input), "yml")
	if err != nil {
		t.Fatal(err)
	}

	var keys []string
	for k := range tools[0].Function.Parameters.Properties.All() {
		keys = append(keys, k)
	}
	if diff := cmp.Diff([]string{"query", "limit", "lang"}, keys); diff != "" {
		t.Errorf("Reihenfolge (-want +got):\n%s", diff)
	}

	lang, _ := tools[0].Function.Parameters.Properties.Get("lang")
	if diff := cmp.Diff([]string{"string", "null"}, []string(lang.Type)); diff != "" {
		t.Errorf("Typ-Liste (-want +got):\n%s", diff)
	}

	bts, err := json.Marshal(tools[0].Function.Parameters)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"object","required":["query"],"properties":{"query":{"type":"string","description":"Suchbegriff"},"limit":{"type":"integer"},"lang":{"type":["string","null"]}}}`
	if string(bts) != want {
		t.Errorf("JSON = %s", bts)
	}
}

func TestLoadDefinitionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
	}{
		{"Ohne Namen", "json", `[{"description":"x"}]`},
		{"Doppelter Name", "json", `[{"name":"a"},{"name":"a"}]`},
		{"Kaputtes JSON", "json", `[{"name":`},
		{"Kaputtes YAML", "yaml", "- name: [a"},
		{"Kaputtes TOML", "toml", `[[tools]`},
		{"Unbekanntes Format", "xml", `<tool/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadDefinitions(strings.NewReader(tt.input), tt.format); err == nil {
				t.Error("Erwartete Fehler")
			}
		})
	}
}
