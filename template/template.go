// Package template rendert System-Prompt und Gespraechsverlauf fuer
// Completion-Modelle ohne eigenes Tool-Calling.
//
// Modul template: Parsing, eingebettete Templates und Template-Funktionen
package template

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"text/template"

	"github.com/7blacky7/toolfence/fence"
)

//go:embed tools.gotmpl
var toolsTemplate string

//go:embed chat.gotmpl
var chatTemplate string

var funcs = template.FuncMap{
	"json": func(v any) string {
		b, _ := json.Marshal(v)
		return string(b)
	},
	"toolCallTag": func() string { return fence.ToolCallTag },
	"endMarker":   func() string { return fence.EndMarker },
}

var (
	toolsOnce = sync.OnceValue(func() *template.Template {
		return template.Must(template.New("tools").Funcs(funcs).Parse(normalize(toolsTemplate)))
	})

	// DefaultStop beendet die Generierung, sobald das Modell im eingebauten
	// Format einen neuen Sprecher beginnt.
	DefaultStop = []string{"\n### User", "\n### Tool result", "\n### System"}

	// DefaultChat ist das eingebaute Transkript-Format.
	DefaultChat = sync.OnceValue(func() *Template {
		t, err := Parse(normalize(chatTemplate))
		if err != nil {
			panic(err)
		}
		return t
	})
)

// normalize line endings
func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

type Template struct {
	*template.Template
	raw string
}

var errNoMessages = errors.New("chat template must use .Messages")

// Parse parst ein Chat-Template. Das Template muss ueber .Messages laufen,
// sonst waere der Verlauf nicht im Prompt.
func Parse(s string) (*Template, error) {
	tmpl, err := template.New("").Option("missingkey=zero").Funcs(funcs).Parse(s)
	if err != nil {
		return nil, err
	}

	t := Template{Template: tmpl, raw: s}
	vars, err := t.Vars()
	if err != nil {
		return nil, err
	}

	if !slices.Contains(vars, "messages") {
		return nil, errNoMessages
	}

	return &t, nil
}

func (t *Template) String() string {
	return t.raw
}

// Vars gibt alle im Template verwendeten Bezeichner (klein geschrieben,
// sortiert) zurueck.
func (t *Template) Vars() ([]string, error) {
	set := make(map[string]struct{})
	for _, tt := range t.Templates() {
		if tt.Tree == nil {
			continue
		}
		names, err := identifiers(tt.Root)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			set[strings.ToLower(n)] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(set)), nil
}

func render(t *template.Template, data any) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
