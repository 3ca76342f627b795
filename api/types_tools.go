// types_tools.go - Tool Types fuer emuliertes Function Calling
// Enthaelt: Tools, Tool, ToolFunction, ToolFunctionParameters, ToolProperty,
//           PropertyType, ToolCall, ToolCallFunction und die geordneten
//           Maps ToolCallFunctionArguments und ToolPropertiesMap
//
// Argumente und Properties behalten ihre Reihenfolge. Der System-Prompt
// zeigt Parameter so, wie sie definiert wurden, und ein Tool-Call landet
// unveraendert im Verlauf.
package api

import (
	"encoding/json"
	"fmt"
	"iter"

	"github.com/7blacky7/toolfence/internal/orderedmap"
)

// ============================================================================
// Geordnete JSON-Objekte
// ============================================================================

// ordered ist die gemeinsame Basis der geordneten Maps. Der Nullwert ist
// eine leere Map, Set legt sie bei Bedarf an.
type ordered[V any] struct {
	om *orderedmap.Map[string, V]
}

func (o *ordered[V]) Get(key string) (v V, ok bool) {
	if o == nil || o.om == nil {
		return v, false
	}
	return o.om.Get(key)
}

func (o *ordered[V]) Set(key string, value V) {
	if o == nil {
		return
	}
	if o.om == nil {
		o.om = orderedmap.New[string, V]()
	}
	o.om.Set(key, value)
}

func (o *ordered[V]) Len() int {
	if o == nil || o.om == nil {
		return 0
	}
	return o.om.Len()
}

// All liefert die Paare in Einfuegereihenfolge.
func (o *ordered[V]) All() iter.Seq2[string, V] {
	if o == nil || o.om == nil {
		return func(yield func(string, V) bool) {}
	}
	return o.om.All()
}

func (o *ordered[V]) UnmarshalJSON(data []byte) error {
	o.om = orderedmap.New[string, V]()
	return json.Unmarshal(data, o.om)
}

// marshal kodiert die Map, empty steht fuer eine Map ohne Inhalt
func (o ordered[V]) marshal(empty string) ([]byte, error) {
	if o.om == nil {
		return []byte(empty), nil
	}
	return json.Marshal(o.om)
}

// ============================================================================
// Tool-Calls (erkannte Aufrufe im Modell-Output)
// ============================================================================

type ToolCall struct {
	ID       string           `json:"id,omitempty"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	// Index zaehlt die Aufrufe einer Antwort in Erkennungsreihenfolge
	Index     int                       `json:"index"`
	Name      string                    `json:"name"`
	Arguments ToolCallFunctionArguments `json:"arguments"`
}

// ToolCallFunctionArguments haelt die Argumente in der Reihenfolge, in der
// das Modell sie geschrieben hat.
type ToolCallFunctionArguments struct {
	ordered[any]
}

func NewToolCallFunctionArguments() ToolCallFunctionArguments {
	return ToolCallFunctionArguments{ordered[any]{om: orderedmap.New[string, any]()}}
}

// String gibt die Argumente als kompaktes JSON aus, "{}" wenn keine da sind.
func (t *ToolCallFunctionArguments) String() string {
	if t == nil {
		return "{}"
	}
	bts, _ := t.marshal("{}")
	return string(bts)
}

func (t ToolCallFunctionArguments) MarshalJSON() ([]byte, error) {
	return t.marshal("{}")
}

// ============================================================================
// Tool-Definitionen (Eingabe fuer den System-Prompt)
// ============================================================================

type Tools []Tool

func (t Tools) String() string {
	bts, _ := json.Marshal(t)
	return string(bts)
}

// Lookup sucht ein Tool ueber seinen Funktionsnamen.
func (t Tools) Lookup(name string) (Tool, bool) {
	for _, tool := range t {
		if tool.Function.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// Names gibt die Funktionsnamen in Definitionsreihenfolge zurueck.
func (t Tools) Names() []string {
	names := make([]string, 0, len(t))
	for _, tool := range t {
		names = append(names, tool.Function.Name)
	}
	return names
}

type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  ToolFunctionParameters `json:"parameters"`
}

// ToolFunctionParameters ist das JSON-Schema der Argumente. Es wird nur
// im Prompt gezeigt, Payloads werden dagegen nicht validiert.
type ToolFunctionParameters struct {
	Type       string             `json:"type"`
	Defs       any                `json:"$defs,omitempty"`
	Items      any                `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Properties *ToolPropertiesMap `json:"properties"`
}

// PropertyType ist ein einzelner Typ oder eine Liste ("string" oder ["string", "null"])
type PropertyType []string

func (pt *PropertyType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*pt = []string{s}
		return nil
	}

	var a []string
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("property type must be a string or a list of strings: %w", err)
	}
	*pt = a
	return nil
}

func (pt PropertyType) MarshalJSON() ([]byte, error) {
	if len(pt) == 1 {
		return json.Marshal(pt[0])
	}
	return json.Marshal([]string(pt))
}

func (pt PropertyType) String() string {
	switch len(pt) {
	case 0:
		return ""
	case 1:
		return pt[0]
	default:
		return fmt.Sprintf("%v", []string(pt))
	}
}

// ToolPropertiesMap haelt die Properties eines Schemas in Definitionsreihenfolge.
type ToolPropertiesMap struct {
	ordered[ToolProperty]
}

func NewToolPropertiesMap() *ToolPropertiesMap {
	return &ToolPropertiesMap{ordered[ToolProperty]{om: orderedmap.New[string, ToolProperty]()}}
}

// Tools ohne Parameter haben keine Map, darum die nil-sicheren Zugriffe.
func (t *ToolPropertiesMap) Get(key string) (ToolProperty, bool) {
	if t == nil {
		return ToolProperty{}, false
	}
	return t.ordered.Get(key)
}

func (t *ToolPropertiesMap) Len() int {
	if t == nil {
		return 0
	}
	return t.ordered.Len()
}

func (t *ToolPropertiesMap) All() iter.Seq2[string, ToolProperty] {
	if t == nil {
		return func(yield func(string, ToolProperty) bool) {}
	}
	return t.ordered.All()
}

func (t ToolPropertiesMap) MarshalJSON() ([]byte, error) {
	return t.marshal("null")
}

type ToolProperty struct {
	AnyOf       []ToolProperty     `json:"anyOf,omitempty"`
	Type        PropertyType       `json:"type,omitempty"`
	Items       any                `json:"items,omitempty"`
	Description string             `json:"description,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Properties  *ToolPropertiesMap `json:"properties,omitempty"`
}
