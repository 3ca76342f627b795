// tools_calls.go - One-shot Parser fuer Tool-Call-Payloads
// Enthaelt: Result, ParseCalls, parseCandidate, newCallID

package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/fence"
)

// Result ist das Ergebnis von ParseCalls.
type Result struct {
	Calls []api.ToolCall

	// TextContent ist die Eingabe ohne Fence-Bloecke, fuer die Anzeige
	// neben den Tool-Calls.
	TextContent string
}

var callCounter atomic.Uint64

// newCallID erzeugt eine prozessweit eindeutige ID im Format call_<n>_<hex>.
func newCallID() string {
	n := callCounter.Add(1)
	return fmt.Sprintf("call_%d_%s", n, uuid.NewString()[:8])
}

// ParseCalls sucht in allen Bloecken nach Tool-Call-Objekten. Ein Block
// darf ein Objekt, ein Array von Objekten oder mehrere Objekte
// hintereinander enthalten. Kandidaten ohne Namen werden verworfen, ohne
// die uebrigen zu beeinflussen.
func ParseCalls(blocks ...string) Result {
	var res Result
	for _, block := range blocks {
		for pos := 0; pos < len(block); {
			value, end, ok := fence.ExtractFrom(block, pos)
			if !ok {
				break
			}
			pos = end

			for _, candidate := range expand(value) {
				call, ok := parseCandidate(candidate)
				if !ok {
					continue
				}
				call.Function.Index = len(res.Calls)
				res.Calls = append(res.Calls, call)
			}
		}
	}

	res.TextContent = TextContent(strings.Join(blocks, "\n\n"))
	return res
}

// expand zerlegt ein JSON-Array in seine Elemente.
func expand(value string) []json.RawMessage {
	if value[0] != '[' {
		return []json.RawMessage{json.RawMessage(value)}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(value), &elems); err != nil {
		return nil
	}
	return elems
}

func parseCandidate(raw json.RawMessage) (api.ToolCall, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return api.ToolCall{}, false
	}

	var name string
	if err := json.Unmarshal(obj["name"], &name); err != nil || name == "" {
		// {"type":"function","function":{...}}
		if inner, ok := obj["function"]; ok {
			call, ok := parseCandidate(inner)
			if ok {
				if id := stringField(obj, "id"); id != "" {
					call.ID = id
				}
			}
			return call, ok
		}
		return api.ToolCall{}, false
	}

	id := stringField(obj, "id")
	if id == "" {
		id = newCallID()
	}

	return api.ToolCall{
		ID: id,
		Function: api.ToolCallFunction{
			Name:      name,
			Arguments: findArguments(obj),
		},
	}, true
}

func stringField(obj map[string]json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(obj[key], &s); err != nil {
		return ""
	}
	return s
}

// findArguments nimmt das erste Objekt unter arguments, args oder
// parameters. Auch ein String mit einem JSON-Objekt wird akzeptiert.
func findArguments(obj map[string]json.RawMessage) api.ToolCallFunctionArguments {
	for _, key := range []string{"arguments", "args", "parameters"} {
		raw, ok := obj[key]
		if !ok {
			continue
		}

		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				continue
			}
			raw = bytes.TrimSpace([]byte(s))
		}

		if len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
			continue
		}

		args := api.NewToolCallFunctionArguments()
		if err := args.UnmarshalJSON(raw); err != nil {
			continue
		}
		return args
	}

	return api.NewToolCallFunctionArguments()
}
