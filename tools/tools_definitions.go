// tools_definitions.go - Laden von Tool-Definitionen aus Dateien
// Enthaelt: LoadDefinitions, yamlToJSON, tomlToJSON
//
// Akzeptierte Formen (JSON, YAML oder TOML):
// - Liste von {"type":"function","function":{...}}
// - Liste von {name, description, parameters}
// - Objekt mit Schluessel "tools" und einer der Listen
// - ein einzelnes Tool-Objekt

package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/7blacky7/toolfence/api"
)

// LoadDefinitions liest Tool-Definitionen aus r. format ist "json", "yaml",
// "toml" oder leer (automatische Erkennung: JSON oder YAML).
func LoadDefinitions(r io.Reader, format string) (api.Tools, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	switch strings.ToLower(format) {
	case "":
		if data[0] != '[' && data[0] != '{' {
			if data, err = yamlToJSON(data); err != nil {
				return nil, err
			}
		}
	case "json":
	case "yaml", "yml":
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	case "toml":
		if data, err = tomlToJSON(data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown tool definition format %q", format)
	}

	items, err := definitionItems(data)
	if err != nil {
		return nil, err
	}

	tools := make(api.Tools, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		tool, err := decodeDefinition(item)
		if err != nil {
			return nil, fmt.Errorf("tool %d: %w", i, err)
		}
		if seen[tool.Function.Name] {
			return nil, fmt.Errorf("tool %d: duplicate name %q", i, tool.Function.Name)
		}
		seen[tool.Function.Name] = true
		tools = append(tools, tool)
	}
	return tools, nil
}

func definitionItems(data []byte) ([]json.RawMessage, error) {
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var wrapper struct {
		Tools []json.RawMessage `json:"tools"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Tools != nil {
		return wrapper.Tools, nil
	}
	return []json.RawMessage{data}, nil
}

func decodeDefinition(item json.RawMessage) (api.Tool, error) {
	var def struct {
		Type        string                     `json:"type"`
		Function    *api.ToolFunction          `json:"function"`
		Name        string                     `json:"name"`
		Description string                     `json:"description"`
		Parameters  api.ToolFunctionParameters `json:"parameters"`
	}
	if err := json.Unmarshal(item, &def); err != nil {
		return api.Tool{}, err
	}

	tool := api.Tool{Type: def.Type}
	if tool.Type == "" {
		tool.Type = "function"
	}

	switch {
	case def.Function != nil:
		tool.Function = *def.Function
	default:
		tool.Function = api.ToolFunction{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		}
	}

	if tool.Function.Name == "" {
		return api.Tool{}, errors.New("missing name")
	}
	if tool.Function.Parameters.Type == "" {
		tool.Function.Parameters.Type = "object"
	}
	return tool, nil
}

// yamlToJSON wandelt YAML in JSON um und behaelt dabei die Reihenfolge der
// Schluessel (Properties erscheinen im Prompt in Dateireihenfolge).
func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeNode(&buf, &doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tomlToJSON wandelt ein TOML-Dokument in JSON um. TOML-Tabellen haben
// keine Reihenfolge, Properties erscheinen daher alphabetisch sortiert.
func tomlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func writeNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNode(buf, n.Content[0])
	case yaml.AliasNode:
		return writeNode(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNode(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, child := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		bts, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		buf.Write(bts)
	default:
		return fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
	return nil
}
