// Modul prompt: System-Prompt mit Tool-Beschreibungen und Fence-Syntax
package template

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/7blacky7/toolfence/api"
)

const noDescription = "No description provided."

type promptTool struct {
	Name        string
	Description string
	Parameters  string
}

// SystemPrompt haengt an existing die Tool-Beschreibungen, die Fence-Syntax
// und die Regeln fuer das Modell an. Ohne Tools bleibt existing unveraendert.
// Die Tools erscheinen in der uebergebenen Reihenfolge.
func SystemPrompt(existing string, tools api.Tools) string {
	if len(tools) == 0 {
		return existing
	}

	data := struct {
		System string
		Tools  []promptTool
	}{System: existing}

	for _, tool := range tools {
		desc := strings.TrimSpace(tool.Function.Description)
		if desc == "" {
			desc = noDescription
		}

		params, err := json.MarshalIndent(tool.Function.Parameters, "", "  ")
		if err != nil {
			slog.Warn("invalid tool parameters", "tool", tool.Function.Name, "error", err)
			params = []byte("{}")
		}

		data.Tools = append(data.Tools, promptTool{
			Name:        tool.Function.Name,
			Description: desc,
			Parameters:  string(params),
		})
	}

	s, err := render(toolsOnce(), data)
	if err != nil {
		slog.Error("failed to render tool prompt", "error", err)
		return existing
	}
	return s
}
