// cmd_tools.go - Commands rund um die Tool-Call-Erkennung
// Hauptfunktionen: PromptHandler, ParseHandler, ExtractHandler
//
// Alle drei arbeiten lokal, mit --server ueber die API des laufenden Servers.
package cmd

import (
	"cmp"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/envconfig"
	"github.com/7blacky7/toolfence/fence"
	"github.com/7blacky7/toolfence/template"
	"github.com/7blacky7/toolfence/tools"
)

// PromptHandler - Gibt den System-Prompt fuer --tools aus
func PromptHandler(cmd *cobra.Command, _ []string) error {
	tt, err := loadTools(cmd)
	if err != nil {
		return err
	}

	system, err := cmd.Flags().GetString("system")
	if err != nil {
		return err
	}

	useServer, _ := cmd.Flags().GetBool("server")
	prompt := template.SystemPrompt(system, tt)
	if useServer {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}
		resp, err := client.Prompt(cmd.Context(), &api.PromptRequest{System: system, Tools: tt})
		if err != nil {
			return err
		}
		prompt = resp.Prompt
	}

	fmt.Fprintln(cmd.OutOrStdout(), prompt)
	return nil
}

// parseLocal - Fuehrt den Parser ohne Server aus
func parseLocal(text, mode string, tt api.Tools) (*api.ParseResponse, error) {
	m, err := fence.ParseMode(cmp.Or(mode, envconfig.Mode()))
	if err != nil {
		return nil, err
	}

	p := tools.NewParser(m, fence.Options{
		MaxPrefix:     int(envconfig.MaxPrefix()),
		MaxFenceBytes: int(envconfig.MaxFenceBytes()),
	}, tt)
	p.Strict = envconfig.Strict()

	calls, content := p.Add(text)
	drained, rest := p.Drain()

	resp := &api.ParseResponse{
		Content:   content + rest,
		ToolCalls: append(calls, drained...),
		Failed:    p.Failed(),
	}
	if p.Failed() {
		resp.Error = p.Err().Error()
	}
	return resp, nil
}

// ParseHandler - Sucht Tool-Calls in FILE oder stdin
func ParseHandler(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	tt, err := loadTools(cmd)
	if err != nil {
		return err
	}

	mode, err := cmd.Flags().GetString("mode")
	if err != nil {
		return err
	}

	var resp *api.ParseResponse
	if useServer, _ := cmd.Flags().GetBool("server"); useServer {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}
		resp, err = client.Parse(cmd.Context(), &api.ParseRequest{Text: text, Mode: mode, Tools: tt})
		if err != nil {
			return err
		}
	} else {
		resp, err = parseLocal(text, mode, tt)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.Content != "" {
		fmt.Fprintln(out, tools.TextContent(resp.Content))
	}
	if resp.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "tool call detection failed: %s\n", resp.Error)
	}
	if len(resp.ToolCalls) > 0 {
		fmt.Fprintln(out)
		renderToolCalls(out, resp.ToolCalls)
	}
	return nil
}

// ExtractHandler - Gibt eingebettete JSON-Werte zeilenweise aus
func ExtractHandler(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	var values []string
	if useServer, _ := cmd.Flags().GetBool("server"); useServer {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}
		resp, err := client.Extract(cmd.Context(), &api.ExtractRequest{Text: text, All: all})
		if err != nil {
			return err
		}
		for _, v := range resp.Values {
			values = append(values, string(v))
		}
	} else {
		for from := 0; ; {
			value, end, ok := fence.ExtractFrom(text, from)
			if !ok {
				break
			}
			values = append(values, value)
			if !all {
				break
			}
			from = end
		}
	}

	if len(values) == 0 {
		return fmt.Errorf("no JSON value found")
	}

	for _, v := range values {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}
