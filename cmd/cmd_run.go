// cmd_run.go - Run Command Handler
// Hauptfunktionen: RunHandler, chat
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/7blacky7/toolfence/api"
)

type runOptions struct {
	Model    string
	Messages []api.Message
	Tools    api.Tools
	Mode     string
	WordWrap bool
	Verbose  bool
	Options  map[string]any
}

// RunHandler - Haupthandler fuer den run Command
func RunHandler(cmd *cobra.Command, args []string) error {
	interactive := true

	opts := runOptions{
		Model:    args[0],
		WordWrap: os.Getenv("TERM") == "xterm-256color",
		Options:  map[string]any{},
	}

	var err error
	if opts.Mode, err = cmd.Flags().GetString("mode"); err != nil {
		return err
	}
	if opts.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return err
	}
	if opts.Tools, err = loadTools(cmd); err != nil {
		return err
	}

	system, err := cmd.Flags().GetString("system")
	if err != nil {
		return err
	}
	if system != "" {
		opts.Messages = append(opts.Messages, api.Message{Role: "system", Content: system})
	}

	prompts := args[1:]
	if f, ok := cmd.InOrStdin().(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		in, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if len(in) > 0 {
			prompts = append([]string{string(in)}, prompts...)
		}
		opts.WordWrap = false
		interactive = false
	}
	if len(prompts) > 0 {
		interactive = false
	}

	nowrap, err := cmd.Flags().GetBool("nowordwrap")
	if err != nil {
		return err
	}
	if nowrap {
		opts.WordWrap = false
	}

	if interactive {
		return generateInteractive(cmd, opts)
	}

	prompt := strings.Join(prompts, " ")
	if prompt == "" {
		return errors.New("no prompt given")
	}

	opts.Messages = append(opts.Messages, api.Message{Role: "user", Content: prompt})
	_, err = chat(cmd, opts)
	return err
}

// chat - Sendet den Verlauf an den Server und zeigt die Antwort an.
// Die Antwort-Nachricht inklusive Tool-Calls wird zurueckgegeben.
func chat(cmd *cobra.Command, opts runOptions) (*api.Message, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	width := 0
	if opts.WordWrap {
		width = terminalWidth()
	}

	var state displayResponseState
	var content strings.Builder
	var toolCalls []api.ToolCall
	var latest api.ChatResponse

	fn := func(resp api.ChatResponse) error {
		latest = resp
		content.WriteString(resp.Message.Content)
		toolCalls = append(toolCalls, resp.Message.ToolCalls...)
		displayResponse(out, resp.Message.Content, width, &state)
		return nil
	}

	req := &api.ChatRequest{
		Model:    opts.Model,
		Messages: opts.Messages,
		Tools:    opts.Tools,
		Mode:     opts.Mode,
		Options:  opts.Options,
	}

	if err := client.Chat(cmd.Context(), req, fn); err != nil {
		if errors.Is(err, cmd.Context().Err()) {
			return nil, nil
		}
		return nil, err
	}

	if content.Len() > 0 {
		fmt.Fprintln(out)
	}

	if latest.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "tool call detection failed: %s\n", latest.FailedReason)
	}

	if len(toolCalls) > 0 {
		fmt.Fprintln(out)
		renderToolCalls(out, toolCalls)
	}

	if opts.Verbose {
		latest.Summary()
	}

	return &api.Message{Role: "assistant", Content: content.String(), ToolCalls: toolCalls}, nil
}
