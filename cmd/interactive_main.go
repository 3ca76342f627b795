// interactive_main.go - Hauptloop fuer den interaktiven Modus
// Verarbeitet Benutzereingaben und fuehrt den Chat-Verlauf
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/7blacky7/toolfence/api"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Available Commands:")
	fmt.Fprintln(w, "  /result NAME TEXT   Answer the last tool call of NAME with TEXT")
	fmt.Fprintln(w, "  /tools              List the available tools")
	fmt.Fprintln(w, "  /clear              Clear session context")
	fmt.Fprintln(w, "  /bye                Exit")
	fmt.Fprintln(w, "  /?, /help           Help for a command")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Input is read line by line, without history or line editing.")
	fmt.Fprintln(w, "")
}

// toolResultMessage - Baut die Antwort-Nachricht auf einen Tool-Call.
// Die ID des letzten Calls mit passendem Namen wird uebernommen.
func toolResultMessage(messages []api.Message, name, text string) api.Message {
	msg := api.Message{Role: "tool", ToolName: name, Content: text}
	for i := len(messages) - 1; i >= 0; i-- {
		for _, tc := range messages[i].ToolCalls {
			if tc.Function.Name == name {
				msg.ToolCallID = tc.ID
				return msg
			}
		}
	}
	return msg
}

// generateInteractive startet den interaktiven Chat-Modus
func generateInteractive(cmd *cobra.Command, opts runOptions) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	system := 0
	if len(opts.Messages) > 0 && opts.Messages[0].Role == "system" {
		system = 1
	}

	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/bye":
			return nil
		case line == "/?" || line == "/help":
			usage(out)
			continue
		case line == "/clear":
			opts.Messages = opts.Messages[:system]
			fmt.Fprintln(out, "Cleared session context")
			continue
		case line == "/tools":
			if len(opts.Tools) == 0 {
				fmt.Fprintln(out, "No tools loaded. Use --tools FILE.")
			}
			for _, t := range opts.Tools {
				fmt.Fprintf(out, "  %-20s %s\n", t.Function.Name, t.Function.Description)
			}
			continue
		case strings.HasPrefix(line, "/result"):
			args := strings.SplitN(line, " ", 3)
			if len(args) < 3 {
				fmt.Fprintln(out, "Usage: /result NAME TEXT")
				continue
			}
			opts.Messages = append(opts.Messages, toolResultMessage(opts.Messages, args[1], args[2]))
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(out, "Unknown command '%s'. Type /? for help\n", strings.Fields(line)[0])
			continue
		default:
			opts.Messages = append(opts.Messages, api.Message{Role: "user", Content: line})
		}

		assistant, err := chat(cmd, opts)
		if err != nil {
			return err
		}
		if assistant != nil {
			opts.Messages = append(opts.Messages, *assistant)
		}
	}
}
