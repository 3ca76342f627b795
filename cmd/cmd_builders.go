// cmd_builders.go - Command-Builder Funktionen
// Hauptfunktionen: newRunCmd, newPromptCmd, newParseCmd, newExtractCmd
package cmd

import (
	"github.com/spf13/cobra"
)

// addToolFlags - Gemeinsame Flags fuer Commands, die Tools lesen
func addToolFlags(cmd *cobra.Command) {
	cmd.Flags().String("tools", "", "File with tool definitions (JSON, YAML or TOML)")
	cmd.Flags().String("tools-format", "", "Format of the tools file: json, yaml or toml (default: by extension)")
}

// newRunCmd - Erstellt den run Command
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:     "run MODEL [PROMPT]",
		Short:   "Chat with a model through the toolfence server",
		Long: `Chat with a model through the toolfence server.

Without PROMPT and with a terminal on stdin, run starts an interactive
session. Input is read line by line: there is no history and no line
editing (arrow keys, Ctrl+R). Type /? inside the session for commands.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    RunHandler,
	}

	addToolFlags(runCmd)
	runCmd.Flags().String("system", "", "System prompt")
	runCmd.Flags().String("mode", "", "Tool call detection mode: fenced or bare")
	runCmd.Flags().Bool("verbose", false, "Show timings for response")
	runCmd.Flags().Bool("nowordwrap", false, "Don't wrap words to the next line automatically")

	return runCmd
}

// newPromptCmd - Erstellt den prompt Command
func newPromptCmd() *cobra.Command {
	promptCmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt that teaches a model the tool call syntax",
		Args:  cobra.NoArgs,
		RunE:  PromptHandler,
	}

	addToolFlags(promptCmd)
	promptCmd.Flags().String("system", "", "Existing system prompt to extend")
	promptCmd.Flags().Bool("server", false, "Ask the running server instead of rendering locally")

	return promptCmd
}

// newParseCmd - Erstellt den parse Command
func newParseCmd() *cobra.Command {
	parseCmd := &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Find tool calls in model output (reads stdin without FILE)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ParseHandler,
	}

	addToolFlags(parseCmd)
	parseCmd.Flags().String("mode", "", "Tool call detection mode: fenced or bare")
	parseCmd.Flags().Bool("json", false, "Print the result as JSON")
	parseCmd.Flags().Bool("server", false, "Parse on the running server instead of locally")

	return parseCmd
}

// newExtractCmd - Erstellt den extract Command
func newExtractCmd() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract [FILE]",
		Short: "Print JSON values embedded in text (reads stdin without FILE)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ExtractHandler,
	}

	extractCmd.Flags().Bool("all", false, "Print every JSON value instead of only the first")
	extractCmd.Flags().Bool("server", false, "Extract on the running server instead of locally")

	return extractCmd
}
