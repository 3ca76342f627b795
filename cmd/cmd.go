// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/7blacky7/toolfence/envconfig"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-26s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "toolfence",
		Short:         "Tool calling for models without native tool support",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	serveCmd := newServeCmd()
	runCmd := newRunCmd()
	promptCmd := newPromptCmd()
	parseCmd := newParseCmd()
	extractCmd := newExtractCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["TOOLFENCE_HOST"]}

	for _, cmd := range []*cobra.Command{
		serveCmd,
		runCmd,
		promptCmd,
		parseCmd,
		extractCmd,
	} {
		switch cmd {
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["TOOLFENCE_DEBUG"],
				envVars["TOOLFENCE_HOST"],
				envVars["TOOLFENCE_ORIGINS"],
				envVars["TOOLFENCE_BACKEND"],
				envVars["TOOLFENCE_UPSTREAM"],
				envVars["TOOLFENCE_MODEL"],
				envVars["TOOLFENCE_MODE"],
				envVars["TOOLFENCE_MAX_PREFIX"],
				envVars["TOOLFENCE_MAX_FENCE_BYTES"],
				envVars["TOOLFENCE_STRICT"],
				envVars["TOOLFENCE_TEMPLATE"],
			})
		case parseCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["TOOLFENCE_HOST"],
				envVars["TOOLFENCE_MODE"],
				envVars["TOOLFENCE_MAX_PREFIX"],
				envVars["TOOLFENCE_MAX_FENCE_BYTES"],
				envVars["TOOLFENCE_STRICT"],
			})
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		runCmd,
		promptCmd,
		parseCmd,
		extractCmd,
	)

	return rootCmd
}
