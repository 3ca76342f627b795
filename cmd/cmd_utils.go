// cmd_utils.go - Hilfsfunktionen fuer die Commands
// Hauptfunktionen: checkServerHeartbeat, readInput, loadTools
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/envconfig"
	"github.com/7blacky7/toolfence/tools"
)

// checkServerHeartbeat - Prueft ob der Server erreichbar ist
func checkServerHeartbeat(cmd *cobra.Command, _ []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}
	if err := client.Heartbeat(cmd.Context()); err != nil {
		if strings.Contains(err.Error(), " refused") || strings.Contains(err.Error(), "could not connect") {
			return fmt.Errorf("toolfence server not responding at %s - start it with 'toolfence serve'", envconfig.Host())
		}
		return err
	}
	return nil
}

// readInput - Liest FILE aus args oder sonst stdin
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		bts, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(bts), nil
	}

	bts, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

// loadTools - Liest die Tool-Definitionen aus --tools
func loadTools(cmd *cobra.Command) (api.Tools, error) {
	path, err := cmd.Flags().GetString("tools")
	if err != nil || path == "" {
		return nil, err
	}

	format, err := cmd.Flags().GetString("tools-format")
	if err != nil {
		return nil, err
	}
	if format == "" {
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".json", ".yaml", ".yml", ".toml":
			format = ext[1:]
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tt, err := tools.LoadDefinitions(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tt, nil
}
