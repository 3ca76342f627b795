package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/7blacky7/toolfence/cmd"
	"github.com/7blacky7/toolfence/envconfig"
)

func main() {
	if err := envconfig.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}
