package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parishworks/sexton/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sextonctl",
		Short: "Operator CLI for the Sexton conversion service",
		Long: `sextonctl talks to a running Sexton server: enqueue page and post
conversions, inspect queued jobs, and watch a subject's conversion
records until they settle.`,
	}

	rootCmd.AddCommand(cli.ConvertCmd())
	rootCmd.AddCommand(cli.JobCmd())
	rootCmd.AddCommand(cli.WatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
