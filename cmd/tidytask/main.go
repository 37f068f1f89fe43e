package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidytask/tidytask/cmd/tidytask/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tidytask",
		Short: "Local task manager",
		Long:  "CLI for managing todos and folders against the local tidytask store",
	}

	rootCmd.AddCommand(commands.NewAddCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewDoneCmd())
	rootCmd.AddCommand(commands.NewRemoveCmd())
	rootCmd.AddCommand(commands.NewStatsCmd())
	rootCmd.AddCommand(commands.NewFolderCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
