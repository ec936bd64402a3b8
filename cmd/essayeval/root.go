package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "essayeval",
		Short: "EssayEval - benchmark essay scoring models side by side",
		Long: `EssayEval sends one essay to several automated essay scoring models,
compares their band scores per criterion and exports the comparison as
spreadsheet, PDF or delimited text reports.

Configuration is read from .essayeval.yaml (searched upward from the current
directory), a .env file and ESSAYEVAL_* environment variables.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newGradeCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newModelsCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
