package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"Welog/internal/config"
)

var configFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "welog",
		Short: "Operator tools for the Welog frontend",
		Long: `Operator tools for the Welog frontend.

Configuration is read from the environment (API_URL, DATABASE_URL, ...)
and, when --config is given, from that file.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional config file")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newThreadCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
