package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "swingscan"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Catalyst-driven swing trade scanner for US/EU equities",
		Version: version,
		Long: `swingscan scans a curated equity watchlist for short-term
catalyst-driven swing setups and emits a ranked opportunity list
(BUY / WATCHLIST / SKIP) with advisory risk parameters.

Signals are advisory only. No orders are ever placed.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (built-in defaults when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newMonitorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogLevel(cmd *cobra.Command) {
	levelStr, _ := cmd.Flags().GetString("log-level")
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
