package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/swingscan/swingscan/internal/catalyst"
	"github.com/swingscan/swingscan/internal/config"
	"github.com/swingscan/swingscan/internal/domain"
	"github.com/swingscan/swingscan/internal/notify"
	"github.com/swingscan/swingscan/internal/providers"
	"github.com/swingscan/swingscan/internal/regime"
	"github.com/swingscan/swingscan/internal/scan"
	"github.com/swingscan/swingscan/internal/store"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one market scan",
		Long: `Resolves the watchlist, fetches quotes through the provider
fallback chain, scores each symbol on five dimensions, and writes the
ranked result to the output artifact.`,
		RunE: runScan,
	}
	addScanFlags(cmd.Flags())
	return cmd
}

func addScanFlags(fs *pflag.FlagSet) {
	fs.String("symbols", "", "Comma-separated ticker override (empty = default watchlist)")
	fs.String("market", "ALL", "Market universe (US|EU|ALL)")
	fs.Bool("force-notify", false, "Mark the payload for notification even without opportunities")
	fs.String("output", "", "Output artifact path (overrides config)")
	fs.Int("earnings-days", 14, "Days ahead to load the earnings calendar")
}

func runScan(cmd *cobra.Command, _ []string) error {
	setupLogLevel(cmd)

	configPath, _ := cmd.Flags().GetString("config")
	symbols, _ := cmd.Flags().GetString("symbols")
	marketFlag, _ := cmd.Flags().GetString("market")
	forceNotify, _ := cmd.Flags().GetBool("force-notify")
	outputPath, _ := cmd.Flags().GetString("output")
	earningsDays, _ := cmd.Flags().GetInt("earnings-days")

	// Configuration errors are fatal before any network call.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outputPath != "" {
		cfg.Output.Path = outputPath
	}

	market := domain.MarketAll
	switch marketFlag {
	case "US":
		market = domain.MarketUS
	case "EU":
		market = domain.MarketEU
	}

	logger := log.Logger
	timeout := cfg.Providers.RequestTimeout()

	// Keyless primary first, then key-gated providers in the order
	// their credentials are present.
	chainProviders := []providers.Provider{providers.NewYahoo(timeout)}
	var finnhub *providers.Finnhub
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		finnhub = providers.NewFinnhub(key, timeout)
		chainProviders = append(chainProviders, finnhub)
	}
	if key := os.Getenv("FMP_API_KEY"); key != "" {
		chainProviders = append(chainProviders, providers.NewFMP(key, timeout))
	}
	chain := providers.NewChain(cfg.Providers, logger, chainProviders...)
	logger.Info().Strs("providers", chain.Providers()).Msg("fallback chain ready")

	ctx := context.Background()

	var catalysts catalyst.Source = catalyst.Empty{}
	if finnhub != nil {
		catalysts = catalyst.LoadCalendar(ctx, finnhub, time.Now(), earningsDays, logger)
	}

	orch := scan.NewOrchestrator(cfg, chain, catalysts, logger,
		scan.WithSnapshot(func(ctx context.Context) domain.MarketSnapshot {
			return regime.Snapshot(ctx, chain, logger)
		}),
	)

	result, err := orch.Run(ctx, scan.Options{
		Override:    symbols,
		HasOverride: cmd.Flags().Changed("symbols"),
		Market:      market,
	})
	if err != nil {
		return err
	}

	sinks := []notify.Sink{notify.NewArtifactSink(cfg.Output.Path)}
	if dsn := cfg.Audit.PostgresDSN; dsn != "" {
		audit, err := store.Open(dsn)
		if err != nil {
			logger.Error().Err(err).Msg("audit store unavailable, continuing without it")
		} else {
			defer audit.Close()
			sinks = append(sinks, audit)
		}
	}
	notify.NewNotifier(logger, sinks...).Publish(ctx, result, forceNotify)

	if result.Status == domain.StatusNoOpportunities {
		logger.Info().Msg("no clear opportunities today")
	}
	return nil
}
