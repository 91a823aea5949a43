// Package config loads and validates the scan configuration. All
// thresholds the scoring logic consumes live here; nothing numeric is
// hardcoded in the evaluators. Validation failures are fatal before
// any network call is made.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Trading   TradingConfig   `yaml:"trading"`
	Filters   FiltersConfig   `yaml:"filters"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Providers ProvidersConfig `yaml:"providers"`
	Scan      ScanConfig      `yaml:"scan"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Audit     AuditConfig     `yaml:"audit"`
	Output    OutputConfig    `yaml:"output"`
}

// TradingConfig holds capital and risk-policy constants.
type TradingConfig struct {
	Capital                    float64 `yaml:"capital"`
	Leverage                   int     `yaml:"leverage"`
	MaxStopLossPct             float64 `yaml:"max_stop_loss_pct"`
	MinRiskReward              float64 `yaml:"min_risk_reward"`
	PositionSizePct            float64 `yaml:"position_size_pct"`
	PositionSizeExceptionalPct float64 `yaml:"position_size_exceptional_pct"`
	MaxConcurrentPositions     int     `yaml:"max_concurrent_positions"`
	TargetPctConservative      float64 `yaml:"target_pct_conservative"`
	TargetPctAggressive        float64 `yaml:"target_pct_aggressive"`
	EntryDiscountPct           float64 `yaml:"entry_discount_pct"`
}

// FiltersConfig is the eligibility pre-filter. Symbols outside these
// bounds are excluded before scoring.
type FiltersConfig struct {
	MinPrice     float64          `yaml:"min_price"`
	MaxPrice     float64          `yaml:"max_price"`
	MinMarketCap float64          `yaml:"min_market_cap"`
	MaxMarketCap float64          `yaml:"max_market_cap"`
	MinBeta      float64          `yaml:"min_beta"`
	MinVolume    VolumeTierConfig `yaml:"min_volume"`
}

// VolumeTierConfig sets the minimum average volume per cap tier.
// Small is below $1B, mid below $10B, large above.
type VolumeTierConfig struct {
	Small float64 `yaml:"small"`
	Mid   float64 `yaml:"mid"`
	Large float64 `yaml:"large"`
}

// ScoringConfig carries every bucket cutoff the evaluator and scorer
// use. Buckets are descending: the first cutoff met wins the highest
// remaining score.
type ScoringConfig struct {
	BuyThreshold       int `yaml:"buy_threshold"`
	WatchlistThreshold int `yaml:"watchlist_threshold"`

	// Catalyst timing: days-to-event cutoffs mapping to scores 5,4,3,2.
	// Beyond the last cutoff (or with no catalyst) the score is 1.
	TimingDays []int `yaml:"catalyst_timing_days"`

	// Technical setup.
	RangeBreakoutPos    float64 `yaml:"range_breakout_pos"`
	RangeUpperPos       float64 `yaml:"range_upper_pos"`
	VolumeStrongRatio   float64 `yaml:"volume_strong_ratio"`
	VolumeElevatedRatio float64 `yaml:"volume_elevated_ratio"`

	// Risk/Reward ratio cutoffs mapping to scores 5,4,3,2; below the
	// last cutoff the score is 1.
	RiskRewardBuckets []float64 `yaml:"risk_reward_buckets"`

	// Fundamental quality proxies.
	GrowthStrong   float64 `yaml:"growth_strong"`
	GrowthPositive float64 `yaml:"growth_positive"`
	MarginStrong   float64 `yaml:"margin_strong"`
	MarginPositive float64 `yaml:"margin_positive"`

	// Catalyst conviction confidence cutoffs mapping to 5,4,3,2.
	ConvictionBuckets []float64 `yaml:"conviction_buckets"`
}

// ProvidersConfig controls the fallback chain.
type ProvidersConfig struct {
	RequestTimeoutSeconds int                  `yaml:"request_timeout_seconds"`
	MaxRetries            int                  `yaml:"max_retries"`
	RetryBackoffMs        int                  `yaml:"retry_backoff_ms"`
	RateLimits            map[string]RateLimit `yaml:"rate_limits"`
}

func (p ProvidersConfig) RequestTimeout() time.Duration {
	return time.Duration(p.RequestTimeoutSeconds) * time.Second
}

func (p ProvidersConfig) RetryBackoff() time.Duration {
	return time.Duration(p.RetryBackoffMs) * time.Millisecond
}

// RateLimit is a token-bucket limit for one provider, cumulative
// across all symbols in a scan.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ScanConfig struct {
	Concurrency    int `yaml:"concurrency"`
	TopN           int `yaml:"top_n"`
	WatchlistTopN  int `yaml:"watchlist_top_n"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

func (s ScanConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// WatchlistConfig is the curated default universe, order preserved.
type WatchlistConfig struct {
	US []string `yaml:"us"`
	EU []string `yaml:"eu"`
}

// AuditConfig enables the optional Postgres scan-history sink.
type AuditConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

type OutputConfig struct {
	Path string `yaml:"path"`
}

// Load reads a YAML config file, applies defaults for absent values,
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration, tuned for catalyst-driven
// swing setups on volatile US equities.
func Default() *Config {
	return &Config{
		Trading: TradingConfig{
			Capital:                    500,
			Leverage:                   5,
			MaxStopLossPct:             10,
			MinRiskReward:              3,
			PositionSizePct:            10,
			PositionSizeExceptionalPct: 15,
			MaxConcurrentPositions:     2,
			TargetPctConservative:      15,
			TargetPctAggressive:        20,
			EntryDiscountPct:           0.5,
		},
		Filters: FiltersConfig{
			MinPrice:     2,
			MaxPrice:     500,
			MinMarketCap: 100e6,
			MaxMarketCap: 100e9,
			MinBeta:      1.5,
			MinVolume: VolumeTierConfig{
				Small: 1_000_000,
				Mid:   750_000,
				Large: 500_000,
			},
		},
		Scoring: ScoringConfig{
			BuyThreshold:        75,
			WatchlistThreshold:  60,
			TimingDays:          []int{7, 14, 21, 30},
			RangeBreakoutPos:    0.80,
			RangeUpperPos:       0.60,
			VolumeStrongRatio:   1.5,
			VolumeElevatedRatio: 1.2,
			RiskRewardBuckets:   []float64{4.0, 3.0, 2.0, 1.5},
			GrowthStrong:        0.25,
			GrowthPositive:      0.10,
			MarginStrong:        0.15,
			MarginPositive:      0.05,
			ConvictionBuckets:   []float64{0.8, 0.6, 0.4, 0.2},
		},
		Providers: ProvidersConfig{
			RequestTimeoutSeconds: 10,
			MaxRetries:            2,
			RetryBackoffMs:        500,
			RateLimits: map[string]RateLimit{
				"yahoo":   {RPS: 2, Burst: 4},
				"finnhub": {RPS: 0.5, Burst: 2},
				"fmp":     {RPS: 0.5, Burst: 2},
			},
		},
		Scan: ScanConfig{
			Concurrency:    4,
			TopN:           5,
			WatchlistTopN:  10,
			TimeoutSeconds: 300,
		},
		Watchlist: WatchlistConfig{
			US: defaultWatchlistUS,
			EU: defaultWatchlistEU,
		},
		Output: OutputConfig{Path: "scan_output.json"},
	}
}

// Validate surfaces configuration errors before any network call.
func (c *Config) Validate() error {
	if c.Trading.Capital <= 0 {
		return fmt.Errorf("config: trading.capital must be positive, got %v", c.Trading.Capital)
	}
	if c.Trading.Leverage < 1 {
		return fmt.Errorf("config: trading.leverage must be >= 1, got %d", c.Trading.Leverage)
	}
	if c.Trading.MinRiskReward <= 0 {
		return fmt.Errorf("config: trading.min_risk_reward must be positive, got %v", c.Trading.MinRiskReward)
	}
	if c.Trading.MaxStopLossPct <= 0 || c.Trading.MaxStopLossPct >= 100 {
		return fmt.Errorf("config: trading.max_stop_loss_pct must be in (0,100), got %v", c.Trading.MaxStopLossPct)
	}
	if c.Trading.MaxConcurrentPositions < 1 {
		return fmt.Errorf("config: trading.max_concurrent_positions must be >= 1, got %d", c.Trading.MaxConcurrentPositions)
	}
	if c.Filters.MinPrice < 0 || c.Filters.MaxPrice <= c.Filters.MinPrice {
		return fmt.Errorf("config: filters price range [%v,%v] is invalid", c.Filters.MinPrice, c.Filters.MaxPrice)
	}
	if c.Filters.MinMarketCap < 0 || c.Filters.MaxMarketCap <= c.Filters.MinMarketCap {
		return fmt.Errorf("config: filters market cap range [%v,%v] is invalid", c.Filters.MinMarketCap, c.Filters.MaxMarketCap)
	}
	if c.Scoring.BuyThreshold <= c.Scoring.WatchlistThreshold {
		return fmt.Errorf("config: scoring.buy_threshold (%d) must exceed watchlist_threshold (%d)",
			c.Scoring.BuyThreshold, c.Scoring.WatchlistThreshold)
	}
	if len(c.Scoring.TimingDays) != 4 {
		return fmt.Errorf("config: scoring.catalyst_timing_days needs 4 cutoffs, got %d", len(c.Scoring.TimingDays))
	}
	if !ascendingInts(c.Scoring.TimingDays) {
		return fmt.Errorf("config: scoring.catalyst_timing_days must be ascending")
	}
	if len(c.Scoring.RiskRewardBuckets) != 4 {
		return fmt.Errorf("config: scoring.risk_reward_buckets needs 4 cutoffs, got %d", len(c.Scoring.RiskRewardBuckets))
	}
	if !descendingFloats(c.Scoring.RiskRewardBuckets) {
		return fmt.Errorf("config: scoring.risk_reward_buckets must be descending")
	}
	if len(c.Scoring.ConvictionBuckets) != 4 {
		return fmt.Errorf("config: scoring.conviction_buckets needs 4 cutoffs, got %d", len(c.Scoring.ConvictionBuckets))
	}
	if !descendingFloats(c.Scoring.ConvictionBuckets) {
		return fmt.Errorf("config: scoring.conviction_buckets must be descending")
	}
	if c.Providers.MaxRetries < 0 {
		return fmt.Errorf("config: providers.max_retries must be >= 0, got %d", c.Providers.MaxRetries)
	}
	if c.Providers.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("config: providers.request_timeout_seconds must be positive, got %d", c.Providers.RequestTimeoutSeconds)
	}
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("config: scan.concurrency must be >= 1, got %d", c.Scan.Concurrency)
	}
	if c.Scan.TopN < 1 {
		return fmt.Errorf("config: scan.top_n must be >= 1, got %d", c.Scan.TopN)
	}
	return nil
}

func ascendingInts(v []int) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}

func descendingFloats(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] >= v[i-1] {
			return false
		}
	}
	return true
}
