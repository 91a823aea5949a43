// Package domain holds the canonical entities produced by one market
// scan. Everything here is created fresh per invocation and never
// mutated afterwards.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Market identifies the venue universe a symbol trades in.
type Market string

const (
	MarketUS Market = "US"
	MarketEU Market = "EU"
	// MarketAll selects the combined universe; individual symbols are
	// still tagged US or EU, never ALL.
	MarketAll Market = "ALL"
)

// Symbol is a resolved, immutable ticker identity.
type Symbol struct {
	Ticker string `json:"ticker"`
	Market Market `json:"market"`
}

func NewSymbol(ticker string, market Market) Symbol {
	return Symbol{Ticker: strings.ToUpper(strings.TrimSpace(ticker)), Market: market}
}

func (s Symbol) String() string { return s.Ticker }

// Quote is the normalized snapshot of one symbol from one provider.
// Optional fields are pointers: nil means the provider did not report
// the value, which downstream scoring must tolerate.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Market    Market    `json:"market"`
	Price     float64   `json:"price"`
	PrevClose float64   `json:"prev_close,omitempty"`
	ChangePct float64   `json:"change_pct"`
	Volume    *float64  `json:"volume,omitempty"`
	AvgVolume *float64  `json:"avg_volume,omitempty"`
	MarketCap *float64  `json:"market_cap,omitempty"`
	Beta      *float64  `json:"beta,omitempty"`
	High52W   *float64  `json:"52w_high,omitempty"`
	Low52W    *float64  `json:"52w_low,omitempty"`

	// Fundamentals proxies, present only when the source reports them.
	RevenueGrowth *float64 `json:"revenue_growth,omitempty"`
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// CatalystContext describes a known upcoming event for a symbol.
// A nil context is a valid state and scores at the documented floors.
type CatalystContext struct {
	EventType   string  `json:"event_type"`
	DaysToEvent int     `json:"days_to_event"`
	Confidence  float64 `json:"confidence"` // 0..1
}

// Dimension indexes one of the five scoring dimensions, in fixed order.
type Dimension int

const (
	DimCatalystTiming Dimension = iota
	DimTechnicalSetup
	DimRiskReward
	DimFundamentalQuality
	DimCatalystConviction

	NumDimensions = 5
)

var dimensionNames = [NumDimensions]string{
	"catalyst_timing",
	"technical_setup",
	"risk_reward",
	"fundamental_quality",
	"catalyst_conviction",
}

func (d Dimension) String() string {
	if d < 0 || int(d) >= NumDimensions {
		return fmt.Sprintf("dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// Dimensions holds the five dimension scores, each in [1,5].
type Dimensions [NumDimensions]int

// Sum returns the raw sum, range [5,25] for valid dimensions.
func (d Dimensions) Sum() int {
	total := 0
	for _, v := range d {
		total += v
	}
	return total
}

// Valid reports whether every score is within [1,5].
func (d Dimensions) Valid() bool {
	for _, v := range d {
		if v < 1 || v > 5 {
			return false
		}
	}
	return true
}

// Decision is the bounded outcome for one scored symbol.
type Decision string

const (
	DecisionBuy       Decision = "BUY"
	DecisionWatchlist Decision = "WATCHLIST"
	DecisionSkip      Decision = "SKIP"
)

// RiskParams are the advisory trade parameters attached to a score.
type RiskParams struct {
	EntryPrice             float64 `json:"entry_price"`
	StopLossPct            float64 `json:"stop_loss_pct"`
	TargetPct              float64 `json:"target_pct"`
	RiskRewardRatio        float64 `json:"risk_reward_ratio"`
	PositionSizePct        float64 `json:"position_size_pct"`
	MaxConcurrentPositions int     `json:"max_concurrent_positions"`
}

// OpportunityScore is the scored outcome for one symbol.
type OpportunityScore struct {
	Symbol     Symbol     `json:"symbol"`
	Dimensions Dimensions `json:"dimension_scores"`
	Composite  int        `json:"composite"`
	Decision   Decision   `json:"decision"`
	Risk       RiskParams `json:"risk_params"`
	Quote      *Quote     `json:"quote,omitempty"`
}

// Less orders opportunities for ranking: composite descending, then
// the Risk/Reward dimension descending, then ticker ascending. The
// ordering is total so ranked output is deterministic regardless of
// worker completion order.
func (o OpportunityScore) Less(other OpportunityScore) bool {
	if o.Composite != other.Composite {
		return o.Composite > other.Composite
	}
	if o.Dimensions[DimRiskReward] != other.Dimensions[DimRiskReward] {
		return o.Dimensions[DimRiskReward] > other.Dimensions[DimRiskReward]
	}
	return o.Symbol.Ticker < other.Symbol.Ticker
}

// ScanStatus summarizes how a completed scan ended.
type ScanStatus string

const (
	StatusOK              ScanStatus = "ok"
	StatusNoOpportunities ScanStatus = "no-opportunities"
)

// SymbolFailure records why a symbol produced no score.
type SymbolFailure struct {
	Symbol  string          `json:"symbol"`
	Reason  string          `json:"reason"`
	Sources []SourceFailure `json:"sources,omitempty"`
}

// SourceFailure is one provider's failure reason for a symbol.
type SourceFailure struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// Regime classifies the broad market session.
type Regime string

const (
	RegimeRiskOn  Regime = "risk_on"
	RegimeNeutral Regime = "neutral"
	RegimeRiskOff Regime = "risk_off"
	RegimeUnknown Regime = "unknown"
)

// MarketSnapshot captures the macro inputs behind a regime call.
type MarketSnapshot struct {
	VIX          *float64 `json:"vix,omitempty"`
	SP500Change  *float64 `json:"sp500_change,omitempty"`
	NasdaqChange *float64 `json:"nasdaq_change,omitempty"`
	Regime       Regime   `json:"regime"`
}

// ScanResult is the ranked output of one scan invocation.
type ScanResult struct {
	ScanID        string             `json:"scan_id"`
	Market        Market             `json:"market"`
	Timestamp     time.Time          `json:"timestamp"`
	Status        ScanStatus         `json:"status"`
	Snapshot      MarketSnapshot     `json:"market_snapshot"`
	Opportunities []OpportunityScore `json:"opportunities"`
	Watch         []OpportunityScore `json:"watchlist"`
	Excluded      []SymbolFailure    `json:"excluded,omitempty"`
	Failures      []SymbolFailure    `json:"failures,omitempty"`
	Sources       map[string]string  `json:"sources,omitempty"` // symbol -> provider that answered
	TotalScanned  int                `json:"total_scanned"`
}

// HasOpportunities reports whether any symbol reached a BUY decision.
func (r *ScanResult) HasOpportunities() bool {
	return len(r.Opportunities) > 0
}
