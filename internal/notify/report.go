// Package notify shapes a completed ScanResult for downstream sinks.
// The scan core never sends anything itself; sinks receive the shaped
// payload and decide delivery.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/swingscan/swingscan/internal/domain"
)

// BuildAlert renders the title and markdown body handed to alerting
// sinks.
func BuildAlert(r *domain.ScanResult) (title, body string) {
	stamp := r.Timestamp.Format("2006-01-02 15:04")
	if !r.HasOpportunities() {
		title = fmt.Sprintf("[MARKET SCAN] %s - no clear opportunities", stamp)
	} else {
		top := r.Opportunities[0]
		title = fmt.Sprintf("[BUY ALERT] %s - score %d/100", top.Symbol.Ticker, top.Composite)
	}
	return title, BuildReport(r)
}

// BuildReport renders the full markdown scan report.
func BuildReport(r *domain.ScanResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Market Scan — %s\n\n", r.Timestamp.Format(time.RFC1123))
	writeSnapshot(&b, r.Snapshot)

	if len(r.Opportunities) > 0 {
		fmt.Fprintf(&b, "\n### Buy Opportunities (%d)\n", len(r.Opportunities))
		for _, opp := range r.Opportunities {
			writeOpportunity(&b, opp)
		}
	} else {
		b.WriteString("\n### No clear opportunities today\n\n")
		b.WriteString("Better to sit out than force a mediocre trade.\n")
	}

	if len(r.Watch) > 0 {
		fmt.Fprintf(&b, "\n### Watchlist (%d)\n", len(r.Watch))
		for _, w := range r.Watch {
			fmt.Fprintf(&b, "- %s: score %d | $%.2f\n", w.Symbol.Ticker, w.Composite, w.Quote.Price)
		}
	}

	fmt.Fprintf(&b, "\n### Summary\n")
	fmt.Fprintf(&b, "- Symbols scanned: %d\n", r.TotalScanned)
	fmt.Fprintf(&b, "- Opportunities: %d\n", len(r.Opportunities))
	fmt.Fprintf(&b, "- Watchlist: %d\n", len(r.Watch))
	if len(r.Excluded) > 0 {
		fmt.Fprintf(&b, "- Excluded by pre-filter: %d\n", len(r.Excluded))
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "- Data failures: %d\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  - %s: %s\n", f.Symbol, f.Reason)
			for _, src := range f.Sources {
				fmt.Fprintf(&b, "    - %s: %s\n", src.Provider, src.Reason)
			}
		}
	}

	b.WriteString("\n---\n")
	b.WriteString("DISCLAIMER: Not financial advice. Trade at your own risk.\n")
	return b.String()
}

func writeSnapshot(b *strings.Builder, snap domain.MarketSnapshot) {
	fmt.Fprintf(b, "**Regime**: %s\n", snap.Regime)
	if snap.VIX != nil {
		fmt.Fprintf(b, "**VIX**: %.1f\n", *snap.VIX)
	}
	if snap.SP500Change != nil {
		fmt.Fprintf(b, "**S&P 500**: %+.2f%%\n", *snap.SP500Change)
	}
	if snap.NasdaqChange != nil {
		fmt.Fprintf(b, "**Nasdaq**: %+.2f%%\n", *snap.NasdaqChange)
	}
}

func writeOpportunity(b *strings.Builder, opp domain.OpportunityScore) {
	fmt.Fprintf(b, "\n#### %s — score %d/100 (%s)\n\n", opp.Symbol.Ticker, opp.Composite, opp.Decision)
	fmt.Fprintf(b, "Price: $%.2f | Source: %s\n\n", opp.Quote.Price, opp.Quote.Source)

	b.WriteString("| Dimension | Score |\n|---|---|\n")
	for i, v := range opp.Dimensions {
		fmt.Fprintf(b, "| %s | %d/5 |\n", domain.Dimension(i), v)
	}

	risk := opp.Risk
	b.WriteString("\n**Trade setup**\n")
	fmt.Fprintf(b, "- Entry: $%.2f\n", risk.EntryPrice)
	fmt.Fprintf(b, "- Stop loss: -%.1f%%\n", risk.StopLossPct)
	fmt.Fprintf(b, "- Target: +%.1f%%\n", risk.TargetPct)
	fmt.Fprintf(b, "- Risk:Reward: 1:%.1f\n", risk.RiskRewardRatio)
	fmt.Fprintf(b, "- Position size: %.0f%% of capital (max %d concurrent)\n",
		risk.PositionSizePct, risk.MaxConcurrentPositions)
}
