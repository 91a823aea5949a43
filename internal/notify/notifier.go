package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/swingscan/swingscan/internal/domain"
)

// Payload is the shaped hand-off every sink receives.
type Payload struct {
	Result *domain.ScanResult `json:"scan_result"`
	Title  string             `json:"issue_title"`
	Body   string             `json:"issue_body"`
	Notify bool               `json:"has_opportunities"`
}

// Sink delivers a payload somewhere: a file, a database, an issue
// tracker. Delivery failures are the sink's own problem; the scan
// result is already final.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, p *Payload) error
}

// Notifier fans one payload out to all configured sinks.
type Notifier struct {
	sinks []Sink
	log   zerolog.Logger
}

func NewNotifier(log zerolog.Logger, sinks ...Sink) *Notifier {
	return &Notifier{sinks: sinks, log: log}
}

// Publish shapes the result and delivers it. Notify is set when there
// are opportunities or the caller forces it; sinks use the flag to
// decide whether an alert goes out. Sink errors are logged and
// swallowed: a completed scan never fails on delivery.
func (n *Notifier) Publish(ctx context.Context, r *domain.ScanResult, force bool) *Payload {
	title, body := BuildAlert(r)
	p := &Payload{
		Result: r,
		Title:  title,
		Body:   body,
		Notify: r.HasOpportunities() || force,
	}

	for _, sink := range n.sinks {
		if err := sink.Deliver(ctx, p); err != nil {
			n.log.Error().Str("sink", sink.Name()).Err(err).Msg("sink delivery failed")
		} else {
			n.log.Debug().Str("sink", sink.Name()).Msg("payload delivered")
		}
	}
	return p
}
