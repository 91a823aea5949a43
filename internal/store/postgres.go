// Package store persists scan history for audit. This is optional
// infrastructure: without a DSN nothing is written, and a write
// failure never fails the scan.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/swingscan/swingscan/internal/domain"
	"github.com/swingscan/swingscan/internal/notify"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	scan_id        TEXT PRIMARY KEY,
	market         TEXT NOT NULL,
	scanned_at     TIMESTAMPTZ NOT NULL,
	status         TEXT NOT NULL,
	regime         TEXT NOT NULL,
	total_scanned  INT NOT NULL,
	opportunities  INT NOT NULL,
	failures       INT NOT NULL
);

CREATE TABLE IF NOT EXISTS scan_scores (
	scan_id     TEXT NOT NULL REFERENCES scans(scan_id),
	symbol      TEXT NOT NULL,
	composite   INT NOT NULL,
	decision    TEXT NOT NULL,
	dimensions  JSONB NOT NULL,
	risk_params JSONB NOT NULL,
	source      TEXT NOT NULL,
	PRIMARY KEY (scan_id, symbol)
);`

// AuditStore is a notify.Sink backed by Postgres.
type AuditStore struct {
	db *sqlx.DB
}

// Open connects and ensures the schema exists.
func Open(dsn string) (*AuditStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	return &AuditStore{db: db}, nil
}

func (s *AuditStore) Name() string { return "audit-store" }

func (s *AuditStore) Close() error { return s.db.Close() }

// Deliver writes the scan summary row plus one row per scored symbol.
func (s *AuditStore) Deliver(ctx context.Context, p *notify.Payload) error {
	r := p.Result

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (scan_id, market, scanned_at, status, regime, total_scanned, opportunities, failures)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ScanID, r.Market, r.Timestamp, r.Status, r.Snapshot.Regime,
		r.TotalScanned, len(r.Opportunities), len(r.Failures))
	if err != nil {
		return fmt.Errorf("insert scan row: %w", err)
	}

	for _, rows := range [][]domain.OpportunityScore{r.Opportunities, r.Watch} {
		for _, score := range rows {
			dims, risk, err := scoreJSON(score)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO scan_scores (scan_id, symbol, composite, decision, dimensions, risk_params, source)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				r.ScanID, score.Symbol.Ticker, score.Composite, score.Decision,
				dims, risk, r.Sources[score.Symbol.Ticker])
			if err != nil {
				return fmt.Errorf("insert score row for %s: %w", score.Symbol.Ticker, err)
			}
		}
	}

	return tx.Commit()
}

func scoreJSON(score domain.OpportunityScore) (dims, risk []byte, err error) {
	if dims, err = json.Marshal(score.Dimensions); err != nil {
		return nil, nil, fmt.Errorf("marshal dimensions: %w", err)
	}
	if risk, err = json.Marshal(score.Risk); err != nil {
		return nil, nil, fmt.Errorf("marshal risk params: %w", err)
	}
	return dims, risk, nil
}
