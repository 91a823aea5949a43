package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// ArtifactSink writes the payload as pretty-printed JSON for the
// downstream workflow and for audit/debugging.
type ArtifactSink struct {
	path string
}

func NewArtifactSink(path string) *ArtifactSink {
	return &ArtifactSink{path: path}
}

func (s *ArtifactSink) Name() string { return "artifact" }

func (s *ArtifactSink) Deliver(_ context.Context, p *Payload) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan output: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
