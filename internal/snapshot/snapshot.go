// Package snapshot archives fetched page bodies for heuristic debugging.
// Saving is always best-effort: a failed save is logged by the caller and
// never affects the run outcome. No run results are stored here.
package snapshot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mizutanik/refurbwatch/internal/config"
)

// Sink writes one page body under a name and returns where it ended up.
type Sink interface {
	Save(ctx context.Context, name string, body []byte) (string, error)
}

// NoopSink discards everything.
type NoopSink struct{}

// Save discards the body.
func (NoopSink) Save(context.Context, string, []byte) (string, error) {
	return "", nil
}

// New builds the sink selected by configuration.
func New(ctx context.Context, cfg config.SnapshotConfig, logger *zap.Logger) (Sink, error) {
	switch cfg.Provider {
	case "", "none":
		return NoopSink{}, nil
	case "fs":
		return NewFileSink(cfg.Dir, cfg.MaxBytes, logger)
	case "gcs":
		return NewGCSSink(ctx, cfg.Bucket, cfg.Prefix, cfg.MaxBytes)
	default:
		return nil, fmt.Errorf("unknown snapshot provider: %s", cfg.Provider)
	}
}
