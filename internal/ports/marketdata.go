package ports

import (
	"context"

	"signalBot/internal/domain"
)

// BarSource supplies the ordered price history the synthesizer consumes.
// Implementations return bars oldest first.
type BarSource interface {
	// GetBars retrieves the most recent bars for a pair, up to limit.
	GetBars(ctx context.Context, pair, interval string, limit int) ([]domain.Bar, error)

	// Name identifies the source in logs and metrics.
	Name() string
}
