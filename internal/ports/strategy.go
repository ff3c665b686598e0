package ports

import (
	"context"

	"signalBot/internal/domain"
)

// Analyzer turns a bar history into at most one signal.
type Analyzer interface {
	// RequiredDataPoints returns the minimum number of bars needed for analysis.
	RequiredDataPoints() int

	// Analyze returns a signal, or nil when the evidence does not support one.
	Analyze(ctx context.Context, pair string, bars []domain.Bar) *domain.Signal
}
