package ports

import (
	"context"
	"time"

	"signalBot/internal/domain"
)

// SignalRecord is a persisted signal together with the report that was delivered for it.
type SignalRecord struct {
	ID        string         `json:"id"`
	Signal    *domain.Signal `json:"signal"`
	Report    string         `json:"report"`
	Delivered bool           `json:"delivered"`
	CreatedAt time.Time      `json:"created_at"`
}

// SignalRepository stores the history of produced signals.
type SignalRepository interface {
	// Save persists a signal and its report, returning the assigned ID.
	Save(ctx context.Context, sig *domain.Signal, report string, delivered bool) (string, error)
	// FindRecent retrieves the most recent signals across all pairs, newest first.
	FindRecent(ctx context.Context, limit int) ([]*SignalRecord, error)
	// FindLatestByPair retrieves the most recent signal for a pair.
	// Returns nil, nil if the pair has no history.
	FindLatestByPair(ctx context.Context, pair string) (*SignalRecord, error)
	// FindSince retrieves all signals created at or after since, oldest first.
	FindSince(ctx context.Context, since time.Time) ([]*SignalRecord, error)
	// CountSince counts signals created at or after since.
	CountSince(ctx context.Context, since time.Time) (int, error)
}
