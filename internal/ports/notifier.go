package ports

import (
	"context"

	"signalBot/internal/domain"
)

// Notifier delivers a formatted report verbatim to a human channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Publisher fans a signal out to machine consumers.
type Publisher interface {
	Publish(ctx context.Context, sig *domain.Signal, report string) error
}
