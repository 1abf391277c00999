package state

import (
	"context"
	"database/sql"
)

// Interface is what the shell persists. Navigation saves never fail the
// caller: they are debounced and logged.
type Interface interface {
	DB() *sql.DB

	SaveNavigation(state NavigationState)
	GetNavigation() (*NavigationState, error)

	SaveQueue(ctx context.Context, state QueueState) error
	GetQueue() (*QueueState, error)

	RecordPlay(ctx context.Context, p Play) error
	RecentPlays(ctx context.Context, limit int) ([]Play, error)

	Close() error
}

var (
	_ Interface = (*Manager)(nil)
	_ Interface = (*Mock)(nil)
)
