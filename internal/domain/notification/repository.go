package notification

import (
	"context"
	"time"
)

// Repository defines alert-log persistence operations
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	// CountSentSince counts entries with status sent created at or after
	// the given time. Used to enforce the daily alert cap.
	CountSentSince(ctx context.Context, since time.Time) (int, error)
	// ListQueued returns entries awaiting a digest flush, oldest first.
	ListQueued(ctx context.Context) ([]*Entry, error)
	// MarkSent transitions the given entries to sent.
	MarkSent(ctx context.Context, ids []string, sentAt time.Time) error
}
