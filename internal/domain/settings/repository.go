package settings

import (
	"context"
	"errors"
)

// ErrNotFound signals that no settings row has been stored yet.
var ErrNotFound = errors.New("settings not found")

// Repository defines settings persistence operations. A single settings row
// is stored; Save overwrites it.
type Repository interface {
	Get(ctx context.Context) (*Stored, error)
	Save(ctx context.Context, s *Stored) error
}
