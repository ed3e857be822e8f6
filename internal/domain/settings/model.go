package settings

import (
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// Stored wraps the detection settings with persistence metadata.
type Stored struct {
	ID        string            `json:"id"`
	Settings  detector.Settings `json:"settings"`
	UpdatedAt time.Time         `json:"updated_at"`
}
