package settings

import (
	"context"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// Service defines settings business operations
type Service interface {
	Get(ctx context.Context) (detector.Settings, error)
	Update(ctx context.Context, patch detector.SettingsPatch) (detector.Settings, error)
	EnableCheck(ctx context.Context, checkID string) (detector.Settings, error)
	DisableCheck(ctx context.Context, checkID string) (detector.Settings, error)
}
