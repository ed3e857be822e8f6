package client

import (
	"context"
	"fmt"
)

// SettingsService handles detection settings API calls
type SettingsService struct {
	client *Client
}

// Get retrieves the active detection settings
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	var settings Settings
	if err := s.client.doRequest(ctx, "GET", "/api/v1/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update merges a partial settings update and returns the result
func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (*Settings, error) {
	var settings Settings
	if err := s.client.doRequest(ctx, "PUT", "/api/v1/settings", patch, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// EnableCheck adds a check to the enabled set
func (s *SettingsService) EnableCheck(ctx context.Context, checkID string) (*Settings, error) {
	var settings Settings
	path := fmt.Sprintf("/api/v1/settings/checks/%s/enable", checkID)
	if err := s.client.doRequest(ctx, "POST", path, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// DisableCheck removes a check from the enabled set
func (s *SettingsService) DisableCheck(ctx context.Context, checkID string) (*Settings, error) {
	var settings Settings
	path := fmt.Sprintf("/api/v1/settings/checks/%s/disable", checkID)
	if err := s.client.doRequest(ctx, "POST", path, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// ListChecks retrieves the registered detection checks
func (s *SettingsService) ListChecks(ctx context.Context) ([]Check, error) {
	var checks []Check
	if err := s.client.doRequest(ctx, "GET", "/api/v1/checks", nil, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}
