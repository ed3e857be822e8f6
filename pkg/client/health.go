package client

import "context"

// HealthService handles health probe API calls
type HealthService struct {
	client *Client
}

// Check performs a liveness probe
func (s *HealthService) Check(ctx context.Context) error {
	return s.client.doRequest(ctx, "GET", "/healthz", nil, nil)
}

// Ready performs a readiness probe
func (s *HealthService) Ready(ctx context.Context) error {
	return s.client.doRequest(ctx, "GET", "/readyz", nil, nil)
}
