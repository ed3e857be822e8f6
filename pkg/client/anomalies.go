package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AnomalyService handles anomaly API calls
type AnomalyService struct {
	client *Client
}

// AnomalyListOptions contains options for listing anomalies
type AnomalyListOptions struct {
	ListOptions
	CostRecordID string
	Type         string
	Severity     string
	Status       string
	IsBackfill   *bool
}

// List retrieves a page of anomalies
func (s *AnomalyService) List(ctx context.Context, opts *AnomalyListOptions) (*Paginated[Anomaly], error) {
	query := url.Values{}

	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.CostRecordID != "" {
			query.Set("cost_record_id", opts.CostRecordID)
		}
		if opts.Type != "" {
			query.Set("type", opts.Type)
		}
		if opts.Severity != "" {
			query.Set("severity", opts.Severity)
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
		if opts.IsBackfill != nil {
			query.Set("is_backfill", strconv.FormatBool(*opts.IsBackfill))
		}
	}

	path := "/api/v1/anomalies"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Paginated[Anomaly]
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves a single anomaly by ID
func (s *AnomalyService) Get(ctx context.Context, id string) (*Anomaly, error) {
	var a Anomaly
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/anomalies/%s", id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateStatus transitions an anomaly to a new lifecycle status
func (s *AnomalyService) UpdateStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return s.client.doRequest(ctx, "PATCH", fmt.Sprintf("/api/v1/anomalies/%s/status", id), body, nil)
}

// Delete deletes an anomaly
func (s *AnomalyService) Delete(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, "DELETE", fmt.Sprintf("/api/v1/anomalies/%s", id), nil, nil)
}

// Summary retrieves anomaly counts by severity
func (s *AnomalyService) Summary(ctx context.Context) (map[string]int, error) {
	var summary map[string]int
	if err := s.client.doRequest(ctx, "GET", "/api/v1/anomalies/summary", nil, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}
