package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// RecordService handles cost record API calls
type RecordService struct {
	client *Client
}

// RecordListOptions contains options for listing cost records
type RecordListOptions struct {
	ListOptions
	LocationID string
	SupplierID string
	CostType   string
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
}

// List retrieves a page of cost records
func (s *RecordService) List(ctx context.Context, opts *RecordListOptions) (*Paginated[CostRecord], error) {
	query := url.Values{}

	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.LocationID != "" {
			query.Set("location_id", opts.LocationID)
		}
		if opts.SupplierID != "" {
			query.Set("supplier_id", opts.SupplierID)
		}
		if opts.CostType != "" {
			query.Set("cost_type", opts.CostType)
		}
		if opts.StartDate != "" {
			query.Set("start_date", opts.StartDate)
		}
		if opts.EndDate != "" {
			query.Set("end_date", opts.EndDate)
		}
	}

	path := "/api/v1/records"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Paginated[CostRecord]
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves a single cost record by ID
func (s *RecordService) Get(ctx context.Context, id string) (*CostRecord, error) {
	var rec CostRecord
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/records/%s", id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Ingest submits a cost record and returns the detection outcome
func (s *RecordService) Ingest(ctx context.Context, req IngestRecordRequest) (*DetectionResult, error) {
	var result DetectionResult
	if err := s.client.doRequest(ctx, "POST", "/api/v1/records", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Backfill imports a batch of historical records
func (s *RecordService) Backfill(ctx context.Context, req BackfillRequest) (*BackfillResult, error) {
	var result BackfillResult
	if err := s.client.doRequest(ctx, "POST", "/api/v1/records/backfill", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
