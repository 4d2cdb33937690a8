package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/domain/patient"
)

// Client fetches active-patient snapshots from the configured sheet
// backend. One shot per call, no retries; a failed fetch falls back to
// the stored collection at the service layer.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

func NewClient(baseURL string, logger zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c, logger: logger}
}

// FetchSnapshot GETs the backend's active-patient list.
func (c *Client) FetchSnapshot(ctx context.Context) ([]*patient.Patient, error) {
	var snapshot []*patient.Patient
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&snapshot).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch snapshot: backend returned %s", resp.Status())
	}
	if snapshot == nil {
		snapshot = []*patient.Patient{}
	}
	return snapshot, nil
}
