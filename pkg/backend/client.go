package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// TrackPath is the backend endpoint receiving usage records.
const TrackPath = "/api/usage/track"

// Syncer forwards tracked records to a remote system.
type Syncer interface {
	Sync(ctx context.Context, record *usage.UsageRecord) error
}

// Client posts usage records to the hosted backend. Calls are never
// retried.
type Client struct {
	http      *providers.HTTPProvider
	endpoint  string
	apiKey    string
	projectID string
}

// NewClient creates a backend client. An API key is required.
func NewClient(cfg config.BackendConfig, logger *logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("backend: api_key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBackendBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultBackendTimeout
	}
	if logger == nil {
		logger = logging.Nop()
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		http: providers.NewHTTPProvider(providers.ProviderConfig{
			Name:    "backend",
			Type:    "backend",
			BaseURL: base,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		}, logger.Named("backend")),
		endpoint:  base + TrackPath,
		apiKey:    cfg.APIKey,
		projectID: cfg.ProjectID,
	}, nil
}

// Sync posts record. Any non-2xx status is an error.
func (c *Client) Sync(ctx context.Context, record *usage.UsageRecord) error {
	payload, err := c.payload(record)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Accept":        "application/json",
	}
	if err := c.http.DoJSONRequest(ctx, http.MethodPost, c.endpoint, payload, nil, headers); err != nil {
		return fmt.Errorf("backend sync of record %s: %w", record.ID, err)
	}
	return nil
}

// Close releases pooled connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// payload is the record JSON with the project id added when set.
func (c *Client) payload(record *usage.UsageRecord) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if c.projectID != "" {
		id, _ := json.Marshal(c.projectID)
		fields["projectId"] = id
	}
	return fields, nil
}
