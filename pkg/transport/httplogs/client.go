package httplogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

// StatusError is returned when the endpoint answers with anything but 200.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Client talks to a logs endpoint over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a client for endpoint, e.g. http://127.0.0.1:7070/logs.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Endpoint returns the base URL the client was created with.
func (c *Client) Endpoint() string { return c.endpoint }

// Fetch runs one logs query.
func (c *Client) Fetch(ctx context.Context, instance string, q core.Query) (core.Batch, error) {
	u := QueryURL(c.endpoint, instance, q)
	var batch core.Batch
	if err := c.getJSON(ctx, u, &batch); err != nil {
		return core.Batch{}, err
	}
	c.logger.Debug("logs fetched", "instance", instance, "mode", q.Mode, "records", len(batch.Logs), "last_update", batch.LastUpdate)
	return batch, nil
}

// Instances lists the instances the endpoint serves.
func (c *Client) Instances(ctx context.Context) ([]string, error) {
	var resp InstancesResponse
	if err := c.getJSON(ctx, c.endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Instances, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}
