// Package es provides an Elasticsearch client over plain HTTP
//
// the pipeline needs exactly three calls (bulk, index create, ping) with a
// pinned wire contract, so requests are built by hand instead of pulling a
// driver
package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config configures the HTTP client
type Config struct {
	// BaseURL is the node root, e.g. http://127.0.0.1:9200
	BaseURL string
	// Timeout bounds each request, default 30s
	Timeout time.Duration
}

// Client talks to one Elasticsearch node
type Client struct {
	base string
	http *http.Client
}

// Open validates cfg and returns a client; no network traffic happens here
func Open(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("es: empty base url")
	}
	to := cfg.Timeout
	if to <= 0 {
		to = 30 * time.Second
	}
	return &Client{base: base, http: &http.Client{Timeout: to}}, nil
}

// BulkResult mirrors the filtered bulk response
type BulkResult struct {
	StatusCode int
	// Errors is the "errors" flag; an absent key reads as false
	Errors bool
}

// Bulk posts an NDJSON body to /_bulk asking only for the errors flag back
//
// transport failures return an error; HTTP-level rejection comes back in
// BulkResult for the caller to decide on
func (c *Client) Bulk(ctx context.Context, body []byte) (BulkResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/_bulk?filter_path=errors", bytes.NewReader(body))
	if err != nil {
		return BulkResult{}, err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	resp, err := c.http.Do(req)
	if err != nil {
		return BulkResult{}, err
	}
	defer drainClose(resp.Body)

	out := BulkResult{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		return out, nil
	}

	var wire struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil && !errors.Is(err, io.EOF) {
		return out, fmt.Errorf("es: decode bulk response: %w", err)
	}
	out.Errors = wire.Errors
	return out, nil
}

// CreateIndex puts settings/mappings under name
// created=false means the index already existed
func (c *Client) CreateIndex(ctx context.Context, name string, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.indexURL(name), bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer drainClose(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusBadRequest && errorType(resp.Body) == "resource_already_exists_exception":
		return false, nil
	default:
		return false, fmt.Errorf("es: create index %s: unexpected status %d", name, resp.StatusCode)
	}
}

// IndexExists reports whether name exists
func (c *Client) IndexExists(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.indexURL(name), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("es: head index %s: unexpected status %d", name, resp.StatusCode)
	}
}

// Ping hits the node root and expects a 2xx
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("es: ping: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections
func (c *Client) Close() error {
	if c != nil && c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

func (c *Client) indexURL(name string) string { return c.base + "/" + name }

// errorType extracts error.type from an ES error body, best effort
func errorType(r io.Reader) string {
	var wire struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 8<<10)).Decode(&wire); err != nil {
		return ""
	}
	return wire.Error.Type
}

// drainClose empties and closes a response body so the connection can be reused
func drainClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 1<<20))
	_ = r.Close()
}
