// Package upstream is the client for the backend that owns the computed
// health metrics. It only fetches and decodes; shaping happens elsewhere.
package upstream

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

	"github.com/fdg312/careview/internal/config"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

// Getter fetches a JSON document from the backend.
type Getter interface {
	GetJSON(ctx context.Context, path, authorization string, out any) error
}

// Client calls the backend REST API on behalf of a viewer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Compile-time check: Client satisfies Getter.
var _ Getter = (*Client)(nil)

// NewClient creates a Client. A zero TimeoutSeconds leaves the request
// bounded only by the caller's context.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger.Named("upstream"),
	}
}

// GetJSON performs GET baseURL+path and decodes the body into out.
// authorization is forwarded verbatim as the Authorization header when set.
// An empty body or a JSON null leaves out untouched.
func (c *Client) GetJSON(ctx context.Context, path, authorization string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("upstream: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("upstream: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("upstream: read body: %w", err)
	}

	c.logger.Debug("request done",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: body}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("upstream: decode %s: %w", path, err)
	}
	return nil
}

// ErrUnauthenticated means no credential was available, so no request was made.
var ErrUnauthenticated = errors.New("upstream: no credential")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: %s returned %d", e.Path, e.StatusCode)
}

// StatusCode extracts the HTTP status of a backend failure, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsUnauthorized reports a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
