// Package marketplace is the HTTP client of the task marketplace API, the
// only source of state for this front-end.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"taskhunt_web/internal/common"
	"time"

	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// do sends one request and returns the raw body of a 2xx answer. Anything
// else is an error wrapping common.ErrUpstream. There is no retry.
func (c *Client) do(ctx context.Context, method, path, token string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Marketplace request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %s %s: %v", common.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read %s %s: %v", common.ErrUpstream, method, path, err)
	}

	c.log.Debug("Marketplace request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &common.UpstreamError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   truncate(string(data), 512),
		}
	}
	return data, resp.StatusCode, nil
}

// decode parses data into out unless data is blank. It reports whether
// anything was parsed.
func decode(data []byte, out any) (bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrDecode, err)
	}
	return true, nil
}

func requireToken(token string) error {
	if token == "" {
		return common.ErrMissingToken
	}
	return nil
}

func seg(id string) string { return url.PathEscape(id) }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
