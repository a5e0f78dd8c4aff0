// Package upstream is the HTTP client for the attendance backend the console
// fronts. The backend owns credentials and data; the console only forwards
// requests with the session's bearer token attached.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/DesarrolloRWD/adp-rh-console/pkg/config"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/logger"
)

var (
	// ErrBadCredentials is returned when the backend rejects a login.
	ErrBadCredentials = errors.New("upstream rejected credentials")
	// ErrUnauthorized is returned when the backend rejects the bearer token.
	ErrUnauthorized = errors.New("upstream rejected bearer token")
	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("upstream unavailable")
)

// StatusError reports an unexpected upstream status code.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// Client talks to the attendance backend REST API.
type Client struct {
	baseURL      string
	authEndpoint string
	httpClient   *http.Client
	log          *logger.Logger
}

// NewClient builds a client from the upstream configuration.
func NewClient(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		authEndpoint: cfg.AuthEndpoint,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		log:          logger.Get(),
	}
}

// Login exchanges credentials for a bearer token. The backend has shipped
// the token under both "token" and "token " (trailing space) keys across
// releases, so the response is matched on trimmed key names.
func (c *Client) Login(ctx context.Context, usuario, pswd string) (string, error) {
	body, err := json.Marshal(map[string]string{"usuario": usuario, "pswd": pswd})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.authEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrBadCredentials
	case resp.StatusCode != http.StatusOK:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{Status: resp.StatusCode, Body: string(data)}
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}

	for key, value := range payload {
		if strings.TrimSpace(key) == "token" {
			if tok, ok := value.(string); ok && tok != "" {
				return tok, nil
			}
		}
	}
	return "", fmt.Errorf("login response carried no token")
}

// Get performs an authorized GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, bearer string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, bearer, nil, out)
}

// Post performs an authorized POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, bearer string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, bearer, body, out)
}

// Put performs an authorized PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, bearer string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, bearer, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &StatusError{Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}
