// Package auth obtains the bearer credential used by the dispatch
// client. The engine never refreshes the token mid-session; a login
// happens at most once, before the session starts.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const loginEndpoint = "/user_backend/users/login/"

// Client performs logins against the user backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a login client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login exchanges account credentials for a bearer token.
func (c *Client) Login(ctx context.Context, account, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"account":  account,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+loginEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("login rejected: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read login response: %w", err)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("malformed login response: %w", err)
	}

	token := findToken(data)
	if token == "" {
		return "", fmt.Errorf("login response contains no token")
	}
	return token, nil
}

// findToken searches the response for a credential. The backend has
// reported it under different keys across versions, so any of the
// known names is accepted, at any nesting depth; a bare JWT-shaped
// string also qualifies.
func findToken(v any) string {
	switch val := v.(type) {
	case map[string]any:
		for _, key := range []string{"token", "access_token", "jwt", "auth_token"} {
			if s, ok := val[key].(string); ok && s != "" {
				return s
			}
		}
		for _, child := range val {
			if t := findToken(child); t != "" {
				return t
			}
		}
	case []any:
		for _, child := range val {
			if t := findToken(child); t != "" {
				return t
			}
		}
	case string:
		if looksLikeJWT(val) {
			return val
		}
	}
	return ""
}

func looksLikeJWT(s string) bool {
	return strings.Count(s, ".") == 2 && len(s) > 20
}
