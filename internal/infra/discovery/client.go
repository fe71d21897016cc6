// Package discovery fetches the vetted location/area/store sets from
// the map service before a session starts. The engine treats the
// returned sets as immutable for the session's duration.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const locationsEndpoint = "/map_server/locations/"

// Location is one map location as the service reports it.
type Location struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
}

// Client queries the map service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a discovery client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchLocations returns all locations of a scene.
func (c *Client) FetchLocations(ctx context.Context, sceneID string) ([]Location, error) {
	u := c.baseURL + locationsEndpoint
	if sceneID != "" {
		u += "?" + url.Values{"scene_id": {sceneID}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create locations request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("locations call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("locations rejected: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read locations response: %w", err)
	}

	locations, err := parseLocations(body)
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// parseLocations accepts both a bare array and the enveloped
// {"data": {"items": [...]}} shape the service also serves.
func parseLocations(body []byte) ([]Location, error) {
	var direct []Location
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var envelope struct {
		Data struct {
			Items []Location `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed locations response: %w", err)
	}
	return envelope.Data.Items, nil
}
