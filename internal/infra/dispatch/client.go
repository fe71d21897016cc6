// Package dispatch submits move tasks to the remote dispatch service
// and classifies the responses. It is the session's only transport.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
	"github.com/vietddude/dispatcher/internal/metrics"
)

const taskEndpoint = "/dispatch_server/dispatch/start/location_call/task/"

// maxBodyBytes caps response reads; task responses are small JSON.
const maxBodyBytes = 1 << 20

// Adapter submits one task and returns its classified outcome.
type Adapter interface {
	Submit(ctx context.Context, task *domain.Task) domain.Outcome
}

// Client is the HTTP dispatch adapter.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	classifier *Classifier
}

// NewClient creates a dispatch client with a per-call timeout.
func NewClient(baseURL, token string, timeout time.Duration, successCodes []int) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		classifier: NewClassifier(successCodes),
	}
}

// Submit sends one task. Transport faults (connect, timeout, non-2xx,
// malformed body) come back as TransportFailure outcomes; they are
// never returned as plain errors so the retry controller sees a single
// classified result per attempt.
func (c *Client) Submit(ctx context.Context, task *domain.Task) domain.Outcome {
	start := time.Now()
	metrics.DispatchAttempts.WithLabelValues(string(task.Type)).Inc()

	payload := c.payload(task)
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return domain.TransportFailure(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+taskEndpoint, bytes.NewReader(jsonData))
	if err != nil {
		return domain.TransportFailure(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.TransportFailure(fmt.Errorf("dispatch call: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.TransportFailure(fmt.Errorf("read response: %w", err))
	}

	metrics.DispatchLatency.WithLabelValues(string(task.Type)).Observe(time.Since(start).Seconds())

	return c.classifier.Classify(resp.StatusCode, body)
}

func (c *Client) payload(task *domain.Task) map[string]string {
	if task.Type == domain.TaskRegionPickup {
		return map[string]string{
			"location_id":       task.Source,
			"store_location_id": task.Destination,
		}
	}
	return map[string]string{
		"location_id": task.Source,
		"area":        task.Destination,
	}
}
