package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HealthStatus is the envelope returned by the health endpoints.
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Healthy reports whether the probe passed.
func (h *HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// Health fetches the liveness probe.
func (c *Client) Health() (*HealthStatus, error) {
	return c.health("/health")
}

// Ready fetches the readiness probe. A failing probe is not an error: the
// envelope comes back with Status "unhealthy" and the reason in Error. An
// error return means the server was unreachable or sent something that is
// not a health envelope.
func (c *Client) Ready() (*HealthStatus, error) {
	return c.health("/health/ready")
}

// DatabaseHealth fetches the database connectivity probe.
func (c *Client) DatabaseHealth() (*HealthStatus, error) {
	return c.health("/health/db")
}

// health fetches a probe endpoint. Probes use the envelope contract and
// carry meaningful bodies on 503, so this bypasses do's error mapping.
func (c *Client) health(path string) (*HealthStatus, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &status, nil
}
