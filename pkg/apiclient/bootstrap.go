package apiclient

import (
	"net/url"
	"strconv"
	"time"
)

// BootstrapStep records the outcome of one bootstrap phase.
type BootstrapStep struct {
	Name       string `json:"name"`
	Status     string `json:"status"` // ran, skipped, failed
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// BootstrapRun is the record of one bootstrap run on the server instance.
type BootstrapRun struct {
	RunID      string          `json:"run_id"`
	Instance   string          `json:"instance"`
	Enabled    bool            `json:"enabled"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMs int64           `json:"duration_ms"`
	Steps      []BootstrapStep `json:"steps"`

	SchemaVersion uint  `json:"schema_version,omitempty"`
	SeedVersion   int64 `json:"seed_version,omitempty"`
	SeedApplied   bool  `json:"seed_applied"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BootstrapStatus returns the most recent bootstrap run.
func (c *Client) BootstrapStatus() (*BootstrapRun, error) {
	return getResource[BootstrapRun](c, "/api/v1/admin/bootstrap")
}

// BootstrapRuns returns the recorded bootstrap run history, newest first.
// Zero limit uses the server default.
func (c *Client) BootstrapRuns(limit int) ([]BootstrapRun, error) {
	path := "/api/v1/admin/bootstrap/runs"
	if limit > 0 {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		path += "?" + q.Encode()
	}
	return listResources[BootstrapRun](c, path)
}
