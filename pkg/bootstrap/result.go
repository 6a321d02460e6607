package bootstrap

import "time"

// StepName identifies one phase of the bootstrap sequence.
type StepName string

const (
	// StepMigrate applies schema migrations to the catalog database.
	StepMigrate StepName = "migrate"

	// StepExport drains the legacy database into a snapshot artifact.
	StepExport StepName = "export"

	// StepLoad imports the snapshot artifact into the migrated schema.
	StepLoad StepName = "load"

	// StepCleanup removes the legacy database files and, unless
	// retention is configured, the local artifact.
	StepCleanup StepName = "cleanup"
)

// StepStatus is the outcome of a single step.
type StepStatus string

const (
	StepRan     StepStatus = "ran"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// Step records the outcome of one bootstrap phase.
type Step struct {
	Name       StepName   `json:"name"`
	Status     StepStatus `json:"status"`
	Detail     string     `json:"detail,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMs int64      `json:"duration_ms"`
}

// Result is the record of one bootstrap run. Every run produces one,
// including disabled runs (all steps skipped) and failed runs (the
// failing step carries the error). The API readiness gate and the
// instance-local journal both consume it.
type Result struct {
	RunID     string    `json:"run_id"`
	Instance  string    `json:"instance"`
	Enabled   bool      `json:"enabled"`
	StartedAt time.Time `json:"started_at"`

	DurationMs int64  `json:"duration_ms"`
	Steps      []Step `json:"steps"`

	// SchemaVersion and SeedApplied describe the shared database after
	// the run. Both stay zero on disabled runs, which never query it.
	SchemaVersion uint  `json:"schema_version,omitempty"`
	SeedVersion   int64 `json:"seed_version,omitempty"`
	SeedApplied   bool  `json:"seed_applied"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Step returns the recorded step with the given name, or nil if the run
// never reached it.
func (r *Result) Step(name StepName) *Step {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}
