package api

import (
	"sync"

	"github.com/emporiumlabs/emporium/pkg/bootstrap"
)

// Readiness tracks whether this instance may serve traffic.
//
// The gate starts not-ready and flips when the bootstrap coordinator reports
// its result. The fleet router polls /health/ready, so an instance stays out
// of rotation until its bootstrap run has succeeded (or cleanly skipped).
type Readiness struct {
	mu     sync.RWMutex
	ready  bool
	reason string
	result *bootstrap.Result
}

// NewReadiness returns a gate in the not-ready state.
func NewReadiness() *Readiness {
	return &Readiness{reason: "bootstrap has not completed"}
}

// SetResult records the bootstrap outcome. The gate becomes ready only when
// the run succeeded.
func (g *Readiness) SetResult(res *bootstrap.Result) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.result = res
	switch {
	case res == nil:
		g.ready = false
		g.reason = "bootstrap has not completed"
	case res.Success:
		g.ready = true
		g.reason = ""
	default:
		g.ready = false
		g.reason = "bootstrap failed: " + res.Error
	}
}

// Ready reports whether the instance may serve, with a reason when it may not.
// Safe to call on a nil gate.
func (g *Readiness) Ready() (bool, string) {
	if g == nil {
		return false, "bootstrap status unknown"
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ready, g.reason
}

// Result returns the recorded bootstrap result, or nil before bootstrap
// completes. Safe to call on a nil gate.
func (g *Readiness) Result() *bootstrap.Result {
	if g == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.result
}
