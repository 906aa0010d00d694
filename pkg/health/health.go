// Package health provides liveness and readiness endpoints for the cart
// gateway. Liveness is unconditional; readiness combines an explicit flag
// (cleared during shutdown draining) with named checks evaluated on demand.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports whether a dependency is usable. It must respect ctx.
type CheckFunc func(ctx context.Context) error

type check struct {
	fn      CheckFunc
	timeout time.Duration
}

// Service answers liveness and readiness probes.
type Service struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks map[string]check
}

// New creates a Service that reports not-ready until SetReady(true).
func New() *Service {
	return &Service{checks: map[string]check{}}
}

// SetReady flips the readiness flag. Set false before shutdown so load
// balancers drain the instance.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// AddReadinessCheck registers a named dependency check evaluated on every
// readiness probe, bounded by timeout.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check{fn: fn, timeout: timeout}
}

// LiveEndpoint always answers 200: the process is up.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadyEndpoint answers 200 when the service is marked ready and every
// registered check passes, 503 otherwise, with a per-check JSON report.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	type report struct {
		Ready  bool              `json:"ready"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	out := report{Ready: s.ready.Load(), Checks: map[string]string{}}

	s.mu.RLock()
	checks := make(map[string]check, len(s.checks))
	for name, c := range s.checks {
		checks[name] = c
	}
	s.mu.RUnlock()

	for name, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		err := c.fn(ctx)
		cancel()
		if err != nil {
			out.Ready = false
			out.Checks[name] = err.Error()
		} else {
			out.Checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !out.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(out)
}
