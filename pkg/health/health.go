package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const readinessTimeout = 5 * time.Second

// Checker probes one dependency. A nil return means healthy.
type Checker func(ctx context.Context) error

// Status is reported per component and for the service overall.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
	// StatusDegraded means only non-critical dependencies are failing.
	// The service still reports ready so it keeps receiving traffic.
	StatusDegraded Status = "degraded"
)

// Response is the body of the liveness and readiness endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult carries one dependency's outcome.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type check struct {
	probe    Checker
	critical bool
}

// Handler serves liveness and readiness probes over a set of named
// dependency checkers.
type Handler struct {
	mu     sync.RWMutex
	checks map[string]check
}

func NewHandler() *Handler {
	return &Handler{checks: make(map[string]check)}
}

// Register adds a critical dependency checker. A failing critical check
// makes the readiness probe answer 503.
func (h *Handler) Register(name string, checker Checker) {
	h.RegisterCritical(name, checker)
}

// RegisterCritical adds a dependency the service cannot run without.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.add(name, checker, true)
}

// RegisterNonCritical adds a dependency whose failure only degrades the
// service. Readiness stays 200 so the instance keeps serving.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.add(name, checker, false)
}

func (h *Handler) add(name string, checker Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check{probe: checker, critical: critical}
}

func (h *Handler) snapshot() map[string]check {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]check, len(h.checks))
	for name, c := range h.checks {
		out[name] = c
	}
	return out
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

// LivenessHandler answers 200 whenever the process is up. It never
// consults the checkers.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered checker. A failing critical
// check yields 503 with overall status down; failures confined to
// non-critical checks yield 200 with overall status degraded.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		results := make(map[string]CheckResult)
		criticalDown, anyDown := false, false
		for name, c := range h.snapshot() {
			result := CheckResult{Status: StatusUp, Critical: c.critical}
			if err := c.probe(ctx); err != nil {
				result.Status = StatusDown
				result.Error = err.Error()
				anyDown = true
				if c.critical {
					criticalDown = true
				}
			}
			results[name] = result
		}

		overall := StatusUp
		status := http.StatusOK
		switch {
		case criticalDown:
			overall = StatusDown
			status = http.StatusServiceUnavailable
		case anyDown:
			overall = StatusDegraded
		}

		writeResponse(w, status, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    results,
		})
	}
}
