package handler

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Check states and overall readiness states.
const (
	checkOK    = "ok"
	checkError = "error"

	stateReady    = "ready"
	stateDegraded = "degraded"
	stateNotReady = "not_ready"
)

const readyTimeout = 5 * time.Second

// Pinger is a dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	pinger Pinger
	// critical failures make the console unready; others only degrade it.
	critical bool
}

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	version string
	deps    map[string]dependency
	timeout time.Duration
	now     func() time.Time
}

type HealthHandlerOption func(*HealthHandler)

// WithDatabase checks the sign-in ledger.
func WithDatabase(db Pinger) HealthHandlerOption { return WithCheck("database", db) }

// WithRedis checks the session revocation store.
func WithRedis(redis Pinger) HealthHandlerOption { return WithCheck("redis", redis) }

// WithBackend checks the scanning API. It is not critical: an outage there
// shows as "degraded" so every console replica is not pulled from rotation
// at once.
func WithBackend(api Pinger) HealthHandlerOption {
	return withDependency("backend", api, false)
}

// WithCheck adds a critical named check. Nil pingers are skipped.
func WithCheck(name string, p Pinger) HealthHandlerOption {
	return withDependency(name, p, true)
}

func withDependency(name string, p Pinger, critical bool) HealthHandlerOption {
	return func(h *HealthHandler) {
		if p != nil {
			h.deps[name] = dependency{pinger: p, critical: critical}
		}
	}
}

func NewHealthHandler(version string, opts ...HealthHandlerOption) *HealthHandler {
	h := &HealthHandler{
		version: version,
		deps:    make(map[string]dependency),
		timeout: readyTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Health is the liveness check; it never touches dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Version: h.version, Timestamp: h.now().UTC()})
}

type ReadyResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status   string `json:"status"`
	Critical bool   `json:"critical"`
	Duration string `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Ready pings every dependency in parallel. A failed critical check answers
// 503; a failed non-critical one answers 200 with status "degraded".
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := h.runChecks(ctx)
	state, code := readiness(results)
	writeJSON(w, code, ReadyResponse{Status: state, Timestamp: h.now().UTC(), Checks: results})
}

func (h *HealthHandler) runChecks(ctx context.Context) map[string]CheckResult {
	var (
		mu  sync.Mutex
		out = make(map[string]CheckResult, len(h.deps))
		g   errgroup.Group
	)
	for _, name := range slices.Sorted(maps.Keys(h.deps)) {
		dep := h.deps[name]
		g.Go(func() error {
			res := ping(ctx, dep)
			mu.Lock()
			out[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func readiness(results map[string]CheckResult) (string, int) {
	state := stateReady
	for _, res := range results {
		if res.Status == checkOK {
			continue
		}
		if res.Critical {
			return stateNotReady, http.StatusServiceUnavailable
		}
		state = stateDegraded
	}
	return state, http.StatusOK
}

func ping(ctx context.Context, dep dependency) CheckResult {
	began := time.Now()
	err := dep.pinger.Ping(ctx)
	res := CheckResult{Status: checkOK, Critical: dep.critical, Duration: time.Since(began).String()}
	if err != nil {
		res.Status, res.Error = checkError, err.Error()
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
