package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// HealthCheck is the health check handler. With no checks it always answers ok.
type HealthCheck struct {
	Checks  map[string]Check
	Timeout time.Duration
}

// Handler is used to control the flow of GET /health endpoint
func (hc HealthCheck) Handler(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if IsHealthCheckRequest(r) {
			hc.ServeHTTP(w, r)

			return
		}

		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// Report runs every check and returns the failing ones by name.
func (hc HealthCheck) Report(ctx context.Context) map[string]string {
	if hc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, hc.Timeout)
		defer cancel()
	}

	names := make([]string, 0, len(hc.Checks))
	for name := range hc.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failures := make(map[string]string)
	for _, name := range names {
		if err := hc.Checks[name](ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	return failures
}

// ServeHTTP serve http request for health check
func (hc HealthCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	failures := hc.Report(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if len(failures) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "unavailable", "failures": failures})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

// IsHealthCheckRequest is used to check if the request is a health check request
func IsHealthCheckRequest(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/health"
}
