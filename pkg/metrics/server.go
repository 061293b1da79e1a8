package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/httplib/healthcheck"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config is the metrics endpoint configuration.
type Config struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Addr    string `env:"ADDR" envDefault:":9100"`
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves /metrics from reg and /health from health.
func Handler(reg *prometheus.Registry, health healthcheck.HealthCheck) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return health.Handler(mux)
}

// Serve starts the endpoint in the background. Stop it with Shutdown.
func Serve(addr string, handler http.Handler, log logger.Interface) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, logger.NewField("addr", addr))
		}
	}()
	log.Info("metrics endpoint started", logger.NewField("addr", addr))
	return srv
}

// Shutdown stops srv, waiting at most timeout for in-flight scrapes.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
