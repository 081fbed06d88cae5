package telemetry

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rowkit/internal/logging"
)

const namespace = "rowkit"

// Metrics groups the collectors a pipeline run updates.
type Metrics struct {
	RowsLoaded      *prometheus.CounterVec   // source
	RowsWritten     *prometheus.CounterVec   // sink
	ColumnsComputed prometheus.Counter
	StageSeconds    *prometheus.HistogramVec // stage
	Failures        *prometheus.CounterVec   // stage
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_loaded_total",
			Help: "Rows read from sources.",
		}, []string{"source"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_written_total",
			Help: "Rows written to sinks.",
		}, []string{"sink"}),
		ColumnsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "columns_computed_total",
			Help: "Computed columns produced by the transformer.",
		}),
		StageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "stage_duration_seconds",
			Help:    "Wall time per pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "failures_total",
			Help: "Pipeline runs that failed, by stage.",
		}, []string{"stage"}),
	}
	reg.MustRegister(m.RowsLoaded, m.RowsWritten, m.ColumnsComputed, m.StageSeconds, m.Failures)
	return m
}

// ObserveStage records the time elapsed since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

var (
	defOnce sync.Once
	def     *Metrics
)

// Default returns metrics registered with the global Prometheus registry.
func Default() *Metrics {
	defOnce.Do(func() { def = NewMetrics(prometheus.DefaultRegisterer) })
	return def
}

// Expose binds port and serves /metrics for the global registry in the
// background. Bind errors are returned; port 0 picks a free port.
func Expose(port int) (*http.Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("metrics listen: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: lis.Addr().String(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error("metrics endpoint stopped", "port", port, "err", err)
		}
	}()
	return srv, nil
}
