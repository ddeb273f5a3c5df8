// Package telemetry exports scorer runs as Prometheus metrics.
package telemetry

import (
	"context"
	"net/http"
	"sync"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	UseCaseRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_use_case_runs_total",
		Help: "Scorer runs by use case and outcome",
	}, []string{"use_case", "outcome"})
	UseCaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_use_case_duration_seconds",
		Help:    "Scorer run latency including store fetches",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"use_case"})
	FetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_fetch_failures_total",
		Help: "Scorer runs whose store fetch failed and fell back to a default metric",
	}, []string{"use_case"})
	LastValue = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pulse_metric_last_value",
		Help: "Most recent numeric summary reported by a scorer run",
	}, []string{"use_case", "field"})
)

// Handler exposes the /metrics handler backed by the default registry.
func Handler() http.Handler {
	register()
	return promhttp.Handler()
}

func register() {
	once.Do(func() {
		prometheus.MustRegister(UseCaseRuns, UseCaseDuration, FetchFailures, LastValue)
	})
}

// Observer records service use-case events into the collectors above.
type Observer struct{}

// NewObserver registers the collectors and returns an observer that feeds them.
func NewObserver() service.UseCaseObserver {
	register()
	return Observer{}
}

func (Observer) ObserveUseCase(_ context.Context, event service.UseCaseEvent) {
	outcome := "ok"
	if !event.Success {
		outcome = "error"
	}
	if event.Code == contract.ErrFetchFailed {
		FetchFailures.WithLabelValues(event.Name).Inc()
	}
	UseCaseRuns.WithLabelValues(event.Name, outcome).Inc()
	UseCaseDuration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())

	if !event.Success {
		return
	}
	for field, v := range event.Fields {
		if f, ok := numeric(v); ok {
			LastValue.WithLabelValues(event.Name, field).Set(f)
		}
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
