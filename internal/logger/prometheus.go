package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// levelCounter is registered once; Init may run more than once in tests.
var levelCounter *prometheus.CounterVec //nolint:gochecknoglobals

// MetricsHook counts emitted log lines per level.
type MetricsHook struct{}

// Run implements zerolog.Hook.
func (h MetricsHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level != zerolog.NoLevel {
		levelCounter.WithLabelValues(level.String()).Inc()
	}
}

// NewMetricsHook returns a hook feeding the per-level log counter, labeled
// with the emitting service.
func NewMetricsHook(serviceName string) MetricsHook {
	if levelCounter == nil {
		levelCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "guildpoint_log_statements_total",
				Help:        "Number of log statements, partitioned by log level.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"level"},
		)
	}

	return MetricsHook{}
}
