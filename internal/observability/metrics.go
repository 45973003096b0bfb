package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harun/toolbridge/pkg/toolengine"
)

// MetricsHooks exports Prometheus metrics for tool executions.
type MetricsHooks struct {
	registry *prometheus.Registry

	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
}

// NewMetricsHooks creates metrics hooks with a private registry.
func NewMetricsHooks() *MetricsHooks {
	registry := prometheus.NewRegistry()

	m := &MetricsHooks{
		registry: registry,
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool_name", "implementation_type", "status"},
		),
		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool_name", "implementation_type"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_execution_errors_total",
				Help: "Total number of tool execution errors",
			},
			[]string{"tool_name", "error_type"},
		),
	}

	registry.MustRegister(m.executionsTotal, m.executionDuration, m.errorsTotal)

	return m
}

// Handler returns an HTTP handler exposing the metrics.
func (m *MetricsHooks) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *MetricsHooks) Registry() *prometheus.Registry {
	return m.registry
}

func (m *MetricsHooks) ValidationStarted(context.Context, *toolengine.ToolDefinition, toolengine.ValidationPhase) {
}

func (m *MetricsHooks) InvocationStarted(context.Context, *toolengine.ToolDefinition) {}

func (m *MetricsHooks) InvocationFinished(_ context.Context, tool *toolengine.ToolDefinition, err error) {
	if err != nil {
		m.errorsTotal.WithLabelValues(tool.Name, toolengine.ErrorKind(err)).Inc()
	}
}

func (m *MetricsHooks) ExecutionCompleted(_ context.Context, tool *toolengine.ToolDefinition, result *toolengine.ExecutionResult) {
	m.executionsTotal.WithLabelValues(tool.Name, string(tool.ImplementationType), string(result.Status)).Inc()
	m.executionDuration.WithLabelValues(tool.Name, string(tool.ImplementationType)).
		Observe(time.Duration(result.DurationMS * int64(time.Millisecond)).Seconds())

	// Validation failures never reach InvocationFinished; count them here.
	if !result.Success {
		if kind, ok := result.Meta["error_type"].(string); ok && kind == "validation" {
			m.errorsTotal.WithLabelValues(tool.Name, kind).Inc()
		}
	}
}
