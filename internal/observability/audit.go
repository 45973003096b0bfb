// Package observability provides optional ExecutionHooks implementations:
// an audit logger backed by zerolog with OpenTelemetry span events, and
// Prometheus metrics. Both are side channels; neither influences how a
// tool call proceeds.
package observability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harun/toolbridge/pkg/toolengine"
)

// AuditHooks records an audit trail of tool executions. When the caller's
// context carries an active span, lifecycle events are also attached to it
// and the trace id is included in the audit record.
type AuditHooks struct {
	logger zerolog.Logger
}

// NewAuditHooks creates audit hooks writing to the given logger.
func NewAuditHooks(logger zerolog.Logger) *AuditHooks {
	return &AuditHooks{logger: logger}
}

// NewDefaultAuditHooks creates audit hooks writing JSON lines to stderr.
func NewDefaultAuditHooks() *AuditHooks {
	return &AuditHooks{logger: zerolog.New(os.Stderr).With().Timestamp().Logger()}
}

func (a *AuditHooks) ValidationStarted(ctx context.Context, tool *toolengine.ToolDefinition, phase toolengine.ValidationPhase) {
	addSpanEvent(ctx, "tool.validation_started",
		attribute.String("tool.name", tool.Name),
		attribute.String("validation.phase", string(phase)),
	)
}

func (a *AuditHooks) InvocationStarted(ctx context.Context, tool *toolengine.ToolDefinition) {
	addSpanEvent(ctx, "tool.invocation_started",
		attribute.String("tool.name", tool.Name),
		attribute.String("tool.implementation_type", string(tool.ImplementationType)),
	)

	a.logger.Debug().
		Str("tool", tool.Name).
		Str("type", string(tool.ImplementationType)).
		Msg("Tool invocation started")
}

func (a *AuditHooks) InvocationFinished(ctx context.Context, tool *toolengine.ToolDefinition, err error) {
	attrs := []attribute.KeyValue{attribute.String("tool.name", tool.Name)}
	if err != nil {
		attrs = append(attrs, attribute.String("error.type", toolengine.ErrorKind(err)))
	}
	addSpanEvent(ctx, "tool.invocation_finished", attrs...)
}

func (a *AuditHooks) ExecutionCompleted(ctx context.Context, tool *toolengine.ToolDefinition, result *toolengine.ExecutionResult) {
	span := trace.SpanFromContext(ctx)
	traceID := ""
	if span.SpanContext().IsValid() {
		traceID = span.SpanContext().TraceID().String()
		span.SetAttributes(
			attribute.Int64("tool.execution_time_ms", result.DurationMS),
			attribute.Bool("tool.success", result.Success),
		)
	}

	entry := a.logger.Log().
		Str("type", "tool").
		Str("action", "execute:"+tool.Name).
		Str("status", string(result.Status)).
		Int64("duration_ms", result.DurationMS).
		Time("timestamp", time.Now())

	if traceID != "" {
		entry = entry.Str("trace_id", traceID)
	}
	if !result.Success {
		entry = entry.Str("error", result.Error)
	}

	entry.Msg("")
}

func addSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
