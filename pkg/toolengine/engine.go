package toolengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// defaultHTTPTimeout bounds every network-bound backend call (http,
// webhook, remote http).
const defaultHTTPTimeout = 30 * time.Second

// Config configures an Engine.
type Config struct {
	// Registry resolves function tool descriptors. Optional; an empty
	// registry is used when nil.
	Registry *FunctionRegistry

	// Hooks receives side-channel notifications. Optional.
	Hooks ExecutionHooks

	// HTTPClient is shared by the http, webhook and remote http backends.
	// Optional; a client with the default timeout is used when nil.
	HTTPClient *http.Client
}

// Engine executes tools against their declared backend. Each call is
// stateless and independent; the engine holds no mutable state across
// concurrent invocations.
type Engine struct {
	validator *SchemaValidator
	hooks     ExecutionHooks

	function *FunctionInvoker
	http     *HTTPInvoker
	command  *CommandInvoker
	webhook  *WebhookInvoker
	remote   *RemoteToolInvoker
}

// New creates an Engine.
func New(cfg Config) *Engine {
	registry := cfg.Registry
	if registry == nil {
		registry = NewFunctionRegistry()
	}

	hooks := cfg.Hooks
	if hooks == nil {
		hooks = NopHooks{}
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &Engine{
		validator: &SchemaValidator{},
		hooks:     hooks,
		function:  &FunctionInvoker{registry: registry},
		http:      &HTTPInvoker{client: client},
		command:   &CommandInvoker{},
		webhook:   &WebhookInvoker{client: client},
		remote:    &RemoteToolInvoker{client: client},
	}
}

// Execute runs a tool with the given request and returns a normalized
// result. It never lets an error or panic escape: every internal failure
// becomes a failed ExecutionResult.
//
// Caller cancellation is deliberately not propagated into the backend
// call. Most backends have externally visible side effects (a command ran,
// a webhook fired) that must not be silently abandoned mid-flight; each
// backend enforces its own hard timeout instead.
func (e *Engine) Execute(ctx context.Context, tool *ToolDefinition, req ExecutionRequest) (result ExecutionResult) {
	start := time.Now()
	execID := uuid.NewString()
	ctx = context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("tool", tool.Name).
				Str("execution_id", execID).
				Interface("panic", r).
				Msg("Tool execution panicked")
			result = e.fail(ctx, tool, start, fmt.Errorf("internal error: %v", r))
		}
	}()

	log.Debug().
		Str("tool", tool.Name).
		Str("type", string(tool.ImplementationType)).
		Str("execution_id", execID).
		Msg("Executing tool")

	safeHook(tool, func() { e.hooks.ValidationStarted(ctx, tool, ValidateInput) })
	if err := e.validator.ValidateInput(tool, req.Arguments); err != nil {
		return e.fail(ctx, tool, start, err)
	}

	safeHook(tool, func() { e.hooks.InvocationStarted(ctx, tool) })
	output, err := e.dispatch(ctx, tool, req.Arguments)
	safeHook(tool, func() { e.hooks.InvocationFinished(ctx, tool, err) })
	if err != nil {
		return e.fail(ctx, tool, start, err)
	}

	if tool.OutputSchema != nil {
		safeHook(tool, func() { e.hooks.ValidationStarted(ctx, tool, ValidateOutput) })
		if err := e.validator.ValidateOutput(tool, output); err != nil {
			return e.fail(ctx, tool, start, err)
		}
	}

	result = ExecutionResult{
		Success:    true,
		Output:     output,
		DurationMS: time.Since(start).Milliseconds(),
		Status:     StatusSuccess,
	}

	log.Info().
		Str("tool", tool.Name).
		Int64("duration_ms", result.DurationMS).
		Msg("Tool executed")

	safeHook(tool, func() { e.hooks.ExecutionCompleted(ctx, tool, &result) })

	return result
}

// dispatch routes the call to the invoker matching the tool's declared
// implementation type. The switch is the closed set of supported backends.
func (e *Engine) dispatch(ctx context.Context, tool *ToolDefinition, arguments map[string]interface{}) (interface{}, error) {
	switch tool.ImplementationType {
	case TypeFunction:
		return e.function.Invoke(ctx, tool, arguments)
	case TypeHTTP:
		return e.http.Invoke(ctx, tool, arguments)
	case TypeCommand:
		return e.command.Invoke(ctx, tool, arguments)
	case TypeWebhook:
		return e.webhook.Invoke(ctx, tool, arguments)
	case TypeRemoteTool:
		return e.remote.Invoke(ctx, tool, arguments)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, tool.ImplementationType)
	}
}

func (e *Engine) fail(ctx context.Context, tool *ToolDefinition, start time.Time, err error) ExecutionResult {
	result := ExecutionResult{
		Success:    false,
		Error:      err.Error(),
		DurationMS: time.Since(start).Milliseconds(),
		Status:     StatusFailed,
		Meta: map[string]interface{}{
			"error_type": ErrorKind(err),
		},
	}

	// Command failures keep their stdout/stderr so callers retain
	// diagnostic detail; the output field itself stays absent.
	var procErr *ProcessError
	if errors.As(err, &procErr) {
		result.Meta["stdout"] = procErr.Stdout
		result.Meta["stderr"] = procErr.Stderr
		result.Meta["return_code"] = procErr.ExitCode
	}

	log.Error().
		Str("tool", tool.Name).
		Str("error_type", ErrorKind(err)).
		Int64("duration_ms", result.DurationMS).
		Err(err).
		Msg("Tool execution failed")

	safeHook(tool, func() { e.hooks.ExecutionCompleted(ctx, tool, &result) })

	return result
}
