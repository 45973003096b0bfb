package toolengine

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ValidationPhase identifies which side of the call is being validated.
type ValidationPhase string

const (
	ValidateInput  ValidationPhase = "input"
	ValidateOutput ValidationPhase = "output"
)

// ExecutionHooks receives side-channel notifications around a tool call.
// Implementations must not assume they can influence control flow: the
// engine ignores anything a hook does, including panicking.
type ExecutionHooks interface {
	ValidationStarted(ctx context.Context, tool *ToolDefinition, phase ValidationPhase)
	InvocationStarted(ctx context.Context, tool *ToolDefinition)
	InvocationFinished(ctx context.Context, tool *ToolDefinition, err error)
	ExecutionCompleted(ctx context.Context, tool *ToolDefinition, result *ExecutionResult)
}

// NopHooks is the default no-op ExecutionHooks implementation.
type NopHooks struct{}

func (NopHooks) ValidationStarted(context.Context, *ToolDefinition, ValidationPhase) {}
func (NopHooks) InvocationStarted(context.Context, *ToolDefinition)                  {}
func (NopHooks) InvocationFinished(context.Context, *ToolDefinition, error)          {}
func (NopHooks) ExecutionCompleted(context.Context, *ToolDefinition, *ExecutionResult) {
}

// CombineHooks fans out every callback to each of the given hooks in order.
func CombineHooks(hooks ...ExecutionHooks) ExecutionHooks {
	return multiHooks(hooks)
}

type multiHooks []ExecutionHooks

func (m multiHooks) ValidationStarted(ctx context.Context, tool *ToolDefinition, phase ValidationPhase) {
	for _, h := range m {
		h.ValidationStarted(ctx, tool, phase)
	}
}

func (m multiHooks) InvocationStarted(ctx context.Context, tool *ToolDefinition) {
	for _, h := range m {
		h.InvocationStarted(ctx, tool)
	}
}

func (m multiHooks) InvocationFinished(ctx context.Context, tool *ToolDefinition, err error) {
	for _, h := range m {
		h.InvocationFinished(ctx, tool, err)
	}
}

func (m multiHooks) ExecutionCompleted(ctx context.Context, tool *ToolDefinition, result *ExecutionResult) {
	for _, h := range m {
		h.ExecutionCompleted(ctx, tool, result)
	}
}

// safeHook isolates a hook callback so a misbehaving observer can never
// fail the tool call.
func safeHook(tool *ToolDefinition, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Str("tool", tool.Name).
				Interface("panic", r).
				Msg("Execution hook panicked")
		}
	}()
	fn()
}
