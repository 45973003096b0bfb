package toolengine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// functionPathPattern is the strict identifier-and-dot shape a function
// descriptor must have. Anything else is rejected before resolution to
// block descriptor injection.
var functionPathPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)+$`)

// ToolFunc is the signature of a registered function tool.
type ToolFunc func(ctx context.Context, arguments map[string]interface{}) (interface{}, error)

// FunctionRegistry maps dotted descriptor paths to function tools. The
// table is built and validated at startup; execution never resolves code
// outside of it.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]ToolFunc
}

// NewFunctionRegistry creates an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: make(map[string]ToolFunc)}
}

// Register adds a function under a dotted path. The path must match the
// same pattern descriptors are checked against, so every registered entry
// is reachable.
func (r *FunctionRegistry) Register(path string, fn ToolFunc) error {
	if !functionPathPattern.MatchString(path) {
		return fmt.Errorf("%w: function path %q must be a dotted identifier path", ErrConfiguration, path)
	}
	if fn == nil {
		return fmt.Errorf("%w: function for %q is nil", ErrConfiguration, path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[path]; exists {
		return fmt.Errorf("%w: function %q is already registered", ErrConfiguration, path)
	}
	r.funcs[path] = fn

	log.Debug().Str("function", path).Msg("Function tool registered")

	return nil
}

// Lookup returns the function registered under path, if any.
func (r *FunctionRegistry) Lookup(path string) (ToolFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[path]
	return fn, ok
}

// Paths returns all registered descriptor paths.
func (r *FunctionRegistry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.funcs))
	for path := range r.funcs {
		paths = append(paths, path)
	}
	return paths
}

// Count returns the number of registered functions.
func (r *FunctionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.funcs)
}

// FunctionInvoker executes function tools through the registry. A
// descriptor that resolves to nothing is a configuration failure, distinct
// from an error or panic raised by the resolved function.
type FunctionInvoker struct {
	registry *FunctionRegistry
}

func (fi *FunctionInvoker) Invoke(ctx context.Context, tool *ToolDefinition, arguments map[string]interface{}) (output interface{}, err error) {
	descriptor := strings.TrimSpace(tool.Implementation)
	if descriptor == "" {
		return nil, fmt.Errorf("%w: function implementation is empty", ErrConfiguration)
	}

	if !functionPathPattern.MatchString(descriptor) {
		return nil, fmt.Errorf("%w: implementation must be a dotted function path (e.g. %q), got %q",
			ErrSecurity, "builtins.calculator.execute", descriptor)
	}

	fn, ok := fi.registry.Lookup(descriptor)
	if !ok {
		return nil, fmt.Errorf("%w: function %q is not registered", ErrConfiguration, descriptor)
	}

	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("%w: function %q panicked: %v", ErrInvocation, descriptor, r)
		}
	}()

	output, err = fn(ctx, arguments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvocation, err)
	}

	return output, nil
}
