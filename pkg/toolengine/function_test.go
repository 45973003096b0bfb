package toolengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopFunc(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return nil, nil
}

func TestFunctionRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		fn      ToolFunc
		wantErr bool
	}{
		{name: "valid dotted path", path: "tools.math.add", fn: noopFunc},
		{name: "two segments", path: "pkg.fn", fn: noopFunc},
		{name: "single segment rejected", path: "justaname", fn: noopFunc, wantErr: true},
		{name: "leading digit rejected", path: "1pkg.fn", fn: noopFunc, wantErr: true},
		{name: "path traversal rejected", path: "../etc.passwd", fn: noopFunc, wantErr: true},
		{name: "spaces rejected", path: "pkg. fn", fn: noopFunc, wantErr: true},
		{name: "nil function rejected", path: "pkg.nilfn", fn: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewFunctionRegistry()
			err := registry.Register(tt.path, tt.fn)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfiguration)
			} else {
				assert.NoError(t, err)
				_, ok := registry.Lookup(tt.path)
				assert.True(t, ok)
			}
		})
	}
}

func TestFunctionRegistry_DuplicateRejected(t *testing.T) {
	registry := NewFunctionRegistry()
	require.NoError(t, registry.Register("pkg.fn", noopFunc))

	err := registry.Register("pkg.fn", noopFunc)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, registry.Count())
}

func TestFunctionInvoker_Invoke(t *testing.T) {
	registry := NewFunctionRegistry()
	require.NoError(t, registry.Register("pkg.ok", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return args["value"], nil
	}))
	require.NoError(t, registry.Register("pkg.failing", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return nil, errors.New("inner failure")
	}))
	require.NoError(t, registry.Register("pkg.panicky", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		panic("unexpected state")
	}))

	invoker := &FunctionInvoker{registry: registry}

	t.Run("success", func(t *testing.T) {
		out, err := invoker.Invoke(context.Background(),
			functionTool("pkg.ok"), map[string]interface{}{"value": "hi"})
		require.NoError(t, err)
		assert.Equal(t, "hi", out)
	})

	t.Run("empty descriptor", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), functionTool("  "), nil)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("descriptor injection rejected", func(t *testing.T) {
		for _, descriptor := range []string{"os/exec.Command", "pkg.fn; rm -rf /", "pkg..fn", "pkg.fn()"} {
			_, err := invoker.Invoke(context.Background(), functionTool(descriptor), nil)
			assert.ErrorIs(t, err, ErrSecurity, "descriptor %q", descriptor)
		}
	})

	t.Run("resolution failure is structured", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), functionTool("pkg.mod.missing_func"), nil)
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "not registered")
		assert.NotErrorIs(t, err, ErrInvocation)
	})

	t.Run("function error is invocation failure", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), functionTool("pkg.failing"), nil)
		assert.ErrorIs(t, err, ErrInvocation)
		assert.Contains(t, err.Error(), "inner failure")
	})

	t.Run("function panic is contained", func(t *testing.T) {
		out, err := invoker.Invoke(context.Background(), functionTool("pkg.panicky"), nil)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrInvocation)
		assert.Contains(t, err.Error(), "panicked")
	})
}
