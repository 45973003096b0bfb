package toolengine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpTool(t *testing.T, cfg HTTPConfig) *ToolDefinition {
	t.Helper()

	descriptor, err := json.Marshal(cfg)
	require.NoError(t, err)

	return &ToolDefinition{
		Name:               "http_tool",
		ImplementationType: TypeHTTP,
		Implementation:     string(descriptor),
	}
}

func TestHTTPInvoker_Get_ArgumentsBecomeQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "world", r.URL.Query().Get("name"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"greeting": "hello world"}`))
	}))
	defer server.Close()

	engine := newTestEngine(t, nil)
	result := engine.Execute(context.Background(), httpTool(t, HTTPConfig{URL: server.URL, Method: "GET"}), ExecutionRequest{
		Arguments: map[string]interface{}{"name": "world", "count": 3},
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, map[string]interface{}{"greeting": "hello world"}, result.Output)
}

func TestHTTPInvoker_Post_ArgumentsBecomeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "token", r.Header.Get("X-Api-Key"))

		body, _ := io.ReadAll(r.Body)
		var args map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &args))
		assert.Equal(t, "world", args["name"])

		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	engine := newTestEngine(t, nil)
	result := engine.Execute(context.Background(), httpTool(t, HTTPConfig{
		URL:     server.URL,
		Headers: map[string]string{"X-Api-Key": "token"},
	}), ExecutionRequest{
		Arguments: map[string]interface{}{"name": "world"},
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, map[string]interface{}{"ok": true}, result.Output)
}

func TestHTTPInvoker_Non2xxIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	engine := newTestEngine(t, nil)
	result := engine.Execute(context.Background(), httpTool(t, HTTPConfig{URL: server.URL}), ExecutionRequest{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "502")
	assert.Equal(t, "invocation", result.Meta["error_type"])
}

func TestHTTPInvoker_NonJSONResponseWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text answer"))
	}))
	defer server.Close()

	engine := newTestEngine(t, nil)
	result := engine.Execute(context.Background(), httpTool(t, HTTPConfig{URL: server.URL}), ExecutionRequest{})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, map[string]interface{}{"response": "plain text answer"}, result.Output)
}

func TestHTTPInvoker_ConfigErrors(t *testing.T) {
	engine := newTestEngine(t, nil)

	tests := []struct {
		name       string
		descriptor string
	}{
		{name: "empty descriptor", descriptor: ""},
		{name: "not json", descriptor: "http://example.com"},
		{name: "missing url", descriptor: `{"method": "POST"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Execute(context.Background(), &ToolDefinition{
				Name:               "broken",
				ImplementationType: TypeHTTP,
				Implementation:     tt.descriptor,
			}, ExecutionRequest{})

			assert.False(t, result.Success)
			assert.Equal(t, "configuration", result.Meta["error_type"])
		})
	}
}

func TestHTTPInvoker_ConnectionErrorIsInvocationFailure(t *testing.T) {
	engine := newTestEngine(t, nil)

	// Port 1 is essentially guaranteed to refuse connections.
	result := engine.Execute(context.Background(), httpTool(t, HTTPConfig{URL: "http://127.0.0.1:1/"}), ExecutionRequest{})

	assert.False(t, result.Success)
	assert.Equal(t, "invocation", result.Meta["error_type"])
}
