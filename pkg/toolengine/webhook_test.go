package toolengine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookTool(url string) *ToolDefinition {
	return &ToolDefinition{
		ID:                 "wh-1",
		Name:               "notify",
		ImplementationType: TypeWebhook,
		Implementation:     url,
	}
}

func TestWebhookInvoker_EnvelopeShape(t *testing.T) {
	var payload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))

		_, _ = w.Write([]byte(`{"received": true}`))
	}))
	defer server.Close()

	engine := newTestEngine(t, nil)
	before := float64(time.Now().Unix())

	result := engine.Execute(context.Background(), webhookTool(server.URL), ExecutionRequest{
		Arguments: map[string]interface{}{"event": "created"},
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, map[string]interface{}{"received": true}, result.Output)

	assert.Equal(t, "notify", payload["tool_name"])
	assert.Equal(t, "wh-1", payload["tool_id"])
	assert.Equal(t, map[string]interface{}{"event": "created"}, payload["arguments"])

	ts, ok := payload["timestamp"].(float64)
	require.True(t, ok, "timestamp must be a unix float")
	assert.GreaterOrEqual(t, ts, before)
}

func TestWebhookInvoker_NonJSONReplyWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	engine := newTestEngine(t, nil)
	result := engine.Execute(context.Background(), webhookTool(server.URL), ExecutionRequest{})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, map[string]interface{}{
		"status":   "webhook_delivered",
		"response": "OK",
	}, result.Output)
}

func TestWebhookInvoker_Non2xxIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not today", http.StatusForbidden)
	}))
	defer server.Close()

	engine := newTestEngine(t, nil)
	result := engine.Execute(context.Background(), webhookTool(server.URL), ExecutionRequest{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "403")
	assert.Equal(t, "invocation", result.Meta["error_type"])
}

func TestWebhookInvoker_BadURLIsConfigError(t *testing.T) {
	engine := newTestEngine(t, nil)

	for _, descriptor := range []string{"", "   ", "ftp://example.com/hook", "not a url"} {
		result := engine.Execute(context.Background(), webhookTool(descriptor), ExecutionRequest{})

		assert.False(t, result.Success, "descriptor %q", descriptor)
		assert.Equal(t, "configuration", result.Meta["error_type"], "descriptor %q", descriptor)
	}
}
