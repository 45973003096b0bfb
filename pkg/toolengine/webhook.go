package toolengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WebhookInvoker posts a fixed event envelope to the configured URL. The
// descriptor is the bare URL itself.
type WebhookInvoker struct {
	client *http.Client
}

func (wi *WebhookInvoker) Invoke(ctx context.Context, tool *ToolDefinition, arguments map[string]interface{}) (interface{}, error) {
	webhookURL := strings.TrimSpace(tool.Implementation)
	if webhookURL == "" {
		return nil, fmt.Errorf("%w: webhook url is required", ErrConfiguration)
	}

	parsed, err := url.Parse(webhookURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: webhook url %q must be an http(s) url", ErrConfiguration, webhookURL)
	}

	payload := map[string]interface{}{
		"tool_name": tool.Name,
		"tool_id":   tool.ID,
		"arguments": arguments,
		"timestamp": float64(time.Now().UnixNano()) / float64(time.Second),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding webhook payload: %v", ErrInvocation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building webhook request: %v", ErrConfiguration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := wi.client.Do(req)
	if err != nil {
		return nil, classifyTransportError("webhook delivery", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading webhook response: %v", ErrInvocation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: webhook returned status %d: %s",
			ErrInvocation, resp.StatusCode, truncate(string(respBody), maxErrorBody))
	}

	var decoded interface{}
	if err := json.Unmarshal(respBody, &decoded); err == nil {
		return decoded, nil
	}

	// Delivered but the receiver replied with something other than JSON.
	return map[string]interface{}{
		"status":   "webhook_delivered",
		"response": string(respBody),
	}, nil
}
