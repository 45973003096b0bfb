package toolengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxErrorBody bounds how much of a failing response body is echoed into
// error messages.
const maxErrorBody = 512

// HTTPInvoker executes http tools: a single request against the configured
// endpoint with a hard client timeout.
type HTTPInvoker struct {
	client *http.Client
}

func (hi *HTTPInvoker) Invoke(ctx context.Context, tool *ToolDefinition, arguments map[string]interface{}) (interface{}, error) {
	cfg, err := parseHTTPConfig(tool.Implementation)
	if err != nil {
		return nil, err
	}

	var req *http.Request
	if cfg.Method == http.MethodGet {
		req, err = hi.buildGetRequest(ctx, cfg, arguments)
	} else {
		req, err = hi.buildBodyRequest(ctx, cfg, arguments)
	}
	if err != nil {
		return nil, err
	}

	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := hi.client.Do(req)
	if err != nil {
		return nil, classifyTransportError("http request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading http response: %v", ErrInvocation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http endpoint returned status %d: %s",
			ErrInvocation, resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	return decodeResponseBody(body), nil
}

func (hi *HTTPInvoker) buildGetRequest(ctx context.Context, cfg *HTTPConfig, arguments map[string]interface{}) (*http.Request, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %q: %v", ErrConfiguration, cfg.URL, err)
	}

	query := parsed.Query()
	for key, value := range arguments {
		query.Set(key, fmt.Sprintf("%v", value))
	}
	parsed.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building http request: %v", ErrConfiguration, err)
	}
	return req, nil
}

func (hi *HTTPInvoker) buildBodyRequest(ctx context.Context, cfg *HTTPConfig, arguments map[string]interface{}) (*http.Request, error) {
	payload, err := json.Marshal(arguments)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding arguments: %v", ErrInvocation, err)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: building http request: %v", ErrConfiguration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// decodeResponseBody parses a response as JSON, falling back to wrapping
// the raw text rather than discarding it.
func decodeResponseBody(body []byte) interface{} {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err == nil {
		return decoded
	}
	return map[string]interface{}{"response": string(body)}
}

// classifyTransportError distinguishes a client-side timeout from other
// transport failures.
func classifyTransportError(op string, err error) error {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInvocation, op, err)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
