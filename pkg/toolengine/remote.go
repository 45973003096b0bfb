package toolengine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultRemoteTimeout = 30 * time.Second

// JSON-RPC 2.0 envelope used for remote tool invocation over both HTTP and
// process stdio.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      interface{}     `json:"id"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RemoteToolInvoker calls a tool hosted on a remote MCP server, reachable
// either over HTTP or through a spawned process's stdio.
type RemoteToolInvoker struct {
	client *http.Client
}

func (ri *RemoteToolInvoker) Invoke(ctx context.Context, tool *ToolDefinition, arguments map[string]interface{}) (interface{}, error) {
	cfg, err := parseRemoteToolConfig(tool.Implementation)
	if err != nil {
		return nil, err
	}

	name := remoteToolName(cfg, tool)

	switch cfg.Type {
	case RemoteTransportHTTP:
		return ri.invokeHTTP(ctx, cfg, name, arguments)
	case RemoteTransportStdio:
		return ri.invokeStdio(ctx, cfg, name, arguments)
	default:
		return nil, fmt.Errorf("%w: unknown remote transport %q", ErrConfiguration, cfg.Type)
	}
}

// invokeHTTP tries the request shapes remote servers are known to expose,
// in order, and keeps the last error for the aggregate failure. There is
// no discovery step at call time, so routing conventions have to be probed.
func (ri *RemoteToolInvoker) invokeHTTP(ctx context.Context, cfg *RemoteToolConfig, name string, arguments map[string]interface{}) (interface{}, error) {
	server := strings.TrimRight(cfg.ServerURL, "/")
	if server == "" {
		return nil, fmt.Errorf("%w: remote server url is required", ErrConfiguration)
	}

	attempts := []struct {
		endpoint string
		payload  interface{}
	}{
		{server + "/tools/call", map[string]interface{}{"name": name, "arguments": arguments}},
		{server + "/tools/call/" + name, arguments},
		{server + "/mcp", rpcRequest{
			JSONRPC: "2.0",
			Method:  "tools/call",
			Params:  map[string]interface{}{"name": name, "arguments": arguments},
			ID:      1,
		}},
	}

	var lastErr error
	for _, attempt := range attempts {
		output, err := ri.postAndParse(ctx, attempt.endpoint, attempt.payload)
		if err != nil {
			lastErr = err
			log.Debug().
				Str("endpoint", attempt.endpoint).
				Err(err).
				Msg("Remote endpoint attempt failed")
			continue
		}
		return output, nil
	}

	return nil, fmt.Errorf("%w: all remote endpoints failed, last error: %v", ErrInvocation, lastErr)
}

func (ri *RemoteToolInvoker) postAndParse(ctx context.Context, endpoint string, payload interface{}) (interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ri.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("unparseable response: %v", err)
	}

	return normalizeRemoteResponse(data)
}

// normalizeRemoteResponse turns a parsed server response into the uniform
// {result, data} shape. A populated error field is an invocation failure.
func normalizeRemoteResponse(data map[string]interface{}) (interface{}, error) {
	if raw, ok := data["result"]; ok {
		return wrapRemoteResult(raw, data), nil
	}

	if errVal, ok := data["error"]; ok && errVal != nil {
		return nil, fmt.Errorf("%w: remote server error: %v", ErrInvocation, errVal)
	}

	return map[string]interface{}{"result": data, "data": data}, nil
}

// wrapRemoteResult applies the MCP content convention: a list result whose
// first element carries a "text" field yields that text as the primary
// output, with the raw payload kept for diagnostics.
func wrapRemoteResult(result interface{}, data interface{}) map[string]interface{} {
	if list, ok := result.([]interface{}); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]interface{}); ok {
			if text, ok := first["text"]; ok {
				return map[string]interface{}{"result": text, "data": data}
			}
		}
	}
	return map[string]interface{}{"result": result, "data": data}
}

// invokeStdio spawns the configured command vector, writes a single
// JSON-RPC tools/call request, and scans stdout line by line until a line
// carries a result or error field. Other lines (logs, notifications) are
// ignored. The whole exchange is bounded by the timeout, after which the
// process is killed.
func (ri *RemoteToolInvoker) invokeStdio(ctx context.Context, cfg *RemoteToolConfig, name string, arguments map[string]interface{}) (interface{}, error) {
	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("%w: remote server command is required", ErrConfiguration)
	}

	timeout := defaultRemoteTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, cfg.Command[0], cfg.Command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: opening stdin pipe: %v", ErrInvocation, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: opening stdout pipe: %v", ErrInvocation, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start remote tool server: %v", ErrInvocation, err)
	}

	request := rpcRequest{
		JSONRPC: "2.0",
		Method:  "tools/call",
		Params:  map[string]interface{}{"name": name, "arguments": arguments},
		ID:      1,
	}
	go func() {
		defer stdin.Close()
		data, err := json.Marshal(request)
		if err != nil {
			return
		}
		_, _ = io.WriteString(stdin, string(data)+"\n")
	}()

	type outcome struct {
		resp *rpcResponse
		raw  map[string]interface{}
	}
	decisive := make(chan outcome, 1)

	go func() {
		defer close(decisive)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var resp rpcResponse
			if err := json.Unmarshal(line, &resp); err != nil {
				continue
			}
			if len(resp.Result) == 0 && resp.Error == nil {
				continue
			}
			var raw map[string]interface{}
			_ = json.Unmarshal(line, &raw)
			decisive <- outcome{resp: &resp, raw: raw}
			return
		}
	}()

	select {
	case out, ok := <-decisive:
		cancel()
		_ = cmd.Wait()

		if !ok {
			return nil, fmt.Errorf("%w: no parseable response from remote tool server, stderr: %s",
				ErrInvocation, truncate(stderr.String(), maxErrorBody))
		}
		if out.resp.Error != nil {
			return nil, fmt.Errorf("%w: remote server error (%d): %s",
				ErrInvocation, out.resp.Error.Code, out.resp.Error.Message)
		}

		var result interface{}
		if err := json.Unmarshal(out.resp.Result, &result); err != nil {
			return nil, fmt.Errorf("%w: decoding remote result: %v", ErrInvocation, err)
		}
		return wrapRemoteResult(result, out.raw), nil

	case <-execCtx.Done():
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: no response from remote tool server within %s", ErrTimeout, timeout)
	}
}
