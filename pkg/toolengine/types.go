package toolengine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ImplementationType identifies the backend a tool is executed against.
type ImplementationType string

const (
	TypeFunction   ImplementationType = "function"
	TypeHTTP       ImplementationType = "http"
	TypeCommand    ImplementationType = "command"
	TypeWebhook    ImplementationType = "webhook"
	TypeRemoteTool ImplementationType = "remote_tool"
)

// ExecutionStatus tracks the lifecycle of a single tool call. The engine
// itself only ever returns StatusSuccess or StatusFailed; the remaining
// values exist for callers that persist execution history.
type ExecutionStatus string

const (
	StatusPending ExecutionStatus = "pending"
	StatusRunning ExecutionStatus = "running"
	StatusSuccess ExecutionStatus = "success"
	StatusFailed  ExecutionStatus = "failed"
)

// ToolDefinition describes a registered tool. It is read-only from the
// engine's point of view: the registry layer resolves it and hands it in
// per call.
type ToolDefinition struct {
	ID                 string                 `json:"id,omitempty"`
	Name               string                 `json:"name"`
	Description        string                 `json:"description,omitempty"`
	ImplementationType ImplementationType     `json:"implementation_type"`
	Implementation     string                 `json:"implementation"`
	InputSchema        map[string]interface{} `json:"input_schema,omitempty"`
	OutputSchema       map[string]interface{} `json:"output_schema,omitempty"`
}

// ExecutionRequest carries the caller-supplied arguments and optional
// metadata for a single tool call.
type ExecutionRequest struct {
	Arguments map[string]interface{} `json:"arguments"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ExecutionResult is the uniform outcome of a tool call. Exactly one of
// Output and Error is populated. Meta carries backend-specific diagnostics
// (e.g. stdout/stderr of a failed command) that are safe to expose even on
// failure.
type ExecutionResult struct {
	Success    bool                   `json:"success"`
	Output     interface{}            `json:"output,omitempty"`
	Error      string                 `json:"error_message,omitempty"`
	DurationMS int64                  `json:"execution_time_ms"`
	Status     ExecutionStatus        `json:"status"`
	Meta       map[string]interface{} `json:"metadata,omitempty"`
}

// HTTPConfig is the parsed descriptor for http tools.
type HTTPConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// CommandConfig is the parsed descriptor for command tools. Timeout is in
// seconds; a non-empty AllowedCommands list is an exact-match whitelist
// applied to the resolved executable before the process is spawned.
type CommandConfig struct {
	Command         string   `json:"command"`
	WorkingDir      string   `json:"working_dir,omitempty"`
	Timeout         int      `json:"timeout,omitempty"`
	AllowedCommands []string `json:"allowed_commands,omitempty"`
}

// Remote transport tags as stored in descriptors. The short forms "http"
// and "stdio" are accepted as aliases.
const (
	RemoteTransportHTTP  = "mcp_http"
	RemoteTransportStdio = "mcp_stdio"
)

// RemoteToolConfig is the parsed descriptor for remote_tool tools.
type RemoteToolConfig struct {
	Type      string   `json:"type,omitempty"`
	ServerURL string   `json:"server_url,omitempty"`
	Command   []string `json:"command,omitempty"`
	ToolName  string   `json:"tool_name,omitempty"`
	Timeout   int      `json:"timeout,omitempty"`
}

func parseHTTPConfig(descriptor string) (*HTTPConfig, error) {
	if strings.TrimSpace(descriptor) == "" {
		return nil, fmt.Errorf("%w: http endpoint configuration is empty", ErrConfiguration)
	}

	var cfg HTTPConfig
	if err := json.Unmarshal([]byte(descriptor), &cfg); err != nil {
		return nil, fmt.Errorf("%w: invalid http endpoint configuration: %v", ErrConfiguration, err)
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: url is required for http endpoint", ErrConfiguration)
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if cfg.Method == "" {
		cfg.Method = "POST"
	}

	return &cfg, nil
}

func parseCommandConfig(descriptor string) (*CommandConfig, error) {
	if strings.TrimSpace(descriptor) == "" {
		return nil, fmt.Errorf("%w: command configuration is empty", ErrConfiguration)
	}

	var cfg CommandConfig
	if err := json.Unmarshal([]byte(descriptor), &cfg); err != nil {
		return nil, fmt.Errorf("%w: invalid command configuration: %v", ErrConfiguration, err)
	}
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, fmt.Errorf("%w: command template is required", ErrConfiguration)
	}

	return &cfg, nil
}

func parseRemoteToolConfig(descriptor string) (*RemoteToolConfig, error) {
	if strings.TrimSpace(descriptor) == "" {
		return nil, fmt.Errorf("%w: remote tool configuration is empty", ErrConfiguration)
	}

	var cfg RemoteToolConfig
	if err := json.Unmarshal([]byte(descriptor), &cfg); err != nil {
		return nil, fmt.Errorf("%w: invalid remote tool configuration: %v", ErrConfiguration, err)
	}

	switch cfg.Type {
	case "", "http", RemoteTransportHTTP:
		cfg.Type = RemoteTransportHTTP
	case "stdio", RemoteTransportStdio:
		cfg.Type = RemoteTransportStdio
	default:
		return nil, fmt.Errorf("%w: unknown remote transport %q", ErrConfiguration, cfg.Type)
	}

	return &cfg, nil
}

// remoteToolName resolves the tool name to send to the remote server. Tools
// imported by discovery are stored as "server:tool"; the remote side only
// knows the bare name.
func remoteToolName(cfg *RemoteToolConfig, tool *ToolDefinition) string {
	if cfg.ToolName != "" {
		return cfg.ToolName
	}
	if idx := strings.LastIndex(tool.Name, ":"); idx >= 0 {
		return tool.Name[idx+1:]
	}
	return tool.Name
}
