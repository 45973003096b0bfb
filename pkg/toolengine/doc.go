// Package toolengine executes registered tools against their declared
// backend: an in-process function, an HTTP endpoint, a command line, a
// webhook, or a remote MCP tool server (HTTP or stdio).
//
// Invariants:
// - Arguments are schema-validated before any backend is reached.
// - Exactly one of output and error is populated in a result.
// - Every failure, including panics, becomes a failed ExecutionResult.
// - Each backend call is single-attempt with a hard timeout.
//
// Usage:
//
//	engine := toolengine.New(toolengine.Config{Registry: registry})
//	result := engine.Execute(ctx, &toolengine.ToolDefinition{
//		Name:               "echo",
//		ImplementationType: toolengine.TypeCommand,
//		Implementation:     `{"command": "echo {msg}", "allowed_commands": ["echo"]}`,
//	}, toolengine.ExecutionRequest{Arguments: map[string]interface{}{"msg": "hello"}})
package toolengine
