package toolengine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/rs/zerolog/log"
)

const defaultCommandTimeout = 30 * time.Second

// shellMetaPattern matches shell metacharacters that are never allowed in
// argument values. The process is spawned without a shell, so these have
// no legitimate use in an argument.
var shellMetaPattern = regexp.MustCompile("[;&|`$(){}\\[\\]<>\\\\'\"]")

// placeholderPattern matches an unfilled {name} slot left in a command
// template after substitution.
var placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// CommandInvoker executes command tools: the template is filled with
// sanitized arguments, tokenized with shell quoting rules, and the
// resulting argv is launched directly. No shell interpreter is ever in the
// execution path.
type CommandInvoker struct{}

func (ci *CommandInvoker) Invoke(ctx context.Context, tool *ToolDefinition, arguments map[string]interface{}) (interface{}, error) {
	cfg, err := parseCommandConfig(tool.Implementation)
	if err != nil {
		return nil, err
	}

	sanitized, err := sanitizeCommandArguments(arguments)
	if err != nil {
		return nil, err
	}

	commandLine := cfg.Command
	for key, value := range sanitized {
		commandLine = strings.ReplaceAll(commandLine, "{"+key+"}", value)
	}
	if missing := placeholderPattern.FindString(commandLine); missing != "" {
		return nil, fmt.Errorf("%w: missing required argument for placeholder %s", ErrConfiguration, missing)
	}

	parts, err := shellwords.Parse(commandLine)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid command format: %v", ErrConfiguration, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: command cannot be empty", ErrConfiguration)
	}

	executable := parts[0]
	if len(cfg.AllowedCommands) > 0 && !containsString(cfg.AllowedCommands, executable) {
		return nil, fmt.Errorf("%w: command %q is not in the allowed commands list", ErrSecurity, executable)
	}

	timeout := defaultCommandTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, executable, parts[1:]...)
	if cfg.WorkingDir != "" {
		cmd.Dir = cfg.WorkingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if execCtx.Err() == context.DeadlineExceeded {
		log.Warn().
			Str("tool", tool.Name).
			Str("command", executable).
			Dur("timeout", timeout).
			Msg("Command timed out, process killed")
		return nil, &ProcessError{
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
			Timeout: true,
			Limit:   timeout,
		}
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return nil, &ProcessError{
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				ExitCode: exitErr.ExitCode(),
			}
		}
		return nil, fmt.Errorf("%w: failed to run command %q: %v", ErrInvocation, executable, runErr)
	}

	log.Debug().
		Str("tool", tool.Name).
		Str("command", executable).
		Int("args", len(parts)-1).
		Msg("Command executed")

	return map[string]interface{}{
		"stdout":      stdout.String(),
		"stderr":      stderr.String(),
		"return_code": 0,
	}, nil
}

// sanitizeCommandArguments converts argument values to strings, rejecting
// any string that contains a shell metacharacter. A single bad value fails
// the whole call before the template is touched.
func sanitizeCommandArguments(arguments map[string]interface{}) (map[string]string, error) {
	sanitized := make(map[string]string, len(arguments))
	for key, value := range arguments {
		switch v := value.(type) {
		case string:
			if loc := shellMetaPattern.FindString(v); loc != "" {
				return nil, fmt.Errorf("%w: argument %q contains disallowed shell character %q", ErrSecurity, key, loc)
			}
			sanitized[key] = v
		case bool:
			sanitized[key] = strconv.FormatBool(v)
		case int:
			sanitized[key] = strconv.Itoa(v)
		case int64:
			sanitized[key] = strconv.FormatInt(v, 10)
		case float64:
			sanitized[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("%w: argument %q must be a string, number, or boolean", ErrValidation, key)
		}
	}
	return sanitized, nil
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
