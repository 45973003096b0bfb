package toolengine

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfiguration is returned when a tool's implementation descriptor
	// is missing or malformed for the chosen backend
	ErrConfiguration = errors.New("invalid tool configuration")

	// ErrValidation is returned when arguments or output violate the
	// declared schema
	ErrValidation = errors.New("schema validation failed")

	// ErrSecurity is returned when a descriptor pattern check, argument
	// metacharacter check, or command whitelist check fails
	ErrSecurity = errors.New("security check rejected")

	// ErrInvocation is returned when the backend call itself fails
	// (non-2xx HTTP, non-zero exit, transport error, remote error field)
	ErrInvocation = errors.New("tool invocation failed")

	// ErrTimeout is returned when a bounded wait is exceeded
	ErrTimeout = errors.New("tool execution timed out")

	// ErrUnsupportedType is returned for an unrecognized implementation type
	ErrUnsupportedType = errors.New("unsupported implementation type")
)

// ErrorKind maps an error to a stable label for logs, metrics and audit
// records.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrSecurity):
		return "security"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ErrInvocation):
		return "invocation"
	default:
		return "internal"
	}
}

// ProcessError reports a spawned process that exited non-zero or overran
// its timeout. Captured stdout/stderr stay available so the caller keeps
// diagnostic detail even on failure.
type ProcessError struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Timeout  bool
	Limit    time.Duration
}

func (e *ProcessError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("command timed out after %s", e.Limit)
	}
	return fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	if e.Timeout {
		return ErrTimeout
	}
	return ErrInvocation
}
