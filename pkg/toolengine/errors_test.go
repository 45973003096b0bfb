package toolengine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: fmt.Errorf("%w: input bad", ErrValidation), want: "validation"},
		{name: "security", err: fmt.Errorf("%w: nope", ErrSecurity), want: "security"},
		{name: "timeout", err: ErrTimeout, want: "timeout"},
		{name: "configuration", err: fmt.Errorf("%w: missing url", ErrConfiguration), want: "configuration"},
		{name: "unsupported type", err: ErrUnsupportedType, want: "unsupported_type"},
		{name: "invocation", err: fmt.Errorf("%w: 500", ErrInvocation), want: "invocation"},
		{name: "unclassified", err: errors.New("mystery"), want: "internal"},
		{name: "process exit", err: &ProcessError{ExitCode: 2}, want: "invocation"},
		{name: "process timeout", err: &ProcessError{Timeout: true, Limit: time.Second}, want: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestProcessError(t *testing.T) {
	exit := &ProcessError{ExitCode: 3, Stderr: "bad flag"}
	assert.Contains(t, exit.Error(), "exit code 3")
	assert.Contains(t, exit.Error(), "bad flag")
	assert.ErrorIs(t, exit, ErrInvocation)
	assert.NotErrorIs(t, exit, ErrTimeout)

	timedOut := &ProcessError{Timeout: true, Limit: 2 * time.Second}
	assert.Contains(t, timedOut.Error(), "timed out after 2s")
	assert.ErrorIs(t, timedOut, ErrTimeout)

	var target *ProcessError
	wrapped := fmt.Errorf("context: %w", exit)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 3, target.ExitCode)
}
