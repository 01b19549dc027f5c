package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []string{ErrConfig, ErrEval, ErrSource, ErrFeed}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in stripchart.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "eval error",
			code:       ErrEval,
			message:    "Equation for 'load' is invalid",
			suggestion: "Fix the equation and reload",
		},
		{
			name:       "source error",
			code:       ErrSource,
			message:    "Unknown host-state key 'bogus'",
			suggestion: "Use one of load, mem, swap, cpu, uptime, procs, disk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := New(ErrConfig, "Bad config", "")
		assert.Equal(t, "✗ Bad config\n", err.Error())
	})

	t.Run("with cause and suggestion", func(t *testing.T) {
		err := WrapWithCode(fmt.Errorf("closing parenthesis expected"), ErrEval, "Equation rejected", "Balance the parentheses")
		out := err.Error()

		lines := strings.Split(out, "\n")
		assert.Equal(t, "✗ Equation rejected", lines[0])
		assert.Contains(t, out, "  closing parenthesis expected")
		assert.Contains(t, out, "  Balance the parentheses")
		assert.True(t, strings.Index(out, "closing") < strings.Index(out, "Balance"))
	})
}

func TestWrapWithCodeUnwraps(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := WrapWithCode(cause, ErrEval, "evaluation failed", "")

	assert.Equal(t, ErrEval, err.Code)
	assert.True(t, errors.Is(err, cause))
}

func TestIsCode(t *testing.T) {
	base := New(ErrSource, "no such key", "")
	wrapped := fmt.Errorf("adding parameter: %w", base)

	assert.True(t, IsCode(base, ErrSource))
	assert.True(t, IsCode(wrapped, ErrSource))
	assert.False(t, IsCode(wrapped, ErrConfig))
	assert.False(t, IsCode(nil, ErrSource))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrSource))
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantMsg string
	}{
		{name: "zero exit code", code: 0, wantMsg: "exit code 0"},
		{name: "non-zero exit code", code: 1, wantMsg: "exit code 1"},
		{name: "negative exit code", code: -1, wantMsg: "exit code -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewExitError(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{name: "ExitError returns code", err: NewExitError(42), wantCode: 42, wantOk: true},
		{name: "wrapped ExitError", err: fmt.Errorf("check: %w", NewExitError(1)), wantCode: 1, wantOk: true},
		{name: "standard error returns false", err: fmt.Errorf("standard error")},
		{name: "nil error returns false", err: nil},
		{name: "structured Error returns false", err: New(ErrConfig, "test", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
