package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDependency, "test message: %s", "value")

	if err.Code != ErrCodeInvalidDependency {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDependency)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_DEPENDENCY: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeIO, cause, "open ledger")

	if err.Code != ErrCodeIO {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeIO)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "IO_ERROR: open ledger: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeParse, "test"),
			code:     ErrCodeParse,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeParse, "test"),
			code:     ErrCodeIO,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeExecution, New(ErrCodeIO, "inner"), "outer"),
			code:     ErrCodeExecution,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("patch: %w", New(ErrCodePathResolution, "missing")),
			code:     ErrCodePathResolution,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidPackage, "test"), ErrCodeInvalidPackage},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
		{"with cause", Wrap(ErrCodeIO, errors.New("permission denied"), "read manifest %s", "Cargo.toml"), "read manifest Cargo.toml: permission denied"},
		{"nested", Wrap(ErrCodeExecution, New(ErrCodeIO, "disk full"), "vendor"), "vendor: disk full"},
		{"wrapped by fmt", fmt.Errorf("vendor: %w", New(ErrCodeExecution, "cargo exited 101")), "cargo exited 101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExecutionError(t *testing.T) {
	t.Run("with stderr", func(t *testing.T) {
		err := &ExecutionError{Command: "cargo add", ExitCode: 101, Stderr: "error: no such crate"}
		expected := "cargo add failed (exit 101): error: no such crate"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without stderr", func(t *testing.T) {
		err := &ExecutionError{Command: "cargo vendor", ExitCode: 1}
		expected := "cargo vendor failed (exit 1)"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("wrapped keeps code", func(t *testing.T) {
		exec := &ExecutionError{Command: "cargo vendor", ExitCode: 1}
		err := Wrap(exec.Code(), exec, "vendor root")
		if !Is(err, ErrCodeExecution) {
			t.Error("expected EXECUTION_FAILED code")
		}
		var target *ExecutionError
		if !errors.As(err, &target) {
			t.Fatal("errors.As failed to find *ExecutionError")
		}
		if target.ExitCode != 1 {
			t.Errorf("ExitCode = %d, want 1", target.ExitCode)
		}
	})
}
