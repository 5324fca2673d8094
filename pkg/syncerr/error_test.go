package syncerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := New(CategoryUsage, "RELEASE_NOT_HELD", "release of unheld lock")
	err.Detail = "lock seq 3"
	err.Operation = "Release"
	err.Component = "ExclusiveLock"

	got := err.Error()
	expected := "[RELEASE_NOT_HELD] release of unheld lock: lock seq 3 (operation: Release, component: ExclusiveLock)"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestError_FormatWithCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, "TASK_PANIC", "run", "WorkerPool")

	if !strings.Contains(err.Error(), "caused by: boom") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
}

func TestWrap_NilError(t *testing.T) {
	if Wrap(nil, "CODE", "op", "component") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestWrap_EnrichesExisting(t *testing.T) {
	inner := New(CategoryTimeout, "ACQUIRE_TIMEOUT", "acquire timed out")
	outer := Wrap(fmt.Errorf("outer: %w", inner), "IGNORED", "TryAcquire", "CountingSemaphore")

	if outer.Code != "ACQUIRE_TIMEOUT" {
		t.Errorf("expected existing code preserved, got %s", outer.Code)
	}
	if outer.Operation != "TryAcquire" || outer.Component != "CountingSemaphore" {
		t.Errorf("expected operation/component filled in, got %s/%s", outer.Operation, outer.Component)
	}
}

func TestError_SentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		sentinel error
		expected bool
	}{
		{"timeout matches ErrTimeout", New(CategoryTimeout, "T", "t"), ErrTimeout, true},
		{"closed matches ErrClosed", New(CategoryClosed, "C", "c"), ErrClosed, true},
		{"usage does not match ErrTimeout", New(CategoryUsage, "U", "u"), ErrTimeout, false},
		{"timeout does not match ErrClosed", New(CategoryTimeout, "T", "t"), ErrClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.sentinel); got != tt.expected {
				t.Errorf("expected errors.Is=%v, got %v", tt.expected, got)
			}
		})
	}
}

func TestError_ShutdownSentinel(t *testing.T) {
	err := New(CategoryClosed, "POOL_SHUTDOWN", "submit after shutdown")
	err.Component = "WorkerPool"

	if !errors.Is(err, ErrShutdown) {
		t.Error("pool closed error should match ErrShutdown")
	}
	if !errors.Is(err, ErrClosed) {
		t.Error("pool closed error should also match ErrClosed")
	}
}

func TestError_FormatStack(t *testing.T) {
	err := New(CategoryUsage, "X", "x")
	stack := err.FormatStack()

	if !strings.Contains(stack, "Stack trace:") {
		t.Errorf("expected stack header, got %q", stack)
	}
	if !strings.Contains(stack, "error_test.go") {
		t.Errorf("expected this test file in the stack, got %q", stack)
	}
}
