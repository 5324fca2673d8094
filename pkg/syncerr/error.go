package syncerr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Category classifies errors by their nature and appropriate handling strategy.
// The taxonomy mirrors the toolkit's contract: usage errors are fatal defects
// in the caller, timeouts and closed-channel outcomes are ordinary results
// the caller must branch on, and task failures are isolated per work item.
type Category int

const (
	// CategoryUsage represents programmer errors in how the toolkit is called.
	// Examples: releasing a lock that is not held, releasing a semaphore past
	// its maximum, building an ordered lock set from duplicate locks.
	// These are not recoverable by the toolkit; they panic at the offending call.
	CategoryUsage Category = iota

	// CategoryTimeout represents bounded waits that expired before the
	// resource became available. Shared state is left unchanged; callers are
	// expected to branch on this outcome rather than treat it as a failure.
	CategoryTimeout

	// CategoryClosed represents operations against a closed channel or a
	// shut-down pool: sends after Close, submits after Shutdown.
	CategoryClosed

	// CategoryTask represents a failure raised inside a worker-pool task.
	// These are caught per item, forwarded to the pool's error sink, and
	// never terminate the worker that ran the item.
	CategoryTask
)

// Sentinel errors for the outcomes callers branch on. All toolkit errors of
// the corresponding category match these via errors.Is.
var (
	// ErrTimeout is returned by the timed acquire/wait/send/receive variants
	// when the deadline expires before the operation could complete.
	ErrTimeout = errors.New("synckit: wait timed out")

	// ErrClosed is returned by Send on a closed channel, and by Receive once
	// a closed channel has been fully drained.
	ErrClosed = errors.New("synckit: channel closed")

	// ErrShutdown is returned by Submit on a pool that has begun shutting down.
	ErrShutdown = errors.New("synckit: pool shut down")
)

// Error represents a structured toolkit error with context information.
type Error struct {
	// Code is a unique identifier for this error type (e.g., "RELEASE_NOT_HELD",
	// "SEMAPHORE_OVERFLOW", "TASK_PANIC").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category Category

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	// Example: "permits already at maximum 4" where Message might be
	// "release exceeds semaphore capacity".
	Detail string

	// Operation identifies the toolkit operation that was being performed.
	// Examples: "Acquire", "Release", "Send", "Shutdown".
	Operation string

	// Component identifies the component where the error originated.
	// Examples: "ExclusiveLock", "CountingSemaphore", "BoundedChannel", "WorkerPool".
	Component string

	// Cause is the underlying error that triggered this one, if any.
	Cause error

	// Stack contains the call stack where this error was created.
	// Automatically captured in New and Wrap.
	Stack []uintptr
}

// New creates a new Error with the specified category, code, and message.
func New(category Category, code, message string) *Error {
	return &Error{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with toolkit context information.
// If the error is already an *Error, it enriches the existing error with
// operation and component context (only if not already set).
func Wrap(err error, code, operation, component string) *Error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		if se.Operation == "" {
			se.Operation = operation
		}
		if se.Component == "" {
			se.Component = component
		}
		return se
	}

	return &Error{
		Code:      code,
		Category:  CategoryTask,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// captureStack captures the current call stack for debugging purposes.
// It skips the first 3 frames to exclude captureStack, New/Wrap, and the
// immediate caller, focusing on the actual error origin.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard Go error interface.
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error, enabling error chain traversal
// with Go's standard error handling functions like errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is maps categories onto the package sentinels so that callers can branch
// with errors.Is(err, ErrTimeout) regardless of which component produced the
// error.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Category == CategoryTimeout
	case ErrClosed:
		return e.Category == CategoryClosed
	case ErrShutdown:
		return e.Category == CategoryClosed && e.Component == "WorkerPool"
	}
	return false
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *Error) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
