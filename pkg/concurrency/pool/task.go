package pool

import (
	"github.com/google/uuid"
)

// Task is one unit of work submitted to a WorkerPool. Every task carries a
// process-unique id so failures forwarded to the error sink can be traced
// back to the submission that caused them.
type Task struct {
	id   uuid.UUID
	name string
	fn   func() error
}

// NewTask wraps fn as a named task with a fresh id. The name only appears in
// logs and error reports.
func NewTask(name string, fn func() error) Task {
	return Task{
		id:   uuid.New(),
		name: name,
		fn:   fn,
	}
}

// ID returns the task's unique identity.
func (t Task) ID() uuid.UUID {
	return t.id
}

// Name returns the diagnostic name the task was created with.
func (t Task) Name() string {
	return t.name
}
