package primitives

import (
	"fmt"
	"sync/atomic"
)

var unitCounter int64

// UnitID identifies an execution unit (a goroutine participating in the
// toolkit's protocols) or a lock holder. IDs are process-unique and
// monotonically increasing, which also makes them usable as a global
// acquisition order over locks.
type UnitID struct {
	id int64
}

// NewUnitID allocates the next process-unique identity.
func NewUnitID() *UnitID {
	return &UnitID{
		id: atomic.AddInt64(&unitCounter, 1),
	}
}

// NewUnitIDFromValue creates a UnitID with a specific value.
// This is primarily used by tests that need deterministic identities.
func NewUnitIDFromValue(id int64) *UnitID {
	return &UnitID{
		id: id,
	}
}

func (u *UnitID) ID() int64 {
	return u.id
}

func (u *UnitID) String() string {
	return fmt.Sprintf("unit-%d", u.id)
}

func (u *UnitID) Equals(other *UnitID) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.id == other.id
}
