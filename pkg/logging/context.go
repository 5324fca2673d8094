package logging

import (
	"github.com/sirupsen/logrus"

	"synckit/pkg/primitives"
)

// WithLock creates a log entry with lock context.
// Use this so every acquire/release line carries the lock identity.
//
// Example:
//
//	log := logging.WithLock("buffer-mutex", seq)
//	log.Debug("lock acquired")
func WithLock(name string, seq int64) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"lock": name,
		"seq":  seq,
	})
}

// WithUnit creates a log entry with execution-unit context.
//
// Example:
//
//	log := logging.WithUnit(holder)
//	log.Debug("waiting for permit")
func WithUnit(unit *primitives.UnitID) *logrus.Entry {
	if unit == nil {
		return logrus.NewEntry(GetLogger())
	}
	return GetLogger().WithField("unit", unit.String())
}

// WithComponent creates a log entry tagged with a toolkit component name
// (semaphore, channel, pool, ...).
func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}

// WithPool creates a log entry with worker-pool context.
//
// Example:
//
//	log := logging.WithPool(name, workers)
//	log.Info("pool started")
func WithPool(name string, workers int) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"pool":    name,
		"workers": workers,
	})
}
