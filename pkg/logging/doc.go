// Package logging provides a process-wide structured logger for synckit.
//
// The package wraps [github.com/sirupsen/logrus] and exposes a single global
// logger instance that is initialized once and then retrieved via GetLogger.
// All toolkit components obtain their logger through this package rather than
// constructing their own logrus.Logger values, so that log level and output
// destination are controlled from a single place.
//
// # Initialisation
//
// Call Init (or InitDefault for sensible defaults) once at program startup,
// before any goroutines that might call GetLogger are spawned:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes INFO-level logs to stderr without a log file.
//
// # Retrieving the logger
//
//	logger := logging.GetLogger()
//	logger.Info("pool started")
//
// If GetLogger is called before Init, a default stderr logger is created
// lazily (via sync.Once) so that packages that log during init are safe.
//
// # Contextual entries
//
// The With* helpers (WithLock, WithUnit, WithComponent, WithPool) return
// logrus entries pre-populated with the fields the toolkit's components log
// on every acquire, release and lifecycle transition.
package logging
