package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Global logger instance and synchronization
var (
	logger   *logrus.Logger
	loggerMu sync.RWMutex
	logFile  *os.File // Track file handle for cleanup
	isInited bool
	initOnce sync.Once // For lazy initialization in GetLogger
)

// LogLevel represents logging verbosity
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config holds logger configuration
type Config struct {
	Level      LogLevel
	OutputPath string // Empty for stderr, or file path
	Format     string // "json" or "text"
}

// Init initializes the global logger with the given configuration.
// This should be called once at application startup.
// Subsequent calls to Init will return an error to prevent multiple initialization.
//
// Example:
//
//	logging.Init(logging.Config{
//	    Level: logging.LevelInfo,
//	    OutputPath: "logs/synckit.log",
//	    Format: "json",
//	})
func Init(config Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return fmt.Errorf("logger already initialized; call Close() first to reinitialize")
	}

	var writer io.Writer

	if config.OutputPath == "" {
		writer = os.Stderr
	} else {
		logDir := filepath.Dir(config.OutputPath)
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			return err
		}

		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		writer = file
		logFile = file
	}

	var level logrus.Level
	switch config.Level {
	case LevelDebug:
		level = logrus.DebugLevel
	case LevelInfo:
		level = logrus.InfoLevel
	case LevelWarn:
		level = logrus.WarnLevel
	case LevelError:
		level = logrus.ErrorLevel
	default:
		level = logrus.InfoLevel
	}

	l := logrus.New()
	l.SetOutput(writer)
	l.SetLevel(level)

	if config.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{})
	}

	logger = l
	isInited = true
	return nil
}

// InitDefault initializes the logger with sensible defaults:
// - Level: INFO
// - Output: stderr
// - Format: text
// This is safe to call multiple times and will only initialize once.
func InitDefault() {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return
	}

	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	logger = l
	isInited = true
}

// Close closes the logger and any open file handles.
// After calling Close, you can call Init again to reinitialize.
// It's safe to call Close multiple times.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if !isInited {
		return nil
	}

	var err error
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}

	logger = nil
	isInited = false

	initOnce = sync.Once{}
	return err
}

// GetLogger returns the current logger instance in a thread-safe manner.
// If the logger is not initialized, it initializes with defaults using sync.Once
// for efficient lazy initialization.
func GetLogger() *logrus.Logger {
	loggerMu.RLock()
	if isInited {
		l := logger
		loggerMu.RUnlock()
		return l
	}
	loggerMu.RUnlock()

	initOnce.Do(func() {
		InitDefault()
	})

	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	return l
}

// Debug logs a debug message in a thread-safe manner
func Debug(args ...any) {
	GetLogger().Debug(args...)
}

// Debugf logs a formatted debug message in a thread-safe manner
func Debugf(format string, args ...any) {
	GetLogger().Debugf(format, args...)
}

// Info logs an info message in a thread-safe manner
func Info(args ...any) {
	GetLogger().Info(args...)
}

// Warn logs a warning message in a thread-safe manner
func Warn(args ...any) {
	GetLogger().Warn(args...)
}

// Warnf logs a formatted warning message in a thread-safe manner
func Warnf(format string, args ...any) {
	GetLogger().Warnf(format, args...)
}

// Error logs an error message in a thread-safe manner
func Error(args ...any) {
	GetLogger().Error(args...)
}

// Errorf logs a formatted error message in a thread-safe manner
func Errorf(format string, args ...any) {
	GetLogger().Errorf(format, args...)
}
