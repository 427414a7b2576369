// Package logging provides config-driven categorized file-based logging
// for hivemind. Logs are written to .hivemind/logs/ with a separate file
// per category, built on zap cores. Logging is controlled by debug_mode in
// .hivemind/config.json — when false, nothing is written.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and wiring
	CategorySession Category = "session" // Session orchestration, persistence
	CategoryBackend Category = "backend" // Inference backend calls
	CategoryBrain   Category = "brain"   // Knowledge-store queries
	CategoryLab     Category = "lab"     // Code execution
	CategoryStore   Category = "store"   // Session archive
	CategoryChat    Category = "chat"    // Interactive chat surface
)

// Config mirrors the logging section of .hivemind/config.json.
type Config struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories"`
	Level      string          `json:"level"`
}

// configFile is the slice of the config file this package reads.
type configFile struct {
	Logging Config `json:"logging"`
}

// Logger writes to one category's log file. A Logger with a nil sugar
// handle is a no-op; every method is safe on it.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu         sync.RWMutex
	loggers    = make(map[Category]*Logger)
	logsDir    string
	config     Config
	level      zapcore.Level
	syncCloser []func()
)

// Initialize sets up the logging directory and loads config. Call once at
// startup with the workspace path. Silent no-op when debug mode is off.
func Initialize(workspace string) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	mu.Lock()
	defer mu.Unlock()

	if err := loadConfigLocked(workspace); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not load config: %v\n", err)
		config.DebugMode = false
	}
	if !config.DebugMode {
		return nil
	}

	logsDir = filepath.Join(workspace, ".hivemind", "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return nil
}

// loadConfigLocked reads the logging section of .hivemind/config.json.
// A missing file means production mode: no logging.
func loadConfigLocked(workspace string) error {
	configPath := filepath.Join(workspace, ".hivemind", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			config = Config{}
			return nil
		}
		return err
	}

	var cf configFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	config = cf.Logging

	switch config.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}
	return nil
}

// IsDebugMode reports whether debug logging is enabled.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled reports whether a category writes anywhere.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category. Disabled categories
// get a no-op logger.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	enabled := categoryEnabledLocked(category) && logsDir != ""
	mu.RUnlock()

	if !enabled {
		return &Logger{category: category}
	}

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	// Date-prefixed file names make rotation a matter of deleting old files.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(file)),
		level,
	)

	z := zap.New(core).Named(string(category))
	l := &Logger{category: category, sugar: z.Sugar()}
	loggers[category] = l
	syncCloser = append(syncCloser, func() {
		_ = z.Sync()
		_ = file.Close()
	})

	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// CloseAll flushes and closes all open log files. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	for _, closeFn := range syncCloser {
		closeFn()
	}
	syncCloser = nil
	loggers = make(map[Category]*Logger)
}
