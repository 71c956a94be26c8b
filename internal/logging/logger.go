package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Identifier tags every record sent to the journal.
const Identifier = "blnd"

var (
	mutex         sync.RWMutex
	loggers       = make(map[string]*slog.Logger)
	levels        = make(map[string]*slog.LevelVar)
	globalLevel   = &slog.LevelVar{}
	current       Config
	isInitialized bool
)

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// Initialize sets up the logging system. Loggers handed out earlier keep
// working and pick up the new levels and format.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	current = config
	isInitialized = true

	globalLevel.Set(levelOr(config.Level, slog.LevelInfo))

	for module, levelVar := range levels {
		levelVar.Set(moduleLevel(config, module))
		loggers[module] = slog.New(createHandler(config.Format, levelVar)).With("module", module)
	}

	slog.SetDefault(slog.New(createHandler(config.Format, globalLevel)))
}

// ApplyLevels updates the global and per-module levels without rebuilding
// handlers. Used when the config file is reloaded.
func ApplyLevels(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	current.Level = config.Level
	current.Modules = config.Modules

	globalLevel.Set(levelOr(config.Level, slog.LevelInfo))
	for module, levelVar := range levels {
		levelVar.Set(moduleLevel(current, module))
	}
}

// SetLevel changes one module's level at runtime.
func SetLevel(module, level string) error {
	parsed, ok := parseLevel(level)
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}

	// make sure the module exists so the level sticks
	GetLogger(module)

	mutex.Lock()
	defer mutex.Unlock()
	if current.Modules == nil {
		current.Modules = make(map[string]string)
	}
	current.Modules[module] = level
	levels[module].Set(parsed)
	return nil
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := loggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	if logger, exists := loggers[module]; exists {
		return logger
	}

	levelVar := &slog.LevelVar{}
	format := "text"
	if isInitialized {
		levelVar.Set(moduleLevel(current, module))
		format = current.Format
	} else {
		levelVar.Set(slog.LevelInfo)
	}

	logger := slog.New(createHandler(format, levelVar)).With("module", module)
	loggers[module] = logger
	levels[module] = levelVar
	return logger
}

func moduleLevel(config Config, module string) slog.Level {
	level := levelOr(config.Level, slog.LevelInfo)
	if s, exists := config.Modules[module]; exists {
		level = levelOr(s, level)
	}
	return level
}

// createHandler routes records to stdout and the journal, whichever exist.
func createHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	journalAvailable := IsJournalAvailable()

	var stdoutHandler slog.Handler
	if format == "json" {
		stdoutHandler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdoutHandler = slog.NewTextHandler(os.Stdout, opts)
	}

	var handlers []slog.Handler
	// under systemd stdout already lands in the journal
	if isStdoutAvailable() && !(journalAvailable && os.Getenv("JOURNAL_STREAM") != "") {
		handlers = append(handlers, stdoutHandler)
	}
	if journalAvailable {
		handlers = append(handlers, NewJournalHandler(level))
	}

	switch len(handlers) {
	case 0:
		return stdoutHandler
	case 1:
		return handlers[0]
	default:
		return NewMultiHandler(handlers...)
	}
}

// isStdoutAvailable reports whether stdout goes somewhere other than /dev/null.
func isStdoutAvailable() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return (mode&os.ModeCharDevice) != 0 || (mode&os.ModeNamedPipe) != 0 || (mode&os.ModeSocket) != 0 || mode.IsRegular()
}

func levelOr(s string, fallback slog.Level) slog.Level {
	if l, ok := parseLevel(s); ok {
		return l
	}
	return fallback
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
