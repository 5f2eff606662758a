package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// defaultBufferSize bounds the history kept for failure reports.
const defaultBufferSize = 500

// Logger is a duck-typed interface satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
	// Journal enables the systemd journal handler when journald is reachable.
	Journal bool `toml:"journal"`
}

var (
	mutex           sync.RWMutex
	globalConfig    = Config{Level: "info", Format: "text"}
	globalLevelVar  = &slog.LevelVar{}
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	logBuffer       = NewRingBuffer(defaultBufferSize)
)

var output io.Writer = os.Stderr

// Initialize sets up the logging system. Loggers obtained before the call
// are reconfigured in place.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	logBuffer.Reset()
	globalLevelVar.Set(levelOr(config.Level, slog.LevelInfo))

	for module, levelVar := range moduleLevelVars {
		levelVar.Set(resolveLevel(module))
		moduleLoggers[module] = slog.New(createHandler(levelVar)).With("module", module)
	}

	slog.SetDefault(slog.New(createHandler(globalLevelVar)))
}

// SetOutput redirects the text/json handler. Intended for tests.
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	output = w
	for module, levelVar := range moduleLevelVars {
		moduleLoggers[module] = slog.New(createHandler(levelVar)).With("module", module)
	}
}

// GetBuffer returns the log ring buffer.
func GetBuffer() *RingBuffer {
	mutex.RLock()
	defer mutex.RUnlock()
	return logBuffer
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	logger, exists := moduleLoggers[module]
	mutex.RUnlock()
	if exists {
		return logger
	}

	mutex.Lock()
	defer mutex.Unlock()

	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(resolveLevel(module))

	logger = slog.New(createHandler(levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// SetModuleLevel changes a module's level at runtime.
func SetModuleLevel(module, level string) bool {
	parsed := parseLevel(level)
	if parsed == nil {
		return false
	}
	GetLogger(module)

	mutex.Lock()
	defer mutex.Unlock()
	moduleLevelVars[module].Set(*parsed)
	return true
}

// resolveLevel returns the module override or the global level.
// Caller must hold mutex.
func resolveLevel(module string) slog.Level {
	global := levelOr(globalConfig.Level, slog.LevelInfo)
	if levelStr, ok := globalConfig.Modules[module]; ok {
		return levelOr(levelStr, global)
	}
	return global
}

// createHandler builds the handler chain: stderr, journal when enabled and
// available, and the ring buffer. Caller must hold mutex.
func createHandler(level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var streamHandler slog.Handler
	if globalConfig.Format == "json" {
		streamHandler = slog.NewJSONHandler(output, opts)
	} else {
		streamHandler = slog.NewTextHandler(output, opts)
	}

	handlers := []slog.Handler{streamHandler}
	if globalConfig.Journal && IsJournalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}
	handlers = append(handlers, NewBufferHandler(logBuffer, level))

	return NewMultiHandler(handlers...)
}

func levelOr(level string, fallback slog.Level) slog.Level {
	if parsed := parseLevel(level); parsed != nil {
		return *parsed
	}
	return fallback
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) *slog.Level {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil
	}
	return &l
}
