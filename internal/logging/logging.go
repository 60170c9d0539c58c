// Package logging owns the process logger: a bootstrap stderr logger that is
// upgraded to stderr plus a rotating JSON log file once configuration is
// available, with room for extra handlers such as job notifications.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation settings.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
	maxLogAgeDays = 30
	logFilePerms  = 0644
	logDirPerms   = 0755
)

// Manager handles logger lifecycle including bootstrap-to-full mode transitions.
// Components should obtain a logger via Logger() and use it for all logging.
type Manager struct {
	handler     *SwappableHandler
	logger      *slog.Logger
	stderr      io.Writer
	stderrLevel *slog.LevelVar
	fileLevel   *slog.LevelVar
	file        *lumberjack.Logger
	attached    map[uint64]slog.Handler
	nextID      uint64
	mu          sync.Mutex
}

// NewManager creates a logging manager in bootstrap mode.
// Bootstrap mode writes only to stderr using text format.
// Call Upgrade() after config is available to enable file logging.
func NewManager() *Manager {
	return NewManagerWithWriter(os.Stderr)
}

// NewManagerWithWriter creates a bootstrap manager writing text to w
// instead of stderr.
func NewManagerWithWriter(w io.Writer) *Manager {
	stderrLevel := new(slog.LevelVar)
	stderrLevel.Set(DefaultLevel)
	fileLevel := new(slog.LevelVar)
	fileLevel.Set(DefaultLevel)

	m := &Manager{
		stderr:      w,
		stderrLevel: stderrLevel,
		fileLevel:   fileLevel,
		attached:    make(map[uint64]slog.Handler),
	}
	m.handler = NewSwappableHandler(m.stderrHandler())
	m.logger = slog.New(m.handler)
	return m
}

// Logger returns the current logger instance.
// The returned logger is stable across Upgrade and Attach calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Fallback returns a logger that writes only to stderr. Handlers attached
// to the manager use it to report their own failures without recursing.
func (m *Manager) Fallback() *slog.Logger {
	return slog.New(m.stderrHandler())
}

// Upgrade transitions from bootstrap mode (stderr-only) to full mode
// (stderr text + rotating file JSON). Call after config subsystem is
// initialized. Returns error if the log file cannot be created.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, logDirPerms); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	// lumberjack opens lazily; probe now so a bad path is reported here
	probe, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerms)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}
	_ = probe.Close()

	if m.file != nil {
		_ = m.file.Close()
	}
	m.file = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}

	m.stderrLevel.Set(level)
	m.fileLevel.Set(level)
	m.rebuild()
	return nil
}

// SetLevel changes the level of every output at runtime.
func (m *Manager) SetLevel(level slog.Level) {
	m.stderrLevel.Set(level)
	m.fileLevel.Set(level)
}

// SetStderrLevel changes only the stderr level, leaving the file level as is.
func (m *Manager) SetStderrLevel(level slog.Level) {
	m.stderrLevel.Set(level)
}

// Attach adds h to the outputs of the manager's logger. The returned
// function detaches it again.
func (m *Manager) Attach(h slog.Handler) (detach func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.attached[id] = h
	m.rebuild()
	m.mu.Unlock()

	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		m.mu.Lock()
		delete(m.attached, id)
		m.rebuild()
		m.mu.Unlock()
	}
}

// Close cleanly shuts down the logger, closing any open file handles.
// Should be called during application shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return nil
	}
	err := m.file.Close()
	m.file = nil
	m.rebuild()
	return err
}

func (m *Manager) stderrHandler() slog.Handler {
	return slog.NewTextHandler(m.stderr, &slog.HandlerOptions{Level: m.stderrLevel})
}

// rebuild swaps in a handler for the current set of outputs. Callers hold m.mu.
func (m *Manager) rebuild() {
	handlers := []slog.Handler{m.stderrHandler()}
	if m.file != nil {
		handlers = append(handlers, slog.NewJSONHandler(m.file, &slog.HandlerOptions{Level: m.fileLevel}))
	}
	for id := uint64(1); id <= m.nextID; id++ {
		if h, ok := m.attached[id]; ok {
			handlers = append(handlers, h)
		}
	}

	if len(handlers) == 1 {
		m.handler.Swap(handlers[0])
		return
	}
	m.handler.Swap(slogmulti.Fanout(handlers...))
}

var defaultManager atomic.Pointer[Manager]

// SetDefault makes m the process-wide manager returned by Default and
// installs its logger as the slog default.
func SetDefault(m *Manager) {
	defaultManager.Store(m)
	slog.SetDefault(m.Logger())
}

// Default returns the process-wide manager, creating a bootstrap manager
// on first use.
func Default() *Manager {
	if m := defaultManager.Load(); m != nil {
		return m
	}
	m := NewManager()
	if defaultManager.CompareAndSwap(nil, m) {
		return m
	}
	return defaultManager.Load()
}
