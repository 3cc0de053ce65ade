package debug

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	logger  = newLogger(io.Discard)
	file    afero.File
	mu      sync.Mutex
	enabled bool
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	l.SetLevel(logrus.DebugLevel)
	return l
}

// Enable starts debug logging to path on fs. The file is truncated.
func Enable(fs afero.Fs, path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	if err := afero.WriteFile(fs, path, nil, 0644); err != nil {
		return err
	}
	// append so redirected stdout/stderr can share the file
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true
	logger.SetOutput(f)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.DebugLevel
	}
	logger.SetLevel(parsed)

	logger.WithField("component", "debug").Info("=== Debug logging started ===")
	return nil
}

// EnableWriter sends log output to w. Used by tests and the decktest tool.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	logger.SetOutput(w)
	logger.SetLevel(logrus.DebugLevel)
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger.SetOutput(io.Discard)
	enabled = false
}

// Enabled reports whether output is going anywhere.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a debug-level message tagged with category.
func Log(category, format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.WithField("component", category).Debugf(format, args...)
	flush()
}

// Warn writes a warning tagged with category.
func Warn(category, format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.WithField("component", category).Warnf(format, args...)
	flush()
}

// Error records err under category. Nil errors are ignored.
func Error(category string, err error) {
	if err == nil || !Enabled() {
		return
	}
	logger.WithField("component", category).WithError(err).Error("failed")
	flush()
}

// flush immediately so we see logs even on crash
func flush() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Sync()
	}
}

// LogEvery logs only every N calls (use for high-frequency events)
var (
	counters  = make(map[string]int)
	countersM sync.Mutex
)

func LogEvery(n int, category, format string, args ...any) {
	countersM.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	countersM.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
