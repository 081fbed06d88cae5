package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Options struct {
	Level string
	JSON  bool
	// File, when set, receives a copy of everything written to stderr.
	File string
}

var (
	def atomic.Value

	mu      sync.Mutex
	logFile *os.File
)

func init() {
	cfg := &slog.HandlerOptions{Level: slog.LevelInfo}
	h := slog.NewTextHandler(os.Stderr, cfg)
	def.Store(slog.New(h))
}

// Configure replaces the process logger. A previously opened log file is
// closed once the new logger is in place.
func Configure(opts Options) error {
	lvl := parseLevel(opts.Level)
	cfg := &slog.HandlerOptions{Level: lvl}

	var (
		w    io.Writer = os.Stderr
		file *os.File
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		file, w = f, io.MultiWriter(os.Stderr, f)
	}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, cfg)
	} else {
		h = slog.NewTextHandler(w, cfg)
	}
	def.Store(slog.New(h))

	mu.Lock()
	prev := logFile
	logFile = file
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Close flushes and closes the log file, if any, and falls back to stderr.
func Close() error {
	mu.Lock()
	f := logFile
	logFile = nil
	mu.Unlock()
	if f == nil {
		return nil
	}
	def.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	return f.Close()
}

func parseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func L() *slog.Logger {
	l, _ := def.Load().(*slog.Logger)
	return l
}

// TimestampedPath inserts _YYYYmmdd_HHMMSS before the extension of base,
// or appends it when base has none: run.log -> run_20240131_235959.log.
func TimestampedPath(base string, now time.Time) string {
	ts := now.Format("20060102_150405")
	ext := filepath.Ext(base)
	if ext == "" || ext == base || strings.HasSuffix(base, string(filepath.Separator)+ext) {
		return base + "_" + ts
	}
	return strings.TrimSuffix(base, ext) + "_" + ts + ext
}

func InitFromEnv() {
	lvl := os.Getenv("ROWKIT_LOG_LEVEL")
	jsonStr := os.Getenv("ROWKIT_LOG_JSON")
	json := false
	if b, err := strconv.ParseBool(strings.TrimSpace(jsonStr)); err == nil {
		json = b
	}
	_ = Configure(Options{Level: lvl, JSON: json})
}
