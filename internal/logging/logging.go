// Package logging builds the process-wide zerolog loggers: console or
// JSON, optionally into a log file, with per-component sub-loggers and
// ULID trace IDs for correlating one user action across the engine's
// asynchronous loads.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the logger's level, format and destination.
type Config struct {
	// Level is a zerolog level name; unknown or empty falls back to info.
	Level string
	// Format is "console" or "json".
	Format string
	// Output is "stderr", "stdout" or "file".
	Output string
	// File is the log file path when Output is "file".
	File string
	// Caller adds file:line to every event.
	Caller bool
}

// Result is the built logger plus where its output actually went, so
// the CLI can tell the user and close the handle on exit.
type Result struct {
	Logger         zerolog.Logger
	UsingFile      bool
	FilePath       string
	FallbackUsed   bool
	FallbackReason string

	file *os.File
}

// Close releases the log file handle, if one was opened.
func (r *Result) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// New builds a logger per cfg. A file destination that cannot be opened
// falls back to stderr rather than failing the command.
func New(cfg Config) Result {
	level, err := zerolog.ParseLevel(strings.TrimSpace(strings.ToLower(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var res Result
	var out io.Writer
	switch cfg.Output {
	case "file":
		f, openErr := openLogFile(cfg.File)
		if openErr != nil {
			res.FallbackUsed = true
			res.FallbackReason = openErr.Error()
			out = os.Stderr
		} else {
			res.UsingFile = true
			res.FilePath = cfg.File
			res.file = f
			out = f
		}
	case "stdout":
		out = os.Stdout
	default:
		out = os.Stderr
	}

	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logCtx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Caller {
		logCtx = logCtx.Caller()
	}
	res.Logger = logCtx.Logger()
	return res
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("log file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// ComponentLogger tags a sub-logger with the component it serves.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// PrintLogPathMessage tells the user where logs are going when they are
// not on the terminal.
func PrintLogPathMessage(w io.Writer, path string) {
	fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user the configured log file could not
// be used.
func PrintFallbackWarning(w io.Writer, reason string) {
	fmt.Fprintf(w, "Warning: logging to stderr (%s)\n", reason)
}
