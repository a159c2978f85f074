// Package logger sets up the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level slog.Level
	// File, when set, receives a copy of every record with size-based
	// rotation.
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	// Stdout disables console output when false. The TUI needs the terminal
	// for itself.
	Stdout bool
}

// Init installs a JSON slog logger as the default and returns a closer for the
// log file, if any.
func Init(opts Options) io.Closer {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Stdout {
		writers = append(writers, os.Stdout)
	}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
		}
		writers = append(writers, rotating)
		closer = rotating
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: opts.Level,
	})
	slog.SetDefault(slog.New(handler))
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
