package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger

func init() {
	// Usable before Init is called (tests, CLI)
	Log = slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Init builds the JSON logger. Extra writers (e.g. a GELF sink) receive the same lines as stdout.
func Init(level string, extra ...io.Writer) {
	writers := []io.Writer{os.Stdout}
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	Log = slog.New(handler)
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
