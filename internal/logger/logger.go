package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alkime/radiopanel/internal/config"
)

// Level determines the log level from the environment and LOG_LEVEL.
// Development always logs at debug.
func Level(cfg *config.Config) slog.Level {
	if cfg.Env == config.EnvDevelopment {
		return slog.LevelDebug
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// JSONLogger writes JSON records to w for the monitor, tagged with its
// component. It leaves the default logger alone.
func JSONLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: Level(cfg),
	})

	return slog.New(handler).With("component", "monitor")
}

// SetupTextLogger configures human readable logging to w for the CLI
// subcommands.
func SetupTextLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level(cfg),
	})

	return install(slog.New(handler))
}

// SetupFileLogger sends logs to cfg.LogFile. The terminal belongs to the
// TUI while it runs, so nothing may be written to stdout.
func SetupFileLogger(cfg *config.Config) (*slog.Logger, *os.File, error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return SetupTextLogger(cfg, f), f, nil
}

func install(logger *slog.Logger) *slog.Logger {
	slog.SetDefault(logger)
	return logger
}
