// ABOUTME: Process-wide slog configuration
// ABOUTME: Selects level and destination for the default logger
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ConfigureDefaultLogger installs the default slog logger.
//
// Valid levels are "none", "error", "warn", "info" and "debug". With an
// empty logFile the logger writes text to stdout; otherwise it writes JSON
// to logFile, truncating it. The returned file is nil when logging to
// stdout or disabled, and must be closed by the caller otherwise:
//
//	f, err := logging.ConfigureDefaultLogger("info", "portmix.log", slog.HandlerOptions{})
//	if f != nil {
//		defer f.Close()
//	}
func ConfigureDefaultLogger(logLevel string, logFile string, loggerOptions slog.HandlerOptions) (*os.File, error) {
	switch logLevel {
	case "none":
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	case "error":
		loggerOptions.Level = slog.LevelError
	case "warn":
		loggerOptions.Level = slog.LevelWarn
	case "info":
		loggerOptions.Level = slog.LevelInfo
	case "debug":
		loggerOptions.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unexpected log level: %q", logLevel)
	}

	var logFilePointer *os.File
	var slogHandler slog.Handler
	if logFile == "" {
		slogHandler = slog.NewTextHandler(os.Stdout, &loggerOptions)
	} else {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logFilePointer = f
		slogHandler = slog.NewJSONHandler(f, &loggerOptions)
	}

	slog.SetDefault(slog.New(slogHandler))
	return logFilePointer, nil
}
