package config

import (
    "io"
    "log/slog"
    "strings"
    "time"

    "github.com/lmittmann/tint"
)

// ParseLevel maps LOG_LEVEL values to slog levels.  Unknown values mean info.
func ParseLevel(s string) slog.Level {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "debug":
        return slog.LevelDebug
    case "warn", "warning":
        return slog.LevelWarn
    case "error":
        return slog.LevelError
    }
    return slog.LevelInfo
}

// NewLogger returns a tint-backed logger writing to w.  Colors are dropped
// when noColor is set, e.g. when w is not a terminal or output is JSON.
func NewLogger(w io.Writer, level string, noColor bool) *slog.Logger {
    return slog.New(tint.NewHandler(w, &tint.Options{
        Level:      ParseLevel(level),
        TimeFormat: time.RFC1123Z,
        NoColor:    noColor,
    }))
}
