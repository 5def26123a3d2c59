package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const LevelTrace = slog.LevelDebug - 2

// Config selects level and encoding for a process logger.
type Config struct {
	Level     string // debug, info, warn, error or trace
	Format    string // json or text
	AddSource bool
	// Component is attached to every record when set.
	Component string
}

var levels = map[string]slog.Level{
	"trace":   LevelTrace,
	"debug":   slog.LevelDebug,
	"dbg":     slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
	"err":     slog.LevelError,
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(raw string) slog.Level {
	if level, ok := levels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return level
	}
	return slog.LevelInfo
}

func New(w io.Writer, cfg Config) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(handler)
	if component := strings.TrimSpace(cfg.Component); component != "" {
		logger = logger.With(slog.String("component", component))
	}
	return logger
}

// ViewAttrs groups the attributes every list view log line carries.
func ViewAttrs(entity, viewID, hostID string) slog.Attr {
	return slog.Group("view",
		slog.String("entity", entity),
		slog.String("id", viewID),
		slog.String("hostId", hostID),
	)
}
