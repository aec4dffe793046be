package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatECS  LogFormat = "ecs"
	LogFormatText LogFormat = "text"
)

var ErrorUnknownLogFormat = errors.New("unknown log format")

// NewLogger builds the process logger. The ECS format renames the time, level
// and message keys so the lines can be shipped to Elastic unchanged.
func NewLogger(format LogFormat, level slog.Level, out io.Writer) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: level}

	switch format {
	case LogFormatJSON, "":
		return slog.New(slog.NewJSONHandler(out, options)), nil
	case LogFormatECS:
		options.ReplaceAttr = ecsAttr
		return slog.New(slog.NewJSONHandler(out, options)), nil
	case LogFormatText:
		return slog.New(slog.NewTextHandler(out, options)), nil
	}

	return nil, fmt.Errorf("%q: %w", format, ErrorUnknownLogFormat)
}

// Private

func ecsAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		a.Key = "@timestamp"
	case slog.LevelKey:
		a.Key = "log.level"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}
