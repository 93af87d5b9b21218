package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level  string `doc:"log from debug, info, warn or error"`
	File   string `doc:"append logs to file"`
	Format string `doc:"format logs as text or json"         default:"text"`
}

var formats = map[string]func(io.Writer, *slog.HandlerOptions) slog.Handler{
	"text": func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
	"json": func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) },
}

// New returns a logger writing to stdout or options.File.
// Unusable options are reset to their default and reported with a warning.
func New(options *Options) *slog.Logger {
	return newLogger(options, os.Stdout)
}

func newLogger(options *Options, stdout io.Writer) *slog.Logger {
	var warnings []slog.Attr

	var opts slog.HandlerOptions
	if options.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(options.Level)); err != nil {
			warnings = append(warnings, slog.String("level", options.Level))
			options.Level = ""
		} else {
			opts.Level = level
		}
	}

	newHandler, ok := formats[strings.ToLower(options.Format)]
	if !ok {
		warnings = append(warnings, slog.String("format", options.Format))
		options.Format = "text"
		newHandler = formats[options.Format]
	}

	output := stdout
	switch options.File {
	case "", "-":
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		f, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			warnings = append(warnings, slog.String("file", options.File), slog.Any("err", err))
			options.File = ""
		} else {
			output = f
		}
	}

	logger := slog.New(newHandler(output, &opts))
	if len(warnings) > 0 {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "ignored logger options", warnings...)
	}
	return logger
}
