// Package ctxlog provides context-aware structured logging utilities.
package ctxlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

var setup = false

// Setup installs the default logger and stores it in ctx. Logs go to stderr
// and, if config.Dir is set, to a new timestamped file in that directory.
func Setup(ctx context.Context, name string, config Config) context.Context {
	if setup {
		return Store(ctx, slog.Default())
	}

	var level slog.Level
	if config.Level != "" {
		if err := level.UnmarshalText([]byte(config.Level)); err != nil {
			panic(fmt.Errorf("parse log level: %w", err))
		}
	}

	w := io.Writer(os.Stderr)
	if config.Dir != "" {
		err := os.MkdirAll(config.Dir, 0755)
		if err != nil {
			panic(fmt.Errorf("create log dir: %w", err))
		}

		logFile, err := os.Create(filepath.Join(config.Dir, name+"-"+time.Now().Format("2006-01-02-15-04-05.log")))
		if err != nil {
			panic(fmt.Errorf("create log file: %w", err))
		}

		w = io.MultiWriter(os.Stderr, logFile)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch config.Format {
	case "", "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		panic(fmt.Errorf("unknown log format %q", config.Format))
	}

	logger := slog.New(handler).With("app", name)
	slog.SetDefault(logger)

	setup = true

	return Store(ctx, logger)
}

type ctxKey struct{}

var key ctxKey

func Store(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, key, log)
}

func Get(ctx context.Context) *slog.Logger {
	log, ok := ctx.Value(key).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return log
}

func Close(ctx context.Context, name string, closer io.Closer) error {
	logger := Get(ctx)
	err := closer.Close()
	if err != nil {
		logger.Error("failed to close", "closer", name, "error", err)
		return err
	}
	return nil
}

func With(ctx context.Context, kv ...any) context.Context {
	return Store(ctx, Get(ctx).With(kv...))
}

// Discard returns ctx carrying a logger that drops everything.
func Discard(ctx context.Context) context.Context {
	return Store(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
