package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/san-kum/physim/internal/backend"
	"github.com/san-kum/physim/internal/config"
	"github.com/spf13/cobra"
)

var sentryEnabled bool

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(l)
	return l, nil
}

func initSentry(dsn string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	sentryEnabled = true
	return nil
}

func flushSentry() {
	if sentryEnabled {
		sentry.Flush(5 * time.Second)
	}
}

// reportFailure sends fatal backend errors to sentry, tagged with the
// scenario that produced them. Other errors are only logged by the caller.
func reportFailure(err error, s *config.Scenario) {
	var fatal *backend.BackendFatalError
	if !sentryEnabled || !errors.As(err, &fatal) {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("scenario", s.Name)
		scope.SetTag("library", s.Physics.SimulationLibrary)
		scope.SetExtra("step", fatal.Step)
		scope.SetExtra("time", fatal.Time)
		scope.SetExtra("body", fatal.Body)
	})
	hub.CaptureException(err)
	hub.Flush(5 * time.Second)
}

// execute runs the command tree, turning a panic into an error and
// reporting it when sentry is on.
func execute(ctx context.Context, cmd *cobra.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if sentryEnabled {
				sentry.CurrentHub().Recover(r)
			}
			err = fmt.Errorf("panic: %v", r)
			logger.Error("command panicked", "error", err)
		}
	}()
	return cmd.ExecuteContext(ctx)
}
