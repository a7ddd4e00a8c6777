package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/luach/internal/catalog"
	"github.com/starford/luach/internal/eventservice"
	"github.com/starford/luach/internal/eventstore"
	"github.com/starford/luach/internal/reconcile"
	"github.com/starford/luach/internal/seed"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
}

// newService builds the in-memory store, reconciler and event service and
// loads the configured seed events.
func newService(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...eventservice.Option) (*eventservice.Service, error) {
	cat := catalog.Default()
	rec := reconcile.New(cat,
		reconcile.WithStrategy(cfg.Catalog.Strategy()),
		reconcile.WithDateResolver(reconcile.RandomDates(nil, time.Now)),
	)

	opts = append([]eventservice.Option{
		eventservice.WithWindow(cfg.Upcoming.Window()),
		eventservice.WithFirstWeekday(cfg.Calendar.Weekday()),
	}, opts...)
	svc := eventservice.NewService(eventstore.New(), cat, rec, opts...)

	if _, err := seed.Run(ctx, svc, seed.Options{Path: cfg.Seed.Path, Demo: cfg.Seed.Demo}, logger); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return svc, nil
}
