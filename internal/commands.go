package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/starford/luach/internal/agenda"
	"github.com/starford/luach/internal/catalog"
	"github.com/starford/luach/internal/mcpserver"
)

// RunMCP serves the MCP tools on stdin/stdout. Logs must not share stdout
// with the protocol, so callers pass WithLogOutput(os.Stderr).
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()
	slog.SetDefault(logger)

	svc, err := newService(ctx, app.config, logger)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(svc).ServeStdio(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

// PrintMonth writes the month grid of the seeded events to w.
func PrintMonth(ctx context.Context, w io.Writer, year int, month time.Month, category string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	sel, err := agenda.ParseSelector(category)
	if err != nil {
		return err
	}
	svc, err := newService(ctx, app.config, app.logger())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, svc.Month(ctx, year, month, sel).Text())
	return err
}

// PrintCatalog writes the catalog of chassidic dates to w.
func PrintCatalog(w io.Writer) error {
	for _, e := range catalog.Default().Entries() {
		if _, err := fmt.Fprintf(w, "%-22s %-8s %s (%s)\n", e.ID, e.SymbolicDate, e.Title, e.LocalizedTitle); err != nil {
			return err
		}
	}
	return nil
}
