package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/starford/luach/internal"
	"github.com/starford/luach/internal/auth"
	pkgconfig "github.com/starford/luach/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func printCatalog(_ context.Context, cmd *cli.Command) error {
	return internal.PrintCatalog(cmd.Root().Writer)
}

func printMonth(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	month := cmd.Int("month")
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return internal.PrintMonth(ctx, cmd.Root().Writer, int(cmd.Int("year")), time.Month(month), cmd.String("category"),
		internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func hashToken(_ context.Context, cmd *cli.Command) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("hash-token reads the token from a terminal")
	}
	fmt.Fprint(os.Stderr, "Token: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm token: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if string(first) != string(second) {
		return fmt.Errorf("tokens do not match")
	}

	hash, err := auth.HashToken(string(first))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, hash)
	return err
}

func main() {
	now := time.Now()
	cmd := &cli.Command{
		Name:   "luach",
		Usage:  "Personal, community and chassidic date tracker with calendar views and reminders",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, event stream and reminder scheduler",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:   "catalog",
				Usage:  "Print the catalog of chassidic dates",
				Action: printCatalog,
			},
			{
				Name:  "month",
				Usage: "Print a month calendar of the seeded events",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Usage: "Year", Value: int64(now.Year())},
					&cli.IntFlag{Name: "month", Usage: "Month, 1-12", Value: int64(now.Month())},
					&cli.StringFlag{Name: "category", Usage: "all, personal, chassidic or community", Value: "all"},
				},
				Action: printMonth,
			},
			{
				Name:   "hash-token",
				Usage:  "Hash a bearer token for auth.token",
				Action: hashToken,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
