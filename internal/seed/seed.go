// Package seed loads initial events into a fresh store.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/luach/internal/auth"
	"github.com/starford/luach/internal/eventstore"
	"github.com/starford/luach/internal/models"
)

//go:embed demo.yaml
var demoYAML []byte

// File is the on-disk seed format.
type File struct {
	Events []models.EventInput `yaml:"events"`
}

// Importer adds a batch of independent events.
type Importer interface {
	ImportEvents(ctx context.Context, inputs []models.EventInput) (eventstore.BulkResult, error)
}

// Options selects the seed sources.
type Options struct {
	Path string
	Demo bool
}

// Parse decodes a seed file. Unknown keys are rejected.
func Parse(data []byte) ([]models.EventInput, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return f.Events, nil
}

// Load reads and parses the seed file at path.
func Load(path string) ([]models.EventInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(data)
}

// Demo returns the sample events.
func Demo() []models.EventInput {
	events, err := Parse(demoYAML)
	if err != nil {
		panic(err)
	}
	return events
}

// Run imports the demo events and then the seed file, as the system
// identity. Invalid entries are logged and skipped. It returns the number of
// events added.
func Run(ctx context.Context, imp Importer, opts Options, logger *slog.Logger) (int, error) {
	var inputs []models.EventInput
	if opts.Demo {
		inputs = append(inputs, Demo()...)
	}
	if opts.Path != "" {
		fromFile, err := Load(opts.Path)
		if err != nil {
			return 0, err
		}
		inputs = append(inputs, fromFile...)
	}
	if len(inputs) == 0 {
		return 0, nil
	}

	res, err := imp.ImportEvents(auth.WithIdentity(ctx, auth.System), inputs)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	for _, rej := range res.Rejected {
		logger.Warn("seed event rejected",
			slog.Int("index", rej.Index),
			slog.String("title", rej.Title),
			slog.String("error", rej.Err.Error()),
		)
	}
	logger.Info("seeded events", slog.Int("added", len(res.Added)), slog.Int("rejected", len(res.Rejected)))
	return len(res.Added), nil
}
