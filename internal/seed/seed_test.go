package seed_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/luach/internal/catalog"
	"github.com/starford/luach/internal/eventservice"
	"github.com/starford/luach/internal/models"
	"github.com/starford/luach/internal/reconcile"
	"github.com/starford/luach/internal/seed"
	"github.com/starford/luach/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newService(t *testing.T) *eventservice.Service {
	t.Helper()
	cat := catalog.Default()
	return eventservice.NewService(testutil.TestStore(t), cat, reconcile.New(cat))
}

func TestDemo(t *testing.T) {
	events := seed.Demo()
	if len(events) != 3 {
		t.Fatalf("demo events = %d, want 3", len(events))
	}
	first := events[0]
	if first.Title != "Yahrzeit of the Baal Shem Tov" || first.EventType != models.EventTypePassAway || first.GregorianDate != "2024-06-12" {
		t.Errorf("first = %+v", first)
	}
	if events[2].ReminderDays != 14 {
		t.Errorf("anniversary reminder = %d, want 14", events[2].ReminderDays)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := seed.Parse([]byte("events:\n  - title: x\n    when: tomorrow\n"))
	if err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestParseEmpty(t *testing.T) {
	events, err := seed.Parse(nil)
	if err != nil || len(events) != 0 {
		t.Errorf("Parse(nil) = %v, %v", events, err)
	}
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := []byte(`events:
  - title: Grandmother's birthday
    gregorian_date: "2024-07-04"
    event_type: birthday
  - title: ""
    gregorian_date: "2024-07-05"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	svc := newService(t)
	added, err := seed.Run(context.Background(), svc, seed.Options{Path: path, Demo: true}, discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if added != 4 {
		t.Fatalf("added = %d, want 4", added)
	}
	events := svc.Events()
	last := events[len(events)-1]
	if last.Title != "Grandmother's birthday" || last.Category != models.CategoryPersonal {
		t.Errorf("last = %+v", last)
	}
}

func TestRunMissingFile(t *testing.T) {
	svc := newService(t)
	_, err := seed.Run(context.Background(), svc, seed.Options{Path: filepath.Join(t.TempDir(), "missing.yaml")}, discard)
	if err == nil {
		t.Error("expected error for missing seed file")
	}
}

func TestRunNothing(t *testing.T) {
	svc := newService(t)
	added, err := seed.Run(context.Background(), svc, seed.Options{}, discard)
	if err != nil || added != 0 {
		t.Errorf("Run = %d, %v", added, err)
	}
}
