// Package testutil provides shared test helpers for building stores and inputs.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/starford/luach/internal/auth"
	"github.com/starford/luach/internal/eventstore"
	"github.com/starford/luach/internal/models"
)

// SignedIn returns a context carrying a test identity.
func SignedIn() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{Subject: "tester"})
}

// SequentialIDs returns a generator yielding "ev-1", "ev-2", ...
func SequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}
}

// TestStore creates an empty store with deterministic ids.
func TestStore(t *testing.T) *eventstore.Store {
	t.Helper()
	return eventstore.New(eventstore.WithIDGenerator(SequentialIDs()))
}

// Input returns a valid personal event input on the given date.
func Input(title, date string) models.EventInput {
	return models.EventInput{
		Title:         title,
		GregorianDate: date,
		Category:      models.CategoryPersonal,
		EventType:     models.EventTypeEvent,
	}
}

// MustAdd adds in to store with a signed-in context and fails the test on error.
func MustAdd(t *testing.T, store *eventstore.Store, in models.EventInput) models.Event {
	t.Helper()
	ev, err := store.Add(SignedIn(), in)
	if err != nil {
		t.Fatalf("Add(%q): %v", in.Title, err)
	}
	return ev
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
