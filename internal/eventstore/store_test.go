package eventstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/luach/internal/apperr"
	"github.com/starford/luach/internal/checksum"
	"github.com/starford/luach/internal/eventstore"
	"github.com/starford/luach/internal/models"
	"github.com/starford/luach/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func assertDateInvariant(t *testing.T, store *eventstore.Store) {
	t.Helper()
	for _, ev := range store.List() {
		want, err := eventstore.ParseDate(ev.GregorianDate)
		if err != nil {
			t.Fatalf("%s: stored unparsable date %q", ev.ID, ev.GregorianDate)
		}
		if !ev.Date.Equal(want) {
			t.Errorf("%s: date = %v, want %v", ev.ID, ev.Date, want)
		}
	}
}

func TestAddRoundTrip(t *testing.T) {
	store := testutil.TestStore(t)
	in := models.EventInput{
		Title:         "Family Anniversary",
		HebrewDate:    "כ' אדר",
		GregorianDate: "2024-03-01",
		Category:      models.CategoryPersonal,
		EventType:     models.EventTypeMarried,
		Description:   "Wedding anniversary",
		HasReminder:   true,
		ReminderDays:  14,
	}
	ev, err := store.Add(testutil.SignedIn(), in)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ev.ID == "" {
		t.Fatal("id not assigned")
	}

	got, err := store.Get(ev.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != in.Title || got.HebrewDate != in.HebrewDate || got.GregorianDate != in.GregorianDate ||
		got.Category != in.Category || got.EventType != in.EventType || got.Description != in.Description ||
		got.HasReminder != in.HasReminder || got.ReminderDays != in.ReminderDays {
		t.Errorf("round trip mismatch: got %+v, input %+v", got, in)
	}
	if !got.Date.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", got.Date)
	}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	store := eventstore.New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ev := testutil.MustAdd(t, store, testutil.Input("e", "2024-01-01"))
		if seen[ev.ID] {
			t.Fatalf("duplicate id %s", ev.ID)
		}
		seen[ev.ID] = true
	}
}

func TestAddCollidingGeneratorFallsBack(t *testing.T) {
	store := eventstore.New(eventstore.WithIDGenerator(func() string { return "same" }))
	a := testutil.MustAdd(t, store, testutil.Input("a", "2024-01-01"))
	b := testutil.MustAdd(t, store, testutil.Input("b", "2024-01-02"))
	if a.ID == b.ID {
		t.Fatalf("ids collide: %s", a.ID)
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		input models.EventInput
	}{
		{"empty title", testutil.Input("", "2024-01-01")},
		{"blank title", testutil.Input("   ", "2024-01-01")},
		{"missing date", testutil.Input("x", "")},
		{"malformed date", testutil.Input("x", "12/06/2024")},
		{"impossible date", testutil.Input("x", "2024-02-30")},
		{"bad category", models.EventInput{Title: "x", GregorianDate: "2024-01-01", Category: "work"}},
		{"bad event type", models.EventInput{Title: "x", GregorianDate: "2024-01-01", EventType: "party"}},
		{"negative reminder", models.EventInput{Title: "x", GregorianDate: "2024-01-01", HasReminder: true, ReminderDays: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.TestStore(t)
			_, err := store.Add(testutil.SignedIn(), tt.input)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err should be a *ValidationError: %T", err)
			}
			if store.Len() != 0 {
				t.Errorf("rejected add must not insert, len = %d", store.Len())
			}
		})
	}
}

func TestAddValidationReportsFields(t *testing.T) {
	store := testutil.TestStore(t)
	_, err := store.Add(testutil.SignedIn(), models.EventInput{})
	var fields validation.Errors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fields["title"]; !ok {
		t.Errorf("missing title error in %v", fields)
	}
	if _, ok := fields["gregorian_date"]; !ok {
		t.Errorf("missing gregorian_date error in %v", fields)
	}
}

func TestAddDefaults(t *testing.T) {
	store := testutil.TestStore(t)
	ev := testutil.MustAdd(t, store, models.EventInput{Title: "x", GregorianDate: "2024-01-01", HasReminder: true})
	if ev.Category != models.CategoryPersonal {
		t.Errorf("category = %q, want personal", ev.Category)
	}
	if ev.EventType != models.EventTypeEvent {
		t.Errorf("event type = %q, want event", ev.EventType)
	}
	if ev.ReminderDays != models.DefaultReminderDays {
		t.Errorf("reminder days = %d, want %d", ev.ReminderDays, models.DefaultReminderDays)
	}
}

func TestAddRequiresAuth(t *testing.T) {
	store := testutil.TestStore(t)
	_, err := store.Add(context.Background(), testutil.Input("x", "2024-01-01"))
	if !errors.Is(err, apperr.ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
	_, err = store.BulkAdd(context.Background(), []models.EventInput{testutil.Input("x", "2024-01-01")})
	if !errors.Is(err, apperr.ErrAuthRequired) {
		t.Fatalf("bulk err = %v, want ErrAuthRequired", err)
	}
	if store.Len() != 0 {
		t.Errorf("unauthorized adds must have no effect, len = %d", store.Len())
	}
}

func TestEditRecomputesDate(t *testing.T) {
	store := testutil.TestStore(t)
	ev := testutil.MustAdd(t, store, testutil.Input("Yahrzeit", "2024-06-12"))

	edited, err := store.Edit(ev.ID, models.EventPatch{GregorianDate: ptr("2025-01-01")})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	want := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !edited.Date.Equal(want) {
		t.Errorf("date = %v, want %v", edited.Date, want)
	}
	got, _ := store.Get(ev.ID)
	if !got.Date.Equal(want) || got.GregorianDate != "2025-01-01" {
		t.Errorf("stored event not updated: %+v", got)
	}
	assertDateInvariant(t, store)
}

func TestEditWithoutDateKeepsDerivedDate(t *testing.T) {
	store := testutil.TestStore(t)
	ev := testutil.MustAdd(t, store, testutil.Input("Yahrzeit", "2024-06-12"))

	edited, err := store.Edit(ev.ID, models.EventPatch{Title: ptr("Renamed")})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.Title != "Renamed" {
		t.Errorf("title = %q", edited.Title)
	}
	if !edited.Date.Equal(ev.Date) {
		t.Errorf("date changed: %v -> %v", ev.Date, edited.Date)
	}
	if edited.ID != ev.ID {
		t.Errorf("id changed: %s -> %s", ev.ID, edited.ID)
	}
	assertDateInvariant(t, store)
}

func TestEditNotFound(t *testing.T) {
	store := testutil.TestStore(t)
	_, err := store.Edit("missing", models.EventPatch{Title: ptr("x")})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestEditRejectedHasNoEffect(t *testing.T) {
	store := testutil.TestStore(t)
	ev := testutil.MustAdd(t, store, testutil.Input("Keep", "2024-06-12"))

	_, err := store.Edit(ev.ID, models.EventPatch{Title: ptr("New"), GregorianDate: ptr("not-a-date")})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	got, _ := store.Get(ev.ID)
	if got != ev {
		t.Errorf("event changed after rejected edit: %+v", got)
	}
}

func TestEditIfMatch(t *testing.T) {
	store := testutil.TestStore(t)
	ev := testutil.MustAdd(t, store, testutil.Input("Versioned", "2024-06-12"))
	version := checksum.Event(ev)

	if _, err := store.EditIfMatch(ev.ID, version, models.EventPatch{Description: ptr("v2")}); err != nil {
		t.Fatalf("EditIfMatch with current version: %v", err)
	}
	_, err := store.EditIfMatch(ev.ID, version, models.EventPatch{Description: ptr("v3")})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("stale version err = %v, want ErrConflict", err)
	}
	got, _ := store.Get(ev.ID)
	if got.Description != "v2" {
		t.Errorf("description = %q, want v2", got.Description)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store := testutil.TestStore(t)
	a := testutil.MustAdd(t, store, testutil.Input("a", "2024-01-01"))
	testutil.MustAdd(t, store, testutil.Input("b", "2024-01-02"))

	if !store.Delete(a.ID) {
		t.Error("first delete should report removal")
	}
	once := store.List()
	if store.Delete(a.ID) {
		t.Error("second delete should be a no-op")
	}
	twice := store.List()
	if len(once) != 1 || len(twice) != 1 || once[0] != twice[0] {
		t.Errorf("state differs: %v vs %v", once, twice)
	}
}

func TestBulkAddPartialSuccess(t *testing.T) {
	store := testutil.TestStore(t)
	res, err := store.BulkAdd(testutil.SignedIn(), []models.EventInput{
		testutil.Input("ok-1", "2024-01-01"),
		testutil.Input("", "2024-01-02"),
		testutil.Input("ok-2", "2024-01-03"),
	})
	if err != nil {
		t.Fatalf("BulkAdd: %v", err)
	}
	if len(res.Added) != 2 {
		t.Errorf("added = %d, want 2", len(res.Added))
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Index != 1 {
		t.Errorf("rejected = %+v", res.Rejected)
	}
	if !errors.Is(res.Rejected[0].Err, apperr.ErrValidation) {
		t.Errorf("rejection err = %v", res.Rejected[0].Err)
	}
	if store.Len() != 2 {
		t.Errorf("len = %d, want 2", store.Len())
	}
	assertDateInvariant(t, store)
}

func TestBulkRemoveIgnoresUnknown(t *testing.T) {
	store := testutil.TestStore(t)
	a := testutil.MustAdd(t, store, testutil.Input("a", "2024-01-01"))
	b := testutil.MustAdd(t, store, testutil.Input("b", "2024-01-02"))
	c := testutil.MustAdd(t, store, testutil.Input("c", "2024-01-03"))

	removed := store.BulkRemove([]string{a.ID, "nope", c.ID})
	if len(removed) != 2 {
		t.Errorf("removed = %v", removed)
	}
	list := store.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("remaining = %+v", list)
	}
	if got := store.BulkRemove(nil); got != nil {
		t.Errorf("empty bulk remove = %v", got)
	}
}

func TestListPreservesInsertionOrderAndCopies(t *testing.T) {
	store := testutil.TestStore(t)
	testutil.MustAdd(t, store, testutil.Input("first", "2024-12-01"))
	testutil.MustAdd(t, store, testutil.Input("second", "2024-01-01"))

	list := store.List()
	if list[0].Title != "first" || list[1].Title != "second" {
		t.Errorf("order = %q, %q", list[0].Title, list[1].Title)
	}
	list[0].Title = "mutated"
	if store.List()[0].Title != "first" {
		t.Error("List must return a copy")
	}
}
