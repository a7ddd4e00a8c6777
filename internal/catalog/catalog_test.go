package catalog

import (
	"testing"

	"github.com/starford/luach/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() != 12 {
		t.Fatalf("len = %d, want 12", c.Len())
	}
	e, ok := c.Lookup("lag-baomer")
	if !ok {
		t.Fatal("lag-baomer missing")
	}
	if e.Title != "Lag BaOmer" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Category != models.CategoryChassidic {
		t.Errorf("category = %q, want chassidic", e.Category)
	}
	if e.LocalizedTitle == "" || e.SymbolicDate == "" {
		t.Errorf("localized fields missing: %+v", e)
	}
	for _, entry := range c.Entries() {
		if entry.Category != models.CategoryChassidic {
			t.Errorf("%s: category = %q", entry.ID, entry.Category)
		}
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	c := Default()
	entries := c.Entries()
	entries[0].Title = "mutated"
	if c.Entries()[0].Title == "mutated" {
		t.Fatal("Entries must not expose internal slice")
	}
}

func TestMatchTitle(t *testing.T) {
	c, err := New([]models.CatalogEntry{
		{ID: "a", Title: "Shared"},
		{ID: "b", Title: "Shared"},
		{ID: "c", Title: "Other"},
	})
	if err != nil {
		t.Fatal(err)
	}
	e, ok := c.MatchTitle("Shared")
	if !ok || e.ID != "a" {
		t.Errorf("MatchTitle(Shared) = %+v, %v; want first entry", e, ok)
	}
	if _, ok := c.MatchTitle("shared"); ok {
		t.Error("title match must be exact")
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]models.CatalogEntry{{ID: "x", Title: "1"}, {ID: "x", Title: "2"}})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	_, err = New([]models.CatalogEntry{{Title: "no id"}})
	if err == nil {
		t.Fatal("expected missing id error")
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte("- id: one\n  title: One\n  symbolic_date: א' ניסן\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e, ok := c.Lookup("one")
	if !ok || e.SymbolicDate != "א' ניסן" {
		t.Errorf("Lookup(one) = %+v, %v", e, ok)
	}
	if _, err := Parse([]byte("not: [a list")); err == nil {
		t.Error("expected parse error")
	}
}
