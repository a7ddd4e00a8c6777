package checksum

import (
	"testing"

	"github.com/starford/luach/internal/models"
)

func TestSumStable(t *testing.T) {
	a := Sum([]byte("hello"))
	if a != Sum([]byte("hello")) {
		t.Fatal("checksum should be deterministic")
	}
	if a == Sum([]byte("hello!")) {
		t.Fatal("different input should produce different checksum")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
}

func TestEventVersionChangesWithFields(t *testing.T) {
	e := models.Event{ID: "1", Title: "Lag BaOmer", GregorianDate: "2024-05-26"}
	v1 := Event(e)
	if v1 != Event(e) {
		t.Fatal("version should be deterministic")
	}
	e.Description = "bonfires"
	if Event(e) == v1 {
		t.Error("version should change when a field changes")
	}
}
