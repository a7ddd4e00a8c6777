package agenda

import (
	"slices"

	"github.com/starford/luach/internal/models"
)

// Chronological returns a copy of events sorted by date, oldest first.
// Events on the same date keep their input order.
func Chronological(events []models.Event) []models.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b models.Event) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// Stats counts events per category.
type Stats struct {
	Total      int                     `json:"total"`
	ByCategory map[models.Category]int `json:"by_category"`
}

// Count tallies events per category. Every category is present in the result.
func Count(events []models.Event) Stats {
	st := Stats{ByCategory: make(map[models.Category]int, len(models.Categories))}
	for _, c := range models.Categories {
		st.ByCategory[c] = 0
	}
	for _, ev := range events {
		st.Total++
		st.ByCategory[ev.Category]++
	}
	return st
}
