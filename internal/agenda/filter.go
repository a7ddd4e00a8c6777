// Package agenda derives the list views of the event collection: category
// filtering, the upcoming window and chronological listings.
package agenda

import (
	"github.com/starford/luach/internal/apperr"
	"github.com/starford/luach/internal/models"
)

// Selector picks a category, or every category with SelectAll.
type Selector string

// SelectAll matches events of any category.
const SelectAll Selector = "all"

// ParseSelector validates s. An empty string selects all.
func ParseSelector(s string) (Selector, error) {
	if s == "" || s == string(SelectAll) {
		return SelectAll, nil
	}
	for _, c := range models.Categories {
		if s == string(c) {
			return Selector(c), nil
		}
	}
	return "", apperr.Invalidf("category: %q is not one of all, personal, chassidic, community", s)
}

// Matches reports whether ev belongs to the selection.
func (s Selector) Matches(ev models.Event) bool {
	return s.Includes(ev.Category)
}

// Includes reports whether events of category c belong to the selection.
func (s Selector) Includes(c models.Category) bool {
	return s == SelectAll || s == "" || models.Category(s) == c
}

// Filter returns the events matching sel, preserving input order.
func Filter(events []models.Event, sel Selector) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if sel.Matches(ev) {
			out = append(out, ev)
		}
	}
	return out
}
