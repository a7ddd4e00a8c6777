// Package models defines the domain types for Luach.
package models

import "time"

// DateLayout is the canonical text form of an event's Gregorian date.
const DateLayout = "2006-01-02"

// Category groups events for filtering.
type Category string

// Event categories.
const (
	CategoryPersonal  Category = "personal"
	CategoryChassidic Category = "chassidic"
	CategoryCommunity Category = "community"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryPersonal, CategoryChassidic, CategoryCommunity}

// EventType is a display tag; it never takes part in filtering.
type EventType string

// Event types.
const (
	EventTypeBirthday EventType = "birthday"
	EventTypeMarried  EventType = "married"
	EventTypePassAway EventType = "pass_away"
	EventTypeEvent    EventType = "event"
	EventTypeOther    EventType = "other"
)

// EventTypes lists every valid event type.
var EventTypes = []EventType{EventTypeBirthday, EventTypeMarried, EventTypePassAway, EventTypeEvent, EventTypeOther}

// Recurring reports whether the type marks an annual occasion.
func (t EventType) Recurring() bool {
	switch t {
	case EventTypeBirthday, EventTypeMarried, EventTypePassAway:
		return true
	}
	return false
}

// DefaultReminderDays is applied when an input asks for a reminder without a lead time.
const DefaultReminderDays = 7

// Event is a dated entry owned by the event store.
//
// Date is always derived from GregorianDate; the store recomputes it on every
// add and edit.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	HebrewDate    string    `json:"hebrew_date,omitempty"`
	GregorianDate string    `json:"gregorian_date"`
	Date          time.Time `json:"date"`
	Category      Category  `json:"category"`
	EventType     EventType `json:"event_type"`
	Description   string    `json:"description,omitempty"`
	HasReminder   bool      `json:"has_reminder"`
	ReminderDays  int       `json:"reminder_days"`
	// CatalogID is set when the event was created from a catalog entry.
	CatalogID string `json:"catalog_id,omitempty"`
}

// EventInput carries the caller-supplied fields of a new event.
type EventInput struct {
	Title         string    `json:"title" yaml:"title"`
	HebrewDate    string    `json:"hebrew_date" yaml:"hebrew_date"`
	GregorianDate string    `json:"gregorian_date" yaml:"gregorian_date"`
	Category      Category  `json:"category" yaml:"category"`
	EventType     EventType `json:"event_type" yaml:"event_type"`
	Description   string    `json:"description" yaml:"description"`
	HasReminder   bool      `json:"has_reminder" yaml:"has_reminder"`
	ReminderDays  int       `json:"reminder_days" yaml:"reminder_days"`
	CatalogID     string    `json:"-" yaml:"-"`
}

// EventPatch holds optional field updates for an edit. Nil fields are left unchanged.
type EventPatch struct {
	Title         *string    `json:"title,omitempty"`
	HebrewDate    *string    `json:"hebrew_date,omitempty"`
	GregorianDate *string    `json:"gregorian_date,omitempty"`
	Category      *Category  `json:"category,omitempty"`
	EventType     *EventType `json:"event_type,omitempty"`
	Description   *string    `json:"description,omitempty"`
	HasReminder   *bool      `json:"has_reminder,omitempty"`
	ReminderDays  *int       `json:"reminder_days,omitempty"`
}

// CatalogEntry is a preset chassidic date template.
type CatalogEntry struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	LocalizedTitle string   `json:"localized_title" yaml:"localized_title"`
	SymbolicDate   string   `json:"symbolic_date" yaml:"symbolic_date"`
	Description    string   `json:"description" yaml:"description"`
	Category       Category `json:"category" yaml:"-"`
}
