// Package calendar projects events onto month grids of 7-day weeks.
//
// All grid days are midnight UTC, matching how event dates are parsed. The
// builder is stateless: the month being displayed belongs to the caller.
package calendar

import (
	"time"

	"github.com/starford/luach/internal/models"
)

// Day is one cell of the grid.
type Day struct {
	Date           time.Time      `json:"date"`
	InCurrentMonth bool           `json:"in_current_month"`
	IsToday        bool           `json:"is_today"`
	Events         []models.Event `json:"events"`
}

// Week is seven consecutive days starting on the grid's first weekday.
type Week [7]Day

// Month is the grid for one month including the leading and trailing days of
// the adjacent months that complete the first and last week.
type Month struct {
	Year         int          `json:"year"`
	Month        time.Month   `json:"month"`
	FirstWeekday time.Weekday `json:"first_weekday"`
	Weeks        []Week       `json:"weeks"`
}

// Builder lays out month grids.
type Builder struct {
	FirstWeekday time.Weekday
}

// NewBuilder returns a builder whose first column is first.
func NewBuilder(first time.Weekday) Builder {
	return Builder{FirstWeekday: first}
}

// Build lays out year/month (month is 1-based) and buckets events into each
// day. today is compared by calendar date in its own location.
func (b Builder) Build(year int, month time.Month, today time.Time, events []models.Event) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Normalise overflowed input, e.g. month 13.
	year, month = first.Year(), first.Month()
	last := first.AddDate(0, 1, -1)

	offset := (int(first.Weekday()) - int(b.FirstWeekday) + 7) % 7
	cursor := first.AddDate(0, 0, -offset)
	todayDate := DateOf(today)
	buckets := bucket(events)

	m := Month{Year: year, Month: month, FirstWeekday: b.FirstWeekday}
	for !cursor.After(last) {
		var w Week
		for i := range w {
			w[i] = Day{
				Date:           cursor,
				InCurrentMonth: cursor.Month() == month && cursor.Year() == year,
				IsToday:        cursor.Equal(todayDate),
				Events:         nonNil(buckets[cursor.Format(models.DateLayout)]),
			}
			cursor = cursor.AddDate(0, 0, 1)
		}
		m.Weeks = append(m.Weeks, w)
	}
	return m
}

// Days returns the grid flattened in display order.
func (m Month) Days() []Day {
	out := make([]Day, 0, len(m.Weeks)*7)
	for _, w := range m.Weeks {
		out = append(out, w[:]...)
	}
	return out
}

// Day returns the cell for the given day of the displayed month.
func (m Month) Day(day int) (Day, bool) {
	want := time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
	if want.Month() != m.Month {
		return Day{}, false
	}
	for _, d := range m.Days() {
		if d.Date.Equal(want) {
			return d, true
		}
	}
	return Day{}, false
}

// DateOf truncates t to its calendar date, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar date, ignoring
// time of day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// EventsOn returns every event whose date is exactly day's calendar date, in
// input order.
func EventsOn(day time.Time, events []models.Event) []models.Event {
	out := []models.Event{}
	for _, ev := range events {
		if SameDate(ev.Date, day) {
			out = append(out, ev)
		}
	}
	return out
}

func bucket(events []models.Event) map[string][]models.Event {
	out := make(map[string][]models.Event)
	for _, ev := range events {
		k := DateOf(ev.Date).Format(models.DateLayout)
		out[k] = append(out[k], ev)
	}
	return out
}

func nonNil(s []models.Event) []models.Event {
	if s == nil {
		return []models.Event{}
	}
	return s
}

// Next returns the month after year/month, rolling December into January.
func Next(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// Prev returns the month before year/month, rolling January into December.
func Prev(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
