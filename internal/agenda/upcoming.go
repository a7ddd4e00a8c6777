package agenda

import (
	"math"
	"slices"
	"time"

	"github.com/starford/luach/internal/models"
)

// Default upcoming window policy.
const (
	DefaultMaxDays = 30
	DefaultLimit   = 10
)

// Window bounds the upcoming view.
type Window struct {
	MaxDays int `json:"max_days"`
	Limit   int `json:"limit"`
}

// DefaultWindow returns the 30 day, 10 entry policy.
func DefaultWindow() Window {
	return Window{MaxDays: DefaultMaxDays, Limit: DefaultLimit}
}

// UpcomingEvent is an event annotated with the days remaining until it.
type UpcomingEvent struct {
	models.Event
	DaysUntil int `json:"days_until"`
}

// DaysUntil returns ceil((date - now) / 24h). An event at exactly now is 0
// days away; any fraction of a day rounds toward the future.
func DaysUntil(date, now time.Time) int {
	return int(math.Ceil(float64(date.Sub(now)) / float64(24*time.Hour)))
}

// Upcoming returns events between 0 and w.MaxDays days away, nearest first,
// truncated to w.Limit. Ties keep input order.
func Upcoming(events []models.Event, now time.Time, w Window) []UpcomingEvent {
	out := make([]UpcomingEvent, 0, len(events))
	for _, ev := range events {
		d := DaysUntil(ev.Date, now)
		if d < 0 || d > w.MaxDays {
			continue
		}
		out = append(out, UpcomingEvent{Event: ev, DaysUntil: d})
	}
	slices.SortStableFunc(out, func(a, b UpcomingEvent) int {
		return abs(a.DaysUntil) - abs(b.DaysUntil)
	})
	if w.Limit >= 0 && len(out) > w.Limit {
		out = out[:w.Limit]
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
