// Package reminder finds events whose reminder lead time has been reached
// and runs that check on a cron schedule.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/starford/luach/internal/agenda"
	"github.com/starford/luach/internal/models"
)

// Reminder is a due notification for one event.
type Reminder struct {
	Event     models.Event `json:"event"`
	DaysUntil int          `json:"days_until"`
}

// Due returns reminders for events with HasReminder set whose days-until
// equals their ReminderDays, plus those happening today.
func Due(events []models.Event, now time.Time) []Reminder {
	var out []Reminder
	for _, ev := range events {
		if !ev.HasReminder {
			continue
		}
		d := agenda.DaysUntil(ev.Date, now)
		if d == ev.ReminderDays || d == 0 {
			out = append(out, Reminder{Event: ev, DaysUntil: d})
		}
	}
	return out
}

// ValidateSchedule checks a standard five-field cron spec.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("reminder: invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Scheduler periodically checks a source of events for due reminders.
type Scheduler struct {
	cron   *cron.Cron
	source func() []models.Event
	notify func(Reminder)
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	sent map[string]string // event id -> date the reminder was sent
}

// NewScheduler registers the reminder check on spec.
func NewScheduler(spec string, source func() []models.Event, notify func(Reminder), logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		source: source,
		notify: notify,
		logger: logger,
		now:    time.Now,
		sent:   make(map[string]string),
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Check() }); err != nil {
		return nil, fmt.Errorf("reminder: schedule %q: %w", spec, err)
	}
	return s, nil
}

// Check runs one pass and notifies each reminder at most once per day.
// Entries from earlier days are forgotten. It returns the number of
// notifications sent.
func (s *Scheduler) Check() int {
	now := s.now()
	today := now.UTC().Format(models.DateLayout)
	due := Due(s.source(), now)

	s.mu.Lock()
	for id, day := range s.sent {
		if day != today {
			delete(s.sent, id)
		}
	}
	var fresh []Reminder
	for _, r := range due {
		if s.sent[r.Event.ID] == today {
			continue
		}
		s.sent[r.Event.ID] = today
		fresh = append(fresh, r)
	}
	s.mu.Unlock()

	for _, r := range fresh {
		s.logger.Info("reminder due",
			slog.String("event_id", r.Event.ID),
			slog.String("title", r.Event.Title),
			slog.Int("days_until", r.DaysUntil))
		s.notify(r)
	}
	return len(fresh)
}

// Run starts the cron loop and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("reminder: scheduler started")
	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("reminder: scheduler stopped")
}
