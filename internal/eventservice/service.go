// Package eventservice coordinates the event store, catalog reconciliation
// and the derived views for the HTTP, MCP and CLI front ends.
package eventservice

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/starford/luach/internal/agenda"
	"github.com/starford/luach/internal/calendar"
	"github.com/starford/luach/internal/catalog"
	"github.com/starford/luach/internal/checksum"
	"github.com/starford/luach/internal/eventstore"
	"github.com/starford/luach/internal/icsexport"
	"github.com/starford/luach/internal/models"
	"github.com/starford/luach/internal/reconcile"
	"github.com/starford/luach/internal/reminder"
	"github.com/starford/luach/internal/sse"
)

// Notifier receives the outcome of successful mutations.
type Notifier interface {
	Publish(msg sse.Message)
	PublishChange(kind string, events ...models.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(sse.Message)                   {}
func (nopNotifier) PublishChange(string, ...models.Event) {}

// EventDetail is an event with its current version for optimistic updates.
type EventDetail struct {
	models.Event
	Version string `json:"version"`
}

// YearMonth names a displayed month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthView is a calendar grid with its navigation targets.
type MonthView struct {
	calendar.Month
	Prev YearMonth `json:"prev"`
	Next YearMonth `json:"next"`
}

// CatalogItem is a catalog entry with its selection state.
type CatalogItem struct {
	models.CatalogEntry
	Selected bool `json:"selected"`
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the mutation notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithWindow sets the default upcoming window.
func WithWindow(w agenda.Window) Option {
	return func(s *Service) {
		s.window = w
	}
}

// WithFirstWeekday sets the first column of calendar grids.
func WithFirstWeekday(d time.Weekday) Option {
	return func(s *Service) {
		s.grid = calendar.NewBuilder(d)
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the application facade over the event store.
type Service struct {
	store      *eventstore.Store
	catalog    *catalog.Catalog
	reconciler *reconcile.Reconciler
	grid       calendar.Builder
	window     agenda.Window
	notifier   Notifier
	now        func() time.Time

	// applyMu serializes reconciliations so each diff is applied against
	// the state it was computed from.
	applyMu sync.Mutex
}

// NewService creates a new event service.
func NewService(store *eventstore.Store, cat *catalog.Catalog, rec *reconcile.Reconciler, opts ...Option) *Service {
	s := &Service{
		store:      store,
		catalog:    cat,
		reconciler: rec,
		grid:       calendar.NewBuilder(time.Sunday),
		window:     agenda.DefaultWindow(),
		notifier:   nopNotifier{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window returns the default upcoming window.
func (s *Service) Window() agenda.Window { return s.window }

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

func detail(ev models.Event) EventDetail {
	return EventDetail{Event: ev, Version: checksum.Event(ev)}
}

// ListEvents returns the selected events in chronological order.
func (s *Service) ListEvents(_ context.Context, sel agenda.Selector) []models.Event {
	return agenda.Chronological(agenda.Filter(s.store.List(), sel))
}

// GetEvent returns a single event.
func (s *Service) GetEvent(_ context.Context, id string) (EventDetail, error) {
	ev, err := s.store.Get(id)
	if err != nil {
		return EventDetail{}, err
	}
	return detail(ev), nil
}

// AddEvent validates and stores a new event. ctx must carry an identity.
func (s *Service) AddEvent(ctx context.Context, in models.EventInput) (EventDetail, error) {
	in.CatalogID = ""
	ev, err := s.store.Add(ctx, in)
	if err != nil {
		return EventDetail{}, err
	}
	s.notifier.PublishChange(sse.ChangeCreated, ev)
	return detail(ev), nil
}

// EditEvent applies patch to an event. A non-empty ifMatch must equal the
// event's current version.
func (s *Service) EditEvent(_ context.Context, id, ifMatch string, patch models.EventPatch) (EventDetail, error) {
	ev, err := s.store.EditIfMatch(id, ifMatch, patch)
	if err != nil {
		return EventDetail{}, err
	}
	s.notifier.PublishChange(sse.ChangeUpdated, ev)
	return detail(ev), nil
}

// DeleteEvent removes an event. Deleting a missing id is not an error.
func (s *Service) DeleteEvent(_ context.Context, id string) bool {
	ev, err := s.store.Get(id)
	if err != nil || !s.store.Delete(id) {
		return false
	}
	s.notifier.PublishChange(sse.ChangeDeleted, ev)
	return true
}

// RemoveEvents removes several events and returns the ids actually removed.
func (s *Service) RemoveEvents(_ context.Context, ids []string) []string {
	before := s.store.List()
	removed := s.store.BulkRemove(ids)
	if len(removed) == 0 {
		return []string{}
	}
	s.notifier.PublishChange(sse.ChangeDeleted, pick(before, removed)...)
	s.notifier.Publish(sse.Message{Type: "events.removed", Data: map[string][]string{"ids": removed}})
	return removed
}

// ImportEvents adds several independent events, as seeding does.
func (s *Service) ImportEvents(ctx context.Context, inputs []models.EventInput) (eventstore.BulkResult, error) {
	res, err := s.store.BulkAdd(ctx, inputs)
	if err != nil {
		return res, err
	}
	s.notifier.PublishChange(sse.ChangeCreated, res.Added...)
	return res, nil
}

// Upcoming returns the selected events inside w. Zero fields of w fall back
// to the service defaults.
func (s *Service) Upcoming(_ context.Context, sel agenda.Selector, w agenda.Window) []agenda.UpcomingEvent {
	if w.MaxDays <= 0 {
		w.MaxDays = s.window.MaxDays
	}
	if w.Limit <= 0 {
		w.Limit = s.window.Limit
	}
	return agenda.Upcoming(agenda.Filter(s.store.List(), sel), s.now(), w)
}

// Month builds the calendar grid for year/month.
func (s *Service) Month(_ context.Context, year int, month time.Month, sel agenda.Selector) MonthView {
	m := s.grid.Build(year, month, s.now(), agenda.Filter(s.store.List(), sel))
	py, pm := calendar.Prev(m.Year, m.Month)
	ny, nm := calendar.Next(m.Year, m.Month)
	return MonthView{
		Month: m,
		Prev:  YearMonth{Year: py, Month: pm},
		Next:  YearMonth{Year: ny, Month: nm},
	}
}

// Day returns the selected events on day's calendar date.
func (s *Service) Day(_ context.Context, day time.Time, sel agenda.Selector) []models.Event {
	return calendar.EventsOn(day, agenda.Filter(s.store.List(), sel))
}

// Stats counts stored events per category.
func (s *Service) Stats(_ context.Context) agenda.Stats {
	return agenda.Count(s.store.List())
}

// Catalog returns every catalog entry flagged with whether it is present.
func (s *Service) Catalog(_ context.Context) []CatalogItem {
	selected := make(map[string]bool)
	for _, id := range s.reconciler.Selected(s.store.List()) {
		selected[id] = true
	}
	entries := s.catalog.Entries()
	out := make([]CatalogItem, len(entries))
	for i, e := range entries {
		out[i] = CatalogItem{CatalogEntry: e, Selected: selected[e.ID]}
	}
	return out
}

// ApplyCatalog reconciles the store with the selected catalog ids.
func (s *Service) ApplyCatalog(ctx context.Context, selected []string) (reconcile.Result, error) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	before := s.store.List()
	res, err := s.reconciler.Apply(ctx, s.store, selected)
	if err != nil {
		return res, err
	}
	s.notifier.PublishChange(sse.ChangeCreated, res.Added...)
	s.notifier.PublishChange(sse.ChangeDeleted, pick(before, res.Removed)...)
	s.notifier.Publish(sse.Message{Type: "catalog.applied", Data: map[string]int{
		"added":   len(res.Added),
		"removed": len(res.Removed),
	}})
	return res, nil
}

// ExportICS writes the selected events as an iCalendar feed.
func (s *Service) ExportICS(_ context.Context, w io.Writer, sel agenda.Selector) error {
	events := agenda.Chronological(agenda.Filter(s.store.List(), sel))
	return icsexport.Write(w, events, icsexport.Options{Name: "Luach", Now: s.now()})
}

// Events returns a snapshot of every stored event. It feeds the reminder scheduler.
func (s *Service) Events() []models.Event {
	return s.store.List()
}

// NotifyReminder publishes a due reminder.
func (s *Service) NotifyReminder(r reminder.Reminder) {
	s.notifier.Publish(sse.Message{Type: "reminder.due", Data: r, Category: r.Event.Category})
}

// pick returns the events in snapshot whose ids are listed, in ids order.
func pick(snapshot []models.Event, ids []string) []models.Event {
	byID := make(map[string]models.Event, len(snapshot))
	for _, ev := range snapshot {
		byID[ev.ID] = ev
	}
	out := make([]models.Event, 0, len(ids))
	for _, id := range ids {
		if ev, ok := byID[id]; ok {
			out = append(out, ev)
		}
	}
	return out
}
