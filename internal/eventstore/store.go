// Package eventstore is the in-memory source of truth for user events.
//
// Every mutation goes through the Store; readers receive copies. The derived
// Event.Date is computed inside the same critical section that writes
// Event.GregorianDate, so no reader can observe the two disagreeing.
package eventstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/luach/internal/apperr"
	"github.com/starford/luach/internal/auth"
	"github.com/starford/luach/internal/checksum"
	"github.com/starford/luach/internal/models"
)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// Store holds events in insertion order.
type Store struct {
	mu     sync.RWMutex
	order  []string
	events map[string]models.Event
	newID  func() string
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		events: make(map[string]models.Event),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rejection records a bulk-add entry that failed validation.
type Rejection struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Err   error  `json:"-"`
}

// BulkResult reports the outcome of BulkAdd.
type BulkResult struct {
	Added    []models.Event `json:"added"`
	Rejected []Rejection    `json:"rejected,omitempty"`
}

// Add validates in and inserts a new event. ctx must carry a signed-in identity.
func (s *Store) Add(ctx context.Context, in models.EventInput) (models.Event, error) {
	if !auth.Authorized(ctx) {
		return models.Event{}, apperr.ErrAuthRequired
	}
	ev, err := s.build(in)
	if err != nil {
		return models.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(&ev)
	return ev, nil
}

// BulkAdd inserts independent entries. Invalid entries are reported in the
// result and do not prevent the valid ones from being added.
func (s *Store) BulkAdd(ctx context.Context, inputs []models.EventInput) (BulkResult, error) {
	if !auth.Authorized(ctx) {
		return BulkResult{}, apperr.ErrAuthRequired
	}
	res := BulkResult{Added: make([]models.Event, 0, len(inputs))}
	built := make([]models.Event, 0, len(inputs))
	for i, in := range inputs {
		ev, err := s.build(in)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: i, Title: in.Title, Err: err})
			continue
		}
		built = append(built, ev)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range built {
		s.insertLocked(&built[i])
		res.Added = append(res.Added, built[i])
	}
	return res, nil
}

// Edit merges patch into the event with the given id and recomputes its date.
func (s *Store) Edit(id string, patch models.EventPatch) (models.Event, error) {
	return s.EditIfMatch(id, "", patch)
}

// EditIfMatch is Edit guarded by an optimistic version check. An empty
// version skips the check; a stale one fails with apperr.ErrConflict.
func (s *Store) EditIfMatch(id, version string, patch models.EventPatch) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.events[id]
	if !ok {
		return models.Event{}, apperr.ErrNotFound
	}
	if version != "" && version != checksum.Event(cur) {
		return models.Event{}, apperr.ErrConflict
	}

	merged := normalize(applyPatch(inputOf(cur), patch))
	date, err := validateInput(merged)
	if err != nil {
		return models.Event{}, err
	}
	next := eventFrom(id, merged, date)
	s.events[id] = next
	return next, nil
}

// Delete removes the event if present and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(map[string]struct{}{id: {}}) == 1
}

// BulkRemove removes every event whose id is in ids and returns the ids
// actually removed. Unknown ids are ignored.
func (s *Store) BulkRemove(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := make([]string, 0, len(set))
	for _, id := range s.order {
		if _, ok := set[id]; ok {
			removed = append(removed, id)
		}
	}
	s.removeLocked(set)
	return removed
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return models.Event{}, apperr.ErrNotFound
	}
	return ev, nil
}

// List returns a snapshot of all events in insertion order.
func (s *Store) List() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.events[id])
	}
	return out
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) build(in models.EventInput) (models.Event, error) {
	in = normalize(in)
	date, err := validateInput(in)
	if err != nil {
		return models.Event{}, err
	}
	return eventFrom("", in, date), nil
}

// insertLocked assigns a fresh id to ev and stores it.
func (s *Store) insertLocked(ev *models.Event) {
	id := s.newID()
	if _, taken := s.events[id]; taken || id == "" {
		id = uuid.NewString()
	}
	ev.ID = id
	s.events[id] = *ev
	s.order = append(s.order, id)
}

func (s *Store) removeLocked(set map[string]struct{}) int {
	n := 0
	s.order = slices.DeleteFunc(s.order, func(id string) bool {
		if _, ok := set[id]; ok {
			delete(s.events, id)
			n++
			return true
		}
		return false
	})
	return n
}

func eventFrom(id string, in models.EventInput, date time.Time) models.Event {
	return models.Event{
		ID:            id,
		Title:         in.Title,
		HebrewDate:    in.HebrewDate,
		GregorianDate: in.GregorianDate,
		Date:          date,
		Category:      in.Category,
		EventType:     in.EventType,
		Description:   in.Description,
		HasReminder:   in.HasReminder,
		ReminderDays:  in.ReminderDays,
		CatalogID:     in.CatalogID,
	}
}
