// Package reconcile keeps catalog-derived chassidic events in line with the
// user's catalog selection by computing and applying a minimal diff.
package reconcile

import (
	"context"
	"fmt"

	"github.com/starford/luach/internal/apperr"
	"github.com/starford/luach/internal/catalog"
	"github.com/starford/luach/internal/eventstore"
	"github.com/starford/luach/internal/models"
)

// Strategy selects how an event is traced back to its catalog entry.
type Strategy string

const (
	// MatchTitle joins chassidic events to entries by exact title equality.
	// A user-entered chassidic event titled like an entry is treated as
	// catalog-derived.
	MatchTitle Strategy = "title"
	// MatchProvenance joins by the CatalogID recorded when the event was added.
	MatchProvenance Strategy = "provenance"
)

// Store is the subset of the event store the reconciler mutates.
type Store interface {
	List() []models.Event
	BulkAdd(ctx context.Context, inputs []models.EventInput) (eventstore.BulkResult, error)
	BulkRemove(ids []string) []string
}

// Plan is the diff between the selection and the store.
type Plan struct {
	ToAdd    []models.CatalogEntry `json:"to_add"`
	ToRemove []models.Event        `json:"to_remove"`
}

// RemoveIDs returns the ids of the events to remove.
func (p Plan) RemoveIDs() []string {
	ids := make([]string, len(p.ToRemove))
	for i, ev := range p.ToRemove {
		ids[i] = ev.ID
	}
	return ids
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// Result reports what Apply changed.
type Result struct {
	Added    []models.Event         `json:"added"`
	Removed  []string               `json:"removed"`
	Rejected []eventstore.Rejection `json:"rejected,omitempty"`
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithStrategy sets the match strategy. Unknown strategies fall back to MatchTitle.
func WithStrategy(s Strategy) Option {
	return func(r *Reconciler) {
		r.strategy = s
	}
}

// WithDateResolver sets the resolver used for newly added entries.
func WithDateResolver(fn DateResolver) Option {
	return func(r *Reconciler) {
		r.resolve = fn
	}
}

// Reconciler diffs catalog selections against stored events.
type Reconciler struct {
	catalog  *catalog.Catalog
	strategy Strategy
	resolve  DateResolver
}

// New creates a reconciler over cat.
func New(cat *catalog.Catalog, opts ...Option) *Reconciler {
	r := &Reconciler{
		catalog:  cat,
		strategy: MatchTitle,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.resolve == nil {
		r.resolve = RandomDates(nil, nil)
	}
	return r
}

// Strategy returns the active match strategy.
func (r *Reconciler) Strategy() Strategy { return r.strategy }

// match returns the catalog entry ev originated from. Only chassidic events
// are candidates.
func (r *Reconciler) match(ev models.Event) (models.CatalogEntry, bool) {
	if ev.Category != models.CategoryChassidic {
		return models.CatalogEntry{}, false
	}
	if r.strategy == MatchProvenance {
		if ev.CatalogID == "" {
			return models.CatalogEntry{}, false
		}
		return r.catalog.Lookup(ev.CatalogID)
	}
	return r.catalog.MatchTitle(ev.Title)
}

// Selected returns the catalog ids present among events, in catalog order.
func (r *Reconciler) Selected(events []models.Event) []string {
	present := r.currentIDs(events)
	out := make([]string, 0, len(present))
	for _, e := range r.catalog.Entries() {
		if _, ok := present[e.ID]; ok {
			out = append(out, e.ID)
		}
	}
	return out
}

func (r *Reconciler) currentIDs(events []models.Event) map[string]struct{} {
	current := make(map[string]struct{})
	for _, ev := range events {
		if e, ok := r.match(ev); ok {
			current[e.ID] = struct{}{}
		}
	}
	return current
}

// Diff computes what to add and remove so that the catalog-derived events
// correspond exactly to selected. Unknown ids are a validation error.
func (r *Reconciler) Diff(selected []string, events []models.Event) (Plan, error) {
	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, ok := r.catalog.Lookup(id); !ok {
			return Plan{}, apperr.Invalidf("unknown catalog entry %q", id)
		}
		want[id] = struct{}{}
	}

	current := r.currentIDs(events)

	var plan Plan
	for _, e := range r.catalog.Entries() {
		_, wanted := want[e.ID]
		_, have := current[e.ID]
		if wanted && !have {
			plan.ToAdd = append(plan.ToAdd, e)
		}
	}
	for _, ev := range events {
		e, ok := r.match(ev)
		if !ok {
			continue
		}
		if _, wanted := want[e.ID]; !wanted {
			plan.ToRemove = append(plan.ToRemove, ev)
		}
	}
	return plan, nil
}

// Apply diffs selected against store and applies the plan: additions first,
// then removals. When additions are rejected for lack of authorization
// nothing is removed.
func (r *Reconciler) Apply(ctx context.Context, store Store, selected []string) (Result, error) {
	plan, err := r.Diff(selected, store.List())
	if err != nil {
		return Result{}, err
	}

	res := Result{Added: []models.Event{}, Removed: []string{}}
	if len(plan.ToAdd) > 0 {
		inputs := make([]models.EventInput, len(plan.ToAdd))
		for i, e := range plan.ToAdd {
			inputs[i] = r.inputFor(e)
		}
		bulk, err := store.BulkAdd(ctx, inputs)
		if err != nil {
			return Result{}, fmt.Errorf("reconcile: add: %w", err)
		}
		res.Added = bulk.Added
		res.Rejected = bulk.Rejected
	}
	if len(plan.ToRemove) > 0 {
		res.Removed = store.BulkRemove(plan.RemoveIDs())
	}
	return res, nil
}

func (r *Reconciler) inputFor(e models.CatalogEntry) models.EventInput {
	return models.EventInput{
		Title:         e.Title,
		HebrewDate:    e.SymbolicDate,
		GregorianDate: r.resolve(e),
		Category:      models.CategoryChassidic,
		EventType:     models.EventTypeEvent,
		Description:   e.Description,
		HasReminder:   false,
		ReminderDays:  models.DefaultReminderDays,
		CatalogID:     e.ID,
	}
}
