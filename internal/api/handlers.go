package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/luach/internal/agenda"
	"github.com/starford/luach/internal/apperr"
	"github.com/starford/luach/internal/eventservice"
	"github.com/starford/luach/internal/eventstore"
	"github.com/starford/luach/internal/models"
)

const maxBody = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *eventservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *eventservice.Service) *Handler {
	return &Handler{svc: svc}
}

func selector(r *http.Request) (agenda.Selector, error) {
	return agenda.ParseSelector(r.URL.Query().Get("category"))
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Invalidf("%s: %q is not a non-negative integer", name, raw)
	}
	return n, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

func writeEvent(w http.ResponseWriter, status int, ev EventDetail) {
	w.Header().Set("ETag", `"`+ev.Version+`"`)
	writeJSON(w, status, ev)
}

// ListEvents handles GET /api/events.
//
//	@Summary		List events in chronological order
//	@Tags			events
//	@Produce		json
//	@Param			category	query		string	false	"Category filter"	Enums(all, personal, chassidic, community)
//	@Success		200			{object}	EventListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	sel, err := selector(r)
	if err != nil {
		writeError(w, "list events", err)
		return
	}
	events := h.svc.ListEvents(r.Context(), sel)
	writeJSON(w, http.StatusOK, EventListResponse{Events: events, Total: len(events)})
}

// GetEvent handles GET /api/events/{id}.
//
//	@Summary		Get a single event
//	@Tags			events
//	@Produce		json
//	@Param			id	path		string	true	"Event id"
//	@Success		200	{object}	EventDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get event", err)
		return
	}
	writeEvent(w, http.StatusOK, ev)
}

// CreateEvent handles POST /api/events.
//
//	@Summary		Create a new event
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EventRequest	true	"Event to create"
//	@Success		201		{object}	EventDetail
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decode(w, r, &req) {
		return
	}
	ev, err := h.svc.AddEvent(r.Context(), req)
	if err != nil {
		writeError(w, "create event", err)
		return
	}
	writeEvent(w, http.StatusCreated, ev)
}

// UpdateEvent handles PUT /api/events/{id}.
//
//	@Summary		Edit an event with optimistic concurrency
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Event id"
//	@Param			If-Match	header		string				false	"Event version"
//	@Param			body		body		EventPatchRequest	true	"Fields to change"
//	@Success		200			{object}	EventDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		412			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventPatchRequest
	if !decode(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	ev, err := h.svc.EditEvent(r.Context(), chi.URLParam(r, "id"), ifMatch, req)
	if err != nil {
		writeError(w, "update event", err)
		return
	}
	writeEvent(w, http.StatusOK, ev)
}

// DeleteEvent handles DELETE /api/events/{id}.
//
//	@Summary		Delete an event
//	@Tags			events
//	@Param			id	path	string	true	"Event id"
//	@Success		204	"Event deleted or already absent"
//	@Security		BearerAuth
//	@Router			/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	h.svc.DeleteEvent(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete handles POST /api/events/bulk-delete.
//
//	@Summary		Delete several events
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BulkDeleteRequest	true	"Events to delete"
//	@Success		200		{object}	BulkDeleteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/bulk-delete [post]
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, BulkDeleteResponse{Removed: h.svc.RemoveEvents(r.Context(), req.IDs)})
}

// Upcoming handles GET /api/upcoming.
//
//	@Summary		Events in the upcoming window, nearest first
//	@Tags			views
//	@Produce		json
//	@Param			category	query		string	false	"Category filter"
//	@Param			max_days	query		int		false	"Window length in days"
//	@Param			limit		query		int		false	"Maximum number of events"
//	@Success		200			{object}	UpcomingResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/upcoming [get]
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	sel, err := selector(r)
	if err != nil {
		writeError(w, "upcoming", err)
		return
	}
	var win agenda.Window
	if win.MaxDays, err = queryInt(r, "max_days"); err != nil {
		writeError(w, "upcoming", err)
		return
	}
	if win.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, "upcoming", err)
		return
	}
	writeJSON(w, http.StatusOK, UpcomingResponse{Events: h.svc.Upcoming(r.Context(), sel, win)})
}

// CalendarMonth handles GET /api/calendar/{year}/{month}.
//
//	@Summary		Month grid with bucketed events
//	@Tags			views
//	@Produce		json
//	@Param			year		path		int		true	"Year"
//	@Param			month		path		int		true	"Month, 1-12"
//	@Param			category	query		string	false	"Category filter"
//	@Success		200			{object}	eventservice.MonthView
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/{year}/{month} [get]
func (h *Handler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid year"))
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid month"))
		return
	}
	sel, err := selector(r)
	if err != nil {
		writeError(w, "calendar month", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Month(r.Context(), year, time.Month(month), sel))
}

// CalendarDay handles GET /api/calendar/day/{date}.
//
//	@Summary		Events on a single day
//	@Tags			views
//	@Produce		json
//	@Param			date		path		string	true	"YYYY-MM-DD"
//	@Param			category	query		string	false	"Category filter"
//	@Success		200			{object}	DayResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/day/{date} [get]
func (h *Handler) CalendarDay(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "date")
	day, err := eventstore.ParseDate(raw)
	if err != nil {
		writeError(w, "calendar day", err)
		return
	}
	sel, err := selector(r)
	if err != nil {
		writeError(w, "calendar day", err)
		return
	}
	writeJSON(w, http.StatusOK, DayResponse{Date: raw, Events: h.svc.Day(r.Context(), day, sel)})
}

// Stats handles GET /api/stats.
//
//	@Summary		Event counts per category
//	@Tags			views
//	@Produce		json
//	@Success		200	{object}	agenda.Stats
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}

// ExportICS handles GET /api/export.ics.
//
//	@Summary		iCalendar feed of the events
//	@Tags			views
//	@Produce		text/calendar
//	@Param			category	query	string	false	"Category filter"
//	@Success		200			{string}	string
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export.ics [get]
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	sel, err := selector(r)
	if err != nil {
		writeError(w, "export ics", err)
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportICS(r.Context(), &buf, sel); err != nil {
		writeError(w, "export ics", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="luach.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Catalog handles GET /api/catalog.
//
//	@Summary		Catalog of chassidic dates with selection state
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	CatalogResponse
//	@Security		BearerAuth
//	@Router			/catalog [get]
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{Entries: h.svc.Catalog(r.Context())})
}

// ApplyCatalog handles POST /api/catalog/apply.
//
//	@Summary		Make the selected catalog entries the present ones
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ApplyCatalogRequest	true	"Selected catalog ids"
//	@Success		200		{object}	ApplyCatalogResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/catalog/apply [post]
func (h *Handler) ApplyCatalog(w http.ResponseWriter, r *http.Request) {
	var req ApplyCatalogRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ApplyCatalog(r.Context(), req.Selected)
	if err != nil {
		writeError(w, "apply catalog", err)
		return
	}
	added := res.Added
	if added == nil {
		added = []models.Event{}
	}
	removed := res.Removed
	if removed == nil {
		removed = []string{}
	}
	writeJSON(w, http.StatusOK, ApplyCatalogResponse{Added: added, Removed: removed})
}
