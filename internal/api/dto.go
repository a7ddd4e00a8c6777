package api

import (
	"github.com/starford/luach/internal/agenda"
	"github.com/starford/luach/internal/eventservice"
	"github.com/starford/luach/internal/models"
)

// EventRequest is the request body for creating an event.
type EventRequest = models.EventInput

// EventPatchRequest is the request body for editing an event. Omitted fields
// keep their current value.
type EventPatchRequest = models.EventPatch

// EventDetail is a single event with its version (aliased from the domain layer).
type EventDetail = eventservice.EventDetail

// EventListResponse wraps event listings.
type EventListResponse struct {
	Events []models.Event `json:"events" validate:"required"`
	Total  int            `json:"total" example:"3" validate:"required"`
}

// BulkDeleteRequest lists the events to remove.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// BulkDeleteResponse lists the events actually removed.
type BulkDeleteResponse struct {
	Removed []string `json:"removed" validate:"required"`
}

// UpcomingResponse wraps the upcoming window.
type UpcomingResponse struct {
	Events []agenda.UpcomingEvent `json:"events" validate:"required"`
}

// DayResponse lists the events of one calendar day.
type DayResponse struct {
	Date   string         `json:"date" example:"2024-06-12" validate:"required"`
	Events []models.Event `json:"events" validate:"required"`
}

// CatalogResponse lists the catalog with selection flags.
type CatalogResponse struct {
	Entries []eventservice.CatalogItem `json:"entries" validate:"required"`
}

// ApplyCatalogRequest names the catalog entries that should be present.
type ApplyCatalogRequest struct {
	Selected []string `json:"selected" example:"lag-baomer,yud-shvat"`
}

// ApplyCatalogResponse reports the outcome of a reconciliation.
type ApplyCatalogResponse struct {
	Added   []models.Event `json:"added" validate:"required"`
	Removed []string       `json:"removed" validate:"required"`
}
