// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Luach tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/luach/internal/agenda"
	"github.com/starford/luach/internal/auth"
	"github.com/starford/luach/internal/eventservice"
	"github.com/starford/luach/internal/models"
)

const formatURI = "luach://event-format"

// Identity is attached to mutations made through MCP. The stdio transport is
// only reachable by the local user who started it.
var Identity = auth.Identity{Subject: "mcp"}

// Server wraps the MCP server with Luach tools.
type Server struct {
	mcp *server.MCPServer
	svc *eventservice.Service
}

// New creates a new MCP server with all Luach tools registered.
func New(svc *eventservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Luach",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	categoryParam := mcp.WithString("category",
		mcp.Description("Optional category filter: all, personal, chassidic or community"),
	)

	s.mcp.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List stored events in chronological order."),
		categoryParam,
	), s.listEvents)

	s.mcp.AddTool(mcp.NewTool("add_event",
		mcp.WithDescription("Add a dated event. Read the luach://event-format resource "+
			"or call get_event_contract first for the field rules."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Event title")),
		mcp.WithString("gregorian_date", mcp.Required(), mcp.Description("Date as YYYY-MM-DD")),
		mcp.WithString("hebrew_date", mcp.Description("Hebrew date text")),
		mcp.WithString("category", mcp.Description("personal, chassidic or community")),
		mcp.WithString("event_type", mcp.Description("birthday, married, pass_away, event or other")),
		mcp.WithString("description", mcp.Description("Free text")),
		mcp.WithBoolean("has_reminder", mcp.Description("Whether to remind before the date")),
		mcp.WithNumber("reminder_days", mcp.Description("Days before the date to remind")),
	), s.addEvent)

	s.mcp.AddTool(mcp.NewTool("delete_event",
		mcp.WithDescription("Delete an event by id. Deleting a missing id is not an error."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Event id")),
	), s.deleteEvent)

	s.mcp.AddTool(mcp.NewTool("upcoming_events",
		mcp.WithDescription("Events in the coming days, nearest first, with days_until."),
		categoryParam,
		mcp.WithNumber("max_days", mcp.Description("Window length in days")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of events")),
	), s.upcomingEvents)

	s.mcp.AddTool(mcp.NewTool("month_calendar",
		mcp.WithDescription("Render a month as a text calendar with its events."),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("Year, e.g. 2024")),
		mcp.WithNumber("month", mcp.Required(), mcp.Description("Month, 1-12")),
		categoryParam,
	), s.monthCalendar)

	s.mcp.AddTool(mcp.NewTool("list_catalog",
		mcp.WithDescription("List the catalog of chassidic dates and which are currently present."),
	), s.listCatalog)

	s.mcp.AddTool(mcp.NewTool("apply_catalog",
		mcp.WithDescription("Make exactly the given catalog entries present. "+
			"Catalog events not listed are removed."),
		mcp.WithArray("selected", mcp.Required(), mcp.WithStringItems(),
			mcp.Description("Catalog ids that should be present")),
	), s.applyCatalog)

	s.mcp.AddTool(mcp.NewTool("get_event_contract",
		mcp.WithDescription("Returns the event input format accepted by add_event."),
	), s.getEventContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Event Format",
			mcp.WithResourceDescription("Fields and rules for Luach events."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEventFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func selectorArg(req mcp.CallToolRequest) (agenda.Selector, error) {
	return agenda.ParseSelector(req.GetString("category", ""))
}

func (s *Server) listEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selectorArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.ListEvents(ctx, sel))
}

func (s *Server) addEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := req.RequireString("gregorian_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := models.EventInput{
		Title:         title,
		GregorianDate: date,
		HebrewDate:    req.GetString("hebrew_date", ""),
		Category:      models.Category(req.GetString("category", "")),
		EventType:     models.EventType(req.GetString("event_type", "")),
		Description:   req.GetString("description", ""),
		HasReminder:   req.GetBool("has_reminder", false),
		ReminderDays:  req.GetInt("reminder_days", 0),
	}

	ev, err := s.svc.AddEvent(auth.WithIdentity(ctx, Identity), in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ev)
}

func (s *Server) deleteEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.svc.DeleteEvent(ctx, id) {
		return mcp.NewToolResultText(fmt.Sprintf("not present: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) upcomingEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selectorArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	win := agenda.Window{
		MaxDays: req.GetInt("max_days", 0),
		Limit:   req.GetInt("limit", 0),
	}
	return jsonResult(s.svc.Upcoming(ctx, sel, win))
}

func (s *Server) monthCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year := req.GetInt("year", 0)
	month := req.GetInt("month", 0)
	if year < 1 || year > 9999 {
		return mcp.NewToolResultError("year must be between 1 and 9999"), nil
	}
	if month < 1 || month > 12 {
		return mcp.NewToolResultError("month must be between 1 and 12"), nil
	}
	sel, err := selectorArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view := s.svc.Month(ctx, year, time.Month(month), sel)
	return mcp.NewToolResultText(view.Text()), nil
}

func (s *Server) listCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, item := range s.svc.Catalog(ctx) {
		mark := " "
		if item.Selected {
			mark = "x"
		}
		fmt.Fprintf(&b, "[%s] %s: %s (%s)\n", mark, item.ID, item.Title, item.SymbolicDate)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) applyCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selected, err := req.RequireStringSlice("selected")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ApplyCatalog(auth.WithIdentity(ctx, Identity), selected)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %d, removed: %d", len(res.Added), len(res.Removed))), nil
}

func (s *Server) getEventContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EventFormatContract), nil
}

func (s *Server) readEventFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     EventFormatContract,
		},
	}, nil
}
