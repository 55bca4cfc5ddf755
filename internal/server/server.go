// Package server wires the Spond client, service layer, history store
// and MCP tools into a server instance.
//
// This is the composition root: it creates the concrete implementations
// and injects them into the tools. No business logic lives here — only
// wiring.
package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/oknedal/spond-mcp/internal/config"
	"github.com/oknedal/spond-mcp/internal/history"
	"github.com/oknedal/spond-mcp/internal/service"
	"github.com/oknedal/spond-mcp/internal/spond"
	"github.com/oknedal/spond-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all six tools registered.
//
// The returned cleanup function closes the Spond session and the
// history database and must be called on shutdown (typically via
// defer). It is always non-nil and safe to call even when history
// failed to initialize.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	client := spond.NewClient(cfg.Username, cfg.Password)
	svc := service.New(client, cfg.Kids)

	s := server.NewMCPServer(
		"spond",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// History is an optional subsystem: if the database can't be opened
	// the respond tool still works, it just doesn't keep an audit trail.
	hist, err := history.New(history.DefaultConfig())
	if err != nil {
		slog.Warn("history disabled", "error", err)
		hist = nil
	}

	listGroups := tools.NewListGroupsTool(svc)
	s.AddTool(listGroups.Definition(), listGroups.Handle)

	listEvents := tools.NewListEventsTool(svc)
	s.AddTool(listEvents.Definition(), listEvents.Handle)

	eventDetails := tools.NewEventDetailsTool(svc)
	s.AddTool(eventDetails.Definition(), eventDetails.Handle)

	attendance := tools.NewAttendanceTool(svc)
	s.AddTool(attendance.Definition(), attendance.Handle)

	respond := tools.NewRespondTool(svc, hist)
	s.AddTool(respond.Definition(), respond.Handle)

	search := tools.NewSearchTool(svc)
	s.AddTool(search.Definition(), search.Handle)

	cleanup := func() {
		if err := svc.Close(); err != nil {
			slog.Warn("service close", "error", err)
		}
		if hist != nil {
			if err := hist.Close(); err != nil {
				slog.Warn("history close", "error", err)
			}
		}
	}

	return s, cleanup, nil
}

// serverInstructions tells the AI how to use the Spond tools together.
func serverInstructions() string {
	return `You have access to the family's Spond account (Scandinavian sports/activity platform).

Tools:
- list_groups: all groups the family belongs to
- list_upcoming_events: upcoming activities, filterable by kid_name or group_name
- get_event_details: full details for one event (use the id from list_upcoming_events)
- get_attendance: which upcoming events still lack an answer
- respond_to_event: accept or decline an event for a kid
- search_events: free-text search in upcoming events

Answer in the user's language. Event data is Norwegian. Before responding to an
event on someone's behalf, confirm the event id via get_event_details unless the
user already named a specific event from a previous listing.`
}
