package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oknedal/spond-mcp/internal/format"
	"github.com/oknedal/spond-mcp/internal/service"
)

// EventDetailsTool handles the get_event_details MCP tool.
//
// Details are always fetched fresh — they are typically requested right
// before a response decision, when a five-minute-old snapshot would be
// misleading.
type EventDetailsTool struct {
	svc *service.Service
}

// NewEventDetailsTool creates an EventDetailsTool over the given service.
func NewEventDetailsTool(svc *service.Service) *EventDetailsTool {
	return &EventDetailsTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *EventDetailsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_event_details",
		mcp.WithDescription(
			"Hent detaljer for en spesifikk aktivitet, inkludert beskrivelse, sted og påmeldingsstatus.",
		),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("Aktivitetens ID (fra list_upcoming_events)"),
		),
	)
}

// Handle processes the get_event_details tool call.
func (t *EventDetailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID := req.GetString("event_id", "")
	if eventID == "" {
		return mcp.NewToolResultError("event_id er påkrevd."), nil
	}

	event, err := t.svc.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	family, err := t.svc.ResolveFamilyMembers(ctx)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(format.EventDetail(event, family)), nil
}
