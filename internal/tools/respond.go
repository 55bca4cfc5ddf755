package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oknedal/spond-mcp/internal/history"
	"github.com/oknedal/spond-mcp/internal/service"
)

// RespondTool handles the respond_to_event MCP tool. The response is a
// fire-and-forget write against Spond; cached event snapshots are not
// updated, so a details fetch right after may still show the old state
// until it refetches.
type RespondTool struct {
	svc *service.Service
	log *history.Store // may be nil — history is optional
}

// NewRespondTool creates a RespondTool over the given service. The
// history store may be nil, in which case responses are not logged.
func NewRespondTool(svc *service.Service, log *history.Store) *RespondTool {
	return &RespondTool{svc: svc, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *RespondTool) Definition() mcp.Tool {
	return mcp.NewTool("respond_to_event",
		mcp.WithDescription("Svar på en aktivitet — aksepter eller avslå for et familiemedlem."),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("Aktivitetens ID"),
		),
		mcp.WithString("kid_name",
			mcp.Required(),
			mcp.Description("Barnets navn"),
		),
		mcp.WithBoolean("accept",
			mcp.Required(),
			mcp.Description("true = aksepter, false = avslå"),
		),
		mcp.WithString("decline_message",
			mcp.Description("Melding ved avslag (valgfritt)"),
		),
	)
}

// Handle processes the respond_to_event tool call.
func (t *RespondTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID := req.GetString("event_id", "")
	kidName := req.GetString("kid_name", "")
	accept, hasAccept := boolArg(req, "accept")
	declineMessage := req.GetString("decline_message", "")

	if eventID == "" || kidName == "" || !hasAccept {
		return mcp.NewToolResultError("event_id, kid_name og accept er påkrevd."), nil
	}

	memberID, err := t.svc.FindMemberID(ctx, kidName)
	if err != nil {
		return nil, err
	}
	if memberID == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Fant ikke %s i noen Spond-gruppe.", kidName)), nil
	}

	if err := t.svc.ChangeResponse(ctx, eventID, memberID, accept, declineMessage); err != nil {
		return nil, err
	}

	if t.log != nil {
		err := t.log.Record(ctx, history.Response{
			EventID:        eventID,
			MemberID:       memberID,
			KidName:        kidName,
			Accepted:       accept,
			DeclineMessage: declineMessage,
		})
		if err != nil {
			// The response went through; a failed audit write is only
			// worth a warning.
			slog.Warn("history record failed", "error", err)
		}
	}

	action := "akseptert"
	if !accept {
		action = "avslått"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Aktivitet %s for %s.", action, kidName)), nil
}
