package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oknedal/spond-mcp/internal/format"
	"github.com/oknedal/spond-mcp/internal/service"
	"github.com/oknedal/spond-mcp/internal/spond"
)

// ListEventsTool handles the list_upcoming_events MCP tool.
type ListEventsTool struct {
	svc *service.Service
}

// NewListEventsTool creates a ListEventsTool over the given service.
func NewListEventsTool(svc *service.Service) *ListEventsTool {
	return &ListEventsTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ListEventsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_upcoming_events",
		mcp.WithDescription(
			"Hent kommende aktiviteter fra Spond. "+
				"Kan filtreres på barn eller gruppe. Standard: 7 dager frem.",
		),
		mcp.WithNumber("days",
			mcp.Description("Antall dager fremover (standard: 7)"),
		),
		mcp.WithString("group_name",
			mcp.Description("Filtrér på gruppenavn (delvis treff, f.eks. 'Fjordvik')"),
		),
		mcp.WithString("kid_name",
			mcp.Description("Filtrér på barnets navn (viser kun aktiviteter i barnets grupper)"),
		),
	)
}

// Handle processes the list_upcoming_events tool call.
func (t *ListEventsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := int(req.GetFloat("days", 7))
	groupName := req.GetString("group_name", "")
	kidName := req.GetString("kid_name", "")

	var events []spond.Event

	switch {
	case kidName != "":
		kidGroups := t.svc.KidGroupNames(kidName)
		if kidGroups == nil {
			return mcp.NewToolResultText("Ukjent barn: " + kidName), nil
		}
		var err error
		events, err = t.svc.EventsForGroups(ctx, kidGroups, days)
		if err != nil {
			return nil, err
		}
	case groupName != "":
		groups, err := t.svc.Groups(ctx)
		if err != nil {
			return nil, err
		}
		groupID := service.FindGroupID(groupName, groups)
		if groupID == "" {
			return mcp.NewToolResultText(fmt.Sprintf("Fant ingen gruppe som matcher '%s'", groupName)), nil
		}
		events, err = t.svc.Events(ctx, days, groupID)
		if err != nil {
			return nil, err
		}
	default:
		var err error
		events, err = t.svc.Events(ctx, days, "")
		if err != nil {
			return nil, err
		}
	}

	if len(events) == 0 {
		scope := ""
		if kidName != "" {
			scope = " for " + kidName
		} else if groupName != "" {
			scope = " i " + groupName
		}
		return mcp.NewToolResultText(fmt.Sprintf("Ingen aktiviteter de neste %d dagene%s.", days, scope)), nil
	}

	family, err := t.svc.ResolveFamilyMembers(ctx)
	if err != nil {
		return nil, err
	}

	sortByStart(events)

	header := fmt.Sprintf("Aktiviteter neste %d dager", days)
	if kidName != "" {
		header += " for " + kidName
	} else if groupName != "" {
		header += " i " + groupName
	}
	header += fmt.Sprintf(" (%d stk):", len(events))

	var b strings.Builder
	b.WriteString(header)
	for i := range events {
		b.WriteString("\n\n" + format.EventSummary(&events[i], family))
	}
	return mcp.NewToolResultText(b.String()), nil
}
