package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oknedal/spond-mcp/internal/format"
	"github.com/oknedal/spond-mcp/internal/service"
	"github.com/oknedal/spond-mcp/internal/spond"
)

// AttendanceTool handles the get_attendance MCP tool. It surfaces
// upcoming events where family members still haven't answered.
type AttendanceTool struct {
	svc *service.Service
}

// NewAttendanceTool creates an AttendanceTool over the given service.
func NewAttendanceTool(svc *service.Service) *AttendanceTool {
	return &AttendanceTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *AttendanceTool) Definition() mcp.Tool {
	return mcp.NewTool("get_attendance",
		mcp.WithDescription(
			"Vis påmeldingsstatus for kommende aktiviteter. "+
				"Viser hvilke aktiviteter som mangler svar.",
		),
		mcp.WithString("kid_name",
			mcp.Description("Barnets navn (valgfritt — viser alle hvis ikke satt)"),
		),
		mcp.WithNumber("days",
			mcp.Description("Antall dager fremover (standard: 14)"),
		),
	)
}

// Handle processes the get_attendance tool call.
func (t *AttendanceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kidName := req.GetString("kid_name", "")
	days := int(req.GetFloat("days", 14))

	var events []spond.Event
	if kidName != "" {
		kidGroups := t.svc.KidGroupNames(kidName)
		if kidGroups == nil {
			return mcp.NewToolResultText("Ukjent barn: " + kidName), nil
		}
		var err error
		events, err = t.svc.EventsForGroups(ctx, kidGroups, days)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		events, err = t.svc.Events(ctx, days, "")
		if err != nil {
			return nil, err
		}
	}

	if len(events) == 0 {
		return mcp.NewToolResultText("Ingen kommende aktiviteter."), nil
	}

	family, err := t.svc.ResolveFamilyMembers(ctx)
	if err != nil {
		return nil, err
	}
	if len(family) == 0 {
		return mcp.NewToolResultText("Ingen familiemedlemmer funnet i Spond-grupper."), nil
	}

	// Family members in stable name order for the "mangler svar fra" list.
	type memberName struct{ id, name string }
	members := make([]memberName, 0, len(family))
	for id, name := range family {
		members = append(members, memberName{id, name})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].name < members[j].name })

	sortByStart(events)

	var unansweredLines []string
	for i := range events {
		event := &events[i]
		if event.Responses == nil {
			continue
		}
		unanswered := make(map[string]bool, len(event.Responses.UnansweredIDs))
		for _, id := range event.Responses.UnansweredIDs {
			unanswered[id] = true
		}

		var missing []string
		for _, m := range members {
			if kidName != "" && !strings.EqualFold(m.name, kidName) {
				continue
			}
			if unanswered[m.id] {
				missing = append(missing, m.name)
			}
		}
		if len(missing) == 0 {
			continue
		}

		heading := event.Heading
		if heading == "" {
			heading = "Ukjent"
		}
		dateStr := ""
		if start, ok := format.ParseTimestamp(event.StartTimestamp); ok {
			dateStr = fmt.Sprintf(" — %s %s", format.Weekday(start), start.Format("02.01"))
		}
		unansweredLines = append(unansweredLines, fmt.Sprintf(
			"%s%s: mangler svar fra %s (id: %s)",
			heading, dateStr, strings.Join(missing, ", "), event.ID,
		))
	}

	if len(unansweredLines) == 0 {
		scope := ""
		if kidName != "" {
			scope = " for " + kidName
		}
		return mcp.NewToolResultText(fmt.Sprintf("Alle aktiviteter%s er besvart de neste %d dagene.", scope, days)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ubesvarte aktiviteter (%d stk):", len(unansweredLines))
	for _, line := range unansweredLines {
		b.WriteString("\n  " + line)
	}
	return mcp.NewToolResultText(b.String()), nil
}
