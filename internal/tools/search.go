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

// SearchTool handles the search_events MCP tool: free-text substring
// search over heading and description of upcoming events.
type SearchTool struct {
	svc *service.Service
}

// NewSearchTool creates a SearchTool over the given service.
func NewSearchTool(svc *service.Service) *SearchTool {
	return &SearchTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_events",
		mcp.WithDescription("Søk i kommende aktiviteter etter tekst i tittel eller beskrivelse."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Søketekst (f.eks. 'cup', 'dugnad', 'kamp')"),
		),
		mcp.WithNumber("days",
			mcp.Description("Antall dager fremover å søke i (standard: 30)"),
		),
	)
}

// Handle processes the search_events tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query er påkrevd."), nil
	}
	days := int(req.GetFloat("days", 30))

	events, err := t.svc.Events(ctx, days, "")
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []spond.Event
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Heading), queryLower) ||
			strings.Contains(strings.ToLower(event.Description), queryLower) {
			matches = append(matches, event)
		}
	}

	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Ingen aktiviteter matcher '%s' de neste %d dagene.", query, days)), nil
	}

	family, err := t.svc.ResolveFamilyMembers(ctx)
	if err != nil {
		return nil, err
	}

	sortByStart(matches)

	var b strings.Builder
	fmt.Fprintf(&b, "Søkeresultat for '%s' (%d treff):", query, len(matches))
	for i := range matches {
		b.WriteString("\n\n" + format.EventSummary(&matches[i], family))
	}
	return mcp.NewToolResultText(b.String()), nil
}
