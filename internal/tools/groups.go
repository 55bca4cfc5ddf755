package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oknedal/spond-mcp/internal/format"
	"github.com/oknedal/spond-mcp/internal/service"
)

// ListGroupsTool handles the list_groups MCP tool.
type ListGroupsTool struct {
	svc *service.Service
}

// NewListGroupsTool creates a ListGroupsTool over the given service.
func NewListGroupsTool(svc *service.Service) *ListGroupsTool {
	return &ListGroupsTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ListGroupsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_groups",
		mcp.WithDescription("List alle Spond-grupper med navn og antall medlemmer."),
	)
}

// Handle processes the list_groups tool call.
func (t *ListGroupsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := t.svc.Groups(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return mcp.NewToolResultText("Ingen grupper funnet."), nil
	}

	sorted := make([]int, len(groups))
	for i := range sorted {
		sorted[i] = i
	}
	sort.Slice(sorted, func(i, j int) bool {
		return groups[sorted[i]].Name < groups[sorted[j]].Name
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Spond-grupper (%d stk):", len(groups))
	for _, i := range sorted {
		b.WriteString("\n  " + format.GroupSummary(&groups[i]))
	}
	return mcp.NewToolResultText(b.String()), nil
}
