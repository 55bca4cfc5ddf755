// Package tools implements the MCP tool handlers exposed by the server.
//
// Each tool is a struct that receives the service facade via its
// constructor and returns a handler compatible with mcp-go's
// CallToolRequest signature. One file per tool. Handlers speak Norwegian
// to the user; "not found" outcomes are normal text results, and only
// Spond API failures become tool errors.
package tools

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oknedal/spond-mcp/internal/spond"
)

// boolArg reads a boolean argument, reporting whether it was present at
// all. Required booleans can't use a default — "absent" and "false" must
// stay distinguishable.
func boolArg(req mcp.CallToolRequest, key string) (bool, bool) {
	v, ok := req.GetArguments()[key].(bool)
	return v, ok
}

// sortByStart orders events chronologically in place. Timestamps are
// fixed-width zone-normalized strings, so string order is time order.
func sortByStart(events []spond.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTimestamp < events[j].StartTimestamp
	})
}
