package tools

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oknedal/spond-mcp/internal/config"
	"github.com/oknedal/spond-mcp/internal/service"
	"github.com/oknedal/spond-mcp/internal/spond"
)

// --- Fixtures (mirrors a two-kid family across three groups) ---

var testGroups = []spond.Group{
	{
		ID:   "GROUP_FJORDVIK",
		Name: "Fjordvik FK G2013",
		Members: []spond.Member{
			{ID: "MEMBER_OLIVER", FirstName: "Oliver", LastName: "Nordmann", Roles: []string{"member"}},
			{ID: "MEMBER_PARENT", FirstName: "Ola", LastName: "Nordmann", Roles: []string{"admin"}},
			{ID: "MEMBER_COACH", FirstName: "Trener", LastName: "Hansen", Roles: []string{"admin"}},
		},
	},
	{
		ID:   "GROUP_SOLVIK",
		Name: "Solvik IL 2017",
		Members: []spond.Member{
			{ID: "MEMBER_EMMA", FirstName: "Emma", LastName: "Nordmann", Roles: []string{"member"}},
		},
	},
	{
		ID:   "GROUP_NORDVIK",
		Name: "Nordvik skole kull 2014",
		Members: []spond.Member{
			{ID: "MEMBER_OLIVER", FirstName: "Oliver", LastName: "Nordmann", Roles: []string{"member"}},
		},
	},
}

var fjordvikEvents = []spond.Event{
	{
		ID:             "EVT_TRENING_1",
		Heading:        "Trening",
		StartTimestamp: "2026-02-23T17:00:00.000+00:00",
		EndTimestamp:   "2026-02-23T18:30:00.000+00:00",
		Description:    "Vanlig trening, ta med drikke",
		Location:       &spond.Location{Feature: "Fjordvik kunstgress"},
		Responses: &spond.Responses{
			AcceptedIDs:   []string{"MEMBER_OLIVER"},
			UnansweredIDs: []string{"MEMBER_COACH"},
		},
	},
	{
		ID:             "EVT_KAMP_1",
		Heading:        "Seriekamp vs Havnes",
		StartTimestamp: "2026-02-25T18:00:00.000+00:00",
		EndTimestamp:   "2026-02-25T19:30:00.000+00:00",
		Description:    "Oppmøte 17:30. Husk drakt og leggskinn.",
		Location: &spond.Location{
			Feature:   "Havnes Arena",
			Address:   "Sjøgata 5, 0002 Havnes",
			Latitude:  59.8765,
			Longitude: 10.8123,
		},
		Responses: &spond.Responses{
			UnansweredIDs: []string{"MEMBER_OLIVER"},
		},
	},
}

var solvikEvents = []spond.Event{
	{
		ID:             "EVT_FOTBALL_1",
		Heading:        "Trening",
		StartTimestamp: "2026-02-24T16:30:00.000+00:00",
		EndTimestamp:   "2026-02-24T17:30:00.000+00:00",
		Location:       &spond.Location{Feature: "Nordvik minibane"},
		Responses: &spond.Responses{
			AcceptedIDs: []string{"MEMBER_EMMA"},
		},
	},
}

var testKids = []config.Kid{
	{Name: "Oliver", Groups: []string{"Fjordvik FK G2013", "Nordvik skole kull 2014"}},
	{Name: "Emma", Groups: []string{"Solvik IL 2017"}},
}

type fakeClient struct {
	changeCalls int
	lastChange  spond.ChangeResponseBody
}

func (f *fakeClient) Groups(context.Context) ([]spond.Group, error) {
	return testGroups, nil
}

func (f *fakeClient) Events(_ context.Context, _, _ time.Time, groupID string) ([]spond.Event, error) {
	switch groupID {
	case "GROUP_FJORDVIK":
		return fjordvikEvents, nil
	case "GROUP_SOLVIK":
		return solvikEvents, nil
	case "GROUP_NORDVIK":
		return nil, nil
	default:
		return append(append([]spond.Event{}, fjordvikEvents...), solvikEvents...), nil
	}
}

func (f *fakeClient) Event(_ context.Context, eventID string) (*spond.Event, error) {
	e := fjordvikEvents[1]
	e.ID = eventID
	return &e, nil
}

func (f *fakeClient) ChangeResponse(_ context.Context, _, _ string, body spond.ChangeResponseBody) error {
	f.changeCalls++
	f.lastChange = body
	return nil
}

func (f *fakeClient) Close() error { return nil }

func newTestService() *service.Service {
	return service.New(&fakeClient{}, testKids)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- list_groups ---

func TestListGroups(t *testing.T) {
	tool := NewListGroupsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := getResultText(result)
	assert.Contains(t, text, "Spond-grupper (3 stk):")
	assert.Contains(t, text, "Fjordvik FK G2013 (3 medlemmer)")
	assert.Contains(t, text, "Solvik IL 2017 (1 medlemmer)")
	assert.Contains(t, text, "Nordvik skole kull 2014 (1 medlemmer)")
}

// --- list_upcoming_events ---

func TestListEvents_All(t *testing.T) {
	tool := NewListEventsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"days": float64(7)}))
	require.NoError(t, err)

	text := getResultText(result)
	assert.Contains(t, text, "Aktiviteter neste 7 dager (3 stk):")
	assert.Contains(t, text, "Trening")
	assert.Contains(t, text, "Seriekamp")
}

func TestListEvents_DefaultDays(t *testing.T) {
	tool := NewListEventsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "7 dager")
}

func TestListEvents_FilterByKid(t *testing.T) {
	tool := NewListEventsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"kid_name": "Oliver"}))
	require.NoError(t, err)

	text := getResultText(result)
	assert.Contains(t, text, "for Oliver")
	assert.Contains(t, text, "Seriekamp")
	assert.NotContains(t, text, "Nordvik minibane")
}

func TestListEvents_FilterByGroup(t *testing.T) {
	tool := NewListEventsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"group_name": "Solvik"}))
	require.NoError(t, err)

	text := getResultText(result)
	assert.Contains(t, text, "i Solvik")
	assert.Contains(t, text, "Nordvik minibane")
	assert.NotContains(t, text, "Seriekamp")
}

func TestListEvents_UnknownKid(t *testing.T) {
	tool := NewListEventsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"kid_name": "Ukjent"}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Ukjent barn: Ukjent")
}

func TestListEvents_UnknownGroup(t *testing.T) {
	tool := NewListEventsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"group_name": "Nonexistent"}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Fant ingen gruppe som matcher 'Nonexistent'")
}

func TestListEvents_IncludesFamilyRSVP(t *testing.T) {
	tool := NewListEventsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"days": float64(7)}))
	require.NoError(t, err)

	text := getResultText(result)
	assert.Contains(t, text, "Oliver: bekreftet")
	assert.Contains(t, text, "Oliver: ikke svart")
}

func TestListEvents_ConcurrentCalls(t *testing.T) {
	tool := NewListEventsTool(newTestService())
	ctx := context.Background()

	// Warm the cache, then hit the same key from several goroutines.
	// Each handler sorts its own slice; run under -race.
	_, err := tool.Handle(ctx, callRequest(map[string]any{"days": float64(7)}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := tool.Handle(ctx, callRequest(map[string]any{"days": float64(7)}))
			assert.NoError(t, err)
			assert.Contains(t, getResultText(result), "(3 stk):")
		}()
	}
	wg.Wait()
}

// --- get_event_details ---

func TestEventDetails(t *testing.T) {
	tool := NewEventDetailsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"event_id": "EVT_KAMP_1"}))
	require.NoError(t, err)

	text := getResultText(result)
	assert.Contains(t, text, "Seriekamp")
	assert.Contains(t, text, "Sjøgata 5")
	assert.Contains(t, text, "59.8765")
	assert.Contains(t, text, "Påmelding:")
}

func TestEventDetails_MissingEventID(t *testing.T) {
	tool := NewEventDetailsTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, getResultText(result), "event_id er påkrevd")
}

// --- get_attendance ---

func TestAttendance_ShowsUnanswered(t *testing.T) {
	tool := NewAttendanceTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"kid_name": "Oliver"}))
	require.NoError(t, err)

	text := getResultText(result)
	assert.Contains(t, text, "Seriekamp")
	assert.Contains(t, text, "mangler svar fra Oliver")
	assert.Contains(t, text, "EVT_KAMP_1")
}

func TestAttendance_AllAnswered(t *testing.T) {
	tool := NewAttendanceTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"kid_name": "Emma"}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "besvart")
}

func TestAttendance_UnknownKid(t *testing.T) {
	tool := NewAttendanceTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"kid_name": "Ukjent"}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Ukjent barn")
}

func TestAttendance_NoFamilyConfigured(t *testing.T) {
	svc := service.New(&fakeClient{}, nil)
	tool := NewAttendanceTool(svc)

	result, err := tool.Handle(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Ingen familiemedlemmer funnet")
}

// --- respond_to_event ---

func TestRespond_Accept(t *testing.T) {
	client := &fakeClient{}
	svc := service.New(client, testKids)
	tool := NewRespondTool(svc, nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"event_id": "EVT_KAMP_1",
		"kid_name": "Oliver",
		"accept":   true,
	}))
	require.NoError(t, err)

	assert.Contains(t, getResultText(result), "Aktivitet akseptert for Oliver.")
	require.Equal(t, 1, client.changeCalls)
	assert.Equal(t, spond.ChangeResponseBody{Accepted: "true"}, client.lastChange)
}

func TestRespond_DeclineWithMessage(t *testing.T) {
	client := &fakeClient{}
	svc := service.New(client, testKids)
	tool := NewRespondTool(svc, nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"event_id":        "EVT_KAMP_1",
		"kid_name":        "Oliver",
		"accept":          false,
		"decline_message": "Syk",
	}))
	require.NoError(t, err)

	assert.Contains(t, getResultText(result), "avslått")
	assert.Equal(t, spond.ChangeResponseBody{Accepted: "false", DeclineMessage: "Syk"}, client.lastChange)
}

func TestRespond_UnknownKid(t *testing.T) {
	tool := NewRespondTool(newTestService(), nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"event_id": "EVT_KAMP_1",
		"kid_name": "Ukjent",
		"accept":   true,
	}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Fant ikke Ukjent")
}

func TestRespond_MissingParams(t *testing.T) {
	tool := NewRespondTool(newTestService(), nil)

	result, err := tool.Handle(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, getResultText(result), "påkrevd")
}

func TestRespond_MissingAcceptOnly(t *testing.T) {
	client := &fakeClient{}
	tool := NewRespondTool(service.New(client, testKids), nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"event_id": "EVT_KAMP_1",
		"kid_name": "Oliver",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Zero(t, client.changeCalls)
}

// --- search_events ---

func TestSearch_ByHeading(t *testing.T) {
	tool := NewSearchTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"query": "kamp"}))
	require.NoError(t, err)

	text := getResultText(result)
	assert.Contains(t, text, "Seriekamp")
	assert.Contains(t, text, "1 treff")
}

func TestSearch_ByDescription(t *testing.T) {
	tool := NewSearchTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"query": "drikke"}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Trening")
}

func TestSearch_CaseInsensitive(t *testing.T) {
	tool := NewSearchTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"query": "KAMP"}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Seriekamp")
}

func TestSearch_NoResults(t *testing.T) {
	tool := NewSearchTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"query": "dugnad"}))
	require.NoError(t, err)
	assert.Contains(t, getResultText(result), "Ingen aktiviteter matcher 'dugnad'")
}

func TestSearch_MissingQuery(t *testing.T) {
	tool := NewSearchTool(newTestService())

	result, err := tool.Handle(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, getResultText(result), "query er påkrevd")
}

// --- Definitions ---

func TestDefinitions(t *testing.T) {
	svc := newTestService()
	defs := []mcp.Tool{
		NewListGroupsTool(svc).Definition(),
		NewListEventsTool(svc).Definition(),
		NewEventDetailsTool(svc).Definition(),
		NewAttendanceTool(svc).Definition(),
		NewRespondTool(svc, nil).Definition(),
		NewSearchTool(svc).Definition(),
	}

	names := make(map[string]bool, len(defs))
	for _, def := range defs {
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Description)
		names[def.Name] = true
	}

	expected := []string{
		"list_groups", "list_upcoming_events", "get_event_details",
		"get_attendance", "respond_to_event", "search_events",
	}
	require.Len(t, names, len(expected))
	for _, name := range expected {
		assert.True(t, names[name], "missing tool %s", name)
	}
}

func TestDefinitions_RequiredParams(t *testing.T) {
	svc := newTestService()

	details := NewEventDetailsTool(svc).Definition()
	assert.Contains(t, details.InputSchema.Required, "event_id")

	respond := NewRespondTool(svc, nil).Definition()
	assert.Contains(t, respond.InputSchema.Required, "event_id")
	assert.Contains(t, respond.InputSchema.Required, "kid_name")
	assert.Contains(t, respond.InputSchema.Required, "accept")

	search := NewSearchTool(svc).Definition()
	assert.Contains(t, search.InputSchema.Required, "query")
}
