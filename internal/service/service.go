// Package service is the caching and entity-resolution layer between
// the MCP tools and the Spond API.
//
// It memoizes upstream results with per-resource TTLs, resolves opaque
// member ids to configured kid names by fuzzy-matching group names, and
// aggregates events across the several groups one kid can belong to.
// There is deliberately no request coalescing: two concurrent misses for
// the same key both hit the API and the last write wins. Call volume is
// low enough that a duplicate fetch is cheaper than single-flight
// machinery.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oknedal/spond-mcp/internal/config"
	"github.com/oknedal/spond-mcp/internal/spond"
)

// TTLs per resource class. Groups move slowly; events carry RSVP state
// that parents act on, so they go stale fast.
const (
	groupsTTL = time.Hour
	eventsTTL = 5 * time.Minute
)

// Client is the subset of the Spond API the service depends on.
// *spond.Client satisfies it; tests substitute a fake.
type Client interface {
	Groups(ctx context.Context) ([]spond.Group, error)
	Events(ctx context.Context, minStart, maxEnd time.Time, groupID string) ([]spond.Event, error)
	Event(ctx context.Context, eventID string) (*spond.Event, error)
	ChangeResponse(ctx context.Context, eventID, memberID string, body spond.ChangeResponseBody) error
	Close() error
}

// Service wraps the Spond client with TTL caching and family member
// resolution. One instance is shared by all tool handlers; its derived
// maps are instance state, never globals, so servers in tests don't
// interfere.
type Service struct {
	client Client
	kids   []config.Kid
	cache  *ttlCache

	mu         sync.Mutex
	family     map[string]string // member id → kid name; nil until built
	groupNames map[string]string // group id → display name; nil until built
}

// New creates a Service over the given client and kid configuration.
func New(client Client, kids []config.Kid) *Service {
	return &Service{
		client: client,
		kids:   kids,
		cache:  newTTLCache(),
	}
}

// Groups returns all groups for the account, cached for an hour.
func (s *Service) Groups(ctx context.Context) ([]spond.Group, error) {
	if cached, ok := s.cache.Get("groups", groupsTTL); ok {
		return cached.([]spond.Group), nil
	}
	groups, err := s.client.Groups(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set("groups", groups)
	return groups, nil
}

// GroupMap returns the group id → display name index, building it from
// the group list on first use. Cleared only by ClearCache.
func (s *Service) GroupMap(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	if s.groupNames != nil {
		m := s.groupNames
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}

	m := make(map[string]string, len(groups))
	for _, g := range groups {
		m[g.ID] = g.Name
	}

	s.mu.Lock()
	s.groupNames = m
	s.mu.Unlock()
	return m, nil
}

// ResolveFamilyMembers maps Spond member ids to configured kid names.
//
// For every kid, every group whose name fuzzy-matches the kid's
// configured group names is scanned for a member whose first name equals
// the kid's name (case-insensitive); the first hit per group wins. A
// member with a matching first name in an unrelated group is never
// included — that guards against coaches and parents who happen to share
// a kid's name. The result is built once and kept until ClearCache; a
// failed build stores nothing.
func (s *Service) ResolveFamilyMembers(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	if s.family != nil {
		m := s.family
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}

	family := make(map[string]string)
	for _, kid := range s.kids {
		for _, group := range groups {
			if !FuzzyMatchGroup(group.Name, kid.Groups) {
				continue
			}
			for _, member := range group.Members {
				if strings.EqualFold(member.FirstName, kid.Name) {
					family[member.ID] = kid.Name
					break
				}
			}
		}
	}

	s.mu.Lock()
	s.family = family
	s.mu.Unlock()
	return family, nil
}

// FindMemberID looks up a kid's Spond member id by name,
// case-insensitively, resolving the family map first if needed. Returns
// "" when the name is unknown. If the same name maps from several member
// ids the first one encountered wins.
func (s *Service) FindMemberID(ctx context.Context, kidName string) (string, error) {
	family, err := s.ResolveFamilyMembers(ctx)
	if err != nil {
		return "", err
	}
	for memberID, name := range family {
		if strings.EqualFold(name, kidName) {
			return memberID, nil
		}
	}
	return "", nil
}

// KidGroupNames returns the configured group names for a kid, or nil
// when the kid is not configured. Pure config lookup, no remote calls.
func (s *Service) KidGroupNames(kidName string) []string {
	for _, kid := range s.kids {
		if strings.EqualFold(kid.Name, kidName) {
			return kid.Groups
		}
	}
	return nil
}

// Events returns events starting within the next `days` days, optionally
// filtered to one group. Cached for five minutes; the key carries both
// parameters so differently-scoped queries never collide.
func (s *Service) Events(ctx context.Context, days int, groupID string) ([]spond.Event, error) {
	scope := groupID
	if scope == "" {
		scope = "all"
	}
	key := fmt.Sprintf("events:%d:%s", days, scope)

	if cached, ok := s.cache.Get(key, eventsTTL); ok {
		return copyEvents(cached.([]spond.Event)), nil
	}

	now := time.Now().UTC()
	events, err := s.client.Events(ctx, now, now.AddDate(0, 0, days), groupID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, events)
	return copyEvents(events), nil
}

// copyEvents clones a cached slice. The cache entry is shared between
// requests while callers sort in place, so every caller gets its own
// backing array.
func copyEvents(events []spond.Event) []spond.Event {
	out := make([]spond.Event, len(events))
	copy(out, events)
	return out
}

// EventsForGroups aggregates events across several configured group
// names. Each name is resolved to one group id; names that resolve to
// nothing are skipped — partial coverage beats failing the whole query.
// The union is deduplicated by event id (first occurrence wins) and
// sorted by start time. Timestamps share a fixed-width zone-normalized
// format, so string ordering is chronological.
func (s *Service) EventsForGroups(ctx context.Context, groupNames []string, days int) ([]spond.Event, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}

	var all []spond.Event
	seen := make(map[string]bool)
	for _, name := range groupNames {
		gid := FindGroupID(name, groups)
		if gid == "" {
			continue
		}
		events, err := s.Events(ctx, days, gid)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			if !seen[e.ID] {
				seen[e.ID] = true
				all = append(all, e)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartTimestamp < all[j].StartTimestamp
	})
	return all, nil
}

// Event fetches one event by id, always fresh. Details are typically
// requested right before a response decision, so a stale snapshot is
// worse than the extra round trip.
func (s *Service) Event(ctx context.Context, eventID string) (*spond.Event, error) {
	return s.client.Event(ctx, eventID)
}

// ChangeResponse submits an accept/decline for a member. The decline
// message is only sent when declining. No cached event is updated —
// callers must not assume cache coherency after a response.
func (s *Service) ChangeResponse(ctx context.Context, eventID, memberID string, accept bool, declineMessage string) error {
	body := spond.ChangeResponseBody{Accepted: "true"}
	if !accept {
		body.Accepted = "false"
		body.DeclineMessage = declineMessage
	}
	return s.client.ChangeResponse(ctx, eventID, memberID, body)
}

// ClearCache drops every cache entry and both derived maps. The next
// access rebuilds them from the API.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.mu.Lock()
	s.family = nil
	s.groupNames = nil
	s.mu.Unlock()
}

// Close releases the underlying Spond session. Safe to call repeatedly.
func (s *Service) Close() error {
	return s.client.Close()
}
