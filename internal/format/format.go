// Package format renders Spond data as Norwegian display strings for
// tool responses.
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oknedal/spond-mcp/internal/spond"
)

// descriptionLimit is the cutoff for descriptions in the compact event
// summary. The full text is available via event details.
const descriptionLimit = 200

// weekdaysNO is indexed by time.Weekday (Sunday = 0).
var weekdaysNO = [7]string{"søndag", "mandag", "tirsdag", "onsdag", "torsdag", "fredag", "lørdag"}

// ParseTimestamp parses a Spond ISO-8601 timestamp. Returns the zero
// time and false for empty or malformed input.
func ParseTimestamp(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Weekday returns the Norwegian weekday name for t.
func Weekday(t time.Time) string {
	return weekdaysNO[t.Weekday()]
}

// EventSummary renders a compact multi-line summary of an event. When a
// family map (member id → kid name) is given, each family member's RSVP
// state is appended.
func EventSummary(event *spond.Event, family map[string]string) string {
	heading := event.Heading
	if heading == "" {
		heading = "Ukjent"
	}

	var lines []string

	if start, ok := ParseTimestamp(event.StartTimestamp); ok {
		timeStr := start.Format("15:04")
		if end, ok := ParseTimestamp(event.EndTimestamp); ok {
			timeStr += "-" + end.Format("15:04")
		}
		lines = append(lines, fmt.Sprintf("%s — %s %s kl. %s",
			heading, Weekday(start), start.Format("02.01"), timeStr))
	} else {
		lines = append(lines, heading)
	}

	if event.Location != nil && event.Location.Feature != "" {
		lines = append(lines, "Sted: "+event.Location.Feature)
	}

	if desc := strings.TrimSpace(event.Description); desc != "" {
		lines = append(lines, truncate(desc, descriptionLimit))
	}

	if len(family) > 0 && event.Responses != nil {
		if rsvp := familyRSVP(event.Responses, family); rsvp != "" {
			lines = append(lines, "Svar: "+rsvp)
		}
	}

	if event.Cancelled {
		lines = append(lines, "AVLYST")
	}

	return strings.Join(lines, "\n")
}

// EventDetail renders the full event view: the summary plus address,
// coordinates, untruncated description and attendance counts.
func EventDetail(event *spond.Event, family map[string]string) string {
	lines := []string{EventSummary(event, family)}

	if loc := event.Location; loc != nil {
		if loc.Address != "" {
			lines = append(lines, "Adresse: "+loc.Address)
		}
		// Only (0,0) means "no coordinates"; a single zero is a real
		// position on the equator or prime meridian.
		if loc.Latitude != 0 || loc.Longitude != 0 {
			lines = append(lines, fmt.Sprintf("Kart: %s,%s",
				strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
				strconv.FormatFloat(loc.Longitude, 'f', -1, 64)))
		}
	}

	// The summary truncates long descriptions; repeat the full text when
	// it got cut.
	if desc := strings.TrimSpace(event.Description); desc != "" && !strings.Contains(lines[0], desc) {
		lines = append(lines, "\n"+desc)
	}

	if r := event.Responses; r != nil {
		accepted := len(r.AcceptedIDs)
		declined := len(r.DeclinedIDs)
		unanswered := len(r.UnansweredIDs)
		if total := accepted + declined + unanswered; total > 0 {
			lines = append(lines, fmt.Sprintf("\nPåmelding: %d ja, %d nei, %d ikke svart (av %d)",
				accepted, declined, unanswered, total))
		}
	}

	return strings.Join(lines, "\n")
}

// GroupSummary renders a one-line group description with member count.
func GroupSummary(group *spond.Group) string {
	name := group.Name
	if name == "" {
		name = "Ukjent"
	}
	return fmt.Sprintf("%s (%d medlemmer)", name, len(group.Members))
}

// familyRSVP renders "Oliver: bekreftet, Emma: ikke svart" for the
// family members addressed by the event, sorted by name for stable
// output.
func familyRSVP(responses *spond.Responses, family map[string]string) string {
	accepted := toSet(responses.AcceptedIDs)
	declined := toSet(responses.DeclinedIDs)
	unanswered := toSet(responses.UnansweredIDs)

	type memberName struct{ id, name string }
	members := make([]memberName, 0, len(family))
	for id, name := range family {
		members = append(members, memberName{id, name})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].name != members[j].name {
			return members[i].name < members[j].name
		}
		return members[i].id < members[j].id
	})

	var parts []string
	for _, m := range members {
		switch {
		case accepted[m.id]:
			parts = append(parts, m.name+": bekreftet")
		case declined[m.id]:
			parts = append(parts, m.name+": avslått")
		case unanswered[m.id]:
			parts = append(parts, m.name+": ikke svart")
		}
	}
	return strings.Join(parts, ", ")
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
