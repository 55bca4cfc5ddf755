package service

import (
	"strings"

	"github.com/oknedal/spond-mcp/internal/spond"
)

// FuzzyMatchGroup reports whether a remote group name corresponds to any
// of the configured names. The test is bidirectional case-insensitive
// substring containment, so an abbreviated config entry like "Fjordvik"
// matches the group "Fjordvik FK G2013", and an over-specified entry
// matches a shorter remote name. An empty configured list never matches.
//
// Known limitation: there is no normalization of punctuation, diacritics
// or whitespace beyond case folding. Config entries must use the same
// spelling as Spond.
func FuzzyMatchGroup(groupName string, configured []string) bool {
	nameLower := strings.ToLower(groupName)
	for _, name := range configured {
		confLower := strings.ToLower(name)
		if strings.Contains(nameLower, confLower) || strings.Contains(confLower, nameLower) {
			return true
		}
	}
	return false
}

// FindGroupID resolves a free-text group name to a group id using the
// same bidirectional containment rule. The first match in list order
// wins; returns "" when nothing matches.
func FindGroupID(name string, groups []spond.Group) string {
	nameLower := strings.ToLower(name)
	for _, g := range groups {
		groupLower := strings.ToLower(g.Name)
		if strings.Contains(groupLower, nameLower) || strings.Contains(nameLower, groupLower) {
			return g.ID
		}
	}
	return ""
}
