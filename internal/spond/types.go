package spond

// Group is a Spond group as returned by the API. Nested sub-groups are
// carried along but not traversed by this server.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []Member `json:"members"`
	SubGroups []Group  `json:"subGroups,omitempty"`
}

// Member is a person inside a group. The same person keeps the same
// member id across every group their account belongs to.
type Member struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// Location is an event venue.
type Location struct {
	Feature   string  `json:"feature,omitempty"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Responses groups member ids by their RSVP state for one event.
type Responses struct {
	AcceptedIDs    []string `json:"acceptedIds"`
	DeclinedIDs    []string `json:"declinedIds"`
	UnansweredIDs  []string `json:"unansweredIds"`
	WaitinglistIDs []string `json:"waitinglistIds"`
	UnconfirmedIDs []string `json:"unconfirmedIds"`
}

// Recipients identifies who an event was sent to. Only the group is
// relevant here.
type Recipients struct {
	Group *Group `json:"group,omitempty"`
}

// Event is a Spond activity. Timestamps are ISO-8601 strings with a
// fixed-width, zone-normalized format, so lexicographic ordering equals
// chronological ordering.
type Event struct {
	ID             string      `json:"id"`
	Heading        string      `json:"heading"`
	Type           string      `json:"type,omitempty"`
	StartTimestamp string      `json:"startTimestamp"`
	EndTimestamp   string      `json:"endTimestamp,omitempty"`
	Cancelled      bool        `json:"cancelled,omitempty"`
	Description    string      `json:"description,omitempty"`
	Location       *Location   `json:"location,omitempty"`
	Responses      *Responses  `json:"responses,omitempty"`
	Recipients     *Recipients `json:"recipients,omitempty"`
}

// ChangeResponseBody is the wire payload for answering an event.
// Accepted is the string "true" or "false" — the API does not take a
// boolean here.
type ChangeResponseBody struct {
	Accepted       string `json:"accepted"`
	DeclineMessage string `json:"declineMessage,omitempty"`
}
