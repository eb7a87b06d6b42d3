/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

// Notifier is the realtime channel of a room. Broadcast reaches every
// connection in the room; Send reaches a single connection.
type Notifier interface {
	Broadcast(code string, msg any)
	Send(h Handle, msg any) error
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(string, any) {}

func (nopNotifier) Send(Handle, any) error { return ErrNotDeliverable }

// RosterMessage is broadcast whenever room membership or state changes.
type RosterMessage struct {
	Type     string   `json:"type"` // "roster"
	Code     string   `json:"code"`
	Players  []string `json:"players"`
	Owner    string   `json:"owner"`
	State    string   `json:"state"`
	Duration int      `json:"duration"`
}

// RoleMessage is sent privately to each player when a round starts, and
// again if they reconnect during the round.
type RoleMessage struct {
	Type       string `json:"type"` // "role"
	Round      int    `json:"round"`
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
	Duration   int    `json:"duration"`
	StartedAt  int64  `json:"started_at"` // unix millis
}

// RoundEndedMessage is broadcast when the owner ends a round.
type RoundEndedMessage struct {
	Type     string `json:"type"` // "round_ended"
	Round    int    `json:"round,omitempty"`
	Location string `json:"location,omitempty"`
	Spy      string `json:"spy,omitempty"`
}

func newRoleMessage(round Round, role Role) RoleMessage {
	return RoleMessage{
		Type:       "role",
		Round:      round.Number,
		Location:   role.Location,
		Occupation: role.Occupation,
		Duration:   round.Duration,
		StartedAt:  round.StartedAt.UnixMilli(),
	}
}

func newRosterMessage(r Roster) RosterMessage {
	return RosterMessage{
		Type:     "roster",
		Code:     r.Code,
		Players:  r.Players,
		Owner:    r.Owner,
		State:    r.State.String(),
		Duration: r.Duration,
	}
}
