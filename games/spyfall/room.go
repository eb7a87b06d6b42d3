/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultRoundDuration is the round length, in seconds, a room starts
	// with and returns to after every round.
	DefaultRoundDuration = 480

	SpyLocation   = "Unknown"
	SpyOccupation = "Spy"
)

// State is the round state of a room.
type State int

const (
	Lobby State = iota
	InRound
)

func (s State) String() string {
	switch s {
	case InRound:
		return "in_round"
	default:
		return "lobby"
	}
}

// Role is the private payload a player receives when a round starts.
type Role struct {
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
}

func (r Role) IsSpy() bool {
	return r.Occupation == SpyOccupation && r.Location == SpyLocation
}

// Assignment binds one player to the role they were dealt.
type Assignment struct {
	PlayerID string
	Name     string
	Handle   Handle
	Role     Role
}

// Round is the outcome of a single call to Room.Start.
type Round struct {
	Number      int
	Location    string
	SpyID       string
	SpyName     string
	Duration    int
	StartedAt   time.Time
	Assignments []Assignment // room order
}

// ByHandle keys the round's roles by connection handle. Players sharing a
// handle (including players without one) collapse into a single entry, the
// later player in room order winning.
func (r Round) ByHandle() map[Handle]Role {
	out := make(map[Handle]Role, len(r.Assignments))
	for _, a := range r.Assignments {
		out[a.Handle] = a.Role
	}
	return out
}

// RoleFor returns the role dealt to the player with the given ID.
func (r Round) RoleFor(playerID string) (Role, bool) {
	for _, a := range r.Assignments {
		if a.PlayerID == playerID {
			return a.Role, true
		}
	}
	return Role{}, false
}

// Room is one game session. All fields are guarded by mu; rooms never lock
// each other.
type Room struct {
	mu sync.Mutex

	// deal serialises dealing a round with delivering its roles, so the
	// last role a connection receives always belongs to the current round.
	// It is taken before mu, never while holding it.
	deal sync.Mutex

	code    string
	catalog *Catalog
	rng     *rand.Rand
	now     func() time.Time

	players         []*Player
	defaultDuration int
	roundDuration   int
	played          map[string]struct{}

	state  State
	round  *Round
	rounds int

	createdAt  time.Time
	lastActive time.Time
}

type RoomOption func(*Room)

// WithRand sets the random source used to pick locations, spies and
// occupations.
func WithRand(rng *rand.Rand) RoomOption {
	return func(r *Room) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RoomOption {
	return func(r *Room) {
		if now != nil {
			r.now = now
		}
	}
}

// WithDefaultDuration changes the duration the room resets to after a round.
func WithDefaultDuration(seconds int) RoomOption {
	return func(r *Room) {
		if seconds > 0 {
			r.defaultDuration = seconds
		}
	}
}

// NewRoom creates an empty room in the lobby state.
func NewRoom(code string, catalog *Catalog, opts ...RoomOption) *Room {
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	r := &Room{
		code:            code,
		catalog:         catalog,
		rng:             rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:             time.Now,
		defaultDuration: DefaultRoundDuration,
		played:          make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.roundDuration = r.defaultDuration
	r.createdAt = r.now()
	r.lastActive = r.createdAt

	return r
}

func (r *Room) Code() string {
	return r.code
}

// AddPlayer appends p unless its name is blank or a player with the same
// name, ignoring case, is already present. Joining is permitted in any state.
func (r *Room) AddPlayer(p *Player) bool {
	if p == nil || strings.TrimSpace(p.name) == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.players {
		if strings.EqualFold(existing.name, p.name) {
			return false
		}
	}

	r.players = append(r.players, p)
	r.lastActive = r.now()

	return true
}

// FindPlayer looks a player up by exact, case-sensitive name.
func (r *Room) FindPlayer(name string) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.findLocked(name); p != nil {
		return *p, true
	}
	return Player{}, false
}

func (r *Room) findLocked(name string) *Player {
	for _, p := range r.players {
		if p.name == name {
			return p
		}
	}
	return nil
}

// RemovePlayer drops the named player. The owner is never removed.
func (r *Room) RemovePlayer(name string) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.players {
		if p.name != name {
			continue
		}
		if p.isOwner {
			return Player{}, ErrOwnerCannotLeave
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		r.lastActive = r.now()
		return *p, nil
	}

	return Player{}, ErrPlayerNotFound
}

// Attach sets the connection handle of the named player. Re-attaching
// replaces the previous handle.
func (r *Room) Attach(name string, h Handle) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findLocked(name)
	if p == nil {
		return Player{}, ErrPlayerNotFound
	}

	p.Attach(h)
	r.lastActive = r.now()

	return *p, nil
}

// Detach clears h from whichever player currently holds it.
func (r *Room) Detach(h Handle) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.detach(h) {
			return *p, true
		}
	}
	return Player{}, false
}

// Players returns a snapshot of the players in join order.
func (r *Room) Players() []Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	return out
}

// PlayerNames returns display names in join order.
func (r *Room) PlayerNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.namesLocked()
}

func (r *Room) namesLocked() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.name)
	}
	return names
}

// Roster returns a consistent snapshot of the room's public state.
func (r *Room) Roster() Roster {
	r.mu.Lock()
	defer r.mu.Unlock()

	roster := Roster{
		Code:     r.code,
		Players:  r.namesLocked(),
		State:    r.state,
		Duration: r.roundDuration,
	}
	for _, p := range r.players {
		if p.isOwner {
			roster.Owner = p.name
			break
		}
	}
	return roster
}

// Owner returns the player who created the room.
func (r *Room) Owner() (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.isOwner {
			return *p, true
		}
	}
	return Player{}, false
}

// SetRoundDuration changes the duration of the next round. Authorisation is
// the caller's job.
func (r *Room) SetRoundDuration(seconds int) {
	r.mu.Lock()
	r.roundDuration = seconds
	r.lastActive = r.now()
	r.mu.Unlock()
}

func (r *Room) RoundDuration() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roundDuration
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// CurrentRound returns the most recently started round, if any. After End
// it still reports that round so the result can be revealed.
func (r *Room) CurrentRound() (Round, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.round == nil {
		return Round{}, false
	}
	return *r.round, true
}

// AvailableLocations lists catalog locations not yet played, in catalog order.
func (r *Room) AvailableLocations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.availableLocked()
}

func (r *Room) availableLocked() []string {
	all := r.catalog.Locations()
	out := make([]string, 0, len(all))
	for _, name := range all {
		if _, used := r.played[name]; !used {
			out = append(out, name)
		}
	}
	return out
}

// PlayedLocations lists the locations used since the last reset, in catalog order.
func (r *Room) PlayedLocations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.played))
	for _, name := range r.catalog.Locations() {
		if _, used := r.played[name]; used {
			out = append(out, name)
		}
	}
	return out
}

// Start deals a new round: it picks an unplayed location and a spy, then
// hands every other player an occupation from that location. Once every
// location has been played the history is cleared.
func (r *Room) Start() (Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) == 0 {
		return Round{}, ErrNoPlayers
	}

	available := r.availableLocked()
	if len(available) == 0 {
		clear(r.played)
		available = r.catalog.Locations()
	}

	location := available[r.rng.IntN(len(available))]

	occupations, err := r.catalog.Occupations(location)
	if err != nil {
		return Round{}, err
	}

	r.played[location] = struct{}{}

	spy := r.rng.IntN(len(r.players))

	r.rng.Shuffle(len(occupations), func(i, j int) {
		occupations[i], occupations[j] = occupations[j], occupations[i]
	})

	r.rounds++
	round := Round{
		Number:      r.rounds,
		Location:    location,
		Duration:    r.roundDuration,
		StartedAt:   r.now(),
		Assignments: make([]Assignment, 0, len(r.players)),
	}

	next := 0
	for i, p := range r.players {
		a := Assignment{
			PlayerID: p.id,
			Name:     p.name,
			Handle:   p.handle,
		}

		if i == spy {
			a.Role = Role{Location: SpyLocation, Occupation: SpyOccupation}
			round.SpyID = p.id
			round.SpyName = p.name
		} else {
			a.Role = Role{Location: location, Occupation: occupations[next%len(occupations)]}
			next++
		}

		round.Assignments = append(round.Assignments, a)
	}

	r.round = &round
	r.state = InRound
	r.lastActive = round.StartedAt

	return round, nil
}

// End returns the room to the lobby and restores the default duration.
// Played locations are kept. The returned round is the one that just
// finished, if any.
func (r *Room) End() (Round, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roundDuration = r.defaultDuration
	r.state = Lobby
	r.lastActive = r.now()

	if r.round == nil {
		return Round{}, false
	}
	return *r.round, true
}

// LastActive reports when the room was last touched.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}
