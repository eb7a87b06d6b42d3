/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxNameLength = 12

	// maxCodeAttempts bounds the retries when a generated code is taken.
	maxCodeAttempts = 32
)

// Roster is the public view of a room.
type Roster struct {
	Code     string
	Players  []string
	Owner    string
	State    State
	Duration int
}

// Service implements the room operations exposed to HTTP and websocket
// clients. It is safe for concurrent use.
type Service struct {
	registry      *Registry
	catalog       *Catalog
	generate      CodeGenerator
	notifier      Notifier
	log           zerolog.Logger
	roomOpts      []RoomOption
	maxNameLength int
}

type Option func(*Service)

func WithCatalog(c *Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

func WithCodeGenerator(g CodeGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.generate = g
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithRoomOptions applies opts to every room the service creates.
func WithRoomOptions(opts ...RoomOption) Option {
	return func(s *Service) {
		s.roomOpts = append(s.roomOpts, opts...)
	}
}

func WithMaxNameLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxNameLength = n
		}
	}
}

// NewService wires a service around reg. A nil registry gets a fresh one.
func NewService(reg *Registry, opts ...Option) *Service {
	if reg == nil {
		reg = NewRegistry()
	}

	s := &Service{
		registry:      reg,
		catalog:       DefaultCatalog(),
		generate:      GenerateCode,
		notifier:      nopNotifier{},
		log:           zerolog.Nop(),
		maxNameLength: DefaultMaxNameLength,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Registry() *Registry {
	return s.registry
}

func (s *Service) cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > s.maxNameLength {
		return "", fmt.Errorf("%w: at most %d characters", ErrNameTooLong, s.maxNameLength)
	}
	return name, nil
}

// NormalizeCode trims and upper-cases a user supplied room code.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrEmptyCode
	}
	return code, nil
}

// Room looks up a room by a user supplied code.
func (s *Service) Room(code string) (*Room, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	room, ok := s.registry.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return room, nil
}

// owned resolves the room and checks that name is its owner.
func (s *Service) owned(name, code string) (*Room, Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Player{}, ErrEmptyName
	}

	room, err := s.Room(code)
	if err != nil {
		return nil, Player{}, err
	}

	p, ok := room.FindPlayer(name)
	if !ok {
		return nil, Player{}, fmt.Errorf("%w: %q in %s", ErrPlayerNotFound, name, room.Code())
	}
	if !p.IsOwner() {
		return nil, Player{}, fmt.Errorf("%w: %q in %s", ErrNotOwner, name, room.Code())
	}

	return room, p, nil
}

// CreateRoom creates a room owned by name and returns its code.
func (s *Service) CreateRoom(name string) (string, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return "", err
	}

	for range maxCodeAttempts {
		code := s.generate()

		room := NewRoom(code, s.catalog, s.roomOpts...)
		room.AddPlayer(NewOwner(name))

		if s.registry.CreateAndStore(code, room) {
			s.log.Info().Str("code", code).Str("player", name).Msg("room created")
			return code, nil
		}

		s.log.Debug().Str("code", code).Msg("room code collision, retrying")
	}

	return "", ErrCodeExhausted
}

// JoinRoom adds name to the room identified by code.
func (s *Service) JoinRoom(name, code string) (string, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return "", err
	}

	room, err := s.Room(code)
	if err != nil {
		return "", err
	}

	if !room.AddPlayer(NewPlayer(name)) {
		return "", fmt.Errorf("%w: %q in %s", ErrNameTaken, name, room.Code())
	}

	s.log.Info().Str("code", room.Code()).Str("player", name).Msg("player joined")

	s.broadcastRoster(room)

	return room.Code(), nil
}

// Attach binds a connection handle to a player and broadcasts the roster.
// A player attaching mid-round is sent their role again.
func (s *Service) Attach(name, code string, h Handle) (Roster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Roster{}, ErrEmptyName
	}

	room, err := s.Room(code)
	if err != nil {
		return Roster{}, err
	}

	p, err := room.Attach(name, h)
	if err != nil {
		return Roster{}, fmt.Errorf("%w: %q in %s", err, name, room.Code())
	}

	s.log.Info().Str("code", room.Code()).Str("player", name).Str("handle", string(h)).Msg("connection attached")

	roster := s.broadcastRoster(room)

	if roster.State == InRound {
		room.deal.Lock()
		if round, ok := room.CurrentRound(); ok {
			if role, ok := round.RoleFor(p.ID()); ok {
				s.deliver(room.Code(), p.Name(), h, newRoleMessage(round, role))
			}
		}
		room.deal.Unlock()
	}

	return roster, nil
}

// Detach forgets h. A player who has since re-attached with a newer handle
// is left alone.
func (s *Service) Detach(code string, h Handle) {
	room, err := s.Room(code)
	if err != nil {
		return
	}

	if p, ok := room.Detach(h); ok {
		s.log.Info().Str("code", room.Code()).Str("player", p.Name()).Str("handle", string(h)).Msg("connection detached")
	}
}

// StartRound deals a new round and delivers each role privately. Players
// that cannot be reached are skipped; the round still stands. Concurrent
// starts on one room are serialised, dealing and delivery included.
func (s *Service) StartRound(name, code string, duration *int) (Round, error) {
	if duration != nil && *duration < 1 {
		return Round{}, ErrInvalidDuration
	}

	room, _, err := s.owned(name, code)
	if err != nil {
		return Round{}, err
	}

	room.deal.Lock()
	defer room.deal.Unlock()

	if duration != nil {
		room.SetRoundDuration(*duration)
	}

	round, err := room.Start()
	if err != nil {
		return Round{}, err
	}

	s.log.Info().
		Str("code", room.Code()).
		Int("round", round.Number).
		Str("location", round.Location).
		Int("players", len(round.Assignments)).
		Int("duration", round.Duration).
		Msg("round started")

	for _, a := range round.Assignments {
		s.deliver(room.Code(), a.Name, a.Handle, newRoleMessage(round, a.Role))
	}

	s.broadcastRoster(room)

	return round, nil
}

// EndRound returns the room to the lobby and broadcasts the reveal.
func (s *Service) EndRound(name, code string) (Round, error) {
	room, _, err := s.owned(name, code)
	if err != nil {
		return Round{}, err
	}

	room.deal.Lock()
	defer room.deal.Unlock()

	round, _ := room.End()

	s.log.Info().Str("code", room.Code()).Int("round", round.Number).Msg("round ended")

	s.notifier.Broadcast(room.Code(), RoundEndedMessage{
		Type:     "round_ended",
		Round:    round.Number,
		Location: round.Location,
		Spy:      round.SpyName,
	})

	s.broadcastRoster(room)

	return round, nil
}

// SetRoundDuration changes the next round's duration. Only the owner may.
func (s *Service) SetRoundDuration(name, code string, seconds int) error {
	if seconds < 1 {
		return ErrInvalidDuration
	}

	room, _, err := s.owned(name, code)
	if err != nil {
		return err
	}

	room.SetRoundDuration(seconds)
	s.broadcastRoster(room)

	return nil
}

// Leave removes a non-owner player from a room.
func (s *Service) Leave(name, code string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	room, err := s.Room(code)
	if err != nil {
		return err
	}

	if _, err := room.RemovePlayer(name); err != nil {
		return fmt.Errorf("%w: %q in %s", err, name, room.Code())
	}

	s.log.Info().Str("code", room.Code()).Str("player", name).Msg("player left")

	s.broadcastRoster(room)

	return nil
}

// Roster returns the public view of a room.
func (s *Service) Roster(code string) (Roster, error) {
	room, err := s.Room(code)
	if err != nil {
		return Roster{}, err
	}
	return room.Roster(), nil
}

// Reap drops rooms idle since before cutoff.
func (s *Service) Reap(cutoff time.Time) []string {
	codes := s.registry.Reap(cutoff)
	for _, code := range codes {
		s.log.Info().Str("code", code).Msg("room reaped")
	}
	return codes
}

func (s *Service) broadcastRoster(room *Room) Roster {
	roster := room.Roster()
	s.notifier.Broadcast(roster.Code, newRosterMessage(roster))
	return roster
}

func (s *Service) deliver(code, name string, h Handle, msg RoleMessage) {
	if h == "" {
		s.log.Warn().Str("code", code).Str("player", name).Msg("role not delivered: no connection attached")
		return
	}

	if err := s.notifier.Send(h, msg); err != nil {
		s.log.Warn().Err(err).Str("code", code).Str("player", name).Str("handle", string(h)).Msg("role not delivered")
	}
}
