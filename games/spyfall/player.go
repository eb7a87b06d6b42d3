/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import "github.com/google/uuid"

// Handle identifies a live realtime connection. The zero value means no
// connection is attached.
type Handle string

// Player is a participant in a single room. A Player is owned by its Room
// and is only mutated while the room lock is held.
type Player struct {
	id      string
	name    string
	isOwner bool
	handle  Handle
}

// NewPlayer creates a regular participant. name must already be trimmed
// and non-empty; Room.AddPlayer refuses a player with a blank name.
func NewPlayer(name string) *Player {
	return &Player{
		id:   uuid.NewString(),
		name: name,
	}
}

// NewOwner creates the participant that created the room.
func NewOwner(name string) *Player {
	p := NewPlayer(name)
	p.isOwner = true
	return p
}

func (p *Player) ID() string { return p.id }
func (p *Player) Name() string { return p.name }
func (p *Player) IsOwner() bool { return p.isOwner }
func (p *Player) Handle() Handle { return p.handle }
func (p *Player) Attached() bool { return p.handle != "" }
func (p *Player) Attach(h Handle) { p.handle = h }

func (p *Player) detach(h Handle) bool {
	if p.handle == "" || p.handle != h {
		return false
	}
	p.handle = ""
	return true
}
