/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import (
	"sync"
	"time"
)

// Registry maps room codes to rooms. Rooms are independent of each other, so
// the registry lock only guards the map itself.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// CreateAndStore registers room under code. It reports false, leaving the
// registry unchanged, when the code is already in use.
func (reg *Registry) CreateAndStore(code string, room *Room) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.rooms[code]; exists {
		return false
	}

	reg.rooms[code] = room

	return true
}

func (reg *Registry) Lookup(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[code]
	return room, ok
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Reap removes every room idle since before cutoff and returns their codes.
func (reg *Registry) Reap(cutoff time.Time) []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var reaped []string
	for code, room := range reg.rooms {
		if room.LastActive().Before(cutoff) {
			delete(reg.rooms, code)
			reaped = append(reaped, code)
		}
	}
	return reaped
}
