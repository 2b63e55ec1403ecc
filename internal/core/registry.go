package core

import (
	"fmt"

	"github.com/samber/lo"
)

// Registry maps room names to open rooms.
type Registry struct {
	rooms     map[string]*Room
	wellKnown map[string]struct{}
}

// NewRegistry creates a registry with the given well-known rooms already open.
// Well-known rooms have no host and no password and are never removed.
func NewRegistry(wellKnown ...string) *Registry {
	reg := &Registry{
		rooms:     make(map[string]*Room),
		wellKnown: make(map[string]struct{}, len(wellKnown)),
	}
	for _, name := range wellKnown {
		if name == "" {
			continue
		}
		reg.wellKnown[name] = struct{}{}
		reg.rooms[name] = NewRoom(name, nil, "")
	}
	return reg
}

// Create opens and registers a new room.
func (g *Registry) Create(name string, host *Client, password string) (*Room, error) {
	if name == "" {
		return nil, ErrEmptyRoomName
	}
	if _, exists := g.rooms[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, name)
	}
	room := NewRoom(name, host, password)
	g.rooms[name] = room
	return room, nil
}

// Get looks up an open room.
func (g *Registry) Get(name string) (*Room, bool) {
	room, ok := g.rooms[name]
	return room, ok
}

// WellKnown reports whether name is exempt from empty-room removal.
func (g *Registry) WellKnown(name string) bool {
	_, ok := g.wellKnown[name]
	return ok
}

// RemoveIfEmpty drops r from the registry when it has no members and is not well-known.
// Returns true if the room was removed.
func (g *Registry) RemoveIfEmpty(r *Room) bool {
	if !r.Empty() || g.WellKnown(r.Name) {
		return false
	}
	if current, ok := g.rooms[r.Name]; !ok || current != r {
		return false
	}
	delete(g.rooms, r.Name)
	return true
}

// Rooms returns every open room ordered by name.
func (g *Registry) Rooms() []*Room {
	return sortRooms(lo.Values(g.rooms))
}

// Len returns the number of open rooms.
func (g *Registry) Len() int {
	return len(g.rooms)
}
