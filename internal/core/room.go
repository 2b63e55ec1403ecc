package core

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

// Room groups clients that receive the same broadcasts.
type Room struct {
	Name     string
	Host     *Client // nil for well-known rooms
	password string
	members  map[*Client]struct{}
}

// NewRoom constructs a room with no members. An empty password means an open room.
func NewRoom(name string, host *Client, password string) *Room {
	return &Room{
		Name:     name,
		Host:     host,
		password: password,
		members:  make(map[*Client]struct{}),
	}
}

// Protected reports whether joining requires a password.
func (r *Room) Protected() bool {
	return r.password != ""
}

// Password returns the stored password, empty for open rooms.
func (r *Room) Password() string {
	return r.password
}

// CheckPassword compares a supplied password with the stored one.
func (r *Room) CheckPassword(supplied *string) error {
	if !r.Protected() {
		return nil
	}
	if supplied == nil {
		return errPasswordRequired
	}
	if *supplied != r.password {
		return errWrongPassword
	}
	return nil
}

// AddMember inserts c and records the room on the client. Returns true if newly added.
func (r *Room) AddMember(c *Client) bool {
	if _, exists := r.members[c]; exists {
		return false
	}
	r.members[c] = struct{}{}
	c.join(r)
	return true
}

// RemoveMember deletes c and drops the room from the client. Returns true if removed.
func (r *Room) RemoveMember(c *Client) bool {
	if _, exists := r.members[c]; !exists {
		return false
	}
	delete(r.members, c)
	c.leave(r)
	return true
}

// HasMember reports whether c belongs to the room.
func (r *Room) HasMember(c *Client) bool {
	_, ok := r.members[c]
	return ok
}

// Size returns the number of members.
func (r *Room) Size() int {
	return len(r.members)
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}

// Members returns the members ordered by name, then hotel.
func (r *Room) Members() []*Client {
	members := lo.Keys(r.members)
	slices.SortFunc(members, func(a, b *Client) int {
		return cmp.Or(
			cmp.Compare(a.Profile.Name, b.Profile.Name),
			cmp.Compare(a.Profile.Hotel, b.Profile.Hotel),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return members
}

// Broadcast queues msg on every member. onError, if set, receives the members whose queue rejected it.
func (r *Room) Broadcast(msg []byte, onError func(*Client, error)) {
	for c := range r.members {
		if err := c.Send(msg); err != nil && onError != nil {
			onError(c, err)
		}
	}
}

// Roster lists the profiles of all members.
func (r *Room) Roster() []proto.Profile {
	return lo.Map(r.Members(), func(c *Client, _ int) proto.Profile {
		return c.Profile.toProto()
	})
}

func sortRooms(rooms []*Room) []*Room {
	slices.SortFunc(rooms, func(a, b *Room) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return rooms
}
