package core

import (
	"sync"

	"github.com/samber/lo"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

// Profile is what a client announces about itself on connect.
type Profile struct {
	Name    string
	Mission string
	Figure  string
	Sex     string
	Hotel   string
}

func (p Profile) toProto() proto.Profile {
	return proto.Profile{
		Name:    p.Name,
		Mission: p.Mission,
		Figure:  p.Figure,
		Sex:     p.Sex,
		Hotel:   p.Hotel,
	}
}

// Client is a connected participant as seen by the core layer.
// Profile, identified and rooms are owned by the hub goroutine.
type Client struct {
	ID      string
	Profile Profile

	identified bool
	closed     bool
	rooms      map[*Room]struct{}
	outbox     *Outbox
	closeOnce  sync.Once
}

// NewClient constructs a client whose outbound queue holds at most queueLimit messages.
func NewClient(id string, queueLimit int) *Client {
	return &Client{
		ID:     id,
		rooms:  make(map[*Room]struct{}),
		outbox: NewOutbox(queueLimit),
	}
}

// Outbox exposes the queue drained by the transport delivery loop.
func (c *Client) Outbox() *Outbox {
	return c.outbox
}

// Identified reports whether the connect handshake completed.
func (c *Client) Identified() bool {
	return c.identified
}

// Send queues an encoded message for delivery.
func (c *Client) Send(msg []byte) error {
	return c.outbox.Push(msg)
}

// InRoom reports whether r is in the client's room set.
func (c *Client) InRoom(r *Room) bool {
	_, ok := c.rooms[r]
	return ok
}

// Rooms returns the rooms the client belongs to.
func (c *Client) Rooms() []*Room {
	return sortRooms(lo.Keys(c.rooms))
}

func (c *Client) join(r *Room) bool {
	if _, ok := c.rooms[r]; ok {
		return false
	}
	c.rooms[r] = struct{}{}
	return true
}

func (c *Client) leave(r *Room) bool {
	if _, ok := c.rooms[r]; !ok {
		return false
	}
	delete(c.rooms, r)
	return true
}

// Teardown removes the client from every room and stops its delivery loop once
// the queue is drained. Calling it more than once is harmless.
func (c *Client) Teardown() {
	for r := range c.rooms {
		r.RemoveMember(c)
	}
	clear(c.rooms)
	c.closed = true
	c.closeOnce.Do(c.outbox.Close)
}
