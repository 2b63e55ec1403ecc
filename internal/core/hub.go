package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/roomrelay/internal/metrics"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

// ErrHubStopped is returned when a command is submitted after Run has returned.
var ErrHubStopped = errors.New("hub stopped")

const mailboxSize = 256

// Options configures a Hub.
type Options struct {
	WellKnownRooms []string
	Codec          proto.Codec
	Logger         *zerolog.Logger
	Metrics        *metrics.Metrics
}

// RoomSnapshot is a read-only copy of one room.
type RoomSnapshot struct {
	Name      string          `json:"name"`
	Password  bool            `json:"password"`
	WellKnown bool            `json:"well_known"`
	Host      string          `json:"host,omitempty"`
	Users     []proto.Profile `json:"users"`
}

// Hub owns every room and identified session. All state is touched only by
// the goroutine executing Run; other goroutines talk to it through the mailbox.
type Hub struct {
	mailbox chan command
	done    chan struct{}

	sessions  map[*Client]struct{}
	registry  *Registry
	directory *Directory

	codec   proto.Codec
	log     *zerolog.Logger
	metrics *metrics.Metrics
}

// NewHub creates a hub with the well-known rooms already open.
func NewHub(opts Options) *Hub {
	codec := opts.Codec
	if codec == nil {
		codec = proto.JSONCodec{}
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		mailbox:   make(chan command, mailboxSize),
		done:      make(chan struct{}),
		sessions:  make(map[*Client]struct{}),
		registry:  NewRegistry(opts.WellKnownRooms...),
		directory: NewDirectory(),
		codec:     codec,
		log:       logger,
		metrics:   opts.Metrics,
	}
}

// Run processes commands until ctx is cancelled. Remaining sessions are torn down on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.updateGauges()

	for {
		select {
		case <-ctx.Done():
			for c := range h.sessions {
				c.Teardown()
			}
			clear(h.sessions)
			h.log.Debug().Msg("hub stopped")
			return
		case cmd := <-h.mailbox:
			h.execute(cmd)
			h.updateGauges()
		}
	}
}

// Register adds a newly accepted session.
func (h *Hub) Register(c *Client) error {
	return h.submit(context.Background(), command{kind: commandRegister, client: c})
}

// Dispatch hands one inbound frame of c to the hub.
func (h *Hub) Dispatch(ctx context.Context, c *Client, frame []byte) error {
	return h.submit(ctx, command{kind: commandDispatch, client: c, frame: frame})
}

// Unregister runs the disconnect cascade for c.
func (h *Hub) Unregister(c *Client) {
	_ = h.submit(context.Background(), command{kind: commandUnregister, client: c})
}

// Snapshot returns a copy of every open room.
func (h *Hub) Snapshot(ctx context.Context) ([]RoomSnapshot, error) {
	reply := make(chan []RoomSnapshot, 1)
	if err := h.submit(ctx, command{kind: commandSnapshot, snapshot: reply}); err != nil {
		return nil, err
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) submit(ctx context.Context, cmd command) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.mailbox <- cmd:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) execute(cmd command) {
	switch cmd.kind {
	case commandRegister:
		h.sessions[cmd.client] = struct{}{}
		h.log.Debug().Str("client_id", cmd.client.ID).Msg("session registered")
	case commandDispatch:
		if _, ok := h.sessions[cmd.client]; !ok || cmd.client.closed {
			return
		}
		h.handle(cmd.client, cmd.frame)
	case commandUnregister:
		h.disconnect(cmd.client)
	case commandSnapshot:
		cmd.snapshot <- h.snapshot()
	}
}

// disconnect removes an identified client from its rooms with the usual
// user_left notices, then from the directory, and finally tears it down.
func (h *Hub) disconnect(c *Client) {
	if _, ok := h.sessions[c]; !ok {
		c.Teardown()
		return
	}
	delete(h.sessions, c)

	if c.identified {
		for _, room := range c.Rooms() {
			h.leave(c, room, false)
		}
		h.directory.Remove(c)
	}
	c.Teardown()

	h.log.Info().
		Str("client_id", c.ID).
		Str("name", c.Profile.Name).
		Str("hotel", c.Profile.Hotel).
		Msg("client disconnected")
}

func (h *Hub) snapshot() []RoomSnapshot {
	return lo.Map(h.registry.Rooms(), func(r *Room, _ int) RoomSnapshot {
		snap := RoomSnapshot{
			Name:      r.Name,
			Password:  r.Protected(),
			WellKnown: h.registry.WellKnown(r.Name),
			Users:     r.Roster(),
		}
		if r.Host != nil {
			snap.Host = r.Host.Profile.Name
		}
		return snap
	})
}

func (h *Hub) updateGauges() {
	h.metrics.SetSessions(len(h.sessions))
	h.metrics.SetIdentified(h.directory.Len())
	h.metrics.SetRooms(h.registry.Len())
}

func (h *Hub) encode(typ string, data any) []byte {
	frame, err := h.codec.Encode(proto.Outbound{Type: typ, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("type", typ).Msg("encode outbound")
		return nil
	}
	return frame
}

func (h *Hub) deliver(c *Client, frame []byte) {
	if frame == nil {
		return
	}
	if err := c.Send(frame); err != nil {
		h.dropped(c, err)
	}
}

func (h *Hub) dropped(c *Client, err error) {
	if errors.Is(err, ErrOutboxFull) {
		h.metrics.ObserveOverflow()
		h.log.Warn().Str("client_id", c.ID).Msg("outbound queue overflow, disconnecting client")
		return
	}
	h.log.Debug().Err(err).Str("client_id", c.ID).Msg("drop outbound for closed client")
}

// send encodes one reply and queues it on c.
func (h *Hub) send(c *Client, typ string, data any) {
	h.deliver(c, h.encode(typ, data))
}

// fail answers a rejected operation with <op>_error.
func (h *Hub) fail(c *Client, op string, err *CoreError, room string) {
	h.metrics.ObserveRejected(op, err.Code)
	h.log.Debug().
		Str("client_id", c.ID).
		Str("type", op).
		Str("code", err.Code).
		Str("room", room).
		Msg("operation rejected")
	h.send(c, proto.ErrorType(op), proto.Error{Code: err.Code, Message: err.Message, Room: room})
}

func (h *Hub) broadcastRoom(r *Room, typ string, data any) {
	frame := h.encode(typ, data)
	if frame == nil {
		return
	}
	r.Broadcast(frame, h.dropped)
}

func (h *Hub) broadcastDirectory(typ string, data any, except ...*Client) {
	frame := h.encode(typ, data)
	for _, c := range h.directory.Clients(except...) {
		h.deliver(c, frame)
	}
}
