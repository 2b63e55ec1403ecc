package core

import (
	"errors"
	"maps"

	"github.com/samber/lo"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

// handle decodes one frame and runs the operation named by its type.
// Malformed frames are dropped and unknown types ignored.
func (h *Hub) handle(c *Client, frame []byte) {
	in, err := h.codec.Decode(frame)
	if err != nil {
		h.metrics.ObserveDecodeError()
		h.log.Warn().Err(err).Str("client_id", c.ID).Msg("drop malformed inbound")
		return
	}
	h.log.Debug().Str("client_id", c.ID).Str("type", in.Type).Msg("inbound")

	if !proto.Known(in.Type) {
		h.metrics.ObserveInbound("unknown")
		h.log.Debug().Str("client_id", c.ID).Str("type", in.Type).Msg("ignore unknown type")
		return
	}
	h.metrics.ObserveInbound(in.Type)

	switch in.Type {
	case proto.TypeConnect:
		h.handleConnect(c, in.Data)
	case proto.TypeUserMove:
		h.handleUserMove(c, in.Data)
	case proto.TypeCreateRoom:
		h.handleCreateRoom(c, in.Data)
	case proto.TypeJoinRoom:
		h.handleJoinRoom(c, in.Data)
	case proto.TypeLeaveRoom:
		h.handleLeaveRoom(c, in.Data)
	case proto.TypeRoomUsers:
		h.handleRoomUsers(c, in.Data)
	case proto.TypeShowRooms:
		h.send(c, proto.TypeShowRooms, proto.ShowRooms{Rooms: h.roomSummaries()})
	case proto.TypeMessage:
		h.handleMessage(c, in.Data)
	case proto.TypePassword:
		h.handlePassword(c, in.Data)
	}
}

func (h *Hub) requireIdentified(c *Client, op string) bool {
	if c.identified {
		return true
	}
	h.fail(c, op, errNotConnected, "")
	return false
}

func (h *Hub) handleConnect(c *Client, data []byte) {
	reject := func(err *CoreError) {
		h.metrics.ObserveRejected(proto.TypeConnect, err.Code)
		h.send(c, proto.TypeConnect, proto.ConnectReply{Status: proto.StatusError, Code: err.Code, Message: err.Message})
	}

	if c.identified {
		reject(errAlreadyIdentified)
		return
	}

	var req proto.ConnectData
	if err := proto.DecodeData(data, &req); err != nil {
		h.log.Debug().Err(err).Str("client_id", c.ID).Msg("invalid connect payload")
		reject(errBadRequest)
		return
	}

	if _, taken := h.directory.Lookup(req.Name, req.Hotel); taken {
		h.log.Info().Str("client_id", c.ID).Str("name", req.Name).Str("hotel", req.Hotel).Msg("duplicate connect, closing session")
		reject(errAlreadyConnected)
		c.Teardown()
		return
	}

	c.Profile = Profile{
		Name:    req.Name,
		Mission: req.Mission,
		Figure:  req.Figure,
		Sex:     req.Sex,
		Hotel:   req.Hotel,
	}
	c.identified = true
	h.directory.Add(c)

	h.log.Info().Str("client_id", c.ID).Str("name", req.Name).Str("hotel", req.Hotel).Msg("client connected")
	h.send(c, proto.TypeConnect, proto.ConnectReply{Status: proto.StatusSuccess})
}

func (h *Hub) handleUserMove(c *Client, data []byte) {
	if !h.requireIdentified(c, proto.TypeUserMove) {
		return
	}
	fields, err := proto.DecodeFields(data)
	if err != nil {
		h.fail(c, proto.TypeUserMove, errBadRequest, "")
		return
	}
	for _, room := range c.Rooms() {
		update := maps.Clone(fields)
		update["name"] = c.Profile.Name
		update["hotel"] = c.Profile.Hotel
		update["room"] = room.Name
		h.broadcastRoom(room, proto.TypeUserMove, update)
	}
}

func (h *Hub) handleCreateRoom(c *Client, data []byte) {
	if !h.requireIdentified(c, proto.TypeCreateRoom) {
		return
	}
	var req proto.CreateRoomData
	if err := proto.DecodeData(data, &req); err != nil {
		h.fail(c, proto.TypeCreateRoom, errBadRequest, "")
		return
	}

	room, err := h.registry.Create(req.Room, c, lo.FromPtr(req.Password))
	if err != nil {
		h.fail(c, proto.TypeCreateRoom, toCoreError(err), req.Room)
		return
	}
	h.log.Info().Str("client_id", c.ID).Str("room", room.Name).Bool("password", room.Protected()).Msg("room created")

	h.joinRoom(c, room.Name, req.Password)

	h.broadcastDirectory(proto.TypeNewRoom, proto.NewRoom{
		Name:     room.Name,
		Password: room.Protected(),
		Creator:  c.Profile.toProto(),
	})
}

func (h *Hub) handleJoinRoom(c *Client, data []byte) {
	if !h.requireIdentified(c, proto.TypeJoinRoom) {
		return
	}
	var req proto.JoinRoomData
	if err := proto.DecodeData(data, &req); err != nil {
		h.fail(c, proto.TypeJoinRoom, errBadRequest, "")
		return
	}
	h.joinRoom(c, req.Room, req.Password)
}

// joinRoom adds c to the named room, sends it the roster and announces the
// join to every identified client.
func (h *Hub) joinRoom(c *Client, name string, password *string) {
	room, ok := h.registry.Get(name)
	if !ok {
		h.fail(c, proto.TypeJoinRoom, coreError(ErrCodeRoomNotFound, "The room you want to join does not exist"), name)
		return
	}
	if room.HasMember(c) {
		h.fail(c, proto.TypeJoinRoom, errAlreadyJoined(name), name)
		return
	}
	if err := room.CheckPassword(password); err != nil {
		h.fail(c, proto.TypeJoinRoom, toCoreError(err), name)
		return
	}

	room.AddMember(c)
	h.log.Info().Str("client_id", c.ID).Str("room", name).Msg("client joined room")

	h.send(c, proto.TypeRoomInfo, proto.RoomUsers{Room: name, Users: room.Roster()})
	h.broadcastDirectory(proto.TypeUserJoined, proto.UserJoined{Room: name, Profile: c.Profile.toProto()})
}

func (h *Hub) handleLeaveRoom(c *Client, data []byte) {
	if !h.requireIdentified(c, proto.TypeLeaveRoom) {
		return
	}
	var req proto.RoomData
	if err := proto.DecodeData(data, &req); err != nil {
		h.fail(c, proto.TypeLeaveRoom, errBadRequest, "")
		return
	}

	room, ok := h.registry.Get(req.Room)
	if !ok {
		h.fail(c, proto.TypeLeaveRoom, coreError(ErrCodeRoomNotFound, "The room you want to leave does not exist"), req.Room)
		return
	}
	if !room.HasMember(c) {
		h.fail(c, proto.TypeLeaveRoom, coreError(ErrCodeNotInRoom, "You are not member of the room you want to leave"), req.Room)
		return
	}
	h.leave(c, room, true)
}

// leave removes c from room, drops the room if it became empty and tells
// every other identified client. notifySelf is off during disconnect.
func (h *Hub) leave(c *Client, room *Room, notifySelf bool) {
	if !room.RemoveMember(c) {
		return
	}
	if h.registry.RemoveIfEmpty(room) {
		h.log.Info().Str("room", room.Name).Msg("room removed")
	}

	left := proto.UserLeft{Room: room.Name, Name: c.Profile.Name, Hotel: c.Profile.Hotel}
	h.broadcastDirectory(proto.TypeUserLeft, left, c)
	if notifySelf {
		h.send(c, proto.TypeUserLeft, left)
	}
}

func (h *Hub) handleRoomUsers(c *Client, data []byte) {
	var req proto.RoomData
	if err := proto.DecodeData(data, &req); err != nil {
		h.fail(c, proto.TypeRoomUsers, errBadRequest, "")
		return
	}
	room, ok := h.registry.Get(req.Room)
	if !ok {
		h.fail(c, proto.TypeRoomUsers, errNoSuchRoom, req.Room)
		return
	}
	h.send(c, proto.TypeRoomUsers, proto.RoomUsers{Room: room.Name, Users: room.Roster()})
}

func (h *Hub) roomSummaries() []proto.RoomSummary {
	return lo.Map(h.registry.Rooms(), func(r *Room, _ int) proto.RoomSummary {
		return proto.RoomSummary{Name: r.Name, Password: r.Protected(), Users: r.Roster()}
	})
}

// handleMessage relays a chat message to the named room, or to every room
// of the sender when no room is given.
func (h *Hub) handleMessage(c *Client, data []byte) {
	if !h.requireIdentified(c, proto.TypeMessage) {
		return
	}
	fields, err := proto.DecodeFields(data)
	if err != nil {
		h.fail(c, proto.TypeMessage, errBadRequest, "")
		return
	}
	fields["habbo"] = c.Profile.Name
	fields["hotel"] = c.Profile.Hotel

	target, named := fields["room"]
	if !named {
		for _, room := range c.Rooms() {
			msg := maps.Clone(fields)
			msg["room"] = room.Name
			h.broadcastRoom(room, proto.TypeMessage, msg)
		}
		return
	}

	var name string
	switch v := target.(type) {
	case string:
		name = v
	case nil:
		// An explicit null names no room at all.
	default:
		h.fail(c, proto.TypeMessage, errBadRequest, "")
		return
	}
	room, err := h.lookupMember(c, name)
	if err != nil {
		var ce *CoreError
		if errors.Is(err, ErrRoomNotFound) {
			ce = coreError(ErrCodeRoomNotFound, "Room does not exist")
		} else {
			ce = toCoreError(err)
		}
		h.fail(c, proto.TypeMessage, ce, name)
		return
	}
	h.broadcastRoom(room, proto.TypeMessage, fields)
}

func (h *Hub) handlePassword(c *Client, data []byte) {
	if !h.requireIdentified(c, proto.TypePassword) {
		return
	}
	var req proto.RoomData
	if err := proto.DecodeData(data, &req); err != nil {
		h.fail(c, proto.TypePassword, errBadRequest, "")
		return
	}
	room, err := h.lookupMember(c, req.Room)
	if err != nil {
		h.fail(c, proto.TypePassword, toCoreError(err), req.Room)
		return
	}
	h.send(c, proto.TypePassword, proto.RoomPassword{Room: room.Name, Password: room.Password()})
}

// lookupMember returns the named room if c belongs to it.
func (h *Hub) lookupMember(c *Client, name string) (*Room, error) {
	room, ok := h.registry.Get(name)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !room.HasMember(c) {
		return nil, errNotMember
	}
	return room, nil
}
