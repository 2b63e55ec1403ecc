package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound operation types.
const (
	TypeConnect    = "connect"
	TypeUserMove   = "user_move"
	TypeCreateRoom = "create_room"
	TypeJoinRoom   = "join_room"
	TypeLeaveRoom  = "leave_room"
	TypeRoomUsers  = "room_users"
	TypeShowRooms  = "show_rooms"
	TypeMessage    = "message"
	TypePassword   = "password"
)

// Outbound-only types.
const (
	TypeRoomInfo   = "room_info"
	TypeUserJoined = "user_joined"
	TypeUserLeft   = "user_left"
	TypeNewRoom    = "new_room"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Known reports whether typ names an inbound operation.
func Known(typ string) bool {
	switch typ {
	case TypeConnect, TypeUserMove, TypeCreateRoom, TypeJoinRoom, TypeLeaveRoom,
		TypeRoomUsers, TypeShowRooms, TypeMessage, TypePassword:
		return true
	}
	return false
}

// ErrorType returns the reply type used for a rejected operation.
func ErrorType(op string) string {
	return op + "_error"
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ConnectData introduces the client and fills its profile.
type ConnectData struct {
	Name    string `json:"name" validate:"required,max=64"`
	Mission string `json:"mission" validate:"max=256"`
	Figure  string `json:"figure" validate:"max=256"`
	Sex     string `json:"sex" validate:"max=16"`
	Hotel   string `json:"hotel" validate:"max=64"`
}

// CreateRoomData requests a new room. A nil or empty Password creates an open room.
type CreateRoomData struct {
	Room     string  `json:"room" validate:"max=64"`
	Password *string `json:"password,omitempty"`
}

// JoinRoomData requests membership of an existing room.
type JoinRoomData struct {
	Room     string  `json:"room" validate:"max=64"`
	Password *string `json:"password,omitempty"`
}

// RoomData is used by every request that only names a room.
type RoomData struct {
	Room string `json:"room" validate:"max=64"`
}

// Profile is the public summary of an identified client.
type Profile struct {
	Name    string `json:"name"`
	Mission string `json:"mission"`
	Figure  string `json:"figure"`
	Sex     string `json:"sex"`
	Hotel   string `json:"hotel"`
}

// ConnectReply answers a connect request.
type ConnectReply struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// RoomUsers carries a room roster (room_info and room_users).
type RoomUsers struct {
	Room  string    `json:"room"`
	Users []Profile `json:"users"`
}

// UserJoined notifies that a user joined a room.
type UserJoined struct {
	Room string `json:"room"`
	Profile
}

// UserLeft notifies that a user left a room.
type UserLeft struct {
	Room  string `json:"room"`
	Name  string `json:"name"`
	Hotel string `json:"hotel"`
}

// NewRoom announces a freshly created room.
type NewRoom struct {
	Name     string  `json:"name"`
	Password bool    `json:"password"`
	Creator  Profile `json:"creator"`
}

// RoomSummary describes one room in a show_rooms listing.
type RoomSummary struct {
	Name     string    `json:"name"`
	Password bool      `json:"password"`
	Users    []Profile `json:"users"`
}

// ShowRooms lists every open room.
type ShowRooms struct {
	Rooms []RoomSummary `json:"rooms"`
}

// RoomPassword answers a password request.
type RoomPassword struct {
	Room     string `json:"room"`
	Password string `json:"password"`
}

// Error describes a rejected operation.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Room    string `json:"room,omitempty"`
}
