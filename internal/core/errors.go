package core

import (
	"errors"
	"fmt"
)

// Error codes for domain errors.
const (
	ErrCodeAlreadyConnected  = "already_connected"
	ErrCodeAlreadyIdentified = "already_identified"
	ErrCodeNotConnected      = "not_connected"
	ErrCodeEmptyRoomName     = "empty_room_name"
	ErrCodeRoomExists        = "room_exists"
	ErrCodeRoomNotFound      = "room_not_found"
	ErrCodeAlreadyJoined     = "already_joined"
	ErrCodeNotInRoom         = "not_in_room"
	ErrCodePasswordRequired  = "password_required"
	ErrCodeWrongPassword     = "wrong_password"
	ErrCodeBadRequest        = "bad_request"
)

var (
	ErrEmptyRoomName = errors.New("empty room name")
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomNotFound  = errors.New("room not found")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

var (
	errAlreadyConnected  = coreError(ErrCodeAlreadyConnected, "This user is already connected")
	errAlreadyIdentified = coreError(ErrCodeAlreadyIdentified, "You are already connected")
	errNotConnected      = coreError(ErrCodeNotConnected, "You must connect first")
	errBadRequest        = coreError(ErrCodeBadRequest, "Invalid request payload")
	errPasswordRequired  = coreError(ErrCodePasswordRequired, "You must provide a password to join this room")
	errWrongPassword     = coreError(ErrCodeWrongPassword, "Wrong password")
	errNotMember         = coreError(ErrCodeNotInRoom, "You are not member of this room")
	errNoSuchRoom        = coreError(ErrCodeRoomNotFound, "The room does not exist")
)

func errAlreadyJoined(room string) *CoreError {
	return coreError(ErrCodeAlreadyJoined, fmt.Sprintf("You are already member of %s", room))
}

// toCoreError maps registry errors onto the create_room replies.
func toCoreError(err error) *CoreError {
	var ce *CoreError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, ErrEmptyRoomName):
		return coreError(ErrCodeEmptyRoomName, "The room name must not be empty")
	case errors.Is(err, ErrRoomExists):
		return coreError(ErrCodeRoomExists, "The room you want to create already exists")
	case errors.Is(err, ErrRoomNotFound):
		return errNoSuchRoom
	default:
		return coreError(ErrCodeBadRequest, err.Error())
	}
}
