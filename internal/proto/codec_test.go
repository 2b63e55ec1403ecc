package proto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	codec := JSONCodec{}

	tests := []struct {
		name    string
		frame   string
		typ     string
		data    string
		wantErr bool
	}{
		{name: "with data", frame: `{"type":"join_room","data":{"room":"sys"}}`, typ: TypeJoinRoom, data: `{"room":"sys"}`},
		{name: "missing data", frame: `{"type":"show_rooms"}`, typ: TypeShowRooms, data: `{}`},
		{name: "null data", frame: `{"type":"show_rooms","data":null}`, typ: TypeShowRooms, data: `{}`},
		{name: "not json", frame: `hello`, wantErr: true},
		{name: "missing type", frame: `{"data":{}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := codec.Decode([]byte(tt.frame))
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrMalformed))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.typ, in.Type)
			require.JSONEq(t, tt.data, string(in.Data))
		})
	}
}

func TestDecodeDataValidates(t *testing.T) {
	var connect ConnectData
	err := DecodeData([]byte(`{"name":"","hotel":"nl"}`), &connect)
	require.Error(t, err)

	err = DecodeData([]byte(`{"name":"alice","hotel":"nl","figure":"hd-180"}`), &connect)
	require.NoError(t, err)
	require.Equal(t, "alice", connect.Name)
	require.Equal(t, "hd-180", connect.Figure)

	var room RoomData
	require.Error(t, DecodeData([]byte(`{"room":42}`), &room))
}

func TestEncodeOutbound(t *testing.T) {
	frame, err := JSONCodec{}.Encode(Outbound{
		Type: ErrorType(TypeJoinRoom),
		Data: Error{Code: "room_not_found", Message: "The room you want to join does not exist", Room: "ghost"},
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"join_room_error","data":{"code":"room_not_found","message":"The room you want to join does not exist","room":"ghost"}}`, string(frame))
}
