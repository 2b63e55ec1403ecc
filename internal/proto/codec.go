package proto

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// ErrMalformed is returned when a frame is not a JSON envelope with a type.
var ErrMalformed = errors.New("malformed message")

var (
	api      = sonic.ConfigStd
	validate = validator.New()
)

// Codec turns wire frames into envelopes and replies into frames.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(frame []byte) (Inbound, error)
}

// JSONCodec is the Codec used on the wire.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

// Encode marshals v to a JSON text frame.
func (JSONCodec) Encode(v any) ([]byte, error) {
	data, err := api.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// Decode parses a frame into an envelope. Missing data becomes an empty object.
func (JSONCodec) Decode(frame []byte) (Inbound, error) {
	var in Inbound
	if err := api.Unmarshal(frame, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.Type == "" {
		return Inbound{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	if len(in.Data) == 0 || bytes.Equal(in.Data, []byte("null")) {
		in.Data = []byte("{}")
	}
	return in, nil
}

// DecodeData unmarshals an envelope payload into dst and validates its tags.
func DecodeData(data []byte, dst any) error {
	if err := api.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validate data: %w", err)
	}
	return nil
}

// DecodeFields unmarshals an envelope payload into a generic object so that
// caller supplied fields can be relayed untouched.
func DecodeFields(data []byte) (map[string]any, error) {
	fields := make(map[string]any)
	if err := api.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return fields, nil
}
