package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes values into entry files and back.
type Codec interface {
	// Name identifies the codec in log output and error messages.
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// MsgpackCodec is the default Codec. It handles primitives, slices, maps,
// pointers, and structs with exported fields.
type MsgpackCodec struct{}

var _ Codec = MsgpackCodec{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// TextCodec stores string values as plain UTF-8 text, so entry files are
// directly readable. Only string and []byte values are supported.
type TextCodec struct{}

var _ Codec = TextCodec{}

func (TextCodec) Name() string { return "text" }

func (TextCodec) Marshal(v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return []byte(s), nil
	case []byte:
		return s, nil
	case fmt.Stringer:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("text codec: unsupported type %T", v)
}

func (TextCodec) Unmarshal(data []byte, v any) error {
	switch out := v.(type) {
	case *string:
		*out = string(data)
		return nil
	case *[]byte:
		*out = append([]byte(nil), data...)
		return nil
	}
	return fmt.Errorf("text codec: unsupported target type %T", v)
}
