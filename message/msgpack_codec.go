package message

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/c360/edgeipc/errors"
)

type binaryEnvelope struct {
	Payload    []byte     `msgpack:"Payload"`
	Extensions Extensions `msgpack:"ExtensionMap_"`
}

// MsgpackCodec is the compact binary envelope for hosts that announce the
// binary encoding type. It uses the same two keys as JSONCodec but carries
// the payload as raw msgpack bin data instead of base64 text.
type MsgpackCodec struct{}

// Name implements Codec.
func (MsgpackCodec) Name() string { return EncodingBinary }

// Encode implements Codec.
func (MsgpackCodec) Encode(m *Message) ([]byte, error) {
	if m == nil {
		return nil, errors.Encoding("MsgpackCodec", "Encode", "nil message")
	}
	if err := m.Extensions.Validate(); err != nil {
		return nil, errors.Encoding("MsgpackCodec", "Encode", "%v", err)
	}

	env := binaryEnvelope{Payload: m.Payload, Extensions: m.Extensions}
	// nil would encode as msgpack nil rather than an empty bin
	if env.Payload == nil {
		env.Payload = []byte{}
	}
	if env.Extensions == nil {
		env.Extensions = Extensions{}
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&env); err != nil {
		return nil, errors.Encoding("MsgpackCodec", "Encode", "marshal envelope: %v", err)
	}
	return buf.Bytes(), nil
}

// Decode implements Codec. Integers decode as int64 or uint64 and floats as
// float64.
func (MsgpackCodec) Decode(data []byte) (*Message, error) {
	if len(data) == 0 {
		return emptyMessage(), nil
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Encoding("MsgpackCodec", "Decode", "malformed envelope: %v", err)
	}
	if raw == nil {
		return nil, errors.Encoding("MsgpackCodec", "Decode", "envelope is nil, not a map")
	}

	rawPayload, ok := raw[PayloadKey]
	if !ok {
		return nil, errors.Encoding("MsgpackCodec", "Decode", "missing %q", PayloadKey)
	}
	var payload []byte
	switch p := rawPayload.(type) {
	case []byte:
		payload = p
	case string:
		payload = []byte(p)
	default:
		return nil, errors.Encoding("MsgpackCodec", "Decode", "%q is %T, not binary", PayloadKey, rawPayload)
	}

	rawExt, ok := raw[ExtensionsKey]
	if !ok {
		return nil, errors.Encoding("MsgpackCodec", "Decode", "missing %q", ExtensionsKey)
	}
	extMap, ok := rawExt.(map[string]any)
	if !ok {
		return nil, errors.Encoding("MsgpackCodec", "Decode", "%q is %T, not a map", ExtensionsKey, rawExt)
	}

	ext := Extensions(extMap)
	if err := ext.Validate(); err != nil {
		return nil, errors.Encoding("MsgpackCodec", "Decode", "%v", err)
	}

	return &Message{Payload: payload, Extensions: ext}, nil
}
