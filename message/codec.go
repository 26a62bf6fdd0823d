package message

import (
	"github.com/c360/edgeipc/errors"
)

// Encoding types announced by the host through ENCODING_TYPE.
const (
	EncodingJSON   = "json"
	EncodingBinary = "binary"
)

// Codec converts messages to and from their wire form. Implementations are
// pure: no I/O, no logging, deterministic errors.
type Codec interface {
	// Name identifies the codec in metrics and logs.
	Name() string

	// Encode serializes m.
	Encode(m *Message) ([]byte, error)

	// Decode parses data. Empty input yields an empty message.
	Decode(data []byte) (*Message, error)
}

// CodecFor returns the codec for a host encoding type.
func CodecFor(encodingType string) (Codec, error) {
	switch encodingType {
	case EncodingJSON:
		return JSONCodec{}, nil
	case EncodingBinary:
		return MsgpackCodec{}, nil
	default:
		return nil, errors.Configuration("message", "CodecFor",
			"unsupported encoding type %q (want %q or %q)", encodingType, EncodingJSON, EncodingBinary)
	}
}

func emptyMessage() *Message {
	return &Message{Payload: []byte{}, Extensions: Extensions{}}
}
