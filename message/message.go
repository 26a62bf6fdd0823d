package message

import (
	"bytes"
	"fmt"
	"reflect"
)

// Envelope keys. They wrap a message on the wire and are never valid
// extension keys.
const (
	PayloadKey    = "Payload"
	ExtensionsKey = "ExtensionMap_"
)

// Message is the transient transport unit exchanged with the host: an opaque
// payload plus open-ended metadata used for routing.
//
// A Message is built by the sender immediately before encoding and by the
// receiver immediately after decoding; it is never persisted.
type Message struct {
	Payload    []byte
	Extensions Extensions
}

// New creates a message. A nil ext yields empty extensions.
func New(payload []byte, ext Extensions) *Message {
	if ext == nil {
		ext = Extensions{}
	}
	return &Message{Payload: payload, Extensions: ext}
}

// Equal reports whether m and o carry the same payload bytes and the same
// extensions. Nil and empty are treated alike at the top level.
func (m *Message) Equal(o *Message) bool {
	if m == nil || o == nil {
		return m == o
	}
	if !bytes.Equal(m.Payload, o.Payload) {
		return false
	}
	if len(m.Extensions) == 0 && len(o.Extensions) == 0 {
		return true
	}
	return reflect.DeepEqual(m.Extensions, o.Extensions)
}

// String renders the message for diagnostics.
func (m *Message) String() string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("{%s: %d bytes, %s: %v}", PayloadKey, len(m.Payload), ExtensionsKey, map[string]any(m.Extensions))
}
