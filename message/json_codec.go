package message

import (
	"encoding/base64"
	"encoding/json"

	"github.com/valyala/fastjson"

	"github.com/c360/edgeipc/errors"
)

var parserPool fastjson.ParserPool

// jsonEnvelope fixes the key order on the wire: Payload, then ExtensionMap_.
type jsonEnvelope struct {
	Payload    string     `json:"Payload"`
	Extensions Extensions `json:"ExtensionMap_"`
}

// JSONCodec is the interoperable text envelope:
//
//	{"Payload":"<base64>","ExtensionMap_":{...}}
type JSONCodec struct{}

// Name implements Codec.
func (JSONCodec) Name() string { return EncodingJSON }

// Encode implements Codec.
func (JSONCodec) Encode(m *Message) ([]byte, error) {
	if m == nil {
		return nil, errors.Encoding("JSONCodec", "Encode", "nil message")
	}
	if err := m.Extensions.Validate(); err != nil {
		return nil, errors.Encoding("JSONCodec", "Encode", "%v", err)
	}

	ext := m.Extensions
	if ext == nil {
		ext = Extensions{}
	}

	data, err := json.Marshal(jsonEnvelope{
		Payload:    base64.StdEncoding.EncodeToString(m.Payload),
		Extensions: ext,
	})
	if err != nil {
		return nil, errors.Encoding("JSONCodec", "Encode", "marshal envelope: %v", err)
	}
	return data, nil
}

// Decode implements Codec. Numbers decode as float64.
func (JSONCodec) Decode(data []byte) (*Message, error) {
	if len(data) == 0 {
		return emptyMessage(), nil
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Encoding("JSONCodec", "Decode", "malformed JSON: %v", err)
	}
	if root.Type() != fastjson.TypeObject {
		return nil, errors.Encoding("JSONCodec", "Decode", "envelope is %s, not an object", root.Type())
	}

	rawPayload := root.Get(PayloadKey)
	if rawPayload == nil {
		return nil, errors.Encoding("JSONCodec", "Decode", "missing %q", PayloadKey)
	}
	if rawPayload.Type() != fastjson.TypeString {
		return nil, errors.Encoding("JSONCodec", "Decode", "%q is %s, not a string", PayloadKey, rawPayload.Type())
	}
	payload, err := base64.StdEncoding.DecodeString(string(rawPayload.GetStringBytes()))
	if err != nil {
		return nil, errors.Encoding("JSONCodec", "Decode", "%q is not valid base64: %v", PayloadKey, err)
	}

	rawExt := root.Get(ExtensionsKey)
	if rawExt == nil {
		return nil, errors.Encoding("JSONCodec", "Decode", "missing %q", ExtensionsKey)
	}
	if rawExt.Type() != fastjson.TypeObject {
		return nil, errors.Encoding("JSONCodec", "Decode", "%q is %s, not an object", ExtensionsKey, rawExt.Type())
	}

	converted, err := fromFastJSON(rawExt)
	if err != nil {
		return nil, errors.Encoding("JSONCodec", "Decode", "%v", err)
	}
	ext := Extensions(converted.(map[string]any))
	if err := ext.Validate(); err != nil {
		return nil, errors.Encoding("JSONCodec", "Decode", "%v", err)
	}

	return &Message{Payload: payload, Extensions: ext}, nil
}

// fromFastJSON copies a parsed value out of the parser's memory into plain
// Go values.
func fromFastJSON(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil, nil
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	case fastjson.TypeString:
		return string(v.GetStringBytes()), nil
	case fastjson.TypeNumber:
		return v.Float64()
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]any, 0, len(items))
		for _, item := range items {
			converted, err := fromFastJSON(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	case fastjson.TypeObject:
		obj := v.GetObject()
		out := make(map[string]any, obj.Len())
		var visitErr error
		obj.Visit(func(key []byte, item *fastjson.Value) {
			if visitErr != nil {
				return
			}
			converted, err := fromFastJSON(item)
			if err != nil {
				visitErr = err
				return
			}
			out[string(key)] = converted
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return out, nil
	default:
		return nil, errors.ErrEncoding
	}
}
