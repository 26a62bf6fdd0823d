// Package message implements the envelope exchanged with the host process
// over the inter-process channel.
//
// # Wire format
//
// The interoperable form is a UTF-8 JSON object with exactly two keys:
//
//	{"Payload":"aGVsbG8=","ExtensionMap_":{"topic":"sensors/temp"}}
//
// Payload is the standard base64 encoding of the opaque payload bytes.
// ExtensionMap_ carries the extensions verbatim. Both keys are required on
// decode; an absent ExtensionMap_ is an error, not an empty default. The
// empty document (zero bytes) decodes to an empty message.
//
// Hosts that announce the binary encoding type use MsgpackCodec instead: the
// same two keys in a msgpack map, with the payload as raw bin data.
//
// # Extensions
//
// Extension values form a closed variant set: nil, bool, string, numbers,
// arrays and string-keyed maps of variants. Anything else (structs,
// channels, functions, NaN) fails with errors.ErrEncoding, as does use of a
// reserved envelope key. JSON numbers decode as float64, so
//
//	codec.Decode(codec.Encode(m)).Equal(m)
//
// holds whenever m's numbers are float64.
//
// # Usage
//
//	codec, err := message.CodecFor(cfg.EncodingType)
//	if err != nil {
//	    return err
//	}
//	data, err := codec.Encode(message.New(body, message.Extensions{"topic": "t"}))
package message
