package message_test

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edgeerrors "github.com/c360/edgeipc/errors"
	"github.com/c360/edgeipc/message"
	"github.com/c360/edgeipc/metric"
)

func sampleExtensions() message.Extensions {
	return message.Extensions{
		"topic":   "sensors/temp",
		"retries": 3.0,
		"urgent":  true,
		"nothing": nil,
		"nested": map[string]any{
			"inner": "value",
			"list":  []any{1.0, "two", false},
		},
	}
}

func TestJSONCodec_EncodeWireFormat(t *testing.T) {
	data, err := message.JSONCodec{}.Encode(message.New([]byte("hello"), message.Extensions{"a": "b"}))
	require.NoError(t, err)

	assert.Equal(t, `{"Payload":"aGVsbG8=","ExtensionMap_":{"a":"b"}}`, string(data))
}

func TestJSONCodec_EncodeNilExtensions(t *testing.T) {
	data, err := message.JSONCodec{}.Encode(&message.Message{})
	require.NoError(t, err)

	assert.Equal(t, `{"Payload":"","ExtensionMap_":{}}`, string(data))
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	codec := message.JSONCodec{}
	rng := rand.New(rand.NewSource(42))

	payloads := [][]byte{nil, {}, []byte("hello"), {0x00, 0xff, 0x10, '\n', '"'}}
	for i := 0; i < 32; i++ {
		p := make([]byte, rng.Intn(512))
		rng.Read(p)
		payloads = append(payloads, p)
	}

	for _, payload := range payloads {
		original := message.New(payload, sampleExtensions())

		data, err := codec.Encode(original)
		require.NoError(t, err)

		decoded, err := codec.Decode(data)
		require.NoError(t, err)

		assert.True(t, decoded.Equal(original), "round trip mismatch for %d-byte payload", len(payload))
		if diff := cmp.Diff(original.Extensions, decoded.Extensions); diff != "" {
			t.Errorf("extensions mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestMsgpackCodec_RoundTrip(t *testing.T) {
	codec := message.MsgpackCodec{}

	original := message.New([]byte{0, 1, 2, 3, '\n'}, message.Extensions{
		"topic":  "sensors/temp",
		"count":  int64(7),
		"ratio":  0.5,
		"flags":  []any{true, false},
		"nested": map[string]any{"k": "v"},
	})

	data, err := codec.Encode(original)
	require.NoError(t, err)

	decoded, err := codec.Decode(data)
	require.NoError(t, err)

	if diff := cmp.Diff(original, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	for _, codec := range []message.Codec{message.JSONCodec{}, message.MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			for _, input := range [][]byte{nil, {}} {
				m, err := codec.Decode(input)
				require.NoError(t, err)
				assert.Empty(t, m.Payload)
				assert.NotNil(t, m.Extensions)
				assert.Empty(t, m.Extensions)
			}
		})
	}
}

func TestJSONCodec_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `{"Payload":`},
		{name: "array", input: `["Payload"]`},
		{name: "string", input: `"hello"`},
		{name: "whitespace only", input: `   `},
		{name: "missing extension map", input: `{"Payload":"aGVsbG8="}`},
		{name: "null extension map", input: `{"Payload":"","ExtensionMap_":null}`},
		{name: "list extension map", input: `{"Payload":"","ExtensionMap_":[]}`},
		{name: "missing payload", input: `{"ExtensionMap_":{}}`},
		{name: "numeric payload", input: `{"Payload":12,"ExtensionMap_":{}}`},
		{name: "invalid base64", input: `{"Payload":"not base64!","ExtensionMap_":{}}`},
		{name: "reserved key inside extensions", input: `{"Payload":"","ExtensionMap_":{"Payload":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := message.JSONCodec{}.Decode([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, edgeerrors.ErrEncoding)
			assert.True(t, edgeerrors.IsInvalid(err))
		})
	}
}

func TestJSONCodec_DecodeForeignProducer(t *testing.T) {
	// Key order and whitespace differ from what Encode produces
	input := `{ "ExtensionMap_": {"n": 1, "deep": {"a": [1, {"b": null}]}}, "Payload": "AAE=" }`

	m, err := message.JSONCodec{}.Decode([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, []byte{0x00, 0x01}, m.Payload)
	assert.Equal(t, message.Extensions{
		"n":    1.0,
		"deep": map[string]any{"a": []any{1.0, map[string]any{"b": nil}}},
	}, m.Extensions)
}

func TestCodecs_EncodeErrors(t *testing.T) {
	selfRef := map[string]any{}
	selfRef["me"] = selfRef

	tests := []struct {
		name string
		ext  message.Extensions
	}{
		{name: "channel", ext: message.Extensions{"ch": make(chan int)}},
		{name: "function", ext: message.Extensions{"fn": func() {}}},
		{name: "nan", ext: message.Extensions{"x": math.NaN()}},
		{name: "infinity", ext: message.Extensions{"x": math.Inf(1)}},
		{name: "struct", ext: message.Extensions{"s": struct{ A int }{1}}},
		{name: "int keyed map", ext: message.Extensions{"m": map[int]string{1: "a"}}},
		{name: "byte slice", ext: message.Extensions{"k": []byte("ab")}},
		{name: "nested byte array", ext: message.Extensions{"l": []any{[2]byte{'a', 'b'}}}},
		{name: "nested channel", ext: message.Extensions{"l": []any{"ok", make(chan int)}}},
		{name: "self reference", ext: message.Extensions{"loop": selfRef}},
		{name: "reserved payload key", ext: message.Extensions{"Payload": "x"}},
		{name: "reserved extension key", ext: message.Extensions{"ExtensionMap_": map[string]any{}}},
	}

	for _, codec := range []message.Codec{message.JSONCodec{}, message.MsgpackCodec{}} {
		for _, tt := range tests {
			t.Run(codec.Name()+"/"+tt.name, func(t *testing.T) {
				_, err := codec.Encode(message.New([]byte("p"), tt.ext))
				require.Error(t, err)
				assert.ErrorIs(t, err, edgeerrors.ErrEncoding)
			})
		}
	}
}

func TestMsgpackCodec_DecodeErrors(t *testing.T) {
	codec := message.MsgpackCodec{}

	valid, err := codec.Encode(message.New([]byte("x"), nil))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "truncated", input: valid[:len(valid)-2]},
		{name: "nil value", input: []byte{0xc0}},
		{name: "integer", input: []byte{0x05}},
		{name: "missing extension map", input: []byte{0x81, 0xa7, 'P', 'a', 'y', 'l', 'o', 'a', 'd', 0xc4, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, edgeerrors.ErrEncoding)
		})
	}
}

func TestCodecFor(t *testing.T) {
	codec, err := message.CodecFor("json")
	require.NoError(t, err)
	assert.Equal(t, "json", codec.Name())

	codec, err = message.CodecFor("binary")
	require.NoError(t, err)
	assert.Equal(t, "binary", codec.Name())

	_, err = message.CodecFor("xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, edgeerrors.ErrConfiguration)
	assert.True(t, edgeerrors.IsFatal(err))
}

func TestMessage_Equal(t *testing.T) {
	a := message.New([]byte("x"), nil)
	b := &message.Message{Payload: []byte("x"), Extensions: nil}
	assert.True(t, a.Equal(b))

	c := message.New([]byte("x"), message.Extensions{"k": "v"})
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(message.New([]byte("y"), nil)))

	var nilMsg *message.Message
	assert.True(t, nilMsg.Equal(nil))
	assert.False(t, nilMsg.Equal(a))
	assert.Contains(t, c.String(), "ExtensionMap_")
}

func TestInstrument(t *testing.T) {
	metrics := metric.NewMetrics()
	codec := message.Instrument(message.JSONCodec{}, metrics)

	_, err := codec.Encode(message.New([]byte("x"), nil))
	require.NoError(t, err)
	_, err = codec.Decode([]byte("{"))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CodecOperations.WithLabelValues("json", "encode", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CodecOperations.WithLabelValues("json", "decode", "error")))

	assert.Equal(t, message.JSONCodec{}, message.Instrument(message.JSONCodec{}, nil))
}

func FuzzJSONCodec_RoundTrip(f *testing.F) {
	f.Add([]byte("hello"), `{"k":"v"}`)
	f.Add([]byte{}, `{}`)
	f.Add([]byte{0xff, 0x00}, `{"n":1.5,"l":[true,null]}`)

	codec := message.JSONCodec{}
	f.Fuzz(func(t *testing.T, payload []byte, rawExt string) {
		var ext message.Extensions
		if err := json.Unmarshal([]byte(rawExt), &ext); err != nil {
			t.Skip()
		}
		if ext.Validate() != nil {
			t.Skip()
		}

		original := message.New(payload, ext)
		data, err := codec.Encode(original)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		decoded, err := codec.Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !bytes.Equal(decoded.Payload, payload) || !decoded.Equal(original) {
			t.Fatalf("round trip mismatch: %v vs %v", original, decoded)
		}
	})
}
