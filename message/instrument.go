package message

import (
	"github.com/c360/edgeipc/metric"
)

type instrumentedCodec struct {
	Codec
	metrics *metric.Metrics
}

// Instrument wraps codec so every operation is counted. A nil metrics
// returns codec unchanged.
func Instrument(codec Codec, metrics *metric.Metrics) Codec {
	if metrics == nil {
		return codec
	}
	return &instrumentedCodec{Codec: codec, metrics: metrics}
}

func (c *instrumentedCodec) Encode(m *Message) ([]byte, error) {
	data, err := c.Codec.Encode(m)
	c.metrics.RecordCodec(c.Name(), "encode", err)
	return data, err
}

func (c *instrumentedCodec) Decode(data []byte) (*Message, error) {
	m, err := c.Codec.Decode(data)
	c.metrics.RecordCodec(c.Name(), "decode", err)
	return m, err
}
