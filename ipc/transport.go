package ipc

import (
	"context"
	"log/slog"

	"github.com/c360/edgeipc/message"
	"github.com/c360/edgeipc/metric"
)

// Publisher sends raw bytes on a subject. natsclient.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Subscriber delivers raw bytes published on a subject.
type Subscriber interface {
	Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error
}

// PubSub is both halves.
type PubSub interface {
	Publisher
	Subscriber
}

// Transport frame outcomes as counted in metrics.
const (
	DirectionPublished = "published"
	DirectionDelivered = "delivered"
	DirectionRejected  = "rejected"
)

// NATSTransport moves encoded messages over a publish/subscribe connection.
type NATSTransport struct {
	conn    PubSub
	codec   message.Codec
	logger  *slog.Logger
	metrics *metric.Metrics
}

// TransportOption configures a NATSTransport.
type TransportOption func(*NATSTransport)

// WithLogger sets the logger for rejected messages.
func WithLogger(logger *slog.Logger) TransportOption {
	return func(t *NATSTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTransportMetrics counts published, delivered and rejected messages.
func WithTransportMetrics(m *metric.Metrics) TransportOption {
	return func(t *NATSTransport) {
		t.metrics = m
	}
}

// NewNATSTransport encodes with codec and sends through conn.
func NewNATSTransport(conn PubSub, codec message.Codec, opts ...TransportOption) *NATSTransport {
	t := &NATSTransport{
		conn:   conn,
		codec:  codec,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "ipc", "codec", codec.Name())
	return t
}

// Publish encodes m and publishes it on subject.
func (t *NATSTransport) Publish(ctx context.Context, subject string, m *message.Message) error {
	data, err := t.codec.Encode(m)
	if err != nil {
		return err
	}
	if err := t.conn.Publish(ctx, subject, data); err != nil {
		return err
	}
	t.record(DirectionPublished)
	return nil
}

// Subscribe decodes everything published on subject and passes it to
// handler. Undecodable payloads are logged and dropped.
func (t *NATSTransport) Subscribe(ctx context.Context, subject string, handler func(context.Context, *message.Message)) error {
	return t.conn.Subscribe(ctx, subject, func(msgCtx context.Context, data []byte) {
		m, err := t.codec.Decode(data)
		if err != nil {
			t.record(DirectionRejected)
			t.logger.Warn("Dropping undecodable message", "subject", subject, "bytes", len(data), "error", err)
			return
		}
		t.record(DirectionDelivered)
		handler(msgCtx, m)
	})
}

func (t *NATSTransport) record(direction string) {
	if t.metrics != nil {
		t.metrics.RecordFrame(direction)
	}
}
