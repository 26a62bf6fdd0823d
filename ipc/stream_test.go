package ipc_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/edgeipc/errors"
	"github.com/c360/edgeipc/ipc"
	"github.com/c360/edgeipc/message"
	"github.com/c360/edgeipc/metric"
)

func sample(payload string) *message.Message {
	return message.New([]byte(payload), message.Extensions{"context": map[string]any{"id": "abc"}})
}

func TestStream_RoundTrip(t *testing.T) {
	for _, codec := range []message.Codec{message.JSONCodec{}, message.MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			metrics := metric.NewMetrics()
			out := ipc.NewStream(nil, &buf, codec, ipc.WithStreamMetrics(metrics))
			ctx := context.Background()

			require.NoError(t, out.Send(ctx, sample("one")))
			require.NoError(t, out.Send(ctx, sample("two")))
			require.NoError(t, out.Send(ctx, message.New(nil, nil)))

			in := ipc.NewStream(&buf, nil, codec, ipc.WithStreamMetrics(metrics))
			for _, want := range []*message.Message{sample("one"), sample("two"), message.New(nil, nil)} {
				got, err := in.Receive(ctx)
				require.NoError(t, err)
				assert.True(t, want.Equal(got), "got %s", got)
			}

			_, err := in.Receive(ctx)
			assert.ErrorIs(t, err, io.EOF)

			assert.Equal(t, 3.0, testutil.ToFloat64(metrics.FramesTotal.WithLabelValues(ipc.DirectionOut)))
			assert.Equal(t, 3.0, testutil.ToFloat64(metrics.FramesTotal.WithLabelValues(ipc.DirectionIn)))
		})
	}
}

func TestStream_FrameLayout(t *testing.T) {
	var buf bytes.Buffer
	s := ipc.NewStream(nil, &buf, message.JSONCodec{})
	require.NoError(t, s.Send(context.Background(), message.New([]byte("hi"), nil)))

	body := `{"Payload":"aGk=","ExtensionMap_":{}}`
	require.Equal(t, 4+len(body), buf.Len())
	assert.Equal(t, uint32(len(body)), binary.LittleEndian.Uint32(buf.Bytes()[:4]))
	assert.Equal(t, body, buf.String()[4:])
}

func frame(body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(out, uint32(len(body)))
	copy(out[4:], body)
	return out
}

func TestStream_ReceiveErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		input    []byte
		sentinel error
	}{
		{"partial header", []byte{1, 0}, ipc.ErrTruncated},
		{"partial body", frame([]byte(`{"Payload":""}`))[:8], ipc.ErrTruncated},
		{"oversized", frame(bytes.Repeat([]byte("x"), 64)), ipc.ErrFrameTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ipc.NewStream(bytes.NewReader(tt.input), nil, message.JSONCodec{}, ipc.WithMaxFrameSize(32))
			_, err := s.Receive(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, errors.IsEncoding(err))
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestStream_UndecodableFrameIsSkippable(t *testing.T) {
	var input bytes.Buffer
	input.Write(frame([]byte(`not json`)))
	input.Write(frame([]byte(`{"Payload":"","ExtensionMap_":{}}`)))

	s := ipc.NewStream(&input, nil, message.JSONCodec{})
	_, err := s.Receive(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsEncoding(err))
	assert.NotErrorIs(t, err, ipc.ErrTruncated)

	m, err := s.Receive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m.Payload)
}

func TestStream_SendErrors(t *testing.T) {
	var buf bytes.Buffer
	s := ipc.NewStream(nil, &buf, message.JSONCodec{}, ipc.WithMaxFrameSize(16))

	err := s.Send(context.Background(), message.New(bytes.Repeat([]byte("x"), 64), nil))
	assert.ErrorIs(t, err, ipc.ErrFrameTooLarge)
	assert.Zero(t, buf.Len())

	err = s.Send(context.Background(), message.New(nil, message.Extensions{"Payload": 1}))
	assert.True(t, errors.IsEncoding(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, message.New(nil, nil)), context.Canceled)

	_, err = s.Receive(context.Background())
	assert.True(t, errors.IsFatal(err), "stream without a reader")
}

func TestStream_ConcurrentSendsDoNotInterleave(t *testing.T) {
	pr, pw := io.Pipe()
	out := ipc.NewStream(nil, pw, message.MsgpackCodec{})
	in := ipc.NewStream(pr, nil, message.MsgpackCodec{})
	ctx := context.Background()

	const senders, each = 4, 50
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				assert.NoError(t, out.Send(ctx, sample("payload")))
			}
		}()
	}
	go func() {
		wg.Wait()
		_ = pw.Close()
	}()

	count := 0
	for {
		m, err := in.Receive(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), m.Payload)
		count++
	}
	assert.Equal(t, senders*each, count)
}

func TestStream_CloseReadUnblocksReceive(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := ipc.NewStream(pr, nil, message.JSONCodec{})

	done := make(chan error, 1)
	go func() {
		_, err := s.Receive(context.Background())
		done <- err
	}()

	require.NoError(t, s.CloseRead())
	err := <-done
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.True(t, errors.IsTransient(err))
}
