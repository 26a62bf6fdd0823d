package ipc

import (
	"context"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"
	"sync"

	"github.com/c360/edgeipc/errors"
	"github.com/c360/edgeipc/message"
	"github.com/c360/edgeipc/metric"
)

// DefaultMaxFrameSize bounds a single encoded message.
const DefaultMaxFrameSize = 16 << 20

const headerSize = 4

// Framing errors. Both are also errors.ErrEncoding. After either one the
// stream position is lost and no further frame can be read.
var (
	ErrTruncated     = stderrors.New("truncated frame")
	ErrFrameTooLarge = stderrors.New("frame too large")
)

func frameError(sentinel error, method, format string, args ...any) error {
	err := fmt.Errorf("%w: %w: %s", errors.ErrEncoding, sentinel, fmt.Sprintf(format, args...))
	return errors.WrapInvalid(err, "Stream", method, "framing")
}

// Frame directions as counted in metrics.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Stream carries messages over a byte stream as [length uint32 LE][encoded
// message] frames. One Send and one Receive may run concurrently; concurrent
// Sends are serialized so frames never interleave.
type Stream struct {
	r     io.Reader
	w     io.Writer
	codec message.Codec

	maxFrame int
	metrics  *metric.Metrics

	rmu sync.Mutex
	wmu sync.Mutex
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithMaxFrameSize overrides DefaultMaxFrameSize.
func WithMaxFrameSize(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.maxFrame = n
		}
	}
}

// WithStreamMetrics counts frames in each direction.
func WithStreamMetrics(m *metric.Metrics) StreamOption {
	return func(s *Stream) {
		s.metrics = m
	}
}

// NewStream reads frames from r and writes frames to w. Either may be nil
// for a one-way stream.
func NewStream(r io.Reader, w io.Writer, codec message.Codec, opts ...StreamOption) *Stream {
	s := &Stream{
		r:        r,
		w:        w,
		codec:    codec,
		maxFrame: DefaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Codec returns the stream's codec.
func (s *Stream) Codec() message.Codec {
	return s.codec
}

// Send encodes m and writes it as one frame.
func (s *Stream) Send(ctx context.Context, m *message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.w == nil {
		return errors.WrapFatal(errors.ErrNoConnection, "Stream", "Send", "write side")
	}

	body, err := s.codec.Encode(m)
	if err != nil {
		return err
	}
	if len(body) > s.maxFrame {
		return frameError(ErrFrameTooLarge, "Send", "%d bytes exceeds limit %d", len(body), s.maxFrame)
	}

	frame := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[headerSize:], body)

	s.wmu.Lock()
	_, err = s.w.Write(frame)
	s.wmu.Unlock()
	if err != nil {
		return errors.WrapTransient(err, "Stream", "Send", "write frame")
	}

	if s.metrics != nil {
		s.metrics.RecordFrame(DirectionOut)
	}
	return nil
}

// Receive reads and decodes the next frame. It returns io.EOF when the peer
// closes the stream between frames. ctx is checked before the read; a read
// already blocked ends when the underlying reader is closed.
func (s *Stream) Receive(ctx context.Context) (*message.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.r == nil {
		return nil, errors.WrapFatal(errors.ErrNoConnection, "Stream", "Receive", "read side")
	}

	s.rmu.Lock()
	body, err := s.readFrame()
	s.rmu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordFrame(DirectionIn)
	}
	return s.codec.Decode(body)
}

func (s *Stream) readFrame() ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(s.r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, frameError(ErrTruncated, "Receive", "partial header")
		}
		return nil, errors.WrapTransient(err, "Stream", "Receive", "read frame header")
	}

	length := binary.LittleEndian.Uint32(header[:])
	if uint64(length) > uint64(s.maxFrame) {
		return nil, frameError(ErrFrameTooLarge, "Receive", "%d bytes exceeds limit %d", length, s.maxFrame)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(s.r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, frameError(ErrTruncated, "Receive", "want %d bytes", length)
		}
		return nil, errors.WrapTransient(err, "Stream", "Receive", "read frame body")
	}
	return body, nil
}

// CloseRead closes the read side when the reader is an io.Closer, which
// unblocks a pending Receive.
func (s *Stream) CloseRead() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
