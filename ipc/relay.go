package ipc

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/c360/edgeipc/errors"
	"github.com/c360/edgeipc/message"
)

// ReplySuffix is appended to the publish subject to form the reply subject.
const ReplySuffix = ".reply"

// Relay pumps frames between a Stream and a NATSTransport: frames read from
// the stream are published on Subject, and messages arriving on
// Subject+ReplySuffix are written back to the stream. Without a transport it
// echoes every frame.
type Relay struct {
	Stream    *Stream
	Transport *NATSTransport
	Subject   string
	Logger    *slog.Logger
}

// Run blocks until the stream reaches EOF, a pump fails or ctx is done. EOF
// and cancellation are a clean stop.
func (r *Relay) Run(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblock a pending Receive once the relay is stopping.
	stop := context.AfterFunc(ctx, func() { _ = r.Stream.CloseRead() })
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	sink := r.Stream.Send
	if r.Transport != nil {
		replies := make(chan *message.Message, 64)
		reply := r.Subject + ReplySuffix
		err := r.Transport.Subscribe(gctx, reply, func(_ context.Context, m *message.Message) {
			select {
			case replies <- m:
			case <-gctx.Done():
			}
		})
		if err != nil {
			return errors.Wrap(err, "Relay", "Run", "subscribe "+reply)
		}

		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case m := <-replies:
					if err := r.Stream.Send(gctx, m); err != nil {
						return errors.Wrap(err, "Relay", "Run", "write reply")
					}
				}
			}
		})

		sink = func(ctx context.Context, m *message.Message) error {
			return r.Transport.Publish(ctx, r.Subject, m)
		}
		logger.Info("Relaying frames", "subject", r.Subject, "reply", reply)
	} else {
		logger.Info("Echoing frames")
	}

	g.Go(func() error {
		defer cancel()
		for {
			m, err := r.Stream.Receive(gctx)
			switch {
			case err == nil:
			case err == io.EOF, gctx.Err() != nil:
				return nil
			case stderrors.Is(err, ErrTruncated):
				logger.Warn("Stream ended mid-frame", "error", err)
				return nil
			case stderrors.Is(err, ErrFrameTooLarge):
				return errors.Wrap(err, "Relay", "Run", "read frame")
			case errors.IsEncoding(err):
				logger.Warn("Dropping undecodable frame", "error", err)
				continue
			default:
				return errors.Wrap(err, "Relay", "Run", "read frame")
			}

			if err := sink(gctx, m); err != nil {
				if errors.IsTransient(err) {
					logger.Warn("Forward failed", "error", err)
					continue
				}
				return errors.Wrap(err, "Relay", "Run", "forward frame")
			}
		}
	})

	err := g.Wait()
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
