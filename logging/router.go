package logging

import (
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"slices"
	"sync"

	"github.com/c360/edgeipc/errors"
	"github.com/c360/edgeipc/metric"
)

// channel serializes writes to one output endpoint so lines never tear.
type channel struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *channel) writeLine(line []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(line) > 0 {
		n, err := c.w.Write(line)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		line = line[n:]
	}
	return nil
}

// Router maps each routable severity to its output channel and drops records
// below the minimum severity before any write. It is built once per process
// and is safe for concurrent use.
type Router struct {
	channels  map[Severity]*channel
	threshold Severity
	metrics   *metric.Metrics
}

// Option configures a Router.
type Option func(*Router)

// WithMetrics counts routed, dropped and failed records.
func WithMetrics(m *metric.Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// NewRouter builds the route table. Every routable severity needs a non-nil
// writer; severities given the same writer share one lock.
func NewRouter(writers map[Severity]io.Writer, threshold Severity, opts ...Option) (*Router, error) {
	if !threshold.Valid() {
		return nil, errors.Configuration("Router", "NewRouter", "invalid minimum severity %d", int(threshold))
	}

	r := &Router{
		channels:  make(map[Severity]*channel, len(Routable)),
		threshold: threshold,
	}

	shared := make(map[io.Writer]*channel)
	for _, sev := range Routable {
		w, ok := writers[sev]
		if !ok || w == nil {
			return nil, errors.Configuration("Router", "NewRouter", "no channel for severity %s", sev)
		}

		// Comparable on the value, not the type: an interface field may hold
		// an unhashable writer.
		if !reflect.ValueOf(w).Comparable() {
			r.channels[sev] = &channel{w: w}
			continue
		}
		ch, ok := shared[w]
		if !ok {
			ch = &channel{w: w}
			shared[w] = ch
		}
		r.channels[sev] = ch
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// OpenChannels wraps inherited descriptors as writable files. Descriptor 0 is
// a valid handle. Severities sharing a descriptor share one file.
// Descriptors are adopted in severity order; on error every file opened so
// far is closed.
func OpenChannels(fds map[Severity]int) (_ map[Severity]io.Writer, err error) {
	files := make(map[int]*os.File)
	writers := make(map[Severity]io.Writer, len(fds))

	defer func() {
		if err != nil {
			for _, f := range files {
				_ = f.Close()
			}
		}
	}()

	for _, sev := range slices.Sorted(maps.Keys(fds)) {
		fd := fds[sev]
		if !sev.Valid() {
			return nil, errors.UnknownSeverity("logging", "OpenChannels", int(sev))
		}
		if fd < 0 {
			return nil, errors.Configuration("logging", "OpenChannels", "negative descriptor %d for %s", fd, sev)
		}

		f, ok := files[fd]
		if !ok {
			f = os.NewFile(uintptr(fd), fmt.Sprintf("log-%s", sev))
			if f == nil {
				return nil, errors.Configuration("logging", "OpenChannels", "invalid descriptor %d for %s", fd, sev)
			}
			files[fd] = f
		}
		writers[sev] = f
	}

	return writers, nil
}

// Threshold returns the minimum severity.
func (r *Router) Threshold() Severity {
	return r.threshold
}

// Enabled reports whether records of sev pass the minimum-severity filter.
func (r *Router) Enabled(sev Severity) bool {
	return sev >= r.threshold
}

// Route writes rec to its severity's channel as one complete line, or drops
// it when below the threshold. Writes block on channel back-pressure.
func (r *Router) Route(rec Record) error {
	if !rec.Severity.Valid() {
		return errors.UnknownSeverity("Router", "Route", int(rec.Severity))
	}

	name := rec.Severity.String()
	if rec.Severity < r.threshold {
		if r.metrics != nil {
			r.metrics.RecordDropped(name)
		}
		return nil
	}

	line := rec.AppendLine(make([]byte, 0, len(rec.Message)+32))
	if err := r.channels[rec.Severity.channel()].writeLine(line); err != nil {
		if r.metrics != nil {
			r.metrics.RecordRouteError(name)
		}
		return errors.WrapTransient(err, "Router", "Route", fmt.Sprintf("write %s line", name))
	}

	if r.metrics != nil {
		r.metrics.RecordRouted(name)
	}
	return nil
}
