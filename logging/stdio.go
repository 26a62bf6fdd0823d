package logging

import (
	"bytes"
	"log"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
)

type marker struct{}

// pkgPrefix matches the functions and methods of this package.
var pkgPrefix = reflect.TypeOf(marker{}).PkgPath() + "."

// skipPrefixes are the frames between a user print call and the adapter.
var skipPrefixes = []string{"fmt.", "log.", "io.", "bufio.", "os.(*File)."}

func skipFrame(function string) bool {
	if strings.HasPrefix(function, pkgPrefix) {
		return true
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(function, p) {
			return true
		}
	}
	return false
}

// CallerOrigin returns the first frame outside the printing machinery and
// this package, skipping skip additional frames.
func CallerOrigin(skip int) Origin {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !skipFrame(frame.Function) {
			return Origin{File: filepath.Base(frame.File), Line: frame.Line}
		}
		if !more {
			break
		}
	}
	return Origin{}
}

// StdioWriter turns plain text writes into log records at a fixed severity.
// It holds no state besides its severity and router.
type StdioWriter struct {
	router   *Router
	severity Severity
}

// NewStdioWriter returns a writer that routes each write as one record.
func NewStdioWriter(router *Router, severity Severity) *StdioWriter {
	return &StdioWriter{router: router, severity: severity}
}

// Write routes p as one record. A write of exactly "\n" is the trailing
// newline print emits separately and produces nothing. One trailing newline
// is dropped, since Fprintln sends it in the same write and the record line
// carries its own.
func (w *StdioWriter) Write(p []byte) (int, error) {
	if len(p) == 1 && p[0] == '\n' {
		return len(p), nil
	}
	text := bytes.TrimSuffix(p, []byte{'\n'})
	if err := w.WriteAt(CallerOrigin(1), string(text)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteAt routes text with an explicit origin.
func (w *StdioWriter) WriteAt(origin Origin, text string) error {
	if text == "\n" {
		return nil
	}
	return w.router.Route(Record{Severity: w.severity, Message: text, Origin: origin})
}

// stdLogWriter adapts the standard logger, which appends the newline in
// the same write.
type stdLogWriter struct {
	w *StdioWriter
}

func (s stdLogWriter) Write(p []byte) (int, error) {
	text := bytes.TrimSuffix(p, []byte{'\n'})
	if err := s.w.WriteAt(CallerOrigin(1), string(text)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// RedirectStdLog points the standard library log package at the router. Its
// prefix and flags are cleared since records carry their own origin.
func RedirectStdLog(router *Router, severity Severity) {
	log.SetFlags(0)
	log.SetPrefix("")
	log.SetOutput(stdLogWriter{w: NewStdioWriter(router, severity)})
}
