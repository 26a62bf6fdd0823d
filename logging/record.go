package logging

import (
	"path/filepath"
	"strconv"
)

// Origin is the source location of a log call.
type Origin struct {
	File string
	Line int
}

// Record is a single log emission. It is routed immediately and never
// buffered.
type Record struct {
	Severity Severity
	Message  string
	Origin   Origin
}

// AppendLine appends the wire form "<basename>:<line>,<message>\n" to buf.
func (r Record) AppendLine(buf []byte) []byte {
	if r.Origin.File != "" {
		buf = append(buf, filepath.Base(r.Origin.File)...)
	}
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(r.Origin.Line), 10)
	buf = append(buf, ',')
	buf = append(buf, r.Message...)
	return append(buf, '\n')
}

// Line returns the wire form of the record.
func (r Record) Line() string {
	return string(r.AppendLine(make([]byte, 0, len(r.Message)+32)))
}
