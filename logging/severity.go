package logging

import (
	"github.com/c360/edgeipc/errors"
)

// Severity is a level in the fixed ordered set TRACE < DEBUG < INFO <
// WARNING < ERROR < CRITICAL. The numeric values match the host's logging
// levels.
type Severity int

// Severities in increasing order.
const (
	SeverityTrace    Severity = 0 // also NOTSET
	SeverityDebug    Severity = 10
	SeverityInfo     Severity = 20
	SeverityWarning  Severity = 30
	SeverityError    Severity = 40
	SeverityCritical Severity = 50
)

// Routable lists the severities that own an output channel.
var Routable = []Severity{SeverityInfo, SeverityError, SeverityDebug, SeverityWarning, SeverityCritical}

var severityNames = map[Severity]string{
	SeverityTrace:    "TRACE",
	SeverityDebug:    "DEBUG",
	SeverityInfo:     "INFO",
	SeverityWarning:  "WARNING",
	SeverityError:    "ERROR",
	SeverityCritical: "CRITICAL",
}

// severityByName holds canonical names and aliases. Matching is case-sensitive.
var severityByName = map[string]Severity{
	"TRACE":    SeverityTrace,
	"NOTSET":   SeverityTrace,
	"DEBUG":    SeverityDebug,
	"INFO":     SeverityInfo,
	"WARNING":  SeverityWarning,
	"WARN":     SeverityWarning,
	"ERROR":    SeverityError,
	"CRITICAL": SeverityCritical,
	"FATAL":    SeverityCritical,
}

// String returns the canonical name.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether s is in the ordered set.
func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

// channel returns the severity whose channel carries records of s.
// TRACE shares the DEBUG channel.
func (s Severity) channel() Severity {
	if s == SeverityTrace {
		return SeverityDebug
	}
	return s
}

// ParseSeverity resolves a severity name. Unknown names are a caller defect
// and fail with errors.ErrUnknownSeverity.
func ParseSeverity(name string) (Severity, error) {
	if s, ok := severityByName[name]; ok {
		return s, nil
	}
	return 0, errors.UnknownSeverity("logging", "ParseSeverity", name)
}

// ParseThreshold resolves the minimum-severity setting. An empty value
// admits everything. Unrecognized values fail with errors.ErrConfiguration.
func ParseThreshold(value string) (Severity, error) {
	if value == "" {
		return SeverityTrace, nil
	}
	if s, ok := severityByName[value]; ok {
		return s, nil
	}
	return 0, errors.Configuration("logging", "ParseThreshold", "could not identify the log level %q", value)
}
