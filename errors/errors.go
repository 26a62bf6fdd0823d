// Package errors provides the error taxonomy shared by edgeipc packages.
// It includes error classification, the domain sentinel errors and helper
// functions for consistent error wrapping across the runtime boundary.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or caller defects
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors; the process must not proceed
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Domain errors. Callers match them with errors.Is regardless of the
// wrapping applied on the way up.
var (
	// ErrEncoding reports malformed or non-serializable message data.
	// Encoding is deterministic, so it is never retried.
	ErrEncoding = errors.New("encoding error")

	// ErrConfiguration reports missing or invalid environment-provided settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownSeverity reports a severity outside the fixed ordered set.
	ErrUnknownSeverity = errors.New("unknown severity")

	// ErrFormat reports a version string without a leading major.minor.
	ErrFormat = errors.New("format error")
)

// Standard error variables for common conditions
var (
	// Connection and networking errors
	ErrNoConnection      = errors.New("no connection available")
	ErrConnectionLost    = errors.New("connection lost")
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrCircuitOpen       = errors.New("circuit breaker open")

	// Lifecycle errors
	ErrAlreadyStarted = errors.New("already started")
	ErrShuttingDown   = errors.New("shutting down")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and should be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	if errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrNoConnection) ||
		errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	// Domain errors are deterministic
	if isDomain(err) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"connection",
		"temporary",
		"unavailable",
		"broken pipe",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsFatal checks if an error is fatal and should stop the process
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrConfiguration)
}

// IsInvalid checks if an error is due to invalid input or a caller defect
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrEncoding) ||
		errors.Is(err, ErrUnknownSeverity) ||
		errors.Is(err, ErrFormat)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	if IsFatal(err) {
		return ErrorFatal
	}
	if IsInvalid(err) {
		return ErrorInvalid
	}

	// Unknown errors default to transient to allow retry
	return ErrorTransient
}

// IsEncoding reports whether err is an encoding error.
func IsEncoding(err error) bool { return errors.Is(err, ErrEncoding) }

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsUnknownSeverity reports whether err is an unknown severity error.
func IsUnknownSeverity(err error) bool { return errors.Is(err, ErrUnknownSeverity) }

// IsFormat reports whether err is a version format error.
func IsFormat(err error) bool { return errors.Is(err, ErrFormat) }

func isDomain(err error) bool {
	return IsEncoding(err) || IsConfiguration(err) || IsUnknownSeverity(err) || IsFormat(err)
}

// newClassified creates a new classified error
// This is an internal helper - use WrapTransient(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// Encoding returns an invalid-class error wrapping ErrEncoding.
func Encoding(component, method, format string, args ...any) error {
	return WrapInvalid(fmt.Errorf("%w: %s", ErrEncoding, fmt.Sprintf(format, args...)), component, method, "encoding")
}

// Configuration returns a fatal-class error wrapping ErrConfiguration.
func Configuration(component, method, format string, args ...any) error {
	return WrapFatal(fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...)), component, method, "configuration")
}

// UnknownSeverity returns an invalid-class error wrapping ErrUnknownSeverity.
func UnknownSeverity(component, method string, severity any) error {
	return WrapInvalid(fmt.Errorf("%w: %v", ErrUnknownSeverity, severity), component, method, "severity lookup")
}

// Format returns an invalid-class error wrapping ErrFormat.
func Format(component, method, format string, args ...any) error {
	return WrapInvalid(fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...)), component, method, "parse")
}
