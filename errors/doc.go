// Package errors provides standardized error handling for edgeipc.
//
// # Overview
//
// Every failure in the transport and logging layer propagates synchronously to
// the immediate caller as a classified error. Nothing is logged-and-continued:
// this layer is the logging layer, so it cannot report its own faults through
// itself. The runtime supervisor at the boundary decides what is fatal.
//
// # Domain errors
//
//   - ErrEncoding: malformed or non-serializable message data (invalid class)
//   - ErrConfiguration: missing or invalid environment settings (fatal class)
//   - ErrUnknownSeverity: a severity outside the ordered set (invalid class)
//   - ErrFormat: a version string without a leading major.minor (invalid class)
//
// Match them with the standard library:
//
//	msg, err := codec.Decode(data)
//	if errors.Is(err, edgeerrors.ErrEncoding) {
//	    // reject the frame
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: <cause>"
//
// Use Wrap for plain context and WrapTransient, WrapInvalid or WrapFatal to
// attach a class. The constructors Encoding, Configuration, UnknownSeverity
// and Format build the domain errors in one call.
package errors
