// Package session implements the MoQT connection-level state machine:
// version negotiation, request-id credit, the track-alias table, the
// Subscribe/Fetch/PublishNamespace sub-state machines, data-stream
// routing into per-subscription playout buffers, and graceful shutdown.
// Grounded on internal/distribution/moq_session.go's MoQSession, which
// this module generalizes from an app-specific (hardcoded track names,
// server-only) session into the full client+server-capable model
// spec.md describes.
package session

import (
	"errors"
	"fmt"
)

// TerminationCode is the numeric session-close reason, per spec.md §6.
type TerminationCode uint32

const (
	NoError                  TerminationCode = 0x00
	InternalError            TerminationCode = 0x01
	Unauthorized             TerminationCode = 0x02
	ProtocolViolation        TerminationCode = 0x03
	InvalidRequestId         TerminationCode = 0x04
	DuplicateTrackAlias      TerminationCode = 0x05
	KeyValueFormattingError  TerminationCode = 0x06
	TooManyRequests          TerminationCode = 0x07
	GoAwayTimeout            TerminationCode = 0x10
	ControlMessageTimeout    TerminationCode = 0x11
	DataStreamTimeout        TerminationCode = 0x12
	VersionNegotiationFailed TerminationCode = 0x15
)

func (c TerminationCode) String() string {
	switch c {
	case NoError:
		return "NO_ERROR"
	case InternalError:
		return "INTERNAL_ERROR"
	case Unauthorized:
		return "UNAUTHORIZED"
	case ProtocolViolation:
		return "PROTOCOL_VIOLATION"
	case InvalidRequestId:
		return "INVALID_REQUEST_ID"
	case DuplicateTrackAlias:
		return "DUPLICATE_TRACK_ALIAS"
	case KeyValueFormattingError:
		return "KEY_VALUE_FORMATTING_ERROR"
	case TooManyRequests:
		return "TOO_MANY_REQUESTS"
	case GoAwayTimeout:
		return "GOAWAY_TIMEOUT"
	case ControlMessageTimeout:
		return "CONTROL_MESSAGE_TIMEOUT"
	case DataStreamTimeout:
		return "DATA_STREAM_TIMEOUT"
	case VersionNegotiationFailed:
		return "VERSION_NEGOTIATION_FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(0x%x)", uint32(c))
	}
}

// Termination is a fatal session-ending error carrying its numeric code
// and a human-readable reason, surfaced on Session's error channel.
type Termination struct {
	Code   TerminationCode
	Reason string
	Err    error
}

func (t *Termination) Error() string {
	if t.Err != nil {
		return fmt.Sprintf("session: %s: %s: %v", t.Code, t.Reason, t.Err)
	}
	return fmt.Sprintf("session: %s: %s", t.Code, t.Reason)
}

func (t *Termination) Unwrap() error { return t.Err }

func terminate(code TerminationCode, reason string, err error) *Termination {
	return &Termination{Code: code, Reason: reason, Err: err}
}

// Operational errors (spec.md §7), local to a single request.
var (
	ErrTimeout          = errors.New("session: request timed out")
	ErrTooManyRequests  = errors.New("session: request-id credit exhausted")
	ErrCancelled        = errors.New("session: request cancelled")
	ErrSessionClosed    = errors.New("session: session closed")
	ErrUnknownRequestId = errors.New("session: response for unknown request id")
)
