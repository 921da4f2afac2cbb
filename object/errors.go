// Package object implements the MoQT data-stream codec: the per-stream
// header (track alias, group, optional subgroup) and the per-object
// frame (location, priority, extension headers, payload) carried on
// unidirectional QUIC/WebTransport streams, plus the typed LOC header
// extension accessors layered on moqtype.KeyValuePair.
package object

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSubgroupId is returned when constructing a Subgroup-preference
	// object without a subgroup id.
	ErrMissingSubgroupId = errors.New("object: subgroup id required for Subgroup forwarding preference")
	// ErrUnexpectedSubgroupId is returned when a non-Subgroup object carries
	// a subgroup id.
	ErrUnexpectedSubgroupId = errors.New("object: subgroup id not allowed for this forwarding preference")
	// ErrInvalidForwardingPreference is returned for an unrecognized
	// ForwardingPreference code.
	ErrInvalidForwardingPreference = errors.New("object: invalid forwarding preference")
	// ErrExtensionTypeMismatch is returned when a typed extension accessor
	// is used against a KeyValuePair of the wrong wire kind (varint vs blob).
	ErrExtensionTypeMismatch = errors.New("object: extension type/value kind mismatch")
)

// FrameError wraps a decode failure with the field being parsed, in the
// same sentinel+wrapper idiom as wire.DecodeError and control.ParseError.
type FrameError struct {
	Field string
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("object: read %s: %v", e.Field, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
