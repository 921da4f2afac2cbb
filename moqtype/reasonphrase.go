package moqtype

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/moqtail/moqt-go/wire"
)

// DefaultMaxReasonPhraseLen is the default cap on a ReasonPhrase's decoded
// length, matching spec's "implementation-defined max (default 1024 B)".
const DefaultMaxReasonPhraseLen = 1024

// ErrReasonPhraseTooLong is returned when a decoded reason phrase exceeds
// the configured maximum length.
var ErrReasonPhraseTooLong = errors.New("moqtype: reason phrase exceeds max length")

// ErrInvalidUTF8 is returned when a reason phrase's bytes are not valid UTF-8.
var ErrInvalidUTF8 = errors.New("moqtype: invalid UTF-8")

// ReasonPhrase is a length-prefixed UTF-8 string used on error and status
// messages throughout the control codec.
type ReasonPhrase struct {
	Text string
}

// NewReasonPhrase builds a ReasonPhrase, validating it is valid UTF-8 and
// within maxLen (0 uses DefaultMaxReasonPhraseLen).
func NewReasonPhrase(text string, maxLen int) (ReasonPhrase, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxReasonPhraseLen
	}
	if !utf8.ValidString(text) {
		return ReasonPhrase{}, ErrInvalidUTF8
	}
	if len(text) > maxLen {
		return ReasonPhrase{}, fmt.Errorf("moqtype: length %d exceeds %d: %w", len(text), maxLen, ErrReasonPhraseTooLong)
	}
	return ReasonPhrase{Text: text}, nil
}

// Serialize appends the reason phrase's wire form: [len:varint, utf-8 bytes].
func (p ReasonPhrase) Serialize(w wire.Writer) error {
	return w.WriteVarIntBytes([]byte(p.Text))
}

// ParseReasonPhrase reads a ReasonPhrase's wire form from r, enforcing maxLen
// (0 uses DefaultMaxReasonPhraseLen).
func ParseReasonPhrase(r wire.Reader, maxLen int) (ReasonPhrase, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxReasonPhraseLen
	}
	b, err := r.ReadVarIntBytes(uint64(maxLen))
	if err != nil {
		return ReasonPhrase{}, err
	}
	if !utf8.Valid(b) {
		return ReasonPhrase{}, ErrInvalidUTF8
	}
	return ReasonPhrase{Text: string(b)}, nil
}
