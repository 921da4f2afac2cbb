package moqtype

import (
	"errors"
	"fmt"

	"github.com/moqtail/moqt-go/wire"
)

// MaxKeyValueBytesLen is the maximum length of a KeyValuePair's blob value
// (the odd-type, length-prefixed form).
const MaxKeyValueBytesLen = 65535

// ErrKeyValueParity is returned when a KeyValuePair constructor is called
// with a type whose parity does not match the value kind being built
// (even types carry a varint value, odd types carry a length-prefixed blob).
var ErrKeyValueParity = errors.New("moqtype: key/value type parity mismatch")

// ErrKeyValueTooLong is returned when a blob value exceeds MaxKeyValueBytesLen.
var ErrKeyValueTooLong = errors.New("moqtype: key/value blob exceeds 65535 bytes")

// KeyValuePair is a MoQT parameter: an even Type carries a varint value,
// an odd Type carries a length-prefixed blob of at most 65535 bytes. Used
// for parameters on setup, subscribe, fetch, and announce messages.
type KeyValuePair struct {
	Type     uint64
	varint   uint64
	bytes    []byte
	isVarInt bool
}

// NewVarIntKV builds an even-typed KeyValuePair carrying a varint value.
// It fails if typ is odd.
func NewVarIntKV(typ uint64, value uint64) (KeyValuePair, error) {
	if typ%2 != 0 {
		return KeyValuePair{}, fmt.Errorf("moqtype: type %d must be even for a varint value: %w", typ, ErrKeyValueParity)
	}
	return KeyValuePair{Type: typ, varint: value, isVarInt: true}, nil
}

// NewBytesKV builds an odd-typed KeyValuePair carrying a blob value. It
// fails if typ is even or len(value) exceeds MaxKeyValueBytesLen.
func NewBytesKV(typ uint64, value []byte) (KeyValuePair, error) {
	if typ%2 == 0 {
		return KeyValuePair{}, fmt.Errorf("moqtype: type %d must be odd for a blob value: %w", typ, ErrKeyValueParity)
	}
	if len(value) > MaxKeyValueBytesLen {
		return KeyValuePair{}, fmt.Errorf("moqtype: blob length %d: %w", len(value), ErrKeyValueTooLong)
	}
	return KeyValuePair{Type: typ, bytes: value, isVarInt: false}, nil
}

// IsVarInt reports whether this pair carries a varint value (even type).
func (kv KeyValuePair) IsVarInt() bool { return kv.isVarInt }

// VarIntValue returns the varint value. Only meaningful when IsVarInt is true.
func (kv KeyValuePair) VarIntValue() uint64 { return kv.varint }

// BytesValue returns the blob value. Only meaningful when IsVarInt is false.
func (kv KeyValuePair) BytesValue() []byte { return kv.bytes }

// Equal reports structural equality.
func (kv KeyValuePair) Equal(o KeyValuePair) bool {
	if kv.Type != o.Type || kv.isVarInt != o.isVarInt {
		return false
	}
	if kv.isVarInt {
		return kv.varint == o.varint
	}
	return string(kv.bytes) == string(o.bytes)
}

// Serialize appends kv's wire form: [type:varint] (value:varint | (len:varint, bytes)).
func (kv KeyValuePair) Serialize(w wire.Writer) error {
	if err := w.WriteVarInt(kv.Type); err != nil {
		return err
	}
	if kv.isVarInt {
		return w.WriteVarInt(kv.varint)
	}
	return w.WriteVarIntBytes(kv.bytes)
}

// ParseKeyValuePair reads a KeyValuePair's wire form from r, choosing the
// value shape by the parity of the decoded type.
func ParseKeyValuePair(r wire.Reader) (KeyValuePair, error) {
	typ, err := r.ReadVarInt()
	if err != nil {
		return KeyValuePair{}, err
	}
	if typ%2 == 0 {
		v, err := r.ReadVarInt()
		if err != nil {
			return KeyValuePair{}, err
		}
		return KeyValuePair{Type: typ, varint: v, isVarInt: true}, nil
	}
	b, err := r.ReadVarIntBytes(MaxKeyValueBytesLen)
	if err != nil {
		return KeyValuePair{}, err
	}
	return KeyValuePair{Type: typ, bytes: append([]byte(nil), b...), isVarInt: false}, nil
}

// WriteParams appends a varint count followed by each param's wire form.
func WriteParams(w wire.Writer, params []KeyValuePair) error {
	if err := w.WriteVarInt(uint64(len(params))); err != nil {
		return err
	}
	for _, p := range params {
		if err := p.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadParams reads a varint count followed by that many KeyValuePairs.
func ReadParams(r wire.Reader) ([]KeyValuePair, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	params := make([]KeyValuePair, count)
	for i := uint64(0); i < count; i++ {
		kv, err := ParseKeyValuePair(r)
		if err != nil {
			return nil, err
		}
		params[i] = kv
	}
	return params, nil
}
