package moqtype

import (
	"strings"

	"github.com/moqtail/moqt-go/wire"
)

// TupleField is a single length-prefixed byte string element of a Tuple.
type TupleField []byte

// String returns a UTF-8 view of the field.
func (f TupleField) String() string { return string(f) }

// Tuple is an ordered sequence of TupleFields, used for namespace paths.
// Ordering is insertion order, not sorted: two Tuples with the same
// elements in different orders are not equal.
type Tuple struct {
	Fields []TupleField
}

// NewTuple builds a Tuple from raw byte fields.
func NewTuple(fields ...[]byte) Tuple {
	t := Tuple{Fields: make([]TupleField, len(fields))}
	for i, f := range fields {
		t.Fields[i] = TupleField(f)
	}
	return t
}

// TuplePath splits a '/'-delimited path string into a Tuple, dropping
// leading empty segments (so "/a/b" and "a/b" both yield ["a","b"]).
// This is lossy by design: an empty segment in the middle of the path
// (e.g. "a//b") still becomes its own (empty) field.
func TuplePath(path string) Tuple {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return Tuple{}
	}
	parts := strings.Split(path, "/")
	t := Tuple{Fields: make([]TupleField, len(parts))}
	for i, p := range parts {
		t.Fields[i] = TupleField(p)
	}
	return t
}

// Path joins the Tuple's fields with '/' to form a path string.
func (t Tuple) Path() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, "/")
}

// Equal reports whether t and o have the same fields in the same order.
func (t Tuple) Equal(o Tuple) bool {
	if len(t.Fields) != len(o.Fields) {
		return false
	}
	for i := range t.Fields {
		if string(t.Fields[i]) != string(o.Fields[i]) {
			return false
		}
	}
	return true
}

// Serialize appends t's wire form: [count:varint] [len:varint, bytes]...
func (t Tuple) Serialize(w wire.Writer) error {
	if err := w.WriteVarInt(uint64(len(t.Fields))); err != nil {
		return err
	}
	for _, f := range t.Fields {
		if err := w.WriteVarIntBytes(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseTuple reads a Tuple's wire form from r.
func ParseTuple(r wire.Reader) (Tuple, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return Tuple{}, err
	}
	fields := make([]TupleField, count)
	for i := uint64(0); i < count; i++ {
		b, err := r.ReadVarIntBytes(0)
		if err != nil {
			return Tuple{}, err
		}
		fields[i] = TupleField(append([]byte(nil), b...))
	}
	return Tuple{Fields: fields}, nil
}
