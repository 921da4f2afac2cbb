package moqtype

import "github.com/moqtail/moqt-go/wire"

// FullTrackName globally identifies a track: a namespace Tuple plus a
// track name. Sessions shorten this to a per-session TrackAlias on the
// wire once a subscription is established.
type FullTrackName struct {
	Namespace Tuple
	Name      []byte
}

// NewFullTrackName builds a FullTrackName from a namespace path and a
// track name string.
func NewFullTrackName(namespace Tuple, name string) FullTrackName {
	return FullTrackName{Namespace: namespace, Name: []byte(name)}
}

// Equal reports structural equality.
func (f FullTrackName) Equal(o FullTrackName) bool {
	return f.Namespace.Equal(o.Namespace) && string(f.Name) == string(o.Name)
}

// Serialize appends f's wire form: namespace Tuple, then [len, bytes] name.
func (f FullTrackName) Serialize(w wire.Writer) error {
	if err := f.Namespace.Serialize(w); err != nil {
		return err
	}
	return w.WriteVarIntBytes(f.Name)
}

// ParseFullTrackName reads a FullTrackName's wire form from r.
func ParseFullTrackName(r wire.Reader) (FullTrackName, error) {
	ns, err := ParseTuple(r)
	if err != nil {
		return FullTrackName{}, err
	}
	name, err := r.ReadVarIntBytes(0)
	if err != nil {
		return FullTrackName{}, err
	}
	return FullTrackName{Namespace: ns, Name: append([]byte(nil), name...)}, nil
}
