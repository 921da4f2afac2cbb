// Package moqtype implements the common MoQT model types shared by the
// control and data object codecs: Location, Tuple, FullTrackName,
// KeyValuePair, and ReasonPhrase. Each offers Serialize/Parse against the
// wire package's Reader/Writer contracts, and equality/ordering are
// structural per spec.
package moqtype

import "github.com/moqtail/moqt-go/wire"

// Location is the sequencing key for every MoQT object: an ordered pair
// of (group, object). Group and Object are logically u62 values (the
// varint range); Go's uint64 is used as the in-memory representation.
type Location struct {
	Group  uint64
	Object uint64
}

// Compare returns -1, 0, or 1 comparing l to o, ordering first by Group
// then by Object.
func (l Location) Compare(o Location) int {
	switch {
	case l.Group < o.Group:
		return -1
	case l.Group > o.Group:
		return 1
	case l.Object < o.Object:
		return -1
	case l.Object > o.Object:
		return 1
	default:
		return 0
	}
}

// Less reports whether l sorts before o.
func (l Location) Less(o Location) bool {
	return l.Compare(o) < 0
}

// Serialize appends l's wire form (two varints) to w.
func (l Location) Serialize(w wire.Writer) error {
	if err := w.WriteVarInt(l.Group); err != nil {
		return err
	}
	return w.WriteVarInt(l.Object)
}

// ParseLocation reads a Location's wire form from r.
func ParseLocation(r wire.Reader) (Location, error) {
	group, err := r.ReadVarInt()
	if err != nil {
		return Location{}, err
	}
	object, err := r.ReadVarInt()
	if err != nil {
		return Location{}, err
	}
	return Location{Group: group, Object: object}, nil
}
