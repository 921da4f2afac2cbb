package object

import "github.com/moqtail/moqt-go/wire"

// StreamHeader is the framing that begins every unidirectional data
// stream: the track it belongs to, its group, and (for Subgroup-mapped
// streams only) the subgroup within that group. One StreamHeader is
// followed by zero or more Frames, all sharing its TrackAlias/Group.
type StreamHeader struct {
	TrackAlias uint64
	Group      uint64
	Subgroup   uint64 // meaningful only when Pref == ForwardingSubgroup
	Pref       ForwardingPreference
}

// Serialize appends h's wire form: trackAlias, group, and (Subgroup
// preference only) subgroup.
func (h StreamHeader) Serialize(w wire.Writer) error {
	if err := w.WriteVarInt(h.TrackAlias); err != nil {
		return err
	}
	if err := w.WriteVarInt(h.Group); err != nil {
		return err
	}
	if h.Pref == ForwardingSubgroup {
		if err := w.WriteVarInt(h.Subgroup); err != nil {
			return err
		}
	}
	return nil
}

// ParseStreamHeader reads a StreamHeader from r. pref must be supplied by
// the caller (the session knows a stream's forwarding preference from the
// subscription it was opened under; it is not self-describing on the wire).
func ParseStreamHeader(r wire.Reader, pref ForwardingPreference) (StreamHeader, error) {
	h := StreamHeader{Pref: pref}
	var err error
	if h.TrackAlias, err = r.ReadVarInt(); err != nil {
		return StreamHeader{}, &FrameError{Field: "track_alias", Err: err}
	}
	if h.Group, err = r.ReadVarInt(); err != nil {
		return StreamHeader{}, &FrameError{Field: "group", Err: err}
	}
	if pref == ForwardingSubgroup {
		if h.Subgroup, err = r.ReadVarInt(); err != nil {
			return StreamHeader{}, &FrameError{Field: "subgroup", Err: err}
		}
	}
	return h, nil
}
