package object

import (
	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/wire"
)

// Frame is one object's wire-level payload as carried on a data stream:
// everything in a MoqtObject except the (trackAlias, group, subgroup)
// context supplied once per stream by StreamHeader.
type Frame struct {
	Object           uint64 // location.object; location.group comes from the stream header
	Priority         uint8
	ExtensionHeaders []moqtype.KeyValuePair
	Payload          []byte
}

// Serialize appends f's wire form: object:varint, priority:u8,
// ext-headers:{count:varint, kv...}, payload:{length:varint, bytes}.
func (f Frame) Serialize(w wire.Writer) error {
	if err := w.WriteVarInt(f.Object); err != nil {
		return err
	}
	w.WriteUint8(f.Priority)
	if err := moqtype.WriteParams(w, f.ExtensionHeaders); err != nil {
		return err
	}
	return w.WriteVarIntBytes(f.Payload)
}

// ParseFrame reads a Frame's wire form from r.
func ParseFrame(r wire.Reader) (Frame, error) {
	var f Frame
	var err error
	if f.Object, err = r.ReadVarInt(); err != nil {
		return Frame{}, &FrameError{Field: "object", Err: err}
	}
	if f.Priority, err = r.ReadUint8(); err != nil {
		return Frame{}, &FrameError{Field: "priority", Err: err}
	}
	if f.ExtensionHeaders, err = moqtype.ReadParams(r); err != nil {
		return Frame{}, &FrameError{Field: "extension_headers", Err: err}
	}
	payload, err := r.ReadVarIntBytes(0)
	if err != nil {
		return Frame{}, &FrameError{Field: "payload", Err: err}
	}
	f.Payload = append([]byte(nil), payload...)
	return f, nil
}

// MoqtObject is the fully resolved, in-memory object: a Frame combined
// with the stream-level context (FullTrackName, resolved by the session
// from the stream's track alias) and the forwarding preference under
// which it was received. Constructed by the session's data-stream
// demultiplexer; consumed once by a playout buffer (payload ownership
// transfers on enqueue per spec.md's lifecycle note).
type MoqtObject struct {
	FullTrackName     moqtype.FullTrackName
	Location          moqtype.Location
	PublisherPriority uint8
	Pref              ForwardingPreference
	SubgroupId        *uint64 // non-nil iff Pref == ForwardingSubgroup
	ExtensionHeaders  []moqtype.KeyValuePair
	Payload           []byte
}

// NewMoqtObject validates the Subgroup/SubgroupId pairing invariant
// before constructing an object.
func NewMoqtObject(name moqtype.FullTrackName, loc moqtype.Location, priority uint8, pref ForwardingPreference, subgroupID *uint64, ext []moqtype.KeyValuePair, payload []byte) (MoqtObject, error) {
	if pref == ForwardingSubgroup && subgroupID == nil {
		return MoqtObject{}, ErrMissingSubgroupId
	}
	if pref != ForwardingSubgroup && subgroupID != nil {
		return MoqtObject{}, ErrUnexpectedSubgroupId
	}
	return MoqtObject{
		FullTrackName:     name,
		Location:          loc,
		PublisherPriority: priority,
		Pref:              pref,
		SubgroupId:        subgroupID,
		ExtensionHeaders:  ext,
		Payload:           payload,
	}, nil
}

// FromStreamFrame reconstructs a MoqtObject from a parsed StreamHeader and
// Frame plus the FullTrackName the session resolved for h.TrackAlias.
func FromStreamFrame(name moqtype.FullTrackName, h StreamHeader, f Frame) (MoqtObject, error) {
	var subgroupID *uint64
	if h.Pref == ForwardingSubgroup {
		sg := h.Subgroup
		subgroupID = &sg
	}
	loc := moqtype.Location{Group: h.Group, Object: f.Object}
	return NewMoqtObject(name, loc, f.Priority, h.Pref, subgroupID, f.ExtensionHeaders, f.Payload)
}
