package object

import (
	"errors"
	"testing"

	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/wire"
)

func TestStreamHeaderRoundTripSubgroup(t *testing.T) {
	h := StreamHeader{TrackAlias: 7, Group: 3, Subgroup: 2, Pref: ForwardingSubgroup}
	w := wire.NewBuffer()
	if err := h.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := ParseStreamHeader(w, ForwardingSubgroup)
	if err != nil {
		t.Fatalf("ParseStreamHeader: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestStreamHeaderRoundTripTrackHasNoSubgroup(t *testing.T) {
	h := StreamHeader{TrackAlias: 5, Group: 1, Pref: ForwardingTrack}
	w := wire.NewBuffer()
	if err := h.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if w.Len() != 2 {
		// two single-byte varints, no subgroup field
		t.Fatalf("serialized length = %d, want 2", w.Len())
	}
	got, err := ParseStreamHeader(w, ForwardingTrack)
	if err != nil {
		t.Fatalf("ParseStreamHeader: %v", err)
	}
	if got.TrackAlias != h.TrackAlias || got.Group != h.Group {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	ts, err := NewCaptureTimestampExt(1_690_000_000_000)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := NewVideoConfigExt([]byte{0x01, 0x02, 0x03})
	if err != nil {
		t.Fatal(err)
	}
	f := Frame{
		Object:           42,
		Priority:         31,
		ExtensionHeaders: []moqtype.KeyValuePair{ts, cfg},
		Payload:          []byte("keyframe-bytes"),
	}
	w := wire.NewBuffer()
	if err := f.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := ParseFrame(w)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if got.Object != f.Object || got.Priority != f.Priority || string(got.Payload) != string(f.Payload) {
		t.Fatalf("got %+v, want %+v", got, f)
	}
	capTs, ok := CaptureTimestamp(got.ExtensionHeaders)
	if !ok || capTs != 1_690_000_000_000 {
		t.Fatalf("CaptureTimestamp = %d, %v; want 1690000000000, true", capTs, ok)
	}
	cfgBytes, ok := VideoConfig(got.ExtensionHeaders)
	if !ok || string(cfgBytes) != "\x01\x02\x03" {
		t.Fatalf("VideoConfig = %v, %v", cfgBytes, ok)
	}
}

func TestFrameExcessBytesNotConsumed(t *testing.T) {
	f := Frame{Object: 1, Priority: 1, Payload: []byte("x")}
	w := wire.NewBuffer()
	if err := f.Serialize(w); err != nil {
		t.Fatal(err)
	}
	w.WriteBytes([]byte{9, 1, 1})
	if _, err := ParseFrame(w); err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if w.Remaining() != 3 {
		t.Fatalf("remaining = %d, want 3", w.Remaining())
	}
}

func TestFramePartialDecodeNeverFalsePositive(t *testing.T) {
	f := Frame{Object: 300, Priority: 9, Payload: []byte("hello world")}
	w := wire.NewBuffer()
	if err := f.Serialize(w); err != nil {
		t.Fatal(err)
	}
	full := w.Bytes()
	for n := 0; n < len(full); n++ {
		r := wire.NewBufferFrom(full[:n])
		if _, err := ParseFrame(r); err == nil {
			t.Fatalf("ParseFrame succeeded on %d/%d byte prefix, want error", n, len(full))
		}
	}
}

func TestNewMoqtObjectSubgroupInvariant(t *testing.T) {
	name := moqtype.NewFullTrackName(moqtype.TuplePath("a/b"), "track")
	loc := moqtype.Location{Group: 1, Object: 0}

	if _, err := NewMoqtObject(name, loc, 1, ForwardingSubgroup, nil, nil, nil); !errors.Is(err, ErrMissingSubgroupId) {
		t.Fatalf("err = %v, want ErrMissingSubgroupId", err)
	}

	sg := uint64(3)
	if _, err := NewMoqtObject(name, loc, 1, ForwardingTrack, &sg, nil, nil); !errors.Is(err, ErrUnexpectedSubgroupId) {
		t.Fatalf("err = %v, want ErrUnexpectedSubgroupId", err)
	}

	obj, err := NewMoqtObject(name, loc, 1, ForwardingSubgroup, &sg, nil, []byte("p"))
	if err != nil {
		t.Fatalf("NewMoqtObject: %v", err)
	}
	if obj.SubgroupId == nil || *obj.SubgroupId != 3 {
		t.Fatalf("SubgroupId = %v, want 3", obj.SubgroupId)
	}
}

func TestFromStreamFrameComposesLocation(t *testing.T) {
	name := moqtype.NewFullTrackName(moqtype.TuplePath("live"), "cam1")
	h := StreamHeader{TrackAlias: 1, Group: 9, Subgroup: 2, Pref: ForwardingSubgroup}
	f := Frame{Object: 4, Priority: 5, Payload: []byte("p")}
	obj, err := FromStreamFrame(name, h, f)
	if err != nil {
		t.Fatalf("FromStreamFrame: %v", err)
	}
	want := moqtype.Location{Group: 9, Object: 4}
	if obj.Location != want {
		t.Fatalf("Location = %+v, want %+v", obj.Location, want)
	}
	if obj.SubgroupId == nil || *obj.SubgroupId != 2 {
		t.Fatalf("SubgroupId = %v, want 2", obj.SubgroupId)
	}
}
