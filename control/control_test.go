package control

import (
	"errors"
	"testing"

	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/wire"
)

func roundTrip(t *testing.T, msgType MsgType, msg any) any {
	t.Helper()
	gotType, payload, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if gotType != msgType {
		t.Fatalf("Encode type = 0x%x, want 0x%x", gotType, msgType)
	}
	decoded, err := Decode(gotType, payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return decoded
}

func TestSubscribeRoundTripScenario2(t *testing.T) {
	name := moqtype.NewFullTrackName(moqtype.TuplePath("live/camera1"), "video")
	kv0, err := moqtype.NewVarIntKV(0, 10)
	if err != nil {
		t.Fatalf("NewVarIntKV: %v", err)
	}
	kv1, err := moqtype.NewBytesKV(1, []byte("DemoString"))
	if err != nil {
		t.Fatalf("NewBytesKV: %v", err)
	}
	sub, err := NewSubscribeAbsoluteRange(
		128242, 7, name, 128, GroupOrderAscending, true,
		moqtype.Location{Group: 81, Object: 81}, 90,
		[]moqtype.KeyValuePair{kv0, kv1},
	)
	if err != nil {
		t.Fatalf("NewSubscribeAbsoluteRange: %v", err)
	}

	decoded := roundTrip(t, MsgSubscribe, sub)
	got, ok := decoded.(Subscribe)
	if !ok {
		t.Fatalf("decoded type = %T, want Subscribe", decoded)
	}
	if got.RequestId != sub.RequestId || got.TrackAlias != sub.TrackAlias {
		t.Fatalf("ids mismatch: got %+v, want %+v", got, sub)
	}
	if !got.FullTrackName.Equal(sub.FullTrackName) {
		t.Fatalf("FullTrackName mismatch: got %+v, want %+v", got.FullTrackName, sub.FullTrackName)
	}
	if got.Start != sub.Start || got.EndGroup != sub.EndGroup {
		t.Fatalf("range mismatch: got {%v,%v}, want {%v,%v}", got.Start, got.EndGroup, sub.Start, sub.EndGroup)
	}
	if len(got.Params) != 2 || !got.Params[0].IsVarInt() || got.Params[0].VarIntValue() != 10 {
		t.Fatalf("params[0] mismatch: %+v", got.Params)
	}
	if got.Params[1].IsVarInt() || string(got.Params[1].BytesValue()) != "DemoString" {
		t.Fatalf("params[1] mismatch: %+v", got.Params[1])
	}
}

func TestSubscribeInvalidRangeRejected(t *testing.T) {
	name := moqtype.NewFullTrackName(moqtype.TuplePath("a/b"), "c")
	_, err := NewSubscribeAbsoluteRange(1, 1, name, 0, GroupOrderAscending, true,
		moqtype.Location{Group: 10, Object: 0}, 5, nil)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
}

func TestClientServerSetupRoundTrip(t *testing.T) {
	kv, _ := moqtype.NewVarIntKV(2, 42)
	cs := ClientSetup{Versions: []uint64{Version, 0xFF00000A}, Params: []moqtype.KeyValuePair{kv}}
	decoded := roundTrip(t, MsgClientSetup, cs)
	got := decoded.(ClientSetup)
	if len(got.Versions) != 2 || got.Versions[0] != Version {
		t.Fatalf("versions mismatch: %+v", got.Versions)
	}

	ss := ServerSetup{SelectedVersion: Version, Params: nil}
	decodedSS := roundTrip(t, MsgServerSetup, ss)
	gotSS := decodedSS.(ServerSetup)
	if gotSS.SelectedVersion != Version {
		t.Fatalf("SelectedVersion = 0x%x, want 0x%x", gotSS.SelectedVersion, Version)
	}
}

func TestSubscribeOkContentExistsGating(t *testing.T) {
	ok := SubscribeOk{
		RequestId:       5,
		Expires:         1000,
		GroupOrder:      GroupOrderDescending,
		ContentExists:   true,
		LargestLocation: moqtype.Location{Group: 3, Object: 2},
	}
	decoded := roundTrip(t, MsgSubscribeOk, ok)
	got := decoded.(SubscribeOk)
	if got.LargestLocation != ok.LargestLocation {
		t.Fatalf("LargestLocation = %+v, want %+v", got.LargestLocation, ok.LargestLocation)
	}

	okNoContent := SubscribeOk{RequestId: 6, Expires: 0, GroupOrder: GroupOrderAscending, ContentExists: false}
	decodedNoContent := roundTrip(t, MsgSubscribeOk, okNoContent)
	gotNoContent := decodedNoContent.(SubscribeOk)
	if gotNoContent.LargestLocation != (moqtype.Location{}) {
		t.Fatalf("LargestLocation = %+v, want zero value", gotNoContent.LargestLocation)
	}
}

func TestTrackStatusInvariant(t *testing.T) {
	_, err := NewTrackStatus(1, TrackStatusDoesNotExist, moqtype.Location{Group: 1, Object: 0}, nil)
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("err = %v, want ErrProtocolViolation", err)
	}

	ts, err := NewTrackStatus(2, TrackStatusInProgress, moqtype.Location{Group: 5, Object: 9}, nil)
	if err != nil {
		t.Fatalf("NewTrackStatus: %v", err)
	}
	decoded := roundTrip(t, MsgTrackStatus, ts)
	got := decoded.(TrackStatus)
	if got.LargestLocation != ts.LargestLocation || got.StatusCode != ts.StatusCode {
		t.Fatalf("got %+v, want %+v", got, ts)
	}
}

func TestTrackStatusDecodeRejectsViolation(t *testing.T) {
	// Hand-encode a TrackStatus with DoesNotExist but a non-zero location,
	// bypassing the NewTrackStatus constructor, to exercise decode-time
	// validation directly.
	w := wire.NewBuffer()
	if err := w.WriteVarInt(9); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteVarInt(uint64(TrackStatusDoesNotExist)); err != nil {
		t.Fatal(err)
	}
	loc := moqtype.Location{Group: 1, Object: 0}
	if err := loc.Serialize(w); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteVarInt(0); err != nil {
		t.Fatal(err)
	}
	_, err := Decode(MsgTrackStatus, w.Bytes())
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("err = %v, want ErrProtocolViolation", err)
	}
}

func TestFetchVariants(t *testing.T) {
	name := moqtype.NewFullTrackName(moqtype.TuplePath("a/b"), "track")
	standAlone := Fetch{
		RequestId:  1,
		Priority:   10,
		GroupOrder: GroupOrderAscending,
		Kind:       FetchKindStandAlone,
		StandAlone: FetchStandAlone{
			FullTrackName: name,
			Start:         moqtype.Location{Group: 1, Object: 0},
			End:           moqtype.Location{Group: 5, Object: 0},
		},
	}
	decoded := roundTrip(t, MsgFetch, standAlone)
	got := decoded.(Fetch)
	if !got.StandAlone.FullTrackName.Equal(name) || got.StandAlone.End != standAlone.StandAlone.End {
		t.Fatalf("got %+v, want %+v", got.StandAlone, standAlone.StandAlone)
	}

	relative := Fetch{
		RequestId:  2,
		Priority:   1,
		GroupOrder: GroupOrderDescending,
		Kind:       FetchKindRelative,
		Relative:   FetchRelative{JoiningRequestId: 1, JoiningStart: 3},
	}
	decodedRel := roundTrip(t, MsgFetch, relative)
	gotRel := decodedRel.(Fetch)
	if gotRel.Relative != relative.Relative {
		t.Fatalf("got %+v, want %+v", gotRel.Relative, relative.Relative)
	}
}

func TestGoAwayEmptyAndNonEmpty(t *testing.T) {
	ga := GoAway{NewSessionUri: ""}
	decoded := roundTrip(t, MsgGoAway, ga)
	if decoded.(GoAway).NewSessionUri != "" {
		t.Fatalf("expected empty NewSessionUri")
	}

	ga2 := GoAway{NewSessionUri: "https://example.com/moqt"}
	decoded2 := roundTrip(t, MsgGoAway, ga2)
	if decoded2.(GoAway).NewSessionUri != ga2.NewSessionUri {
		t.Fatalf("got %q, want %q", decoded2.(GoAway).NewSessionUri, ga2.NewSessionUri)
	}
}

func TestMaxRequestIdAndRequestsBlocked(t *testing.T) {
	mr := MaxRequestId{RequestId: 99}
	if roundTrip(t, MsgMaxRequestId, mr).(MaxRequestId).RequestId != 99 {
		t.Fatalf("MaxRequestId round trip failed")
	}
	rb := RequestsBlocked{Maximum: 17}
	if roundTrip(t, MsgRequestsBlocked, rb).(RequestsBlocked).Maximum != 17 {
		t.Fatalf("RequestsBlocked round trip failed")
	}
}

// TestPublishNamespaceErrorPartialDecode mirrors scenario-6: a truncated
// PublishNamespaceError payload (missing the trailing reason phrase bytes)
// must fail cleanly with a not-enough-bytes error rather than panicking
// or returning a zero-valued message.
func TestPublishNamespaceErrorPartialDecode(t *testing.T) {
	w := wire.NewBuffer()
	if err := w.WriteVarInt(4); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteVarInt(0x01); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteVarInt(5); err != nil { // reason phrase length prefix
		t.Fatal(err)
	}
	// Deliberately omit the 5 promised bytes.
	_, err := Decode(MsgPublishNamespaceError, w.Bytes())
	if err == nil {
		t.Fatalf("expected error decoding truncated payload")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v (%T), want *ParseError", err, err)
	}
	if !errors.Is(err, wire.ErrNotEnoughBytes) {
		t.Fatalf("err = %v, want wrapped ErrNotEnoughBytes", err)
	}
}

func TestWriteReadControlMsgFraming(t *testing.T) {
	buf := wire.NewBuffer()
	sub := Unsubscribe{RequestId: 55}
	if err := WriteControlMsg(buf, sub); err != nil {
		t.Fatalf("WriteControlMsg: %v", err)
	}
	// Append a second message to confirm the frame length is respected and
	// excess bytes are left for the next read.
	done := PublishNamespaceOk{RequestId: 56}
	if err := WriteControlMsg(buf, done); err != nil {
		t.Fatalf("WriteControlMsg: %v", err)
	}

	gotType, msg, err := ReadControlMsg(buf)
	if err != nil {
		t.Fatalf("ReadControlMsg: %v", err)
	}
	if gotType != MsgUnsubscribe || msg.(Unsubscribe).RequestId != 55 {
		t.Fatalf("first message mismatch: type=0x%x msg=%+v", gotType, msg)
	}

	gotType2, msg2, err := ReadControlMsg(buf)
	if err != nil {
		t.Fatalf("ReadControlMsg (2nd): %v", err)
	}
	if gotType2 != MsgPublishNamespaceOk || msg2.(PublishNamespaceOk).RequestId != 56 {
		t.Fatalf("second message mismatch: type=0x%x msg=%+v", gotType2, msg2)
	}
}

func TestReadControlMsgIncompleteFrameRestoresCheckpoint(t *testing.T) {
	buf := wire.NewBuffer()
	if err := WriteControlMsg(buf, Unsubscribe{RequestId: 1}); err != nil {
		t.Fatal(err)
	}
	full := buf.Bytes()
	truncated := wire.NewBufferFrom(full[:len(full)-1])

	mark := truncated.Checkpoint()
	_, _, err := ReadControlMsg(truncated)
	if err == nil {
		t.Fatalf("expected error on truncated frame")
	}
	if truncated.Checkpoint() != mark {
		t.Fatalf("read cursor advanced on incomplete frame: got %d, want %d", truncated.Checkpoint(), mark)
	}
}

func TestReservedSetupDecodesWithoutError(t *testing.T) {
	msg, err := Decode(MsgReservedSetup40, nil)
	if err != nil {
		t.Fatalf("Decode reserved setup: %v", err)
	}
	rs, ok := msg.(ReservedSetup)
	if !ok || rs.Code != MsgReservedSetup40 {
		t.Fatalf("got %+v, want ReservedSetup{Code: MsgReservedSetup40}", msg)
	}
}

func TestDecodeUnknownTypeRejected(t *testing.T) {
	_, err := Decode(MsgType(0xFFFF), nil)
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
}

func TestEncodeUnknownGoTypeRejected(t *testing.T) {
	_, _, err := Encode(struct{ X int }{X: 1})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
}

func TestSubscribeDoneAndNamespaceMessages(t *testing.T) {
	reason, err := moqtype.NewReasonPhrase("track ended", 0)
	if err != nil {
		t.Fatal(err)
	}
	sd := SubscribeDone{RequestId: 3, StatusCode: SubscribeDoneTrackEnded, StreamCount: 7, ReasonPhrase: reason}
	decoded := roundTrip(t, MsgSubscribeDone, sd)
	got := decoded.(SubscribeDone)
	if got.StatusCode != sd.StatusCode || got.StreamCount != sd.StreamCount || got.ReasonPhrase.Text != sd.ReasonPhrase.Text {
		t.Fatalf("got %+v, want %+v", got, sd)
	}

	pn := PublishNamespace{RequestId: 4, Namespace: moqtype.TuplePath("live/cam1")}
	decodedPN := roundTrip(t, MsgPublishNamespace, pn)
	gotPN := decodedPN.(PublishNamespace)
	if !gotPN.Namespace.Equal(pn.Namespace) {
		t.Fatalf("got %+v, want %+v", gotPN.Namespace, pn.Namespace)
	}

	sn := SubscribeNamespace{RequestId: 8, NamespacePrefix: moqtype.TuplePath("live")}
	decodedSN := roundTrip(t, MsgSubscribeNamespace, sn)
	if !decodedSN.(SubscribeNamespace).NamespacePrefix.Equal(sn.NamespacePrefix) {
		t.Fatalf("namespace prefix mismatch")
	}
}
