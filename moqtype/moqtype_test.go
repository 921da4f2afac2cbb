package moqtype

import (
	"errors"
	"testing"

	"github.com/moqtail/moqt-go/wire"
)

func TestLocationOrdering(t *testing.T) {
	t.Parallel()
	cases := []struct {
		a, b Location
		want int
	}{
		{Location{1, 1}, Location{1, 2}, -1},
		{Location{1, 2}, Location{2, 1}, -1},
		{Location{2, 1}, Location{1, 2}, 1},
		{Location{5, 5}, Location{5, 5}, 0},
	}
	for _, tc := range cases {
		if got := tc.a.Compare(tc.b); got != tc.want {
			t.Errorf("Compare(%v,%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
	if !Location{1, 1}.Less(Location{1, 2}) {
		t.Error("(1,1) should be less than (1,2)")
	}
	if !Location{1, 2}.Less(Location{2, 0}) {
		t.Error("(1,2) should be less than (2,0)")
	}
}

func TestLocationRoundTrip(t *testing.T) {
	t.Parallel()
	loc := Location{Group: 81, Object: 81}
	buf := wire.NewBuffer()
	if err := loc.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	got, err := ParseLocation(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != loc {
		t.Fatalf("got %v, want %v", got, loc)
	}
}

func TestTuplePathHelpers(t *testing.T) {
	t.Parallel()
	tup := TuplePath("/track/namespace")
	if got := tup.Path(); got != "track/namespace" {
		t.Fatalf("Path() = %q, want %q", got, "track/namespace")
	}
	if len(tup.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(tup.Fields))
	}
}

func TestTupleRoundTrip(t *testing.T) {
	t.Parallel()
	tup := NewTuple([]byte("track"), []byte("namespace"))
	buf := wire.NewBuffer()
	if err := tup.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	got, err := ParseTuple(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(tup) {
		t.Fatalf("got %v, want %v", got, tup)
	}
}

func TestFullTrackNameRoundTrip(t *testing.T) {
	t.Parallel()
	ftn := NewFullTrackName(TuplePath("track/namespace"), "trackName")
	buf := wire.NewBuffer()
	if err := ftn.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	got, err := ParseFullTrackName(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(ftn) {
		t.Fatalf("got %+v, want %+v", got, ftn)
	}
}

func TestKeyValuePairParity(t *testing.T) {
	t.Parallel()
	if _, err := NewVarIntKV(1, 10); !errors.Is(err, ErrKeyValueParity) {
		t.Fatalf("NewVarIntKV(odd) err = %v, want ErrKeyValueParity", err)
	}
	if _, err := NewBytesKV(0, []byte("x")); !errors.Is(err, ErrKeyValueParity) {
		t.Fatalf("NewBytesKV(even) err = %v, want ErrKeyValueParity", err)
	}
	big := make([]byte, MaxKeyValueBytesLen+1)
	if _, err := NewBytesKV(1, big); !errors.Is(err, ErrKeyValueTooLong) {
		t.Fatalf("NewBytesKV(too long) err = %v, want ErrKeyValueTooLong", err)
	}
}

func TestKeyValuePairRoundTrip(t *testing.T) {
	t.Parallel()
	kv1, err := NewVarIntKV(0, 10)
	if err != nil {
		t.Fatal(err)
	}
	kv2, err := NewBytesKV(1, []byte("DemoString"))
	if err != nil {
		t.Fatal(err)
	}

	buf := wire.NewBuffer()
	if err := WriteParams(buf, []KeyValuePair{kv1, kv2}); err != nil {
		t.Fatal(err)
	}
	got, err := ReadParams(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got[0].Equal(kv1) || !got[1].Equal(kv2) {
		t.Fatalf("got %+v, want [%+v %+v]", got, kv1, kv2)
	}
}

func TestReasonPhraseMaxLen(t *testing.T) {
	t.Parallel()
	long := make([]byte, DefaultMaxReasonPhraseLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewReasonPhrase(string(long), 0); !errors.Is(err, ErrReasonPhraseTooLong) {
		t.Fatalf("err = %v, want ErrReasonPhraseTooLong", err)
	}

	phrase, err := NewReasonPhrase("internal error", 0)
	if err != nil {
		t.Fatal(err)
	}
	buf := wire.NewBuffer()
	if err := phrase.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	got, err := ParseReasonPhrase(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != phrase.Text {
		t.Fatalf("got %q, want %q", got.Text, phrase.Text)
	}
}
