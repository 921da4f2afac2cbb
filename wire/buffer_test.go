package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestVarIntBoundaries(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		v    uint64
		want []byte
	}{
		{"63", 63, []byte{0x3F}},
		{"64", 64, []byte{0x40, 0x40}},
		{"16383", 16383, []byte{0x7F, 0xFF}},
		{"16384", 16384, []byte{0x80, 0x00, 0x40, 0x00}},
		{"max62", 4611686018427387903, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			buf := NewBuffer()
			if err := buf.WriteVarInt(tc.v); err != nil {
				t.Fatalf("WriteVarInt(%d): %v", tc.v, err)
			}
			if !bytes.Equal(buf.Bytes(), tc.want) {
				t.Fatalf("encode(%d) = % x, want % x", tc.v, buf.Bytes(), tc.want)
			}
			got, err := buf.ReadVarInt()
			if err != nil {
				t.Fatalf("ReadVarInt: %v", err)
			}
			if got != tc.v {
				t.Fatalf("decode = %d, want %d", got, tc.v)
			}
		})
	}
}

func TestVarIntRoundTripRange(t *testing.T) {
	t.Parallel()
	values := []uint64{0, 1, 62, 63, 64, 65, 16383, 16384, 16385,
		1<<30 - 1, 1 << 30, 1<<30 + 1, MaxVarInt}
	for _, v := range values {
		buf := NewBuffer()
		if err := buf.WriteVarInt(v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", v, err)
		}
		n := buf.Len()
		if n != 1 && n != 2 && n != 4 && n != 8 {
			t.Fatalf("encode(%d) produced %d bytes, want one of 1/2/4/8", v, n)
		}
		got, err := buf.ReadVarInt()
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip(%d) = %d", v, got)
		}
	}
}

func TestVarIntOverflow(t *testing.T) {
	t.Parallel()
	buf := NewBuffer()
	err := buf.WriteVarInt(MaxVarInt + 1)
	if !errors.Is(err, ErrVarIntOverflow) {
		t.Fatalf("err = %v, want ErrVarIntOverflow", err)
	}
}

func TestPartialDecodeNeverFalsePositive(t *testing.T) {
	t.Parallel()
	buf := NewBuffer()
	buf.WriteVarInt(16384) // 4-byte encoding
	full := append([]byte(nil), buf.Bytes()...)

	for n := 0; n < len(full); n++ {
		prefix := NewBufferFrom(full[:n])
		if _, err := prefix.ReadVarInt(); !errors.Is(err, ErrNotEnoughBytes) {
			t.Fatalf("prefix length %d: err = %v, want ErrNotEnoughBytes", n, err)
		}
	}
}

func TestVarIntBytesRoundTrip(t *testing.T) {
	t.Parallel()
	buf := NewBuffer()
	payload := []byte("hello world")
	if err := buf.WriteVarIntBytes(payload); err != nil {
		t.Fatalf("WriteVarIntBytes: %v", err)
	}
	got, err := buf.ReadVarIntBytes(0)
	if err != nil {
		t.Fatalf("ReadVarIntBytes: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestVarIntBytesExceedsMax(t *testing.T) {
	t.Parallel()
	buf := NewBuffer()
	buf.WriteVarIntBytes([]byte("toolong"))
	_, err := buf.ReadVarIntBytes(3)
	if !errors.Is(err, ErrCasting) {
		t.Fatalf("err = %v, want ErrCasting", err)
	}
}

func TestCheckpointRestore(t *testing.T) {
	t.Parallel()
	buf := NewBuffer()
	buf.WriteVarInt(100)
	buf.WriteVarInt(200)

	mark := buf.Checkpoint()
	v1, _ := buf.ReadVarInt()
	buf.Restore(mark)
	v1Again, _ := buf.ReadVarInt()
	if v1 != v1Again {
		t.Fatalf("restore did not rewind: %d != %d", v1, v1Again)
	}
	v2, err := buf.ReadVarInt()
	if err != nil || v2 != 200 {
		t.Fatalf("second read = %d, %v", v2, err)
	}
}

func TestCommitDropsConsumedPrefix(t *testing.T) {
	t.Parallel()
	buf := NewBuffer()
	buf.WriteVarInt(1)
	buf.WriteVarInt(2)
	buf.ReadVarInt()
	before := buf.Len()
	buf.Commit()
	after := buf.Len()
	if after >= before {
		t.Fatalf("commit did not shrink buffer: before=%d after=%d", before, after)
	}
	v, err := buf.ReadVarInt()
	if err != nil || v != 2 {
		t.Fatalf("post-commit read = %d, %v, want 2", v, err)
	}
}

func TestFreezeIsImmutableSnapshot(t *testing.T) {
	t.Parallel()
	buf := NewBuffer()
	buf.WriteVarInt(42)
	frozen := buf.Freeze()

	buf.WriteVarInt(99) // mutate original after freezing

	v, err := frozen.ReadVarInt()
	if err != nil || v != 42 {
		t.Fatalf("frozen read = %d, %v, want 42", v, err)
	}
	if frozen.Remaining() != 0 {
		t.Fatalf("frozen buffer should contain only the snapshot at freeze time")
	}
}

func TestExcessBytesNotConsumed(t *testing.T) {
	t.Parallel()
	buf := NewBuffer()
	buf.WriteVarInt(7)
	suffix := []byte{9, 1, 1}
	buf.WriteBytes(suffix)

	v, err := buf.ReadVarInt()
	if err != nil || v != 7 {
		t.Fatalf("ReadVarInt = %d, %v", v, err)
	}
	rest, err := buf.ReadBytes(buf.Remaining())
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(rest, suffix) {
		t.Fatalf("suffix = % x, want % x", rest, suffix)
	}
}
