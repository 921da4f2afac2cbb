// Package wire implements the append-only byte buffer and QUIC-style
// variable-length integer codec that every higher-level MoQT message is
// built on. Varint math is delegated to quic-go's quicvarint package
// (the same dependency the rest of this module's control and object
// codecs use), never hand-rolled.
package wire

import (
	"encoding/binary"

	"github.com/quic-go/quic-go/quicvarint"
)

// MaxVarInt is the largest value representable by a QUIC varint (2^62-1).
const MaxVarInt = uint64(1)<<62 - 1

// Reader is the read-side contract shared by Buffer and FrozenBuffer.
type Reader interface {
	ReadUint8() (uint8, error)
	ReadUint16() (uint16, error)
	ReadVarInt() (uint64, error)
	ReadBytes(n int) ([]byte, error)
	ReadVarIntBytes(maxLen uint64) ([]byte, error)
	Remaining() int
	Checkpoint() int
	Restore(mark int)
}

// Writer is the write-side contract implemented by Buffer.
type Writer interface {
	WriteUint8(v uint8)
	WriteUint16(v uint16)
	WriteVarInt(v uint64) error
	WriteBytes(p []byte)
	WriteVarIntBytes(p []byte) error
}

// cursor is the shared read-cursor implementation embedded by both Buffer
// and FrozenBuffer.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) Remaining() int { return len(c.data) - c.pos }

// Checkpoint returns a mark that can later be passed to Restore to rewind
// the read cursor, e.g. when a decoder discovers a message is malformed
// partway through and must not consume any bytes.
func (c *cursor) Checkpoint() int { return c.pos }

// Restore rewinds the read cursor to a previously returned Checkpoint mark.
func (c *cursor) Restore(mark int) { c.pos = mark }

func (c *cursor) ReadUint8() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, notEnoughBytes("uint8")
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) ReadUint16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, notEnoughBytes("uint16")
	}
	v := binary.BigEndian.Uint16(c.data[c.pos : c.pos+2])
	c.pos += 2
	return v, nil
}

func (c *cursor) ReadVarInt() (uint64, error) {
	if c.Remaining() < 1 {
		return 0, notEnoughBytes("varint")
	}
	val, n, err := quicvarint.Parse(c.data[c.pos:])
	if err != nil {
		return 0, notEnoughBytes("varint")
	}
	c.pos += n
	return val, nil
}

func (c *cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &DecodeError{Field: "bytes", Err: ErrCasting}
	}
	if c.Remaining() < n {
		return nil, notEnoughBytes("bytes")
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadVarIntBytes reads a varint length prefix followed by that many bytes.
// maxLen, when non-zero, rejects a length exceeding it with ErrCasting
// (callers needing a distinct protocol-level error wrap this themselves).
func (c *cursor) ReadVarIntBytes(maxLen uint64) ([]byte, error) {
	length, err := c.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if maxLen > 0 && length > maxLen {
		return nil, &DecodeError{Field: "varint-bytes-length", Err: ErrCasting}
	}
	if length > uint64(int(^uint(0)>>1)) {
		return nil, &DecodeError{Field: "varint-bytes-length", Err: ErrCasting}
	}
	return c.ReadBytes(int(length))
}

// Buffer is a writer-owned, append-only byte buffer with an independent
// read cursor. Writes always append; reads always proceed from the last
// read position, so a Buffer can be filled incrementally by a network
// reader while a decoder concurrently (from the same goroutine) consumes
// complete messages from the front.
type Buffer struct {
	cursor
}

// NewBuffer returns an empty Buffer ready for writing.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferFrom wraps existing bytes for reading (e.g. a message payload
// already delivered whole by a framing layer).
func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{cursor{data: data}}
}

func (b *Buffer) WriteUint8(v uint8) {
	b.data = append(b.data, v)
}

func (b *Buffer) WriteUint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// WriteVarInt appends v using the smallest QUIC varint encoding that can
// represent it (quicvarint.Append already makes this choice).
func (b *Buffer) WriteVarInt(v uint64) error {
	if v > MaxVarInt {
		return &DecodeError{Field: "varint", Err: ErrVarIntOverflow}
	}
	b.data = quicvarint.Append(b.data, v)
	return nil
}

func (b *Buffer) WriteBytes(p []byte) {
	b.data = append(b.data, p...)
}

// WriteVarIntBytes appends a varint length prefix followed by p.
func (b *Buffer) WriteVarIntBytes(p []byte) error {
	if err := b.WriteVarInt(uint64(len(p))); err != nil {
		return err
	}
	b.WriteBytes(p)
	return nil
}

// Bytes returns the buffer's full backing slice, including already-read
// bytes. Callers that want only the unread remainder should use Freeze.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes held, read or unread; Commit drops the
// read ones.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Commit drops already-consumed bytes from the front of the buffer so a
// long-lived writer (e.g. one pump per control stream) does not grow
// without bound as messages are read off the front.
func (b *Buffer) Commit() {
	if b.pos == 0 {
		return
	}
	remaining := len(b.data) - b.pos
	copy(b.data, b.data[b.pos:])
	b.data = b.data[:remaining]
	b.pos = 0
}

// Freeze takes an immutable snapshot of the unread remainder, safe to hand
// to another goroutine. The snapshot is a copy; later writes to b do not
// affect it.
func (b *Buffer) Freeze() *FrozenBuffer {
	snap := make([]byte, b.Remaining())
	copy(snap, b.data[b.pos:])
	return &FrozenBuffer{cursor{data: snap}}
}

// FrozenBuffer is an immutable, read-only view produced by Buffer.Freeze.
type FrozenBuffer struct {
	cursor
}

var (
	_ Reader = (*Buffer)(nil)
	_ Writer = (*Buffer)(nil)
	_ Reader = (*FrozenBuffer)(nil)
)
