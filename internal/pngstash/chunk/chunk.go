package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"unicode/utf8"
)

// Wire layout constants. A chunk is length(4, big-endian) || type(4) ||
// data(length) || crc(4, big-endian).
const (
	lengthSize = 4
	typeSize   = 4
	crcSize    = 4

	// Overhead is the wire size of a chunk with no data.
	Overhead = lengthSize + typeSize + crcSize
)

var (
	// ErrTruncated indicates fewer bytes available than the chunk declares.
	ErrTruncated = errors.New("truncated chunk")

	// ErrChecksumMismatch indicates the stored CRC disagrees with the CRC
	// computed over type and data.
	ErrChecksumMismatch = errors.New("chunk checksum mismatch")

	// ErrNotUTF8 indicates chunk data was requested as text but is not
	// valid UTF-8.
	ErrNotUTF8 = errors.New("chunk data is not valid UTF-8")
)

// Chunk is one length-prefixed, CRC-checked unit of a PNG file. The
// data is an opaque byte blob; a chunk never interprets its payload.
type Chunk struct {
	chunkType Type
	data      []byte
}

// New creates a chunk from a type and a data payload. The payload is
// copied so the chunk owns its buffer exclusively.
func New(chunkType Type, data []byte) *Chunk {
	owned := make([]byte, len(data))
	copy(owned, data)
	return &Chunk{
		chunkType: chunkType,
		data:      owned,
	}
}

// Parse reads one chunk from the start of b. Bytes past the end of the
// chunk are ignored; the caller advances by WireSize.
func Parse(b []byte) (*Chunk, error) {
	if len(b) < Overhead {
		return nil, fmt.Errorf("%w: need at least %d bytes, have %d", ErrTruncated, Overhead, len(b))
	}

	length := binary.BigEndian.Uint32(b[:lengthSize])
	if uint64(len(b)) < Overhead+uint64(length) {
		return nil, fmt.Errorf("%w: declared %d data bytes, have %d", ErrTruncated, length, len(b)-Overhead)
	}

	var code [4]byte
	copy(code[:], b[lengthSize:lengthSize+typeSize])
	chunkType := TypeFromBytes(code)
	if !chunkType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChunkType, string(code[:]))
	}

	c := New(chunkType, b[lengthSize+typeSize:lengthSize+typeSize+length])

	stored := binary.BigEndian.Uint32(b[lengthSize+typeSize+length : Overhead+length])
	if computed := c.Crc(); computed != stored {
		return nil, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksumMismatch, stored, computed)
	}

	return c, nil
}

// Length returns the byte length of the data payload.
func (c *Chunk) Length() uint32 {
	return uint32(len(c.data))
}

// Type returns the chunk type.
func (c *Chunk) Type() Type {
	return c.chunkType
}

// Data returns the raw payload. Callers must not modify it.
func (c *Chunk) Data() []byte {
	return c.data
}

// Crc computes the CRC-32 over the type bytes followed by the data,
// using the standard PNG polynomial.
func (c *Chunk) Crc() uint32 {
	code := c.chunkType.Bytes()
	sum := crc32.Update(0, crc32.IEEETable, code[:])
	return crc32.Update(sum, crc32.IEEETable, c.data)
}

// WireSize returns the serialized size of the chunk in bytes.
func (c *Chunk) WireSize() int {
	return Overhead + len(c.data)
}

// Bytes serializes the chunk to its wire form. Parse(c.Bytes())
// reproduces an equal chunk.
func (c *Chunk) Bytes() []byte {
	out := make([]byte, 0, c.WireSize())

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], c.Length())
	out = append(out, buf[:]...)

	code := c.chunkType.Bytes()
	out = append(out, code[:]...)
	out = append(out, c.data...)

	binary.BigEndian.PutUint32(buf[:], c.Crc())
	out = append(out, buf[:]...)

	return out
}

// DataAsString returns the payload as text, or ErrNotUTF8 if the bytes
// are not valid UTF-8.
func (c *Chunk) DataAsString() (string, error) {
	if !utf8.Valid(c.data) {
		return "", fmt.Errorf("%w: chunk %s", ErrNotUTF8, c.chunkType)
	}
	return string(c.data), nil
}

func (c *Chunk) String() string {
	return fmt.Sprintf("%s (%d bytes, crc %08x)", c.chunkType, c.Length(), c.Crc())
}
