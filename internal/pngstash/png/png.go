// Package png models a PNG file as its 8-byte signature followed by an
// ordered sequence of chunks. Chunks are opaque; nothing here decodes
// pixel data.
package png

import (
	"bytes"
	"errors"
	"fmt"

	"pngstash/internal/pngstash/chunk"
)

// Signature is the fixed magic that opens every PNG file.
var Signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

var (
	// ErrInvalidSignature indicates the input does not start with the
	// PNG magic.
	ErrInvalidSignature = errors.New("invalid png signature")

	// ErrTrailingBytes indicates leftover bytes after the last complete
	// chunk, too few to form another chunk.
	ErrTrailingBytes = errors.New("trailing bytes after last chunk")

	// ErrChunkNotFound indicates no chunk with the requested type exists.
	ErrChunkNotFound = errors.New("chunk not found")
)

// ParseError reports which chunk failed to parse and where.
type ParseError struct {
	Index  int   // position of the chunk in file order
	Offset int64 // byte offset of the chunk start
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("chunk %d at offset %d: %v", e.Index, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PNG is an ordered sequence of chunks. It owns the sequence; mutation
// happens only through the methods below.
type PNG struct {
	chunks []*chunk.Chunk
}

// New returns an empty container.
func New() *PNG {
	return &PNG{}
}

// FromChunks builds a container over the given chunk sequence.
func FromChunks(chunks []*chunk.Chunk) *PNG {
	p := &PNG{chunks: make([]*chunk.Chunk, len(chunks))}
	copy(p.chunks, chunks)
	return p
}

// Parse verifies the signature and walks the remaining bytes chunk by
// chunk until exhausted. A single malformed chunk fails the whole
// parse; there is no skip-and-continue recovery in the PNG framing.
func Parse(b []byte) (*PNG, error) {
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature[:]) {
		return nil, ErrInvalidSignature
	}

	p := &PNG{}
	offset := int64(len(Signature))
	rest := b[len(Signature):]

	for len(rest) > 0 {
		if len(rest) < chunk.Overhead {
			return nil, fmt.Errorf("%w: %d bytes at offset %d", ErrTrailingBytes, len(rest), offset)
		}

		c, err := chunk.Parse(rest)
		if err != nil {
			return nil, &ParseError{Index: len(p.chunks), Offset: offset, Err: err}
		}

		p.chunks = append(p.chunks, c)
		rest = rest[c.WireSize():]
		offset += int64(c.WireSize())
	}

	return p, nil
}

// Bytes serializes the container: signature, then each chunk in order.
func (p *PNG) Bytes() []byte {
	size := len(Signature)
	for _, c := range p.chunks {
		size += c.WireSize()
	}

	out := make([]byte, 0, size)
	out = append(out, Signature[:]...)
	for _, c := range p.chunks {
		out = append(out, c.Bytes()...)
	}
	return out
}

// AppendChunk pushes a chunk to the end of the sequence.
func (p *PNG) AppendChunk(c *chunk.Chunk) {
	p.chunks = append(p.chunks, c)
}

// InsertChunkBeforeEnd inserts a chunk immediately before the final
// chunk, conventionally IEND, so the trailer stays last. On an empty
// container this is an append.
func (p *PNG) InsertChunkBeforeEnd(c *chunk.Chunk) {
	if len(p.chunks) == 0 {
		p.chunks = append(p.chunks, c)
		return
	}

	last := len(p.chunks) - 1
	p.chunks = append(p.chunks, nil)
	p.chunks[last+1] = p.chunks[last]
	p.chunks[last] = c
}

// RemoveChunk removes and returns the first chunk whose type matches
// typeStr byte for byte. Later chunks of the same type are untouched.
func (p *PNG) RemoveChunk(typeStr string) (*chunk.Chunk, error) {
	for i, c := range p.chunks {
		if c.Type().String() == typeStr {
			p.chunks = append(p.chunks[:i], p.chunks[i+1:]...)
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrChunkNotFound, typeStr)
}

// ChunkByType returns the first chunk with the given type, or nil.
func (p *PNG) ChunkByType(typeStr string) *chunk.Chunk {
	for _, c := range p.chunks {
		if c.Type().String() == typeStr {
			return c
		}
	}
	return nil
}

// Chunks returns the chunk sequence in file order for enumeration.
// Callers must not modify the returned slice.
func (p *PNG) Chunks() []*chunk.Chunk {
	return p.chunks
}
