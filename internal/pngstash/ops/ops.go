// Package ops implements the four user-facing operations on a parsed
// PNG container: encode, decode, remove, and inspect. Everything here
// is built purely on the container API; file I/O lives with callers.
package ops

import (
	"fmt"
	"unicode"

	"pngstash/internal/pngstash/chunk"
	"pngstash/internal/pngstash/png"
)

// Encode hides message in its own chunk of the given type, placed
// immediately before the trailing chunk so IEND stays last. The type
// must be fully valid, reserved bit included, so the written file
// survives a re-parse. Encoding the same type twice leaves two chunks;
// Decode surfaces the first.
func Encode(p *png.PNG, typeStr, message string) (*chunk.Chunk, error) {
	chunkType, err := chunk.TypeFromString(typeStr)
	if err != nil {
		return nil, err
	}
	if !chunkType.IsValid() {
		return nil, fmt.Errorf("%w: reserved bit set in %q", chunk.ErrInvalidChunkType, typeStr)
	}

	c := chunk.New(chunkType, []byte(message))
	p.InsertChunkBeforeEnd(c)
	return c, nil
}

// Decode returns the payload of the first chunk with the given type as
// text.
func Decode(p *png.PNG, typeStr string) (string, error) {
	c := p.ChunkByType(typeStr)
	if c == nil {
		return "", fmt.Errorf("%w: %q", png.ErrChunkNotFound, typeStr)
	}
	return c.DataAsString()
}

// Remove deletes the first chunk with the given type and returns it.
func Remove(p *png.PNG, typeStr string) (*chunk.Chunk, error) {
	return p.RemoveChunk(typeStr)
}

// Summary describes one chunk for display.
type Summary struct {
	Type   string `json:"type"`
	Length uint32 `json:"length"`
	Crc    uint32 `json:"crc"`
	Text   string `json:"text,omitempty"`
	Binary bool   `json:"binary"`
}

// Inspect produces one summary per chunk, in container order. Read
// only; the container is not mutated.
func Inspect(p *png.PNG) []Summary {
	summaries := make([]Summary, 0, len(p.Chunks()))
	for _, c := range p.Chunks() {
		s := Summary{
			Type:   c.Type().String(),
			Length: c.Length(),
			Crc:    c.Crc(),
		}
		if text, err := c.DataAsString(); err == nil && printable(text) {
			s.Text = text
		} else {
			s.Binary = true
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// printable reports whether every rune in s renders as text.
func printable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
