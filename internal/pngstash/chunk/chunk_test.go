package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

const testMessage = "This is where your secret message will be!"

// testMessageCrc is the CRC-32 of "RuSt" followed by testMessage.
const testMessageCrc = 2882656334

func mustType(t *testing.T, s string) Type {
	t.Helper()
	chunkType, err := TypeFromString(s)
	if err != nil {
		t.Fatalf("parsing type %q: %v", s, err)
	}
	return chunkType
}

// testWire builds the wire form of a RuSt chunk with the given CRC.
func testWire(crc uint32) []byte {
	var out []byte
	var buf [4]byte

	binary.BigEndian.PutUint32(buf[:], uint32(len(testMessage)))
	out = append(out, buf[:]...)
	out = append(out, "RuSt"...)
	out = append(out, testMessage...)
	binary.BigEndian.PutUint32(buf[:], crc)
	return append(out, buf[:]...)
}

func TestNew(t *testing.T) {
	c := New(mustType(t, "RuSt"), []byte(testMessage))

	if c.Length() != 42 {
		t.Errorf("length: got %d want 42", c.Length())
	}
	if c.Crc() != testMessageCrc {
		t.Errorf("crc: got %d want %d", c.Crc(), testMessageCrc)
	}
	if c.Type().String() != "RuSt" {
		t.Errorf("type: got %q want %q", c.Type(), "RuSt")
	}
}

func TestNewCopiesData(t *testing.T) {
	data := []byte("mutable")
	c := New(mustType(t, "ruSt"), data)

	data[0] = 'X'
	if got, _ := c.DataAsString(); got != "mutable" {
		t.Errorf("chunk data aliased caller buffer: got %q", got)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse(testWire(testMessageCrc))
	if err != nil {
		t.Fatalf("parsing chunk: %v", err)
	}

	if c.Length() != 42 {
		t.Errorf("length: got %d want 42", c.Length())
	}
	if c.Type().String() != "RuSt" {
		t.Errorf("type: got %q want %q", c.Type(), "RuSt")
	}
	text, err := c.DataAsString()
	if err != nil {
		t.Fatalf("data as string: %v", err)
	}
	if text != testMessage {
		t.Errorf("data: got %q want %q", text, testMessage)
	}
	if c.Crc() != testMessageCrc {
		t.Errorf("crc: got %d want %d", c.Crc(), testMessageCrc)
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("Bad Crc", func(t *testing.T) {
		if _, err := Parse(testWire(testMessageCrc - 1)); !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("expected ErrChecksumMismatch, got %v", err)
		}
	})

	t.Run("Too Short", func(t *testing.T) {
		if _, err := Parse([]byte{0, 0, 0}); !errors.Is(err, ErrTruncated) {
			t.Errorf("expected ErrTruncated, got %v", err)
		}
	})

	t.Run("Declared Length Past End", func(t *testing.T) {
		wire := testWire(testMessageCrc)
		binary.BigEndian.PutUint32(wire[:4], uint32(len(testMessage))+100)
		if _, err := Parse(wire); !errors.Is(err, ErrTruncated) {
			t.Errorf("expected ErrTruncated, got %v", err)
		}
	})

	t.Run("Invalid Type", func(t *testing.T) {
		wire := testWire(testMessageCrc)
		wire[6] = '1'
		if _, err := Parse(wire); !errors.Is(err, ErrInvalidChunkType) {
			t.Errorf("expected ErrInvalidChunkType, got %v", err)
		}
	})
}

// TestParseBitFlips verifies that flipping any single bit in the type
// or data region makes the parse fail.
func TestParseBitFlips(t *testing.T) {
	c := New(mustType(t, "ruSt"), []byte("abcd"))
	wire := c.Bytes()

	// Bytes 4..12 cover the type and data.
	for i := 4; i < 12; i++ {
		for bit := 0; bit < 8; bit++ {
			flipped := make([]byte, len(wire))
			copy(flipped, wire)
			flipped[i] ^= 1 << bit

			_, err := Parse(flipped)
			if err == nil {
				t.Fatalf("byte %d bit %d: corrupt chunk parsed successfully", i, bit)
			}
			// Type-region flips may trip type validation first; data
			// flips must always surface as a checksum mismatch.
			if i >= 8 && !errors.Is(err, ErrChecksumMismatch) {
				t.Errorf("byte %d bit %d: expected ErrChecksumMismatch, got %v", i, bit, err)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	original := New(mustType(t, "teXt"), []byte("round and round"))

	parsed, err := Parse(original.Bytes())
	if err != nil {
		t.Fatalf("parsing serialized chunk: %v", err)
	}

	if !bytes.Equal(parsed.Bytes(), original.Bytes()) {
		t.Error("round trip changed the wire bytes")
	}
	if parsed.Type() != original.Type() {
		t.Errorf("type changed: got %q want %q", parsed.Type(), original.Type())
	}
}

func TestParseIgnoresTrailing(t *testing.T) {
	wire := append(testWire(testMessageCrc), 0xFF, 0xFF, 0xFF)

	c, err := Parse(wire)
	if err != nil {
		t.Fatalf("parsing chunk with trailing bytes: %v", err)
	}
	if c.WireSize() != len(wire)-3 {
		t.Errorf("wire size: got %d want %d", c.WireSize(), len(wire)-3)
	}
}

func TestDataAsString(t *testing.T) {
	t.Run("Valid UTF-8", func(t *testing.T) {
		c := New(mustType(t, "teXt"), []byte("héllo"))
		text, err := c.DataAsString()
		if err != nil {
			t.Fatalf("data as string: %v", err)
		}
		if text != "héllo" {
			t.Errorf("got %q want %q", text, "héllo")
		}
	})

	t.Run("Invalid UTF-8", func(t *testing.T) {
		c := New(mustType(t, "teXt"), []byte{0xFF, 0xFE, 0xFD})
		if _, err := c.DataAsString(); !errors.Is(err, ErrNotUTF8) {
			t.Errorf("expected ErrNotUTF8, got %v", err)
		}
	})
}

func TestEmptyData(t *testing.T) {
	c := New(mustType(t, "ruSt"), nil)

	if c.Length() != 0 {
		t.Errorf("length: got %d want 0", c.Length())
	}
	if c.WireSize() != Overhead {
		t.Errorf("wire size: got %d want %d", c.WireSize(), Overhead)
	}

	parsed, err := Parse(c.Bytes())
	if err != nil {
		t.Fatalf("parsing empty chunk: %v", err)
	}
	if parsed.Length() != 0 {
		t.Errorf("parsed length: got %d want 0", parsed.Length())
	}
}
