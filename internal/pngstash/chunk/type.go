package chunk

import (
	"errors"
	"fmt"
)

// Property bits for the four type bytes. Bit 5 is the case bit of the
// ASCII letter, which the PNG spec overloads as a property flag.
const propertyBit = 0x20

// ErrInvalidChunkType indicates type bytes that are not four ASCII
// letters, or a type with the reserved bit set where validity is required.
var ErrInvalidChunkType = errors.New("invalid chunk type")

// Type is a 4-byte chunk type code.
type Type struct {
	code [4]byte
}

// TypeFromBytes stores four raw bytes as a chunk type. It always
// succeeds; use IsValid to check the result against the PNG rules.
func TypeFromBytes(code [4]byte) Type {
	return Type{code: code}
}

// TypeFromString parses a chunk type from its string form. The string
// must be exactly four ASCII letters.
func TypeFromString(s string) (Type, error) {
	if len(s) != 4 {
		return Type{}, fmt.Errorf("%w: got %d bytes, want 4", ErrInvalidChunkType, len(s))
	}

	var code [4]byte
	for i := 0; i < 4; i++ {
		if !isTypeByte(s[i]) {
			return Type{}, fmt.Errorf("%w: byte %d of %q is not an ASCII letter", ErrInvalidChunkType, i, s)
		}
		code[i] = s[i]
	}

	return Type{code: code}, nil
}

// isTypeByte reports whether b is in A-Z or a-z.
func isTypeByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// Bytes returns the raw type bytes unchanged.
func (t Type) Bytes() [4]byte {
	return t.code
}

func (t Type) String() string {
	return string(t.code[:])
}

// IsCritical reports whether readers must understand this chunk to
// render the image (bit 5 of the first byte clear).
func (t Type) IsCritical() bool {
	return t.code[0]&propertyBit == 0
}

// IsPublic reports whether the type belongs to the public registry
// (bit 5 of the second byte clear).
func (t Type) IsPublic() bool {
	return t.code[1]&propertyBit == 0
}

// IsReservedBitValid reports whether the reserved bit (bit 5 of the
// third byte) is clear, as required of every conforming chunk type.
func (t Type) IsReservedBitValid() bool {
	return t.code[2]&propertyBit == 0
}

// IsSafeToCopy reports whether editors may copy this chunk without
// understanding it (bit 5 of the fourth byte set).
func (t Type) IsSafeToCopy() bool {
	return t.code[3]&propertyBit != 0
}

// IsValid reports whether all four bytes are ASCII letters and the
// reserved bit is clear.
func (t Type) IsValid() bool {
	if !t.IsReservedBitValid() {
		return false
	}
	for _, b := range t.code {
		if !isTypeByte(b) {
			return false
		}
	}
	return true
}
