package wire

// ===== TLV WIRE FORMAT TYPES =====

// WireType represents the wire types of the format. Only varint and
// length-delimited framing exist; fixed-width wire types are rejected.
type WireType int32

const (
	WireVarint WireType = 0 // integers, booleans, enum numbers
	WireBytes  WireType = 2 // strings, bytes, nested messages, map entries
)

// FieldNumber represents a field number. Valid numbers are in
// [1, MaxFieldNumber].
type FieldNumber int32

// MaxFieldNumber is the largest supported field number (2^29 - 1).
const MaxFieldNumber FieldNumber = 1<<29 - 1

// Tag represents a field tag (field number + wire type) before varint
// encoding.
type Tag uint64

// MakeTag creates a tag from field number and wire type.
func MakeTag(fieldNumber FieldNumber, wireType WireType) Tag {
	return Tag(uint64(fieldNumber)<<3 | uint64(wireType))
}

// ParseTag parses a tag into field number and wire type.
func ParseTag(tag Tag) (FieldNumber, WireType) {
	return FieldNumber(tag >> 3), WireType(tag & 0x7)
}

// Value represents a single decoded field occurrence.
type Value struct {
	FieldNumber FieldNumber
	WireType    WireType
	Data        interface{}
}
