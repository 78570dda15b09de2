package wire

import "fmt"

// EncodeTag appends the varint-encoded tag for (fieldNumber, wireType).
// Field numbers above 15 need more than one byte, so the packed tag is
// always routed through the varint encoder rather than emitted as a raw
// byte.
func (e *Encoder) EncodeTag(fieldNumber FieldNumber, wireType WireType) error {
	if fieldNumber < 1 || fieldNumber > MaxFieldNumber {
		return fmt.Errorf("%w: %d", ErrInvalidFieldNumber, fieldNumber)
	}
	if wireType != WireVarint && wireType != WireBytes {
		return fmt.Errorf("%w: %d", ErrUnsupportedWireType, wireType)
	}
	e.EncodeVarint(uint64(MakeTag(fieldNumber, wireType)))
	return nil
}

// DecodeTag decodes a tag varint from the current position and splits it
// into field number and wire type. Wire-type bits outside {0, 2} yield
// ErrUnsupportedWireType; a zero field number yields
// ErrInvalidFieldNumber.
func (d *Decoder) DecodeTag() (FieldNumber, WireType, error) {
	raw, err := d.DecodeVarint()
	if err != nil {
		return 0, 0, err
	}

	// Validate the number bits before the int32 conversion so oversize
	// numbers cannot wrap into the valid range.
	if raw>>3 > uint64(MaxFieldNumber) {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidFieldNumber, raw>>3)
	}

	fieldNumber, wireType := ParseTag(Tag(raw))
	if wireType != WireVarint && wireType != WireBytes {
		return 0, 0, fmt.Errorf("%w: %d for field %d", ErrUnsupportedWireType, wireType, fieldNumber)
	}
	if fieldNumber < 1 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidFieldNumber, fieldNumber)
	}
	return fieldNumber, wireType, nil
}
