package wire

import "fmt"

// DECODER METHODS

// DecodeBytes decodes a length-delimited byte string: a length varint
// followed by that many payload bytes. The returned slice is a copy and
// does not alias the input buffer.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	length, err := d.DecodeVarint()
	if err != nil {
		return nil, fmt.Errorf("failed to decode length prefix: %w", err)
	}

	if length > uint64(len(d.buf)-d.pos) {
		return nil, fmt.Errorf("%w: need %d payload bytes, have %d", ErrTruncatedBuffer, length, len(d.buf)-d.pos)
	}

	data := make([]byte, length)
	copy(data, d.buf[d.pos:d.pos+int(length)])
	d.pos += int(length)

	return data, nil
}

// DecodeString decodes a length-delimited UTF-8 string.
func (d *Decoder) DecodeString() (string, error) {
	data, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeRawBytes decodes a length-delimited byte string without copying;
// the result aliases the decoder's buffer.
func (d *Decoder) DecodeRawBytes() ([]byte, error) {
	length, err := d.DecodeVarint()
	if err != nil {
		return nil, fmt.Errorf("failed to decode length prefix: %w", err)
	}

	if length > uint64(len(d.buf)-d.pos) {
		return nil, fmt.Errorf("%w: need %d payload bytes, have %d", ErrTruncatedBuffer, length, len(d.buf)-d.pos)
	}

	data := d.buf[d.pos : d.pos+int(length)]
	d.pos += int(length)

	return data, nil
}

// SkipBytes skips over a length-delimited byte string.
func (d *Decoder) SkipBytes() error {
	length, err := d.DecodeVarint()
	if err != nil {
		return err
	}

	if length > uint64(len(d.buf)-d.pos) {
		return fmt.Errorf("%w: cannot skip %d bytes, have %d", ErrTruncatedBuffer, length, len(d.buf)-d.pos)
	}

	d.pos += int(length)
	return nil
}

// skipField consumes one value of the given wire type without
// interpreting it. The value's framing is self-describing, which is what
// makes unknown fields skippable.
func (d *Decoder) skipField(wireType WireType) error {
	switch wireType {
	case WireVarint:
		return d.SkipVarint()
	case WireBytes:
		return d.SkipBytes()
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedWireType, wireType)
	}
}

// ENCODER METHODS

// EncodeBytes appends a length varint followed by the payload.
func (e *Encoder) EncodeBytes(data []byte) {
	e.EncodeVarint(uint64(len(data)))
	e.buf = append(e.buf, data...)
}

// EncodeString appends a string as length-delimited bytes.
func (e *Encoder) EncodeString(s string) {
	e.EncodeVarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// EncodeLengthDelimited appends a complete length-delimited field:
// tag, length varint, payload.
func (e *Encoder) EncodeLengthDelimited(fieldNumber FieldNumber, payload []byte) error {
	if err := e.EncodeTag(fieldNumber, WireBytes); err != nil {
		return err
	}
	e.EncodeBytes(payload)
	return nil
}

// UTILITY FUNCTIONS

// BytesSize returns the encoded size of a length-delimited byte string,
// excluding its tag.
func BytesSize(data []byte) int {
	return VarintSize(uint64(len(data))) + len(data)
}

// StringSize returns the encoded size of a length-delimited string,
// excluding its tag.
func StringSize(s string) int {
	return VarintSize(uint64(len(s))) + len(s)
}
