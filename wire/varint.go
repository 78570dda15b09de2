package wire

// maxVarintLen is the longest legal encoding of a 64-bit varint.
const maxVarintLen = 10

// DECODER METHODS

// DecodeVarint decodes a varint from the current position. It accepts
// non-canonical encodings (redundant continuation groups) but fails with
// ErrVarintOverflow once an 11th byte would be needed and with
// ErrTruncatedBuffer if the buffer ends before a terminating byte.
func (d *Decoder) DecodeVarint() (uint64, error) {
	var result uint64
	var shift uint

	for i := 0; i < maxVarintLen; i++ {
		if d.pos >= len(d.buf) {
			return 0, ErrTruncatedBuffer
		}

		b := d.buf[d.pos]
		d.pos++

		// Groups beyond the 64th bit only matter for termination.
		if shift < 64 {
			result |= uint64(b&0x7F) << shift
		}

		if b&0x80 == 0 {
			return result, nil
		}

		shift += 7
	}

	return 0, ErrVarintOverflow
}

// DecodeInt32 decodes a varint as int32.
func (d *Decoder) DecodeInt32() (int32, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// DecodeInt64 decodes a varint as int64.
func (d *Decoder) DecodeInt64() (int64, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// DecodeSint32 decodes a zigzag-encoded signed varint as int32.
func (d *Decoder) DecodeSint32() (int32, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, err
	}
	return DecodeZigZag32(v), nil
}

// DecodeSint64 decodes a zigzag-encoded signed varint as int64.
func (d *Decoder) DecodeSint64() (int64, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, err
	}
	return DecodeZigZag64(v), nil
}

// DecodeBool decodes a varint as bool.
func (d *Decoder) DecodeBool() (bool, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// SkipVarint skips over a varint without decoding it.
func (d *Decoder) SkipVarint() error {
	for i := 0; i < maxVarintLen; i++ {
		if d.pos >= len(d.buf) {
			return ErrTruncatedBuffer
		}

		b := d.buf[d.pos]
		d.pos++

		if b&0x80 == 0 {
			return nil
		}
	}
	return ErrVarintOverflow
}

// ENCODER METHODS

// EncodeVarint appends the canonical varint encoding of v: little-endian
// base-128 groups, continuation bit in the high bit, 1-10 bytes.
func (e *Encoder) EncodeVarint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// EncodeInt32 encodes an int32 as varint. Negative values occupy the
// full 10 bytes, matching the reference wire format.
func (e *Encoder) EncodeInt32(v int32) {
	e.EncodeVarint(uint64(int64(v)))
}

// EncodeInt64 encodes an int64 as varint.
func (e *Encoder) EncodeInt64(v int64) {
	e.EncodeVarint(uint64(v))
}

// EncodeUint32 encodes a uint32 as varint.
func (e *Encoder) EncodeUint32(v uint32) {
	e.EncodeVarint(uint64(v))
}

// EncodeUint64 encodes a uint64 as varint.
func (e *Encoder) EncodeUint64(v uint64) {
	e.EncodeVarint(v)
}

// EncodeSint32 encodes a signed int32 with zigzag encoding.
func (e *Encoder) EncodeSint32(v int32) {
	e.EncodeVarint(EncodeZigZag32(v))
}

// EncodeSint64 encodes a signed int64 with zigzag encoding.
func (e *Encoder) EncodeSint64(v int64) {
	e.EncodeVarint(EncodeZigZag64(v))
}

// EncodeBool encodes a bool as varint.
func (e *Encoder) EncodeBool(v bool) {
	if v {
		e.EncodeVarint(1)
	} else {
		e.EncodeVarint(0)
	}
}

// UTILITY FUNCTIONS

// DecodeZigZag32 decodes a zigzag-encoded 32-bit integer.
func DecodeZigZag32(encoded uint64) int32 {
	return int32((uint32(encoded) >> 1) ^ uint32(-int32(encoded&1)))
}

// DecodeZigZag64 decodes a zigzag-encoded 64-bit integer.
func DecodeZigZag64(encoded uint64) int64 {
	return int64((encoded >> 1) ^ uint64(-int64(encoded&1)))
}

// EncodeZigZag32 encodes a signed 32-bit integer using zigzag encoding.
func EncodeZigZag32(v int32) uint64 {
	return uint64((uint32(v) << 1) ^ uint32(v>>31))
}

// EncodeZigZag64 encodes a signed 64-bit integer using zigzag encoding.
func EncodeZigZag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// VarintSize returns the number of bytes needed to encode the given
// value canonically.
func VarintSize(v uint64) int {
	switch {
	case v < 1<<7:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<21:
		return 3
	case v < 1<<28:
		return 4
	case v < 1<<35:
		return 5
	case v < 1<<42:
		return 6
	case v < 1<<49:
		return 7
	case v < 1<<56:
		return 8
	case v < 1<<63:
		return 9
	default:
		return 10
	}
}
