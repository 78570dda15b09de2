package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestEncodeVarint_KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		expected []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"max single byte", 127, []byte{0x7F}},
		{"first two byte value", 128, []byte{0x80, 0x01}},
		{"three hundred", 300, []byte{0xAC, 0x02}},
		{"max two byte value", 16383, []byte{0xFF, 0x7F}},
		{"first three byte value", 16384, []byte{0x80, 0x80, 0x01}},
		{"max uint64", math.MaxUint64, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			e.EncodeVarint(tt.value)
			if !bytes.Equal(e.Bytes(), tt.expected) {
				t.Errorf("EncodeVarint(%d) = %x, want %x", tt.value, e.Bytes(), tt.expected)
			}
			if got := VarintSize(tt.value); got != len(tt.expected) {
				t.Errorf("VarintSize(%d) = %d, want %d", tt.value, got, len(tt.expected))
			}
		})
	}
}

func TestDecodeVarint_RoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 300, 16383, 16384,
		1 << 21, 1 << 28, 1 << 35, 1 << 56, 1 << 63,
		math.MaxUint64,
	}

	for _, value := range values {
		e := NewEncoder()
		e.EncodeVarint(value)

		d := NewDecoder(e.Bytes())
		got, err := d.DecodeVarint()
		if err != nil {
			t.Fatalf("DecodeVarint(%d): %v", value, err)
		}
		if got != value {
			t.Errorf("DecodeVarint round trip = %d, want %d", got, value)
		}
		if d.Remaining() != 0 {
			t.Errorf("DecodeVarint(%d) left %d bytes unread", value, d.Remaining())
		}
	}
}

func TestDecodeVarint_NonCanonical(t *testing.T) {
	// 1 encoded with a redundant continuation group. Decoders accept it,
	// encoders never produce it.
	d := NewDecoder([]byte{0x81, 0x00})
	got, err := d.DecodeVarint()
	if err != nil {
		t.Fatalf("non-canonical decode: %v", err)
	}
	if got != 1 {
		t.Errorf("non-canonical decode = %d, want 1", got)
	}
}

func TestDecodeVarint_Truncated(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty buffer", []byte{}},
		{"lone continuation byte", []byte{0x80}},
		{"ends mid varint", []byte{0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.input)
			if _, err := d.DecodeVarint(); !errors.Is(err, ErrTruncatedBuffer) {
				t.Errorf("expected ErrTruncatedBuffer, got %v", err)
			}
		})
	}
}

func TestDecodeVarint_Overflow(t *testing.T) {
	// Ten continuation bytes force an eleventh, which is past the legal
	// maximum length.
	input := bytes.Repeat([]byte{0x80}, 10)
	input = append(input, 0x01)

	d := NewDecoder(input)
	if _, err := d.DecodeVarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("expected ErrVarintOverflow, got %v", err)
	}
}

func TestSkipVarint(t *testing.T) {
	e := NewEncoder()
	e.EncodeVarint(300)
	e.EncodeVarint(7)

	d := NewDecoder(e.Bytes())
	if err := d.SkipVarint(); err != nil {
		t.Fatalf("SkipVarint: %v", err)
	}
	got, err := d.DecodeVarint()
	if err != nil {
		t.Fatalf("DecodeVarint after skip: %v", err)
	}
	if got != 7 {
		t.Errorf("value after skip = %d, want 7", got)
	}

	if err := NewDecoder([]byte{0x80}).SkipVarint(); !errors.Is(err, ErrTruncatedBuffer) {
		t.Errorf("expected ErrTruncatedBuffer on truncated skip, got %v", err)
	}
}

func TestEncodeInt32_NegativeUsesTenBytes(t *testing.T) {
	e := NewEncoder()
	e.EncodeInt32(-1)
	if e.Len() != 10 {
		t.Fatalf("EncodeInt32(-1) used %d bytes, want 10", e.Len())
	}

	d := NewDecoder(e.Bytes())
	got, err := d.DecodeInt32()
	if err != nil {
		t.Fatalf("DecodeInt32: %v", err)
	}
	if got != -1 {
		t.Errorf("DecodeInt32 round trip = %d, want -1", got)
	}
}

func TestZigZag(t *testing.T) {
	tests := []struct {
		value   int64
		encoded uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{2147483647, 4294967294},
		{-2147483648, 4294967295},
	}

	for _, tt := range tests {
		if got := EncodeZigZag64(tt.value); got != tt.encoded {
			t.Errorf("EncodeZigZag64(%d) = %d, want %d", tt.value, got, tt.encoded)
		}
		if got := DecodeZigZag64(tt.encoded); got != tt.value {
			t.Errorf("DecodeZigZag64(%d) = %d, want %d", tt.encoded, got, tt.value)
		}
	}

	if got := EncodeZigZag32(-2147483648); got != 4294967295 {
		t.Errorf("EncodeZigZag32(min int32) = %d, want 4294967295", got)
	}
	if got := DecodeZigZag32(4294967295); got != -2147483648 {
		t.Errorf("DecodeZigZag32(4294967295) = %d, want min int32", got)
	}
}

func TestSintRoundTrip(t *testing.T) {
	for _, value := range []int64{0, -1, 1, -64, 63, -1 << 40, 1<<40 - 1, math.MinInt64, math.MaxInt64} {
		e := NewEncoder()
		e.EncodeSint64(value)

		d := NewDecoder(e.Bytes())
		got, err := d.DecodeSint64()
		if err != nil {
			t.Fatalf("DecodeSint64(%d): %v", value, err)
		}
		if got != value {
			t.Errorf("sint64 round trip = %d, want %d", got, value)
		}
	}

	// Small negatives stay small on the wire, unlike plain int encoding.
	e := NewEncoder()
	e.EncodeSint32(-1)
	if e.Len() != 1 {
		t.Errorf("EncodeSint32(-1) used %d bytes, want 1", e.Len())
	}
}
