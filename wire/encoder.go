// Package wire implements the TLV wire format: tag/wire-type framed
// fields with base-128 varints and length-delimited payloads. Encoding
// and decoding are schema-driven and stateless across calls; an Encoder
// or Decoder instance belongs to a single goroutine for the duration of
// a call, but independent instances may run concurrently.
package wire

import (
	"github.com/wirelite/wirelite/registry"
	"github.com/wirelite/wirelite/schema"
)

// Encoder handles low-level wire format encoding into an append-only
// buffer.
type Encoder struct {
	buf      []byte
	registry *registry.Registry
}

// NewEncoder creates a new wire format encoder.
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0),
	}
}

// NewEncoderWithRegistry creates an encoder with a schema registry for
// resolving nested message types.
func NewEncoderWithRegistry(registry *registry.Registry) *Encoder {
	return &Encoder{
		buf:      make([]byte, 0),
		registry: registry,
	}
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of encoded bytes so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// EncodeMessage encodes a message using its schema - main entry point.
func EncodeMessage(data map[string]interface{}, msg *schema.Message, registry *registry.Registry) ([]byte, error) {
	encoder := NewEncoderWithRegistry(registry)
	me := NewMessageEncoder(encoder)
	if err := me.EncodeMessage(data, msg); err != nil {
		return nil, err
	}
	return encoder.Bytes(), nil
}
