// Package schema defines the static type tables the wirelite codec is
// driven by. A Message is a fixed mapping from field number to field kind,
// built by the caller (or loaded from a .proto file via the registry) and
// handed to the wire package at encode/decode time. The tables are plain
// data: they hold no state and are safe to share between goroutines.
package schema

// Message represents one message schema: an ordered set of fields keyed
// by field number. Field numbers need not be contiguous.
type Message struct {
	Name     string   `json:"name"`
	Fields   []*Field `json:"fields"`
	MapEntry bool     `json:"map_entry"` // synthesized {key,value} entry message
}

// FieldByNumber returns the field with the given number, or nil.
func (m *Message) FieldByNumber(number int32) *Field {
	for _, f := range m.Fields {
		if f.Number == number {
			return f
		}
	}
	return nil
}

// FieldByName returns the field with the given name, or nil.
func (m *Message) FieldByName(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Field represents a single message field.
type Field struct {
	Name   string     `json:"name"`
	Number int32      `json:"number"`
	Label  FieldLabel `json:"label"`
	Type   FieldType  `json:"type"`
}

// FieldLabel represents field cardinality.
type FieldLabel string

const (
	LabelOptional FieldLabel = "optional"
	LabelRepeated FieldLabel = "repeated"
)

// FieldType represents field type information.
type FieldType struct {
	Kind        TypeKind   `json:"kind"`
	ScalarType  ScalarType `json:"scalar_type,omitempty"`  // for KindScalar
	MessageType string     `json:"message_type,omitempty"` // for KindMessage: registry name
	MapKey      *FieldType `json:"map_key,omitempty"`      // for KindMap
	MapValue    *FieldType `json:"map_value,omitempty"`    // for KindMap
}

// TypeKind represents the kind of a field type.
type TypeKind string

const (
	KindScalar  TypeKind = "scalar"
	KindMessage TypeKind = "message"
	KindMap     TypeKind = "map"
)

// ScalarType represents the scalar types carried by the two supported
// wire types: varint-backed integers and booleans, and length-delimited
// strings and byte strings. Fixed-width and floating-point types are not
// part of the format.
type ScalarType string

const (
	TypeInt32  ScalarType = "int32"
	TypeInt64  ScalarType = "int64"
	TypeUint32 ScalarType = "uint32"
	TypeUint64 ScalarType = "uint64"
	TypeSint32 ScalarType = "sint32"
	TypeSint64 ScalarType = "sint64"
	TypeBool   ScalarType = "bool"
	TypeString ScalarType = "string"
	TypeBytes  ScalarType = "bytes"
)

var scalarTypes = map[ScalarType]struct{}{
	TypeInt32:  {},
	TypeInt64:  {},
	TypeUint32: {},
	TypeUint64: {},
	TypeSint32: {},
	TypeSint64: {},
	TypeBool:   {},
	TypeString: {},
	TypeBytes:  {},
}

// IsScalarType reports whether t names a supported scalar type.
func IsScalarType(t ScalarType) bool {
	_, ok := scalarTypes[t]
	return ok
}

// IsLengthDelimited reports whether t is carried as length-delimited
// bytes on the wire rather than as a varint.
func IsLengthDelimited(t ScalarType) bool {
	return t == TypeString || t == TypeBytes
}

// ZeroValue returns the decode-time default for an absent field of the
// given type: zero integer, false, empty string, empty byte slice. Nested
// message types have no zero value (absence is represented by absence).
func ZeroValue(t ScalarType) interface{} {
	switch t {
	case TypeInt32:
		return int32(0)
	case TypeInt64:
		return int64(0)
	case TypeUint32:
		return uint32(0)
	case TypeUint64:
		return uint64(0)
	case TypeSint32:
		return int32(0)
	case TypeSint64:
		return int64(0)
	case TypeBool:
		return false
	case TypeString:
		return ""
	case TypeBytes:
		return []byte{}
	default:
		return nil
	}
}
