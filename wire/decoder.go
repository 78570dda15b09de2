package wire

import (
	"fmt"

	"github.com/wirelite/wirelite/registry"
	"github.com/wirelite/wirelite/schema"
)

// Decoder handles low-level wire format decoding from a flat buffer.
type Decoder struct {
	buf      []byte
	pos      int
	registry *registry.Registry
}

// NewDecoder creates a new wire format decoder.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
		pos: 0,
	}
}

// NewDecoderWithRegistry creates a decoder with a schema registry for
// resolving nested message types.
func NewDecoderWithRegistry(data []byte, registry *registry.Registry) *Decoder {
	return &Decoder{
		buf:      data,
		pos:      0,
		registry: registry,
	}
}

// Pos returns the current read offset.
func (d *Decoder) Pos() int {
	return d.pos
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// DecodeMessage decodes wire bytes using a schema - main entry point.
func DecodeMessage(data []byte, msg *schema.Message, registry *registry.Registry) (map[string]interface{}, error) {
	decoder := NewDecoderWithRegistry(data, registry)
	return decoder.DecodeWithSchema(msg)
}

// DecodeWithSchema decodes the remaining buffer as one message. Fields
// may arrive in any order and any number of times: a duplicate singular
// field overwrites, a repeated field appends, a duplicate map key takes
// the last value. Unknown field numbers, and known fields whose tag wire
// type disagrees with the schema, are consumed via their self-describing
// framing and dropped. Known fields absent from the buffer come back as
// their type's zero value (absent singular submessages stay absent).
func (d *Decoder) DecodeWithSchema(msg *schema.Message) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	mapCollector := make(map[string]map[interface{}]interface{})
	repeatedCollector := make(map[string][]interface{})

	for d.pos < len(d.buf) {
		fieldNumber, wireType, err := d.DecodeTag()
		if err != nil {
			return nil, wrapWithField(err, msg.Name)
		}

		field := msg.FieldByNumber(int32(fieldNumber))
		if field == nil || wireTypeFor(&field.Type) != wireType {
			// Unknown field, or a known field whose wire type no longer
			// matches the schema: skip either way.
			if err := d.skipField(wireType); err != nil {
				return nil, wrapWithField(err, msg.Name)
			}
			continue
		}

		value, err := d.decodeTypedField(&field.Type)
		if err != nil {
			return nil, wrapWithField(err, field.Name)
		}

		switch {
		case field.Type.Kind == schema.KindMap:
			if mapCollector[field.Name] == nil {
				mapCollector[field.Name] = make(map[interface{}]interface{})
			}
			entry := value.(mapEntry)
			mapCollector[field.Name][entry.key] = entry.value
		case field.Label == schema.LabelRepeated:
			repeatedCollector[field.Name] = append(repeatedCollector[field.Name], value)
		default:
			result[field.Name] = value
		}
	}

	for fieldName, mapData := range mapCollector {
		result[fieldName] = mapData
	}
	for fieldName, repeatedData := range repeatedCollector {
		result[fieldName] = repeatedData
	}

	d.populateDefaults(result, msg)

	return result, nil
}

// populateDefaults fills type-appropriate zero values for schema fields
// the buffer never mentioned.
func (d *Decoder) populateDefaults(result map[string]interface{}, msg *schema.Message) {
	for _, field := range msg.Fields {
		if _, ok := result[field.Name]; ok {
			continue
		}
		switch {
		case field.Type.Kind == schema.KindMap:
			result[field.Name] = make(map[interface{}]interface{})
		case field.Label == schema.LabelRepeated:
			result[field.Name] = []interface{}{}
		case field.Type.Kind == schema.KindScalar:
			result[field.Name] = schema.ZeroValue(field.Type.ScalarType)
		}
		// Singular message fields keep message-presence semantics: an
		// unset submessage is absent, not an empty map.
	}
}

// decodeTypedField routes to the appropriate decoder based on the
// schema-declared field type. The caller has already verified the tag's
// wire type against the schema.
func (d *Decoder) decodeTypedField(fieldType *schema.FieldType) (interface{}, error) {
	switch fieldType.Kind {
	case schema.KindScalar:
		return d.decodeScalar(fieldType.ScalarType)
	case schema.KindMessage:
		md := NewMessageDecoder(d)
		return md.DecodeMessage(fieldType.MessageType)
	case schema.KindMap:
		mapDecoder := NewMapDecoder(d)
		key, value, err := mapDecoder.DecodeMapEntry(fieldType.MapKey, fieldType.MapValue)
		if err != nil {
			return nil, err
		}
		return mapEntry{key: key, value: value}, nil
	default:
		return nil, fmt.Errorf("unsupported field kind: %s", fieldType.Kind)
	}
}

// decodeScalar decodes one scalar value of the given type from the
// current position.
func (d *Decoder) decodeScalar(scalarType schema.ScalarType) (interface{}, error) {
	if schema.IsLengthDelimited(scalarType) {
		data, err := d.DecodeBytes()
		if err != nil {
			return nil, err
		}
		if scalarType == schema.TypeString {
			return string(data), nil
		}
		return data, nil
	}

	rawValue, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}
	switch scalarType {
	case schema.TypeInt32:
		return int32(rawValue), nil
	case schema.TypeInt64:
		return int64(rawValue), nil
	case schema.TypeUint32:
		return uint32(rawValue), nil
	case schema.TypeUint64:
		return rawValue, nil
	case schema.TypeSint32:
		return DecodeZigZag32(rawValue), nil
	case schema.TypeSint64:
		return DecodeZigZag64(rawValue), nil
	case schema.TypeBool:
		return rawValue != 0, nil
	default:
		return nil, fmt.Errorf("unsupported scalar type: %s", scalarType)
	}
}

// DecodeField decodes a single schemaless field from the current
// position: the wire framing alone determines how much input is
// consumed. Returns nil when the buffer is exhausted.
func (d *Decoder) DecodeField() (*Value, error) {
	if d.pos >= len(d.buf) {
		return nil, nil
	}

	fieldNumber, wireType, err := d.DecodeTag()
	if err != nil {
		return nil, err
	}

	var data interface{}
	switch wireType {
	case WireVarint:
		data, err = d.DecodeVarint()
	case WireBytes:
		data, err = d.DecodeBytes()
	}
	if err != nil {
		return nil, err
	}

	return &Value{
		FieldNumber: fieldNumber,
		WireType:    wireType,
		Data:        data,
	}, nil
}

// mapEntry is the intermediate result of decoding one map entry field.
type mapEntry struct {
	key   interface{}
	value interface{}
}

// wireTypeFor returns the wire type a schema field type is framed with.
func wireTypeFor(fieldType *schema.FieldType) WireType {
	switch fieldType.Kind {
	case schema.KindScalar:
		if schema.IsLengthDelimited(fieldType.ScalarType) {
			return WireBytes
		}
		return WireVarint
	case schema.KindMessage, schema.KindMap:
		return WireBytes
	default:
		return WireVarint
	}
}
