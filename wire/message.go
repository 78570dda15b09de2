package wire

import (
	"fmt"
	"sort"

	"github.com/wirelite/wirelite/schema"
)

// MessageDecoder handles nested message decoding operations.
type MessageDecoder struct {
	decoder *Decoder
}

// MessageEncoder handles message encoding operations.
type MessageEncoder struct {
	encoder *Encoder
}

// NewMessageDecoder creates a new message decoder.
func NewMessageDecoder(d *Decoder) *MessageDecoder {
	return &MessageDecoder{decoder: d}
}

// NewMessageEncoder creates a new message encoder.
func NewMessageEncoder(e *Encoder) *MessageEncoder {
	return &MessageEncoder{encoder: e}
}

// DECODER METHODS

// DecodeMessage decodes a nested message. The submessage is framed as
// length-delimited bytes; its interpretation comes from the registry
// schema for messageType, not from the wire format itself.
func (md *MessageDecoder) DecodeMessage(messageType string) (interface{}, error) {
	messageBytes, err := md.decoder.DecodeBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to decode message bytes: %w", err)
	}

	if md.decoder.registry == nil {
		// No registry available, surface raw bytes.
		return messageBytes, nil
	}

	msg, err := md.decoder.registry.GetMessage(messageType)
	if err != nil {
		return messageBytes, nil
	}

	nestedDecoder := NewDecoderWithRegistry(messageBytes, md.decoder.registry)
	return nestedDecoder.DecodeWithSchema(msg)
}

// ENCODER METHODS

// EncodeMessage encodes the given data as one message. Fields are
// written in ascending field-number order; keys in data with no schema
// counterpart are ignored. A nested message must be fully materialized
// before its length prefix can be written, so submessages are encoded
// into their own buffer first.
func (me *MessageEncoder) EncodeMessage(data map[string]interface{}, msg *schema.Message) error {
	type fieldEntry struct {
		value interface{}
		field *schema.Field
	}
	var entries []fieldEntry
	for fieldName, fieldValue := range data {
		field := msg.FieldByName(fieldName)
		if field == nil {
			continue // skip unknown keys
		}
		entries = append(entries, fieldEntry{value: fieldValue, field: field})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].field.Number < entries[j].field.Number
	})

	for _, entry := range entries {
		field := entry.field

		var err error
		switch {
		case field.Type.Kind == schema.KindMap:
			// Map fields carry one tag per entry; the map encoder owns
			// the tags.
			mapEncoder := NewMapEncoder(me.encoder)
			err = mapEncoder.EncodeMapField(entry.value, field)
		case field.Label == schema.LabelRepeated:
			err = me.encodeRepeatedField(entry.value, field)
		default:
			if err = me.encoder.EncodeTag(FieldNumber(field.Number), wireTypeFor(&field.Type)); err == nil {
				err = me.encodeSingularValue(entry.value, &field.Type)
			}
		}
		if err != nil {
			return wrapWithField(err, field.Name)
		}
	}

	return nil
}

// encodeRepeatedField encodes one tag+value pair per element, in element
// order. Packed encoding is not part of the format.
func (me *MessageEncoder) encodeRepeatedField(value interface{}, field *schema.Field) error {
	slice, err := toInterfaceSlice(value)
	if err != nil {
		return err
	}

	for _, element := range slice {
		if err := me.encoder.EncodeTag(FieldNumber(field.Number), wireTypeFor(&field.Type)); err != nil {
			return err
		}
		if err := me.encodeSingularValue(element, &field.Type); err != nil {
			return err
		}
	}

	return nil
}

// encodeSingularValue encodes one value of the given type, without a tag.
func (me *MessageEncoder) encodeSingularValue(value interface{}, fieldType *schema.FieldType) error {
	switch fieldType.Kind {
	case schema.KindScalar:
		return me.encoder.encodeScalar(value, fieldType.ScalarType)
	case schema.KindMessage:
		return me.encodeMessageField(value, fieldType.MessageType)
	default:
		return fmt.Errorf("unsupported field kind: %s", fieldType.Kind)
	}
}

// encodeMessageField encodes a nested message field as length-delimited
// bytes.
func (me *MessageEncoder) encodeMessageField(value interface{}, messageTypeName string) error {
	// Pre-encoded submessages pass through unchanged.
	if messageBytes, ok := value.([]byte); ok {
		me.encoder.EncodeBytes(messageBytes)
		return nil
	}

	messageData, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("message value must be map[string]interface{} or []byte, got %T", value)
	}

	if me.encoder.registry == nil {
		return fmt.Errorf("registry is required to encode message fields")
	}
	messageSchema, err := me.encoder.registry.GetMessage(messageTypeName)
	if err != nil {
		return fmt.Errorf("failed to get message schema for %s: %w", messageTypeName, err)
	}

	nestedEncoder := NewEncoderWithRegistry(me.encoder.registry)
	if err := NewMessageEncoder(nestedEncoder).EncodeMessage(messageData, messageSchema); err != nil {
		return err
	}

	me.encoder.EncodeBytes(nestedEncoder.Bytes())
	return nil
}

// encodeScalar encodes one scalar value, coercing the common Go integer
// widths so hand-built data maps don't have to cast every literal.
func (e *Encoder) encodeScalar(value interface{}, scalarType schema.ScalarType) error {
	switch scalarType {
	case schema.TypeString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("string field value must be string, got %T", value)
		}
		e.EncodeString(s)
	case schema.TypeBytes:
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("bytes field value must be []byte, got %T", value)
		}
		e.EncodeBytes(b)
	case schema.TypeInt32:
		v, err := toInt64(value)
		if err != nil {
			return err
		}
		e.EncodeInt32(int32(v))
	case schema.TypeInt64:
		v, err := toInt64(value)
		if err != nil {
			return err
		}
		e.EncodeInt64(v)
	case schema.TypeSint32:
		v, err := toInt64(value)
		if err != nil {
			return err
		}
		e.EncodeSint32(int32(v))
	case schema.TypeSint64:
		v, err := toInt64(value)
		if err != nil {
			return err
		}
		e.EncodeSint64(v)
	case schema.TypeUint32:
		v, err := toUint64(value)
		if err != nil {
			return err
		}
		e.EncodeUint32(uint32(v))
	case schema.TypeUint64:
		v, err := toUint64(value)
		if err != nil {
			return err
		}
		e.EncodeUint64(v)
	case schema.TypeBool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("bool field value must be bool, got %T", value)
		}
		e.EncodeBool(b)
	default:
		return fmt.Errorf("unsupported scalar type: %s", scalarType)
	}
	return nil
}

// toInterfaceSlice converts the common concrete slice types to
// []interface{} for repeated-field encoding.
func toInterfaceSlice(value interface{}) ([]interface{}, error) {
	switch v := value.(type) {
	case []interface{}:
		return v, nil
	case []map[string]interface{}:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	case []string:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	case []int32:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	case []int64:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	case []int:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	case []uint32:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	case []uint64:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	case []bool:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	case [][]byte:
		slice := make([]interface{}, len(v))
		for i, val := range v {
			slice[i] = val
		}
		return slice, nil
	default:
		return nil, fmt.Errorf("repeated field value must be a slice, got %T", value)
	}
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("integer field value must be int/int32/int64, got %T", value)
	}
}

func toUint64(value interface{}) (uint64, error) {
	switch v := value.(type) {
	case uint:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("unsigned field value must be non-negative, got %d", v)
		}
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("unsigned field value must be uint/uint32/uint64, got %T", value)
	}
}

// Convenience wrappers on the main encoder/decoder.

// DecodeMessage - convenience method for the main decoder.
func (d *Decoder) DecodeMessage(messageType string) (interface{}, error) {
	md := NewMessageDecoder(d)
	return md.DecodeMessage(messageType)
}

// EncodeMessage - convenience method for the main encoder.
func (e *Encoder) EncodeMessage(data map[string]interface{}, msg *schema.Message) error {
	me := NewMessageEncoder(e)
	return me.EncodeMessage(data, msg)
}
