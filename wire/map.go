package wire

import (
	"fmt"
	"sort"

	"github.com/wirelite/wirelite/schema"
)

// Map fields are framed as repeated length-delimited entry messages with
// the key in field 1 and the value in field 2. Each entry carries its own
// tag in the parent message; duplicate keys resolve last-write-wins at
// decode time.

// MapDecoder handles map decoding operations.
type MapDecoder struct {
	decoder *Decoder
}

// MapEncoder handles map encoding operations.
type MapEncoder struct {
	encoder *Encoder
}

// NewMapDecoder creates a new map decoder.
func NewMapDecoder(d *Decoder) *MapDecoder {
	return &MapDecoder{decoder: d}
}

// NewMapEncoder creates a new map encoder.
func NewMapEncoder(e *Encoder) *MapEncoder {
	return &MapEncoder{encoder: e}
}

// DECODER METHODS

// DecodeMapEntry decodes one length-delimited {key, value} entry. An
// entry missing its key or value yields the type's zero value, and
// unknown entry fields are skipped.
func (md *MapDecoder) DecodeMapEntry(keyType, valueType *schema.FieldType) (interface{}, interface{}, error) {
	entryBytes, err := md.decoder.DecodeRawBytes()
	if err != nil {
		return nil, nil, err
	}

	entryDecoder := NewDecoderWithRegistry(entryBytes, md.decoder.registry)

	key := zeroEntryValue(keyType)
	value := zeroEntryValue(valueType)

	for entryDecoder.pos < len(entryDecoder.buf) {
		fieldNumber, wireType, err := entryDecoder.DecodeTag()
		if err != nil {
			return nil, nil, err
		}

		switch fieldNumber {
		case 1:
			if wireTypeFor(keyType) != wireType {
				if err := entryDecoder.skipField(wireType); err != nil {
					return nil, nil, err
				}
				continue
			}
			key, err = entryDecoder.decodeTypedField(keyType)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to decode map key: %w", err)
			}
		case 2:
			if wireTypeFor(valueType) != wireType {
				if err := entryDecoder.skipField(wireType); err != nil {
					return nil, nil, err
				}
				continue
			}
			value, err = entryDecoder.decodeTypedField(valueType)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to decode map value: %w", err)
			}
		default:
			if err := entryDecoder.skipField(wireType); err != nil {
				return nil, nil, err
			}
		}
	}

	return key, value, nil
}

// zeroEntryValue returns the default for a missing entry key or value.
func zeroEntryValue(fieldType *schema.FieldType) interface{} {
	if fieldType.Kind == schema.KindScalar {
		return schema.ZeroValue(fieldType.ScalarType)
	}
	return nil
}

// ENCODER METHODS

// EncodeMapField encodes a complete map field: one tagged entry per key,
// in deterministic (sorted) key order so equal maps encode to equal
// bytes.
func (me *MapEncoder) EncodeMapField(value interface{}, field *schema.Field) error {
	mapData, err := toGenericMap(value)
	if err != nil {
		return err
	}

	keys := make([]interface{}, 0, len(mapData))
	for key := range mapData {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})

	for _, key := range keys {
		if err := me.encoder.EncodeTag(FieldNumber(field.Number), WireBytes); err != nil {
			return err
		}
		if err := me.EncodeMapEntry(key, mapData[key], field.Type.MapKey, field.Type.MapValue); err != nil {
			return err
		}
	}
	return nil
}

// EncodeMapEntry encodes one {key, value} pair as a length-delimited
// entry message.
func (me *MapEncoder) EncodeMapEntry(key, value interface{}, keyType, valueType *schema.FieldType) error {
	entryEncoder := NewEncoderWithRegistry(me.encoder.registry)

	if err := entryEncoder.EncodeTag(FieldNumber(1), wireTypeFor(keyType)); err != nil {
		return err
	}
	if err := me.encodeEntryValue(entryEncoder, key, keyType); err != nil {
		return fmt.Errorf("failed to encode map key: %w", err)
	}

	if err := entryEncoder.EncodeTag(FieldNumber(2), wireTypeFor(valueType)); err != nil {
		return err
	}
	if err := me.encodeEntryValue(entryEncoder, value, valueType); err != nil {
		return fmt.Errorf("failed to encode map value: %w", err)
	}

	me.encoder.EncodeBytes(entryEncoder.Bytes())
	return nil
}

// encodeEntryValue encodes a single key or value within a map entry.
func (me *MapEncoder) encodeEntryValue(encoder *Encoder, fieldValue interface{}, fieldType *schema.FieldType) error {
	switch fieldType.Kind {
	case schema.KindScalar:
		return encoder.encodeScalar(fieldValue, fieldType.ScalarType)
	case schema.KindMessage:
		return NewMessageEncoder(encoder).encodeMessageField(fieldValue, fieldType.MessageType)
	default:
		return fmt.Errorf("unsupported map entry kind: %s", fieldType.Kind)
	}
}

// toGenericMap converts the common concrete map types to
// map[interface{}]interface{} for encoding.
func toGenericMap(value interface{}) (map[interface{}]interface{}, error) {
	switch v := value.(type) {
	case map[interface{}]interface{}:
		return v, nil
	case map[string]interface{}:
		mapData := make(map[interface{}]interface{}, len(v))
		for k, val := range v {
			mapData[k] = val
		}
		return mapData, nil
	case map[string]string:
		mapData := make(map[interface{}]interface{}, len(v))
		for k, val := range v {
			mapData[k] = val
		}
		return mapData, nil
	case map[string]int64:
		mapData := make(map[interface{}]interface{}, len(v))
		for k, val := range v {
			mapData[k] = val
		}
		return mapData, nil
	case map[string]int32:
		mapData := make(map[interface{}]interface{}, len(v))
		for k, val := range v {
			mapData[k] = val
		}
		return mapData, nil
	case map[int32]string:
		mapData := make(map[interface{}]interface{}, len(v))
		for k, val := range v {
			mapData[k] = val
		}
		return mapData, nil
	case map[int64]string:
		mapData := make(map[interface{}]interface{}, len(v))
		for k, val := range v {
			mapData[k] = val
		}
		return mapData, nil
	default:
		return nil, fmt.Errorf("unsupported map type: %T", value)
	}
}
