// Package registry stores named message schemas. The wire codec looks
// schemas up here when it needs to recurse into a nested message type.
// Schemas are registered up front (hand-built tables or .proto files)
// and are read-only afterwards, so a Registry can be shared freely once
// populated.
package registry

import (
	"fmt"
	"strings"

	"github.com/wirelite/wirelite/schema"
)

// Registry maps fully qualified message names to their schemas.
type Registry struct {
	messages map[string]*schema.Message
	enums    map[string]map[string]int32 // enum name -> value name -> number
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		messages: make(map[string]*schema.Message),
		enums:    make(map[string]map[string]int32),
	}
}

// RegisterMessage adds a hand-built message schema. Field numbers must be
// positive, within the supported range, and unique within the message.
func (r *Registry) RegisterMessage(msg *schema.Message) error {
	if msg.Name == "" {
		return fmt.Errorf("message name must not be empty")
	}
	seen := make(map[int32]struct{}, len(msg.Fields))
	for _, field := range msg.Fields {
		if field.Number < 1 || field.Number > 1<<29-1 {
			return fmt.Errorf("message %s field %s: field number %d out of range", msg.Name, field.Name, field.Number)
		}
		if _, dup := seen[field.Number]; dup {
			return fmt.Errorf("message %s: duplicate field number %d", msg.Name, field.Number)
		}
		seen[field.Number] = struct{}{}
	}
	r.messages[msg.Name] = msg
	return nil
}

// GetMessage retrieves a message schema by name. A bare name matches a
// qualified registration by suffix.
func (r *Registry) GetMessage(name string) (*schema.Message, error) {
	if msg, exists := r.messages[name]; exists {
		return msg, nil
	}

	for fullName, msg := range r.messages {
		if strings.HasSuffix(fullName, "."+name) {
			return msg, nil
		}
	}

	return nil, fmt.Errorf("message not found: %s", name)
}

// ListMessages returns all registered message names.
func (r *Registry) ListMessages() []string {
	names := make([]string, 0, len(r.messages))
	for name := range r.messages {
		names = append(names, name)
	}
	return names
}

// EnumNumber resolves an enum value name to its number.
func (r *Registry) EnumNumber(enumName, valueName string) (int32, error) {
	values, ok := r.enums[enumName]
	if !ok {
		for fullName, v := range r.enums {
			if strings.HasSuffix(fullName, "."+enumName) {
				values = v
				ok = true
				break
			}
		}
	}
	if !ok {
		return 0, fmt.Errorf("enum not found: %s", enumName)
	}
	number, ok := values[valueName]
	if !ok {
		return 0, fmt.Errorf("enum %s has no value %s", enumName, valueName)
	}
	return number, nil
}

// GetOrCreateMapEntryMessage creates a synthetic message type for map
// entries: field 1 is the key, field 2 the value.
func (r *Registry) GetOrCreateMapEntryMessage(mapFieldName string, keyType, valueType *schema.FieldType) (*schema.Message, error) {
	entryTypeName := mapFieldName + "Entry"

	if msg, exists := r.messages[entryTypeName]; exists {
		return msg, nil
	}

	mapEntryMessage := &schema.Message{
		Name:     entryTypeName,
		MapEntry: true,
		Fields: []*schema.Field{
			{
				Name:   "key",
				Number: 1,
				Label:  schema.LabelOptional,
				Type:   *keyType,
			},
			{
				Name:   "value",
				Number: 2,
				Label:  schema.LabelOptional,
				Type:   *valueType,
			},
		},
	}

	r.messages[entryTypeName] = mapEntryMessage
	return mapEntryMessage, nil
}
