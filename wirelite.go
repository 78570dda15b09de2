// Package wirelite is a schema-driven TLV wire codec. Messages are
// described by static field-number tables (hand-built or loaded from
// .proto files) and encoded as tag/wire-type framed fields with varint
// integers and length-delimited payloads. Decoding skips fields the
// schema does not know and defaults fields the buffer does not carry,
// so independently evolved schemas stay mutually readable.
package wirelite

import (
	"fmt"
	"reflect"

	"github.com/wirelite/wirelite/registry"
	"github.com/wirelite/wirelite/schema"
	"github.com/wirelite/wirelite/wire"
)

// Wirelite provides schema-aware encode/decode without generated code.
// Instances are safe for concurrent use once all schemas are registered.
type Wirelite struct {
	registry *registry.Registry
}

// New creates a new Wirelite instance with an empty schema registry.
func New() *Wirelite {
	return &Wirelite{
		registry: registry.NewRegistry(),
	}
}

// LoadSchemaFromFile parses a .proto file and registers its messages.
func (w *Wirelite) LoadSchemaFromFile(path string) error {
	return w.registry.LoadSchemaFromFile(path)
}

// RegisterMessage adds a hand-built message schema.
func (w *Wirelite) RegisterMessage(msg *schema.Message) error {
	return w.registry.RegisterMessage(msg)
}

// Marshal encodes a data map to wire bytes using the named schema.
func (w *Wirelite) Marshal(data map[string]interface{}, messageType string) ([]byte, error) {
	msg, err := w.registry.GetMessage(messageType)
	if err != nil {
		return nil, fmt.Errorf("message type not found: %s", messageType)
	}

	return wire.EncodeMessage(data, msg, w.registry)
}

// Parse decodes wire bytes into a data map using the named schema.
func (w *Wirelite) Parse(data []byte, messageType string) (map[string]interface{}, error) {
	msg, err := w.registry.GetMessage(messageType)
	if err != nil {
		return nil, fmt.Errorf("message type not found: %s", messageType)
	}

	return wire.DecodeMessage(data, msg, w.registry)
}

// Unmarshal decodes wire bytes into a Go struct using reflection. The
// struct type's name selects the schema, and exported field names must
// match schema field names.
func (w *Wirelite) Unmarshal(data []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("unmarshal target must be a pointer to struct")
	}

	messageType := rv.Elem().Type().Name()
	result, err := w.Parse(data, messageType)
	if err != nil {
		return err
	}

	return w.mapToStruct(result, rv.Elem())
}

// GetRegistry exposes the underlying schema registry.
func (w *Wirelite) GetRegistry() *registry.Registry { return w.registry }

// ListMessages returns all registered message names.
func (w *Wirelite) ListMessages() []string { return w.registry.ListMessages() }

// mapToStruct maps a parsed result onto struct fields.
func (w *Wirelite) mapToStruct(data map[string]interface{}, rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fieldValue := rv.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		if value, ok := data[field.Name]; ok {
			if err := w.setFieldValue(fieldValue, value); err != nil {
				return fmt.Errorf("failed to set field %s: %w", field.Name, err)
			}
		}
	}
	return nil
}

// setFieldValue sets a struct field with type conversion.
func (w *Wirelite) setFieldValue(fieldValue reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}

	sourceValue := reflect.ValueOf(value)
	if sourceValue.Type().AssignableTo(fieldValue.Type()) {
		fieldValue.Set(sourceValue)
		return nil
	}

	if sourceValue.Type().ConvertibleTo(fieldValue.Type()) {
		fieldValue.Set(sourceValue.Convert(fieldValue.Type()))
		return nil
	}

	return fmt.Errorf("cannot convert %T to %s", value, fieldValue.Type())
}
