package registry

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/wirelite/wirelite/schema"
)

// scalarTypeNames maps proto scalar type names to their schema
// counterparts. Only varint- and length-delimited-backed types appear
// here; fixed-width and floating-point types are rejected below because
// the wire format has no wire type for them.
var scalarTypeNames = map[string]schema.ScalarType{
	"int32":  schema.TypeInt32,
	"int64":  schema.TypeInt64,
	"uint32": schema.TypeUint32,
	"uint64": schema.TypeUint64,
	"sint32": schema.TypeSint32,
	"sint64": schema.TypeSint64,
	"bool":   schema.TypeBool,
	"string": schema.TypeString,
	"bytes":  schema.TypeBytes,
}

var unsupportedTypeNames = map[string]struct{}{
	"float": {}, "double": {},
	"fixed32": {}, "fixed64": {},
	"sfixed32": {}, "sfixed64": {},
}

// LoadSchemaFromFile parses a .proto file and registers every message it
// declares (including nested messages, registered as Parent.Child).
// Enum-typed fields resolve to int32, since enum numbers travel as plain
// varints.
func (r *Registry) LoadSchemaFromFile(protoPath string) error {
	if !strings.HasSuffix(protoPath, ".proto") {
		return fmt.Errorf("file %s is not a .proto file", protoPath)
	}
	content, err := os.ReadFile(protoPath)
	if err != nil {
		return fmt.Errorf("failed to read proto file: %w", err)
	}

	parsed, err := protoparser.Parse(bytes.NewBuffer(content))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", protoPath, err)
	}

	b := &schemaBuilder{registry: r}

	// Pass 1: names only, so fields can reference types declared later.
	for _, visitee := range parsed.ProtoBody {
		switch v := visitee.(type) {
		case *protoparserparser.Package:
			b.pkg = v.Name
		}
	}
	for _, visitee := range parsed.ProtoBody {
		switch v := visitee.(type) {
		case *protoparserparser.Message:
			b.collectNames(b.qualify(v.MessageName), v)
		case *protoparserparser.Enum:
			b.collectEnum(b.qualify(v.EnumName), v)
		}
	}

	// Pass 2: build and register the field tables.
	for _, visitee := range parsed.ProtoBody {
		if v, ok := visitee.(*protoparserparser.Message); ok {
			if err := b.buildMessage(b.qualify(v.MessageName), v); err != nil {
				return fmt.Errorf("failed to load %s: %w", protoPath, err)
			}
		}
	}

	return nil
}

// schemaBuilder accumulates symbol tables while walking one parsed file.
type schemaBuilder struct {
	registry     *Registry
	pkg          string
	messageNames map[string]struct{}
	enumNames    map[string]struct{}
}

func (b *schemaBuilder) qualify(name string) string {
	if b.pkg == "" {
		return name
	}
	return b.pkg + "." + name
}

// collectNames registers the message name and recurses into nested
// declarations.
func (b *schemaBuilder) collectNames(fullName string, msg *protoparserparser.Message) {
	if b.messageNames == nil {
		b.messageNames = make(map[string]struct{})
	}
	b.messageNames[fullName] = struct{}{}

	for _, visitee := range msg.MessageBody {
		switch v := visitee.(type) {
		case *protoparserparser.Message:
			b.collectNames(fullName+"."+v.MessageName, v)
		case *protoparserparser.Enum:
			b.collectEnum(fullName+"."+v.EnumName, v)
		}
	}
}

func (b *schemaBuilder) collectEnum(fullName string, enum *protoparserparser.Enum) {
	if b.enumNames == nil {
		b.enumNames = make(map[string]struct{})
	}
	b.enumNames[fullName] = struct{}{}

	values := make(map[string]int32)
	for _, visitee := range enum.EnumBody {
		if field, ok := visitee.(*protoparserparser.EnumField); ok {
			number, err := strconv.ParseInt(field.Number, 10, 32)
			if err != nil {
				continue
			}
			values[field.Ident] = int32(number)
		}
	}
	b.registry.enums[fullName] = values
}

// buildMessage translates one parsed message (and its nested messages)
// into a schema.Message and registers it.
func (b *schemaBuilder) buildMessage(fullName string, msg *protoparserparser.Message) error {
	built := &schema.Message{Name: fullName}

	for _, visitee := range msg.MessageBody {
		switch v := visitee.(type) {
		case *protoparserparser.Field:
			field, err := b.buildField(fullName, v)
			if err != nil {
				return fmt.Errorf("message %s: %w", fullName, err)
			}
			built.Fields = append(built.Fields, field)
		case *protoparserparser.MapField:
			field, err := b.buildMapField(fullName, v)
			if err != nil {
				return fmt.Errorf("message %s: %w", fullName, err)
			}
			built.Fields = append(built.Fields, field)
		case *protoparserparser.Message:
			if err := b.buildMessage(fullName+"."+v.MessageName, v); err != nil {
				return err
			}
		}
	}

	return b.registry.RegisterMessage(built)
}

func (b *schemaBuilder) buildField(scope string, f *protoparserparser.Field) (*schema.Field, error) {
	number, err := strconv.ParseInt(f.FieldNumber, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("field %s: bad field number %q", f.FieldName, f.FieldNumber)
	}

	fieldType, err := b.resolveType(scope, f.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.FieldName, err)
	}

	label := schema.LabelOptional
	if f.IsRepeated {
		label = schema.LabelRepeated
	}

	return &schema.Field{
		Name:   f.FieldName,
		Number: int32(number),
		Label:  label,
		Type:   *fieldType,
	}, nil
}

func (b *schemaBuilder) buildMapField(scope string, f *protoparserparser.MapField) (*schema.Field, error) {
	number, err := strconv.ParseInt(f.FieldNumber, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("map field %s: bad field number %q", f.MapName, f.FieldNumber)
	}

	keyType, err := b.resolveType(scope, f.KeyType)
	if err != nil {
		return nil, fmt.Errorf("map field %s key: %w", f.MapName, err)
	}
	if keyType.Kind != schema.KindScalar || keyType.ScalarType == schema.TypeBytes {
		return nil, fmt.Errorf("map field %s: key type %s not allowed", f.MapName, f.KeyType)
	}
	valueType, err := b.resolveType(scope, f.Type)
	if err != nil {
		return nil, fmt.Errorf("map field %s value: %w", f.MapName, err)
	}

	return &schema.Field{
		Name:   f.MapName,
		Number: int32(number),
		Label:  schema.LabelOptional,
		Type: schema.FieldType{
			Kind:     schema.KindMap,
			MapKey:   keyType,
			MapValue: valueType,
		},
	}, nil
}

// resolveType maps a proto type name to a FieldType. Named types resolve
// innermost-scope-first, the way proto reference resolution works.
func (b *schemaBuilder) resolveType(scope, typeName string) (*schema.FieldType, error) {
	if scalar, ok := scalarTypeNames[typeName]; ok {
		return &schema.FieldType{Kind: schema.KindScalar, ScalarType: scalar}, nil
	}
	if _, bad := unsupportedTypeNames[typeName]; bad {
		return nil, fmt.Errorf("type %s requires a fixed-width wire type, which the format does not carry", typeName)
	}

	for _, candidate := range b.scopedCandidates(scope, typeName) {
		if _, ok := b.messageNames[candidate]; ok {
			return &schema.FieldType{Kind: schema.KindMessage, MessageType: candidate}, nil
		}
		if _, ok := b.enumNames[candidate]; ok {
			// Enum numbers are plain varint int32 on the wire.
			return &schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeInt32}, nil
		}
	}

	return nil, fmt.Errorf("unable to resolve type name: %s", typeName)
}

// scopedCandidates lists the qualified names typeName could refer to,
// from the innermost scope outwards.
func (b *schemaBuilder) scopedCandidates(scope, typeName string) []string {
	typeName = strings.TrimPrefix(typeName, ".")
	var candidates []string

	parts := strings.Split(scope, ".")
	for len(parts) > 0 {
		candidates = append(candidates, strings.Join(parts, ".")+"."+typeName)
		parts = parts[:len(parts)-1]
	}
	candidates = append(candidates, typeName)
	return candidates
}
