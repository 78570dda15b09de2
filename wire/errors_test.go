package wire

import (
	"errors"
	"strings"
	"testing"

	"github.com/wirelite/wirelite/schema"
)

func TestFieldError_PathBuilding(t *testing.T) {
	tests := []struct {
		name         string
		buildError   func() error
		expectedPath string
		sentinel     error
	}{
		{
			name: "single field",
			buildError: func() error {
				return wrapWithField(ErrTruncatedBuffer, "name")
			},
			expectedPath: "name",
			sentinel:     ErrTruncatedBuffer,
		},
		{
			name: "nested path prepends outward",
			buildError: func() error {
				err := wrapWithField(ErrVarintOverflow, "number")
				err = wrapWithField(err, "phones")
				err = wrapWithField(err, "person")
				return err
			},
			expectedPath: "person.phones.number",
			sentinel:     ErrVarintOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buildError()

			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got %T", err)
			}

			if got := strings.Join(fieldErr.FieldPath, "."); got != tt.expectedPath {
				t.Errorf("path = %q, want %q", got, tt.expectedPath)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if !strings.Contains(err.Error(), tt.expectedPath) {
				t.Errorf("message %q does not contain path %q", err.Error(), tt.expectedPath)
			}
		})
	}
}

func TestFieldError_NilPassthrough(t *testing.T) {
	if err := wrapWithField(nil, "whatever"); err != nil {
		t.Errorf("wrapWithField(nil) = %v, want nil", err)
	}
}

func TestDecode_ErrorCarriesFieldPath(t *testing.T) {
	inner := &schema.Message{
		Name: "Inner",
		Fields: []*schema.Field{
			{
				Name:   "payload",
				Number: 1,
				Label:  schema.LabelOptional,
				Type:   schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeBytes},
			},
		},
	}
	outer := &schema.Message{
		Name: "Outer",
		Fields: []*schema.Field{
			{
				Name:   "inner",
				Number: 1,
				Label:  schema.LabelOptional,
				Type:   schema.FieldType{Kind: schema.KindMessage, MessageType: "Inner"},
			},
		},
	}
	r := newTestRegistry(t, inner, outer)

	// A nested message whose bytes field declares more payload than the
	// submessage carries.
	e := NewEncoder()
	submessage := []byte{0x0A, 0x7F, 'x'} // field 1, length 127, one byte present
	if err := e.EncodeLengthDelimited(1, submessage); err != nil {
		t.Fatalf("EncodeLengthDelimited: %v", err)
	}

	_, err := DecodeMessage(e.Bytes(), outer, r)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, ErrTruncatedBuffer) {
		t.Errorf("expected ErrTruncatedBuffer, got %v", err)
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T", err)
	}
	if len(fieldErr.FieldPath) == 0 || fieldErr.FieldPath[0] != "inner" {
		t.Errorf("field path = %v, want it to start at \"inner\"", fieldErr.FieldPath)
	}
}

func TestEncode_ErrorCarriesFieldPath(t *testing.T) {
	msg := &schema.Message{
		Name: "Typed",
		Fields: []*schema.Field{
			{
				Name:   "count",
				Number: 1,
				Label:  schema.LabelOptional,
				Type:   schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeInt32},
			},
		},
	}

	_, err := EncodeMessage(map[string]interface{}{"count": "not a number"}, msg, nil)
	if err == nil {
		t.Fatal("expected encode error")
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T", err)
	}
	if strings.Join(fieldErr.FieldPath, ".") != "count" {
		t.Errorf("field path = %v, want [count]", fieldErr.FieldPath)
	}
}
