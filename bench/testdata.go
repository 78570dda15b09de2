package bench

import (
	"fmt"

	"github.com/wirelite/wirelite"
	"github.com/wirelite/wirelite/schema"
)

// Schema names used by the harness arms.
const (
	PersonMessage        = "Person"
	EvolvedPersonMessage = "EvolvedPerson"
)

// NewBenchmarkCodec returns a codec with the harness schemas registered:
// a Person with repeated nested messages and a string map, plus an
// evolved variant carrying three extra fields for the schema-evolution
// measurements.
func NewBenchmarkCodec() (*wirelite.Wirelite, error) {
	codec := wirelite.New()

	phoneNumber := &schema.Message{
		Name: "PhoneNumber",
		Fields: []*schema.Field{
			{Name: "number", Number: 1, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
			{Name: "type", Number: 2, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeInt32}},
		},
	}

	address := &schema.Message{
		Name: "Address",
		Fields: []*schema.Field{
			{Name: "street", Number: 1, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
			{Name: "city", Number: 2, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
			{Name: "state", Number: 3, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
			{Name: "zip", Number: 4, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
			{Name: "country", Number: 5, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
		},
	}

	baseFields := []*schema.Field{
		{Name: "name", Number: 1, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
		{Name: "id", Number: 2, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeInt32}},
		{Name: "email", Number: 3, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
		{Name: "phones", Number: 4, Label: schema.LabelRepeated, Type: schema.FieldType{Kind: schema.KindMessage, MessageType: "PhoneNumber"}},
		{Name: "addresses", Number: 5, Label: schema.LabelRepeated, Type: schema.FieldType{Kind: schema.KindMessage, MessageType: "Address"}},
		{Name: "metadata", Number: 6, Label: schema.LabelOptional, Type: schema.FieldType{
			Kind:     schema.KindMap,
			MapKey:   &schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString},
			MapValue: &schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString},
		}},
	}

	person := &schema.Message{Name: PersonMessage, Fields: baseFields}

	evolvedFields := make([]*schema.Field, len(baseFields), len(baseFields)+3)
	copy(evolvedFields, baseFields)
	evolvedFields = append(evolvedFields,
		&schema.Field{Name: "nickname", Number: 7, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
		&schema.Field{Name: "login_count", Number: 8, Label: schema.LabelOptional, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeInt64}},
		&schema.Field{Name: "tags", Number: 9, Label: schema.LabelRepeated, Type: schema.FieldType{Kind: schema.KindScalar, ScalarType: schema.TypeString}},
	)
	evolvedPerson := &schema.Message{Name: EvolvedPersonMessage, Fields: evolvedFields}

	for _, msg := range []*schema.Message{phoneNumber, address, person, evolvedPerson} {
		if err := codec.RegisterMessage(msg); err != nil {
			return nil, err
		}
	}

	return codec, nil
}

// GenerateTestData builds a Person with the given number of phone
// entries, one address per ten phones, and a small metadata map.
func GenerateTestData(phoneCount int) map[string]interface{} {
	phones := make([]map[string]interface{}, 0, phoneCount)
	for i := 0; i < phoneCount; i++ {
		phones = append(phones, map[string]interface{}{
			"number": fmt.Sprintf("555-%d", 1000+i),
			"type":   int32(i % 3),
		})
	}

	addressCount := phoneCount/10 + 1
	addresses := make([]map[string]interface{}, 0, addressCount)
	for i := 0; i < addressCount; i++ {
		addresses = append(addresses, map[string]interface{}{
			"street":  fmt.Sprintf("%d Main Street", 100+i),
			"city":    "Springfield",
			"state":   "IL",
			"zip":     fmt.Sprintf("627%02d", i%100),
			"country": "USA",
		})
	}

	return map[string]interface{}{
		"name":      "Test Person",
		"id":        int32(12345),
		"email":     "test@example.com",
		"phones":    phones,
		"addresses": addresses,
		"metadata": map[string]string{
			"department": "engineering",
			"team":       "platform",
			"level":      "senior",
		},
	}
}

// GenerateEvolvedTestData extends the base data with the evolved-schema
// fields.
func GenerateEvolvedTestData(phoneCount int) map[string]interface{} {
	data := GenerateTestData(phoneCount)
	data["nickname"] = "tester"
	data["login_count"] = int64(4242)
	data["tags"] = []string{"alpha", "beta", "internal"}
	return data
}
