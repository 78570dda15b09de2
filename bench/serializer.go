// Package bench is a measurement harness comparing the wirelite TLV
// codec against a JSON text codec: serialization and deserialization
// speed, payload size before and after compression, sustained
// throughput, latency under load, and schema-evolution cost.
package bench

import (
	"encoding/json"

	"github.com/wirelite/wirelite"
)

// Serializer is one comparison arm: a format that can round-trip the
// harness data maps through bytes.
type Serializer interface {
	// Name identifies the arm in results and reports.
	Name() string
	// Marshal serializes a data map into a byte slice.
	Marshal(data map[string]interface{}) ([]byte, error)
	// Unmarshal deserializes a byte slice back into a data map.
	Unmarshal(b []byte) (map[string]interface{}, error)
}

// NewJSONSerializer creates the JSON text arm.
func NewJSONSerializer() Serializer {
	return &jsonSerializer{}
}

// jsonSerializer implements Serializer with encoding/json.
type jsonSerializer struct{}

func (s *jsonSerializer) Name() string { return "JSON" }

func (s *jsonSerializer) Marshal(data map[string]interface{}) ([]byte, error) {
	return json.Marshal(data)
}

func (s *jsonSerializer) Unmarshal(b []byte) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// NewWireSerializer creates the TLV binary arm for the named schema.
func NewWireSerializer(codec *wirelite.Wirelite, messageType string) Serializer {
	return &wireSerializer{codec: codec, messageType: messageType}
}

// wireSerializer implements Serializer with the wirelite codec.
type wireSerializer struct {
	codec       *wirelite.Wirelite
	messageType string
}

func (s *wireSerializer) Name() string { return "Wire" }

func (s *wireSerializer) Marshal(data map[string]interface{}) ([]byte, error) {
	return s.codec.Marshal(data, s.messageType)
}

func (s *wireSerializer) Unmarshal(b []byte) (map[string]interface{}, error) {
	return s.codec.Parse(b, s.messageType)
}
