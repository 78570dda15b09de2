package bench

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// testSerializers builds both comparison arms against the harness codec.
func testSerializers(t *testing.T) map[string]Serializer {
	t.Helper()
	codec, err := NewBenchmarkCodec()
	if err != nil {
		t.Fatalf("NewBenchmarkCodec: %v", err)
	}
	return map[string]Serializer{
		"JSON": NewJSONSerializer(),
		"Wire": NewWireSerializer(codec, PersonMessage),
	}
}

func TestSerializerRoundTrip(t *testing.T) {
	data := GenerateTestData(10)

	for name, serializer := range testSerializers(t) {
		t.Run(name, func(t *testing.T) {
			encoded, err := serializer.Marshal(data)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if len(encoded) == 0 {
				t.Fatal("Marshal produced empty payload")
			}

			decoded, err := serializer.Unmarshal(encoded)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}

			// The arms decode numbers differently (JSON floats vs typed
			// integers), so compare the fields with stable representations.
			if decoded["name"] != data["name"] {
				t.Errorf("name = %v, want %v", decoded["name"], data["name"])
			}
			if decoded["email"] != data["email"] {
				t.Errorf("email = %v, want %v", decoded["email"], data["email"])
			}
			phones, ok := decoded["phones"].([]interface{})
			if !ok || len(phones) != 10 {
				t.Errorf("phones = %T with %v entries, want 10", decoded["phones"], len(phones))
			}
		})
	}
}

func TestWireSerializer_RoundTripExact(t *testing.T) {
	codec, err := NewBenchmarkCodec()
	if err != nil {
		t.Fatalf("NewBenchmarkCodec: %v", err)
	}
	arm := NewWireSerializer(codec, PersonMessage)

	data := GenerateTestData(5)
	encoded, err := arm.Marshal(data)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := arm.Unmarshal(encoded)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded["id"] != data["id"] {
		t.Errorf("id = %v, want %v", decoded["id"], data["id"])
	}
	metadata, ok := decoded["metadata"].(map[interface{}]interface{})
	if !ok {
		t.Fatalf("metadata = %T", decoded["metadata"])
	}
	if metadata["department"] != "engineering" {
		t.Errorf("metadata[department] = %v", metadata["department"])
	}
	phones, ok := decoded["phones"].([]interface{})
	if !ok || len(phones) != 5 {
		t.Fatalf("phones = %#v", decoded["phones"])
	}
	first, ok := phones[0].(map[string]interface{})
	if !ok || first["number"] != "555-1000" || first["type"] != int32(0) {
		t.Errorf("first phone = %#v", phones[0])
	}
}

func TestWireSerializer_SchemaEvolution(t *testing.T) {
	codec, err := NewBenchmarkCodec()
	if err != nil {
		t.Fatalf("NewBenchmarkCodec: %v", err)
	}
	baseArm := NewWireSerializer(codec, PersonMessage)
	evolvedArm := NewWireSerializer(codec, EvolvedPersonMessage)

	// Forward: a base-schema reader drops the evolved-only fields.
	evolvedPayload, err := evolvedArm.Marshal(GenerateEvolvedTestData(3))
	if err != nil {
		t.Fatalf("Marshal evolved: %v", err)
	}
	asBase, err := baseArm.Unmarshal(evolvedPayload)
	if err != nil {
		t.Fatalf("base schema reading evolved payload: %v", err)
	}
	if _, present := asBase["nickname"]; present {
		t.Error("base schema surfaced an evolved-only field")
	}
	if asBase["name"] != "Test Person" {
		t.Errorf("name = %v", asBase["name"])
	}

	// Backward: an evolved-schema reader defaults the missing fields.
	basePayload, err := baseArm.Marshal(GenerateTestData(3))
	if err != nil {
		t.Fatalf("Marshal base: %v", err)
	}
	asEvolved, err := evolvedArm.Unmarshal(basePayload)
	if err != nil {
		t.Fatalf("evolved schema reading base payload: %v", err)
	}
	if asEvolved["nickname"] != "" || asEvolved["login_count"] != int64(0) {
		t.Errorf("evolved defaults = nickname %v, login_count %v", asEvolved["nickname"], asEvolved["login_count"])
	}
	if !reflect.DeepEqual(asEvolved["tags"], []interface{}{}) {
		t.Errorf("tags default = %#v", asEvolved["tags"])
	}
}

func TestCompressorRoundTrip(t *testing.T) {
	compressors, err := DefaultCompressors()
	if err != nil {
		t.Fatalf("DefaultCompressors: %v", err)
	}
	if len(compressors) != 4 {
		t.Fatalf("expected 4 compressors, got %d", len(compressors))
	}

	payloads := map[string][]byte{
		"empty":      {},
		"text":       []byte("the quick brown fox jumps over the lazy dog"),
		"repetitive": bytes.Repeat([]byte("wire format "), 500),
	}

	for _, compressor := range compressors {
		for payloadName, payload := range payloads {
			t.Run(compressor.Name()+"_"+payloadName, func(t *testing.T) {
				compressed, err := compressor.Compress(payload)
				if err != nil {
					t.Fatalf("Compress: %v", err)
				}
				decompressed, err := compressor.Decompress(compressed)
				if err != nil {
					t.Fatalf("Decompress: %v", err)
				}
				if !bytes.Equal(decompressed, payload) {
					t.Errorf("round trip lost data: got %d bytes, want %d", len(decompressed), len(payload))
				}
			})
		}
	}
}

func TestPerformanceTester_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("harness run is slow")
	}

	opts := Options{
		DataSize:           5,
		Iterations:         20,
		Concurrency:        2,
		ThroughputDuration: 50 * time.Millisecond,
	}

	tester, err := NewPerformanceTester(opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPerformanceTester: %v", err)
	}

	results, err := tester.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if results.Serialization.JSONMillis <= 0 || results.Serialization.WireMillis <= 0 {
		t.Errorf("serialization metric not populated: %+v", results.Serialization)
	}
	if results.PayloadSize.JSONBytes <= 0 || results.PayloadSize.WireBytes <= 0 {
		t.Errorf("payload size metric not populated: %+v", results.PayloadSize)
	}
	for _, name := range []string{"gzip", "zstd", "snappy", "lz4"} {
		if _, ok := results.PayloadSize.Compressed[name]; !ok {
			t.Errorf("missing compressed sizes for %s", name)
		}
	}
	if results.Throughput.JSONOpsPerSec <= 0 || results.Throughput.WireOpsPerSec <= 0 {
		t.Errorf("throughput metric not populated: %+v", results.Throughput)
	}
	if results.Latency.Wire.P99 < results.Latency.Wire.P50 {
		t.Errorf("latency percentiles inverted: %+v", results.Latency.Wire)
	}
	if results.SchemaEvolution.WireForwardMillis <= 0 || results.SchemaEvolution.WireBackwardMillis <= 0 {
		t.Errorf("schema evolution metric not populated: %+v", results.SchemaEvolution)
	}
}

func TestNewPerformanceTester_Validation(t *testing.T) {
	if _, err := NewPerformanceTester(Options{DataSize: 0, Iterations: 10}, zerolog.Nop()); err == nil {
		t.Error("expected error for zero data size")
	}
	if _, err := NewPerformanceTester(Options{DataSize: 10, Iterations: 0}, zerolog.Nop()); err == nil {
		t.Error("expected error for zero iterations")
	}
}

func TestWriteReport(t *testing.T) {
	results := &Results{
		Options:         DefaultOptions(),
		Serialization:   newMetric(1.5, 0.5),
		Deserialization: newMetric(0.4, 0.8),
		PayloadSize: PayloadSizeMetric{
			JSONBytes: 1000,
			WireBytes: 400,
			Compressed: map[string]CompressedSize{
				"gzip": {JSONBytes: 300, WireBytes: 200},
			},
		},
		Throughput: ThroughputMetric{JSONOpsPerSec: 1000, WireOpsPerSec: 3000, Winner: "Wire"},
		Latency: LatencyMetric{
			JSON: LatencyStats{Mean: 0.2, P50: 0.1, P95: 0.4, P99: 0.9},
			Wire: LatencyStats{Mean: 0.1, P50: 0.05, P95: 0.2, P99: 0.4},
		},
		SchemaEvolution: SchemaEvolutionMetric{JSONMillis: 0.3, WireForwardMillis: 0.1, WireBackwardMillis: 0.12},
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, results); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	report := buf.String()
	for _, expected := range []string{"Serialization", "Deserialization", "gzip", "Throughput", "Latency", "Schema evolution", "Wire"} {
		if !bytes.Contains(buf.Bytes(), []byte(expected)) {
			t.Errorf("report missing %q:\n%s", expected, report)
		}
	}
}
