package bench

import (
	"testing"
)

// benchmarkArms builds both serializer arms for targeted benchmarking.
func benchmarkArms(b *testing.B) map[string]Serializer {
	b.Helper()
	codec, err := NewBenchmarkCodec()
	if err != nil {
		b.Fatalf("NewBenchmarkCodec: %v", err)
	}
	return map[string]Serializer{
		"JSON": NewJSONSerializer(),
		"Wire": NewWireSerializer(codec, PersonMessage),
	}
}

// benchmarkPayloads returns generated records of increasing size.
func benchmarkPayloads() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		"Small":  GenerateTestData(1),
		"Medium": GenerateTestData(50),
		"Large":  GenerateTestData(500),
	}
}

// BenchmarkSerialize benchmarks Marshal for both arms over the payload sizes.
func BenchmarkSerialize(b *testing.B) {
	arms := benchmarkArms(b)
	payloads := benchmarkPayloads()

	for armName, arm := range arms {
		for payloadName, data := range payloads {
			b.Run(armName+"_"+payloadName, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := arm.Marshal(data); err != nil {
						b.Fatalf("Marshal: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks Unmarshal on pre-encoded payloads.
func BenchmarkDeserialize(b *testing.B) {
	arms := benchmarkArms(b)
	payloads := benchmarkPayloads()

	for armName, arm := range arms {
		for payloadName, data := range payloads {
			encoded, err := arm.Marshal(data)
			if err != nil {
				b.Fatalf("Marshal: %v", err)
			}
			b.Run(armName+"_"+payloadName, func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(encoded)))
				for i := 0; i < b.N; i++ {
					if _, err := arm.Unmarshal(encoded); err != nil {
						b.Fatalf("Unmarshal: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkCompress benchmarks each compressor on a wire-encoded payload.
func BenchmarkCompress(b *testing.B) {
	codec, err := NewBenchmarkCodec()
	if err != nil {
		b.Fatalf("NewBenchmarkCodec: %v", err)
	}
	encoded, err := NewWireSerializer(codec, PersonMessage).Marshal(GenerateTestData(100))
	if err != nil {
		b.Fatalf("Marshal: %v", err)
	}

	compressors, err := DefaultCompressors()
	if err != nil {
		b.Fatalf("DefaultCompressors: %v", err)
	}

	for _, compressor := range compressors {
		b.Run(compressor.Name(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(encoded)))
			for i := 0; i < b.N; i++ {
				if _, err := compressor.Compress(encoded); err != nil {
					b.Fatalf("Compress: %v", err)
				}
			}
		})
	}
}
