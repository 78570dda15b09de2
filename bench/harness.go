package bench

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
)

// Options configures a harness run.
type Options struct {
	DataSize           int           // phone entries per Person
	Iterations         int           // timed-loop iterations
	Concurrency        int           // workers for throughput/latency phases
	ThroughputDuration time.Duration // wall-clock budget per throughput arm
}

// DefaultOptions mirror the original harness defaults.
func DefaultOptions() Options {
	return Options{
		DataSize:           100,
		Iterations:         10000,
		Concurrency:        4,
		ThroughputDuration: 500 * time.Millisecond,
	}
}

// Metric is one timed comparison between the two arms, in milliseconds
// per operation.
type Metric struct {
	JSONMillis float64
	WireMillis float64
	Winner     string
}

func newMetric(jsonMillis, wireMillis float64) Metric {
	winner := "Wire"
	if jsonMillis < wireMillis {
		winner = "JSON"
	}
	return Metric{JSONMillis: jsonMillis, WireMillis: wireMillis, Winner: winner}
}

// Ratio returns how many times slower the losing arm is.
func (m Metric) Ratio() float64 {
	if m.WireMillis == 0 || m.JSONMillis == 0 {
		return 0
	}
	if m.JSONMillis > m.WireMillis {
		return m.JSONMillis / m.WireMillis
	}
	return m.WireMillis / m.JSONMillis
}

// CompressedSize holds per-compressor payload sizes for both arms.
type CompressedSize struct {
	JSONBytes int
	WireBytes int
}

// PayloadSizeMetric compares encoded sizes, raw and compressed.
type PayloadSizeMetric struct {
	JSONBytes  int
	WireBytes  int
	Compressed map[string]CompressedSize // keyed by compressor name
}

// ThroughputMetric compares sustained round-trip operations per second.
type ThroughputMetric struct {
	JSONOpsPerSec float64
	WireOpsPerSec float64
	Winner        string
}

// LatencyStats summarizes per-operation latency in milliseconds.
type LatencyStats struct {
	Mean float64
	P50  float64
	P95  float64
	P99  float64
}

// LatencyMetric compares round-trip latency under concurrent load.
type LatencyMetric struct {
	JSON LatencyStats
	Wire LatencyStats
}

// SchemaEvolutionMetric compares cross-schema decode cost. Forward is an
// old schema reading new data (unknown fields skipped); backward is a
// new schema reading old data (missing fields defaulted).
type SchemaEvolutionMetric struct {
	JSONMillis         float64
	WireForwardMillis  float64
	WireBackwardMillis float64
}

// Results collects every measured metric of one run.
type Results struct {
	Options         Options
	Serialization   Metric
	Deserialization Metric
	PayloadSize     PayloadSizeMetric
	Throughput      ThroughputMetric
	Latency         LatencyMetric
	SchemaEvolution SchemaEvolutionMetric
}

// PerformanceTester runs the comparison phases over generated test data.
type PerformanceTester struct {
	opts        Options
	log         zerolog.Logger
	jsonArm     Serializer
	wireArm     Serializer
	compressors []Compressor
	data        map[string]interface{}
}

// NewPerformanceTester builds a tester with both arms, the default
// compressor set, and generated test data of opts.DataSize.
func NewPerformanceTester(opts Options, log zerolog.Logger) (*PerformanceTester, error) {
	if opts.DataSize <= 0 || opts.Iterations <= 0 {
		return nil, fmt.Errorf("data size and iterations must be positive")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.ThroughputDuration <= 0 {
		opts.ThroughputDuration = 500 * time.Millisecond
	}

	codec, err := NewBenchmarkCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to build benchmark codec: %w", err)
	}
	compressors, err := DefaultCompressors()
	if err != nil {
		return nil, err
	}

	return &PerformanceTester{
		opts:        opts,
		log:         log,
		jsonArm:     NewJSONSerializer(),
		wireArm:     NewWireSerializer(codec, PersonMessage),
		compressors: compressors,
		data:        GenerateTestData(opts.DataSize),
	}, nil
}

// Run executes every phase and returns the collected results.
func (t *PerformanceTester) Run() (*Results, error) {
	results := &Results{Options: t.opts}
	var err error

	t.log.Info().Int("data_size", t.opts.DataSize).Int("iterations", t.opts.Iterations).Msg("measuring serialization speed")
	if results.Serialization, err = t.MeasureSerialization(); err != nil {
		return nil, err
	}

	t.log.Info().Msg("measuring deserialization speed")
	if results.Deserialization, err = t.MeasureDeserialization(); err != nil {
		return nil, err
	}

	t.log.Info().Msg("measuring payload sizes")
	if results.PayloadSize, err = t.MeasurePayloadSize(); err != nil {
		return nil, err
	}

	t.log.Info().Dur("duration", t.opts.ThroughputDuration).Int("concurrency", t.opts.Concurrency).Msg("measuring throughput")
	if results.Throughput, err = t.MeasureThroughput(); err != nil {
		return nil, err
	}

	t.log.Info().Msg("measuring latency under load")
	if results.Latency, err = t.MeasureLatency(); err != nil {
		return nil, err
	}

	t.log.Info().Msg("measuring schema evolution cost")
	if results.SchemaEvolution, err = t.MeasureSchemaEvolution(); err != nil {
		return nil, err
	}

	return results, nil
}

// MeasureSerialization times Marshal for both arms.
func (t *PerformanceTester) MeasureSerialization() (Metric, error) {
	jsonMillis, err := t.timeLoop(func() error {
		_, err := t.jsonArm.Marshal(t.data)
		return err
	})
	if err != nil {
		return Metric{}, fmt.Errorf("json serialization: %w", err)
	}

	wireMillis, err := t.timeLoop(func() error {
		_, err := t.wireArm.Marshal(t.data)
		return err
	})
	if err != nil {
		return Metric{}, fmt.Errorf("wire serialization: %w", err)
	}

	return newMetric(jsonMillis, wireMillis), nil
}

// MeasureDeserialization times Unmarshal for both arms on pre-encoded
// payloads.
func (t *PerformanceTester) MeasureDeserialization() (Metric, error) {
	jsonPayload, err := t.jsonArm.Marshal(t.data)
	if err != nil {
		return Metric{}, err
	}
	wirePayload, err := t.wireArm.Marshal(t.data)
	if err != nil {
		return Metric{}, err
	}

	jsonMillis, err := t.timeLoop(func() error {
		_, err := t.jsonArm.Unmarshal(jsonPayload)
		return err
	})
	if err != nil {
		return Metric{}, fmt.Errorf("json deserialization: %w", err)
	}

	wireMillis, err := t.timeLoop(func() error {
		_, err := t.wireArm.Unmarshal(wirePayload)
		return err
	})
	if err != nil {
		return Metric{}, fmt.Errorf("wire deserialization: %w", err)
	}

	return newMetric(jsonMillis, wireMillis), nil
}

// MeasurePayloadSize compares encoded sizes, raw and after each
// compressor.
func (t *PerformanceTester) MeasurePayloadSize() (PayloadSizeMetric, error) {
	jsonPayload, err := t.jsonArm.Marshal(t.data)
	if err != nil {
		return PayloadSizeMetric{}, err
	}
	wirePayload, err := t.wireArm.Marshal(t.data)
	if err != nil {
		return PayloadSizeMetric{}, err
	}

	metric := PayloadSizeMetric{
		JSONBytes:  len(jsonPayload),
		WireBytes:  len(wirePayload),
		Compressed: make(map[string]CompressedSize, len(t.compressors)),
	}

	for _, compressor := range t.compressors {
		jsonCompressed, err := compressor.Compress(jsonPayload)
		if err != nil {
			return PayloadSizeMetric{}, fmt.Errorf("%s compress json: %w", compressor.Name(), err)
		}
		wireCompressed, err := compressor.Compress(wirePayload)
		if err != nil {
			return PayloadSizeMetric{}, fmt.Errorf("%s compress wire: %w", compressor.Name(), err)
		}
		metric.Compressed[compressor.Name()] = CompressedSize{
			JSONBytes: len(jsonCompressed),
			WireBytes: len(wireCompressed),
		}
	}

	return metric, nil
}

// MeasureThroughput counts sustained marshal+unmarshal round trips per
// second with Concurrency workers per arm.
func (t *PerformanceTester) MeasureThroughput() (ThroughputMetric, error) {
	jsonOps, err := t.runThroughputArm(t.jsonArm)
	if err != nil {
		return ThroughputMetric{}, err
	}
	wireOps, err := t.runThroughputArm(t.wireArm)
	if err != nil {
		return ThroughputMetric{}, err
	}

	winner := "Wire"
	if jsonOps > wireOps {
		winner = "JSON"
	}
	return ThroughputMetric{JSONOpsPerSec: jsonOps, WireOpsPerSec: wireOps, Winner: winner}, nil
}

func (t *PerformanceTester) runThroughputArm(arm Serializer) (float64, error) {
	counter := xsync.NewCounter()
	var stop atomic.Bool

	var mu sync.Mutex
	var firstErr error

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < t.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				if err := t.roundTrip(arm); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				counter.Inc()
			}
		}()
	}

	time.Sleep(t.opts.ThroughputDuration)
	stop.Store(true)
	wg.Wait()
	elapsed := time.Since(start)

	if firstErr != nil {
		return 0, fmt.Errorf("%s throughput: %w", arm.Name(), firstErr)
	}

	return float64(counter.Value()) / elapsed.Seconds(), nil
}

// MeasureLatency records per-operation round-trip latency while
// background workers keep the process busy, and reports percentile
// estimates from an exponentially decaying sample.
func (t *PerformanceTester) MeasureLatency() (LatencyMetric, error) {
	jsonStats, err := t.runLatencyArm(t.jsonArm)
	if err != nil {
		return LatencyMetric{}, err
	}
	wireStats, err := t.runLatencyArm(t.wireArm)
	if err != nil {
		return LatencyMetric{}, err
	}
	return LatencyMetric{JSON: jsonStats, Wire: wireStats}, nil
}

func (t *PerformanceTester) runLatencyArm(arm Serializer) (LatencyStats, error) {
	histogram := metrics.NewHistogram(metrics.NewExpDecaySample(1028, 0.015))

	var stop atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < t.opts.Concurrency-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				_ = t.roundTrip(arm)
			}
		}()
	}

	var loopErr error
	for i := 0; i < t.opts.Iterations; i++ {
		begin := time.Now()
		if err := t.roundTrip(arm); err != nil {
			loopErr = err
			break
		}
		histogram.Update(time.Since(begin).Nanoseconds())
	}

	stop.Store(true)
	wg.Wait()

	if loopErr != nil {
		return LatencyStats{}, fmt.Errorf("%s latency: %w", arm.Name(), loopErr)
	}

	const nsPerMs = float64(time.Millisecond)
	percentiles := histogram.Percentiles([]float64{0.5, 0.95, 0.99})
	return LatencyStats{
		Mean: histogram.Mean() / nsPerMs,
		P50:  percentiles[0] / nsPerMs,
		P95:  percentiles[1] / nsPerMs,
		P99:  percentiles[2] / nsPerMs,
	}, nil
}

// MeasureSchemaEvolution times cross-schema decoding: evolved payloads
// read with the base schema (forward) and base payloads read with the
// evolved schema (backward). The JSON arm has no schema, so its figure
// is a plain decode of the evolved payload.
func (t *PerformanceTester) MeasureSchemaEvolution() (SchemaEvolutionMetric, error) {
	codec, err := NewBenchmarkCodec()
	if err != nil {
		return SchemaEvolutionMetric{}, err
	}
	evolvedArm := NewWireSerializer(codec, EvolvedPersonMessage)
	evolvedData := GenerateEvolvedTestData(t.opts.DataSize)

	evolvedWirePayload, err := evolvedArm.Marshal(evolvedData)
	if err != nil {
		return SchemaEvolutionMetric{}, err
	}
	baseWirePayload, err := t.wireArm.Marshal(t.data)
	if err != nil {
		return SchemaEvolutionMetric{}, err
	}
	evolvedJSONPayload, err := t.jsonArm.Marshal(evolvedData)
	if err != nil {
		return SchemaEvolutionMetric{}, err
	}

	jsonMillis, err := t.timeLoop(func() error {
		_, err := t.jsonArm.Unmarshal(evolvedJSONPayload)
		return err
	})
	if err != nil {
		return SchemaEvolutionMetric{}, err
	}

	// Forward compatibility: old schema, new payload.
	forwardMillis, err := t.timeLoop(func() error {
		_, err := t.wireArm.Unmarshal(evolvedWirePayload)
		return err
	})
	if err != nil {
		return SchemaEvolutionMetric{}, err
	}

	// Backward compatibility: new schema, old payload.
	backwardMillis, err := t.timeLoop(func() error {
		_, err := evolvedArm.Unmarshal(baseWirePayload)
		return err
	})
	if err != nil {
		return SchemaEvolutionMetric{}, err
	}

	return SchemaEvolutionMetric{
		JSONMillis:         jsonMillis,
		WireForwardMillis:  forwardMillis,
		WireBackwardMillis: backwardMillis,
	}, nil
}

// timeLoop runs fn Iterations times and returns milliseconds per call.
func (t *PerformanceTester) timeLoop(fn func() error) (float64, error) {
	start := time.Now()
	for i := 0; i < t.opts.Iterations; i++ {
		if err := fn(); err != nil {
			return 0, err
		}
	}
	elapsed := time.Since(start)
	return elapsed.Seconds() * 1000.0 / float64(t.opts.Iterations), nil
}

func (t *PerformanceTester) roundTrip(arm Serializer) error {
	payload, err := arm.Marshal(t.data)
	if err != nil {
		return err
	}
	_, err = arm.Unmarshal(payload)
	return err
}
