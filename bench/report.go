package bench

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

// WriteReport renders results as aligned text tables.
func WriteReport(w io.Writer, results *Results) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Speed (ms/op, %d iterations, data size %d)\n", results.Options.Iterations, results.Options.DataSize)
	fmt.Fprintln(tw, "Phase\tJSON\tWire\tWinner\tRatio")
	writeMetricRow(tw, "Serialization", results.Serialization)
	writeMetricRow(tw, "Deserialization", results.Deserialization)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Payload size (bytes)")
	fmt.Fprintln(tw, "Encoding\tJSON\tWire\tSavings")
	writeSizeRow(tw, "raw", results.PayloadSize.JSONBytes, results.PayloadSize.WireBytes)
	for _, name := range sortedCompressorNames(results.PayloadSize.Compressed) {
		sizes := results.PayloadSize.Compressed[name]
		writeSizeRow(tw, name, sizes.JSONBytes, sizes.WireBytes)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Throughput (%d workers, %s)\n", results.Options.Concurrency, results.Options.ThroughputDuration)
	fmt.Fprintln(tw, "Arm\tOps/sec")
	fmt.Fprintf(tw, "JSON\t%.0f\n", results.Throughput.JSONOpsPerSec)
	fmt.Fprintf(tw, "Wire\t%.0f\n", results.Throughput.WireOpsPerSec)
	fmt.Fprintf(tw, "Winner\t%s\n", results.Throughput.Winner)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Latency under load (ms)")
	fmt.Fprintln(tw, "Arm\tMean\tP50\tP95\tP99")
	writeLatencyRow(tw, "JSON", results.Latency.JSON)
	writeLatencyRow(tw, "Wire", results.Latency.Wire)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Schema evolution decode (ms/op)")
	fmt.Fprintf(tw, "JSON\t%.4f\n", results.SchemaEvolution.JSONMillis)
	fmt.Fprintf(tw, "Wire forward (old schema, new data)\t%.4f\n", results.SchemaEvolution.WireForwardMillis)
	fmt.Fprintf(tw, "Wire backward (new schema, old data)\t%.4f\n", results.SchemaEvolution.WireBackwardMillis)

	return tw.Flush()
}

func writeMetricRow(w io.Writer, phase string, m Metric) {
	fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%s\t%.2fx\n", phase, m.JSONMillis, m.WireMillis, m.Winner, m.Ratio())
}

func writeSizeRow(w io.Writer, name string, jsonBytes, wireBytes int) {
	savings := 0.0
	if jsonBytes > 0 {
		savings = 100.0 * float64(jsonBytes-wireBytes) / float64(jsonBytes)
	}
	fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", name, jsonBytes, wireBytes, savings)
}

func writeLatencyRow(w io.Writer, arm string, stats LatencyStats) {
	fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", arm, stats.Mean, stats.P50, stats.P95, stats.P99)
}

func sortedCompressorNames(compressed map[string]CompressedSize) []string {
	names := make([]string, 0, len(compressed))
	for name := range compressed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
