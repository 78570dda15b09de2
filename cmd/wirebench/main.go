package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wirelite/wirelite/bench"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "wirebench",
	Short: "JSON vs wire-format benchmark harness",
	Long: fmt.Sprintf(`wirebench (v%s)

Compares JSON and the schema-driven wire codec over generated test data:
serialization and deserialization speed, payload size (raw and compressed),
throughput, latency under load, and schema evolution cost.

Every flag can also be set via environment variable with the WIREBENCH_
prefix (e.g. WIREBENCH_ITERATIONS=50000).`, version),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
	RunE: run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of wirebench",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wirebench v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)

	defaults := bench.DefaultOptions()
	rootCmd.Flags().Int("data-size", defaults.DataSize, "number of phone entries in the generated record")
	rootCmd.Flags().Int("iterations", defaults.Iterations, "iterations per timed loop")
	rootCmd.Flags().Int("concurrency", defaults.Concurrency, "workers for the throughput and latency phases")
	rootCmd.Flags().Duration("duration", defaults.ThroughputDuration, "wall-clock budget per throughput arm")
	rootCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func initConfig() {
	// local env files override nothing, they only fill gaps
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("wirebench")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func run(cmd *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", viper.GetString("log-level"), err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	opts := bench.Options{
		DataSize:           viper.GetInt("data-size"),
		Iterations:         viper.GetInt("iterations"),
		Concurrency:        viper.GetInt("concurrency"),
		ThroughputDuration: viper.GetDuration("duration"),
	}

	tester, err := bench.NewPerformanceTester(opts, log)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := tester.Run()
	if err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("benchmark complete")

	return bench.WriteReport(os.Stdout, results)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
