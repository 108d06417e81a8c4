package main

import (
	"log/slog"
	"os"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/engines"
	"github.com/certifiable-ai/go-bench/platform"
	"github.com/certifiable-ai/go-bench/profiler"
	"github.com/certifiable-ai/go-bench/report"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// runFlags are the run command's knobs; they mirror bench.Config.
type runFlags struct {
	configPath string
	engine     string
	modelPath  string

	iterations uint32
	warmup     uint32
	batch      uint32
	noVerify   bool
	noEnv      bool

	histogram     bool
	histogramBins uint32
	histogramMax  uint64

	goldenPath string
	outputJSON string
	outputCSV  string
	archiveDir string
	chartPath  string
	hwCounters bool
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark and report the bound result",
		Long: `Run the selected inference routine through the measurement core:
warmup, critical loop, statistics, output hashing and result binding.
The process exits nonzero if the result is invalid for certification use.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(logger, f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "xor",
		"inference engine: xor, fixed-mlp, mlp32, tensor, gorgonia, imageprep, onnx")
	cmd.Flags().StringVar(&f.modelPath, "model", "", "ONNX model path (engine=onnx)")

	cmd.Flags().Uint32VarP(&f.iterations, "iterations", "n", 0, "measurement iterations")
	cmd.Flags().Uint32VarP(&f.warmup, "warmup", "w", 0, "warmup iterations")
	cmd.Flags().Uint32VarP(&f.batch, "batch", "b", 0, "batch size")
	cmd.Flags().BoolVar(&f.noVerify, "no-verify", false, "skip output hashing")
	cmd.Flags().BoolVar(&f.noEnv, "no-env", false, "skip environmental monitoring")

	cmd.Flags().BoolVar(&f.histogram, "histogram", false, "collect a latency histogram")
	cmd.Flags().Uint32Var(&f.histogramBins, "histogram-bins", 0, "histogram bin count")
	cmd.Flags().Uint64Var(&f.histogramMax, "histogram-max-ns", 0, "histogram upper bound (ns)")

	cmd.Flags().StringVar(&f.goldenPath, "golden", "", "golden reference to verify against")
	cmd.Flags().StringVarP(&f.outputJSON, "output", "o", "", "write result JSON here")
	cmd.Flags().StringVar(&f.outputCSV, "csv", "", "append a CSV summary row here")
	cmd.Flags().StringVar(&f.archiveDir, "archive", "", "write a zstd result archive into this directory")
	cmd.Flags().StringVar(&f.chartPath, "chart", "", "write a histogram HTML chart here")
	cmd.Flags().BoolVar(&f.hwCounters, "hwcounters", false, "collect hardware performance counters")

	return cmd
}

// buildConfig layers flag overrides over a TOML file over the defaults.
func buildConfig(f runFlags) (bench.Config, error) {
	cfg := bench.DefaultConfig()

	if f.configPath != "" {
		data, err := os.ReadFile(f.configPath)
		if err != nil {
			return cfg, errors.Wrap(err, "read config file")
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(err, "parse config file")
		}
	}

	if f.iterations > 0 {
		cfg.MeasureIterations = f.iterations
	}
	if cmdFlagSet(f.warmup) {
		cfg.WarmupIterations = f.warmup
	}
	if f.batch > 0 {
		cfg.BatchSize = f.batch
	}
	if f.noVerify {
		cfg.VerifyOutputs = false
	}
	if f.noEnv {
		cfg.MonitorEnvironment = false
	}
	if f.histogram {
		cfg.CollectHistogram = true
	}
	if f.histogramBins > 0 {
		cfg.HistogramBins = f.histogramBins
	}
	if f.histogramMax > 0 {
		cfg.HistogramMaxNs = f.histogramMax
	}
	if f.goldenPath != "" {
		cfg.GoldenPath = f.goldenPath
	}
	if f.modelPath != "" {
		cfg.ModelPath = f.modelPath
	}
	if f.outputJSON != "" {
		cfg.OutputPath = f.outputJSON
	}

	return cfg, cfg.Validate()
}

// cmdFlagSet treats a zero value as "flag not given", so "--warmup 0" cannot
// override a nonzero default; the configured warmup count is kept.
func cmdFlagSet(v uint32) bool { return v > 0 }

func buildEngine(f runFlags) (*engines.Engine, error) {
	if f.engine == "onnx" {
		if f.modelPath == "" {
			return nil, errors.New("engine onnx requires --model")
		}
		// A plain [1,N] float32 in/out geometry covers the simple
		// vector models the harness ships with; richer shapes come
		// from the library API.
		return engines.NewONNX(f.modelPath, "input", "output",
			[]int64{1, 64}, []int64{1, 64})
	}
	return engines.New(f.engine)
}

func runBenchmark(logger *slog.Logger, f runFlags) error {
	cfg, err := buildConfig(f)
	if err != nil {
		return err
	}

	engine, err := buildEngine(f)
	if err != nil {
		return err
	}
	if engine.Close != nil {
		defer engine.Close()
	}

	logger.Info("starting benchmark",
		"engine", engine.Name,
		"iterations", cfg.MeasureIterations,
		"warmup", cfg.WarmupIterations,
		"verify", cfg.VerifyOutputs)

	input := make([]byte, engine.InputSize)
	for i := range input {
		input[i] = byte(i * 31)
	}
	output := make([]byte, engine.OutputSize)
	samples := make([]uint64, cfg.MeasureIterations)

	runner, err := bench.NewRunner(cfg, samples)
	if err != nil {
		return err
	}

	var hw *platform.HWSession
	if f.hwCounters {
		hw, err = platform.StartHWCounters()
		if err != nil {
			// Counter absence never invalidates a result.
			logger.Warn("hardware counters unavailable", "error", err)
			hw = nil
		}
	}

	// Force a collection now so the GC is unlikely to fire mid-run.
	profiler.Quiesce()
	runtimeBefore := profiler.Snapshot()

	if err := runner.Warmup(engine.Fn, nil, input, output); err != nil {
		return errors.Wrap(err, "warmup")
	}
	if err := runner.Execute(engine.Fn, nil, input, output); err != nil {
		return errors.Wrap(err, "execute")
	}

	runtimeAfter := profiler.Snapshot()

	var result bench.Result
	if err := runner.GetResult(&result); err != nil {
		return errors.Wrap(err, "assemble result")
	}

	if hw != nil {
		if counters, err := hw.Stop(); err == nil {
			result.HWCounters = counters
		} else {
			logger.Warn("hardware counter read failed", "error", err)
		}
	}

	if interference := profiler.Between(runtimeBefore, runtimeAfter); !interference.Clean() {
		logger.Warn("runtime interference during measurement window",
			"gc_cycles", interference.GCCycles,
			"gc_pause_ns", interference.GCPauseNs,
			"new_goroutines", interference.NewGoroutine)
	}

	report.PrintSummary(os.Stdout, &result)

	if f.outputJSON != "" {
		if err := report.WriteJSON(f.outputJSON, &result); err != nil {
			return err
		}
		logger.Info("wrote result", "path", f.outputJSON)
	}
	if f.outputCSV != "" {
		if err := report.AppendCSV(f.outputCSV, &result); err != nil {
			return err
		}
	}
	if f.archiveDir != "" {
		path, err := report.WriteArchive(f.archiveDir, &result)
		if err != nil {
			return err
		}
		logger.Info("archived result", "path", path)
	}
	if f.chartPath != "" && result.HistogramValid {
		if err := report.WriteHistogramChart(f.chartPath, &result); err != nil {
			return err
		}
		logger.Info("wrote histogram chart", "path", f.chartPath)
	}

	if !result.IsValid() {
		return errors.New("result is invalid for certification use")
	}
	return nil
}
