package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/compare"
	"github.com/certifiable-ai/go-bench/digest"
	"github.com/certifiable-ai/go-bench/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *bench.Result {
	res := &bench.Result{
		Platform:          "x86_64",
		CPUModel:          "Example CPU @ 3.0GHz",
		CPUFreqMHz:        3000,
		WarmupIterations:  100,
		MeasureIterations: 1000,
		BatchSize:         1,
	}
	res.Latency = stats.LatencyStats{
		MinNs: 900, MaxNs: 4200, MeanNs: 1100, MedianNs: 1000,
		P95Ns: 1900, P99Ns: 2600, StddevNs: 140, VarianceNs2: 19600,
		SampleCount: 1000, WcetObservedNs: 4200, WcetBoundNs: 5040,
	}
	res.Throughput = bench.Throughput{
		InferencesPerSec: 909_090, SamplesPerSec: 909_090,
		BytesPerSec: 930_908_160, BatchSize: 1,
	}
	res.OutputHash = digest.Sum([]byte("outputs"))
	res.ResultHash = digest.Sum([]byte("binding"))
	res.DeterminismVerified = true
	res.EnvStable = true
	res.TimestampUnix = 1_750_000_000
	return res
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	res := sampleResult()

	require.NoError(t, WriteJSON(path, res))

	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, res, loaded)
}

func TestSerialisationIsByteDeterministic(t *testing.T) {
	res := sampleResult()

	a, err := MarshalResult(res)
	require.NoError(t, err)
	b, err := MarshalResult(res)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestJSONRendersHashesAsHex(t *testing.T) {
	res := sampleResult()
	data, err := MarshalResult(res)
	require.NoError(t, err)

	assert.Contains(t, string(data), digest.ToHex(res.OutputHash))
	assert.Contains(t, string(data), digest.ToHex(res.ResultHash))
}

func TestCSVWriteAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	res := sampleResult()

	require.NoError(t, WriteCSV(path, res))
	require.NoError(t, AppendCSV(path, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3) // header + two rows
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,platform"))
	assert.Equal(t, lines[1], lines[2])
	assert.Contains(t, lines[1], "x86_64")
	assert.Contains(t, lines[1], digest.ToHex(res.OutputHash))
}

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()

	path, err := WriteArchive(dir, res)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json.zst"))
	assert.Contains(t, path, digest.ToHex(res.ResultHash))

	loaded, err := LoadArchive(path)
	require.NoError(t, err)
	assert.Equal(t, res, loaded)

	// Idempotent: same result, same path.
	again, err := WriteArchive(dir, res)
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestPrintSummaryMentionsKeyFields(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleResult())

	out := buf.String()
	assert.Contains(t, out, "x86_64")
	assert.Contains(t, out, "wcet bound")
	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, digest.ToHex(sampleResult().OutputHash))
}

func TestPrintComparisonGated(t *testing.T) {
	var buf bytes.Buffer
	PrintComparison(&buf, compare.Comparison{
		PlatformA: "x86_64", PlatformB: "aarch64",
		Comparable: false,
	})
	assert.Contains(t, buf.String(), "NOT COMPARABLE")

	buf.Reset()
	PrintComparison(&buf, compare.Comparison{
		PlatformA: "x86_64", PlatformB: "aarch64",
		OutputsIdentical: true, Comparable: true,
		LatencyDiffNs: 1_000_000, LatencyRatioQ16: 131_072,
	})
	assert.Contains(t, buf.String(), "bit-identical")
	assert.Contains(t, buf.String(), "2.0000x")
}

func TestHistogramChart(t *testing.T) {
	res := sampleResult()

	// No histogram: refused.
	err := WriteHistogramChart(filepath.Join(t.TempDir(), "chart.html"), res)
	assert.Error(t, err)

	bins := make([]stats.Bin, 8)
	h := &stats.Histogram{}
	require.NoError(t, h.Init(bins, 0, 8000))
	require.NoError(t, h.Build([]uint64{900, 1000, 1100, 2600, 4200}))
	res.Histogram = h
	res.HistogramValid = true

	path := filepath.Join(t.TempDir(), "chart.html")
	require.NoError(t, WriteHistogramChart(path, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Latency distribution")
}
