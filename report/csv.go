package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/digest"
	"github.com/pkg/errors"
)

// csvHeader is the fixed column set for summary CSV output.
const csvHeader = "timestamp,platform,cpu_model,iterations,batch_size," +
	"min_ns,max_ns,mean_ns,median_ns,p95_ns,p99_ns,stddev_ns," +
	"wcet_observed_ns,wcet_bound_ns,inferences_per_sec,samples_per_sec," +
	"valid,determinism_verified,output_hash\n"

// csvRow renders one result as a CSV line.
func csvRow(res *bench.Result) string {
	// CPU model strings may contain commas.
	model := strings.ReplaceAll(res.CPUModel, ",", ";")

	return fmt.Sprintf("%d,%s,%s,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%t,%t,%s\n",
		res.TimestampUnix,
		res.Platform,
		model,
		res.MeasureIterations,
		res.BatchSize,
		res.Latency.MinNs,
		res.Latency.MaxNs,
		res.Latency.MeanNs,
		res.Latency.MedianNs,
		res.Latency.P95Ns,
		res.Latency.P99Ns,
		res.Latency.StddevNs,
		res.Latency.WcetObservedNs,
		res.Latency.WcetBoundNs,
		res.Throughput.InferencesPerSec,
		res.Throughput.SamplesPerSec,
		res.IsValid(),
		res.DeterminismVerified,
		digest.ToHex(res.OutputHash),
	)
}

// WriteCSV writes a header plus one row for the result, replacing any
// existing file.
func WriteCSV(path string, res *bench.Result) error {
	if res == nil {
		return errors.New("report: nil result")
	}
	return atomicWrite(path, []byte(csvHeader+csvRow(res)))
}

// AppendCSV appends one row to an existing CSV file, writing the header
// first if the file does not exist yet.
func AppendCSV(path string, res *bench.Result) error {
	if res == nil {
		return errors.New("report: nil result")
	}

	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "open csv")
	}
	defer f.Close()

	if newFile {
		if _, err := f.WriteString(csvHeader); err != nil {
			return errors.Wrap(err, "write csv header")
		}
	}
	_, err = f.WriteString(csvRow(res))
	return errors.Wrap(err, "write csv row")
}
