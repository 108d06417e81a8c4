package report

import (
	"fmt"
	"os"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// WriteHistogramChart renders the result's latency histogram as a
// self-contained HTML bar chart. The result must carry a valid histogram.
func WriteHistogramChart(path string, res *bench.Result) error {
	if res == nil || !res.HistogramValid || res.Histogram == nil {
		return errors.New("report: result carries no histogram")
	}

	h := res.Histogram

	labels := make([]string, 0, len(h.Bins))
	values := make([]opts.BarData, 0, len(h.Bins))
	for _, bin := range h.Bins {
		labels = append(labels, fmt.Sprintf("%d–%d", bin.MinNs, bin.MaxNs))
		values = append(values, opts.BarData{Value: bin.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Latency distribution: %s", res.Platform),
			Subtitle: fmt.Sprintf("%d samples, %d underflow, %d overflow",
				res.Latency.SampleCount, h.UnderflowCount, h.OverflowCount),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "latency (ns)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	bar.SetXAxis(labels).AddSeries("samples", values)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create chart file")
	}
	defer f.Close()

	return errors.Wrap(bar.Render(f), "render chart")
}
