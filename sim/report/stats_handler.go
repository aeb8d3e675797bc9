package report

import (
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/hive-sim/hive/sim"
)

// StatsHandler aggregates numeric report fields (any Fields entry that
// parses as a float64) across the run, logging mean and p50/p95
// summaries at each flush via gonum/stat — the teacher's Metrics.Print
// end-of-run summary generalized to every numeric field any report
// cares to carry, not a fixed hardcoded set.
type StatsHandler struct {
	counts  map[string]int
	samples map[string][]float64
}

// NewStatsHandler constructs an empty StatsHandler.
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{counts: map[string]int{}, samples: map[string][]float64{}}
}

func (h *StatsHandler) HandleReport(r sim.Report) {
	h.counts[r.Type]++
	for k, v := range r.Fields {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		key := r.Type + "." + k
		h.samples[key] = append(h.samples[key], f)
	}
}

func (h *StatsHandler) Flush(simTime int64) error {
	for _, reportType := range sortedKeys(h.counts) {
		logrus.Infof("[stats t=%d] %s: count=%d", simTime, reportType, h.counts[reportType])
	}
	for _, key := range sortedSampleKeys(h.samples) {
		values := append([]float64(nil), h.samples[key]...)
		sort.Float64s(values)
		mean := stat.Mean(values, nil)
		p50 := stat.Quantile(0.50, stat.Empirical, values, nil)
		p95 := stat.Quantile(0.95, stat.Empirical, values, nil)
		logrus.Infof("[stats t=%d] %s: n=%d mean=%.3f p50=%.3f p95=%.3f", simTime, key, len(values), mean, p50, p95)
	}
	return nil
}

func (h *StatsHandler) Close() error { return h.Flush(-1) }

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedSampleKeys(m map[string][]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
