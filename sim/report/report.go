// Package report implements sim.Reporter: a fan-out of filed sim.Report
// events to a set of Handlers, which the simulator flushes at the cadence
// global.log_period_seconds names in config. Buffering, where there is
// any, happens inside the handlers (the JSONL handler's bufio.Writer). Grounded on the teacher's
// sim/trace (append-and-flush record collection) and sim/metrics
// (end-of-run aggregate reporting) conventions.
package report

import (
	"github.com/sirupsen/logrus"

	"github.com/hive-sim/hive/sim"
)

// Handler consumes filed reports and periodic flushes. Implementations
// must tolerate concurrent-free, single-goroutine use — Reporter, like
// SimulationState, is driven entirely from the tick loop.
type Handler interface {
	HandleReport(r sim.Report)
	Flush(simTime int64) error
	Close() error
}

// Reporter forwards each filed report, as it is filed, and each periodic
// flush out to every registered Handler. It implements sim.Reporter.
type Reporter struct {
	handlers []Handler
}

// New constructs a Reporter over the given handlers, in the order they
// should receive each report.
func New(handlers ...Handler) *Reporter {
	return &Reporter{handlers: handlers}
}

func (r *Reporter) File(report sim.Report) {
	for _, h := range r.handlers {
		h.HandleReport(report)
	}
}

func (r *Reporter) Flush(simTime int64) {
	for _, h := range r.handlers {
		if err := h.Flush(simTime); err != nil {
			logrus.Warnf("report handler flush failed at tick %d: %v", simTime, err)
		}
	}
}

func (r *Reporter) Close() {
	for _, h := range r.handlers {
		_ = h.Close()
	}
}
