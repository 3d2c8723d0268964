package cli

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerroute/pkg/route/ordering"
)

// heartbeatInterval is how often a long search reports that it is still
// running.
const heartbeatInterval = 10 * time.Second

// searchReporter logs the progress of an exhaustive order search: the
// first complete trial, every improvement, and a periodic heartbeat.
// Progress is safe for concurrent use.
type searchReporter struct {
	logger *log.Logger
	now    func() time.Time

	mu                   sync.Mutex
	start, lastLog       time.Time
	bestRouted, bestCost int
	seen                 bool
}

func newSearchReporter(logger *log.Logger) *searchReporter {
	r := &searchReporter{logger: logger, now: time.Now}
	r.start = r.now()
	r.lastLog = r.start
	return r
}

// Progress implements ordering.ProgressFunc.
func (r *searchReporter) Progress(explored, total, bestRouted, bestCost int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case !r.seen:
		r.logger.Infof("Initial: %d nets routed, cost %d", bestRouted, bestCost)
		r.lastLog = r.now()
	case bestRouted > r.bestRouted || (bestRouted == r.bestRouted && bestCost < r.bestCost):
		r.logger.Infof("Improved: %d nets routed, cost %d (order %d/%d)", bestRouted, bestCost, explored, total)
		r.lastLog = r.now()
	default:
		if r.now().Sub(r.lastLog) >= heartbeatInterval {
			elapsed := r.now().Sub(r.start).Truncate(time.Second)
			r.logger.Infof("Searching... %d/%d orders, %v elapsed, best cost %d", explored, total, elapsed, bestCost)
			r.lastLog = r.now()
		}
	}
	r.seen = true
	r.bestRouted, r.bestCost = bestRouted, bestCost
}

// Done summarizes a finished search and warns when it was cut short.
func (r *searchReporter) Done(stats ordering.Stats) {
	r.logger.Debugf("Search: %s, %d/%d orders, best rank %d, mean cost %.1f (sd %.1f)",
		stats.Strategy, stats.Trials, stats.Total, stats.BestRank, stats.MeanCost, stats.StdDevCost)
	if !stats.Complete {
		r.logger.Warn("Order search stopped early; the result may not be optimal (raise --timeout)",
			"explored", stats.Trials, "total", stats.Total)
	}
}
