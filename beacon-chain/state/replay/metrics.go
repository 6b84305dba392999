package replay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stateRootMissCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replay_state_root_misses_total",
		Help: "Times replay could not resolve a pre-slot state root cheaply and had to tree hash the state.",
	})
	replayBlocksSummary = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "replay_apply_blocks_milliseconds",
		Help: "Duration of ApplyBlocks calls in milliseconds.",
	})
)
