package monster

import "github.com/prometheus/client_golang/prometheus"

func init() {
	prometheus.MustRegister(
		promSelectionsTotal,
		promSelectionRetries,
		promExhaustedTotal,
	)
}

var (
	promSelectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roguestats_monster_selections_total",
		Help: "The number of monsters selected",
	}, []string{"category", "monster"})

	promSelectionRetries = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roguestats_monster_selection_retries",
		Help:    "The number of empty slots hit before a monster was selected",
		Buckets: prometheus.LinearBuckets(0, 1, 8),
	}, []string{"category"})

	promExhaustedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roguestats_monster_selections_exhausted_total",
		Help: "The number of selections that ran out of retries",
	}, []string{"category"})
)

// recordSelection records a successful selection of m after retries empty
// slots.
func recordSelection(c Category, m byte, retries int) {
	promSelectionsTotal.WithLabelValues(c.String(), string(m)).Inc()
	promSelectionRetries.WithLabelValues(c.String()).Observe(float64(retries))
}

// recordExhausted records a selection that hit MaxRetries.
func recordExhausted(c Category) {
	promExhaustedTotal.WithLabelValues(c.String()).Inc()
}
