package validation

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts pipeline outcomes
type Metrics struct {
	blocks           prometheus.Counter
	parseFailures    prometheus.Counter
	verdicts         *prometheus.CounterVec
	deliveryFailures prometheus.Counter
}

// NewMetrics creates the pipeline counters and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "validator_blocks_total",
			Help: "Result blocks read from the input stream",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "validator_parse_failures_total",
			Help: "Result blocks that could not be parsed",
		}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "validator_verdicts_total",
			Help: "Verdicts by outcome",
		}, []string{"outcome"}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "validator_delivery_failures_total",
			Help: "Verdicts the backend did not acknowledge",
		}),
	}
	reg.MustRegister(m.blocks, m.parseFailures, m.verdicts, m.deliveryFailures)
	return m
}

func outcome(passed bool) string {
	if passed {
		return "accepted"
	}
	return "rejected"
}
