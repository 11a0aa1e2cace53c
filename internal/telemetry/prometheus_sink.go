package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink counts unit runs and apply outcomes for scraping.
type PrometheusSink struct {
	unitRuns *prometheus.CounterVec
	applies  *prometheus.CounterVec
}

// NewPrometheusSink creates a sink and registers its collectors with the
// provided registerer.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{
		unitRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "confset",
			Name:      "unit_runs_total",
			Help:      "Unit action attempts partitioned by intent, action and result code.",
		}, []string{"intent", "action", "code"}),
		applies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "confset",
			Name:      "applies_total",
			Help:      "Apply runs partitioned by aggregate result code.",
		}, []string{"code"}),
	}

	for _, c := range []prometheus.Collector{s.unitRuns, s.applies} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *PrometheusSink) LogUnitRun(record UnitRecord) {
	s.unitRuns.WithLabelValues(string(record.Intent), record.Action, record.Info.Code.String()).Inc()
}

func (s *PrometheusSink) LogApplySummary(summary ApplySummary) {
	s.applies.WithLabelValues(summary.Code.String()).Inc()
}
