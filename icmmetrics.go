package icclu

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromObserver exports builder and lookup activity as Prometheus metrics.
type PromObserver struct {
	// builds counts Build calls.
	// Labels: class, func, status (ok, error)
	builds *prometheus.CounterVec

	// buildSteps is the member count of built lookups.
	buildSteps prometheus.Histogram

	// buildLatency measures Build calls in seconds.
	buildLatency prometheus.Histogram

	// lookups counts pipeline lookups.
	// Labels: dir (fwd, bwd), result
	lookups *prometheus.CounterVec

	// steps counts node evaluations inside traced lookups.
	// Labels: kind, dir
	steps *prometheus.CounterVec
}

// NewPromObserver registers the metrics on reg. A nil reg uses the
// default registerer.
func NewPromObserver(reg prometheus.Registerer) *PromObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &PromObserver{
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icclu",
			Subsystem: "builder",
			Name:      "builds_total",
			Help:      "Total lookup object builds",
		}, []string{"class", "func", "status"}),
		buildSteps: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "icclu",
			Subsystem: "builder",
			Name:      "steps",
			Help:      "Number of nodes in built lookups",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}),
		buildLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "icclu",
			Subsystem: "builder",
			Name:      "duration_seconds",
			Help:      "Lookup object build latency in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icclu",
			Subsystem: "lookup",
			Name:      "lookups_total",
			Help:      "Total pipeline lookups by direction and result",
		}, []string{"dir", "result"}),
		steps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icclu",
			Subsystem: "lookup",
			Name:      "steps_total",
			Help:      "Total node evaluations by kind",
		}, []string{"kind", "dir"}),
	}
}

func dirLabel(bwd bool) string {
	if bwd {
		return "bwd"
	}
	return "fwd"
}

func (o *PromObserver) BuildDone(info BuildInfo, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.builds.WithLabelValues(info.Class.String(), info.Func.String(), status).Inc()
	o.buildLatency.Observe(info.Duration.Seconds())
	if err == nil {
		o.buildSteps.Observe(float64(info.Steps))
	}
}

func (o *PromObserver) LookupDone(bwd bool, rv Result) {
	o.lookups.WithLabelValues(dirLabel(bwd), rv.String()).Inc()
}

func (o *PromObserver) StepDone(kind Kind, bwd bool, _ Result) {
	o.steps.WithLabelValues(kind.String(), dirLabel(bwd)).Inc()
}
