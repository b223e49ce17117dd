package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	StageLabel = "stage"
	Outcome    = "outcome"
	Succeeded  = "succeeded"
	Failed     = "failed"

	Verified   = "verified"
	Rejected   = "rejected"
	Unexplored = "unexplored"
)

// Pipeline holds the collectors of a single translation run. Each run owns
// its registry so that concurrent translations in one process do not share
// counters.
type Pipeline struct {
	registry *prometheus.Registry

	stageDuration    *prometheus.HistogramVec
	candidates       *prometheus.CounterVec
	variables        prometheus.Gauge
	operators        prometheus.Gauge
	axioms           prometheus.Gauge
	mutexGroups      prometheus.Gauge
	axiomLayers      prometheus.Gauge
	overapproximated prometheus.Counter
}

func NewPipeline() *Pipeline {
	p := &Pipeline{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "translator_stage_duration_seconds",
				Help:    "The duration of a translation stage",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{StageLabel, Outcome},
		),
		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translator_invariant_candidates_total",
				Help: "Invariant candidates by verification outcome",
			},
			[]string{Outcome},
		),
		variables: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "translator_variables",
				Help: "Number of variables in the emitted task",
			},
		),
		operators: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "translator_operators",
				Help: "Number of operators in the emitted task",
			},
		),
		axioms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "translator_axioms",
				Help: "Number of axiom rules in the emitted task",
			},
		),
		mutexGroups: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "translator_mutex_groups",
				Help: "Number of mutex groups in the emitted task",
			},
		),
		axiomLayers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "translator_axiom_layers",
				Help: "Number of axiom layers in the emitted task",
			},
		),
		overapproximated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "translator_overapproximated_axioms_total",
				Help: "Monotonic count of axiom rules that lost a negated condition",
			},
		),
	}
	p.registry.MustRegister(
		p.stageDuration,
		p.candidates,
		p.variables,
		p.operators,
		p.axioms,
		p.mutexGroups,
		p.axiomLayers,
		p.overapproximated,
	)
	return p
}

// StageSuccess returns an emitter recording a successful run of stage.
func (p *Pipeline) StageSuccess(stage string) func(time.Duration) {
	return func(d time.Duration) {
		p.stageDuration.WithLabelValues(stage, Succeeded).Observe(d.Seconds())
	}
}

// StageFailure returns an emitter recording a failed run of stage.
func (p *Pipeline) StageFailure(stage string) func(time.Duration) {
	return func(d time.Duration) {
		p.stageDuration.WithLabelValues(stage, Failed).Observe(d.Seconds())
	}
}

func (p *Pipeline) ObserveCandidates(verified, rejected, unexplored int) {
	p.candidates.WithLabelValues(Verified).Add(float64(verified))
	p.candidates.WithLabelValues(Rejected).Add(float64(rejected))
	p.candidates.WithLabelValues(Unexplored).Add(float64(unexplored))
}

func (p *Pipeline) SetTaskSize(variables, operators, axioms, mutexGroups, layers int) {
	p.variables.Set(float64(variables))
	p.operators.Set(float64(operators))
	p.axioms.Set(float64(axioms))
	p.mutexGroups.Set(float64(mutexGroups))
	p.axiomLayers.Set(float64(layers))
}

func (p *Pipeline) AddOverapproximated(n int) {
	p.overapproximated.Add(float64(n))
}

// Gatherer exposes the run's registry.
func (p *Pipeline) Gatherer() prometheus.Gatherer {
	return p.registry
}

// WriteToTextfile writes the registry in the text exposition format,
// replacing path atomically.
func (p *Pipeline) WriteToTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, p.registry), "writing metrics to %s", path)
}
