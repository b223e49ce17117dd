package config

import (
	"fmt"
	"runtime"
	"time"
)

const (
	DefaultInvariantMaxCandidates = 100000
	DefaultInvariantMaxTime       = 300 * time.Second
	DefaultSASFile                = "output.sas"
)

// Options is the resolved configuration of a translation run. It is built
// once, validated, and then passed by value to every stage.
type Options struct {
	Relaxed  bool     `mapstructure:"relaxed"`
	Encoding Encoding `mapstructure:"encoding"`

	// InvariantMaxCandidates bounds the number of candidates considered by
	// invariant synthesis. Zero disables synthesis.
	InvariantMaxCandidates int           `mapstructure:"invariant-generation-max-candidates"`
	InvariantMaxTime       time.Duration `mapstructure:"invariant-generation-max-time"`
	InvariantWorkers       int           `mapstructure:"invariant-generation-workers"`

	SASFile     string `mapstructure:"sas-file"`
	DumpTask    bool   `mapstructure:"dump-task"`
	MetricsFile string `mapstructure:"metrics-file"`

	AddImpliedPreconditions    bool `mapstructure:"add-implied-preconditions"`
	FilterUnreachableFacts     bool `mapstructure:"filter-unreachable-facts"`
	ReorderVariables           bool `mapstructure:"reorder-variables"`
	FilterUnimportantVariables bool `mapstructure:"filter-unimportant-variables"`

	OverapproximateAxioms       bool                   `mapstructure:"overapproximate-axioms"`
	NegatedAxioms               NegatedAxiomPolicy     `mapstructure:"overapproximate-negated-axioms"`
	KeepRedundantPositiveAxioms bool                   `mapstructure:"keep-redundant-positive-axioms"`
	LayerStrategy               LayerStrategy          `mapstructure:"layer-strategy"`
	NecessaryLiterals           NecessaryLiteralPolicy `mapstructure:"overapproximate-necessary-literals"`
}

// Default returns the options used when no flag is given.
func Default() Options {
	return Options{
		Encoding:                   EncodingPartial,
		InvariantMaxCandidates:     DefaultInvariantMaxCandidates,
		InvariantMaxTime:           DefaultInvariantMaxTime,
		InvariantWorkers:           runtime.GOMAXPROCS(0),
		SASFile:                    DefaultSASFile,
		FilterUnreachableFacts:     true,
		ReorderVariables:           true,
		FilterUnimportantVariables: true,
		NegatedAxioms:              NegatedAxiomsCycles,
		LayerStrategy:              LayerStrategyMin,
		NecessaryLiterals:          NecessaryLiteralsExact,
	}
}

// InvalidOptionError reports a configuration value that cannot be used.
type InvalidOptionError struct {
	Option string
	Reason string
}

func (e InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Option, e.Reason)
}

// Validate rejects option values that no stage can honor.
func (o Options) Validate() error {
	if o.InvariantMaxCandidates < 0 {
		return InvalidOptionError{Option: "invariant-generation-max-candidates", Reason: "must not be negative"}
	}
	if o.InvariantMaxTime < 0 {
		return InvalidOptionError{Option: "invariant-generation-max-time", Reason: "must not be negative"}
	}
	if o.InvariantWorkers < 1 {
		return InvalidOptionError{Option: "invariant-generation-workers", Reason: "must be at least 1"}
	}
	if o.SASFile == "" {
		return InvalidOptionError{Option: "sas-file", Reason: "must not be empty"}
	}
	checks := []struct {
		option string
		name   string
	}{
		{"encoding", o.Encoding.String()},
		{"layer_strategy", o.LayerStrategy.String()},
		{"overapproximate_negated_axioms", o.NegatedAxioms.String()},
		{"overapproximate_necessary_literals", o.NecessaryLiterals.String()},
	}
	for _, c := range checks {
		if len(c.name) > 8 && c.name[:8] == "unknown(" {
			return InvalidOptionError{Option: c.option, Reason: "unknown value " + c.name}
		}
	}
	return nil
}

// EffectiveNegatedAxiomPolicy is the policy the stratifier applies:
// OverapproximateAxioms forces overapproximation of every negated literal.
func (o Options) EffectiveNegatedAxiomPolicy() NegatedAxiomPolicy {
	if o.OverapproximateAxioms {
		return NegatedAxiomsAll
	}
	return o.NegatedAxioms
}
