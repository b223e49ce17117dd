package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/planforge/translator/pkg/config"
)

// invertedBool is a bool flag that stores the negation of its value, for
// flags that switch off a stage enabled by default.
type invertedBool struct {
	target *bool
}

func (b invertedBool) String() string { return strconv.FormatBool(!*b.target) }

func (b invertedBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b.target = !v
	return nil
}

func (b invertedBool) Type() string { return "bool" }

type fullEncoding struct {
	target *config.Encoding
}

func (e fullEncoding) String() string { return strconv.FormatBool(*e.target == config.EncodingFull) }

func (e fullEncoding) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*e.target = config.EncodingPartial
	if v {
		*e.target = config.EncodingFull
	}
	return nil
}

func (e fullEncoding) Type() string { return "bool" }

// seconds reads a whole number of seconds into a duration.
type seconds struct {
	target *time.Duration
}

func (s seconds) String() string { return strconv.FormatInt(int64(*s.target/time.Second), 10) }

func (s seconds) Set(value string) error {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return err
	}
	*s.target = time.Duration(v) * time.Second
	return nil
}

func (s seconds) Type() string { return "seconds" }

// normalizeFlagName lets every flag be spelled with underscores as well.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func boolVar(flags *pflag.FlagSet, value pflag.Value, name, usage string) {
	flags.VarPF(value, name, "", usage).NoOptDefVal = "true"
}

func bindOptions(flags *pflag.FlagSet, o *config.Options) {
	flags.SetNormalizeFunc(normalizeFlagName)

	flags.BoolVar(&o.Relaxed, "relaxed", o.Relaxed, "output relaxed task (no delete effects)")
	boolVar(flags, fullEncoding{&o.Encoding}, "full-encoding", "add an atom to the variable of every mutex group containing it")
	flags.IntVar(&o.InvariantMaxCandidates, "invariant-generation-max-candidates", o.InvariantMaxCandidates, "max number of candidates for invariant generation, 0 disables it")
	flags.Var(seconds{&o.InvariantMaxTime}, "invariant-generation-max-time", "max time for invariant generation in seconds")
	flags.IntVar(&o.InvariantWorkers, "invariant-generation-workers", o.InvariantWorkers, "number of candidates verified in parallel")
	flags.StringVar(&o.SASFile, "sas-file", o.SASFile, "path to the output task file")
	flags.StringVar(&o.MetricsFile, "metrics-file", o.MetricsFile, "write the run's metrics in prometheus text format to this path")
	flags.BoolVar(&o.AddImpliedPreconditions, "add-implied-preconditions", o.AddImpliedPreconditions, "infer additional preconditions from invariants")
	boolVar(flags, invertedBool{&o.FilterUnreachableFacts}, "keep-unreachable-facts", "keep facts that cannot be reached from the initial state")
	boolVar(flags, invertedBool{&o.ReorderVariables}, "skip-variable-reordering", "keep the variable order of the encoder")
	boolVar(flags, invertedBool{&o.FilterUnimportantVariables}, "keep-unimportant-variables", "keep variables that do not influence the goal")
	flags.BoolVar(&o.OverapproximateAxioms, "overapproximate-axioms", o.OverapproximateAxioms, "overapproximate every negated axiom condition")
	flags.BoolVar(&o.DumpTask, "dump-task", o.DumpTask, "print a readable dump of the translated task")
	flags.Var(&o.NegatedAxioms, "overapproximate-negated-axioms", "which negated axiom conditions to overapproximate: none, cycles or all")
	flags.BoolVar(&o.KeepRedundantPositiveAxioms, "keep-redundant-positive-axioms", o.KeepRedundantPositiveAxioms, "keep derived variables defined as the negation of another")
	flags.Var(&o.LayerStrategy, "layer-strategy", "axiom layer assignment: min or max")
	flags.Var(&o.NecessaryLiterals, "overapproximate-necessary-literals", "relevance analysis of derived literals: exact, non-derived or positive")
}

// overrides copies the option a flag sets from src to dst.
var overrides = map[string]func(dst *config.Options, src config.Options){
	"relaxed":                             func(dst *config.Options, src config.Options) { dst.Relaxed = src.Relaxed },
	"full-encoding":                       func(dst *config.Options, src config.Options) { dst.Encoding = src.Encoding },
	"invariant-generation-max-candidates": func(dst *config.Options, src config.Options) { dst.InvariantMaxCandidates = src.InvariantMaxCandidates },
	"invariant-generation-max-time":       func(dst *config.Options, src config.Options) { dst.InvariantMaxTime = src.InvariantMaxTime },
	"invariant-generation-workers":        func(dst *config.Options, src config.Options) { dst.InvariantWorkers = src.InvariantWorkers },
	"sas-file":                            func(dst *config.Options, src config.Options) { dst.SASFile = src.SASFile },
	"metrics-file":                        func(dst *config.Options, src config.Options) { dst.MetricsFile = src.MetricsFile },
	"add-implied-preconditions":           func(dst *config.Options, src config.Options) { dst.AddImpliedPreconditions = src.AddImpliedPreconditions },
	"keep-unreachable-facts":              func(dst *config.Options, src config.Options) { dst.FilterUnreachableFacts = src.FilterUnreachableFacts },
	"skip-variable-reordering":            func(dst *config.Options, src config.Options) { dst.ReorderVariables = src.ReorderVariables },
	"keep-unimportant-variables":          func(dst *config.Options, src config.Options) { dst.FilterUnimportantVariables = src.FilterUnimportantVariables },
	"overapproximate-axioms":              func(dst *config.Options, src config.Options) { dst.OverapproximateAxioms = src.OverapproximateAxioms },
	"dump-task":                           func(dst *config.Options, src config.Options) { dst.DumpTask = src.DumpTask },
	"overapproximate-negated-axioms":      func(dst *config.Options, src config.Options) { dst.NegatedAxioms = src.NegatedAxioms },
	"keep-redundant-positive-axioms":      func(dst *config.Options, src config.Options) { dst.KeepRedundantPositiveAxioms = src.KeepRedundantPositiveAxioms },
	"layer-strategy":                      func(dst *config.Options, src config.Options) { dst.LayerStrategy = src.LayerStrategy },
	"overapproximate-necessary-literals":  func(dst *config.Options, src config.Options) { dst.NecessaryLiterals = src.NecessaryLiterals },
}
