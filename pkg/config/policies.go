package config

import (
	"fmt"
	"strings"
)

// Encoding selects how atoms that belong to several mutex groups are encoded.
type Encoding int

const (
	// EncodingPartial assigns every atom to exactly one variable.
	EncodingPartial Encoding = iota
	// EncodingFull adds an atom to the variable of every group containing it.
	EncodingFull
)

var encodingNames = []string{"partial", "full"}

func (e Encoding) String() string { return enumName(encodingNames, int(e)) }

func (e *Encoding) Set(s string) error {
	v, err := parseEnum("encoding", encodingNames, s)
	if err != nil {
		return err
	}
	*e = Encoding(v)
	return nil
}

func (e *Encoding) Type() string { return "encoding" }

func (e *Encoding) UnmarshalText(text []byte) error { return e.Set(string(text)) }

// LayerStrategy selects how derived variables are distributed over axiom layers.
type LayerStrategy int

const (
	// LayerStrategyMin puts as many derived variables as possible into shared layers.
	LayerStrategyMin LayerStrategy = iota
	// LayerStrategyMax gives every strongly connected component its own layer.
	LayerStrategyMax
)

var layerStrategyNames = []string{"min", "max"}

func (s LayerStrategy) String() string { return enumName(layerStrategyNames, int(s)) }

func (s *LayerStrategy) Set(value string) error {
	v, err := parseEnum("layer strategy", layerStrategyNames, value)
	if err != nil {
		return err
	}
	*s = LayerStrategy(v)
	return nil
}

func (s *LayerStrategy) Type() string { return "min|max" }

func (s *LayerStrategy) UnmarshalText(text []byte) error { return s.Set(string(text)) }

// NegatedAxiomPolicy selects which negated derived literals in axiom bodies are
// replaced by an overapproximation.
type NegatedAxiomPolicy int

const (
	// NegatedAxiomsNone keeps every negation exact. Cyclic negative
	// dependencies are rejected.
	NegatedAxiomsNone NegatedAxiomPolicy = iota
	// NegatedAxiomsCycles overapproximates negations inside dependency cycles.
	NegatedAxiomsCycles
	// NegatedAxiomsAll overapproximates every negated derived literal.
	NegatedAxiomsAll
)

var negatedAxiomNames = []string{"none", "cycles", "all"}

func (p NegatedAxiomPolicy) String() string { return enumName(negatedAxiomNames, int(p)) }

func (p *NegatedAxiomPolicy) Set(value string) error {
	v, err := parseEnum("negated axiom policy", negatedAxiomNames, value)
	if err != nil {
		return err
	}
	*p = NegatedAxiomPolicy(v)
	return nil
}

func (p *NegatedAxiomPolicy) Type() string { return "none|cycles|all" }

func (p *NegatedAxiomPolicy) UnmarshalText(text []byte) error { return p.Set(string(text)) }

// NecessaryLiteralPolicy trades precision of the derived-literal relevance
// analysis for cost.
type NecessaryLiteralPolicy int

const (
	// NecessaryLiteralsExact computes the least fixpoint over axiom bodies.
	NecessaryLiteralsExact NecessaryLiteralPolicy = iota
	// NecessaryLiteralsNonDerived marks every derived literal occurring in
	// operators, the goal or axiom bodies without propagating polarities.
	NecessaryLiteralsNonDerived
	// NecessaryLiteralsPositive marks every derived variable necessary.
	NecessaryLiteralsPositive
)

var necessaryLiteralNames = []string{"exact", "non-derived", "positive"}

func (p NecessaryLiteralPolicy) String() string { return enumName(necessaryLiteralNames, int(p)) }

func (p *NecessaryLiteralPolicy) Set(value string) error {
	v, err := parseEnum("necessary literal policy", necessaryLiteralNames, value)
	if err != nil {
		return err
	}
	*p = NecessaryLiteralPolicy(v)
	return nil
}

func (p *NecessaryLiteralPolicy) Type() string { return "exact|non-derived|positive" }

func (p *NecessaryLiteralPolicy) UnmarshalText(text []byte) error { return p.Set(string(text)) }

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	for i, name := range names {
		if s == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q, must be one of: %s", kind, s, strings.Join(names, ", "))
}
