// Package sas models the ground finite-domain task handed to the search
// engine, and reads as well as writes its text representation.
package sas

import (
	"fmt"
	"sort"
)

// FormatVersion is the version of the text format written by WriteTo.
const FormatVersion = 3

// NoneOfThose names the value taken by a variable when no atom of its group
// holds.
const NoneOfThose = "<none of those>"

type Variable struct {
	Name   string
	Values []string
	// Layer is the axiom layer of a derived variable and -1 otherwise.
	Layer   int
	Derived bool
}

// DefaultValue is the value a derived variable takes unless an axiom fires.
func (v Variable) DefaultValue() int {
	return len(v.Values) - 1
}

type Fact struct {
	Var   int
	Value int
}

type Mutex struct {
	Facts []Fact
}

// Effect sets Var to Post when Condition holds. Pre is the required old value
// or -1.
type Effect struct {
	Var       int
	Pre       int
	Post      int
	Condition []Fact
}

type Operator struct {
	Name    string
	Prevail []Fact
	Effects []Effect
	Cost    int
}

// Axiom sets the derived variable Var from From to To when Condition holds.
// Overapproximated rules had negated conditions dropped.
type Axiom struct {
	Condition        []Fact
	Var              int
	From             int
	To               int
	Overapproximated bool
}

type Task struct {
	Variables []Variable
	Mutexes   []Mutex
	Init      []int
	Goal      []Fact
	Operators []Operator
	Axioms    []Axiom
	Metric    bool
}

// SortFacts orders facts by variable, then value.
func SortFacts(facts []Fact) {
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].Var != facts[j].Var {
			return facts[i].Var < facts[j].Var
		}
		return facts[i].Value < facts[j].Value
	})
}

// InvalidTaskError reports an inconsistency found by Validate.
type InvalidTaskError struct {
	Reason string
}

func (e InvalidTaskError) Error() string {
	return "invalid SAS task: " + e.Reason
}

func invalid(format string, args ...interface{}) error {
	return InvalidTaskError{Reason: fmt.Sprintf(format, args...)}
}

func (t *Task) checkFact(context string, f Fact) error {
	if f.Var < 0 || f.Var >= len(t.Variables) {
		return invalid("%s: variable %d out of range", context, f.Var)
	}
	if f.Value < 0 || f.Value >= len(t.Variables[f.Var].Values) {
		return invalid("%s: value %d out of range for %s", context, f.Value, t.Variables[f.Var].Name)
	}
	return nil
}

func (t *Task) checkFacts(context string, facts []Fact) error {
	for _, f := range facts {
		if err := t.checkFact(context, f); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks index ranges, the initial state and axiom layering: the
// condition variables of an exact rule lie in lower or equal layers, and in
// strictly lower layers when the rule depends on their default value.
func (t *Task) Validate() error {
	for i, v := range t.Variables {
		if len(v.Values) < 1 {
			return invalid("variable %s has no values", v.Name)
		}
		if v.Derived && (v.Layer < 0 || len(v.Values) != 2) {
			return invalid("derived variable %s must be binary with a layer", v.Name)
		}
		if !v.Derived && v.Layer != -1 {
			return invalid("variable %d has a layer but is not derived", i)
		}
	}
	if len(t.Init) != len(t.Variables) {
		return invalid("initial state has %d values for %d variables", len(t.Init), len(t.Variables))
	}
	for i, value := range t.Init {
		if err := t.checkFact("initial state", Fact{Var: i, Value: value}); err != nil {
			return err
		}
		if v := t.Variables[i]; v.Derived && value != v.DefaultValue() {
			return invalid("derived variable %s does not start at its default value", v.Name)
		}
	}
	if err := t.checkFacts("goal", t.Goal); err != nil {
		return err
	}
	for _, m := range t.Mutexes {
		if err := t.checkFacts("mutex group", m.Facts); err != nil {
			return err
		}
	}
	for _, op := range t.Operators {
		context := "operator " + op.Name
		if err := t.checkFacts(context, op.Prevail); err != nil {
			return err
		}
		for _, e := range op.Effects {
			if err := t.checkFacts(context, e.Condition); err != nil {
				return err
			}
			if err := t.checkFact(context, Fact{Var: e.Var, Value: e.Post}); err != nil {
				return err
			}
			if e.Pre != -1 {
				if err := t.checkFact(context, Fact{Var: e.Var, Value: e.Pre}); err != nil {
					return err
				}
			}
			if t.Variables[e.Var].Derived {
				return invalid("%s: affects derived variable %s", context, t.Variables[e.Var].Name)
			}
		}
	}
	for i, ax := range t.Axioms {
		context := fmt.Sprintf("axiom %d", i)
		if err := t.checkFacts(context, ax.Condition); err != nil {
			return err
		}
		if err := t.checkFact(context, Fact{Var: ax.Var, Value: ax.To}); err != nil {
			return err
		}
		if err := t.checkFact(context, Fact{Var: ax.Var, Value: ax.From}); err != nil {
			return err
		}
		head := t.Variables[ax.Var]
		if !head.Derived {
			return invalid("%s: head %s is not derived", context, head.Name)
		}
		if ax.Overapproximated {
			continue
		}
		for _, f := range ax.Condition {
			body := t.Variables[f.Var]
			if !body.Derived {
				continue
			}
			negative := f.Value == body.DefaultValue()
			if body.Layer > head.Layer || (negative && body.Layer == head.Layer) {
				return invalid("%s: condition on %s (layer %d) not below head %s (layer %d)",
					context, body.Name, body.Layer, head.Name, head.Layer)
			}
		}
	}
	return nil
}

// ApplyVariableMapping returns a copy of the task in which variable i becomes
// variable mapping[i], or is removed if mapping[i] is -1. Facts on removed
// variables are dropped, as are effects on them and mutex groups left with
// fewer than two facts.
func (t *Task) ApplyVariableMapping(mapping []int) *Task {
	size := 0
	for _, m := range mapping {
		if m >= 0 {
			size++
		}
	}
	out := &Task{
		Variables: make([]Variable, size),
		Init:      make([]int, size),
		Metric:    t.Metric,
	}
	for i, v := range t.Variables {
		if m := mapping[i]; m >= 0 {
			out.Variables[m] = v
			out.Init[m] = t.Init[i]
		}
	}
	remap := func(facts []Fact) []Fact {
		var result []Fact
		for _, f := range facts {
			if m := mapping[f.Var]; m >= 0 {
				result = append(result, Fact{Var: m, Value: f.Value})
			}
		}
		SortFacts(result)
		return result
	}

	out.Goal = remap(t.Goal)
	for _, m := range t.Mutexes {
		if facts := remap(m.Facts); len(facts) >= 2 {
			out.Mutexes = append(out.Mutexes, Mutex{Facts: facts})
		}
	}
	for _, op := range t.Operators {
		next := Operator{Name: op.Name, Prevail: remap(op.Prevail), Cost: op.Cost}
		for _, e := range op.Effects {
			m := mapping[e.Var]
			if m < 0 {
				continue
			}
			next.Effects = append(next.Effects, Effect{Var: m, Pre: e.Pre, Post: e.Post, Condition: remap(e.Condition)})
		}
		SortEffects(next.Effects)
		out.Operators = append(out.Operators, next)
	}
	for _, ax := range t.Axioms {
		m := mapping[ax.Var]
		if m < 0 {
			continue
		}
		out.Axioms = append(out.Axioms, Axiom{
			Condition:        remap(ax.Condition),
			Var:              m,
			From:             ax.From,
			To:               ax.To,
			Overapproximated: ax.Overapproximated,
		})
	}
	return out
}

// SortEffects orders effects by variable. Effects on the same variable keep
// their relative order: they are applied in sequence, so a delete listed
// before an add of the same atom is overridden by it.
func SortEffects(effects []Effect) {
	sort.SliceStable(effects, func(i, j int) bool {
		return effects[i].Var < effects[j].Var
	})
}

// SortAxioms orders rules by head variable, keeping the relative order of
// rules for the same head.
func (t *Task) SortAxioms() {
	sort.SliceStable(t.Axioms, func(i, j int) bool {
		return t.Axioms[i].Var < t.Axioms[j].Var
	})
}

// Unsolvable returns a task whose goal can never be reached: one binary
// variable that no operator changes.
func Unsolvable(metric bool) *Task {
	return &Task{
		Variables: []Variable{{
			Name:   "var0",
			Values: []string{"Atom dummy(val1)", "Atom dummy(val2)"},
			Layer:  -1,
		}},
		Init:   []int{0},
		Goal:   []Fact{{Var: 0, Value: 1}},
		Metric: metric,
	}
}
