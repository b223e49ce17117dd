// Package reach computes the relaxed reachability fixpoint of a ground task
// and prunes what can never become true.
package reach

import (
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/ground"
)

// Analysis marks the atoms, operators and axioms reachable from the initial
// state when negative conditions and delete effects are ignored.
type Analysis struct {
	Atoms     []bool
	Operators []bool
	Axioms    []bool
}

type watch struct {
	kind  int
	index int
	// effect is only meaningful for effect condition watches.
	effect int
}

const (
	watchPrecondition = iota
	watchEffect
	watchAxiom
)

// Analyze runs a counter based worklist fixpoint. Every conjunction keeps the
// number of positive literals not yet reached; it fires when the counter
// drops to zero.
func Analyze(t *ground.Task) Analysis {
	a := Analysis{
		Atoms:     make([]bool, len(t.Atoms)),
		Operators: make([]bool, len(t.Operators)),
		Axioms:    make([]bool, len(t.Axioms)),
	}
	watchers := make([][]watch, len(t.Atoms))
	opRemaining := make([]int, len(t.Operators))
	effRemaining := make([][]int, len(t.Operators))
	axRemaining := make([]int, len(t.Axioms))

	var queue []ground.AtomID
	reach := func(id ground.AtomID) {
		if !a.Atoms[id] {
			a.Atoms[id] = true
			queue = append(queue, id)
		}
	}
	fireEffect := func(op, eff int) {
		e := t.Operators[op].Effects[eff]
		if !e.Delete {
			reach(e.Atom)
		}
	}
	fireOperator := func(op int) {
		a.Operators[op] = true
		for j := range t.Operators[op].Effects {
			if effRemaining[op][j] == 0 {
				fireEffect(op, j)
			}
		}
	}
	fireAxiom := func(ax int) {
		a.Axioms[ax] = true
		reach(t.Axioms[ax].Head)
	}

	for i, op := range t.Operators {
		for _, l := range op.Precondition {
			if !l.Negated {
				opRemaining[i]++
				watchers[l.Atom] = append(watchers[l.Atom], watch{kind: watchPrecondition, index: i})
			}
		}
		effRemaining[i] = make([]int, len(op.Effects))
		for j, e := range op.Effects {
			for _, l := range e.Condition {
				if !l.Negated {
					effRemaining[i][j]++
					watchers[l.Atom] = append(watchers[l.Atom], watch{kind: watchEffect, index: i, effect: j})
				}
			}
		}
	}
	for i, ax := range t.Axioms {
		for _, l := range ax.Body {
			if !l.Negated {
				axRemaining[i]++
				watchers[l.Atom] = append(watchers[l.Atom], watch{kind: watchAxiom, index: i})
			}
		}
	}

	for _, id := range t.Init {
		reach(id)
	}
	for i := range t.Operators {
		if opRemaining[i] == 0 {
			fireOperator(i)
		}
	}
	for i := range t.Axioms {
		if axRemaining[i] == 0 {
			fireAxiom(i)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, w := range watchers[id] {
			switch w.kind {
			case watchPrecondition:
				opRemaining[w.index]--
				if opRemaining[w.index] == 0 {
					fireOperator(w.index)
				}
			case watchEffect:
				effRemaining[w.index][w.effect]--
				if effRemaining[w.index][w.effect] == 0 && a.Operators[w.index] {
					fireEffect(w.index, w.effect)
				}
			case watchAxiom:
				axRemaining[w.index]--
				if axRemaining[w.index] == 0 {
					fireAxiom(w.index)
				}
			}
		}
	}
	return a
}

// GoalReachable reports whether every positive goal literal is reachable.
func (a Analysis) GoalReachable(t *ground.Task) bool {
	if t.GoalImpossible {
		return false
	}
	for _, l := range t.Goal {
		if !l.Negated && !a.Atoms[l.Atom] {
			return false
		}
	}
	return true
}

type Result struct {
	Task          *ground.Task
	GoalReachable bool
	// Pruned counts the atoms dropped by filtering.
	Pruned int
}

// Filter analyzes the task and, unless opts keep unreachable facts, returns
// a copy restricted to reachable atoms, operators and axioms. Negative
// literals on unreachable atoms are always true and are removed; effects
// conditioned on unreachable atoms are dropped.
func Filter(t *ground.Task, opts config.Options) Result {
	a := Analyze(t)
	result := Result{Task: t, GoalReachable: a.GoalReachable(t)}
	if !opts.FilterUnreachableFacts {
		return result
	}

	out := ground.NewTask(t.Lifted)
	out.Metric = t.Metric
	out.GoalImpossible = t.GoalImpossible
	remap := make([]ground.AtomID, len(t.Atoms))
	for id, atom := range t.Atoms {
		if a.Atoms[id] {
			remap[id] = out.Intern(atom.Predicate, atom.Args)
		} else {
			remap[id] = -1
			result.Pruned++
		}
	}

	// rewrite maps a conjunction into the filtered atom space, reporting
	// false if it can never hold.
	rewrite := func(lits []ground.Literal) ([]ground.Literal, bool) {
		var kept []ground.Literal
		for _, l := range lits {
			if remap[l.Atom] < 0 {
				if l.Negated {
					continue
				}
				return nil, false
			}
			kept = append(kept, ground.Literal{Atom: remap[l.Atom], Negated: l.Negated})
		}
		return kept, true
	}

	for _, id := range t.Init {
		out.Init = append(out.Init, remap[id])
	}
	if goal, ok := rewrite(t.Goal); ok {
		out.Goal = goal
	} else {
		out.GoalImpossible = true
	}

	for i, op := range t.Operators {
		if !a.Operators[i] {
			continue
		}
		pre, _ := rewrite(op.Precondition)
		next := ground.Operator{
			Name:         op.Name,
			Schema:       op.Schema,
			Args:         op.Args,
			Precondition: pre,
			Cost:         op.Cost,
		}
		for _, e := range op.Effects {
			if remap[e.Atom] < 0 {
				continue
			}
			cond, ok := rewrite(e.Condition)
			if !ok {
				continue
			}
			next.Effects = append(next.Effects, ground.Effect{
				Condition: cond,
				Atom:      remap[e.Atom],
				Delete:    e.Delete,
				Source:    e.Source,
			})
		}
		out.Operators = append(out.Operators, next)
	}
	for i, ax := range t.Axioms {
		if !a.Axioms[i] {
			continue
		}
		body, _ := rewrite(ax.Body)
		out.Axioms = append(out.Axioms, ground.Axiom{
			Name:   ax.Name,
			Schema: ax.Schema,
			Head:   remap[ax.Head],
			Body:   body,
		})
	}

	result.Task = out
	return result
}
