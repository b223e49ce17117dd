package encode

import (
	"fmt"

	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/ground"
	"github.com/planforge/translator/pkg/translate/invariant"
	"github.com/planforge/translator/pkg/translate/sas"
)

// UnsupportedGoalError is returned for a negated goal literal whose atom
// shares a variable with more than one other value.
type UnsupportedGoalError struct {
	Atom string
}

func (e UnsupportedGoalError) Error() string {
	return fmt.Sprintf("negated goal %q on a multi-valued variable is not supported", e.Atom)
}

type Result struct {
	Task *sas.Task
	// Unsolvable is set when the goal was found impossible; Task is then the
	// trivially unsolvable task.
	Unsolvable bool
	// Facts lists, for every ground atom, the facts that represent it.
	Facts [][]sas.Fact
}

type encoder struct {
	task     *ground.Task
	opts     config.Options
	specs    []variableSpec
	cond     *conditionTranslator
	partners map[ground.AtomID]map[ground.AtomID]bool
}

// Encode builds the finite-domain task from the reachable ground task and
// its verified mutex groups.
func Encode(task *ground.Task, groups []invariant.MutexGroup, opts config.Options) (*Result, error) {
	if task.GoalImpossible {
		return &Result{Task: sas.Unsolvable(task.Metric), Unsolvable: true}, nil
	}

	vars, specs, facts := buildVariables(task, chooseGroups(groups, opts.Encoding))
	e := &encoder{
		task:  task,
		opts:  opts,
		specs: specs,
		cond:  &conditionTranslator{vars: vars, facts: facts},
	}
	if opts.AddImpliedPreconditions {
		e.partners = mutexPartners(groups)
	}

	goal, ok, err := e.goal()
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Result{Task: sas.Unsolvable(task.Metric), Unsolvable: true, Facts: facts}, nil
	}

	out := &sas.Task{
		Variables: vars,
		Init:      initialState(task, vars, specs),
		Goal:      goal,
		Metric:    task.Metric,
		Mutexes:   e.mutexes(groups),
	}
	for _, op := range task.Operators {
		out.Operators = append(out.Operators, e.operator(op)...)
	}
	out.Axioms = e.axioms()
	return &Result{Task: out, Facts: facts}, nil
}

func (e *encoder) goal() ([]sas.Fact, bool, error) {
	assignment := make(map[int]int)
	assign := func(f sas.Fact) bool {
		if v, ok := assignment[f.Var]; ok && v != f.Value {
			return false
		}
		assignment[f.Var] = f.Value
		return true
	}
	for _, l := range e.task.Goal {
		facts := e.cond.facts[l.Atom]
		if len(facts) == 0 {
			if l.Negated {
				continue
			}
			return nil, false, nil
		}
		if !l.Negated {
			for _, f := range facts {
				if !assign(f) {
					return nil, false, nil
				}
			}
			continue
		}
		f, values := e.cond.negatedValues(l.Atom)
		if len(values) != 1 {
			return nil, false, UnsupportedGoalError{Atom: e.task.Atoms[l.Atom].String()}
		}
		if !assign(sas.Fact{Var: f.Var, Value: values[0]}) {
			return nil, false, nil
		}
	}
	goal := make([]sas.Fact, 0, len(assignment))
	for v, value := range assignment {
		goal = append(goal, sas.Fact{Var: v, Value: value})
	}
	sas.SortFacts(goal)
	return goal, true, nil
}

// mutexes lists the facts of every group, in group order.
func (e *encoder) mutexes(groups []invariant.MutexGroup) []sas.Mutex {
	var result []sas.Mutex
	for _, g := range groups {
		seen := make(map[sas.Fact]bool)
		var facts []sas.Fact
		for _, a := range g.Atoms {
			for _, f := range e.cond.facts[a] {
				if !seen[f] {
					seen[f] = true
					facts = append(facts, f)
				}
			}
		}
		if len(facts) < 2 {
			continue
		}
		sas.SortFacts(facts)
		result = append(result, sas.Mutex{Facts: facts})
	}
	return result
}

func mutexPartners(groups []invariant.MutexGroup) map[ground.AtomID]map[ground.AtomID]bool {
	partners := make(map[ground.AtomID]map[ground.AtomID]bool)
	for _, g := range groups {
		for _, a := range g.Atoms {
			for _, b := range g.Atoms {
				if a == b {
					continue
				}
				if partners[a] == nil {
					partners[a] = make(map[ground.AtomID]bool)
				}
				partners[a][b] = true
			}
		}
	}
	return partners
}

func (e *encoder) noneValue(v int) (int, bool) {
	if !e.specs[v].none {
		return 0, false
	}
	return len(e.cond.vars[v].Values) - 1, true
}

type transition struct {
	v, post int
	cond    []sas.Fact
}

func (t transition) key() string {
	return fmt.Sprint(t.v, t.post, t.cond)
}

// operator translates one ground operator. A precondition with negated
// literals on multi-valued variables yields one operator per alternative.
func (e *encoder) operator(op ground.Operator) []sas.Operator {
	pres, ok := e.cond.translate(op.Precondition)
	if !ok {
		return nil
	}
	var result []sas.Operator
	for _, pre := range pres {
		if translated, ok := e.operatorWith(op, pre); ok {
			result = append(result, translated)
		}
	}
	return result
}

func (e *encoder) effectConditions(pre map[int]int, effect ground.Effect) [][]sas.Fact {
	alts, ok := e.cond.translate(effect.Condition)
	if !ok {
		return nil
	}
	var result [][]sas.Fact
	for _, alt := range alts {
		if merged, ok := merge(pre, alt); ok {
			result = append(result, merged)
		}
	}
	return result
}

// operatorWith translates one operator under a fixed precondition. Delete
// transitions precede add transitions on the same variable, so an add that
// fires together with a delete of the same atom is applied last and wins.
func (e *encoder) operatorWith(op ground.Operator, pre []sas.Fact) (sas.Operator, bool) {
	preMap := factMap(pre)
	var transitions []transition
	seen := make(map[string]bool)
	add := func(t transition) {
		if k := t.key(); !seen[k] {
			seen[k] = true
			transitions = append(transitions, t)
		}
	}

	var adds []transition
	for _, effect := range op.Effects {
		if effect.Delete {
			continue
		}
		for _, cond := range e.effectConditions(preMap, effect) {
			for _, f := range e.cond.facts[effect.Atom] {
				adds = append(adds, transition{v: f.Var, post: f.Value, cond: cond})
			}
		}
	}

	for _, effect := range op.Effects {
		if !effect.Delete {
			continue
		}
		for _, cond := range e.effectConditions(preMap, effect) {
			for _, f := range e.cond.facts[effect.Atom] {
				none, ok := e.noneValue(f.Var)
				if !ok {
					continue
				}
				if value, fixed := preMap[f.Var]; fixed && value != f.Value {
					continue
				}
				if e.overridden(adds, f.Var, cond) {
					continue
				}
				guarded, ok := e.guard(preMap, cond, f)
				if !ok {
					continue
				}
				add(transition{v: f.Var, post: none, cond: guarded})
			}
		}
	}

	for _, t := range adds {
		if value, ok := preMap[t.v]; ok && value == t.post && len(t.cond) == 0 {
			continue
		}
		add(t)
	}

	affected := make(map[int]bool)
	for _, t := range transitions {
		affected[t.v] = true
	}
	if len(transitions) == 0 {
		return sas.Operator{}, false
	}

	implied := e.impliedPreconditions(pre, affected)
	result := sas.Operator{Name: op.Name, Cost: op.Cost}
	for _, f := range pre {
		if !affected[f.Var] {
			result.Prevail = append(result.Prevail, f)
		}
	}
	for _, t := range transitions {
		effect := sas.Effect{Var: t.v, Pre: -1, Post: t.post, Condition: t.cond}
		if value, ok := preMap[t.v]; ok {
			effect.Pre = value
		} else if value, ok := implied[t.v]; ok {
			effect.Pre = value
		}
		result.Effects = append(result.Effects, effect)
	}
	sas.SortEffects(result.Effects)
	return result, true
}

// overridden reports whether an add effect on the same variable fires
// whenever a delete with the given condition does.
func (e *encoder) overridden(adds []transition, v int, cond []sas.Fact) bool {
	for _, t := range adds {
		if t.v == v && subsetOf(t.cond, cond) {
			return true
		}
	}
	return false
}

// guard adds the deleted fact to the condition of a delete effect unless the
// precondition already requires it.
func (e *encoder) guard(pre map[int]int, cond []sas.Fact, deleted sas.Fact) ([]sas.Fact, bool) {
	if _, ok := pre[deleted.Var]; ok {
		return cond, true
	}
	guarded := make([]sas.Fact, 0, len(cond)+1)
	for _, f := range cond {
		if f.Var == deleted.Var {
			if f.Value != deleted.Value {
				return nil, false
			}
			continue
		}
		guarded = append(guarded, f)
	}
	guarded = append(guarded, deleted)
	sas.SortFacts(guarded)
	return guarded, true
}

// impliedPreconditions finds values of affected variables without a
// precondition that every state satisfying pre must have: the value of the
// same atom in another variable, or false for the binary variable of a
// mutex partner.
func (e *encoder) impliedPreconditions(pre []sas.Fact, affected map[int]bool) map[int]int {
	if !e.opts.AddImpliedPreconditions {
		return nil
	}
	preMap := factMap(pre)
	implied := make(map[int]int)
	for _, p := range pre {
		atom, ok := e.atomOf(p)
		if !ok {
			continue
		}
		for _, f := range e.cond.facts[atom] {
			if _, fixed := preMap[f.Var]; affected[f.Var] && !fixed {
				implied[f.Var] = f.Value
			}
		}
		for partner := range e.partners[atom] {
			for _, f := range e.cond.facts[partner] {
				if _, fixed := preMap[f.Var]; !affected[f.Var] || fixed {
					continue
				}
				if _, done := implied[f.Var]; done || len(e.specs[f.Var].atoms) != 1 {
					continue
				}
				if none, ok := e.noneValue(f.Var); ok {
					implied[f.Var] = none
				}
			}
		}
	}
	return implied
}

func (e *encoder) atomOf(f sas.Fact) (ground.AtomID, bool) {
	atoms := e.specs[f.Var].atoms
	if f.Value >= len(atoms) {
		return 0, false
	}
	return atoms[f.Value], true
}

// axioms translates ground axioms into rules setting the head's derived
// variable from its default to true. Rules requiring their own head and
// duplicate rules are dropped.
func (e *encoder) axioms() []sas.Axiom {
	var result []sas.Axiom
	seen := make(map[string]bool)
	for _, ax := range e.task.Axioms {
		head := e.cond.facts[ax.Head][0]
		bodies, ok := e.cond.translate(ax.Body)
		if !ok {
			continue
		}
	alternatives:
		for _, body := range bodies {
			for _, f := range body {
				if f == head {
					continue alternatives
				}
			}
			key := fmt.Sprint(head.Var, body)
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, sas.Axiom{
				Condition: body,
				Var:       head.Var,
				From:      1,
				To:        0,
			})
		}
	}
	return result
}
