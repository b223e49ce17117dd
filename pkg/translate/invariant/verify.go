package invariant

import (
	"context"
	"sort"
	"strconv"

	"github.com/planforge/translator/pkg/api/lifted"
	"github.com/planforge/translator/pkg/lib/sat"
	"github.com/planforge/translator/pkg/translate/ground"
)

// universe holds the read-only indexes shared by all verification workers.
type universe struct {
	task             *ground.Task
	init             []bool
	arity            map[string]int
	fluent           []string
	fluentSet        map[string]bool
	atomsByPredicate map[string][]ground.AtomID
	opsByPredicate   map[string][]int
}

func newUniverse(task *ground.Task) *universe {
	u := &universe{
		task:             task,
		init:             task.InitSet(),
		arity:            make(map[string]int),
		fluentSet:        make(map[string]bool),
		atomsByPredicate: make(map[string][]ground.AtomID),
		opsByPredicate:   make(map[string][]int),
	}
	for _, p := range task.Lifted.Domain.Predicates {
		u.arity[p.Name] = p.Arity()
	}
	for pred := range task.Lifted.FluentPredicates() {
		if !task.DerivedPredicates[pred] {
			u.fluentSet[pred] = true
			u.fluent = append(u.fluent, pred)
		}
	}
	sort.Strings(u.fluent)

	for id, atom := range task.Atoms {
		if u.fluentSet[atom.Predicate] {
			u.atomsByPredicate[atom.Predicate] = append(u.atomsByPredicate[atom.Predicate], ground.AtomID(id))
		}
	}
	for i, op := range task.Operators {
		touched := map[string]bool{}
		for _, e := range op.Effects {
			pred := task.Atoms[e.Atom].Predicate
			if !touched[pred] {
				touched[pred] = true
				u.opsByPredicate[pred] = append(u.opsByPredicate[pred], i)
			}
		}
	}
	return u
}

type outcome int

const (
	outcomeVerified outcome = iota
	outcomeRejected
	outcomeUnexplored
)

// instance is one binding of a candidate's parameters with the atoms it
// covers.
type instance struct {
	key   string
	atoms []ground.AtomID
}

type verdict struct {
	candidate   Candidate
	outcome     outcome
	instances   []instance
	exactlyOne  map[string]bool
	refinements []Candidate
}

// failure describes the first way an operator breaks a candidate.
type failure struct {
	kind     string
	operator int
	effect   int
	instance string
}

func atomVar(id ground.AtomID) sat.Identifier {
	return sat.Identifier("a" + strconv.Itoa(int(id)))
}

func effectVar(j int) sat.Identifier {
	return sat.Identifier("e" + strconv.Itoa(j))
}

const otherVar = sat.Identifier("other")

func (u *universe) instances(c Candidate) ([]instance, map[ground.AtomID]string) {
	byKey := make(map[string][]ground.AtomID)
	instanceOf := make(map[ground.AtomID]string)
	for _, p := range c.Parts {
		for _, id := range u.atomsByPredicate[p.Predicate] {
			key := p.instanceKey(u.task.Atoms[id])
			byKey[key] = append(byKey[key], id)
			instanceOf[id] = key
		}
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]instance, len(keys))
	for i, k := range keys {
		atoms := byKey[k]
		sort.Slice(atoms, func(a, b int) bool { return atoms[a] < atoms[b] })
		result[i] = instance{key: k, atoms: atoms}
	}
	return result, instanceOf
}

// verify proves or refutes a candidate against every operator that affects
// one of its predicates. The induction hypothesis for an instance is that at
// most one of its atoms holds before the operator is applied.
func (u *universe) verify(ctx context.Context, c Candidate) (verdict, *failure, error) {
	v := verdict{candidate: c, exactlyOne: make(map[string]bool)}
	instances, instanceOf := u.instances(c)
	sizes := make(map[string]int, len(instances))
	for _, inst := range instances {
		sizes[inst.key] = len(inst.atoms)
	}

	var ops []int
	seen := map[int]bool{}
	for _, p := range c.Parts {
		for _, i := range u.opsByPredicate[p.Predicate] {
			if !seen[i] {
				seen[i] = true
				ops = append(ops, i)
			}
		}
	}
	sort.Ints(ops)

	stepFailed := make(map[string]bool)
	for _, i := range ops {
		f, err := u.checkOperator(ctx, i, instanceOf, sizes, stepFailed)
		if err != nil {
			return v, nil, err
		}
		if f != nil {
			v.outcome = outcomeRejected
			if f.kind == "unbalanced" {
				v.refinements = u.refine(c, i, f.effect)
			}
			return v, f, nil
		}
	}

	v.outcome = outcomeVerified
	for _, inst := range instances {
		initial := 0
		for _, id := range inst.atoms {
			if u.init[id] {
				initial++
			}
		}
		if len(inst.atoms) < 2 || initial > 1 {
			continue
		}
		v.instances = append(v.instances, inst)
		if initial == 1 && !stepFailed[inst.key] {
			v.exactlyOne[inst.key] = true
		}
	}
	return v, nil, nil
}

// operatorQuery builds the satisfiability problems for one operator and one
// instance.
type operatorQuery struct {
	op        ground.Operator
	mentioned []ground.AtomID
	inside    []ground.AtomID
	other     bool
}

func (q operatorQuery) problem() *sat.Problem {
	p := sat.NewProblem()
	for _, id := range q.mentioned {
		p.Declare(atomVar(id))
	}
	if q.other {
		p.Declare(otherVar)
	}
	for _, l := range q.op.Precondition {
		if l.Negated {
			p.Constrain(atomVar(l.Atom), sat.Prohibited())
		} else {
			p.Constrain(atomVar(l.Atom), sat.Mandatory())
		}
	}
	for j, e := range q.op.Effects {
		id := effectVar(j)
		lits := make([]sat.Literal, len(e.Condition))
		for k, l := range e.Condition {
			lits[k] = sat.Literal{ID: atomVar(l.Atom), Negated: l.Negated}
			if l.Negated {
				p.Constrain(id, sat.Conflict(atomVar(l.Atom)))
			} else {
				p.Constrain(id, sat.Dependency(atomVar(l.Atom)))
			}
		}
		p.Constrain(id, sat.Implied(lits...))
	}

	group := append([]sat.Identifier(nil), idsOf(q.inside)...)
	if q.other {
		group = append(group, otherVar)
	}
	for i := range group {
		for j := i + 1; j < len(group); j++ {
			p.Constrain(group[i], sat.Conflict(group[j]))
		}
	}
	return p
}

func idsOf(atoms []ground.AtomID) []sat.Identifier {
	ids := make([]sat.Identifier, len(atoms))
	for i, id := range atoms {
		ids[i] = atomVar(id)
	}
	return ids
}

func (u *universe) checkOperator(ctx context.Context, opIndex int, instanceOf map[ground.AtomID]string, sizes map[string]int, stepFailed map[string]bool) (*failure, error) {
	op := u.task.Operators[opIndex]

	mentionedSet := map[ground.AtomID]bool{}
	var mentioned []ground.AtomID
	mention := func(id ground.AtomID) {
		if !mentionedSet[id] {
			mentionedSet[id] = true
			mentioned = append(mentioned, id)
		}
	}
	for _, l := range op.Precondition {
		mention(l.Atom)
	}
	for _, e := range op.Effects {
		for _, l := range e.Condition {
			mention(l.Atom)
		}
		mention(e.Atom)
	}
	sort.Slice(mentioned, func(i, j int) bool { return mentioned[i] < mentioned[j] })

	var touched []string
	touchedSet := map[string]bool{}
	adds := map[string][]int{}
	dels := map[string][]int{}
	for j, e := range op.Effects {
		key, ok := instanceOf[e.Atom]
		if !ok {
			continue
		}
		if !touchedSet[key] {
			touchedSet[key] = true
			touched = append(touched, key)
		}
		if e.Delete {
			dels[key] = append(dels[key], j)
		} else {
			adds[key] = append(adds[key], j)
		}
	}
	sort.Strings(touched)

	for _, key := range touched {
		var inside []ground.AtomID
		for _, id := range mentioned {
			if k, ok := instanceOf[id]; ok && k == key {
				inside = append(inside, id)
			}
		}
		q := operatorQuery{
			op:        op,
			mentioned: mentioned,
			inside:    inside,
			other:     sizes[key] > len(inside),
		}

		addEffects := adds[key]
		// too heavy: two different atoms of the instance are added together
		for a := 0; a < len(addEffects); a++ {
			for b := a + 1; b < len(addEffects); b++ {
				ea, eb := addEffects[a], addEffects[b]
				if op.Effects[ea].Atom == op.Effects[eb].Atom {
					continue
				}
				p := q.problem()
				p.Constrain(effectVar(ea), sat.Mandatory())
				p.Constrain(effectVar(eb), sat.Mandatory())
				ok, err := sat.Satisfiable(ctx, p.Variables())
				if err != nil {
					return nil, err
				}
				if ok {
					return &failure{kind: "too heavy", operator: opIndex, effect: ea, instance: key}, nil
				}
			}
		}

		// unbalanced: an atom is added while another one stays true
		for _, ea := range addEffects {
			added := op.Effects[ea].Atom
			others := make([]sat.Identifier, 0, len(inside)+1)
			var otherAtoms []ground.AtomID
			for _, id := range inside {
				if id != added {
					others = append(others, atomVar(id))
					otherAtoms = append(otherAtoms, id)
				}
			}
			if q.other {
				others = append(others, otherVar)
				otherAtoms = append(otherAtoms, -1)
			}
			for n, b := range others {
				p := q.problem()
				p.Constrain(effectVar(ea), sat.Mandatory())
				p.Constrain(b, sat.Mandatory())
				if otherAtoms[n] >= 0 {
					for _, ed := range dels[key] {
						if op.Effects[ed].Atom == otherAtoms[n] {
							p.Constrain(effectVar(ed), sat.Prohibited())
						}
					}
				}
				ok, err := sat.Satisfiable(ctx, p.Variables())
				if err != nil {
					return nil, err
				}
				if ok {
					return &failure{kind: "unbalanced", operator: opIndex, effect: ea, instance: key}, nil
				}
			}
		}

		// exactly one: a true atom is deleted and nothing else is added
		if stepFailed[key] {
			continue
		}
		for _, ed := range dels[key] {
			p := q.problem()
			p.Constrain(effectVar(ed), sat.Mandatory())
			p.Constrain(atomVar(op.Effects[ed].Atom), sat.Mandatory())
			for _, ea := range addEffects {
				p.Constrain(effectVar(ea), sat.Prohibited())
			}
			ok, err := sat.Satisfiable(ctx, p.Variables())
			if err != nil {
				return nil, err
			}
			if ok {
				stepFailed[key] = true
				break
			}
		}
	}
	return nil, nil
}

// refine proposes stronger candidates for an unbalanced add effect: each one
// adds a part for a delete effect of the same action whose atom falls into
// the same instance as the added atom.
func (u *universe) refine(c Candidate, opIndex, effect int) []Candidate {
	op := u.task.Operators[opIndex]
	e := op.Effects[effect]
	action := u.task.Lifted.Domain.Actions[op.Schema]
	added := action.Effects[e.Source].Literal.Atom
	part, ok := c.part(added.Predicate)
	if !ok {
		return nil
	}
	terms := make([]string, len(part.Order))
	for k, pos := range part.Order {
		terms[k] = added.Args[pos]
	}

	var result []Candidate
	for _, le := range action.Effects {
		if !le.Literal.Negated {
			continue
		}
		pred := le.Literal.Predicate
		if !u.fluentSet[pred] {
			continue
		}
		if _, exists := c.part(pred); exists {
			continue
		}
		for _, p := range matchParts(pred, le.Literal.Atom, terms) {
			result = append(result, c.extend(p))
		}
	}
	return result
}

// matchParts enumerates the injective placements of terms into the argument
// positions of atom, leaving at most one position uncovered.
func matchParts(pred string, atom lifted.Atom, terms []string) []Part {
	n := len(atom.Args)
	if n < len(terms) || n > len(terms)+1 {
		return nil
	}
	var result []Part
	order := make([]int, len(terms))
	used := make([]bool, n)
	var rec func(k int)
	rec = func(k int) {
		if k == len(terms) {
			omitted := -1
			for pos := 0; pos < n; pos++ {
				if !used[pos] {
					omitted = pos
				}
			}
			result = append(result, Part{Predicate: pred, Order: append([]int(nil), order...), Omitted: omitted})
			return
		}
		for pos := 0; pos < n; pos++ {
			if used[pos] || atom.Args[pos] != terms[k] {
				continue
			}
			used[pos] = true
			order[k] = pos
			rec(k + 1)
			used[pos] = false
		}
	}
	rec(0)
	return result
}
