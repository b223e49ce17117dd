package ground

import (
	"fmt"
	"sort"
	"strings"

	"github.com/planforge/translator/pkg/api/lifted"
	"github.com/planforge/translator/pkg/config"
)

// binder enumerates parameter assignments over typed objects, pruning on
// static and equality literals as soon as their variables are bound.
type binder struct {
	objects     map[string][]string
	static      map[string]bool
	staticPreds map[string]bool
}

func newBinder(t *lifted.Task) *binder {
	b := &binder{
		objects:     t.ObjectsByType(),
		static:      make(map[string]bool),
		staticPreds: t.StaticPredicates(),
	}
	for _, atom := range t.Problem.Init {
		if b.staticPreds[atom.Predicate] {
			b.static[atom.String()] = true
		}
	}
	return b
}

// evaluable reports whether a literal is decided by the initial state alone.
func (b *binder) evaluable(lit lifted.Literal) bool {
	return lit.Predicate == lifted.EqualityPredicate || b.staticPreds[lit.Predicate]
}

func (b *binder) holds(lit lifted.Literal, binding map[string]string) bool {
	atom := substitute(lit.Atom, binding)
	var truth bool
	if atom.Predicate == lifted.EqualityPredicate {
		truth = atom.Args[0] == atom.Args[1]
	} else {
		truth = b.static[atom.String()]
	}
	return truth != lit.Negated
}

func (b *binder) candidates(p lifted.Parameter) []string {
	ty := p.Type
	if ty == "" {
		ty = lifted.RootType
	}
	return b.objects[ty]
}

// bind calls yield for every extension of base to params that satisfies
// every evaluable literal in checks. The binding passed to yield is reused
// between calls.
func (b *binder) bind(params []lifted.Parameter, base map[string]string, checks []lifted.Literal, yield func(map[string]string) error) error {
	binding := make(map[string]string, len(base)+len(params))
	for k, v := range base {
		binding[k] = v
	}
	position := make(map[string]int, len(params))
	for i, p := range params {
		position[p.Name] = i
	}

	// checksAt[i+1] holds the literals that become decidable once params[i]
	// is bound; checksAt[0] those decidable from base alone.
	checksAt := make([][]lifted.Literal, len(params)+1)
	for _, lit := range checks {
		if !b.evaluable(lit) {
			continue
		}
		last := -1
		for _, arg := range lit.Args {
			if pos, ok := position[arg]; ok && pos > last {
				last = pos
			}
		}
		checksAt[last+1] = append(checksAt[last+1], lit)
	}

	satisfied := func(level int) bool {
		for _, lit := range checksAt[level] {
			if !b.holds(lit, binding) {
				return false
			}
		}
		return true
	}
	if !satisfied(0) {
		return nil
	}

	var rec func(i int) error
	rec = func(i int) error {
		if i == len(params) {
			return yield(binding)
		}
		for _, obj := range b.candidates(params[i]) {
			binding[params[i].Name] = obj
			if !satisfied(i + 1) {
				continue
			}
			if err := rec(i + 1); err != nil {
				return err
			}
		}
		delete(binding, params[i].Name)
		return nil
	}
	return rec(0)
}

func substitute(atom lifted.Atom, binding map[string]string) lifted.Atom {
	args := make([]string, len(atom.Args))
	for i, arg := range atom.Args {
		if v, ok := binding[arg]; ok {
			args[i] = v
		} else {
			args[i] = arg
		}
	}
	return lifted.Atom{Predicate: atom.Predicate, Args: args}
}

type grounder struct {
	*binder
	source    *lifted.Task
	task      *Task
	relaxed   bool
	functions map[string]int
}

// Ground instantiates every action, axiom, initial atom and goal literal of
// the lifted task. Literals over static predicates and equality are evaluated
// during instantiation and never reach the ground task.
func Ground(source *lifted.Task, opts config.Options) (*Task, error) {
	g := &grounder{
		binder:    newBinder(source),
		source:    source,
		task:      NewTask(source),
		relaxed:   opts.Relaxed,
		functions: make(map[string]int, len(source.Problem.InitFunctions)),
	}
	g.task.Metric = source.Problem.Metric
	for _, f := range source.Problem.InitFunctions {
		g.functions[f.Key()] = f.Value
	}

	for _, atom := range source.Problem.Init {
		if g.staticPreds[atom.Predicate] {
			continue
		}
		g.task.Init = append(g.task.Init, g.task.Intern(atom.Predicate, atom.Args))
	}
	sort.Slice(g.task.Init, func(i, j int) bool { return g.task.Init[i] < g.task.Init[j] })
	g.task.Init = dedupeIDs(g.task.Init)

	for _, lit := range source.Problem.Goal {
		if g.evaluable(lit) {
			if !g.holds(lit, nil) {
				g.task.GoalImpossible = true
			}
			continue
		}
		g.task.Goal = append(g.task.Goal, g.literal(lit, nil))
	}
	goal, ok := NormalizeLiterals(g.task.Goal)
	if !ok {
		g.task.GoalImpossible = true
	}
	g.task.Goal = goal

	var problems []string
	for i, action := range source.Domain.Actions {
		i, action := i, action
		err := g.bind(action.Parameters, nil, action.Precondition, func(binding map[string]string) error {
			op, ok, err := g.operator(i, action, binding)
			if err != nil {
				problems = append(problems, err.Error())
				return nil
			}
			if ok {
				g.task.Operators = append(g.task.Operators, op)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(problems) > 0 {
		return nil, lifted.ValidationError{Problems: problems}
	}

	for i, ax := range source.Domain.Axioms {
		i, ax := i, ax
		err := g.bind(ax.Parameters, nil, ax.Body, func(binding map[string]string) error {
			if axiom, ok := g.axiom(i, ax, binding); ok {
				g.task.Axioms = append(g.task.Axioms, axiom)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return g.task, nil
}

func (g *grounder) literal(lit lifted.Literal, binding map[string]string) Literal {
	atom := substitute(lit.Atom, binding)
	return Literal{Atom: g.task.Intern(atom.Predicate, atom.Args), Negated: lit.Negated}
}

// conjunction grounds the non-evaluable literals of lits. Evaluable literals
// were checked by the binder.
func (g *grounder) conjunction(lits []lifted.Literal, binding map[string]string) ([]Literal, bool) {
	var out []Literal
	for _, lit := range lits {
		if g.evaluable(lit) {
			continue
		}
		out = append(out, g.literal(lit, binding))
	}
	return NormalizeLiterals(out)
}

func (g *grounder) operator(schema int, action lifted.Action, binding map[string]string) (Operator, bool, error) {
	args := make([]string, len(action.Parameters))
	for i, p := range action.Parameters {
		args[i] = binding[p.Name]
	}
	op := Operator{
		Name:   strings.TrimSpace(action.Name + " " + strings.Join(args, " ")),
		Schema: schema,
		Args:   args,
	}

	pre, ok := g.conjunction(action.Precondition, binding)
	if !ok {
		return op, false, nil
	}
	op.Precondition = pre
	inPre := make(map[Literal]bool, len(pre))
	for _, l := range pre {
		inPre[l] = true
	}

	for ei, e := range action.Effects {
		ei, e := ei, e
		emit := func(inner map[string]string) error {
			if e.Literal.Negated && g.relaxed {
				return nil
			}
			cond, ok := g.conjunction(e.Condition, inner)
			if !ok {
				return nil
			}
			kept := cond[:0]
			for _, l := range cond {
				if inPre[l.Negate()] {
					return nil
				}
				if !inPre[l] {
					kept = append(kept, l)
				}
			}
			atom := substitute(e.Literal.Atom, inner)
			op.Effects = append(op.Effects, Effect{
				Condition: append([]Literal(nil), kept...),
				Atom:      g.task.Intern(atom.Predicate, atom.Args),
				Delete:    e.Literal.Negated,
				Source:    ei,
			})
			return nil
		}
		if err := g.bind(e.Parameters, binding, e.Condition, emit); err != nil {
			return op, false, err
		}
	}
	op.Effects = simplifyEffects(op.Effects)

	cost, err := g.cost(action, binding)
	if err != nil {
		return op, false, err
	}
	op.Cost = cost
	return op, true, nil
}

// simplifyEffects removes duplicate effects and delete effects that are
// overridden by an unconditional add of the same atom.
func simplifyEffects(effects []Effect) []Effect {
	added := make(map[AtomID]bool)
	for _, e := range effects {
		if !e.Delete && len(e.Condition) == 0 {
			added[e.Atom] = true
		}
	}
	seen := make(map[string]bool, len(effects))
	out := effects[:0]
	for _, e := range effects {
		if e.Delete && added[e.Atom] {
			continue
		}
		key := fmt.Sprint(e.Atom, e.Delete, e.Condition)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func (g *grounder) cost(action lifted.Action, binding map[string]string) (int, error) {
	if !g.task.Metric {
		return 1, nil
	}
	if action.Cost == nil {
		return 0, nil
	}
	if action.Cost.Function == "" {
		return action.Cost.Value, nil
	}
	term := substitute(lifted.Atom{Predicate: action.Cost.Function, Args: action.Cost.Args}, binding)
	value, ok := g.functions[term.String()]
	if !ok {
		return 0, fmt.Errorf("action %s: no initial value for cost term %s", action.Name, term)
	}
	return value, nil
}

func (g *grounder) axiom(schema int, ax lifted.Axiom, binding map[string]string) (Axiom, bool) {
	body, ok := g.conjunction(ax.Body, binding)
	if !ok {
		return Axiom{}, false
	}
	head := substitute(ax.Head, binding)
	return Axiom{
		Name:   head.String(),
		Schema: schema,
		Head:   g.task.Intern(head.Predicate, head.Args),
		Body:   body,
	}, true
}

func dedupeIDs(ids []AtomID) []AtomID {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
