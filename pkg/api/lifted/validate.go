package lifted

import (
	"fmt"
	"strings"
)

// ValidationError lists every problem found in a lifted task.
type ValidationError struct {
	Problems []string
}

func (e ValidationError) Error() string {
	const msg = "invalid lifted task"
	if len(e.Problems) == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(e.Problems, "; "))
}

type validator struct {
	task       *Task
	predicates map[string]Predicate
	types      map[string]bool
	objects    map[string]bool
	derived    map[string]bool
	problems   []string
}

func (v *validator) addf(format string, args ...interface{}) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// Validate checks that the task is well formed: every referenced type,
// predicate and object is declared, arities match and schema variables are
// bound by a parameter.
func (t *Task) Validate() error {
	v := &validator{
		task:       t,
		predicates: make(map[string]Predicate),
		types:      map[string]bool{RootType: true},
		objects:    make(map[string]bool),
		derived:    t.DerivedPredicates(),
	}

	for _, ty := range t.Domain.Types {
		v.types[ty.Name] = true
	}
	for _, ty := range t.Domain.Types {
		if ty.Parent != "" && !v.types[ty.Parent] {
			v.addf("type %s has undeclared parent %s", ty.Name, ty.Parent)
		}
	}
	for _, o := range t.Objects() {
		if v.objects[o.Name] {
			v.addf("duplicate object %s", o.Name)
		}
		v.objects[o.Name] = true
		if o.Type != "" && !v.types[o.Type] {
			v.addf("object %s has undeclared type %s", o.Name, o.Type)
		}
	}
	for _, p := range t.Domain.Predicates {
		if _, ok := v.predicates[p.Name]; ok {
			v.addf("duplicate predicate %s", p.Name)
		}
		if p.Name == EqualityPredicate {
			v.addf("predicate %s is built in", EqualityPredicate)
		}
		v.predicates[p.Name] = p
		v.checkParameters("predicate "+p.Name, p.Parameters)
	}

	for _, a := range t.Domain.Actions {
		v.checkAction(a)
	}
	for i, ax := range t.Domain.Axioms {
		v.checkAxiom(i, ax)
	}

	for _, atom := range t.Problem.Init {
		v.checkAtom("initial state", atom, nil)
		if !atom.Ground() {
			v.addf("initial state atom %s is not ground", atom)
		}
		if v.derived[atom.Predicate] {
			v.addf("initial state sets derived atom %s", atom)
		}
	}
	for _, lit := range t.Problem.Goal {
		v.checkAtom("goal", lit.Atom, nil)
		if !lit.Ground() {
			v.addf("goal literal %s is not ground", lit)
		}
	}

	if len(v.problems) > 0 {
		return ValidationError{Problems: v.problems}
	}
	return nil
}

func (v *validator) checkParameters(context string, params []Parameter) map[string]bool {
	bound := make(map[string]bool, len(params))
	for _, p := range params {
		if !IsVariable(p.Name) {
			v.addf("%s: parameter %s must start with '?'", context, p.Name)
		}
		if bound[p.Name] {
			v.addf("%s: duplicate parameter %s", context, p.Name)
		}
		bound[p.Name] = true
		if p.Type != "" && !v.types[p.Type] {
			v.addf("%s: parameter %s has undeclared type %s", context, p.Name, p.Type)
		}
	}
	return bound
}

func (v *validator) checkAction(a Action) {
	context := "action " + a.Name
	bound := v.checkParameters(context, a.Parameters)
	for _, lit := range a.Precondition {
		v.checkAtom(context, lit.Atom, bound)
	}
	for _, eff := range a.Effects {
		inner := make(map[string]bool, len(bound)+len(eff.Parameters))
		for name := range bound {
			inner[name] = true
		}
		for name := range v.checkParameters(context+" effect", eff.Parameters) {
			inner[name] = true
		}
		for _, lit := range eff.Condition {
			v.checkAtom(context, lit.Atom, inner)
		}
		v.checkAtom(context, eff.Literal.Atom, inner)
		if eff.Literal.Predicate == EqualityPredicate {
			v.addf("%s: equality cannot be an effect", context)
		}
		if v.derived[eff.Literal.Predicate] {
			v.addf("%s: derived predicate %s appears in an effect", context, eff.Literal.Predicate)
		}
	}
	if a.Cost != nil && a.Cost.Function != "" {
		for _, arg := range a.Cost.Args {
			if IsVariable(arg) && !bound[arg] {
				v.addf("%s: cost term uses unbound variable %s", context, arg)
			}
		}
	}
}

func (v *validator) checkAxiom(i int, ax Axiom) {
	context := fmt.Sprintf("axiom %d (%s)", i, ax.Head.Predicate)
	bound := v.checkParameters(context, ax.Parameters)
	v.checkAtom(context, ax.Head, bound)
	for _, lit := range ax.Body {
		v.checkAtom(context, lit.Atom, bound)
	}
}

func (v *validator) checkAtom(context string, atom Atom, bound map[string]bool) {
	if atom.Predicate == EqualityPredicate {
		if len(atom.Args) != 2 {
			v.addf("%s: equality takes 2 arguments, got %d", context, len(atom.Args))
		}
	} else if p, ok := v.predicates[atom.Predicate]; !ok {
		v.addf("%s: undefined predicate %s", context, atom.Predicate)
	} else if p.Arity() != len(atom.Args) {
		v.addf("%s: %s expects %d arguments, got %d", context, atom.Predicate, p.Arity(), len(atom.Args))
	}
	for _, arg := range atom.Args {
		if IsVariable(arg) {
			if !bound[arg] {
				v.addf("%s: unbound variable %s in %s", context, arg, atom)
			}
		} else if !v.objects[arg] {
			v.addf("%s: undefined object %s in %s", context, arg, atom)
		}
	}
}
