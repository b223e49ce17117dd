package lifted

import (
	"fmt"
	"strings"
)

const (
	// EqualityPredicate is the built-in binary predicate comparing two terms.
	EqualityPredicate = "="
	// RootType is the implicit supertype of every declared type.
	RootType = "object"
)

// IsVariable reports whether a term is a schema variable rather than an object.
func IsVariable(term string) bool {
	return strings.HasPrefix(term, "?")
}

type Type struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

type Object struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Parameter is a typed schema variable. An empty Type means RootType.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type Predicate struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters,omitempty"`
	// Derived predicates are defined by axioms and never appear in action effects.
	Derived bool `json:"derived,omitempty"`
}

func (p Predicate) Arity() int {
	return len(p.Parameters)
}

// Atom is a predicate applied to terms. Terms are variables or objects.
type Atom struct {
	Predicate string   `json:"predicate"`
	Args      []string `json:"args,omitempty"`
}

func (a Atom) String() string {
	return fmt.Sprintf("%s(%s)", a.Predicate, strings.Join(a.Args, ", "))
}

// Ground reports whether the atom mentions no variables.
func (a Atom) Ground() bool {
	for _, arg := range a.Args {
		if IsVariable(arg) {
			return false
		}
	}
	return true
}

type Literal struct {
	Atom
	Negated bool `json:"negated,omitempty"`
}

func (l Literal) String() string {
	if l.Negated {
		return "not " + l.Atom.String()
	}
	return l.Atom.String()
}

// Pos returns a positive literal over the given atom terms.
func Pos(predicate string, args ...string) Literal {
	return Literal{Atom: Atom{Predicate: predicate, Args: args}}
}

// Neg returns a negated literal over the given atom terms.
func Neg(predicate string, args ...string) Literal {
	return Literal{Atom: Atom{Predicate: predicate, Args: args}, Negated: true}
}

// Effect is a possibly conditional, possibly universally quantified effect.
// A negated literal is a delete effect.
type Effect struct {
	Parameters []Parameter `json:"parameters,omitempty"`
	Condition  []Literal   `json:"condition,omitempty"`
	Literal    Literal     `json:"literal"`
}

// Cost is either a constant or a numeric function term resolved against the
// problem's initial function values.
type Cost struct {
	Value    int      `json:"value,omitempty"`
	Function string   `json:"function,omitempty"`
	Args     []string `json:"args,omitempty"`
}

type Action struct {
	Name         string      `json:"name"`
	Parameters   []Parameter `json:"parameters,omitempty"`
	Precondition []Literal   `json:"precondition,omitempty"`
	Effects      []Effect    `json:"effects,omitempty"`
	Cost         *Cost       `json:"cost,omitempty"`
}

// Axiom derives Head whenever Body holds. Parameters cover every variable of
// the head and the body; body-only variables are existentially quantified.
type Axiom struct {
	Head       Atom        `json:"head"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Body       []Literal   `json:"body,omitempty"`
}

type Domain struct {
	Name         string      `json:"name"`
	Requirements []string    `json:"requirements,omitempty"`
	Types        []Type      `json:"types,omitempty"`
	Constants    []Object    `json:"constants,omitempty"`
	Predicates   []Predicate `json:"predicates,omitempty"`
	Actions      []Action    `json:"actions,omitempty"`
	Axioms       []Axiom     `json:"axioms,omitempty"`
}

type FunctionValue struct {
	Function string   `json:"function"`
	Args     []string `json:"args,omitempty"`
	Value    int      `json:"value"`
}

func (f FunctionValue) Key() string {
	return Atom{Predicate: f.Function, Args: f.Args}.String()
}

type Problem struct {
	Name          string          `json:"name"`
	Domain        string          `json:"domain,omitempty"`
	Objects       []Object        `json:"objects,omitempty"`
	Init          []Atom          `json:"init,omitempty"`
	InitFunctions []FunctionValue `json:"initFunctions,omitempty"`
	Goal          []Literal       `json:"goal,omitempty"`
	// Metric requests minimization of total action cost.
	Metric bool `json:"metric,omitempty"`
}

// Task is the immutable lifted input of a translation run.
type Task struct {
	Domain  Domain
	Problem Problem
}

// Objects returns domain constants followed by problem objects.
func (t *Task) Objects() []Object {
	objects := make([]Object, 0, len(t.Domain.Constants)+len(t.Problem.Objects))
	objects = append(objects, t.Domain.Constants...)
	return append(objects, t.Problem.Objects...)
}

func (t *Task) Predicates() map[string]Predicate {
	predicates := make(map[string]Predicate, len(t.Domain.Predicates))
	for _, p := range t.Domain.Predicates {
		predicates[p.Name] = p
	}
	return predicates
}

// DerivedPredicates returns the predicates declared derived or defined by an axiom.
func (t *Task) DerivedPredicates() map[string]bool {
	derived := make(map[string]bool)
	for _, p := range t.Domain.Predicates {
		if p.Derived {
			derived[p.Name] = true
		}
	}
	for _, ax := range t.Domain.Axioms {
		derived[ax.Head.Predicate] = true
	}
	return derived
}

// FluentPredicates returns the predicates modified by some action effect.
func (t *Task) FluentPredicates() map[string]bool {
	fluent := make(map[string]bool)
	for _, a := range t.Domain.Actions {
		for _, e := range a.Effects {
			fluent[e.Literal.Predicate] = true
		}
	}
	return fluent
}

// StaticPredicates returns the predicates whose extension is fixed by the
// initial state: neither modified by an action nor derived.
func (t *Task) StaticPredicates() map[string]bool {
	fluent := t.FluentPredicates()
	derived := t.DerivedPredicates()
	static := make(map[string]bool)
	for _, p := range t.Domain.Predicates {
		if !fluent[p.Name] && !derived[p.Name] {
			static[p.Name] = true
		}
	}
	return static
}

// Supertypes maps every type to itself and all of its ancestors.
func (t *Task) Supertypes() map[string][]string {
	parent := make(map[string]string, len(t.Domain.Types))
	for _, ty := range t.Domain.Types {
		parent[ty.Name] = ty.Parent
	}
	result := make(map[string][]string, len(parent)+1)
	result[RootType] = []string{RootType}
	for _, ty := range t.Domain.Types {
		chain := []string{}
		seen := map[string]bool{}
		for cur := ty.Name; cur != "" && !seen[cur]; cur = parent[cur] {
			seen[cur] = true
			chain = append(chain, cur)
		}
		if !seen[RootType] {
			chain = append(chain, RootType)
		}
		result[ty.Name] = chain
	}
	return result
}

// ObjectsByType lists, for every type, the objects of that type or a subtype
// in declaration order.
func (t *Task) ObjectsByType() map[string][]string {
	supertypes := t.Supertypes()
	result := make(map[string][]string)
	for _, o := range t.Objects() {
		ty := o.Type
		if ty == "" {
			ty = RootType
		}
		chain, ok := supertypes[ty]
		if !ok {
			chain = []string{ty, RootType}
		}
		for _, s := range chain {
			result[s] = append(result[s], o.Name)
		}
	}
	return result
}
