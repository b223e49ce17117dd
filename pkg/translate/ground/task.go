// Package ground instantiates a lifted task into ground atoms, operators and
// axioms.
package ground

import (
	"fmt"
	"sort"
	"strings"

	"github.com/planforge/translator/pkg/api/lifted"
)

// AtomID indexes Task.Atoms.
type AtomID int

type Atom struct {
	Predicate string
	Args      []string
}

func (a Atom) String() string {
	return fmt.Sprintf("%s(%s)", a.Predicate, strings.Join(a.Args, ", "))
}

type Literal struct {
	Atom    AtomID
	Negated bool
}

func (l Literal) Negate() Literal {
	return Literal{Atom: l.Atom, Negated: !l.Negated}
}

// Effect adds Atom, or deletes it if Delete is set, when every condition
// literal holds. Source is the index of the lifted effect it was instantiated
// from.
type Effect struct {
	Condition []Literal
	Atom      AtomID
	Delete    bool
	Source    int
}

type Operator struct {
	Name string
	// Schema is the index of the lifted action.
	Schema       int
	Args         []string
	Precondition []Literal
	Effects      []Effect
	Cost         int
}

type Axiom struct {
	Name   string
	Schema int
	Head   AtomID
	Body   []Literal
}

// Task is the ground universe of a lifted task. Static predicates have been
// evaluated away; every atom in the table is fluent or derived.
type Task struct {
	Atoms     []Atom
	Operators []Operator
	Axioms    []Axiom
	// Init lists the atoms true in the initial state, sorted.
	Init []AtomID
	Goal []Literal
	// GoalImpossible is set when a static goal literal is false.
	GoalImpossible bool
	Metric         bool

	Lifted            *lifted.Task
	DerivedPredicates map[string]bool

	index map[string]AtomID
}

// NewTask returns an empty task for the given lifted source.
func NewTask(source *lifted.Task) *Task {
	return &Task{
		Lifted:            source,
		DerivedPredicates: source.DerivedPredicates(),
		index:             make(map[string]AtomID),
	}
}

// Intern returns the ID of an atom, adding it to the table if needed.
func (t *Task) Intern(predicate string, args []string) AtomID {
	a := Atom{Predicate: predicate, Args: args}
	key := a.String()
	if id, ok := t.index[key]; ok {
		return id
	}
	id := AtomID(len(t.Atoms))
	t.Atoms = append(t.Atoms, Atom{Predicate: predicate, Args: append([]string(nil), args...)})
	t.index[key] = id
	return id
}

// Lookup finds an atom without interning it.
func (t *Task) Lookup(predicate string, args ...string) (AtomID, bool) {
	id, ok := t.index[Atom{Predicate: predicate, Args: args}.String()]
	return id, ok
}

func (t *Task) Derived(id AtomID) bool {
	return t.DerivedPredicates[t.Atoms[id].Predicate]
}

// InitSet returns the initial state as a membership slice indexed by AtomID.
func (t *Task) InitSet() []bool {
	set := make([]bool, len(t.Atoms))
	for _, id := range t.Init {
		set[id] = true
	}
	return set
}

func (t *Task) LiteralString(l Literal) string {
	if l.Negated {
		return "not " + t.Atoms[l.Atom].String()
	}
	return t.Atoms[l.Atom].String()
}

// NormalizeLiterals sorts and de-duplicates literals. It reports false if the
// conjunction contains an atom and its negation.
func NormalizeLiterals(lits []Literal) ([]Literal, bool) {
	if len(lits) == 0 {
		return nil, true
	}
	sort.Slice(lits, func(i, j int) bool {
		if lits[i].Atom != lits[j].Atom {
			return lits[i].Atom < lits[j].Atom
		}
		return !lits[i].Negated && lits[j].Negated
	})
	out := lits[:1]
	for _, l := range lits[1:] {
		last := out[len(out)-1]
		if l == last {
			continue
		}
		if l.Atom == last.Atom {
			return nil, false
		}
		out = append(out, l)
	}
	return out, true
}
