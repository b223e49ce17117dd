package testtask

import (
	"fmt"
	"sort"

	"github.com/planforge/translator/pkg/translate/ground"
)

// State is a set of true atoms.
type State map[ground.AtomID]bool

func (s State) key() string {
	ids := make([]int, 0, len(s))
	for id, ok := range s {
		if ok {
			ids = append(ids, int(id))
		}
	}
	sort.Ints(ids)
	return fmt.Sprint(ids)
}

func holds(s State, lits []ground.Literal) bool {
	for _, l := range lits {
		if s[l.Atom] == l.Negated {
			return false
		}
	}
	return true
}

func successor(s State, op ground.Operator) State {
	next := State{}
	for id, ok := range s {
		if ok {
			next[id] = true
		}
	}
	for _, e := range op.Effects {
		if e.Delete && holds(s, e.Condition) {
			delete(next, e.Atom)
		}
	}
	for _, e := range op.Effects {
		if !e.Delete && holds(s, e.Condition) {
			next[e.Atom] = true
		}
	}
	return next
}

// search runs a breadth first search from the initial state and stops early
// when stop returns true. It returns the visited states and the depth of the
// state that stopped it, or -1.
func search(t *ground.Task, stop func(State) bool) ([]State, int) {
	init := State{}
	for _, id := range t.Init {
		init[id] = true
	}
	seen := map[string]bool{init.key(): true}
	states := []State{init}
	depth := []int{0}
	for i := 0; i < len(states); i++ {
		s := states[i]
		if stop != nil && stop(s) {
			return states, depth[i]
		}
		for _, op := range t.Operators {
			if !holds(s, op.Precondition) {
				continue
			}
			next := successor(s, op)
			if k := next.key(); !seen[k] {
				seen[k] = true
				states = append(states, next)
				depth = append(depth, depth[i]+1)
			}
		}
	}
	return states, -1
}

// ReachableStates enumerates the state space of an axiom-free ground task by
// breadth first search. Adds win over deletes of the same atom.
func ReachableStates(t *ground.Task) []State {
	states, _ := search(t, nil)
	return states
}

// ShortestPlan returns the length of a shortest plan for an axiom-free ground
// task, or -1 if the goal is unreachable.
func ShortestPlan(t *ground.Task) int {
	if t.GoalImpossible {
		return -1
	}
	_, length := search(t, func(s State) bool {
		return holds(s, t.Goal)
	})
	return length
}
