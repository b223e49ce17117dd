// Package encode turns verified mutex groups into finite-domain variables and
// translates the ground task into variable-transition form.
package encode

import (
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/ground"
	"github.com/planforge/translator/pkg/translate/invariant"
	"github.com/planforge/translator/pkg/translate/sas"
)

// variableSpec is a variable before translation: its atoms in value order
// and whether a none value follows them.
type variableSpec struct {
	atoms   []ground.AtomID
	none    bool
	derived bool
}

// chooseGroups covers the fluent atoms with the given groups. With partial
// encoding the largest group by number of still uncovered atoms is taken
// first, ties going to the earlier group; covered atoms are removed from the
// groups that remain. With full encoding every group is kept whole.
func chooseGroups(groups []invariant.MutexGroup, encoding config.Encoding) []variableSpec {
	var specs []variableSpec
	if encoding == config.EncodingFull {
		for _, g := range groups {
			specs = append(specs, variableSpec{
				atoms: append([]ground.AtomID(nil), g.Atoms...),
				none:  !g.ExactlyOne,
			})
		}
		return specs
	}

	covered := make(map[ground.AtomID]bool)
	used := make([]bool, len(groups))
	for {
		best, bestSize := -1, 0
		for i, g := range groups {
			if used[i] {
				continue
			}
			size := 0
			for _, a := range g.Atoms {
				if !covered[a] {
					size++
				}
			}
			if size > bestSize {
				best, bestSize = i, size
			}
		}
		if best < 0 {
			return specs
		}
		used[best] = true

		g := groups[best]
		spec := variableSpec{none: !g.ExactlyOne || bestSize < len(g.Atoms)}
		for _, a := range g.Atoms {
			if !covered[a] {
				covered[a] = true
				spec.atoms = append(spec.atoms, a)
			}
		}
		specs = append(specs, spec)
	}
}

// buildVariables creates one variable per spec followed by binary variables
// for the uncovered fluent atoms and the derived atoms, in atom order. It
// returns the facts representing each atom.
func buildVariables(task *ground.Task, specs []variableSpec) ([]sas.Variable, []variableSpec, [][]sas.Fact) {
	covered := make([]bool, len(task.Atoms))
	for _, spec := range specs {
		for _, a := range spec.atoms {
			covered[a] = true
		}
	}
	for id := range task.Atoms {
		a := ground.AtomID(id)
		if covered[a] {
			continue
		}
		specs = append(specs, variableSpec{
			atoms:   []ground.AtomID{a},
			none:    true,
			derived: task.Derived(a),
		})
	}

	facts := make([][]sas.Fact, len(task.Atoms))
	vars := make([]sas.Variable, len(specs))
	for i, spec := range specs {
		v := sas.Variable{Layer: -1, Derived: spec.derived}
		if spec.derived {
			v.Layer = 0
		}
		for value, a := range spec.atoms {
			v.Values = append(v.Values, "Atom "+task.Atoms[a].String())
			facts[a] = append(facts[a], sas.Fact{Var: i, Value: value})
		}
		if spec.none {
			if len(spec.atoms) == 1 {
				v.Values = append(v.Values, "NegatedAtom "+task.Atoms[spec.atoms[0]].String())
			} else {
				v.Values = append(v.Values, sas.NoneOfThose)
			}
		}
		vars[i] = v
	}
	return vars, specs, facts
}

// initialState assigns every variable its initially true atom, or its none
// value if no atom of the variable holds.
func initialState(task *ground.Task, vars []sas.Variable, specs []variableSpec) []int {
	init := task.InitSet()
	state := make([]int, len(vars))
	for i, spec := range specs {
		state[i] = len(vars[i].Values) - 1
		if spec.derived {
			continue
		}
		for value, a := range spec.atoms {
			if init[a] {
				state[i] = value
				break
			}
		}
	}
	return state
}
