package encode

import (
	"sort"

	"github.com/planforge/translator/pkg/translate/ground"
	"github.com/planforge/translator/pkg/translate/sas"
)

// conditionTranslator maps conjunctions of ground literals to partial
// variable assignments.
type conditionTranslator struct {
	vars  []sas.Variable
	facts [][]sas.Fact
}

// translate returns the alternative assignments that together are equivalent
// to the conjunction, or false if it can never hold. A positive literal fixes
// every variable containing the atom. A negated literal excludes the atom's
// value in its first variable; when several values remain the assignment is
// split into one alternative per remaining value.
func (c *conditionTranslator) translate(lits []ground.Literal) ([][]sas.Fact, bool) {
	fixed := make(map[int]int)
	excluded := make(map[int]map[int]bool)
	for _, l := range lits {
		facts := c.facts[l.Atom]
		if len(facts) == 0 {
			if l.Negated {
				continue
			}
			return nil, false
		}
		if l.Negated {
			f := facts[0]
			if excluded[f.Var] == nil {
				excluded[f.Var] = make(map[int]bool)
			}
			excluded[f.Var][f.Value] = true
			continue
		}
		for _, f := range facts {
			if v, ok := fixed[f.Var]; ok && v != f.Value {
				return nil, false
			}
			fixed[f.Var] = f.Value
		}
	}

	var split []int
	allowed := make(map[int][]int)
	for v, out := range excluded {
		if value, ok := fixed[v]; ok {
			if out[value] {
				return nil, false
			}
			continue
		}
		var values []int
		for value := range c.vars[v].Values {
			if !out[value] {
				values = append(values, value)
			}
		}
		switch len(values) {
		case 0:
			return nil, false
		case 1:
			fixed[v] = values[0]
		default:
			split = append(split, v)
			allowed[v] = values
		}
	}
	sort.Ints(split)

	base := make([]sas.Fact, 0, len(fixed))
	for v, value := range fixed {
		base = append(base, sas.Fact{Var: v, Value: value})
	}
	sas.SortFacts(base)

	alternatives := [][]sas.Fact{base}
	for _, v := range split {
		var next [][]sas.Fact
		for _, alt := range alternatives {
			for _, value := range allowed[v] {
				extended := append(append([]sas.Fact(nil), alt...), sas.Fact{Var: v, Value: value})
				sas.SortFacts(extended)
				next = append(next, extended)
			}
		}
		alternatives = next
	}
	return alternatives, true
}

// negatedValues returns the values a variable can take while the atom is
// false.
func (c *conditionTranslator) negatedValues(atom ground.AtomID) (sas.Fact, []int) {
	f := c.facts[atom][0]
	var values []int
	for value := range c.vars[f.Var].Values {
		if value != f.Value {
			values = append(values, value)
		}
	}
	return f, values
}

// merge combines an effect condition with an operator's precondition. Facts
// already required by the precondition are dropped; false is returned if
// the two disagree.
func merge(pre map[int]int, cond []sas.Fact) ([]sas.Fact, bool) {
	var out []sas.Fact
	for _, f := range cond {
		if value, ok := pre[f.Var]; ok {
			if value != f.Value {
				return nil, false
			}
			continue
		}
		out = append(out, f)
	}
	return out, true
}

func factMap(facts []sas.Fact) map[int]int {
	m := make(map[int]int, len(facts))
	for _, f := range facts {
		m[f.Var] = f.Value
	}
	return m
}

// subsetOf reports whether every fact of a is in b. Both are sorted.
func subsetOf(a, b []sas.Fact) bool {
	j := 0
	for _, f := range a {
		for j < len(b) && (b[j].Var < f.Var || (b[j].Var == f.Var && b[j].Value < f.Value)) {
			j++
		}
		if j == len(b) || b[j] != f {
			return false
		}
	}
	return true
}
