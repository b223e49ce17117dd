package sat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// DuplicateIdentifier is returned when two Variables share an Identifier.
type DuplicateIdentifier Identifier

func (e DuplicateIdentifier) Error() string {
	return fmt.Sprintf("duplicate identifier %q in input", Identifier(e))
}

type term struct {
	id      Identifier
	negated bool
}

// clause collects the terms a Constraint contributes.
type clause []term

func (c *clause) Add(id Identifier) {
	*c = append(*c, term{id: id})
}

func (c *clause) AddNot(id Identifier) {
	*c = append(*c, term{id: id, negated: true})
}

// formula is the circuit for one call to Solve. Every constraint is one
// disjunction whose output literal is assumed, so the failed assumptions of
// an unsatisfiable solve name the constraints responsible.
type formula struct {
	c       *logic.C
	lits    map[Identifier]z.Lit
	clauses map[z.Lit]AppliedConstraint
	assumed []z.Lit
	missing map[Identifier]bool
}

func newFormula(variables []Variable) (*formula, error) {
	f := &formula{
		c:       logic.NewCCap(len(variables)),
		lits:    make(map[Identifier]z.Lit, len(variables)),
		clauses: make(map[z.Lit]AppliedConstraint),
		missing: make(map[Identifier]bool),
	}
	for _, v := range variables {
		id := v.Identifier()
		if _, ok := f.lits[id]; ok {
			return nil, DuplicateIdentifier(id)
		}
		f.lits[id] = f.c.Lit()
	}

	var buf []z.Lit
	for _, v := range variables {
		for _, constraint := range v.Constraints() {
			var cl clause
			constraint.apply(&cl, v.Identifier())
			if len(cl) == 0 {
				continue
			}
			buf = buf[:0]
			for _, t := range cl {
				m := f.lit(t.id)
				if t.negated {
					m = m.Not()
				}
				buf = append(buf, m)
			}
			m := f.c.Ors(buf...)
			if _, ok := f.clauses[m]; ok {
				continue
			}
			f.clauses[m] = AppliedConstraint{Variable: v, Constraint: constraint}
			f.assumed = append(f.assumed, m)
		}
	}

	if len(f.missing) > 0 {
		ids := make([]string, 0, len(f.missing))
		for id := range f.missing {
			ids = append(ids, string(id))
		}
		sort.Strings(ids)
		return nil, errors.Errorf("constraints reference undeclared variables: %s", strings.Join(ids, ", "))
	}
	return f, nil
}

func (f *formula) lit(id Identifier) z.Lit {
	if m, ok := f.lits[id]; ok {
		return m
	}
	f.missing[id] = true
	return z.LitNull
}

// core maps failed assumptions back to the constraints they stand for.
func (f *formula) core(whys []z.Lit) NotSatisfiable {
	core := make(NotSatisfiable, 0, len(whys))
	for _, m := range whys {
		if a, ok := f.clauses[m]; ok {
			core = append(core, a)
		}
	}
	return core
}

// waitForSolution polls gs with a growing interval, so that the small
// queries of invariant verification return almost immediately.
func waitForSolution(ctx context.Context, gs inter.Solve) int {
	delay := 20 * time.Microsecond
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		if result, ok := gs.Test(); ok {
			return result
		}
		select {
		case <-ctx.Done():
			return gs.Stop()
		case <-timer.C:
		}
		if delay < 50*time.Millisecond {
			delay *= 2
		}
		timer.Reset(delay)
	}
}
