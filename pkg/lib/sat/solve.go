// Package sat answers satisfiability questions over boolean variables
// described by simple constraints, backed by the gini solver.
package sat

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-air/gini"
	"github.com/pkg/errors"
)

// Identifier values uniquely identify particular Variables within
// the input to a single call to Solve.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Variable values are the basic unit of problems and solutions
// understood by this package.
type Variable interface {
	// Identifier returns the Identifier that uniquely identifies
	// this Variable among all other Variables in a given problem.
	Identifier() Identifier
	// Constraints returns the set of constraints that apply to
	// this Variable.
	Constraints() []Constraint
}

var Incomplete = errors.New("cancelled before a solution could be found")

// NotSatisfiable is an error composed of a minimal set of applied
// constraints that is sufficient to make a solution impossible.
type NotSatisfiable []AppliedConstraint

func (e NotSatisfiable) Error() string {
	const msg = "constraints not satisfiable"
	if len(e) == 0 {
		return msg
	}
	s := make([]string, len(e))
	for i, a := range e {
		s[i] = a.String()
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(s, ", "))
}

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Solve returns the Variables that are true in some assignment
// satisfying every constraint, in input order. If no such assignment
// exists the error is a NotSatisfiable naming the constraints involved.
// Cancelling ctx yields Incomplete.
func Solve(ctx context.Context, variables []Variable) ([]Variable, error) {
	if ctx.Err() != nil {
		return nil, Incomplete
	}

	f, err := newFormula(variables)
	if err != nil {
		return nil, err
	}

	g := gini.New()
	f.c.ToCnf(g)
	g.Assume(f.assumed...)

	switch waitForSolution(ctx, g.GoSolve()) {
	case satisfiable:
		var result []Variable
		for _, v := range variables {
			if g.Value(f.lits[v.Identifier()]) {
				result = append(result, v)
			}
		}
		return result, nil
	case unsatisfiable:
		return nil, f.core(g.Why(nil))
	}

	return nil, Incomplete
}

// Satisfiable reports whether the variables admit a solution.
func Satisfiable(ctx context.Context, variables []Variable) (bool, error) {
	_, err := Solve(ctx, variables)
	if err == nil {
		return true, nil
	}
	if _, ok := err.(NotSatisfiable); ok {
		return false, nil
	}
	return false, err
}
