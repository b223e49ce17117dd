package sat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestVariable struct {
	identifier  Identifier
	constraints []Constraint
}

func (i TestVariable) Identifier() Identifier {
	return i.identifier
}

func (i TestVariable) Constraints() []Constraint {
	return i.constraints
}

func newTestVariable(id Identifier, constraints ...Constraint) Variable {
	return TestVariable{
		identifier:  id,
		constraints: constraints,
	}
}

func TestNotSatisfiableError(t *testing.T) {
	type tc struct {
		Name   string
		Error  NotSatisfiable
		String string
	}

	for _, tt := range []tc{
		{
			Name:   "nil",
			String: "constraints not satisfiable",
		},
		{
			Name:   "empty",
			String: "constraints not satisfiable",
			Error:  NotSatisfiable{},
		},
		{
			Name: "single failure",
			Error: NotSatisfiable{
				AppliedConstraint{
					Variable:   newTestVariable("a", Mandatory()),
					Constraint: Mandatory(),
				},
			},
			String: fmt.Sprintf("constraints not satisfiable: %s",
				Mandatory().String("a")),
		},
		{
			Name: "multiple failures",
			Error: NotSatisfiable{
				AppliedConstraint{
					Variable:   newTestVariable("a", Mandatory()),
					Constraint: Mandatory(),
				},
				AppliedConstraint{
					Variable:   newTestVariable("b", Prohibited()),
					Constraint: Prohibited(),
				},
			},
			String: fmt.Sprintf("constraints not satisfiable: %s, %s",
				Mandatory().String("a"), Prohibited().String("b")),
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.String, tt.Error.Error())
		})
	}
}

func TestConstraintStrings(t *testing.T) {
	assert.Equal(t, "a must hold", Mandatory().String("a"))
	assert.Equal(t, "a must not hold", Prohibited().String("a"))
	assert.Equal(t, "a needs one of b, c", Dependency("b", "c").String("a"))
	assert.Equal(t, "a excludes b", Conflict("b").String("a"))
	assert.Equal(t, "e is implied by x and not y",
		Implied(Literal{ID: "x"}, Literal{ID: "y", Negated: true}).String("e"))
}

func TestSolve(t *testing.T) {
	type tc struct {
		Name      string
		Variables []Variable
		True      []Identifier
		Unsat     bool
	}

	for _, tt := range []tc{
		{
			Name: "no variables",
		},
		{
			Name:      "single mandatory variable is true",
			Variables: []Variable{newTestVariable("a", Mandatory())},
			True:      []Identifier{"a"},
		},
		{
			Name:      "both mandatory and prohibited",
			Variables: []Variable{newTestVariable("a", Mandatory(), Prohibited())},
			Unsat:     true,
		},
		{
			Name: "transitive dependency is true",
			Variables: []Variable{
				newTestVariable("a", Dependency("b")),
				newTestVariable("b", Dependency("c")),
				newTestVariable("c"),
				newTestVariable("root", Mandatory(), Dependency("a")),
			},
			True: []Identifier{"a", "b", "c", "root"},
		},
		{
			Name: "two mandatory but conflicting variables",
			Variables: []Variable{
				newTestVariable("a", Mandatory()),
				newTestVariable("b", Mandatory(), Conflict("a")),
			},
			Unsat: true,
		},
		{
			Name: "implied variable follows its literals",
			Variables: []Variable{
				newTestVariable("x", Mandatory()),
				newTestVariable("y", Prohibited()),
				newTestVariable("e", Implied(Literal{ID: "x"}, Literal{ID: "y", Negated: true})),
				newTestVariable("check", Mandatory(), Conflict("e")),
			},
			Unsat: true,
		},
		{
			Name: "implied variable may stay false when a literal fails",
			Variables: []Variable{
				newTestVariable("x", Mandatory()),
				newTestVariable("y", Mandatory()),
				newTestVariable("e", Prohibited(), Implied(Literal{ID: "x"}, Literal{ID: "y", Negated: true})),
			},
			True: []Identifier{"x", "y"},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := Solve(context.Background(), tt.Variables)
			if tt.Unsat {
				require.Error(t, err)
				ns, ok := err.(NotSatisfiable)
				require.True(t, ok)
				assert.NotEmpty(t, ns)
				return
			}
			require.NoError(t, err)
			var ids []Identifier
			for _, v := range result {
				ids = append(ids, v.Identifier())
			}
			for _, id := range tt.True {
				assert.Contains(t, ids, id)
			}
		})
	}
}

func TestSolveDuplicateIdentifier(t *testing.T) {
	_, err := Solve(context.Background(), []Variable{newTestVariable("a"), newTestVariable("a")})
	assert.Equal(t, DuplicateIdentifier("a"), err)
}

func TestSolveUndeclaredIdentifier(t *testing.T) {
	_, err := Solve(context.Background(), []Variable{newTestVariable("a", Dependency("b", "c"))})
	require.Error(t, err)
	assert.Equal(t, "constraints reference undeclared variables: b, c", err.Error())
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, []Variable{newTestVariable("a", Mandatory())})
	assert.Equal(t, Incomplete, err)
}

func TestProblem(t *testing.T) {
	p := NewProblem()
	p.Declare("x")
	p.Constrain("e", Dependency("x"), Mandatory())
	p.Constrain("x", Prohibited())

	vars := p.Variables()
	require.Len(t, vars, 2)
	assert.Equal(t, Identifier("x"), vars[0].Identifier())
	assert.Len(t, vars[1].Constraints(), 2)

	ok, err := Satisfiable(context.Background(), vars)
	require.NoError(t, err)
	assert.False(t, ok)

	q := NewProblem()
	q.Declare("x")
	q.Constrain("e", Dependency("x"), Mandatory())
	ok, err = Satisfiable(context.Background(), q.Variables())
	require.NoError(t, err)
	assert.True(t, ok)
}
