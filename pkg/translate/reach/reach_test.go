package reach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/translator/pkg/api/lifted"
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/ground"
	"github.com/planforge/translator/pkg/translate/internal/testtask"
)

// splitShuttle has roads a->b and c->d; the truck starts in a.
func splitShuttle() *lifted.Task {
	task := testtask.Shuttle("a", "b")
	task.Problem.Objects = append(task.Problem.Objects,
		lifted.Object{Name: "c", Type: "location"},
		lifted.Object{Name: "d", Type: "location"},
	)
	task.Problem.Init = append(task.Problem.Init, lifted.Atom{Predicate: "road", Args: []string{"c", "d"}})
	return task
}

func groundTask(t *testing.T, source *lifted.Task) *ground.Task {
	task, err := ground.Ground(source, config.Default())
	require.NoError(t, err)
	return task
}

func TestAnalyze(t *testing.T) {
	task := groundTask(t, splitShuttle())
	a := Analyze(task)

	for id, atom := range task.Atoms {
		loc := atom.Args[1]
		assert.Equal(t, loc == "a" || loc == "b", a.Atoms[id], atom.String())
	}
	for i, op := range task.Operators {
		assert.Equal(t, op.Name == "drive truck a b", a.Operators[i], op.Name)
	}
	assert.True(t, a.GoalReachable(task))
}

func TestFilter(t *testing.T) {
	task := groundTask(t, splitShuttle())

	result := Filter(task, config.Default())
	assert.True(t, result.GoalReachable)
	assert.Equal(t, 2, result.Pruned)
	require.Len(t, result.Task.Operators, 1)
	assert.Equal(t, "drive truck a b", result.Task.Operators[0].Name)
	assert.Len(t, result.Task.Atoms, 2)

	keep := config.Default()
	keep.FilterUnreachableFacts = false
	result = Filter(task, keep)
	assert.Same(t, task, result.Task)
	assert.Zero(t, result.Pruned)
}

func TestFilterSimplifiesNegativeLiterals(t *testing.T) {
	source := testtask.Toggle()
	source.Domain.Predicates = append(source.Domain.Predicates,
		lifted.Predicate{Name: "broken", Parameters: []lifted.Parameter{{Name: "?p"}}},
		lifted.Predicate{Name: "seen", Parameters: []lifted.Parameter{{Name: "?p"}}},
	)
	move := &source.Domain.Actions[0]
	move.Precondition = append(move.Precondition, lifted.Neg("broken", "?to"))
	move.Effects = append(move.Effects,
		lifted.Effect{Condition: []lifted.Literal{lifted.Pos("broken", "?from")}, Literal: lifted.Pos("seen", "?to")},
	)
	// broken is fluent but never added
	source.Domain.Actions = append(source.Domain.Actions, lifted.Action{
		Name:       "repair",
		Parameters: []lifted.Parameter{{Name: "?p"}},
		Precondition: []lifted.Literal{
			lifted.Pos("broken", "?p"),
		},
		Effects: []lifted.Effect{{Literal: lifted.Neg("broken", "?p")}},
	})

	result := Filter(groundTask(t, source), config.Default())
	require.Len(t, result.Task.Operators, 2)
	for _, op := range result.Task.Operators {
		assert.Len(t, op.Precondition, 1, op.Name)
		assert.Len(t, op.Effects, 2, op.Name)
	}
	for _, atom := range result.Task.Atoms {
		assert.Equal(t, "at", atom.Predicate)
	}
}

func TestGoalUnreachable(t *testing.T) {
	source := testtask.Shuttle("a", "b")
	source.Problem.Objects = append(source.Problem.Objects, lifted.Object{Name: "z", Type: "location"})
	source.Problem.Goal = []lifted.Literal{lifted.Pos("at", "truck", "z")}

	result := Filter(groundTask(t, source), config.Default())
	assert.False(t, result.GoalReachable)
	assert.True(t, result.Task.GoalImpossible)
}

func TestAxiomReachability(t *testing.T) {
	task := groundTask(t, testtask.Lights())
	a := Analyze(task)

	dark, ok := task.Lookup("dark", "hall")
	require.True(t, ok)
	lit, ok := task.Lookup("lit", "hall")
	require.True(t, ok)
	assert.True(t, a.Atoms[dark], "negative body literals are relaxed")
	assert.True(t, a.Atoms[lit])
	assert.True(t, a.GoalReachable(task))
}
