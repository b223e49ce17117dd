package invariant

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/translator/pkg/api/lifted"
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/ground"
	"github.com/planforge/translator/pkg/translate/internal/testtask"
	"github.com/planforge/translator/pkg/translate/reach"
)

func reachable(t *testing.T, source *lifted.Task) *ground.Task {
	task, err := ground.Ground(source, config.Default())
	require.NoError(t, err)
	return reach.Filter(task, config.Default()).Task
}

func synthesize(t *testing.T, task *ground.Task, opts config.Options) *Result {
	logger, _ := test.NewNullLogger()
	result, err := NewSynthesizer(logger, opts).Synthesize(context.Background(), task)
	require.NoError(t, err)
	return result
}

func atomNames(task *ground.Task, ids []ground.AtomID) []string {
	var names []string
	for _, id := range ids {
		names = append(names, task.Atoms[id].String())
	}
	return names
}

func TestSynthesizeToggle(t *testing.T) {
	task := reachable(t, testtask.Toggle())
	result := synthesize(t, task, config.Default())

	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	assert.Equal(t, []string{"at(x)", "at(y)"}, atomNames(task, group.Atoms))
	assert.True(t, group.ExactlyOne)
	assert.Equal(t, "{at(*)}", group.Invariant)
	assert.False(t, result.LimitReached)
	assert.False(t, result.TimeExceeded)
}

func TestSynthesizeGripper(t *testing.T) {
	task := reachable(t, testtask.Gripper(2))
	result := synthesize(t, task, config.Default())

	var got [][]string
	for _, g := range result.Groups {
		got = append(got, atomNames(task, g.Atoms))
		assert.True(t, g.ExactlyOne, "%v", atomNames(task, g.Atoms))
	}
	expected := [][]string{
		{"at-robby(rooma)", "at-robby(roomb)"},
		{"at(ball1, rooma)", "at(ball1, roomb)", "carry(ball1, left)", "carry(ball1, right)"},
		{"at(ball2, rooma)", "at(ball2, roomb)", "carry(ball2, left)", "carry(ball2, right)"},
		{"free(left)", "carry(ball1, left)", "carry(ball2, left)"},
		{"free(right)", "carry(ball1, right)", "carry(ball2, right)"},
	}
	for _, e := range expected {
		found := false
		for _, g := range got {
			if len(e) == len(g) && subset(e, g) {
				found = true
			}
		}
		assert.True(t, found, "missing group %v in %v", e, got)
	}
}

func subset(a, b []string) bool {
	set := map[string]bool{}
	for _, s := range b {
		set[s] = true
	}
	for _, s := range a {
		if !set[s] {
			return false
		}
	}
	return true
}

func TestMutexGroupsHoldInReachableStates(t *testing.T) {
	for _, tt := range []struct {
		Name string
		Task *lifted.Task
	}{
		{Name: "toggle", Task: testtask.Toggle()},
		{Name: "shuttle", Task: testtask.Shuttle("a", "b", "c", "d")},
		{Name: "gripper", Task: testtask.Gripper(2)},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			task := reachable(t, tt.Task)
			result := synthesize(t, task, config.Default())
			require.NotEmpty(t, result.Groups)

			states := testtask.ReachableStates(task)
			for _, g := range result.Groups {
				for _, s := range states {
					count := 0
					for _, id := range g.Atoms {
						if s[id] {
							count++
						}
					}
					assert.LessOrEqual(t, count, 1, "group %v", atomNames(task, g.Atoms))
					if g.ExactlyOne {
						assert.Equal(t, 1, count, "group %v", atomNames(task, g.Atoms))
					}
				}
			}
		})
	}
}

func TestSynthesizeDisabled(t *testing.T) {
	opts := config.Default()
	opts.InvariantMaxCandidates = 0
	result := synthesize(t, reachable(t, testtask.Gripper(1)), opts)
	assert.Empty(t, result.Groups)
	assert.Zero(t, result.Verified)
}

func TestSynthesizeCandidateLimit(t *testing.T) {
	opts := config.Default()
	opts.InvariantMaxCandidates = 3
	result := synthesize(t, reachable(t, testtask.Gripper(1)), opts)
	assert.True(t, result.LimitReached)
	assert.LessOrEqual(t, result.Verified+result.Rejected+result.Unexplored, 3)
}

func TestSynthesizeTimeLimit(t *testing.T) {
	logger, hook := test.NewNullLogger()
	opts := config.Default()
	opts.InvariantMaxTime = time.Second

	s := NewSynthesizer(logger, opts)
	start := time.Now()
	calls := 0
	s.now = func() time.Time {
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(time.Hour)
	}

	result, err := s.Synthesize(context.Background(), reachable(t, testtask.Gripper(1)))
	require.NoError(t, err)
	assert.True(t, result.TimeExceeded)
	assert.Empty(t, result.Groups)
	assert.NotZero(t, result.Unexplored)

	var infos int
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level)
		if e.Level == logrus.InfoLevel {
			infos++
		}
	}
	assert.NotZero(t, infos)
}

func TestSynthesizeDeterministicAcrossWorkers(t *testing.T) {
	task := reachable(t, testtask.Gripper(3))

	serial := config.Default()
	serial.InvariantWorkers = 1
	parallel := config.Default()
	parallel.InvariantWorkers = 8

	assert.Equal(t, synthesize(t, task, serial).Groups, synthesize(t, task, parallel).Groups)
}

func TestCanonical(t *testing.T) {
	a := canonical([]Part{
		{Predicate: "carry", Order: []int{1, 0}, Omitted: -1},
		{Predicate: "at", Order: []int{1, 0}, Omitted: -1},
	})
	b := canonical([]Part{
		{Predicate: "at", Order: []int{0, 1}, Omitted: -1},
		{Predicate: "carry", Order: []int{0, 1}, Omitted: -1},
	})
	assert.Equal(t, "{at(?0, ?1), carry(?0, ?1)}", a.Key())
	assert.Equal(t, a.Key(), b.Key())

	seen := newSeenSet()
	added, err := seen.add(a)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = seen.add(b)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestMatchParts(t *testing.T) {
	parts := matchParts("carry", lifted.Atom{Predicate: "carry", Args: []string{"?b", "?g"}}, []string{"?b"})
	assert.Equal(t, []Part{{Predicate: "carry", Order: []int{0}, Omitted: 1}}, parts)

	assert.Empty(t, matchParts("road", lifted.Atom{Predicate: "road", Args: []string{"?a", "?b", "?c"}}, []string{"?a"}))
}
