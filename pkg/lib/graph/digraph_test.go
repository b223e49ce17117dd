package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(n int, edges ...[2]int) *Digraph {
	g := New(n)
	for _, e := range edges {
		g.AddEdge(e[0], e[1], 1)
	}
	return g
}

func TestAddEdge(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 2, 1)
	g.AddEdge(0, 1, 2)
	g.AddEdge(0, 2, 3)

	assert.Equal(t, []int{1, 2}, g.Successors(0))
	assert.Equal(t, []int{0}, g.Predecessors(2))
	assert.Equal(t, 4, g.Weight(0, 2))
	assert.Equal(t, 0, g.Weight(2, 0))
	assert.True(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(1, 0))
}

func TestStronglyConnectedComponents(t *testing.T) {
	for _, tt := range []struct {
		Name     string
		Graph    *Digraph
		Expected [][]int
	}{
		{
			Name:     "no edges",
			Graph:    build(3),
			Expected: [][]int{{2}, {1}, {0}},
		},
		{
			Name:     "chain",
			Graph:    build(3, [2]int{0, 1}, [2]int{1, 2}),
			Expected: [][]int{{0}, {1}, {2}},
		},
		{
			Name:     "cycle feeding a sink",
			Graph:    build(4, [2]int{0, 1}, [2]int{1, 0}, [2]int{1, 2}, [2]int{3, 0}),
			Expected: [][]int{{3}, {0, 1}, {2}},
		},
		{
			Name:     "self loop",
			Graph:    build(2, [2]int{1, 1}, [2]int{1, 0}),
			Expected: [][]int{{1}, {0}},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			comps := tt.Graph.StronglyConnectedComponents()
			assert.Equal(t, tt.Expected, comps)
		})
	}
}

func TestStronglyConnectedComponentsDeepChain(t *testing.T) {
	const n = 200000
	g := New(n)
	for i := 0; i+1 < n; i++ {
		g.AddEdge(i, i+1, 1)
	}
	g.AddEdge(n-1, 0, 1)

	comps := g.StronglyConnectedComponents()
	require.Len(t, comps, 1)
	assert.Len(t, comps[0], n)
}

func TestCondenseAndTopologicalOrder(t *testing.T) {
	g := build(5,
		[2]int{0, 1}, [2]int{1, 0},
		[2]int{4, 0},
		[2]int{1, 2},
		[2]int{3, 2},
	)
	comps := g.StronglyConnectedComponents()
	dag := g.Condense(comps)

	order, ok := dag.TopologicalOrder()
	require.True(t, ok)
	require.Len(t, order, len(comps))

	compOf := ComponentIndex(g.Len(), comps)
	position := make([]int, len(comps))
	for i, c := range order {
		position[c] = i
	}
	for v := 0; v < g.Len(); v++ {
		for _, w := range g.Successors(v) {
			if compOf[v] != compOf[w] {
				assert.Less(t, position[compOf[v]], position[compOf[w]])
			}
		}
	}

	_, ok = g.TopologicalOrder()
	assert.False(t, ok)
}

func TestTopologicalOrderPrefersSmallIndices(t *testing.T) {
	g := build(4, [2]int{3, 0}, [2]int{2, 1})
	order, ok := g.TopologicalOrder()
	require.True(t, ok)
	assert.Equal(t, []int{2, 1, 3, 0}, order)
}

func TestAncestors(t *testing.T) {
	g := build(5, [2]int{0, 1}, [2]int{1, 2}, [2]int{3, 4})
	assert.Equal(t, []bool{true, true, true, false, false}, g.Ancestors([]int{2}))
}

func TestShortestPath(t *testing.T) {
	g := build(4, [2]int{0, 1}, [2]int{1, 2}, [2]int{0, 3}, [2]int{3, 2}, [2]int{2, 0})

	assert.Equal(t, []int{0, 1, 2}, g.ShortestPath(0, 2, nil))
	assert.Equal(t, []int{0, 3, 2}, g.ShortestPath(0, 2, func(v int) bool { return v != 1 }))
	assert.Equal(t, []int{1}, g.ShortestPath(1, 1, nil))
	assert.Nil(t, g.ShortestPath(2, 3, func(v int) bool { return v == 2 }))
}
