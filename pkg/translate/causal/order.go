package causal

import (
	"container/heap"
	"sort"

	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/lib/graph"
	"github.com/planforge/translator/pkg/translate/sas"
)

// Order returns the task's variables in causal order. Strongly connected
// components of goal-relevant variables come first, in topological order
// of the component graph with the component holding the smallest variable
// index taken first among those ready. Inside a component variables are
// ordered by maxDAG. The remaining variables follow in their original order.
func Order(task *sas.Task, g *graph.Digraph) []int {
	relevant := GoalRelevant(task, g)

	var comps [][]int
	for _, comp := range g.StronglyConnectedComponents() {
		if relevant[comp[0]] {
			comps = append(comps, comp)
		}
	}
	sort.Slice(comps, func(i, j int) bool {
		return comps[i][0] < comps[j][0]
	})

	compOf := make([]int, g.Len())
	for i := range compOf {
		compOf[i] = -1
	}
	for i, comp := range comps {
		for _, v := range comp {
			compOf[v] = i
		}
	}
	dag := graph.New(len(comps))
	for v := range compOf {
		if compOf[v] < 0 {
			continue
		}
		for _, w := range g.Successors(v) {
			if compOf[w] >= 0 && compOf[w] != compOf[v] {
				dag.AddEdge(compOf[v], compOf[w], g.Weight(v, w))
			}
		}
	}
	topo, _ := dag.TopologicalOrder()

	order := make([]int, 0, g.Len())
	for _, c := range topo {
		order = append(order, maxDAG(g, comps[c])...)
	}
	for v, ok := range relevant {
		if !ok {
			order = append(order, v)
		}
	}
	return order
}

type weighted struct {
	weight, node int
}

type weightedHeap []weighted

func (h weightedHeap) Len() int { return len(h) }
func (h weightedHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].node < h[j].node
}
func (h weightedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *weightedHeap) Push(x interface{}) { *h = append(*h, x.(weighted)) }
func (h *weightedHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// maxDAG orders the members of one component by repeatedly taking the node
// with the least incoming weight from the nodes not yet taken, so that heavy
// edges tend to point forward.
func maxDAG(g *graph.Digraph, members []int) []int {
	if len(members) == 1 {
		return members
	}
	in := make(map[int]int, len(members))
	for _, v := range members {
		in[v] = 0
	}
	for _, v := range members {
		for _, w := range g.Successors(v) {
			if _, ok := in[w]; ok {
				in[w] += g.Weight(v, w)
			}
		}
	}

	h := &weightedHeap{}
	for _, v := range members {
		heap.Push(h, weighted{weight: in[v], node: v})
	}
	done := make(map[int]bool, len(members))
	order := make([]int, 0, len(members))
	for h.Len() > 0 {
		next := heap.Pop(h).(weighted)
		if done[next.node] || next.weight != in[next.node] {
			continue
		}
		done[next.node] = true
		order = append(order, next.node)
		for _, w := range g.Successors(next.node) {
			if _, ok := in[w]; !ok || done[w] {
				continue
			}
			in[w] -= g.Weight(next.node, w)
			heap.Push(h, weighted{weight: in[w], node: w})
		}
	}
	return order
}

// Reorder applies the causal order to the task unless reordering is
// disabled. It returns the resulting task and the mapping from old to new
// variable indices.
func Reorder(task *sas.Task, opts config.Options) (*sas.Task, []int) {
	mapping := make([]int, len(task.Variables))
	if !opts.ReorderVariables {
		for i := range mapping {
			mapping[i] = i
		}
		return task, mapping
	}
	for pos, v := range Order(task, Build(task)) {
		mapping[v] = pos
	}
	return task.ApplyVariableMapping(mapping), mapping
}
