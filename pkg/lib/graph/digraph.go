// Package graph provides an arena-backed directed graph over dense integer
// node indices. Adjacency lists are kept sorted so every traversal visits
// nodes in index order and produces deterministic results.
package graph

import (
	"container/heap"
	"sort"
)

type edgeKey struct {
	from, to int
}

// Digraph is a directed graph over nodes 0..Len()-1. Parallel edges are
// merged and their weights summed.
type Digraph struct {
	out     [][]int
	in      [][]int
	weights map[edgeKey]int
}

func New(n int) *Digraph {
	return &Digraph{
		out:     make([][]int, n),
		in:      make([][]int, n),
		weights: make(map[edgeKey]int),
	}
}

func (g *Digraph) Len() int {
	return len(g.out)
}

// AddEdge adds weight to the edge from -> to, creating it if needed.
func (g *Digraph) AddEdge(from, to, weight int) {
	key := edgeKey{from, to}
	if _, ok := g.weights[key]; !ok {
		g.out[from] = insertSorted(g.out[from], to)
		g.in[to] = insertSorted(g.in[to], from)
	}
	g.weights[key] += weight
}

func (g *Digraph) HasEdge(from, to int) bool {
	_, ok := g.weights[edgeKey{from, to}]
	return ok
}

// Weight returns the accumulated weight of from -> to, or 0 if absent.
func (g *Digraph) Weight(from, to int) int {
	return g.weights[edgeKey{from, to}]
}

// Successors returns the sorted targets of edges leaving v. The slice must not
// be modified.
func (g *Digraph) Successors(v int) []int {
	return g.out[v]
}

// Predecessors returns the sorted sources of edges entering v. The slice must
// not be modified.
func (g *Digraph) Predecessors(v int) []int {
	return g.in[v]
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// StronglyConnectedComponents decomposes the graph with an iterative version
// of Tarjan's algorithm. Components are returned in topological order of the
// condensation (a component precedes every component it has an edge to), and
// the members of each component are sorted.
func (g *Digraph) StronglyConnectedComponents() [][]int {
	n := len(g.out)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	type frame struct {
		v, next int
	}

	var (
		stack   []int
		comps   [][]int
		counter int
	)
	visit := func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
	}

	for root := 0; root < n; root++ {
		if index[root] >= 0 {
			continue
		}
		visit(root)
		calls := []frame{{v: root}}
		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			v := top.v
			if top.next < len(g.out[v]) {
				w := g.out[v][top.next]
				top.next++
				if index[w] < 0 {
					visit(w)
					calls = append(calls, frame{v: w})
				} else if onStack[w] && index[w] < low[v] {
					low[v] = index[w]
				}
				continue
			}

			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				parent := calls[len(calls)-1].v
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}
			if low[v] != index[v] {
				continue
			}
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Ints(comp)
			comps = append(comps, comp)
		}
	}

	// Tarjan emits sinks first.
	for i, j := 0, len(comps)-1; i < j; i, j = i+1, j-1 {
		comps[i], comps[j] = comps[j], comps[i]
	}
	return comps
}

// ComponentIndex maps every node to the position of its component in comps.
func ComponentIndex(n int, comps [][]int) []int {
	result := make([]int, n)
	for i, comp := range comps {
		for _, v := range comp {
			result[v] = i
		}
	}
	return result
}

// Condense builds the acyclic graph whose nodes are the given components.
// Edge weights between components are summed.
func (g *Digraph) Condense(comps [][]int) *Digraph {
	compOf := ComponentIndex(len(g.out), comps)
	dag := New(len(comps))
	for v, succs := range g.out {
		for _, w := range succs {
			if compOf[v] != compOf[w] {
				dag.AddEdge(compOf[v], compOf[w], g.weights[edgeKey{v, w}])
			}
		}
	}
	return dag
}

type intMinHeap []int

func (h intMinHeap) Len() int            { return len(h) }
func (h intMinHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalOrder returns a topological order in which, among all nodes
// whose predecessors are placed, the smallest index comes first. The boolean
// is false if the graph has a cycle; the order then covers only the acyclic
// prefix.
func (g *Digraph) TopologicalOrder() ([]int, bool) {
	indeg := make([]int, len(g.in))
	ready := &intMinHeap{}
	for v := range g.in {
		indeg[v] = len(g.in[v])
		if indeg[v] == 0 {
			heap.Push(ready, v)
		}
	}

	order := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		v := heap.Pop(ready).(int)
		order = append(order, v)
		for _, w := range g.out[v] {
			indeg[w]--
			if indeg[w] == 0 {
				heap.Push(ready, w)
			}
		}
	}
	return order, len(order) == len(indeg)
}

// Ancestors returns every node from which one of the roots is reachable,
// including the roots themselves.
func (g *Digraph) Ancestors(roots []int) []bool {
	marked := make([]bool, len(g.in))
	queue := make([]int, 0, len(roots))
	for _, r := range roots {
		if !marked[r] {
			marked[r] = true
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, p := range g.in[v] {
			if !marked[p] {
				marked[p] = true
				queue = append(queue, p)
			}
		}
	}
	return marked
}

// ShortestPath returns the nodes of a shortest path from -> ... -> to that
// only visits nodes accepted by within, or nil if there is none. Ties are
// broken towards smaller indices.
func (g *Digraph) ShortestPath(from, to int, within func(int) bool) []int {
	parent := make(map[int]int, 8)
	parent[from] = -1
	queue := []int{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == to {
			var path []int
			for cur := to; cur != -1; cur = parent[cur] {
				path = append(path, cur)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		for _, w := range g.out[v] {
			if _, seen := parent[w]; seen || (within != nil && !within(w)) {
				continue
			}
			parent[w] = v
			queue = append(queue, w)
		}
	}
	return nil
}
