package axioms

import (
	"github.com/planforge/translator/pkg/lib/graph"
	"github.com/planforge/translator/pkg/translate/sas"
)

// dependencies is the graph over variables with an edge from the head of
// every rule to each derived variable in its condition.
type dependencies struct {
	g     *graph.Digraph
	comps [][]int
	comp  []int
	neg   map[[2]int]bool
}

func newDependencies(task *sas.Task) *dependencies {
	d := &dependencies{
		g:   graph.New(len(task.Variables)),
		neg: make(map[[2]int]bool),
	}
	for _, ax := range task.Axioms {
		for _, f := range ax.Condition {
			if !task.Variables[f.Var].Derived {
				continue
			}
			d.g.AddEdge(ax.Var, f.Var, 1)
			if d.negative(task, f) {
				d.neg[[2]int{ax.Var, f.Var}] = true
			}
		}
	}
	d.comps = d.g.StronglyConnectedComponents()
	d.comp = graph.ComponentIndex(len(task.Variables), d.comps)
	return d
}

func (d *dependencies) negative(task *sas.Task, f sas.Fact) bool {
	v := task.Variables[f.Var]
	return v.Derived && f.Value == v.DefaultValue()
}

func (d *dependencies) sameComponent(a, b int) bool {
	return d.comp[a] == d.comp[b]
}

// cycle names the atoms of a shortest cycle that starts with the edge from
// head to body and returns to head.
func (d *dependencies) cycle(task *sas.Task, head, body int) []string {
	names := []string{atomName(task.Variables[head])}
	path := d.g.ShortestPath(body, head, func(v int) bool {
		return d.comp[v] == d.comp[head]
	})
	for _, v := range path {
		names = append(names, atomName(task.Variables[v]))
	}
	return names
}
