package axioms

import (
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/sas"
)

// assignLayers sets the layer of every derived variable and returns the
// number of layers. Components are visited dependencies first and all
// members of a component share its layer. With LayerStrategyMin a component
// is placed in the lowest layer not below any positive dependency and above
// every negative one; with LayerStrategyMax every component gets a layer of
// its own.
func assignLayers(task *sas.Task, deps *dependencies, strategy config.LayerStrategy) int {
	layer := make([]int, len(deps.comps))
	top := -1
	next := 0
	for c := len(deps.comps) - 1; c >= 0; c-- {
		members := deps.comps[c]
		if !task.Variables[members[0]].Derived {
			continue
		}

		l := 0
		switch strategy {
		case config.LayerStrategyMax:
			l = next
			next++
		default:
			for _, v := range members {
				for _, w := range deps.g.Successors(v) {
					if deps.comp[w] == c {
						continue
					}
					candidate := layer[deps.comp[w]]
					if deps.neg[[2]int{v, w}] {
						candidate++
					}
					if candidate > l {
						l = candidate
					}
				}
			}
		}

		layer[c] = l
		if l > top {
			top = l
		}
		for _, v := range members {
			task.Variables[v].Layer = l
		}
	}
	return top + 1
}
