// Package axioms assigns layers to derived variables and resolves negative
// dependencies that cannot be layered.
package axioms

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/sas"
)

// UnstratifiableError is returned when negated axioms are evaluated exactly
// but a derived variable depends negatively on itself through a cycle.
type UnstratifiableError struct {
	// Cycle names the derived atoms along the cycle, starting at the rule
	// head whose condition is negated.
	Cycle []string
}

func (e UnstratifiableError) Error() string {
	return fmt.Sprintf("cannot stratify axioms: negative dependency cycle %s; use overapproximate_negated_axioms=cycles or all",
		strings.Join(e.Cycle, " -> "))
}

type Stats struct {
	Layers           int
	Redundant        int
	Overapproximated int
}

type Stratifier struct {
	logger logrus.FieldLogger
	opts   config.Options
}

func NewStratifier(logger logrus.FieldLogger, opts config.Options) *Stratifier {
	return &Stratifier{
		logger: logger.WithField("stage", "axioms"),
		opts:   opts,
	}
}

// Stratify removes redundant positive axioms, applies the negated axiom
// policy and assigns every derived variable its layer. The returned task
// may have fewer variables than the input.
func (s *Stratifier) Stratify(task *sas.Task) (*sas.Task, Stats, error) {
	var stats Stats
	if !s.opts.KeepRedundantPositiveAxioms {
		task, stats.Redundant = removeRedundant(task)
	}
	out := *task
	out.Variables = append([]sas.Variable(nil), task.Variables...)
	out.Axioms = append([]sas.Axiom(nil), task.Axioms...)
	task = &out

	deps := newDependencies(task)
	overapproximated, err := s.overapproximate(task, deps)
	if err != nil {
		return nil, stats, err
	}
	stats.Overapproximated = overapproximated

	stats.Layers = assignLayers(task, newDependencies(task), s.opts.LayerStrategy)
	s.logger.WithFields(logrus.Fields{
		"layers":           stats.Layers,
		"redundant":        stats.Redundant,
		"overapproximated": stats.Overapproximated,
	}).Info("axioms stratified")
	return task, stats, nil
}

// overapproximate drops negated derived conditions according to the policy
// and flags the rules that lost one. With NegatedAxiomsNone a negative edge
// inside a component is an error.
func (s *Stratifier) overapproximate(task *sas.Task, deps *dependencies) (int, error) {
	policy := s.opts.EffectiveNegatedAxiomPolicy()
	count := 0
	for i := range task.Axioms {
		ax := &task.Axioms[i]
		var kept []sas.Fact
		dropped := false
		for _, f := range ax.Condition {
			if !deps.negative(task, f) {
				kept = append(kept, f)
				continue
			}
			cyclic := deps.sameComponent(ax.Var, f.Var)
			switch {
			case policy == config.NegatedAxiomsAll:
				dropped = true
			case policy == config.NegatedAxiomsCycles && cyclic:
				dropped = true
			case policy == config.NegatedAxiomsNone && cyclic:
				return 0, UnstratifiableError{Cycle: deps.cycle(task, ax.Var, f.Var)}
			default:
				kept = append(kept, f)
			}
		}
		if dropped {
			ax.Condition = kept
			ax.Overapproximated = true
			count++
			s.logger.WithField("head", atomName(task.Variables[ax.Var])).Debug("overapproximated negated axiom condition")
		}
	}
	return count, nil
}

func atomName(v sas.Variable) string {
	return strings.TrimPrefix(v.Values[0], "Atom ")
}
