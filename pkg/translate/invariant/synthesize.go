// Package invariant discovers mutual exclusion groups of ground atoms by
// generating lifted candidates and proving them inductively against the
// ground operators.
package invariant

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/ground"
)

// MutexGroup is a set of atoms of which at most one, or exactly one, is true
// in every reachable state.
type MutexGroup struct {
	Atoms      []ground.AtomID
	ExactlyOne bool
	// Invariant is the key of the candidate the group instantiates.
	Invariant string
}

type Result struct {
	Groups []MutexGroup

	Verified   int
	Rejected   int
	Unexplored int

	LimitReached bool
	TimeExceeded bool
}

type Synthesizer struct {
	logger logrus.FieldLogger
	opts   config.Options
	now    func() time.Time
}

func NewSynthesizer(logger logrus.FieldLogger, opts config.Options) *Synthesizer {
	return &Synthesizer{
		logger: logger.WithField("stage", "invariants"),
		opts:   opts,
		now:    time.Now,
	}
}

// Synthesize explores candidates breadth first until the queue is empty or a
// budget runs out. Candidates are verified in parallel batches; results are
// merged in queue order, so the outcome does not depend on scheduling as long
// as the time budget is not hit.
func (s *Synthesizer) Synthesize(ctx context.Context, task *ground.Task) (*Result, error) {
	result := &Result{}
	limit := s.opts.InvariantMaxCandidates
	if limit == 0 {
		s.logger.Info("invariant synthesis disabled")
		return result, nil
	}

	u := newUniverse(task)
	deadline := s.now().Add(s.opts.InvariantMaxTime)
	seen := newSeenSet()

	queue := seeds(u.fluent, u.arity)
	if len(queue) > limit {
		queue = queue[:limit]
		result.LimitReached = true
	}
	for _, c := range queue {
		if _, err := seen.add(c); err != nil {
			return nil, err
		}
	}

	workers := s.opts.InvariantWorkers
	if workers < 1 {
		workers = 1
	}
	batchSize := workers * 4

	var verified []verdict
	for len(queue) > 0 {
		if !s.now().Before(deadline) {
			result.TimeExceeded = true
			break
		}
		n := batchSize
		if n > len(queue) {
			n = len(queue)
		}
		batch := queue[:n]
		queue = queue[n:]

		verdicts := make([]verdict, n)
		eg, egctx := errgroup.WithContext(ctx)
		eg.SetLimit(workers)
		for i := range batch {
			i := i
			eg.Go(func() error {
				if !s.now().Before(deadline) {
					verdicts[i] = verdict{candidate: batch[i], outcome: outcomeUnexplored}
					return nil
				}
				v, f, err := u.verify(egctx, batch[i])
				if err != nil {
					return err
				}
				if f != nil {
					s.logger.WithFields(logrus.Fields{
						"candidate": batch[i].Key(),
						"operator":  task.Operators[f.operator].Name,
						"instance":  f.instance,
					}).Debugf("candidate %s", f.kind)
				}
				verdicts[i] = v
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}

		for _, v := range verdicts {
			switch v.outcome {
			case outcomeVerified:
				result.Verified++
				verified = append(verified, v)
			case outcomeRejected:
				result.Rejected++
				for _, r := range v.refinements {
					known, err := seen.contains(r)
					if err != nil {
						return nil, err
					}
					if known {
						continue
					}
					if seen.size >= limit {
						result.LimitReached = true
						continue
					}
					if _, err := seen.add(r); err != nil {
						return nil, err
					}
					queue = append(queue, r)
				}
			case outcomeUnexplored:
				result.Unexplored++
				result.TimeExceeded = true
			}
		}
	}
	result.Unexplored += len(queue)

	if result.LimitReached {
		s.logger.WithField("limit", limit).Info("invariant candidate limit reached, keeping verified invariants")
	}
	if result.TimeExceeded {
		s.logger.WithField("limit", s.opts.InvariantMaxTime).Info("invariant time limit reached, keeping verified invariants")
	}

	result.Groups = groups(verified)
	s.logger.WithFields(logrus.Fields{
		"verified":   result.Verified,
		"rejected":   result.Rejected,
		"unexplored": result.Unexplored,
		"groups":     len(result.Groups),
	}).Info("invariant synthesis finished")
	return result, nil
}

// groups instantiates verified candidates in canonical key order. Identical
// atom sets are reported once; a group is exactly-one if any candidate
// proves it.
func groups(verified []verdict) []MutexGroup {
	sort.Slice(verified, func(i, j int) bool {
		return verified[i].candidate.Key() < verified[j].candidate.Key()
	})
	var result []MutexGroup
	index := make(map[string]int)
	for _, v := range verified {
		for _, inst := range v.instances {
			key := fmt.Sprint(inst.atoms)
			if i, ok := index[key]; ok {
				result[i].ExactlyOne = result[i].ExactlyOne || v.exactlyOne[inst.key]
				continue
			}
			index[key] = len(result)
			result = append(result, MutexGroup{
				Atoms:      append([]ground.AtomID(nil), inst.atoms...),
				ExactlyOne: v.exactlyOne[inst.key],
				Invariant:  v.candidate.Key(),
			})
		}
	}
	return result
}
