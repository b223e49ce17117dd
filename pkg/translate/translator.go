// Package translate runs the stages that turn a lifted task into a ground
// finite-domain task and writes the result.
package translate

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/planforge/translator/pkg/api/lifted"
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/metrics"
	"github.com/planforge/translator/pkg/translate/axioms"
	"github.com/planforge/translator/pkg/translate/causal"
	"github.com/planforge/translator/pkg/translate/encode"
	"github.com/planforge/translator/pkg/translate/ground"
	"github.com/planforge/translator/pkg/translate/invariant"
	"github.com/planforge/translator/pkg/translate/reach"
	"github.com/planforge/translator/pkg/translate/relevance"
	"github.com/planforge/translator/pkg/translate/sas"
)

type Translator struct {
	logger  logrus.FieldLogger
	opts    config.Options
	metrics *metrics.Pipeline
}

// New validates opts and returns a Translator recording into pipeline. A nil
// pipeline gets a fresh one.
func New(logger logrus.FieldLogger, opts config.Options, pipeline *metrics.Pipeline) (*Translator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if pipeline == nil {
		pipeline = metrics.NewPipeline()
	}
	return &Translator{
		logger:  logger,
		opts:    opts,
		metrics: pipeline,
	}, nil
}

func (t *Translator) Metrics() *metrics.Pipeline {
	return t.metrics
}

func (t *Translator) instrumented(name string) *InstrumentedStage {
	return NewInstrumentedStage(name, t.metrics.StageSuccess(name), t.metrics.StageFailure(name))
}

func (t *Translator) stage(name string, fn func() error) error {
	return t.instrumented(name).Run(fn)
}

// step runs a stage that cannot fail.
func (t *Translator) step(name string, fn func()) {
	t.instrumented(name).Do(fn)
}

// Translate runs every stage on source. An unreachable or impossible goal is
// not an error: the result is then the trivially unsolvable task.
func (t *Translator) Translate(ctx context.Context, source *lifted.Task) (*sas.Task, error) {
	var task *ground.Task
	err := t.stage("ground", func() error {
		var err error
		task, err = ground.Ground(source, t.opts)
		return errors.Wrap(err, "grounding")
	})
	if err != nil {
		return nil, err
	}
	t.logger.WithFields(logrus.Fields{
		"stage":     "ground",
		"atoms":     len(task.Atoms),
		"operators": len(task.Operators),
		"axioms":    len(task.Axioms),
	}).Info("task grounded")

	var reachable reach.Result
	t.step("reach", func() {
		reachable = reach.Filter(task, t.opts)
	})
	task = reachable.Task
	t.logger.WithFields(logrus.Fields{
		"stage":     "reach",
		"atoms":     len(task.Atoms),
		"pruned":    reachable.Pruned,
		"operators": len(task.Operators),
		"axioms":    len(task.Axioms),
	}).Info("reachability analyzed")
	if !reachable.GoalReachable {
		return t.unsolvable(task.Metric, "goal is not relaxed reachable")
	}

	var invariants *invariant.Result
	err = t.stage("invariants", func() error {
		var err error
		invariants, err = invariant.NewSynthesizer(t.logger, t.opts).Synthesize(ctx, task)
		return errors.Wrap(err, "synthesizing invariants")
	})
	if err != nil {
		return nil, err
	}
	t.metrics.ObserveCandidates(invariants.Verified, invariants.Rejected, invariants.Unexplored)

	var encoded *encode.Result
	err = t.stage("encode", func() error {
		var err error
		encoded, err = encode.Encode(task, invariants.Groups, t.opts)
		return errors.Wrap(err, "encoding variables")
	})
	if err != nil {
		return nil, err
	}
	if encoded.Unsolvable {
		return t.unsolvable(task.Metric, "goal is inconsistent")
	}
	out := encoded.Task
	t.logger.WithFields(logrus.Fields{
		"stage":     "encode",
		"variables": len(out.Variables),
		"operators": len(out.Operators),
		"axioms":    len(out.Axioms),
		"mutexes":   len(out.Mutexes),
	}).Info("variables encoded")

	var relevant relevance.Result
	t.step("relevance", func() {
		relevant = relevance.Filter(out, t.opts)
	})
	if relevant.Unsolvable {
		return t.unsolvable(task.Metric, "goal value is unreachable")
	}
	out = relevant.Task
	t.logger.WithFields(logrus.Fields{
		"stage":                  "relevance",
		"derived_variables":      relevant.Removed.DerivedVariables,
		"values":                 relevant.Removed.Values,
		"single_value_variables": relevant.Removed.SingleValueVariables,
		"unimportant_variables":  relevant.Removed.UnimportantVariables,
		"operators":              relevant.Removed.Operators,
		"axioms":                 relevant.Removed.Axioms,
	}).Info("irrelevant parts removed")

	var stats axioms.Stats
	err = t.stage("axioms", func() error {
		var err error
		out, stats, err = axioms.NewStratifier(t.logger, t.opts).Stratify(out)
		return errors.Wrap(err, "stratifying axioms")
	})
	if err != nil {
		return nil, err
	}
	t.metrics.AddOverapproximated(stats.Overapproximated)

	t.step("reorder", func() {
		out, _ = causal.Reorder(out, t.opts)
	})

	out.NameVariables()
	if err := out.Validate(); err != nil {
		return nil, errors.Wrap(err, "translated task is inconsistent")
	}
	t.metrics.SetTaskSize(len(out.Variables), len(out.Operators), len(out.Axioms), len(out.Mutexes), stats.Layers)
	t.logger.WithFields(logrus.Fields{
		"variables": len(out.Variables),
		"operators": len(out.Operators),
		"axioms":    len(out.Axioms),
		"layers":    stats.Layers,
	}).Info("translation done")
	return out, nil
}

func (t *Translator) unsolvable(metric bool, reason string) (*sas.Task, error) {
	t.logger.WithField("reason", reason).Info("writing unsolvable task")
	task := sas.Unsolvable(metric)
	t.metrics.SetTaskSize(len(task.Variables), len(task.Operators), len(task.Axioms), len(task.Mutexes), 0)
	return task, nil
}

// Run loads the lifted task from domainPath and taskPath, translates it and
// writes the result to the configured task file. With DumpTask set a
// readable dump goes to stdout; with MetricsFile set the run's metrics are
// written as well, even if the translation failed.
func (t *Translator) Run(ctx context.Context, domainPath, taskPath string, stdout io.Writer) (err error) {
	if t.opts.MetricsFile != "" {
		defer func() {
			if werr := t.metrics.WriteToTextfile(t.opts.MetricsFile); werr != nil && err == nil {
				err = werr
			}
		}()
	}

	var source *lifted.Task
	err = t.stage("load", func() error {
		var err error
		source, err = lifted.Load(domainPath, taskPath)
		return errors.Wrap(err, "loading lifted task")
	})
	if err != nil {
		return err
	}

	task, err := t.Translate(ctx, source)
	if err != nil {
		return err
	}

	err = t.stage("write", func() error {
		return sas.WriteFile(t.opts.SASFile, task)
	})
	if err != nil {
		return err
	}
	t.logger.WithField("path", t.opts.SASFile).Info("task written")

	if t.opts.DumpTask {
		if err := task.Dump(stdout); err != nil {
			return errors.Wrap(err, "dumping task")
		}
	}
	return nil
}
