package translate

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/translator/pkg/api/lifted"
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/axioms"
	"github.com/planforge/translator/pkg/translate/encode"
	"github.com/planforge/translator/pkg/translate/ground"
	"github.com/planforge/translator/pkg/translate/internal/testtask"
	"github.com/planforge/translator/pkg/translate/sas"
)

func translator(t *testing.T, modify func(*config.Options)) (*Translator, *test.Hook) {
	opts := config.Default()
	if modify != nil {
		modify(&opts)
	}
	logger, hook := test.NewNullLogger()
	tr, err := New(logger, opts, nil)
	require.NoError(t, err)
	return tr, hook
}

func text(t *testing.T, task *sas.Task) string {
	var buf bytes.Buffer
	_, err := task.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestTranslateToggle(t *testing.T) {
	tr, hook := translator(t, nil)
	task, err := tr.Translate(context.Background(), testtask.Toggle())
	require.NoError(t, err)
	require.NoError(t, task.Validate())

	require.Len(t, task.Variables, 1)
	assert.Equal(t, "var0", task.Variables[0].Name)
	assert.Equal(t, []string{"Atom at(x)", "Atom at(y)"}, task.Variables[0].Values)
	assert.Equal(t, []int{0}, task.Init)
	assert.Equal(t, []sas.Fact{{Var: 0, Value: 1}}, task.Goal)
	assert.Len(t, task.Operators, 2)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "translation done", last.Message)
	assert.Equal(t, logrus.InfoLevel, last.Level)
}

func TestTranslateDeterministic(t *testing.T) {
	var outputs []string
	for _, workers := range []int{1, 2, 8} {
		workers := workers
		tr, _ := translator(t, func(o *config.Options) { o.InvariantWorkers = workers })
		task, err := tr.Translate(context.Background(), testtask.Gripper(2))
		require.NoError(t, err)
		outputs = append(outputs, text(t, task))
	}
	for _, out := range outputs[1:] {
		if diff := cmp.Diff(outputs[0], out); diff != "" {
			t.Errorf("output depends on worker count (-first +other):\n%s", diff)
		}
	}
}

func TestTranslateWithoutInvariants(t *testing.T) {
	tr, _ := translator(t, func(o *config.Options) { o.InvariantMaxCandidates = 0 })
	task, err := tr.Translate(context.Background(), testtask.Gripper(1))
	require.NoError(t, err)
	require.NoError(t, task.Validate())

	assert.Empty(t, task.Mutexes)
	for _, v := range task.Variables {
		assert.Len(t, v.Values, 2, v.Name)
	}
}

func TestTranslateUnreachableGoal(t *testing.T) {
	source := testtask.Shuttle("a", "b", "c")
	// drop the road from b to c
	source.Problem.Init = source.Problem.Init[:len(source.Problem.Init)-1]

	tr, hook := translator(t, nil)
	task, err := tr.Translate(context.Background(), source)
	require.NoError(t, err)
	if diff := cmp.Diff(sas.Unsolvable(true), task); diff != "" {
		t.Errorf("unexpected task (-want +got):\n%s", diff)
	}

	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "writing unsolvable task" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTranslatePreservesShortestPlans(t *testing.T) {
	sources := map[string]func() *lifted.Task{
		"toggle":         testtask.Toggle,
		"shuttle":        func() *lifted.Task { return testtask.Shuttle("a", "b", "c") },
		"gripper":        func() *lifted.Task { return testtask.Gripper(2) },
		"keepsake":       testtask.Keepsake,
		"keepsake spare": testtask.KeepsakeWithSpare,
		"no road": func() *lifted.Task {
			source := testtask.Shuttle("a", "b", "c")
			source.Problem.Init = source.Problem.Init[:len(source.Problem.Init)-1]
			return source
		},
	}
	for _, tt := range []struct {
		Name   string
		Modify func(*config.Options)
	}{
		{Name: "default", Modify: func(*config.Options) {}},
		{Name: "full encoding", Modify: func(o *config.Options) { o.Encoding = config.EncodingFull }},
		{Name: "implied preconditions", Modify: func(o *config.Options) { o.AddImpliedPreconditions = true }},
		{Name: "keep unimportant variables", Modify: func(o *config.Options) { o.FilterUnimportantVariables = false }},
		{Name: "skip reordering", Modify: func(o *config.Options) { o.ReorderVariables = false }},
	} {
		for name, source := range sources {
			t.Run(tt.Name+"/"+name, func(t *testing.T) {
				opts := config.Default()
				tt.Modify(&opts)
				grounded, err := ground.Ground(source(), opts)
				require.NoError(t, err)

				tr, _ := translator(t, tt.Modify)
				task, err := tr.Translate(context.Background(), source())
				require.NoError(t, err)
				require.NoError(t, task.Validate())

				assert.Equal(t, testtask.ShortestPlan(grounded), testtask.ShortestSASPlan(task))
			})
		}
	}
}

func TestTranslateNegativeCycle(t *testing.T) {
	for _, tt := range []struct {
		Name   string
		Policy config.NegatedAxiomPolicy
		Error  bool
	}{
		{Name: "none", Policy: config.NegatedAxiomsNone, Error: true},
		{Name: "cycles", Policy: config.NegatedAxiomsCycles},
		{Name: "all", Policy: config.NegatedAxiomsAll},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			tr, _ := translator(t, func(o *config.Options) { o.NegatedAxioms = tt.Policy })
			task, err := tr.Translate(context.Background(), testtask.NegativeCycle())
			if !tt.Error {
				require.NoError(t, err)
				require.NoError(t, task.Validate())
				return
			}
			require.Error(t, err)
			assert.IsType(t, axioms.UnstratifiableError{}, errors.Cause(err))
			assert.True(t, IsConfigurationError(err))
			assert.False(t, IsInputError(err))
			assert.Equal(t, ExitConfigurationError, ExitCode(err))
		})
	}
}

func TestTranslateUnsupportedGoal(t *testing.T) {
	source := testtask.Shuttle("a", "b", "c")
	source.Problem.Goal = []lifted.Literal{lifted.Neg("at", "truck", "b")}

	tr, _ := translator(t, nil)
	_, err := tr.Translate(context.Background(), source)
	require.Error(t, err)
	assert.IsType(t, encode.UnsupportedGoalError{}, errors.Cause(err))
	assert.Equal(t, ExitInputError, ExitCode(err))
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	opts := config.Default()
	opts.InvariantWorkers = 0
	logger, _ := test.NewNullLogger()
	_, err := New(logger, opts, nil)
	require.Error(t, err)
	assert.Equal(t, ExitConfigurationError, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	for _, tt := range []struct {
		Name     string
		Err      error
		Expected int
	}{
		{Name: "nil", Err: nil, Expected: ExitSuccess},
		{Name: "io", Err: errors.Wrap(errors.New("disk full"), "writing output.sas"), Expected: ExitCritical},
		{Name: "validation", Err: errors.Wrap(lifted.ValidationError{Problems: []string{"x"}}, "loading lifted task"), Expected: ExitInputError},
		{Name: "unsupported goal", Err: encode.UnsupportedGoalError{Atom: "at(b)"}, Expected: ExitInputError},
		{Name: "option", Err: config.InvalidOptionError{Option: "encoding", Reason: "unknown"}, Expected: ExitConfigurationError},
		{Name: "unstratifiable", Err: errors.Wrap(axioms.UnstratifiableError{Cycle: []string{"a", "b", "a"}}, "stratifying axioms"), Expected: ExitConfigurationError},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, ExitCode(tt.Err))
		})
	}
}

func writeLifted(t *testing.T, dir string, source *lifted.Task) (string, string) {
	domain, err := yaml.Marshal(source.Domain)
	require.NoError(t, err)
	problem, err := yaml.Marshal(source.Problem)
	require.NoError(t, err)

	domainPath := filepath.Join(dir, "domain.yaml")
	taskPath := filepath.Join(dir, "task.yaml")
	require.NoError(t, ioutil.WriteFile(domainPath, domain, 0644))
	require.NoError(t, ioutil.WriteFile(taskPath, problem, 0644))
	return domainPath, taskPath
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	domainPath, taskPath := writeLifted(t, dir, testtask.Toggle())

	tr, _ := translator(t, func(o *config.Options) {
		o.SASFile = filepath.Join(dir, "out.sas")
		o.MetricsFile = filepath.Join(dir, "metrics.prom")
		o.DumpTask = true
	})
	var stdout bytes.Buffer
	require.NoError(t, tr.Run(context.Background(), domainPath, taskPath, &stdout))

	written, err := ioutil.ReadFile(filepath.Join(dir, "out.sas"))
	require.NoError(t, err)
	expected, err := tr.Translate(context.Background(), testtask.Toggle())
	require.NoError(t, err)
	assert.Equal(t, text(t, expected), string(written))
	assert.Contains(t, stdout.String(), "var0")

	metricsText, err := ioutil.ReadFile(filepath.Join(dir, "metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), `stage="write"`)
	for _, stage := range []string{"reach", "relevance", "reorder"} {
		assert.Contains(t, string(metricsText), `translator_stage_duration_seconds_count{outcome="succeeded",stage="`+stage+`"} 1`)
	}
}

func TestRunInvalidInput(t *testing.T) {
	dir := t.TempDir()
	source := testtask.Toggle()
	source.Problem.Init = append(source.Problem.Init, lifted.Atom{Predicate: "undeclared"})
	domainPath, taskPath := writeLifted(t, dir, source)

	tr, _ := translator(t, func(o *config.Options) { o.SASFile = filepath.Join(dir, "out.sas") })
	err := tr.Run(context.Background(), domainPath, taskPath, ioutil.Discard)
	require.Error(t, err)
	assert.True(t, IsInputError(err))
	assert.NoFileExists(t, filepath.Join(dir, "out.sas"))
}

func TestRunMissingFile(t *testing.T) {
	dir := t.TempDir()
	tr, _ := translator(t, func(o *config.Options) { o.SASFile = filepath.Join(dir, "out.sas") })
	err := tr.Run(context.Background(), filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "nope.yaml"), ioutil.Discard)
	require.Error(t, err)
	assert.Equal(t, ExitCritical, ExitCode(err))
}
