package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	opts := Default()
	require.NoError(t, opts.Validate())
	assert.Equal(t, EncodingPartial, opts.Encoding)
	assert.Equal(t, 100000, opts.InvariantMaxCandidates)
	assert.Equal(t, 300*time.Second, opts.InvariantMaxTime)
	assert.Equal(t, "output.sas", opts.SASFile)
	assert.True(t, opts.FilterUnreachableFacts)
	assert.True(t, opts.ReorderVariables)
	assert.True(t, opts.FilterUnimportantVariables)
	assert.Equal(t, NegatedAxiomsCycles, opts.NegatedAxioms)
	assert.Equal(t, LayerStrategyMin, opts.LayerStrategy)
	assert.Equal(t, NecessaryLiteralsExact, opts.NecessaryLiterals)
}

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		Name   string
		Mutate func(*Options)
		Option string
	}{
		{
			Name:   "negative candidates",
			Mutate: func(o *Options) { o.InvariantMaxCandidates = -1 },
			Option: "invariant-generation-max-candidates",
		},
		{
			Name:   "negative time",
			Mutate: func(o *Options) { o.InvariantMaxTime = -time.Second },
			Option: "invariant-generation-max-time",
		},
		{
			Name:   "no workers",
			Mutate: func(o *Options) { o.InvariantWorkers = 0 },
			Option: "invariant-generation-workers",
		},
		{
			Name:   "empty output",
			Mutate: func(o *Options) { o.SASFile = "" },
			Option: "sas-file",
		},
		{
			Name:   "out of range layer strategy",
			Mutate: func(o *Options) { o.LayerStrategy = LayerStrategy(7) },
			Option: "layer_strategy",
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			opts := Default()
			tt.Mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			ierr, ok := err.(InvalidOptionError)
			require.True(t, ok)
			assert.Equal(t, tt.Option, ierr.Option)
		})
	}
}

func TestEffectiveNegatedAxiomPolicy(t *testing.T) {
	opts := Default()
	opts.NegatedAxioms = NegatedAxiomsNone
	assert.Equal(t, NegatedAxiomsNone, opts.EffectiveNegatedAxiomPolicy())

	opts.OverapproximateAxioms = true
	assert.Equal(t, NegatedAxiomsAll, opts.EffectiveNegatedAxiomPolicy())
}

func TestEnumFlags(t *testing.T) {
	var (
		layers    LayerStrategy
		negated   = NegatedAxiomsCycles
		necessary NecessaryLiteralPolicy
	)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&layers, "layer_strategy", "")
	fs.Var(&negated, "overapproximate_negated_axioms", "")
	fs.Var(&necessary, "overapproximate_necessary_literals", "")

	require.NoError(t, fs.Parse([]string{
		"--layer_strategy=max",
		"--overapproximate_negated_axioms", "none",
		"--overapproximate_necessary_literals=non-derived",
	}))
	assert.Equal(t, LayerStrategyMax, layers)
	assert.Equal(t, NegatedAxiomsNone, negated)
	assert.Equal(t, NecessaryLiteralsNonDerived, necessary)

	err := fs.Parse([]string{"--layer_strategy=middle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid layer strategy "middle"`)
}

func TestDecode(t *testing.T) {
	opts, err := Decode([]byte(`
relaxed: true
encoding: full
invariant-generation-max-candidates: 10
invariant-generation-max-time: 5
layer-strategy: max
overapproximate-negated-axioms: all
filter-unreachable-facts: false
`), Default())
	require.NoError(t, err)
	assert.True(t, opts.Relaxed)
	assert.Equal(t, EncodingFull, opts.Encoding)
	assert.Equal(t, 10, opts.InvariantMaxCandidates)
	assert.Equal(t, 5*time.Second, opts.InvariantMaxTime)
	assert.Equal(t, LayerStrategyMax, opts.LayerStrategy)
	assert.Equal(t, NegatedAxiomsAll, opts.NegatedAxioms)
	assert.False(t, opts.FilterUnreachableFacts)
	// untouched keys keep the base value
	assert.Equal(t, "output.sas", opts.SASFile)
	assert.True(t, opts.ReorderVariables)

	opts, err = Decode([]byte(`invariant-generation-max-time: 1m30s`), Default())
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, opts.InvariantMaxTime)

	for _, bad := range []string{
		"layer-strategy: sideways",
		"no-such-option: true",
		"relaxed: [",
	} {
		_, err := Decode([]byte(bad), Default())
		require.Error(t, err, bad)
		_, ok := err.(InvalidOptionError)
		assert.True(t, ok, bad)
	}
}

func TestLoadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "translate.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("sas-file: custom.sas\n"), 0644))

	opts, err := LoadFile(path, Default())
	require.NoError(t, err)
	assert.Equal(t, "custom.sas", opts.SASFile)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"), Default())
	require.Error(t, err)
}
