package translate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	failure = time.Duration(0)
	success = time.Duration(1)
)

func TestInstrumentedStageFailure(t *testing.T) {
	result := []time.Duration{}

	changeToFailure := func(num time.Duration) {
		result = append(result, failure)
	}

	changeToSuccess := func(num time.Duration) {
		result = append(result, success)
	}

	stage := NewInstrumentedStage("fake", changeToSuccess, changeToFailure)
	err := stage.Run(func() error { return errors.New("Fake error") })
	require.EqualError(t, err, "Fake error")
	require.Equal(t, len(result), 1)     // check that only one call was made to a change function
	require.Equal(t, result[0], failure) // check that the call was made to changeToFailure function
}

func TestInstrumentedStageSuccess(t *testing.T) {
	result := []time.Duration{}

	changeToFailure := func(num time.Duration) {
		result = append(result, failure)
	}

	changeToSuccess := func(num time.Duration) {
		result = append(result, success)
	}

	stage := NewInstrumentedStage("fake", changeToSuccess, changeToFailure)
	require.NoError(t, stage.Run(func() error { return nil }))
	require.Equal(t, len(result), 1)     // check that only one call was made to a change function
	require.Equal(t, result[0], success) // check that the call was made to changeToSuccess function
	require.Equal(t, "fake", stage.Name())
}

func TestInstrumentedStageDo(t *testing.T) {
	result := []time.Duration{}

	changeToFailure := func(num time.Duration) {
		result = append(result, failure)
	}

	changeToSuccess := func(num time.Duration) {
		result = append(result, success)
	}

	ran := false
	stage := NewInstrumentedStage("fake", changeToSuccess, changeToFailure)
	stage.Do(func() { ran = true })
	require.True(t, ran)
	require.Equal(t, []time.Duration{success}, result)
}
