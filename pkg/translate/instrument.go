package translate

import (
	"time"
)

// InstrumentedStage reports the duration of every run of a pipeline stage to
// one of two emitters, depending on whether the stage failed.
type InstrumentedStage struct {
	name                  string
	successMetricsEmitter func(time.Duration)
	failureMetricsEmitter func(time.Duration)
}

func NewInstrumentedStage(name string, successMetricsEmitter func(time.Duration), failureMetricsEmitter func(time.Duration)) *InstrumentedStage {
	return &InstrumentedStage{
		name:                  name,
		successMetricsEmitter: successMetricsEmitter,
		failureMetricsEmitter: failureMetricsEmitter,
	}
}

func (s *InstrumentedStage) Name() string {
	return s.name
}

func (s *InstrumentedStage) Run(fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		s.failureMetricsEmitter(time.Since(start))
	} else {
		s.successMetricsEmitter(time.Since(start))
	}
	return err
}

// Do runs a stage that cannot fail and reports its duration as a success.
func (s *InstrumentedStage) Do(fn func()) {
	start := time.Now()
	fn()
	s.successMetricsEmitter(time.Since(start))
}
