package translate

import (
	"github.com/pkg/errors"

	"github.com/planforge/translator/pkg/api/lifted"
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/axioms"
	"github.com/planforge/translator/pkg/translate/encode"
)

// Exit codes of the translate command.
const (
	ExitSuccess            = 0
	ExitCritical           = 30
	ExitInputError         = 31
	ExitConfigurationError = 32
)

// IsConfigurationError reports whether err was caused by options that cannot
// be honored for the given task.
func IsConfigurationError(err error) bool {
	switch errors.Cause(err).(type) {
	case config.InvalidOptionError, axioms.UnstratifiableError:
		return true
	}
	return false
}

// IsInputError reports whether err was caused by a malformed or unsupported
// lifted task.
func IsInputError(err error) bool {
	switch errors.Cause(err).(type) {
	case lifted.ValidationError, encode.UnsupportedGoalError:
		return true
	}
	return false
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case IsConfigurationError(err):
		return ExitConfigurationError
	case IsInputError(err):
		return ExitInputError
	default:
		return ExitCritical
	}
}
