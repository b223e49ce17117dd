package version

import (
	"fmt"

	"github.com/blang/semver/v4"
)

// TranslatorVersion indicates what version of the translator the binary belongs to
var TranslatorVersion = "0.1.0"

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// Semver parses TranslatorVersion. A leading "v" is accepted.
func Semver() (semver.Version, error) {
	return semver.ParseTolerant(TranslatorVersion)
}

// String returns a pretty string concatenation of TranslatorVersion and GitCommit
func String() string {
	v := TranslatorVersion
	if parsed, err := Semver(); err == nil {
		v = parsed.String()
	}
	commit := GitCommit
	if commit == "" {
		commit = "unknown"
	}
	return fmt.Sprintf("Translator Version: %s\n Git commit: %s\n", v, commit)
}
