package lifted

import (
	"io/ioutil"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// Load reads the parser's domain and problem documents (YAML or JSON) and
// returns the validated lifted task.
func Load(domainPath, problemPath string) (*Task, error) {
	domainBytes, err := ioutil.ReadFile(domainPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading domain file %s", domainPath)
	}
	problemBytes, err := ioutil.ReadFile(problemPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading task file %s", problemPath)
	}
	return Parse(domainBytes, problemBytes)
}

// Parse decodes domain and problem documents and validates the result.
func Parse(domainBytes, problemBytes []byte) (*Task, error) {
	task := &Task{}
	if err := yaml.Unmarshal(domainBytes, &task.Domain); err != nil {
		return nil, ValidationError{Problems: []string{"decoding domain: " + err.Error()}}
	}
	if err := yaml.Unmarshal(problemBytes, &task.Problem); err != nil {
		return nil, ValidationError{Problems: []string{"decoding task: " + err.Error()}}
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}
