package config

import (
	"io/ioutil"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/planforge/translator/pkg/lib/codec"
)

// LoadFile overlays the settings of a YAML config file onto base. Keys are the
// long flag names; unknown keys are rejected.
func LoadFile(path string, base Options) (Options, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return base, errors.Wrapf(err, "reading config file %s", path)
	}
	return Decode(data, base)
}

// Decode overlays YAML encoded settings onto base.
func Decode(data []byte, base Options) (Options, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return base, InvalidOptionError{Option: "config", Reason: err.Error()}
	}

	opts := base
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			codec.TextUnmarshalerHookFunc(),
			codec.SecondsDurationHookFunc(),
		),
		ErrorUnused: true,
		Result:      &opts,
	})
	if err != nil {
		return base, errors.Wrap(err, "creating config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return base, InvalidOptionError{Option: "config", Reason: err.Error()}
	}
	return opts, nil
}
