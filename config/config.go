// Package config loads growth parameters from TOML or YAML files. Keys
// missing from a file keep their growth.DefaultParams value.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/o0olele/sctree-go/growth"
)

// ErrUnsupportedFormat is returned for file extensions other than .toml,
// .yaml and .yml.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%q", path)
}

// Load reads path onto the default parameters and validates the result.
func Load(path string) (growth.Params, error) {
	format, err := FormatOf(path)
	if err != nil {
		return growth.Params{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return growth.Params{}, errors.Wrap(err, "failed to read config")
	}
	params, err := Decode(data, format)
	if err != nil {
		return growth.Params{}, errors.Wrapf(err, "config %s", path)
	}
	return params, nil
}

// Decode parses data onto the default parameters. Unknown keys are errors.
func Decode(data []byte, format Format) (growth.Params, error) {
	params := growth.DefaultParams()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&params); err != nil {
			return growth.Params{}, errors.Wrap(err, "failed to decode toml")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document leaves the defaults in place
		if err := dec.Decode(&params); err != nil && !errors.Is(err, io.EOF) {
			return growth.Params{}, errors.Wrap(err, "failed to decode yaml")
		}
	default:
		return growth.Params{}, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err := params.Validate(); err != nil {
		return growth.Params{}, err
	}
	return params, nil
}

// Encode renders params in the given format.
func Encode(params growth.Params, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		data, err := toml.Marshal(params)
		return data, errors.Wrap(err, "failed to encode toml")
	case FormatYAML:
		data, err := yaml.Marshal(params)
		return data, errors.Wrap(err, "failed to encode yaml")
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
}

// Save writes params to path in the format its extension names.
func Save(path string, params growth.Params) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(params, format)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "failed to write config")
}
