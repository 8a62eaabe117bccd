package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ApplyFile overlays values from a YAML file onto an already-populated
// config struct. Only keys present in the file are touched, so environment
// defaults survive a partial overlay. Missing files are an error; callers
// that treat the overlay as optional should stat the path first.
func ApplyFile[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingFile, err)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Join(ErrReadingFile, err)
	}

	return nil
}
