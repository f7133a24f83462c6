package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML config file over Defaults. Keys missing from the file
// keep their default value.
func LoadFile(path string) (Env, error) {
	env := Defaults()
	if path == "" {
		return env, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return env, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return env, nil
}
