package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML section names.
const (
	keyServer  = "server"
	keyMap     = "map"
	keyCache   = "cache"
	keyLogging = "logging"
)

// ShallowMergeYAML loads a YAML file and merges its top-level sections
// onto the target. Fields present in the file replace the target's;
// absent fields keep their current values. Unknown sections are ignored
// so newer files keep working with older binaries.
func ShallowMergeYAML(target *Config, path string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var overlay map[string]any
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing config YAML from %s: %w", path, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		// Re-marshal the single section so it can be unmarshalled onto
		// the strongly typed field, seeded with the current values so
		// omitted fields survive.
		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling config section %q: %w", key, marshalErr)
		}
		if err = applySection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying config section %q: %w", key, err)
		}
	}
	return nil
}

func applySection(target *Config, key string, data []byte) error {
	switch key {
	case keyServer:
		v := target.Server
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Server = v
		return nil
	case keyMap:
		v := target.Map
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Map = v
		return nil
	case keyCache:
		v := target.Cache
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Cache = v
		return nil
	case keyLogging:
		v := target.Logging
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Logging = v
		return nil
	default:
		return nil
	}
}
