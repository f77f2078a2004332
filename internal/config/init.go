package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// starterHeader is prepended to generated config files.
const starterHeader = `# droughtwatch configuration.
# Every field is optional; omitted fields keep their built-in defaults.
# Environment variables (DROUGHTWATCH_*) override values from this file.
`

// WriteStarter writes a config file populated with the defaults to
// path, creating parent directories as needed. It refuses to overwrite
// unless force is set.
func WriteStarter(path string, force bool) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("no config path given and home directory unknown")
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file %s already exists, use --force to overwrite", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	body, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("render default configuration: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(starterHeader), body...), 0o600); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}
	return nil
}
