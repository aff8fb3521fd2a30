// Package configuration implements the registry's configuration
// surface: a YAML-tagged struct naming the storage driver, the
// render log backend, and the pdf-persist flag, with an opaque
// Parameters map per driver.
package configuration

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Parameters is an arbitrary bag of driver-specific options (storage
// endpoints, credentials, bucket names, database paths), passed
// through to whichever driver constructor consumes them.
type Parameters map[string]any

// DriverConfig names one driver by its registered key plus its
// parameters, e.g. `name: filesystem` + `parameters: {root: /data}`.
type DriverConfig struct {
	Name       string     `yaml:"name"`
	Parameters Parameters `yaml:"parameters,omitempty"`
}

// Configuration is the registry's top-level, YAML-tagged
// configuration. Field names avoid '_' since that's the separator
// environment variable overrides would use.
type Configuration struct {
	// Storage configures the blob store driver backing blobs/,
	// manifests/, and refs/.
	Storage DriverConfig `yaml:"storage"`

	// RenderLog configures the render tracking store's backend.
	RenderLog DriverConfig `yaml:"renderlog"`

	// PDFPersist turns on persisting rendered PDFs under pdfs/
	// during render orchestration. Default off.
	PDFPersist bool `yaml:"pdf-persist"`
}

// String returns a parameter's value coerced to string, or the empty
// string if absent or not a string.
func (p Parameters) String(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Default returns the configuration used when no config file is
// given: an in-memory storage driver, an in-memory render log, and
// pdf-persist off.
func Default() *Configuration {
	return &Configuration{
		Storage:   DriverConfig{Name: "inmemory"},
		RenderLog: DriverConfig{Name: "memory"},
	}
}

// Parse decodes a YAML configuration document.
func Parse(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("configuration: parsing YAML: %w", err)
	}
	if cfg.Storage.Name == "" {
		cfg.Storage.Name = "inmemory"
	}
	if cfg.RenderLog.Name == "" {
		cfg.RenderLog.Name = "memory"
	}
	return &cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configuration: reading %s: %w", path, err)
	}
	return Parse(data)
}

// RenderYAML formats the configuration back to YAML, used by
// cmd/registry's --print-config to show the effective configuration.
func (c *Configuration) RenderYAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}
