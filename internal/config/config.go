// Package config handles alfredwf config file parsing and location resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adamancini/alfredwf/env"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "ALFREDWF_CONFIG"

// fileNames are the config file names looked up in the workflow directory.
var fileNames = []string{
	"alfredwf.toml",
	"alfredwf.yaml",
	"alfredwf.yml",
	"alfredwf.json",
}

// UpdateConfig describes where releases are published.
type UpdateConfig struct {
	Repo     string `yaml:"repo" toml:"repo" json:"repo"`                                  // GitHub owner/name
	Interval *int64 `yaml:"interval,omitempty" toml:"interval,omitempty" json:"interval,omitempty"` // Seconds between checks
	APIURL   string `yaml:"api_url,omitempty" toml:"api_url,omitempty" json:"api_url,omitempty"`    // GitHub-compatible API base
	Token    string `yaml:"token,omitempty" toml:"token,omitempty" json:"token,omitempty"`          // Optional bearer token
}

// WorkflowConfig overrides values Alfred normally provides through the
// environment. Handy when running a workflow script outside Alfred.
type WorkflowConfig struct {
	UID      string `yaml:"uid,omitempty" toml:"uid,omitempty" json:"uid,omitempty"`
	Name     string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Version  string `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty"`
	DataDir  string `yaml:"data_dir,omitempty" toml:"data_dir,omitempty" json:"data_dir,omitempty"`
	CacheDir string `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
	BundleID string `yaml:"bundle_id,omitempty" toml:"bundle_id,omitempty" json:"bundle_id,omitempty"`
	Debug    *bool  `yaml:"debug,omitempty" toml:"debug,omitempty" json:"debug,omitempty"`
}

// Config represents the parsed configuration file.
type Config struct {
	Update   UpdateConfig   `yaml:"update" toml:"update" json:"update"`
	Workflow WorkflowConfig `yaml:"workflow" toml:"workflow" json:"workflow"`

	// Path is where the config was loaded from; empty for defaults.
	Path string `yaml:"-" toml:"-" json:"-"`
}

// Provider returns the workflow overrides as an env.Provider. Only the fields
// that are set are reported.
func (c *Config) Provider() env.Provider {
	m := env.Map{}
	set := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	w := c.Workflow
	set(env.KeyWorkflowUID, w.UID)
	set(env.KeyWorkflowName, w.Name)
	set(env.KeyWorkflowVersion, w.Version)
	set(env.KeyWorkflowData, w.DataDir)
	set(env.KeyWorkflowCache, w.CacheDir)
	set(env.KeyWorkflowBundleID, w.BundleID)
	if w.Debug != nil {
		if *w.Debug {
			m[env.KeyDebug] = "1"
		} else {
			m[env.KeyDebug] = "0"
		}
	}
	return m
}

// Environment layers the file's workflow overrides over fallback.
func (c *Config) Environment(fallback env.Provider) env.Provider {
	return env.Layered{c.Provider(), fallback}
}

// IntervalString renders the configured interval for display.
func (c *Config) IntervalString() string {
	if c.Update.Interval == nil {
		return "default"
	}
	return strconv.FormatInt(*c.Update.Interval, 10) + "s"
}

// Find searches for a config file.
// Order: explicit path, $ALFREDWF_CONFIG as seen by p, then the file names
// above in dir. A nil p reads the process environment.
// Returns "" with no error when nothing is found; the config file is optional.
func Find(explicitPath, dir string, p env.Provider) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath, _ := providerOrOS(p).Lookup(EnvConfigPath); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s points to missing file: %s", EnvConfigPath, envPath)
		}
		return envPath, nil
	}

	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// Load reads, parses and validates the config at path. ${VAR} references are
// expanded from p.
func Load(path string, p env.Provider) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	cfg, err := parse(content, format, p)
	if err != nil {
		return nil, err
	}
	cfg.Path = path

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Resolve finds and loads the config, returning an empty config when no
// file exists.
func Resolve(explicitPath, dir string, p env.Provider) (*Config, error) {
	path, err := Find(explicitPath, dir, p)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &Config{}, nil
	}
	return Load(path, p)
}
