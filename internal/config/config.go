// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; command-line flags win over file values.
type Config struct {
	// Inputs
	CV     string `json:"cv,omitempty"`      // Path to the résumé (PDF, DOCX or text)
	Job    string `json:"job,omitempty"`     // Path to job posting text or HTML file
	JobURL string `json:"job_url,omitempty"` // URL to fetch job posting from

	// Taxonomy
	SkillsPath    string `json:"skills_path,omitempty"`    // skills database file (JSON or YAML)
	KeywordsPath  string `json:"keywords_path,omitempty"`  // keywords file (JSON or YAML)
	TaxonomyDB    string `json:"taxonomy_db,omitempty"`    // PostgreSQL URL of a stored taxonomy
	TaxonomyName  string `json:"taxonomy_name,omitempty"`  // name of the stored taxonomy
	StrictLoading bool   `json:"strict_loading,omitempty"` // fail instead of running with an empty taxonomy

	// Output
	Language string `json:"language,omitempty"` // report language, e.g. "en" or "es"
	Format   string `json:"format,omitempty"`   // "json" or "text"

	// Behavior
	UseBrowser bool   `json:"use_browser,omitempty"` // Use headless browser for SPA sites
	Workers    int    `json:"workers,omitempty"`     // batch parallelism
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed debug information
	LogLevel   string `json:"log_level,omitempty"`
}

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Required inputs
// are checked by each command after merging with flags.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	switch c.Format {
	case "", FormatJSON, FormatText:
	default:
		return fmt.Errorf("config error: 'format' must be %q or %q, got %q", FormatJSON, FormatText, c.Format)
	}
	if c.Language != "" {
		if _, err := language.Parse(c.Language); err != nil {
			return fmt.Errorf("config error: invalid 'language' %q: %w", c.Language, err)
		}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for field, path := range map[string]string{
		"cv":            c.CV,
		"job":           c.Job,
		"skills_path":   c.SkillsPath,
		"keywords_path": c.KeywordsPath,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config error: %s file not found: %s", field, path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	strs := []struct {
		dst *string
		def string
	}{
		{&result.CV, defaults.CV},
		{&result.Job, defaults.Job},
		{&result.JobURL, defaults.JobURL},
		{&result.SkillsPath, defaults.SkillsPath},
		{&result.KeywordsPath, defaults.KeywordsPath},
		{&result.TaxonomyDB, defaults.TaxonomyDB},
		{&result.TaxonomyName, defaults.TaxonomyName},
		{&result.Language, defaults.Language},
		{&result.Format, defaults.Format},
		{&result.LogLevel, defaults.LogLevel},
	}
	for _, s := range strs {
		if *s.dst == "" {
			*s.dst = s.def
		}
	}

	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Bools cannot distinguish unset from false; flags always win for them.
	return result
}
