// Package config provides YAML configuration parsing for sitecheck.
//
// This package enables running sitecheck as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
// JSON is accepted wherever YAML is, so a plain group mapping file such as
//
//	{"BBC": ["https://www.bbc.co.uk"], "Google": ["https://www.google.com"]}
//
// can be used directly via groups_file or [LoadGroups].
//
// Example configuration:
//
//	title: Site Status
//	port: 8080
//	refresh_interval: 60s
//	check_timeout: 10s
//
//	groups:
//	  BBC:
//	    - https://www.bbc.co.uk
//	    - ${BBC_EXTRA_URL:-https://www.bbc.co.uk/404}
//	  Google:
//	    - https://www.google.com
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/sitecheck/registry"
)

const (
	defaultTitle           = "Site Status"
	defaultPort            = 8080
	defaultRefreshInterval = 60 * time.Second
	defaultCheckTimeout    = 10 * time.Second
	defaultMaxConcurrency  = 10

	// minRefreshInterval prevents accidental hammering of the checked sites.
	minRefreshInterval = 1 * time.Second
	minCheckTimeout    = 100 * time.Millisecond
)

// Config is the root configuration structure for sitecheck.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is shown on the status pages. Defaults to "Site Status".
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// RefreshInterval is the time between sweeps.
	// Accepts duration strings like "60s" or "5m", or integer seconds.
	// Defaults to 60s.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// CheckTimeout bounds a single URL check. Defaults to 10s.
	CheckTimeout Duration `yaml:"check_timeout"`

	// MaxConcurrency caps how many URLs are checked at once. Defaults to 10.
	MaxConcurrency int `yaml:"max_concurrency"`

	// GroupsFile names a file holding a bare group mapping, resolved
	// relative to the configuration file. Its groups follow those in Groups.
	GroupsFile string `yaml:"groups_file"`

	// Groups maps group names to URLs, in document order.
	// URLs support environment variable substitution: ${VAR} or ${VAR:-default}
	Groups Groups `yaml:"groups"`
}

// Groups is an ordered group name to URL list mapping.
type Groups []registry.Group

// UnmarshalYAML implements yaml.Unmarshaler for Groups, keeping the
// mapping's key order.
func (g *Groups) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: groups must be a mapping of group name to url list", node.Line)
	}

	groups := make(Groups, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return fmt.Errorf("line %d: group name: %w", keyNode.Line, err)
		}

		var urls []string
		if err := valueNode.Decode(&urls); err != nil {
			return fmt.Errorf("line %d: group %q: urls must be a list of strings: %w", valueNode.Line, name, err)
		}

		groups = append(groups, registry.Group{Name: name, URLs: urls})
	}

	*g = groups
	return nil
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
// A bare integer is read as seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!int" {
		var secs int64
		if err := node.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// A relative groups_file is resolved against the directory of path.
// Returns an error if the file cannot be read, parsed or validated; a
// missing file yields an error wrapping [fs.ErrNotExist].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data, filepath.Dir(path))
}

// Parse parses YAML configuration data.
//
// Defaults are applied, environment variables are expanded in URLs, and
// the result is validated. A relative groups_file is resolved against the
// working directory.
func Parse(data []byte) (*Config, error) {
	return parse(data, "")
}

// LoadGroups reads a bare group mapping from a YAML or JSON file.
//
// Returns an error wrapping [fs.ErrNotExist] if the file does not exist,
// or a parse error if it is malformed. Group contents are not validated
// here; see [Config] validation and [registry.New].
func LoadGroups(path string) (Groups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups file: %w", err)
	}

	var groups Groups
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse groups file %s: %w", path, err)
	}
	return groups, nil
}

func parse(data []byte, baseDir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if cfg.GroupsFile != "" {
		path := cfg.GroupsFile
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		extra, err := LoadGroups(path)
		if err != nil {
			return nil, fmt.Errorf("groups_file: %w", err)
		}
		cfg.Groups = append(cfg.Groups, extra...)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = Duration(defaultRefreshInterval)
	}
	if c.CheckTimeout == 0 {
		c.CheckTimeout = Duration(defaultCheckTimeout)
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = defaultMaxConcurrency
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s", minRefreshInterval, c.RefreshInterval.Duration())
	}
	if c.CheckTimeout.Duration() < minCheckTimeout {
		return fmt.Errorf("check_timeout must be at least %s, got %s", minCheckTimeout, c.CheckTimeout.Duration())
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive, got %d", c.MaxConcurrency)
	}

	if len(c.Groups) == 0 {
		return errors.New("at least one group must be defined")
	}

	seen := make(map[string]struct{}, len(c.Groups))
	for i := range c.Groups {
		g := &c.Groups[i]

		if g.Name == "" {
			return fmt.Errorf("groups[%d]: name is required", i)
		}
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("groups[%s]: duplicate group name", g.Name)
		}
		seen[g.Name] = struct{}{}

		if len(g.URLs) == 0 {
			return fmt.Errorf("groups[%s]: at least one url is required", g.Name)
		}

		for j, raw := range g.URLs {
			if raw == "" {
				return fmt.Errorf("groups[%s][%d]: url is required", g.Name, j)
			}
			expanded, err := expandEnvVars(raw)
			if err != nil {
				return fmt.Errorf("groups[%s][%d]: %w", g.Name, j, err)
			}
			if err := validateURL(expanded); err != nil {
				return fmt.Errorf("groups[%s][%d]: %w", g.Name, j, err)
			}
			g.URLs[j] = expanded
		}
	}

	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme == "" {
		return errors.New("url must have a scheme (http:// or https://)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("url must have a host")
	}
	return nil
}
