package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	configAPIVersion = "console.scanner/v1"
	configKind       = "Config"
	configDir        = ".scanner-console"
	configFile       = "config.yaml"
)

// errNoConfig is returned when no context file exists yet.
var errNoConfig = errors.New("no config found; run 'console-admin config set-context'")

// Config is the CLI context file.
type Config struct {
	APIVersion     string         `yaml:"apiVersion" json:"apiVersion"`
	Kind           string         `yaml:"kind" json:"kind"`
	CurrentContext string         `yaml:"current-context" json:"current-context"`
	Contexts       []NamedContext `yaml:"contexts" json:"contexts"`
}

// NamedContext is one named connection.
type NamedContext struct {
	Name    string        `yaml:"name" json:"name"`
	Context ContextDetail `yaml:"context" json:"context"`
}

// ContextDetail is where the scanning API lives and how to authenticate.
type ContextDetail struct {
	APIURL       string `yaml:"api-url" json:"api-url"`
	APIToken     string `yaml:"api-token,omitempty" json:"api-token,omitempty"`
	APITokenFile string `yaml:"api-token-file,omitempty" json:"api-token-file,omitempty"`
}

// Token returns the inline token, or the trimmed contents of the token file.
// An unreadable file yields no token.
func (d ContextDetail) Token() string {
	if d.APIToken != "" || d.APITokenFile == "" {
		return d.APIToken
	}
	data, err := os.ReadFile(expandPath(d.APITokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// configPath honors CONSOLE_CONFIG, else ~/.scanner-console/config.yaml.
func configPath() string {
	if p := os.Getenv(envConfig); p != "" {
		return expandPath(p)
	}
	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, configDir, configFile)
}

func expandPath(p string) string {
	if expanded, err := homedir.Expand(p); err == nil {
		return expanded
	}
	return p
}

func loadConfig() (*Config, error) {
	path := configPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNoConfig
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// loadOrEmpty is loadConfig for commands that may create the file.
func loadOrEmpty() (*Config, error) {
	cfg, err := loadConfig()
	if errors.Is(err, errNoConfig) {
		return &Config{}, nil
	}
	return cfg, err
}

// saveConfig writes the file owner-only since it may hold tokens.
func saveConfig(cfg *Config) error {
	cfg.APIVersion = configAPIVersion
	cfg.Kind = configKind

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func (c *Config) index(name string) int {
	return slices.IndexFunc(c.Contexts, func(n NamedContext) bool { return n.Name == name })
}

// GetContext returns the named context, or nil.
func (c *Config) GetContext(name string) *NamedContext {
	if i := c.index(name); i >= 0 {
		return &c.Contexts[i]
	}
	return nil
}

// SetContext adds name or replaces its detail. The first context added
// becomes current.
func (c *Config) SetContext(name string, d ContextDetail) {
	if i := c.index(name); i >= 0 {
		c.Contexts[i].Context = d
	} else {
		c.Contexts = append(c.Contexts, NamedContext{Name: name, Context: d})
	}
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
}

// DeleteContext removes name and clears the current context if it pointed
// there. It reports whether name existed.
func (c *Config) DeleteContext(name string) bool {
	i := c.index(name)
	if i < 0 {
		return false
	}
	c.Contexts = slices.Delete(c.Contexts, i, i+1)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return true
}

// redacted is a copy safe to print.
func (c *Config) redacted() *Config {
	out := *c
	out.Contexts = slices.Clone(c.Contexts)
	for i := range out.Contexts {
		if out.Contexts[i].Context.APIToken != "" {
			out.Contexts[i].Context.APIToken = "REDACTED"
		}
	}
	return &out
}
