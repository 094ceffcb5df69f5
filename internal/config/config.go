package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultIndent is the indentation of the editor's document buffer and the
// default for CLI output.
const DefaultIndent = "    "

// Config represents the complete configuration for jsonedit
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Server   ServerConfig   `yaml:"server"`
	Form     FormConfig     `yaml:"form"`
	Limits   LimitsConfig   `yaml:"limits"`
	Log      LogConfig      `yaml:"log"`
}

// DocumentConfig controls how the CLI writes documents. The editor keeps its
// buffer in DefaultIndent whatever Indent says.
type DocumentConfig struct {
	Indent string `yaml:"indent"`
}

// ServerConfig controls the HTTP editor
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ReadOnly bool   `yaml:"read_only"`
}

// FormConfig controls form rendering
type FormConfig struct {
	HumanizeLabels bool `yaml:"humanize_labels"`
}

// LimitsConfig bounds what a single edit may do to a document
type LimitsConfig struct {
	// MaxArrayPadding is the largest number of nulls a single write may
	// insert to reach an index past the end of an array. 0 disables the check.
	MaxArrayPadding int `yaml:"max_array_padding"`
}

// LogConfig controls logging
type LogConfig struct {
	// Log mode: SIMPLE, FULL.
	Mode string `yaml:"mode"`
	// Log level: DEBUG, INFO, WARN, ERROR.
	Level string `yaml:"level"`
	// Log filename, required by the FILE and MULTI sinks.
	Filename string `yaml:"filename"`
	// Log sink: CONSOLE, FILE, MULTI.
	Sink string `yaml:"sink"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Document: DocumentConfig{
			Indent: DefaultIndent,
		},
		Server: ServerConfig{
			Host:     "localhost",
			Port:     8080,
			ReadOnly: false,
		},
		Form: FormConfig{
			HumanizeLabels: false,
		},
		Limits: LimitsConfig{
			MaxArrayPadding: 10000,
		},
		Log: LogConfig{
			Mode:  "SIMPLE",
			Level: "WARN",
			Sink:  "CONSOLE",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonedit.yml", ".jsonedit.yaml", "jsonedit.yml", "jsonedit.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if strings.Trim(c.Document.Indent, " \t") != "" {
		return fmt.Errorf("document indent must contain only spaces or tabs, got %q", c.Document.Indent)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Limits.MaxArrayPadding < 0 {
		return fmt.Errorf("limits.max_array_padding must not be negative, got %d", c.Limits.MaxArrayPadding)
	}
	switch strings.ToUpper(c.Log.Sink) {
	case "FILE", "MULTI":
		if c.Log.Filename == "" {
			return fmt.Errorf("log sink %s requires log.filename", c.Log.Sink)
		}
	}
	return nil
}

// LoadConfigWithCLI loads config with CLI argument precedence.
// Empty or zero CLI values leave the file (or default) values in place.
func LoadConfigWithCLI(configPath, cliIndent string, cliPort int, cliReadOnly, cliDebug bool) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cliIndent != "" {
		cfg.Document.Indent = cliIndent
	}
	if cliPort != 0 {
		cfg.Server.Port = cliPort
	}
	// A read-only flag can only tighten the file setting
	if cliReadOnly {
		cfg.Server.ReadOnly = true
	}
	if cliDebug {
		cfg.Log.Level = "DEBUG"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
