package runner

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/loader"
	"github.com/noise-conformance/noise-vectors-go/pkg/log"
)

// Config configures a harness run.
type Config struct {
	// Files are the vector files to process, in order.
	Files []string `yaml:"files"`

	// MaxMessages caps the number of scripted messages per vector.
	MaxMessages int `yaml:"max_messages"`

	// MaxMessageSize caps the decoded size of one payload or ciphertext.
	MaxMessageSize int `yaml:"max_message_size"`

	// Verbose enables skip diagnostics in text output.
	Verbose bool `yaml:"verbose"`

	// OutputFormat is "text" or "json".
	OutputFormat string `yaml:"output_format"`

	// ProtocolLog is the path of the CBOR event log, empty to disable.
	ProtocolLog string `yaml:"protocol_log"`

	// Output is where reports are written. Not settable from YAML;
	// defaults to stdout.
	Output io.Writer `yaml:"-"`

	// ProtocolLogger receives structured replay events. Overrides
	// ProtocolLog when set.
	ProtocolLogger log.Logger `yaml:"-"`
}

// DefaultConfig returns a config with the standard limits and text output.
func DefaultConfig() *Config {
	return &Config{
		MaxMessages:    loader.DefaultMaxMessages,
		MaxMessageSize: loader.DefaultMaxMessageSize,
		OutputFormat:   "text",
		Output:         os.Stdout,
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxMessages <= 0 {
		return fmt.Errorf("max_messages must be positive, got %d", c.MaxMessages)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("max_message_size must be positive, got %d", c.MaxMessageSize)
	}
	switch c.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	return nil
}

// limits returns the parsing limits the config describes.
func (c *Config) limits() loader.Limits {
	return loader.Limits{
		MaxMessages:    c.MaxMessages,
		MaxMessageSize: c.MaxMessageSize,
	}
}
