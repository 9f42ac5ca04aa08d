// config.go - Client configuration loaded from YAML

package kmgo

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/kinfkong/kmgo/mapping"
)

// Config holds everything needed to connect a Client.
type Config struct {
	URI              string `yaml:"uri"`
	Database         string `yaml:"database"`          // overrides the database in URI
	Mapping          string `yaml:"mapping"`           // bson, json, mgocompat; empty picks the highest priority
	IDGenerator      string `yaml:"id_generator"`      // objectid, uuid
	CollectionNaming string `yaml:"collection_naming"` // camel, snake, lower
	Timeout          string `yaml:"timeout"`
	RetryWrites      bool   `yaml:"retry_writes"`
	ReadPreference   string `yaml:"read_preference"`

	WriteConcern Safe          `yaml:"write_concern"`
	Logging      LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the client logger.
type LoggingConfig struct {
	Level             string `yaml:"level"`  // debug, info, warn, error
	Driver            bool   `yaml:"driver"` // forward driver command logs
	MaxDocumentLength uint   `yaml:"max_document_length"`
}

// DefaultConfig returns a config for a local server.
func DefaultConfig() *Config {
	return &Config{
		URI:              "mongodb://localhost:27017/test",
		IDGenerator:      "objectid",
		CollectionNaming: "camel",
		Timeout:          "10s",
		ReadPreference:   "primary",
		WriteConcern:     Safe{W: 1},
		Logging: LoggingConfig{
			Level:             "info",
			MaxDocumentLength: 1000,
		},
	}
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
// Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to read config")
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if uri := os.Getenv("KMGO_URI"); uri != "" {
		c.URI = uri
	} else if uri := os.Getenv("MONGODB_URL"); uri != "" {
		c.URI = uri
	}
	if db := os.Getenv("KMGO_DATABASE"); db != "" {
		c.Database = db
	}
	if m := os.Getenv("KMGO_MAPPING"); m != "" {
		c.Mapping = m
	}
	if level := os.Getenv("KMGO_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetTimeout returns the default operation timeout, 10s when unset or invalid.
func (c *Config) GetTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if c.URI == "" {
		return errors.New("uri is required")
	}
	if _, err := mapping.Builtin().Select(c.Mapping); err != nil {
		return err
	}
	if _, err := mapping.ParseIDGenerator(c.IDGenerator); err != nil {
		return err
	}
	if _, err := mapping.ParseNameStyle(c.CollectionNaming); err != nil {
		return err
	}
	if _, err := ParseMode(c.ReadPreference); err != nil {
		return err
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return errors.Wrapf(err, "invalid timeout %q", c.Timeout)
		}
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.Logging.Level)
	}
	return nil
}
