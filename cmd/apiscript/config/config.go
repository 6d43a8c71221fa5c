// Package config loads the CLI configuration document and applies the
// ambient pieces of it: logging setup and store selection.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loykin/apiscript/internal/common"
	"github.com/loykin/apiscript/internal/store"
	"gopkg.in/yaml.v3"
)

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // error, warn, info, debug
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

type StoreConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver"` // sqlite, postgresql
	DSN       string `mapstructure:"dsn" yaml:"dsn"`
	TableName string `mapstructure:"table_name" yaml:"table_name"`
}

type ClientConfig struct {
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
	Timeout  string `mapstructure:"timeout" yaml:"timeout"`
}

type ConfigDoc struct {
	Workspace     string        `mapstructure:"workspace" yaml:"workspace"`
	ScriptTimeout string        `mapstructure:"script_timeout" yaml:"script_timeout"`
	Store         StoreConfig   `mapstructure:"store" yaml:"store"`
	Client        ClientConfig  `mapstructure:"client" yaml:"client"`
	Logging       LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LoadFromFile loads a ConfigDoc from a YAML file path. A missing file is
// not an error; the zero document applies.
func (c *ConfigDoc) LoadFromFile(path string) error {
	clean := filepath.Clean(path)
	// #nosec G304 -- path comes from the --config flag
	data, err := os.ReadFile(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", clean, err)
	}
	return nil
}

// ApplyLogging installs the configured default logger.
func (c *ConfigDoc) ApplyLogging() error {
	level := common.ParseLogLevel(c.Logging.Level)
	var logger *common.Logger
	if c.Logging.Format == "json" {
		logger = common.NewJSONLogger(level)
	} else {
		logger = common.NewLogger(level)
	}
	common.SetDefaultLogger(logger)
	return nil
}

// Workspace returns the configured workspace name, defaulting to "default".
func (c *ConfigDoc) WorkspaceName() string {
	if c.Workspace == "" {
		return "default"
	}
	return c.Workspace
}

// ScriptTimeoutDuration parses ScriptTimeout; zero means engine default.
func (c *ConfigDoc) ScriptTimeoutDuration() (time.Duration, error) {
	if c.ScriptTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ScriptTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid script_timeout: %w", err)
	}
	return d, nil
}

// OpenStore opens the configured scope store. It returns nil when no
// driver is configured; scope persistence is optional.
func (c *ConfigDoc) OpenStore() (*store.Store, error) {
	if c.Store.Driver == "" && c.Store.DSN == "" {
		return nil, nil
	}
	return store.Open(store.Config{
		Driver:    c.Store.Driver,
		DSN:       c.Store.DSN,
		TableName: c.Store.TableName,
	})
}
