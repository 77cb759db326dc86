// Package config loads the YAML configuration shared by the commands.
package config

import (
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
	"github.com/kdutta/mysqlmeta/internal/meta"
)

// Config is the root configuration document.
type Config struct {
	Database database.Config `yaml:"database"`
	Log      LogConfig       `yaml:"log"`
	Meta     MetaConfig      `yaml:"meta"`
	Console  ConsoleConfig   `yaml:"console"`
	Server   ServerConfig    `yaml:"server"`
}

// LogConfig mirrors the logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetaConfig holds the behavioral switches of the metadata pipeline.
type MetaConfig struct {
	// Term is "catalog" or "schema".
	Term string `yaml:"term"`

	// Strategy is "information_schema" or "show".
	Strategy string `yaml:"strategy"`

	Pedantic                 bool `yaml:"pedantic"`
	NullDatabaseMeansCurrent bool `yaml:"null_database_means_current"`
	TinyInt1IsBit            bool `yaml:"tinyint1_is_bit"`
	TransformedBitIsBoolean  bool `yaml:"transformed_bit_is_boolean"`
	YearIsDateType           bool `yaml:"year_is_date_type"`
}

// ConsoleConfig configures the interactive console.
type ConsoleConfig struct {
	// DeletePassword gates the destructive menu option.
	DeletePassword string `yaml:"delete_password"`
}

// ServerConfig configures the HTTP explorer.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UnmarshalYAML accepts durations in time.ParseDuration form ("5s",
// "1m30s"). Fields the document omits keep their current values.
func (s *ServerConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Addr != "" {
		s.Addr = raw.Addr
	}
	set := func(dst *time.Duration, src string) error {
		if src == "" {
			return nil
		}
		d, err := time.ParseDuration(src)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
	if err := set(&s.ReadTimeout, raw.ReadTimeout); err != nil {
		return err
	}
	if err := set(&s.WriteTimeout, raw.WriteTimeout); err != nil {
		return err
	}
	return set(&s.ShutdownTimeout, raw.ShutdownTimeout)
}

// Default returns the configuration used when no file is given: a local
// server and the JDBC-compatible pipeline defaults.
func Default() *Config {
	return &Config{
		Database: *database.DefaultConfig("127.0.0.1", 3306, "root", "", ""),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Meta: MetaConfig{
			Term:                     "catalog",
			Strategy:                 "information_schema",
			NullDatabaseMeansCurrent: true,
			TinyInt1IsBit:            true,
			YearIsDateType:           true,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults
// untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "cannot read config file", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "cannot parse config file", err)
	}
	return cfg, nil
}

// Flags converts the meta section into a capability snapshot; server
// facts are filled in later by meta.DetectFlags.
func (c *Config) Flags() meta.Flags {
	term := meta.TermCatalog
	if strings.EqualFold(c.Meta.Term, "schema") {
		term = meta.TermSchema
	}
	return meta.Flags{
		Term:                     term,
		Database:                 c.Database.Database,
		Pedantic:                 c.Meta.Pedantic,
		NullDatabaseMeansCurrent: c.Meta.NullDatabaseMeansCurrent,
		TinyInt1IsBit:            c.Meta.TinyInt1IsBit,
		TransformedBitIsBoolean:  c.Meta.TransformedBitIsBoolean,
		YearIsDateType:           c.Meta.YearIsDateType,
	}
}

// Strategy converts the configured strategy name.
func (c *Config) Strategy() meta.Strategy {
	if strings.EqualFold(c.Meta.Strategy, "show") {
		return meta.StrategyShowCommands
	}
	return meta.StrategyInformationSchema
}
