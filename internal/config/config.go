// Package config provides Viper-based configuration loading for the skirmish
// simulator.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g.
// SKIRMISH_SIMULATION_MAX_ROUNDS.
const EnvPrefix = "SKIRMISH"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN renders the settings as a postgres:// URL. User and password are
// percent-escaped, so either may contain reserved characters.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CellConfig is one grid coordinate.
type CellConfig struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

// GridConfig describes the default battlefield. Encounter files may override it.
type GridConfig struct {
	Width   int          `mapstructure:"width"`
	Height  int          `mapstructure:"height"`
	Hazards []CellConfig `mapstructure:"hazards"`
}

// RulesConfig locates the outcome/clash rule table.
type RulesConfig struct {
	// Table is a YAML rule table path; empty selects the built-in table.
	Table string `mapstructure:"table"`
}

// ContentConfig locates content directories. Empty entries are skipped.
type ContentConfig struct {
	Weapons    string `mapstructure:"weapons"`
	Armor      string `mapstructure:"armor"`
	Abilities  string `mapstructure:"abilities"`
	Conditions string `mapstructure:"conditions"` // a single YAML file
	Scripts    string `mapstructure:"scripts"`
}

// ScriptingConfig bounds Lua hook execution.
type ScriptingConfig struct {
	// InstructionLimit caps VM instructions per hook call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// SimulationConfig controls the encounter runner.
type SimulationConfig struct {
	MaxRounds int `mapstructure:"max_rounds"`
	// Seed makes dice reproducible; 0 selects crypto/rand.
	Seed uint64 `mapstructure:"seed"`
}

// JournalConfig toggles persistence of encounter summaries.
type JournalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Grid       GridConfig       `mapstructure:"grid"`
	Rules      RulesConfig      `mapstructure:"rules"`
	Content    ContentConfig    `mapstructure:"content"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
	sslModes   = []string{"disable", "require", "verify-ca", "verify-full"}
)

// problems accumulates violations so Validate can report all of them at once.
type problems []string

func (p *problems) require(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p *problems) oneOf(key, got string, allowed []string) {
	p.require(slices.Contains(allowed, got), "%s must be one of %v, got %q", key, allowed, got)
}

// Validate checks every section and reports all violations in one error.
// Database settings are only checked when the journal is enabled.
func (c Config) Validate() error {
	var p problems

	p.oneOf("logging.level", c.Logging.Level, logLevels)
	p.oneOf("logging.format", c.Logging.Format, logFormats)

	g := c.Grid
	p.require(g.Width >= 1, "grid.width must be >= 1, got %d", g.Width)
	p.require(g.Height >= 1, "grid.height must be >= 1, got %d", g.Height)
	for i, h := range g.Hazards {
		p.require(h.X >= 0 && h.Y >= 0 && h.X < g.Width && h.Y < g.Height,
			"grid.hazards[%d] (%d,%d) lies outside the %dx%d grid", i, h.X, h.Y, g.Width, g.Height)
	}

	p.require(c.Scripting.InstructionLimit >= 0, "scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit)
	p.require(c.Simulation.MaxRounds >= 1, "simulation.max_rounds must be >= 1, got %d", c.Simulation.MaxRounds)

	if c.Journal.Enabled {
		d := c.Database
		p.require(d.Host != "", "database.host must be set when the journal is enabled")
		p.require(d.Port >= 1 && d.Port <= 65535, "database.port must be 1-65535, got %d", d.Port)
		p.require(d.User != "", "database.user must be set when the journal is enabled")
		p.require(d.Name != "", "database.name must be set when the journal is enabled")
		p.oneOf("database.sslmode", d.SSLMode, sslModes)
		p.require(d.MaxConns >= 1, "database.max_conns must be >= 1, got %d", d.MaxConns)
		p.require(d.MinConns >= 0 && d.MinConns <= d.MaxConns,
			"database.min_conns must be within 0..%d, got %d", d.MaxConns, d.MinConns)
	}

	if len(p) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(p, "; "))
}

// NewViper returns a Viper instance with defaults and SKIRMISH_ environment
// overrides installed. A non-empty path is set as the config file but not
// read yet.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper(path)
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("grid.width", 12)
	v.SetDefault("grid.height", 12)

	v.SetDefault("rules.table", "")

	v.SetDefault("content.weapons", "content/weapons")
	v.SetDefault("content.armor", "content/armor")
	v.SetDefault("content.abilities", "content/abilities")
	v.SetDefault("content.conditions", "content/conditions.yaml")
	v.SetDefault("content.scripts", "content/scripts")

	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("simulation.max_rounds", 50)
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("journal.enabled", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
