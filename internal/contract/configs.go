package contract

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/benmcmorran/anamericanday/core/algo"
	"github.com/benmcmorran/anamericanday/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 3
	MaxPrecision     = 4
	DefaultAddr      = ":8080"
)

// DefaultThreshold is the default label run threshold.
const DefaultThreshold = algo.DefaultLabelThreshold

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for extraction.
// This struct remains the "final, validated" config.
type Config struct {
	DataDir     string
	Timescale   schema.Timescale
	Demographic string // Empty means every demographic for extract
	Reference   string
	Missing     schema.MissingPolicy
	Threshold   float64
	Index       *int // Nil means averaged across the timescale
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	Addr        string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DataDirStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Timescale    string `mapstructure:"timescale"`
	Demographic  string `mapstructure:"demographic"`
	Reference    string `mapstructure:"reference"`
	Missing      string `mapstructure:"missing"`
	Precision    int    `mapstructure:"precision"`
	Output       string `mapstructure:"output"`
	OutputFile   string `mapstructure:"output-file"`
	Width        int    `mapstructure:"width"`
	CacheBackend string `mapstructure:"cache-backend"`
	CacheConnect string `mapstructure:"cache-db-connect"`
	RunBackend   string `mapstructure:"run-backend"`
	RunConnect   string `mapstructure:"run-db-connect"`
	Emoji        string `mapstructure:"emoji"`
	Color        string `mapstructure:"color"`

	// --- Fields from labelsCmd.Flags() ---
	Threshold float64 `mapstructure:"threshold"`

	// --- Fields from breakdownCmd.Flags() ---
	Index string `mapstructure:"index"` // Empty means averaged

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Index != nil {
		i := *c.Index
		clone.Index = &i
	}
	return &clone
}

// CloneWithView creates a copy of the Config for another timescale and demographic.
func (c *Config) CloneWithView(ts schema.Timescale, demographic string) *Config {
	clone := c.Clone()
	clone.Timescale = ts
	clone.Demographic = demographic
	return clone
}

// DatasetPath returns the path of the dataset file of a timescale.
func (c *Config) DatasetPath(ts schema.Timescale) string {
	return filepath.Join(c.DataDir, schema.DefaultDatasetFile(ts))
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveDataDir(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	// Cache and run tracking must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runDBPath := cfg.RunDBConnect
		if runDBPath == "" {
			runDBPath = GetRunDBFilePath()
		}
		if cacheDBPath == runDBPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Demographic = input.Demographic
	cfg.Reference = input.Reference
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	// Parse emoji flag
	emojis, err := ParseBoolString(defaultString(input.Emoji, "no"))
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(defaultString(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Timescale Validation ---
	cfg.Timescale = schema.Timescale(strings.ToLower(defaultString(input.Timescale, string(schema.DayScale))))
	if _, ok := schema.ValidTimescales[cfg.Timescale]; !ok {
		return fmt.Errorf("invalid timescale '%s'. must be day, week, year, lifetime", input.Timescale)
	}

	// --- 2. Missing Policy Validation ---
	cfg.Missing = schema.MissingPolicy(strings.ToLower(defaultString(input.Missing, string(schema.MissingZero))))
	if _, ok := schema.ValidMissingPolicies[cfg.Missing]; !ok {
		return fmt.Errorf("invalid missing policy '%s'. must be zero, strict", input.Missing)
	}

	// --- 3. Threshold and Index Validation ---
	if math.IsNaN(input.Threshold) || math.IsInf(input.Threshold, 0) || input.Threshold < 0 {
		return fmt.Errorf("threshold must be a finite non-negative number (received %g)", input.Threshold)
	}
	cfg.Threshold = input.Threshold
	cfg.Index = nil
	if input.Index != "" {
		i, err := strconv.Atoi(strings.TrimSpace(input.Index))
		if err != nil || i < 0 {
			return fmt.Errorf("index must be a non-negative integer (received %q)", input.Index)
		}
		cfg.Index = &i
	}

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(defaultString(input.Output, string(schema.TextOut))))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// resolveDataDir checks that the data directory exists.
func resolveDataDir(cfg *Config, input *ConfigRawInput) error {
	dir := defaultString(input.DataDirStr, ".")
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return fmt.Errorf("data directory %q does not exist: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %q is not a directory", dir)
	}
	cfg.DataDir = filepath.Clean(absDir)
	return nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
