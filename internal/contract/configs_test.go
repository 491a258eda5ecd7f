package contract

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/benmcmorran/anamericanday/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation for the given data directory.
func validInput(dir string) *ConfigRawInput {
	return &ConfigRawInput{
		DataDirStr: dir,
		Timescale:  "day",
		Missing:    "zero",
		Precision:  DefaultPrecision,
		Output:     "text",
		Threshold:  DefaultThreshold,
		Emoji:      "no",
		Color:      "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "day.csv")
	require.NoError(t, os.WriteFile(filePath, []byte("Minute\n"), 0o644))

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, false},
		{"uppercase timescale", func(in *ConfigRawInput) { in.Timescale = "WEEK" }, false},
		{"empty timescale defaults to day", func(in *ConfigRawInput) { in.Timescale = "" }, false},
		{"invalid timescale", func(in *ConfigRawInput) { in.Timescale = "decade" }, true},
		{"invalid missing policy", func(in *ConfigRawInput) { in.Missing = "ignore" }, true},
		{"negative threshold", func(in *ConfigRawInput) { in.Threshold = -0.1 }, true},
		{"NaN threshold", func(in *ConfigRawInput) { in.Threshold = math.NaN() }, true},
		{"infinite threshold", func(in *ConfigRawInput) { in.Threshold = math.Inf(1) }, true},
		{"index", func(in *ConfigRawInput) { in.Index = "120" }, false},
		{"negative index", func(in *ConfigRawInput) { in.Index = "-1" }, true},
		{"non numeric index", func(in *ConfigRawInput) { in.Index = "noon" }, true},
		{"precision too low", func(in *ConfigRawInput) { in.Precision = 0 }, true},
		{"precision too high", func(in *ConfigRawInput) { in.Precision = 5 }, true},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "xml" }, true},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }, true},
		{"parquet with file", func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out.parquet" }, false},
		{"invalid emoji", func(in *ConfigRawInput) { in.Emoji = "maybe" }, true},
		{"invalid cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, true},
		{"mysql without connect", func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, true},
		{"run backend none", func(in *ConfigRawInput) { in.RunBackend = "none" }, false},
		{"run backend invalid", func(in *ConfigRawInput) { in.RunBackend = "redis" }, true},
		{"missing data dir", func(in *ConfigRawInput) { in.DataDirStr = filepath.Join(dir, "nope") }, true},
		{"data dir is a file", func(in *ConfigRawInput) { in.DataDirStr = filePath }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(dir)
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidate_Values(t *testing.T) {
	dir := t.TempDir()
	input := validInput(dir)
	input.Timescale = "Lifetime"
	input.Index = "3"
	input.Reference = "male"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.LifetimeScale, cfg.Timescale)
	assert.Equal(t, schema.MissingZero, cfg.Missing)
	assert.Equal(t, "male", cfg.Reference)
	require.NotNil(t, cfg.Index)
	assert.Equal(t, 3, *cfg.Index)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
	assert.Equal(t, filepath.Join(cfg.DataDir, "age.csv"), cfg.DatasetPath(schema.LifetimeScale))
}

func TestValidateBackendConfigs_SharedSQLiteFile(t *testing.T) {
	input := validInput(t.TempDir())
	input.CacheBackend = "sqlite"
	input.RunBackend = "sqlite"
	input.CacheConnect = "/tmp/shared.db"
	input.RunConnect = "/tmp/shared.db"

	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"none needs nothing", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/atus", false},
		{"mysql no tcp", schema.MySQLBackend, "user:pass@localhost/atus", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=atus", false},
		{"postgres no dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres no host", schema.PostgreSQLBackend, "dbname=atus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	idx := 7
	cfg := &Config{Timescale: schema.DayScale, Demographic: "all", Index: &idx}

	clone := cfg.CloneWithView(schema.YearScale, "female")
	assert.Equal(t, schema.YearScale, clone.Timescale)
	assert.Equal(t, "female", clone.Demographic)
	assert.Equal(t, schema.DayScale, cfg.Timescale, "original must not change")

	*clone.Index = 9
	assert.Equal(t, 7, *cfg.Index)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "run1"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run1", profile.Prefix)
}
