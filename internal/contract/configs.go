package contract

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 2
	MaxPrecision       = 4
	DefaultReportStart = "2016-01-01"
	DefaultReportEnd   = "2017-11-30"
	DefaultDataDir     = "data"
	DefaultServeAddr   = ":8080"
	DefaultLogLevel    = "warn"
)

// Default file names for each input table inside the data directory.
const (
	MembershipsFile   = "num-active.csv"
	ApplicationsFile  = "applications.csv"
	SittersFile       = "sitters.csv"
	AssignmentsFile   = "assignments.csv"
	OwnersFile        = "owners.csv"
	VerificationsFile = "standard-verif.csv"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// TableSources names the file backing each input table.
// Verifications is optional and may point to a file that does not exist.
type TableSources struct {
	Memberships   string
	Applications  string
	Sitters       string
	Assignments   string
	Owners        string
	Verifications string
}

// Config holds the final, validated configuration.
type Config struct {
	DataDir string
	Sources TableSources
	Window  schema.Window
	Country country.Filter
	Workers int

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	ServeAddr     string
	ServeUser     string
	ServePassword string // Please use env var or .env as this is plaintext
}

// ConfigRawInput holds the raw, unvalidated configuration from all sources (file, env, flags).
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	DataDir          string `mapstructure:"data-dir"`
	Memberships      string `mapstructure:"memberships"`
	Applications     string `mapstructure:"applications"`
	Sitters          string `mapstructure:"sitters"`
	Assignments      string `mapstructure:"assignments"`
	Owners           string `mapstructure:"owners"`
	Verifications    string `mapstructure:"verifications"`
	ReportStart      string `mapstructure:"report-start"`
	ReportEnd        string `mapstructure:"report-end"`
	Country          string `mapstructure:"country"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from serveCmd.Flags() ---
	ServeAddr     string `mapstructure:"addr"`
	ServeUser     string `mapstructure:"serve-user"`
	ServePassword string `mapstructure:"serve-password"`
}

// Clone returns a copy of the config that can be modified per request.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate populates cfg from input, validating every field.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processReportWindow(cfg, input); err != nil {
		return err
	}
	if err := processSources(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return processServeConfig(cfg, input)
}

// ValidateDatabaseConnectionString checks the connection string shape for the backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
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

// ParseBackend converts a raw backend name, treating empty as none.
func ParseBackend(raw string) (schema.DatabaseBackend, error) {
	if raw == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(raw))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	filter, err := country.ParseFilter(input.Country)
	if err != nil {
		return fmt.Errorf("invalid --country value: %w", err)
	}
	cfg.Country = filter

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	return nil
}

func processReportWindow(cfg *Config, input *ConfigRawInput) error {
	startStr := input.ReportStart
	if startStr == "" {
		startStr = DefaultReportStart
	}
	endStr := input.ReportEnd
	if endStr == "" {
		endStr = DefaultReportEnd
	}

	start, err := ParseReportDate(startStr)
	if err != nil {
		return fmt.Errorf("invalid --report-start: %w", err)
	}
	end, err := ParseReportDate(endStr)
	if err != nil {
		return fmt.Errorf("invalid --report-end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("report end %s is before report start %s", end.Format(DateFormat), start.Format(DateFormat))
	}

	cfg.Window = schema.Window{Start: start, End: end}
	return nil
}

func processSources(cfg *Config, input *ConfigRawInput) error {
	cfg.DataDir = input.DataDir
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}

	resolve := func(override, name string) string {
		if override != "" {
			return override
		}
		return filepath.Join(cfg.DataDir, name)
	}

	cfg.Sources = TableSources{
		Memberships:   resolve(input.Memberships, MembershipsFile),
		Applications:  resolve(input.Applications, ApplicationsFile),
		Sitters:       resolve(input.Sitters, SittersFile),
		Assignments:   resolve(input.Assignments, AssignmentsFile),
		Owners:        resolve(input.Owners, OwnersFile),
		Verifications: resolve(input.Verifications, VerificationsFile),
	}
	return nil
}

func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	backend, err := ParseBackend(input.HistoryBackend)
	if err != nil {
		return fmt.Errorf("invalid history backend: %w", err)
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

func processServeConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.ServeAddr = input.ServeAddr
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}
	cfg.ServeUser = input.ServeUser
	cfg.ServePassword = input.ServePassword
	if (cfg.ServeUser == "") != (cfg.ServePassword == "") {
		return fmt.Errorf("serve-user and serve-password must be set together")
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
