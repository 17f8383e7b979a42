package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hybrid-energy-platform/internal/models"
	"hybrid-energy-platform/pkg/database"
	"hybrid-energy-platform/pkg/logging"
)

const (
	DefaultOptimizerTimeout   = 5 * time.Second
	DefaultUncertaintyTimeout = 30 * time.Second
)

// Config is the process configuration read from the environment
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig is optional: without DB_HOST the API runs without facility lookups
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Enabled reports whether a database was configured
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// Connection converts the section into the database package's connection settings
func (d DatabaseConfig) Connection() *database.Config {
	return &database.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

type LoggingConfig struct {
	Level string
}

type AnalysisConfig struct {
	OptimizerTimeout   time.Duration
	UncertaintyTimeout time.Duration
	// YAML file overriding the built-in parameter defaults
	DefaultsFile string
}

// LoadConfig reads an optional .env file and then the environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var errs []error
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getInt("SERVER_PORT", 8080, &errs),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second, &errs),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 60*time.Second, &errs),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second, &errs),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", ""),
			Port:            getInt("DB_PORT", 5432, &errs),
			User:            getEnv("DB_USER", "energy"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "energy_platform"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 20, &errs),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5, &errs),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute, &errs),
			ConnMaxIdleTime: getDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute, &errs),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Analysis: AnalysisConfig{
			OptimizerTimeout:   getDuration("ANALYSIS_OPTIMIZER_TIMEOUT", DefaultOptimizerTimeout, &errs),
			UncertaintyTimeout: getDuration("ANALYSIS_UNCERTAINTY_TIMEOUT", DefaultUncertaintyTimeout, &errs),
			DefaultsFile:       getEnv("ANALYSIS_DEFAULTS_FILE", ""),
		},
	}

	if len(errs) > 0 {
		return nil, errs[0]
	}
	return cfg, nil
}

// Validate checks ranges LoadConfig cannot express
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.Analysis.OptimizerTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_OPTIMIZER_TIMEOUT must be positive")
	}
	if c.Analysis.UncertaintyTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_UNCERTAINTY_TIMEOUT must be positive")
	}
	if c.Database.Enabled() {
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("DB_PORT %d out of range", c.Database.Port)
		}
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
		}
	}
	return nil
}

// Defaults are the parameter sections every request starts from
type Defaults struct {
	Options   models.EnergyAnalysisOptions `yaml:"options"`
	Costing   models.CostingParameters     `yaml:"costing"`
	System    models.SystemConfiguration   `yaml:"system"`
	Financial models.FinancialParameters   `yaml:"financial"`
}

// LoadDefaults returns the built-in defaults, overlaid with the YAML file at path when one is
// given. Keys missing from the file keep their built-in value.
func LoadDefaults(path string, optimizerTimeout time.Duration) (*Defaults, error) {
	base := models.NewAnalysisRequest()
	d := &Defaults{
		Options:   base.Options,
		Costing:   base.Costing,
		System:    base.System,
		Financial: base.Financial,
	}
	if optimizerTimeout > 0 {
		d.Options.OptimizerTimeout = optimizerTimeout
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read analysis defaults: %w", err)
		}
		if err := yaml.Unmarshal(data, d); err != nil {
			return nil, fmt.Errorf("failed to parse analysis defaults %s: %w", path, err)
		}
	}

	check := models.AnalysisRequest{Options: d.Options, Costing: d.Costing, System: d.System, Financial: d.Financial}
	if err := check.Validate(); err != nil {
		return nil, fmt.Errorf("analysis defaults: %w", err)
	}
	return d, nil
}

// NewRequest returns an empty request pre-filled with these defaults, ready to be decoded onto
func (d *Defaults) NewRequest() *models.AnalysisRequest {
	req := models.NewAnalysisRequest()
	req.Options = d.Options
	req.Costing = d.Costing
	req.System = d.System
	req.Financial = d.Financial
	return req
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
