package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ProjectConfigFile is read from the working directory when no path is given.
	ProjectConfigFile = "presensi.yaml"
	// DefaultEnvFile is the dotenv file consulted for PRESENSI_* variables.
	DefaultEnvFile = ".env"
)

// Environment variables that override file configuration.
const (
	EnvDatabase       = "PRESENSI_DB"
	EnvAdminID        = "PRESENSI_ADMIN_ID"
	EnvTimezone       = "PRESENSI_TIMEZONE"
	EnvPendingTTL     = "PRESENSI_PENDING_TTL"
	EnvPendingBackend = "PRESENSI_PENDING_BACKEND"
	EnvRedisAddr      = "PRESENSI_REDIS_ADDR"
	EnvRedisPassword  = "PRESENSI_REDIS_PASSWORD"
	EnvAddr           = "PRESENSI_ADDR"
	EnvLogLevel       = "PRESENSI_LOG_LEVEL"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger

	// EnvFile is the dotenv file to read. Missing files are skipped.
	EnvFile string

	// LookupEnv reads the process environment. Overridable for tests.
	LookupEnv func(key string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger,
		EnvFile:   DefaultEnvFile,
		LookupEnv: os.LookupEnv,
	}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. YAML file (path, or presensi.yaml in the working directory if path is empty)
// 3. Dotenv file values for PRESENSI_* keys
// 4. Process environment PRESENSI_* variables
//
// An explicit path that does not exist is an error; a missing
// presensi.yaml is not.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config file", slog.String("path", path))
		config = fileConfig
	} else if _, err := os.Stat(ProjectConfigFile); err == nil {
		fileConfig, err := LoadFromFile(ProjectConfigFile)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded project config", slog.String("path", ProjectConfigFile))
		config = fileConfig
	} else {
		l.logger.Debug("No project config found")
	}

	dotenv, err := l.readEnvFile()
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := l.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(config, lookup); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) readEnvFile() (map[string]string, error) {
	if l.EnvFile == "" {
		return nil, nil
	}
	values, err := godotenv.Read(l.EnvFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", l.EnvFile, err)
	}
	l.logger.Debug("Loaded env file", slog.String("path", l.EnvFile))
	return values, nil
}

// applyEnv overrides config fields from PRESENSI_* variables.
func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvDatabase, &c.Database.Path},
		{EnvAdminID, &c.Admin.UserID},
		{EnvTimezone, &c.Attendance.Timezone},
		{EnvPendingBackend, &c.Pending.Backend},
		{EnvRedisAddr, &c.Pending.Redis.Addr},
		{EnvRedisPassword, &c.Pending.Redis.Password},
		{EnvAddr, &c.Server.Addr},
		{EnvLogLevel, &c.Log.Level},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := lookup(EnvPendingTTL); ok && v != "" {
		ttl, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPendingTTL, err)
		}
		c.Attendance.PendingTTL = ttl
	}

	return nil
}

// parseDuration accepts Go durations ("10m") or whole seconds ("600").
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
