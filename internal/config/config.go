// Package config provides configuration loading and management for presensi.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete presensi configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database" json:"database"`
	Admin      AdminConfig      `yaml:"admin" json:"admin"`
	Attendance AttendanceConfig `yaml:"attendance" json:"attendance"`
	Pending    PendingConfig    `yaml:"pending" json:"pending"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Dispatch   DispatchConfig   `yaml:"dispatch" json:"dispatch"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// DatabaseConfig configures the attendance store.
type DatabaseConfig struct {
	// Path is the SQLite database file (":memory:" for an ephemeral store).
	Path string `yaml:"path" json:"path"`
}

// AdminConfig configures report access.
type AdminConfig struct {
	// UserID is the only identity allowed to read reports. Empty denies everyone.
	UserID string `yaml:"user_id" json:"user_id"`
}

// AttendanceConfig configures the attendance flow.
type AttendanceConfig struct {
	// Timezone is the IANA zone that defines a calendar day (e.g. "Asia/Jakarta").
	// "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`
	// PendingTTL expires an unanswered location request. Zero never expires.
	PendingTTL time.Duration `yaml:"pending_ttl" json:"pending_ttl"`
	// Commands names the chat commands.
	Commands CommandsConfig `yaml:"commands" json:"commands"`
}

// CommandsConfig names the chat commands.
type CommandsConfig struct {
	Attend string `yaml:"attend" json:"attend"`
	Report string `yaml:"report" json:"report"`
	Start  string `yaml:"start" json:"start"`
}

// PendingConfig selects where pending location requests live.
type PendingConfig struct {
	// Backend is "memory" or "redis".
	Backend string      `yaml:"backend" json:"backend"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig configures the redis pending backend.
type RedisConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	Password  string `yaml:"password" json:"password"`
	DB        int    `yaml:"db" json:"db"`
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

// ServerConfig configures the webhook transport.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// DispatchConfig configures the console dispatcher.
type DispatchConfig struct {
	// Workers is the number of concurrent event workers.
	Workers int `yaml:"workers" json:"workers"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Pending backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "presensi.db",
		},
		Admin: AdminConfig{
			UserID: "", // Nobody
		},
		Attendance: AttendanceConfig{
			Timezone:   "Local",
			PendingTTL: 0, // Never expire
			Commands: CommandsConfig{
				Attend: "presensi",
				Report: "report",
				Start:  "start",
			},
		},
		Pending: PendingConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				KeyPrefix: "presensi:pending:",
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Dispatch: DispatchConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid.
// Structural rules live in schema.cue; cross-field rules are checked here.
func (c *Config) Validate() error {
	if err := validateSchema(c); err != nil {
		return err
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Pending.Backend == BackendRedis && c.Pending.Redis.Addr == "" {
		return fmt.Errorf("pending.redis.addr is required when pending.backend is %q", BackendRedis)
	}

	cmds := c.Attendance.Commands
	if cmds.Attend == cmds.Report || cmds.Attend == cmds.Start || cmds.Report == cmds.Start {
		return fmt.Errorf("attendance.commands must be distinct")
	}

	return nil
}

// Location resolves attendance.timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return nil, fmt.Errorf("attendance.timezone: %w", err)
	}
	return loc, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Unknown keys are rejected.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	config := DefaultConfig()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Database.Path != "" {
		c.Database.Path = other.Database.Path
	}
	if other.Admin.UserID != "" {
		c.Admin.UserID = other.Admin.UserID
	}

	if other.Attendance.Timezone != "" {
		c.Attendance.Timezone = other.Attendance.Timezone
	}
	if other.Attendance.PendingTTL != 0 {
		c.Attendance.PendingTTL = other.Attendance.PendingTTL
	}
	if other.Attendance.Commands.Attend != "" {
		c.Attendance.Commands.Attend = other.Attendance.Commands.Attend
	}
	if other.Attendance.Commands.Report != "" {
		c.Attendance.Commands.Report = other.Attendance.Commands.Report
	}
	if other.Attendance.Commands.Start != "" {
		c.Attendance.Commands.Start = other.Attendance.Commands.Start
	}

	if other.Pending.Backend != "" {
		c.Pending.Backend = other.Pending.Backend
	}
	if other.Pending.Redis.Addr != "" {
		c.Pending.Redis.Addr = other.Pending.Redis.Addr
	}
	if other.Pending.Redis.Password != "" {
		c.Pending.Redis.Password = other.Pending.Redis.Password
	}
	if other.Pending.Redis.DB != 0 {
		c.Pending.Redis.DB = other.Pending.Redis.DB
	}
	if other.Pending.Redis.KeyPrefix != "" {
		c.Pending.Redis.KeyPrefix = other.Pending.Redis.KeyPrefix
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Dispatch.Workers != 0 {
		c.Dispatch.Workers = other.Dispatch.Workers
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
}
