package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults match the values named explicitly in the specification:
// branching factor B = 10, and scheduler bounds of <=100ms poll /
// <=300ms GC.
const (
	DefaultBranchingFactor  = 10
	DefaultHashCapacity     = 64
	DefaultSchedulerPoll    = 100 * time.Millisecond
	DefaultSchedulerGC      = 300 * time.Millisecond
	DefaultLogLevel         = "info"
)

// Config holds the tunables for one store instance.
type Config struct {
	// BranchingFactor is the B+ tree's B.
	BranchingFactor int

	// HashCapacity is the HashStore's fixed bucket count.
	HashCapacity int

	// SchedulerPollInterval bounds how often a pending TTL task's
	// worker wakes to check its deadline/cancellation.
	SchedulerPollInterval time.Duration

	// SchedulerGCInterval bounds how often the scheduler sweeps
	// completed tasks out of its id->task mapping.
	SchedulerGCInterval time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Default returns the Config implied by the specification's default
// values, before any environment overrides are applied.
func Default() *Config {
	return &Config{
		BranchingFactor:       DefaultBranchingFactor,
		HashCapacity:          DefaultHashCapacity,
		SchedulerPollInterval: DefaultSchedulerPoll,
		SchedulerGCInterval:   DefaultSchedulerGC,
		LogLevel:              DefaultLogLevel,
	}
}

// Load reads configuration from .env/.env.local (if present) and then
// from KEYPLEX_-prefixed environment variables, overriding the
// defaults. Missing files and missing environment variables are not
// errors - the defaults stand.
func Load() *Config {
	// load env files, best-effort - absence is not an error
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetEnvPrefix("keyplex")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := Default()

	if v.IsSet("branching_factor") {
		cfg.BranchingFactor = v.GetInt("branching_factor")
	}
	if v.IsSet("hash_capacity") {
		cfg.HashCapacity = v.GetInt("hash_capacity")
	}
	if v.IsSet("scheduler_poll_ms") {
		cfg.SchedulerPollInterval = time.Duration(v.GetInt("scheduler_poll_ms")) * time.Millisecond
	}
	if v.IsSet("scheduler_gc_ms") {
		cfg.SchedulerGCInterval = time.Duration(v.GetInt("scheduler_gc_ms")) * time.Millisecond
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}

	return cfg
}
