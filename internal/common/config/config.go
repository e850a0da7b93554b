// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OpenFoodFactsConfig holds settings for the upstream product catalog client.
type OpenFoodFactsConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	Timeout        int     `mapstructure:"timeout"` // milliseconds
	MaxRetries     int     `mapstructure:"max_retries"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec"`
	UserAgent      string  `mapstructure:"user_agent"`
}

// PipelineConfig holds settings for batch transformation and loading.
type PipelineConfig struct {
	BatchSize      int              `mapstructure:"batch_size"`
	LoadMaxRetries int              `mapstructure:"load_max_retries"`
	BrandTablePath string           `mapstructure:"brand_table_path"`
	Dedup          DedupConfig      `mapstructure:"dedup"`
	WeightRange    ValueRangeConfig `mapstructure:"weight_range"`
	CO2Range       ValueRangeConfig `mapstructure:"co2_range"`
}

// DedupConfig controls the Redis-backed deduplication cache.
type DedupConfig struct {
	Strategy         string `mapstructure:"strategy"` // time_based, content_based, disabled
	WindowHours      int    `mapstructure:"window_hours"`
	ValidatedTTLDays int    `mapstructure:"validated_ttl_days"`
	RejectedTTLDays  int    `mapstructure:"rejected_ttl_days"`
	PendingTTLDays   int    `mapstructure:"pending_ttl_days"`
}

// ValueRangeConfig bounds a numeric field to a plausible interval.
type ValueRangeConfig struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
