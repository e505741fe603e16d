package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
)

// Data modes select the repository backend.
const (
	DataModeMock = "mock"
	DataModeAPI  = "api"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DataMode  string          `mapstructure:"data_mode" envconfig:"DATA_MODE"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Faker     FakerConfig     `mapstructure:"faker"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" envconfig:"RATE_LIMIT"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Facility  FacilityConfig  `mapstructure:"facility"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Environment  string        `mapstructure:"environment"`
	LogLevel     string        `mapstructure:"log_level" envconfig:"LOG_LEVEL"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT"`
}

// StoreConfig tunes the in-memory store used in mock mode.
type StoreConfig struct {
	Latency time.Duration `mapstructure:"latency"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// FakerConfig locates the mock BPJS and SATUSEHAT endpoints.
type FakerConfig struct {
	BaseURL string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	Port    int           `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours" envconfig:"EXPIRY_HOURS"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Channel string `mapstructure:"channel"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

type FacilityConfig struct {
	Name     string `mapstructure:"name"`
	Code     string `mapstructure:"code"`
	Timezone string `mapstructure:"timezone"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("data_mode", DataModeMock)
	v.SetDefault("store.latency", "300ms")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "simpus")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("faker.base_url", "http://localhost:8090")
	v.SetDefault("faker.port", 8090)
	v.SetDefault("faker.timeout", "10s")
	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.expiry_hours", 12)
	v.SetDefault("redis.channel", "simpus.audit")
	v.SetDefault("rate_limit.rps", 50)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("facility.name", "PUSKESMAS MERDEKA")
	v.SetDefault("facility.code", "F001")
	v.SetDefault("facility.timezone", "Asia/Jakarta")
}

// LoadConfig reads config.yml from the search paths (defaults to . and ./config),
// then applies a .env file and SIMPUS_* environment overrides.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// a missing .env is not an error
	_ = godotenv.Load()

	if err := envconfig.Process("simpus", &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.DataMode != DataModeMock && c.DataMode != DataModeAPI {
		return fmt.Errorf("invalid data_mode %q: want %q or %q", c.DataMode, DataModeMock, DataModeAPI)
	}
	if c.Store.Latency < 0 {
		return fmt.Errorf("store latency must not be negative")
	}
	if _, err := dateutil.LoadLocation(c.Facility.Timezone); err != nil {
		return fmt.Errorf("invalid facility timezone: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
