package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"betroom/database"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP API
	HTTPAddr string

	// Redis room cache; empty address disables caching
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RoomCacheTTL  time.Duration

	// NATS event forwarding; empty disables forwarding
	NATSServers string

	// Discord front-end; empty token disables the bot
	DiscordToken   string
	DiscordGuildID string

	// Betting rules
	MinimumStake     decimal.Decimal // stakes must be strictly greater
	InitialBalance   decimal.Decimal
	RoomLockTimeout  time.Duration
	RoomCodeAttempts int
	OutcomeSeed      uint64 // non-zero switches to a reproducible outcome sequence

	LogLevel    string
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		if instance != nil {
			return
		}
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// SetTestConfig replaces the global configuration. Tests only.
func SetTestConfig(cfg *Config) {
	once.Do(func() {})
	instance = cfg
}

// ResetConfig forgets the global configuration so the next Get reloads it. Tests only.
func ResetConfig() {
	instance = nil
	once = sync.Once{}
}

// NewTestConfig returns a configuration with defaults suitable for tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:         ":0",
		RoomCacheTTL:     30 * time.Second,
		MinimumStake:     decimal.NewFromInt(200),
		InitialBalance:   decimal.NewFromInt(2000),
		RoomLockTimeout:  2 * time.Second,
		RoomCodeAttempts: 5,
		LogLevel:         "debug",
		Environment:      "test",
	}
}

// Load reads the configuration from the environment without touching the singleton
func Load() (*Config, error) {
	return load()
}

// load loads configuration from environment variables, reading .env first when present
func load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseName:   os.Getenv("DATABASE_NAME"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		NATSServers:    os.Getenv("NATS_SERVERS"),
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "development"),
	}

	var err error
	if config.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.RoomCacheTTL, err = getDuration("ROOM_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if config.MinimumStake, err = getDecimal("MINIMUM_STAKE", "200.00"); err != nil {
		return nil, err
	}
	if config.InitialBalance, err = getDecimal("INITIAL_BALANCE", "2000.00"); err != nil {
		return nil, err
	}
	if config.RoomLockTimeout, err = getDuration("ROOM_LOCK_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if config.RoomCodeAttempts, err = getInt("ROOM_CODE_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if seed := os.Getenv("OUTCOME_SEED"); seed != "" {
		if config.OutcomeSeed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid OUTCOME_SEED: %w", err)
		}
	}

	if config.Environment != "test" {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MinimumStake.IsNegative() {
		return fmt.Errorf("MINIMUM_STAKE must not be negative")
	}
	if c.InitialBalance.IsNegative() {
		return fmt.Errorf("INITIAL_BALANCE must not be negative")
	}
	if c.RoomCodeAttempts < 1 {
		return fmt.Errorf("ROOM_CODE_ATTEMPTS must be at least 1")
	}
	if c.RoomLockTimeout <= 0 {
		return fmt.Errorf("ROOM_LOCK_TIMEOUT must be positive")
	}
	return nil
}

// GetDatabaseURL returns the connection URL with DatabaseName applied, if set
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the application runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	v := getEnv(key, fallback)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
