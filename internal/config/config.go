package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. It is built once at
// startup and passed into every component; nothing mutates it afterwards.
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`
	WebsiteURL      string        `json:"website_url"`

	// Telegram configuration
	TelegramToken string  `json:"-" validate:"required"`
	AllowedUsers  []int64 `json:"allowed_users"`

	// Content store (GitHub) configuration
	GitHubToken  string `json:"-" validate:"required"`
	GitHubOwner  string `json:"github_owner" validate:"required"`
	GitHubRepo   string `json:"github_repo" validate:"required"`
	GitHubBranch string `json:"github_branch"`

	// Classifier configuration
	GeminiAPIKey    string        `json:"-"`
	GeminiModel     string        `json:"gemini_model"`
	ClaudeAPIKey    string        `json:"-"`
	ClaudeModel     string        `json:"claude_model"`
	ClassifyTimeout time.Duration `json:"classify_timeout"`

	// Cache configuration (optional, in-memory fallback when unset)
	RedisURL    string        `json:"redis_url"`
	CachePrefix string        `json:"cache_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// Logging
	LogLevel string `json:"log_level"`
}

// Load loads configuration from environment variables and validates it.
// Missing required credentials are fatal at startup.
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		WebsiteURL:      getEnv("WEBSITE_URL", "https://gramsetu.in"),

		// Telegram configuration
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		AllowedUsers:  getEnvAsInt64List("ALLOWED_USERS"),

		// Content store configuration
		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		GitHubOwner:  getEnv("GITHUB_OWNER", ""),
		GitHubRepo:   getEnv("GITHUB_REPO", ""),
		GitHubBranch: getEnv("GITHUB_BRANCH", "main"),

		// Classifier configuration
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		ClaudeAPIKey:    getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:     getEnv("CLAUDE_MODEL", "claude-3-haiku-20240307"),
		ClassifyTimeout: getEnvAsDuration("CLASSIFY_TIMEOUT", 60*time.Second),

		// Cache configuration
		RedisURL:    getEnv("REDIS_URL", ""),
		CachePrefix: getEnv("CACHE_PREFIX", "sandesh:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 2*time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate validates the configuration against the struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// IsAllowed reports whether the sender may trigger write operations.
// An empty allow-list means everyone is authorized (open mode).
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64List(name string) []int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return nil
	}
	var values []int64
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Invalid %s entry %q, skipping: %v", name, part, err)
			continue
		}
		values = append(values, value)
	}
	return values
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
