package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the VoiceDesk server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	STT      STTConfig
	Archive  ArchiveConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	LogLevel           string
	MaxAudioBytes      int64
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL                string
	RateLimitPerMinute int
}

type STTConfig struct {
	Provider string
	Timeout  time.Duration
	OpenAI   OpenAIConfig
}

type OpenAIConfig struct {
	APIKey   string
	Model    string
	Language string
}

// ArchiveConfig controls raw audio archival. An empty Bucket disables it.
type ArchiveConfig struct {
	Bucket          string
	Region          string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether uploads should be attempted.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

var validSTTProviders = map[string]bool{
	"stub":   true,
	"openai": true,
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LoadDotEnv reads a .env file into the process environment when one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               envInt("VOICEDESK_PORT", 8080),
			Env:                envString("VOICEDESK_ENV", "development"),
			LogLevel:           strings.ToLower(envString("LOG_LEVEL", "info")),
			MaxAudioBytes:      int64(envInt("MAX_AUDIO_BYTES", 10<<20)),
			CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:                os.Getenv("REDIS_URL"),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		STT: STTConfig{
			Provider: envString("STT_PROVIDER", "stub"),
			Timeout:  envDurationSecs("STT_TIMEOUT_SECS", 30*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:   os.Getenv("OPENAI_API_KEY"),
				Model:    envString("OPENAI_STT_MODEL", "whisper-1"),
				Language: envString("OPENAI_STT_LANGUAGE", "ko"),
			},
		},
		Archive: ArchiveConfig{
			Bucket:          os.Getenv("AUDIO_ARCHIVE_BUCKET"),
			Region:          envString("AWS_REGION", "ap-northeast-2"),
			EndpointURL:     os.Getenv("AWS_ENDPOINT_URL"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	if lvl, ok := logLevels[c.Server.LogLevel]; ok {
		return lvl
	}
	return slog.LevelInfo
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.Redis.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.Redis.RateLimitPerMinute)
	}

	if _, ok := logLevels[c.Server.LogLevel]; !ok {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.Server.LogLevel)
	}
	if c.Server.MaxAudioBytes <= 0 {
		return fmt.Errorf("MAX_AUDIO_BYTES must be positive, got %d", c.Server.MaxAudioBytes)
	}

	if !validSTTProviders[c.STT.Provider] {
		return fmt.Errorf("STT_PROVIDER must be one of stub, openai; got %q", c.STT.Provider)
	}
	if c.STT.Provider == "openai" && c.STT.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when STT_PROVIDER is openai")
	}

	if c.Archive.EndpointURL != "" &&
		!strings.HasPrefix(c.Archive.EndpointURL, "http://") && !strings.HasPrefix(c.Archive.EndpointURL, "https://") {
		return fmt.Errorf("AWS_ENDPOINT_URL must start with http:// or https://, got %q", c.Archive.EndpointURL)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// envList splits a comma-separated variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
