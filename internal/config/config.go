package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SeedFile       string        // optional YAML file with default suggestions (empty = disabled)
	ReloadInterval time.Duration // interval to reload the seed file
	FlushInterval  time.Duration // interval to persist dirty suggestions to redis

	// Rate limiting of mutating suggestion routes
	RateLimitBurst     int
	RateLimitPerMinute int

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts
	RedisKeyPrefix        string        // namespace of every key written by the store

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("URLPOP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("URLPOP_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("URLPOP_REQUEST_TIMEOUT", 2*time.Second),

		// Logging
		LogLevel:  getenv("URLPOP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("URLPOP_PRETTY_LOG", true),

		// Suggestions
		SeedFile:       getenv("URLPOP_SEED_FILE", ""),
		ReloadInterval: mustDuration("URLPOP_RELOAD_INTERVAL", 24*time.Hour),
		FlushInterval:  mustDuration("URLPOP_FLUSH_INTERVAL", 10*time.Second),

		RateLimitBurst:     getenvInt("URLPOP_RATE_LIMIT_BURST", 30),
		RateLimitPerMinute: getenvInt("URLPOP_RATE_LIMIT_PER_MINUTE", 120),

		// Redis settings
		RedisAddr:             requireEnv("URLPOP_REDIS_ADDR"),
		RedisUser:             getenv("URLPOP_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("URLPOP_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("URLPOP_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("URLPOP_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),
		RedisKeyPrefix:        getenv("URLPOP_REDIS_KEY_PREFIX", "urlpop:"),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("URLPOP_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("URLPOP_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("URLPOP_TRUST_PROXY", false),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: URLPOP_REDIS_PASSWORD is required when URLPOP_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.FlushInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: URLPOP_FLUSH_INTERVAL must be > 0, got %v", cfg.FlushInterval))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := requireEnv(key)
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
