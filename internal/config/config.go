package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment string
	HTTPPort    string
	ServiceName string

	// Realm is the relying-party identifier presented to OpenID providers.
	Realm string
	// EndpointRegex validates caller-supplied callback end points.
	EndpointRegex *regexp.Regexp

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AttemptTTL time.Duration
	ResultTTL  time.Duration
	SessionTTL time.Duration

	CookieSecure bool

	// Provider selects the hook set: "openid", "google", or "yahoo".
	Provider          string
	GoogleConsumerKey string
	GoogleOAuthScope  string

	RateLimitRPM      int
	TelemetryEndpoint string
	TelemetryInsecure bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	realm := strings.TrimSpace(os.Getenv("OPENID_REALM"))
	if realm == "" {
		return Config{}, fmt.Errorf("OPENID_REALM is required")
	}

	pattern := strings.TrimSpace(os.Getenv("ENDPOINT_REGEX"))
	if pattern == "" {
		return Config{}, fmt.Errorf("ENDPOINT_REGEX is required")
	}
	endpointRegex, err := regexp.Compile(pattern)
	if err != nil {
		return Config{}, fmt.Errorf("ENDPOINT_REGEX must be a valid regexp: %w", err)
	}

	cfg := Config{
		Environment:       getEnv("APP_ENV", "development"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		ServiceName:       getEnv("SERVICE_NAME", "velruse"),
		Realm:             realm,
		EndpointRegex:     endpointRegex,
		RedisAddr:         getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		AttemptTTL:        getDuration("ATTEMPT_TTL", 5*time.Minute),
		ResultTTL:         getDuration("RESULT_TTL", 5*time.Minute),
		SessionTTL:        getDuration("SESSION_TTL", 30*time.Minute),
		CookieSecure:      getBool("COOKIE_SECURE", true),
		Provider:          strings.ToLower(getEnv("OPENID_PROVIDER", "openid")),
		GoogleConsumerKey: os.Getenv("GOOGLE_CONSUMER_KEY"),
		GoogleOAuthScope:  os.Getenv("GOOGLE_OAUTH_SCOPE"),
		RateLimitRPM:      getInt("RATE_LIMIT_RPM", 600),
		TelemetryEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure: getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}

	switch cfg.Provider {
	case "openid", "google", "yahoo":
	default:
		return Config{}, fmt.Errorf("OPENID_PROVIDER must be one of openid, google, yahoo")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
