package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string
	CORSOrigin  string

	Telemetry TelemetryConfig

	DBURL             string
	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBAutoMigrate     bool

	LLM       LLMConfig
	Chat      ChatConfig
	RateLimit RateLimitConfig
	Push      MetricsPushConfig
	Scheduler SchedulerConfig
}

// TelemetryConfig covers logging and OpenTelemetry export.
type TelemetryConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OtelEndpoint  string
	OtelProtocol  string
	SamplingRatio float64
}

type LLMConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type ChatConfig struct {
	ReadOnly     bool
	QueryTimeout time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ChatRate      float64
	ChatBurst     int
	ChatLockTTL   time.Duration
}

type SchedulerConfig struct {
	Enabled    bool
	Interval   time.Duration
	BatchSize  int
	JobTimeout time.Duration
}

type MetricsPushConfig struct {
	Exporter  string
	Endpoint  string
	AuthToken string
	Interval  time.Duration
}

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	provider := normalizeProvider(getenv("LLM_PROVIDER", ProviderGroq))

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "spendlens"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		Port:              getenv("PORT", "3001"),
		CORSOrigin:        getenv("CORS_ORIGIN", "http://localhost:3000"),
		DBURL:             strings.TrimSpace(getenv("DATABASE_URL", "")),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", ""),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBAutoMigrate:     getenvBool("DATABASE_AUTO_MIGRATE", true),
		Telemetry: TelemetryConfig{
			LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:   getenvBool("OTEL_ENABLED", false),
			OtelEndpoint:  strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
			OtelProtocol:  strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		LLM: LLMConfig{
			Provider:    provider,
			APIKey:      strings.TrimSpace(getenv("LLM_API_KEY", providerAPIKey(provider))),
			BaseURL:     strings.TrimSpace(getenv("LLM_BASE_URL", "")),
			Model:       strings.TrimSpace(getenv("LLM_MODEL", "")),
			Temperature: float32(getenvFloat("LLM_TEMPERATURE", 0.1)),
			MaxTokens:   getenvInt("LLM_MAX_TOKENS", 1000),
			Timeout:     getenvDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Chat: ChatConfig{
			ReadOnly:     getenvBool("CHAT_READ_ONLY", true),
			QueryTimeout: getenvDuration("CHAT_QUERY_TIMEOUT", 15*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			ChatRate:      getenvFloat("CHAT_RATE_PER_SECOND", 0.5),
			ChatBurst:     getenvInt("CHAT_RATE_BURST", 5),
			ChatLockTTL:   getenvDuration("CHAT_LOCK_TTL", 45*time.Second),
		},
		Push: MetricsPushConfig{
			Exporter:  strings.ToLower(strings.TrimSpace(getenv("METRICS_PUSH_EXPORTER", ""))),
			Endpoint:  strings.TrimSpace(getenv("METRICS_PUSH_ENDPOINT", "")),
			AuthToken: strings.TrimSpace(getenv("METRICS_PUSH_AUTH_TOKEN", "")),
			Interval:  getenvDuration("METRICS_PUSH_INTERVAL", 5*time.Minute),
		},
		Scheduler: SchedulerConfig{
			Enabled:    getenvBool("SCHEDULER_ENABLED", false),
			Interval:   getenvDuration("SCHEDULER_INTERVAL", time.Hour),
			BatchSize:  getenvInt("SCHEDULER_BATCH_SIZE", 500),
			JobTimeout: getenvDuration("SCHEDULER_JOB_TIMEOUT", time.Minute),
		},
	}

	return cfg
}

// IsDevelopment reports whether internal error detail may be shown.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// HasDatabase reports whether enough settings exist to reach a database.
func (c Config) HasDatabase() bool {
	if c.DBURL != "" {
		return true
	}
	if strings.EqualFold(c.DBType, "sqlite") {
		return true
	}
	return strings.TrimSpace(c.DBHost) != ""
}

func normalizeProvider(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case ProviderOpenAI, ProviderGemini:
		return value
	default:
		return ProviderGroq
	}
}

func providerAPIKey(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("GROQ_API_KEY")
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// getenvDuration accepts Go durations ("30s") or a bare number of seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return def
}
