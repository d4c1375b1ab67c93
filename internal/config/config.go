package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	LLM         LLMConfig
	Worker      WorkerConfig
	Scoring     ScoringConfig
	Emotion     EmotionConfig
	Rubric      RubricConfig
	Knowledge   KnowledgeConfig
	Transcriber TranscriberConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	URL             string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

// LLMConfig holds LLM provider configuration for the evaluator and the
// narrative summary service.
type LLMConfig struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	OllamaBaseURL   string
	OllamaModel     string
	DefaultProvider string // "openai", "anthropic", or "ollama"
	EvaluatorModel  string
	SummaryModel    string
	Timeout         time.Duration
}

// WorkerConfig holds scoring worker configuration.
type WorkerConfig struct {
	Concurrency   int
	BatchSize     int
	StreamName    string
	ConsumerGroup string
	ConsumerName  string
}

// ScoringConfig holds consensus and validation knobs. Passed explicitly into
// the scoring engine so tests can run different configurations side by side.
type ScoringConfig struct {
	ConsensusCount      int
	AttemptParallelism  int
	AttemptTimeout      time.Duration
	RetryMax            int
	RetryBaseDelay      time.Duration
	SimilarityThreshold float64
	// SilenceThreshold marks dead air in the rendered transcript. Shares the
	// SILENCE_THRESHOLD knob with the emotion aggregates.
	SilenceThreshold float64
}

// EmotionConfig holds fusion thresholds and the negative label set.
type EmotionConfig struct {
	DisagreementPenalty float64
	PoorLabels          []string
	PoorConfidence      float64
	SilenceThreshold    float64
	TextServiceURL      string
	AudioServiceURL     string
}

// RubricConfig names where rubric YAML files live.
type RubricConfig struct {
	Dir            string
	DefaultVersion string
}

// KnowledgeConfig names the project knowledge file.
type KnowledgeConfig struct {
	Path string
}

// TranscriberConfig holds speech-to-text service configuration.
type TranscriberConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	PollInterval time.Duration
	Timeout      time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", getEnvAsInt("PORT", 8080)),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "call_audit"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Hour),
		},
		Redis: loadRedisConfig(),
		LLM: LLMConfig{
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:     getEnv("OLLAMA_MODEL", "llama3.1:8b"),
			DefaultProvider: getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			EvaluatorModel:  getEnv("EVALUATOR_MODEL", "gpt-4o-mini"),
			SummaryModel:    getEnv("SUMMARY_MODEL", "gpt-4o-mini"),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Worker: WorkerConfig{
			Concurrency:   getEnvAsInt("WORKER_CONCURRENCY", 4),
			BatchSize:     getEnvAsInt("WORKER_BATCH_SIZE", 4),
			StreamName:    getEnv("WORKER_STREAM_NAME", "scoring-jobs"),
			ConsumerGroup: getEnv("WORKER_CONSUMER_GROUP", "score-workers"),
			ConsumerName:  getEnv("WORKER_CONSUMER_NAME", "worker-1"),
		},
		Scoring: ScoringConfig{
			ConsensusCount:      getEnvAsInt("SCORING_CONSENSUS_COUNT", 1),
			AttemptParallelism:  getEnvAsInt("SCORING_ATTEMPT_PARALLELISM", 3),
			AttemptTimeout:      getEnvAsDuration("SCORING_ATTEMPT_TIMEOUT", 3*time.Minute),
			RetryMax:            getEnvAsInt("SCORING_RETRY_MAX", 2),
			RetryBaseDelay:      getEnvAsDuration("SCORING_RETRY_BASE_DELAY", time.Second),
			SimilarityThreshold: getEnvAsFloat("SCORING_SIMILARITY_THRESHOLD", 0.8),
			SilenceThreshold:    getEnvAsFloat("SILENCE_THRESHOLD", 2.5),
		},
		Emotion: EmotionConfig{
			DisagreementPenalty: getEnvAsFloat("EMOTION_DISAGREEMENT_PENALTY", 0.75),
			PoorLabels:          getEnvAsSlice("EMOTION_POOR_LABELS", []string{"anger", "frustration", "disgust", "fear"}),
			PoorConfidence:      getEnvAsFloat("EMOTION_POOR_CONFIDENCE", 0.6),
			SilenceThreshold:    getEnvAsFloat("SILENCE_THRESHOLD", 2.5),
			TextServiceURL:      getEnv("EMOTION_TEXT_URL", ""),
			AudioServiceURL:     getEnv("EMOTION_AUDIO_URL", ""),
		},
		Rubric: RubricConfig{
			Dir:            getEnv("RUBRIC_DIR", "rubrics"),
			DefaultVersion: getEnv("RUBRIC_DEFAULT_VERSION", "v2"),
		},
		Knowledge: KnowledgeConfig{
			Path: getEnv("KNOWLEDGE_PATH", "knowledge/facts.json"),
		},
		Transcriber: TranscriberConfig{
			BaseURL:      getEnv("STT_BASE_URL", "https://api.soniox.com"),
			APIKey:       getEnv("STT_API_KEY", ""),
			Model:        getEnv("STT_MODEL", "stt-async-preview"),
			PollInterval: getEnvAsDuration("STT_POLL_INTERVAL", time.Second),
			Timeout:      getEnvAsDuration("STT_TIMEOUT", 10*time.Minute),
		},
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Addr returns the Redis address.
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Validate checks that the Redis configuration is usable.
func (c *RedisConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("redis host is empty, set REDIS_URL or REDIS_HOST")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid redis port: %d", c.Port)
	}
	return nil
}

func loadRedisConfig() RedisConfig {
	redisURL := getEnv("REDIS_URL", "")
	if redisURL != "" {
		return parseRedisURL(redisURL)
	}

	return RedisConfig{
		Host:     getEnv("REDISHOST", getEnv("REDIS_HOST", "localhost")),
		Port:     getEnvAsInt("REDISPORT", getEnvAsInt("REDIS_PORT", 6379)),
		Password: getEnv("REDISPASSWORD", getEnv("REDIS_PASSWORD", "")),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func parseRedisURL(redisURL string) RedisConfig {
	cfg := RedisConfig{
		URL:  redisURL,
		Port: 6379,
	}

	if !strings.HasPrefix(redisURL, "redis://") && !strings.HasPrefix(redisURL, "rediss://") {
		redisURL = "redis://" + redisURL
		cfg.URL = redisURL
	}

	u, err := url.Parse(redisURL)
	if err != nil {
		return cfg
	}

	if u.User != nil {
		cfg.Password, _ = u.User.Password()
	}

	cfg.Host = u.Hostname()
	if u.Port() != "" {
		if port, err := strconv.Atoi(u.Port()); err == nil {
			cfg.Port = port
		}
	}

	if dbStr := strings.TrimPrefix(u.Path, "/"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.DB = db
		}
	}

	return cfg
}

// Addr returns the server listen address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
