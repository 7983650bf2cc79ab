package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Collaborator kinds accepted by INTERVIEWER and JUDGE.
const (
	InterviewerScripted = "scripted"
	JudgeHeuristic      = "heuristic"
	ProviderGemini      = "gemini"
)

// Session store backends accepted by SESSION_STORE.
const (
	StoreGorm   = "gorm"
	StoreMemory = "memory"
)

// app config, read from the environment and an optional .env file
type Config struct {
	Port     string
	LogLevel string

	SessionStore string
	DatabaseURL  string
	SQLitePath   string

	RedisAddr     string
	RedisPassword string
	LockMode      string
	LockTTL       time.Duration

	Interviewer      string
	Judge            string
	QuestionBankPath string

	AdvancePolicy      string
	AnswersPerPhase    int
	AdaptiveMinAnswers int
	AdaptiveMaxAnswers int

	CollaboratorTimeout time.Duration
	CollaboratorRetries int
	CollaboratorBackoff time.Duration

	AdminPassword      string
	JWTSecret          string
	JWTSecretGenerated bool
	TokenTTL           time.Duration

	ScoreBackfillSchedule string
	AllowedOrigins        []string
}

// UsesProvider reports whether any collaborator is backed by an LLM provider.
func (c *Config) UsesProvider() bool {
	return c.Interviewer != InterviewerScripted || c.Judge != JudgeHeuristic
}

// BackfillEnabled is false when SCORE_BACKFILL_SCHEDULE is "off".
func (c *Config) BackfillEnabled() bool {
	return c.ScoreBackfillSchedule != "" && c.ScoreBackfillSchedule != "off"
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := loadEnvFile(getEnvOrDefault("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	config := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		SessionStore: strings.ToLower(getEnvOrDefault("SESSION_STORE", StoreGorm)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   getEnvOrDefault("SQLITE_PATH", "talentscout.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LockMode:      strings.ToLower(getEnvOrDefault("LOCK_MODE", "queue")),
		LockTTL:       getEnvDuration("LOCK_TTL", 2*time.Minute),

		Interviewer:      strings.ToLower(getEnvOrDefault("INTERVIEWER", InterviewerScripted)),
		Judge:            strings.ToLower(getEnvOrDefault("JUDGE", JudgeHeuristic)),
		QuestionBankPath: os.Getenv("QUESTION_BANK_PATH"),

		AdvancePolicy:      strings.ToLower(getEnvOrDefault("ADVANCE_POLICY", "fixed")),
		AnswersPerPhase:    getEnvInt("ANSWERS_PER_PHASE", 3),
		AdaptiveMinAnswers: getEnvInt("ADAPTIVE_MIN_ANSWERS", 2),
		AdaptiveMaxAnswers: getEnvInt("ADAPTIVE_MAX_ANSWERS", 4),

		CollaboratorTimeout: getEnvDuration("COLLABORATOR_TIMEOUT", 20*time.Second),
		CollaboratorRetries: getEnvInt("COLLABORATOR_RETRIES", 2),
		CollaboratorBackoff: getEnvDuration("COLLABORATOR_BACKOFF", 500*time.Millisecond),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 24*time.Hour),

		ScoreBackfillSchedule: getEnvOrDefault("SCORE_BACKFILL_SCHEDULE", "@every 5m"),
		AllowedOrigins:        splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8501,http://localhost:5173")),
	}

	if config.JWTSecret == "" {
		// tokens will not survive a restart
		config.JWTSecret = uuid.New().String()
		config.JWTSecretGenerated = true
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	var errs []error
	if config.SessionStore != StoreGorm && config.SessionStore != StoreMemory {
		errs = append(errs, fmt.Errorf("unsupported SESSION_STORE %q, supported: gorm, memory", config.SessionStore))
	}
	if config.Interviewer != InterviewerScripted && config.Interviewer != ProviderGemini {
		errs = append(errs, fmt.Errorf("unsupported INTERVIEWER %q, supported: scripted, gemini", config.Interviewer))
	}
	if config.Judge != JudgeHeuristic && config.Judge != ProviderGemini {
		errs = append(errs, fmt.Errorf("unsupported JUDGE %q, supported: heuristic, gemini", config.Judge))
	}
	if config.LockMode != "queue" && config.LockMode != "fail" {
		errs = append(errs, fmt.Errorf("unsupported LOCK_MODE %q, supported: queue, fail", config.LockMode))
	}
	switch config.AdvancePolicy {
	case "fixed":
		if config.AnswersPerPhase < 1 {
			errs = append(errs, errors.New("ANSWERS_PER_PHASE must be at least 1"))
		}
	case "adaptive":
		if config.AdaptiveMinAnswers < 1 || config.AdaptiveMaxAnswers < config.AdaptiveMinAnswers {
			errs = append(errs, errors.New("ADAPTIVE_MIN_ANSWERS must be at least 1 and not above ADAPTIVE_MAX_ANSWERS"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported ADVANCE_POLICY %q, supported: fixed, adaptive", config.AdvancePolicy))
	}
	if config.CollaboratorTimeout <= 0 {
		errs = append(errs, errors.New("COLLABORATOR_TIMEOUT must be positive"))
	}
	if config.CollaboratorRetries < 0 {
		errs = append(errs, errors.New("COLLABORATOR_RETRIES must not be negative"))
	}
	// Gemini validation is handled by gemini.NewConfig()
	return errors.Join(errs...)
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
