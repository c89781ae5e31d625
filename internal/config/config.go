package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	Env                string
	LogLevel           string
	RateLimitPerMinute int

	// Extraction service
	LLMParseURL   string
	NLUTimeout    time.Duration
	NLUMaxRetries int

	// Ledger
	DataBackend  string
	SQLiteDBPath string

	// Sessions
	SessionBackend    string
	SessionTTL        time.Duration
	SessionMaxEntries int
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	// Classifier
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	ClassifierCacheSize int
	ClassifierCacheTTL  time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets journal
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		LLMParseURL:   getEnv("LLM_PARSE_URL", "http://localhost:8001/parse"),
		NLUTimeout:    getEnvDuration("NLU_TIMEOUT", 10*time.Second),
		NLUMaxRetries: getEnvInt("NLU_MAX_RETRIES", 2),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "data/vslim.db"),

		SessionBackend:    getEnv("SESSION_BACKEND", "memory"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMaxEntries: getEnvInt("SESSION_MAX_ENTRIES", 10000),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),

		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ClassifierCacheSize: getEnvInt("CLASSIFIER_CACHE_SIZE", 1000),
		ClassifierCacheTTL:  getEnvDuration("CLASSIFIER_CACHE_TTL", 24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "vslim_exchange"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_journal"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Journal"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
	}

	return cfg
}

// Validate validates the server configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	// Validate extraction service
	if parsedURL, err := url.Parse(c.LLMParseURL); err != nil || c.LLMParseURL == "" {
		errors = append(errors, fmt.Sprintf("invalid LLM parse URL '%s'", c.LLMParseURL))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid LLM parse URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}
	if c.NLUTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid NLU timeout %v: must be at least 100ms", c.NLUTimeout))
	}
	if c.NLUMaxRetries < 0 || c.NLUMaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid NLU max retries %d: must be between 0 and 10", c.NLUMaxRetries))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	if !oneOf(c.DataBackend, validBackends) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate session store
	validSessionBackends := []string{"memory", "redis"}
	if !oneOf(c.SessionBackend, validSessionBackends) {
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of %v", c.SessionBackend, validSessionBackends))
	}
	if c.SessionBackend == "redis" && c.RedisAddr == "" {
		errors = append(errors, "Redis address cannot be empty when using redis session backend")
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMaxEntries < 0 {
		errors = append(errors, fmt.Sprintf("invalid session max entries %d: must not be negative", c.SessionMaxEntries))
	}

	// Validate classifier cache
	if c.ClassifierCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid classifier cache size %d: must not be negative", c.ClassifierCacheSize))
	}
	if c.OpenAIAPIKey != "" && c.OpenAIModel == "" {
		errors = append(errors, "OpenAI model cannot be empty when an API key is provided")
	}

	errors = append(errors, c.validateAMQP()...)

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker checks what the journal worker needs: a broker to consume
// from and a spreadsheet to write to.
func (c *Config) ValidateWorker() error {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the journal worker")
	}
	errors = append(errors, c.validateAMQP()...)

	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the journal worker")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required for the journal worker")
	}

	hasFile := c.GoogleServiceAccountFile != ""
	if !hasFile && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the journal worker")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateAMQP() []string {
	if c.AMQPURL == "" {
		return nil
	}

	var errors []string
	if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
	}
	if c.AMQPExchange == "" {
		errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
	}
	return errors
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
