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

const (
	DefaultDatabaseName   = "docvault"
	DefaultMaxPoolSize    = 10
	DefaultConnectTimeout = 10 * time.Second
	DefaultHTTPAddr       = ":8080"
	DefaultUploadDir      = "uploads"
	DefaultPublicURL      = "http://localhost:8080"
	DefaultMaxUploadSize  = 10 << 20
	DefaultAPIURL         = "http://localhost:8080"
)

// Environment keys. DATABASE_URI wins over MONGODB_URI when both are set.
const (
	EnvDatabaseURI    = "DATABASE_URI"
	EnvMongoURI       = "MONGODB_URI"
	EnvDatabaseName   = "DATABASE_NAME"
	EnvMaxPoolSize    = "DB_MAX_POOL_SIZE"
	EnvConnectTimeout = "DB_CONNECT_TIMEOUT"
	EnvHTTPAddr       = "HTTP_ADDR"
	EnvUploadDir      = "UPLOAD_DIR"
	EnvPublicURL      = "PUBLIC_URL"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"
	EnvAPIURL         = "DOCVAULT_API"
	EnvLogLevel       = "LOG_LEVEL"
)

// ConfigurationError reports a required setting that is missing or unusable.
// It is fatal: nothing retries past it.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// EnvURIKeys names both keys the database URI is read from.
const EnvURIKeys = EnvDatabaseURI + " or " + EnvMongoURI

// MissingURIError is returned when neither URI key is set.
func MissingURIError() *ConfigurationError {
	return &ConfigurationError{Key: EnvURIKeys, Reason: "is missing"}
}

// Config holds the application settings.
type Config struct {
	DatabaseURI    string
	DatabaseName   string
	MaxPoolSize    int
	ConnectTimeout time.Duration
	HTTPAddr       string
	UploadDir      string
	PublicURL      string
	MaxUploadSize  int64
	APIURL         string
	LogLevel       string
}

// LoadConfig loads configuration from the given .env files (or ./.env when none are
// given) and the process environment. Missing settings fall back to defaults;
// the database URI has no default and is checked by Validate.
func LoadConfig(envFiles ...string) Config {

	_ = godotenv.Load(envFiles...)

	uri := os.Getenv(EnvDatabaseURI)
	if strings.TrimSpace(uri) == "" {
		uri = os.Getenv(EnvMongoURI)
	}

	return Config{
		DatabaseURI:    strings.TrimSpace(uri),
		DatabaseName:   getEnvOrDefault(EnvDatabaseName, DefaultDatabaseName),
		MaxPoolSize:    getEnvOrDefaultInt(EnvMaxPoolSize, DefaultMaxPoolSize),
		ConnectTimeout: getEnvOrDefaultDuration(EnvConnectTimeout, DefaultConnectTimeout),
		HTTPAddr:       getEnvOrDefault(EnvHTTPAddr, DefaultHTTPAddr),
		UploadDir:      getEnvOrDefault(EnvUploadDir, DefaultUploadDir),
		PublicURL:      strings.TrimRight(getEnvOrDefault(EnvPublicURL, DefaultPublicURL), "/"),
		MaxUploadSize:  int64(getEnvOrDefaultInt(EnvMaxUploadSize, DefaultMaxUploadSize)),
		APIURL:         strings.TrimRight(getEnvOrDefault(EnvAPIURL, DefaultAPIURL), "/"),
		LogLevel:       os.Getenv(EnvLogLevel),
	}
}

// Validate checks the settings the server needs before accepting requests.
// Returns a *ConfigurationError for the first invalid setting.
func (c Config) Validate() error {

	if strings.TrimSpace(c.DatabaseURI) == "" {
		return MissingURIError()
	}

	u, err := url.Parse(c.DatabaseURI)
	if err != nil || u.Scheme == "" {
		return &ConfigurationError{Key: EnvDatabaseURI, Reason: "must be a URI such as mongodb://host:27017"}
	}

	if strings.TrimSpace(c.DatabaseName) == "" {
		return &ConfigurationError{Key: EnvDatabaseName, Reason: "cannot be empty or contain only whitespace"}
	}

	if c.MaxPoolSize < 1 {
		return &ConfigurationError{Key: EnvMaxPoolSize, Reason: "must be at least 1"}
	}

	if c.ConnectTimeout <= 0 {
		return &ConfigurationError{Key: EnvConnectTimeout, Reason: "must be a positive duration"}
	}

	if c.MaxUploadSize < 1 {
		return &ConfigurationError{Key: EnvMaxUploadSize, Reason: "must be a positive number of bytes"}
	}

	if strings.TrimSpace(c.UploadDir) == "" {
		return &ConfigurationError{Key: EnvUploadDir, Reason: "cannot be empty or contain only whitespace"}
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		p, err := strconv.Atoi(value)
		if err == nil {
			return p
		}
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
