package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BlobDriverFS = "fs"
	BlobDriverS3 = "s3"
)

// Config is read from an optional YAML file named by FILES_CONFIG_FILE and
// then from the environment. Environment variables win over the file.
type Config struct {
	SecretKey      string `yaml:"secret_key"`      // Required outside dev: HMAC secret for every token
	SessionIssuer  string `yaml:"session_issuer"`  // Optional: "iss" of session tokens (default: fileaccess)
	BootstrapToken string `yaml:"bootstrap_token"` // Optional: required to provision users

	DatabaseFile string   `yaml:"database_file"` // Optional: path to SQLite database file (default: ./files.db)
	PepperFile   string   `yaml:"pepper_file"`   // Optional: pepper for password hashing (default: ./pepper)
	BlobDriver   string   `yaml:"blob_driver"`   // Optional: fs or s3 (default: fs)
	BlobRoot     string   `yaml:"blob_root"`     // Optional: root directory of the fs driver (default: ./blobs)
	S3           S3Config `yaml:"s3"`

	SessionTTL              time.Duration `yaml:"session_ttl"`               // Session token lifetime (default: 8h)
	TempAccessDefaultDays   int           `yaml:"temp_access_default_days"`  // Lifetime when ?days is absent (default: 30)
	ArchiveFetchConcurrency int           `yaml:"archive_fetch_concurrency"` // Parallel blob opens per archive (default: 4)
	MaxUploadBytes          int64         `yaml:"max_upload_bytes"`          // Largest accepted PUT body (default: 5 GiB)
	DownloadEventRetention  time.Duration `yaml:"download_event_retention"`  // Age at which download events are pruned (default: 90 days)
	HousekeepingInterval    time.Duration `yaml:"housekeeping_interval"`     // Housekeeping interval (default: 1h)

	Env                 string        `yaml:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        `yaml:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        `yaml:"log_format"`            // Log format (json, text) (default: json)
	Port                int           `yaml:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

func defaultConfig() Config {
	return Config{
		SessionIssuer:           "fileaccess",
		DatabaseFile:            "files.db",
		PepperFile:              "pepper",
		BlobDriver:              BlobDriverFS,
		BlobRoot:                "blobs",
		S3:                      S3Config{Region: "us-east-1"},
		SessionTTL:              8 * time.Hour,
		TempAccessDefaultDays:   30,
		ArchiveFetchConcurrency: 4,
		MaxUploadBytes:          5 << 30,
		DownloadEventRetention:  90 * 24 * time.Hour,
		HousekeepingInterval:    time.Hour,
		Env:                     "dev",
		LogLevel:                "info",
		LogFormat:               "json",
		Port:                    8080,
		ShutdownGracePeriod:     10 * time.Second,
	}
}

func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("FILES_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	cfg.SecretKey = getEnvOrDefault("FILES_SECRET_KEY", cfg.SecretKey)
	cfg.SessionIssuer = getEnvOrDefault("FILES_SESSION_ISSUER", cfg.SessionIssuer)
	cfg.BootstrapToken = getEnvOrDefault("BOOTSTRAP_TOKEN", cfg.BootstrapToken)

	cfg.DatabaseFile = getEnvOrDefault("FILES_DATABASE_FILE", cfg.DatabaseFile)
	cfg.PepperFile = getEnvOrDefault("FILES_PEPPER_FILE", cfg.PepperFile)
	cfg.BlobDriver = getEnvOrDefault("FILES_BLOB_DRIVER", cfg.BlobDriver)
	cfg.BlobRoot = getEnvOrDefault("FILES_BLOB_ROOT", cfg.BlobRoot)
	cfg.S3.Bucket = getEnvOrDefault("FILES_S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.Region = getEnvOrDefault("FILES_S3_REGION", cfg.S3.Region)
	cfg.S3.Endpoint = getEnvOrDefault("FILES_S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.AccessKey = getEnvOrDefault("FILES_S3_ACCESS_KEY", cfg.S3.AccessKey)
	cfg.S3.SecretKey = getEnvOrDefault("FILES_S3_SECRET_KEY", cfg.S3.SecretKey)

	cfg.SessionTTL = getEnvDurationOrDefault("SESSION_TTL", cfg.SessionTTL)
	cfg.TempAccessDefaultDays = getEnvIntOrDefault("TEMP_ACCESS_DEFAULT_DAYS", cfg.TempAccessDefaultDays)
	cfg.ArchiveFetchConcurrency = getEnvIntOrDefault("ARCHIVE_FETCH_CONCURRENCY", cfg.ArchiveFetchConcurrency)
	cfg.MaxUploadBytes = int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.DownloadEventRetention = getEnvDurationOrDefault("DOWNLOAD_EVENT_RETENTION", cfg.DownloadEventRetention)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)

	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with. An empty
// secret is only accepted in dev, where New generates a throwaway one.
func (c Config) Validate() error {
	var errs []error

	if c.SecretKey == "" && !c.IsDev() {
		errs = append(errs, errors.New("FILES_SECRET_KEY is required outside dev"))
	}
	switch c.BlobDriver {
	case BlobDriverFS:
		if c.BlobRoot == "" {
			errs = append(errs, errors.New("FILES_BLOB_ROOT is required for the fs blob driver"))
		}
	case BlobDriverS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("FILES_S3_BUCKET is required for the s3 blob driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob driver %q", c.BlobDriver))
	}
	if c.TempAccessDefaultDays < 0 {
		errs = append(errs, errors.New("TEMP_ACCESS_DEFAULT_DAYS must not be negative"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) IsDev() bool { return c.Env == "dev" }

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
