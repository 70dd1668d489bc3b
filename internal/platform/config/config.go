package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "AEO_CONFIG"

var (
	errInvalidPort           = errors.New("config: invalid PORT number")
	errConcurrencyOutOfRange = errors.New("config: BATCH_CONCURRENCY must be 1-100")
	errInvalidTimeout        = errors.New("config: fetch timeouts must be positive")
	errProbeExceedsFetch     = errors.New("config: PROBE_TIMEOUT must not exceed FETCH_TIMEOUT")
)

// Config holds all application configuration. Values come from defaults, an
// optional YAML file named by AEO_CONFIG, and environment variables, in that
// order of precedence (later wins).
type Config struct {
	Port             string          `yaml:"port"`
	LogLevel         string          `yaml:"log_level"`
	ProbeTimeout     time.Duration   `yaml:"probe_timeout"`
	FetchTimeout     time.Duration   `yaml:"fetch_timeout"`
	BatchConcurrency int             `yaml:"batch_concurrency"`
	Storage          StorageConfig   `yaml:"storage"`
	Archive          ArchiveConfig   `yaml:"archive"`
	Tips             TipsConfig      `yaml:"tips"`
	Mailchimp        MailchimpConfig `yaml:"mailchimp"`
}

// StorageConfig points at the SQLite report history. An empty path disables it.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// ArchiveConfig describes the S3-compatible bucket receiving report JSON.
// An empty bucket disables archiving.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Enabled reports whether a bucket is configured.
func (a ArchiveConfig) Enabled() bool { return a.Bucket != "" }

// TipsConfig defines how to reach the OpenAI-compatible text generation API.
type TipsConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// Enabled reports whether an API key is present.
func (t TipsConfig) Enabled() bool { return t.APIKey != "" }

// MailchimpConfig wires lead capture into a Mailchimp audience.
type MailchimpConfig struct {
	APIKey       string `yaml:"api_key"`
	ServerPrefix string `yaml:"server_prefix"`
	AudienceID   string `yaml:"audience_id"`
}

// Enabled reports whether every Mailchimp field is present.
func (m MailchimpConfig) Enabled() bool {
	return m.APIKey != "" && m.ServerPrefix != "" && m.AudienceID != ""
}

// Load reads configuration from an optional YAML file and environment variables
// with sensible defaults.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()

	return cfg, cfg.validate()
}

func defaultConfig() Config {
	return Config{
		Port:             "8080",
		LogLevel:         "ERROR",
		ProbeTimeout:     5 * time.Second,
		FetchTimeout:     10 * time.Second,
		BatchConcurrency: 5,
		Archive:          ArchiveConfig{Region: "us-east-1"},
		Tips: TipsConfig{
			Endpoint: "https://api.x.ai/v1/chat/completions",
			Model:    "grok-3-mini",
		},
	}
}

// mergeFile overlays non-zero values from the YAML file at path.
func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	setString(&c.Port, file.Port)
	setString(&c.LogLevel, file.LogLevel)
	if file.ProbeTimeout != 0 {
		c.ProbeTimeout = file.ProbeTimeout
	}
	if file.FetchTimeout != 0 {
		c.FetchTimeout = file.FetchTimeout
	}
	if file.BatchConcurrency != 0 {
		c.BatchConcurrency = file.BatchConcurrency
	}

	setString(&c.Storage.SQLitePath, file.Storage.SQLitePath)

	setString(&c.Archive.Endpoint, file.Archive.Endpoint)
	setString(&c.Archive.Bucket, file.Archive.Bucket)
	setString(&c.Archive.Region, file.Archive.Region)
	setString(&c.Archive.AccessKey, file.Archive.AccessKey)
	setString(&c.Archive.SecretKey, file.Archive.SecretKey)

	setString(&c.Tips.Endpoint, file.Tips.Endpoint)
	setString(&c.Tips.Model, file.Tips.Model)
	setString(&c.Tips.APIKey, file.Tips.APIKey)

	setString(&c.Mailchimp.APIKey, file.Mailchimp.APIKey)
	setString(&c.Mailchimp.ServerPrefix, file.Mailchimp.ServerPrefix)
	setString(&c.Mailchimp.AudienceID, file.Mailchimp.AudienceID)

	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.ProbeTimeout = getEnvAsDuration("PROBE_TIMEOUT", c.ProbeTimeout)
	c.FetchTimeout = getEnvAsDuration("FETCH_TIMEOUT", c.FetchTimeout)
	c.BatchConcurrency = getEnvAsInt("BATCH_CONCURRENCY", c.BatchConcurrency)

	c.Storage.SQLitePath = getEnv("SQLITE_PATH", c.Storage.SQLitePath)

	c.Archive.Endpoint = getEnv("S3_SERVICE_URL", c.Archive.Endpoint)
	c.Archive.Bucket = getEnv("S3_BUCKET_NAME", c.Archive.Bucket)
	c.Archive.Region = getEnv("S3_REGION", c.Archive.Region)
	c.Archive.AccessKey = getEnv("S3_ACCESS_KEY", c.Archive.AccessKey)
	c.Archive.SecretKey = getEnv("S3_SECRET_KEY", c.Archive.SecretKey)

	c.Tips.Endpoint = getEnv("XAI_ENDPOINT", c.Tips.Endpoint)
	c.Tips.Model = getEnv("XAI_MODEL", c.Tips.Model)
	c.Tips.APIKey = getEnv("XAI_API_KEY", c.Tips.APIKey)

	c.Mailchimp.APIKey = getEnv("MAILCHIMP_API_KEY", c.Mailchimp.APIKey)
	c.Mailchimp.ServerPrefix = getEnv("MAILCHIMP_SERVER_PREFIX", c.Mailchimp.ServerPrefix)
	c.Mailchimp.AudienceID = getEnv("MAILCHIMP_AUDIENCE_ID", c.Mailchimp.AudienceID)
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.BatchConcurrency < 1 || c.BatchConcurrency > 100 {
		return fmt.Errorf("%w: got %d", errConcurrencyOutOfRange, c.BatchConcurrency)
	}

	if c.ProbeTimeout <= 0 || c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: probe=%s fetch=%s", errInvalidTimeout, c.ProbeTimeout, c.FetchTimeout)
	}
	if c.ProbeTimeout > c.FetchTimeout {
		return fmt.Errorf("%w: probe=%s fetch=%s", errProbeExceedsFetch, c.ProbeTimeout, c.FetchTimeout)
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

// getEnvAsDuration accepts Go duration strings ("5s") or bare milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
