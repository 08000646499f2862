package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hufschlaeger.net/basecamp-cardtables/internal/logger"
)

const (
	DefaultBaseURL   = "https://3.basecampapi.com"
	DefaultUserAgent = "basecamp-cardtables (https://hufschlaeger.net)"
	DefaultTimeout   = 30 * time.Second
)

type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
	Prefix       string `yaml:"prefix"`
}

// Enabled meldet, ob Exporte zusätzlich nach S3 hochgeladen werden.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

type Config struct {
	AccountID   string        `yaml:"account_id"`
	AccessToken string        `yaml:"access_token"`
	BaseURL     string        `yaml:"base_url"`
	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`

	ProjectID    int64  `yaml:"project_id"`
	CardTableID  int64  `yaml:"card_table_id"`
	OutputFile   string `yaml:"output_file"`
	ExportFormat string `yaml:"export_format"`
	Verbose      bool   `yaml:"verbose"`

	Logging logger.LoggingConfig `yaml:"logging"`
	S3      S3Config             `yaml:"s3"`
}

// NewConfig liest .env, optional eine YAML-Datei (BASECAMP_CONFIG) und danach die Umgebung.
func NewConfig() (*Config, error) {
	// .env laden (ignoriere Fehler wenn Datei nicht existiert)
	if os.Getenv("GODOTENV_DISABLE") == "" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "⚠️  Warnung beim Laden der .env: %v\n", err)
		}
	}

	cfg := &Config{
		BaseURL:      DefaultBaseURL,
		UserAgent:    DefaultUserAgent,
		Timeout:      DefaultTimeout,
		ExportFormat: "markdown",
		Logging:      logger.LoggingConfig{Level: "warn", Format: "console", OutputPath: "stderr"},
		S3:           S3Config{Region: "us-east-1", Prefix: "exports/"},
	}

	if path := os.Getenv("BASECAMP_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Verbose {
		cfg.Logging.Level = "debug"
		cfg.printDebugInfo()
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.AccountID = getEnv("BASECAMP_ACCOUNT_ID", c.AccountID)
	c.AccessToken = getEnv("BASECAMP_ACCESS_TOKEN", c.AccessToken)
	c.BaseURL = getEnv("BASECAMP_BASE_URL", c.BaseURL)
	c.UserAgent = getEnv("BASECAMP_USER_AGENT", c.UserAgent)
	c.OutputFile = getEnv("OUTPUT_FILE", c.OutputFile)
	c.ExportFormat = getEnv("EXPORT_FORMAT", c.ExportFormat)
	c.Verbose = getBoolEnv("VERBOSE", c.Verbose)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Logging.OutputPath = getEnv("LOG_OUTPUT", c.Logging.OutputPath)

	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.AccessKey = getEnv("S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = getEnv("S3_SECRET_KEY", c.S3.SecretKey)
	c.S3.UsePathStyle = getBoolEnv("S3_USE_PATH_STYLE", c.S3.UsePathStyle)
	c.S3.Prefix = getEnv("S3_PREFIX", c.S3.Prefix)

	var err error
	if c.Timeout, err = getDurationEnv("BASECAMP_TIMEOUT", c.Timeout); err != nil {
		return err
	}
	if c.ProjectID, err = getInt64Env("BASECAMP_PROJECT_ID", c.ProjectID); err != nil {
		return err
	}
	if c.CardTableID, err = getInt64Env("BASECAMP_CARD_TABLE_ID", c.CardTableID); err != nil {
		return err
	}
	return nil
}

func (c *Config) printDebugInfo() {
	fmt.Fprintf(os.Stderr, "🔧 Configuration loaded:\n")
	fmt.Fprintf(os.Stderr, "   Basecamp URL: %s\n", c.GetBasecampBaseURL())
	fmt.Fprintf(os.Stderr, "   User-Agent: %s\n", c.UserAgent)
	fmt.Fprintf(os.Stderr, "   Has Access Token: %t (length: %d)\n", c.AccessToken != "", len(c.AccessToken))
	if c.ProjectID != 0 {
		fmt.Fprintf(os.Stderr, "   Project: %d\n", c.ProjectID)
	}
	if c.S3.Enabled() {
		fmt.Fprintf(os.Stderr, "   S3 Bucket: %s\n", c.S3.Bucket)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s ist keine gültige ID: %q", key, value)
	}
	return parsed, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s ist keine gültige Dauer: %q", key, value)
	}
	return parsed, nil
}

func (c *Config) Validate() error {
	if c.AccountID == "" {
		return fmt.Errorf("Basecamp Account-ID fehlt (BASECAMP_ACCOUNT_ID)")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("Basecamp Access Token fehlt (BASECAMP_ACCESS_TOKEN)")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("User-Agent fehlt (BASECAMP_USER_AGENT)")
	}
	switch c.ExportFormat {
	case "markdown", "yaml", "json":
	default:
		return fmt.Errorf("unbekanntes Export-Format %q (markdown, yaml, json)", c.ExportFormat)
	}
	return nil
}

// GetBasecampBaseURL liefert {base}/{account} ohne abschließenden Slash.
func (c *Config) GetBasecampBaseURL() string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if c.AccountID == "" {
		return base
	}
	return base + "/" + c.AccountID
}
