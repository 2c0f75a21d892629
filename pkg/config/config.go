package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix shared by every environment variable the tool reads
const EnvPrefix = "IGUNFOLLOW_"

// Config holds all configuration options for igunfollow
type Config struct {
	// Session cookies and API identity
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// List retrieval settings
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Mutation loop settings
	Unfollow UnfollowConfig `yaml:"unfollow" json:"unfollow"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	SessionID string `yaml:"session_id" json:"session_id"`
	CSRFToken string `yaml:"csrf_token" json:"csrf_token"`
	DSUserID  string `yaml:"ds_user_id" json:"ds_user_id"`
	Username  string `yaml:"username" json:"username"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	AppID     string `yaml:"app_id" json:"app_id"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
}

// FetchConfig controls paginated list retrieval
type FetchConfig struct {
	PageSize       int           `yaml:"page_size" json:"page_size"`
	PageDelay      time.Duration `yaml:"page_delay" json:"page_delay"`
	MaxPages       int           `yaml:"max_pages" json:"max_pages"`
	MaxItems       int           `yaml:"max_items" json:"max_items"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
}

// UnfollowConfig controls the throttled mutation loop
type UnfollowConfig struct {
	MinDelay          time.Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" json:"max_delay"`
	StartDelay        time.Duration `yaml:"start_delay" json:"start_delay"`
	ErrorCooldown     time.Duration `yaml:"error_cooldown" json:"error_cooldown"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxUnfollows      int           `yaml:"max_unfollows" json:"max_unfollows"`
	DryRun            bool          `yaml:"dry_run" json:"dry_run"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			AppID:     "936619743392459",
			BaseURL:   "https://www.instagram.com",
		},
		Fetch: FetchConfig{
			PageSize:       50,
			PageDelay:      time.Second,
			MaxPages:       400,
			MaxItems:       0, // 0 means no limit
			RequestTimeout: 30 * time.Second,
			Timeout:        30 * time.Minute,
		},
		Unfollow: UnfollowConfig{
			MinDelay:          3 * time.Second,
			MaxDelay:          6 * time.Second,
			StartDelay:        3 * time.Second,
			ErrorCooldown:     0,
			RequestsPerMinute: 0,
			MaxUnfollows:      0, // 0 means every non-follower
			DryRun:            false,
		},
		Notifications: NotificationConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	// Session cookies
	if v := os.Getenv(EnvPrefix + "SESSION_ID"); v != "" {
		c.Instagram.SessionID = v
	}
	if v := os.Getenv(EnvPrefix + "CSRF_TOKEN"); v != "" {
		c.Instagram.CSRFToken = v
	}
	if v := os.Getenv(EnvPrefix + "DS_USER_ID"); v != "" {
		c.Instagram.DSUserID = v
	}
	if v := os.Getenv(EnvPrefix + "USERNAME"); v != "" {
		c.Instagram.Username = v
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.Instagram.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.Instagram.BaseURL = v
	}

	// Pacing
	if err := envDuration("PAGE_DELAY", &c.Fetch.PageDelay); err != nil {
		errs = append(errs, err)
	}
	if err := envDuration("MIN_DELAY", &c.Unfollow.MinDelay); err != nil {
		errs = append(errs, err)
	}
	if err := envDuration("MAX_DELAY", &c.Unfollow.MaxDelay); err != nil {
		errs = append(errs, err)
	}
	if err := envInt("MAX_PAGES", &c.Fetch.MaxPages); err != nil {
		errs = append(errs, err)
	}
	if err := envInt("REQUESTS_PER_MINUTE", &c.Unfollow.RequestsPerMinute); err != nil {
		errs = append(errs, err)
	}

	if v := os.Getenv(EnvPrefix + "DRY_RUN"); v != "" {
		c.Unfollow.DryRun = strings.ToLower(v) == "true"
	}
	if v := os.Getenv(EnvPrefix + "NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return errors.Join(errs...)
}

func envDuration(name string, dst *time.Duration) error {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = d
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = n
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".igunfollow.yaml",
		".igunfollow.yml",
		filepath.Join(home, ".config", "igunfollow", "config.yaml"),
		filepath.Join(home, ".config", "igunfollow", "config.yml"),
		filepath.Join(home, ".igunfollow.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// Credentials are not checked here; they may come from the credential store.
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.AppID == "" {
		errs = append(errs, errors.New("instagram app id is required"))
	}
	if c.Instagram.BaseURL == "" {
		errs = append(errs, errors.New("instagram base url is required"))
	}

	// Fetch
	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > 200 {
		errs = append(errs, errors.New("page size must be between 1 and 200"))
	}
	if c.Fetch.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}
	if c.Fetch.MaxPages <= 0 {
		errs = append(errs, errors.New("max pages must be positive"))
	}
	if c.Fetch.MaxItems < 0 {
		errs = append(errs, errors.New("max items cannot be negative"))
	}
	if c.Fetch.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}

	// Unfollow
	if c.Unfollow.MinDelay < 0 || c.Unfollow.MaxDelay < 0 {
		errs = append(errs, errors.New("unfollow delays cannot be negative"))
	}
	if c.Unfollow.MaxDelay < c.Unfollow.MinDelay {
		errs = append(errs, errors.New("max delay must not be less than min delay"))
	}
	if c.Unfollow.StartDelay < 0 || c.Unfollow.ErrorCooldown < 0 {
		errs = append(errs, errors.New("start delay and error cooldown cannot be negative"))
	}
	if c.Unfollow.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.Unfollow.MaxUnfollows < 0 {
		errs = append(errs, errors.New("max unfollows cannot be negative"))
	}

	// Logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// HasSession reports whether both required session cookies are configured
func (c *Config) HasSession() bool {
	return c.Instagram.SessionID != "" && c.Instagram.CSRFToken != "" &&
		c.Instagram.SessionID != "YOUR_SESSION_ID" && c.Instagram.CSRFToken != "YOUR_CSRF_TOKEN"
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["username"].(string); ok && v != "" {
		c.Instagram.Username = v
	}
	if v, ok := flags["max-pages"].(int); ok && v > 0 {
		c.Fetch.MaxPages = v
	}
	if v, ok := flags["max-unfollows"].(int); ok && v >= 0 {
		c.Unfollow.MaxUnfollows = v
	}
	if v, ok := flags["min-delay"].(time.Duration); ok {
		c.Unfollow.MinDelay = v
	}
	if v, ok := flags["max-delay"].(time.Duration); ok {
		c.Unfollow.MaxDelay = v
	}
	if v, ok := flags["page-delay"].(time.Duration); ok {
		c.Fetch.PageDelay = v
	}
	if v, ok := flags["dry-run"].(bool); ok {
		c.Unfollow.DryRun = v
	}
	if v, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igunfollow.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
