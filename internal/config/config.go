package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlatformConfig holds the OAuth application settings for one platform.
type PlatformConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ListenAddr string `mapstructure:"listen_addr"`

	GraphBaseURL string `mapstructure:"graph_base_url"`

	FacebookClientID      string `mapstructure:"facebook_client_id"`
	FacebookClientSecret  string `mapstructure:"facebook_client_secret"`
	FacebookRedirectURI   string `mapstructure:"facebook_redirect_uri"`
	InstagramClientID     string `mapstructure:"instagram_client_id"`
	InstagramClientSecret string `mapstructure:"instagram_client_secret"`
	InstagramRedirectURI  string `mapstructure:"instagram_redirect_uri"`

	// AllowStateMismatch tolerates a missing/mismatched OAuth state nonce on
	// the callback. Degraded mode for transports known to drop session
	// state; a mismatch is logged either way.
	AllowStateMismatch bool `mapstructure:"allow_state_mismatch"`

	RendererURL string `mapstructure:"renderer_url"`

	NotifiersFile string `mapstructure:"notifiers_file"`

	PollAttempts     int   `mapstructure:"poll_attempts"`
	PollDelaySeconds int64 `mapstructure:"poll_delay_seconds"`
	PollDelay        time.Duration `mapstructure:"-"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	PublishedTTLSeconds    int64         `mapstructure:"published_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	PublishedTTL           time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "socialpress")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8090")
	v.SetDefault("graph_base_url", "https://graph.facebook.com/v19.0")
	v.SetDefault("allow_state_mismatch", false)
	v.SetDefault("notifiers_file", "./configs/notifiers.yaml")
	v.SetDefault("poll_attempts", 30)
	v.SetDefault("poll_delay_seconds", 2)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/socialpress.db")
	v.SetDefault("published_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.PollAttempts <= 0 {
		return nil, fmt.Errorf("invalid poll_attempts (must be positive)")
	}
	if cfg.PollDelaySeconds <= 0 {
		return nil, fmt.Errorf("invalid poll_delay_seconds (must be positive seconds)")
	}
	cfg.PollDelay = time.Duration(cfg.PollDelaySeconds) * time.Second

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.PublishedTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid published_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.PublishedTTL = time.Duration(cfg.PublishedTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// Facebook returns the Facebook platform OAuth settings.
func (c *Config) Facebook() PlatformConfig {
	return PlatformConfig{
		ClientID:     c.FacebookClientID,
		ClientSecret: c.FacebookClientSecret,
		RedirectURI:  c.FacebookRedirectURI,
	}
}

// Instagram returns the Instagram platform OAuth settings.
func (c *Config) Instagram() PlatformConfig {
	return PlatformConfig{
		ClientID:     c.InstagramClientID,
		ClientSecret: c.InstagramClientSecret,
		RedirectURI:  c.InstagramRedirectURI,
	}
}
