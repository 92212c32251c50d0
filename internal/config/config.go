// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Scanner ScannerConfig `mapstructure:"scanner" yaml:"scanner"`
	Filler  FillerConfig  `mapstructure:"filler" yaml:"filler"`
	Hints   HintsConfig   `mapstructure:"hints" yaml:"hints"`
}

// LoggerConfig drives the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig configures the Chrome process and per-session behavior.
type BrowserConfig struct {
	Headless       bool           `mapstructure:"headless" yaml:"headless"`
	Args           []string       `mapstructure:"args" yaml:"args"`
	ViewportWidth  int            `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int            `mapstructure:"viewport_height" yaml:"viewport_height"`
	ActionTimeout  time.Duration  `mapstructure:"action_timeout" yaml:"action_timeout"`
	DismissConsent bool           `mapstructure:"dismiss_consent" yaml:"dismiss_consent"`
	Humanoid       HumanoidConfig `mapstructure:"humanoid" yaml:"humanoid"`
}

// HumanoidConfig tunes character-paced text entry. The delays exist to give
// debounced page listeners time to fire, the same budget a person typing
// would grant them.
type HumanoidConfig struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	KeyDelayMin time.Duration `mapstructure:"key_delay_min" yaml:"key_delay_min"`
	KeyDelayMax time.Duration `mapstructure:"key_delay_max" yaml:"key_delay_max"`
}

// NetworkConfig tunes navigation behavior.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// ScannerConfig carries scan defaults overridable per command invocation.
type ScannerConfig struct {
	IncludeHidden   bool `mapstructure:"include_hidden" yaml:"include_hidden"`
	IncludeButtons  bool `mapstructure:"include_buttons" yaml:"include_buttons"`
	MaxFields       int  `mapstructure:"max_fields" yaml:"max_fields"`
	LabelTextBudget int  `mapstructure:"label_text_budget" yaml:"label_text_budget"`
	ScrollFirst     bool `mapstructure:"scroll_first" yaml:"scroll_first"`
}

// FillerConfig carries fill defaults.
type FillerConfig struct {
	UploadDir    string        `mapstructure:"upload_dir" yaml:"upload_dir"`
	AutoFiles    bool          `mapstructure:"auto_files" yaml:"auto_files"`
	FieldDelay   time.Duration `mapstructure:"field_delay" yaml:"field_delay"`
	FieldTimeout time.Duration `mapstructure:"field_timeout" yaml:"field_timeout"`
}

// HintsConfig configures the optional classification-hint service.
type HintsConfig struct {
	Enabled           bool          `mapstructure:"enabled" yaml:"enabled"`
	Model             string        `mapstructure:"model" yaml:"model"`
	APIKey            string        `mapstructure:"api_key" yaml:"api_key"`
	Endpoint          string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout        time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// SetDefaults registers every default with viper so that config file, env
// vars (FORMAP_*), and flags all override in the usual precedence order.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "formap")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.viewport_width", 1366)
	v.SetDefault("browser.viewport_height", 900)
	v.SetDefault("browser.action_timeout", 15*time.Second)
	v.SetDefault("browser.dismiss_consent", true)
	v.SetDefault("browser.humanoid.enabled", true)
	v.SetDefault("browser.humanoid.key_delay_min", 30*time.Millisecond)
	v.SetDefault("browser.humanoid.key_delay_max", 90*time.Millisecond)

	v.SetDefault("network.navigation_timeout", 45*time.Second)
	v.SetDefault("network.post_load_wait", 1500*time.Millisecond)

	v.SetDefault("scanner.label_text_budget", 100)
	v.SetDefault("scanner.scroll_first", true)

	v.SetDefault("filler.field_delay", 150*time.Millisecond)
	v.SetDefault("filler.field_timeout", 10*time.Second)

	v.SetDefault("hints.model", "gemini-2.0-flash")
	v.SetDefault("hints.api_timeout", 30*time.Second)
	v.SetDefault("hints.requests_per_minute", 30)
}

// Validate rejects configurations the runtime cannot honor.
func (c *Config) Validate() error {
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be positive")
	}
	if c.Browser.ActionTimeout <= 0 {
		return fmt.Errorf("browser.action_timeout must be positive")
	}
	if h := c.Browser.Humanoid; h.Enabled && h.KeyDelayMax < h.KeyDelayMin {
		return fmt.Errorf("browser.humanoid.key_delay_max must be >= key_delay_min")
	}
	if c.Scanner.MaxFields < 0 {
		return fmt.Errorf("scanner.max_fields must not be negative")
	}
	if c.Hints.Enabled && c.Hints.APIKey == "" {
		return fmt.Errorf("hints.api_key is required when hints are enabled (FORMAP_HINTS_API_KEY)")
	}
	return nil
}

// Load unmarshals the viper state into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
