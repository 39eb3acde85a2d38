package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Version is the application version, overridden at build time.
var Version = "0.3.0"

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Dispatcharr DispatcharrConfig `mapstructure:"dispatcharr"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Janitor     JanitorConfig     `mapstructure:"janitor"`
	Reports     ReportsConfig     `mapstructure:"reports"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DispatcharrConfig holds the connection settings for the host catalog.
type DispatcharrConfig struct {
	URL           string `mapstructure:"url"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	Timeout       int    `mapstructure:"timeout"`
	SkipSSLVerify bool   `mapstructure:"skip_ssl_verify"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// JanitorConfig holds the matching and healing engine settings.
type JanitorConfig struct {
	// CheckHours is the future window, in hours, an assignment must have
	// program data within. Bounded 1-168.
	CheckHours int `mapstructure:"check_hours"`
	// GuideSources is the ordered, prioritized list of guide-source names
	// candidates are drawn from. Empty means every source, in server order.
	GuideSources []string `mapstructure:"guide_sources"`
	// FallbackGuideSources is the separately configurable pool for scan &
	// heal runs; empty falls back to GuideSources.
	FallbackGuideSources []string `mapstructure:"fallback_guide_sources"`
	// Groups and IgnoreGroups are mutually exclusive channel-group filters.
	Groups       []string `mapstructure:"groups"`
	IgnoreGroups []string `mapstructure:"ignore_groups"`
	Profiles     []string `mapstructure:"profiles"`
	// ConfidenceThreshold gates automatic healing, 0-100.
	ConfidenceThreshold int `mapstructure:"confidence_threshold"`
	// Tag-ignore flags, default all on.
	IgnoreQualityTags    bool `mapstructure:"ignore_quality_tags"`
	IgnoreRegionalTags   bool `mapstructure:"ignore_regional_tags"`
	IgnoreGeographicTags bool `mapstructure:"ignore_geographic_tags"`
	IgnoreMiscTags       bool `mapstructure:"ignore_misc_tags"`
	// Scheduled healing.
	AutoHeal      bool   `mapstructure:"auto_heal"`
	HealCron      string `mapstructure:"heal_cron"`
	AutoHealApply bool   `mapstructure:"auto_heal_apply"`
}

// ReportsConfig holds CSV export configuration.
type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8585,
		},
		Database: DatabaseConfig{
			Path: "./data/epgjanitor.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Dispatcharr: DispatcharrConfig{
			Timeout: 30,
		},
		Janitor: JanitorConfig{
			CheckHours:           12,
			ConfidenceThreshold:  95,
			IgnoreQualityTags:    true,
			IgnoreRegionalTags:   true,
			IgnoreGeographicTags: true,
			IgnoreMiscTags:       true,
			HealCron:             "0 6 * * *",
		},
		Reports: ReportsConfig{
			Dir: "./data/exports",
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.epgjanitor")
	}

	v.SetEnvPrefix("EPGJANITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8585)

	v.SetDefault("dispatcharr.url", "")
	v.SetDefault("dispatcharr.timeout", 30)

	v.SetDefault("database.path", "./data/epgjanitor.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("janitor.check_hours", 12)
	v.SetDefault("janitor.confidence_threshold", 95)
	v.SetDefault("janitor.ignore_quality_tags", true)
	v.SetDefault("janitor.ignore_regional_tags", true)
	v.SetDefault("janitor.ignore_geographic_tags", true)
	v.SetDefault("janitor.ignore_misc_tags", true)
	v.SetDefault("janitor.auto_heal", false)
	v.SetDefault("janitor.heal_cron", "0 6 * * *")
	v.SetDefault("janitor.auto_heal_apply", false)

	v.SetDefault("reports.dir", "./data/exports")
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Problems returns every configuration error as a human-readable message.
// An empty slice means the configuration is usable. These are hard
// preconditions: no run proceeds while any problem exists.
func (c *Config) Problems() []string {
	var problems []string

	if c.Janitor.CheckHours < 1 || c.Janitor.CheckHours > 168 {
		problems = append(problems, fmt.Sprintf(
			"janitor.check_hours must be between 1 and 168, got %d", c.Janitor.CheckHours))
	}
	if c.Janitor.ConfidenceThreshold < 0 || c.Janitor.ConfidenceThreshold > 100 {
		problems = append(problems, fmt.Sprintf(
			"janitor.confidence_threshold must be between 0 and 100, got %d", c.Janitor.ConfidenceThreshold))
	}
	if len(c.Janitor.Groups) > 0 && len(c.Janitor.IgnoreGroups) > 0 {
		problems = append(problems,
			"janitor.groups and janitor.ignore_groups are mutually exclusive; set only one")
	}

	return problems
}

// Validate returns an error carrying every configuration problem.
func (c *Config) Validate() error {
	problems := c.Problems()
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// SourcePool returns the ordered guide-source name list for the given run
// kind. Heal runs use the fallback list when one is configured.
func (c *JanitorConfig) SourcePool(heal bool) []string {
	if heal && len(c.FallbackGuideSources) > 0 {
		return c.FallbackGuideSources
	}
	return c.GuideSources
}
