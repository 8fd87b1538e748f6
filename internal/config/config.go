package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Version is injected at build time via ldflags.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Generation  GenerationConfig  `mapstructure:"generation"`
	Library     LibraryConfig     `mapstructure:"library"`
	Download    DownloadConfig    `mapstructure:"download"`
	Scrape      ScrapeConfig      `mapstructure:"scrape"`
	Programming ProgrammingConfig `mapstructure:"programming"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
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
	BufferSize int    `mapstructure:"buffer_size"`
}

// GenerationConfig holds grade generation configuration.
type GenerationConfig struct {
	OutputFolder         string `mapstructure:"output_folder"`
	LeadMinutes          int    `mapstructure:"lead_minutes"`           // build this many minutes before the block boundary
	WindowMinutes        int    `mapstructure:"window_minutes"`         // repetition window for incremental builds
	FullDayWindowMinutes int    `mapstructure:"fullday_window_minutes"` // repetition window for full-day builds
	FillerToken          string `mapstructure:"filler_token"`           // the "coringa" literal
	DefaultProgram       string `mapstructure:"default_program"`

	National  NationalConfig  `mapstructure:"national"`
	Countdown CountdownConfig `mapstructure:"countdown"`
	TopRanked TopRankedConfig `mapstructure:"top_ranked"`
	Overnight OvernightConfig `mapstructure:"overnight"`
}

// NationalConfig configures the mandatory national broadcast slot (weekdays only).
type NationalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Hour    int    `mapstructure:"hour"`
	Minute  int    `mapstructure:"minute"`
	Token   string `mapstructure:"token"`
	Program string `mapstructure:"program"`
}

// CountdownConfig configures the recurring countdown block: a deterministic
// mapping from ranking position to filename across fixed half-hour slots.
type CountdownConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Slots        []string `mapstructure:"slots"` // "HH:MM"
	SongsPerSlot int      `mapstructure:"songs_per_slot"`
	Program      string   `mapstructure:"program"`
}

// TopRankedConfig configures the top-N ranked block.
type TopRankedConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Slots        []string `mapstructure:"slots"`
	SongsPerSlot int      `mapstructure:"songs_per_slot"`
	Descending   bool     `mapstructure:"descending"`
	Program      string   `mapstructure:"program"`
}

// OvernightConfig configures the time-ranged regional/overnight mix.
type OvernightConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Start        string `mapstructure:"start"` // "HH:MM", wraparound supported
	End          string `mapstructure:"end"`
	SongsPerSlot int    `mapstructure:"songs_per_slot"`
	RegionalOnly bool   `mapstructure:"regional_only"`
	Program      string `mapstructure:"program"`
}

// LibraryConfig holds local music library configuration.
type LibraryConfig struct {
	SearchPaths         []string `mapstructure:"search_paths"`
	SimilarityThreshold float64  `mapstructure:"similarity_threshold"`
	CheckTimeoutSeconds int      `mapstructure:"check_timeout_seconds"`
	CacheTTLMinutes     int      `mapstructure:"cache_ttl_minutes"`
}

// DownloadConfig holds download queue configuration.
type DownloadConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	OutputFolder     string `mapstructure:"output_folder"`
	Quality          string `mapstructure:"quality"`
	RetryCap         int    `mapstructure:"retry_cap"`
	ItemDelaySeconds int    `mapstructure:"item_delay_seconds"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
}

// ScrapeConfig holds scrape orchestrator configuration.
type ScrapeConfig struct {
	BatchSize         int  `mapstructure:"batch_size"`
	BatchDelaySeconds int  `mapstructure:"batch_delay_seconds"`
	RetryFailed       bool `mapstructure:"retry_failed"`
	IntervalMinutes   int  `mapstructure:"interval_minutes"`
	TimeoutSeconds    int  `mapstructure:"timeout_seconds"`
}

// ProgrammingConfig points at the YAML bootstrap file with stations,
// sequences and fixed content, imported when the database is empty.
type ProgrammingConfig struct {
	Path string `mapstructure:"path"`
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
		v.AddConfigPath("$HOME/.gradecast")
	}

	v.SetEnvPrefix("GRADECAST")
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

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8484)

	v.SetDefault("database.path", "./data/gradecast.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.buffer_size", 500)

	v.SetDefault("generation.output_folder", "./data/grade")
	v.SetDefault("generation.lead_minutes", 5)
	v.SetDefault("generation.window_minutes", 60)
	v.SetDefault("generation.fullday_window_minutes", 30)
	v.SetDefault("generation.filler_token", "mus")
	v.SetDefault("generation.default_program", "MUSICAL")

	v.SetDefault("generation.national.enabled", true)
	v.SetDefault("generation.national.hour", 19)
	v.SetDefault("generation.national.minute", 0)
	v.SetDefault("generation.national.token", "vht,vozbrasil")
	v.SetDefault("generation.national.program", "VOZBRASIL")

	v.SetDefault("generation.countdown.enabled", true)
	v.SetDefault("generation.countdown.slots", []string{"20:00", "20:30"})
	v.SetDefault("generation.countdown.songs_per_slot", 5)
	v.SetDefault("generation.countdown.program", "CONTAGEM")

	v.SetDefault("generation.top_ranked.enabled", true)
	v.SetDefault("generation.top_ranked.slots", []string{"12:00"})
	v.SetDefault("generation.top_ranked.songs_per_slot", 5)
	v.SetDefault("generation.top_ranked.descending", true)
	v.SetDefault("generation.top_ranked.program", "PARADA")

	v.SetDefault("generation.overnight.enabled", true)
	v.SetDefault("generation.overnight.start", "00:00")
	v.SetDefault("generation.overnight.end", "05:00")
	v.SetDefault("generation.overnight.songs_per_slot", 6)
	v.SetDefault("generation.overnight.regional_only", true)
	v.SetDefault("generation.overnight.program", "MADRUGADA")

	v.SetDefault("library.similarity_threshold", 0.6)
	v.SetDefault("library.check_timeout_seconds", 10)
	v.SetDefault("library.cache_ttl_minutes", 5)

	v.SetDefault("download.enabled", true)
	v.SetDefault("download.output_folder", "./data/downloads")
	v.SetDefault("download.quality", "high")
	v.SetDefault("download.retry_cap", 2)
	v.SetDefault("download.item_delay_seconds", 60)

	v.SetDefault("scrape.batch_size", 3)
	v.SetDefault("scrape.batch_delay_seconds", 2)
	v.SetDefault("scrape.retry_failed", true)
	v.SetDefault("scrape.interval_minutes", 10)
	v.SetDefault("scrape.timeout_seconds", 15)

	v.SetDefault("programming.path", "./configs/programming.yaml")
}
