package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all runtime settings for the survey CLI.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Sensor   SensorConfig   `mapstructure:"sensor"`
	Geocode  GeocodeConfig  `mapstructure:"geocode"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Export   ExportConfig   `mapstructure:"export"`
	Locale   LocaleConfig   `mapstructure:"locale"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `mapstructure:"database_url"`
}

// SensorConfig selects the positioning feed.
type SensorConfig struct {
	// Source is "replay" or "none".
	Source string `mapstructure:"source"`

	// ReplayPath is the JSONL file replayed as a sensor feed.
	ReplayPath string `mapstructure:"replay_path"`

	// Speed scales replay delays. 2.0 plays twice as fast.
	Speed float64 `mapstructure:"speed"`
}

// GeocodeConfig configures the address lookup client.
type GeocodeConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	UserAgent string  `mapstructure:"user_agent"`
	RateLimit float64 `mapstructure:"rate_limit"`
}

// AnalysisConfig configures the report generation client.
type AnalysisConfig struct {
	Key       string `mapstructure:"key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Language  string `mapstructure:"language"`
}

// ExportConfig configures report export destinations.
type ExportConfig struct {
	OutputDir string       `mapstructure:"output_dir"`
	FTP       FTPConfig    `mapstructure:"ftp"`
	Notion    NotionConfig `mapstructure:"notion"`
}

// FTPConfig configures the FTP delivery target.
type FTPConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Dir      string `mapstructure:"dir"`
}

// NotionConfig configures the Notion delivery target.
type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
}

// LocaleConfig selects the report language.
type LocaleConfig struct {
	Language string `mapstructure:"language"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from survey.yaml (if present) and SURVEY_*
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("survey")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.survey")

	v.SetEnvPrefix("SURVEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Every key needs a default, even an empty one; AutomaticEnv only
	// surfaces keys viper already knows about to Unmarshal.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "survey.db")
	v.SetDefault("store.database_url", "")

	v.SetDefault("sensor.source", "none")
	v.SetDefault("sensor.replay_path", "")
	v.SetDefault("sensor.speed", 1.0)

	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "survey-cli/1.0")
	v.SetDefault("geocode.rate_limit", 1.0)

	v.SetDefault("analysis.key", "")
	v.SetDefault("analysis.model", "claude-sonnet-4-20250514")
	v.SetDefault("analysis.max_tokens", 4096)
	v.SetDefault("analysis.language", "en")

	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.ftp.host", "")
	v.SetDefault("export.ftp.user", "")
	v.SetDefault("export.ftp.password", "")
	v.SetDefault("export.ftp.dir", "")
	v.SetDefault("export.notion.token", "")
	v.SetDefault("export.notion.database_id", "")

	v.SetDefault("locale.language", "en")

	v.SetDefault("server.port", 8080)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// InitLogger builds a zap logger from the log settings and installs it as
// the global logger.
func InitLogger(cfg LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrapf(err, "config: parse log level %q", cfg.Level)
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
