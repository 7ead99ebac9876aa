package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds all pinvite settings. It is read from the TOML file at
// Path(), then overridden by a .env file and the environment.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	List      ListConfig      `toml:"list"`
	Mail      MailConfig      `toml:"mail"`
	Log       LogConfig       `toml:"log"`
	UI        UIConfig        `toml:"ui"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// DatabaseConfig selects and locates the invite store.
type DatabaseConfig struct {
	Driver string `toml:"driver" env:"DATABASE_DRIVER" config:"database.driver" default:"postgres" desc:"Store backend (postgres or sqlite)"`
	URL    string `toml:"url" env:"DATABASE_URL" config:"database.url" desc:"PostgreSQL connection URL"`
	Path   string `toml:"path" env:"DATABASE_PATH" config:"database.path" desc:"SQLite file (empty = data dir default)"`
}

// ListConfig contains defaults for the invite browser and `pinvite list`.
type ListConfig struct {
	PageSize   int    `toml:"page_size" env:"LIST_PAGE_SIZE" config:"list.page_size" default:"25" min:"1" max:"500" desc:"Invites per page"`
	DebounceMS int    `toml:"debounce_ms" env:"LIST_DEBOUNCE_MS" config:"list.debounce_ms" default:"500" min:"1" max:"10000" desc:"Search debounce in milliseconds"`
	Sort       string `toml:"sort" env:"LIST_SORT" config:"list.sort" default:"type" desc:"Initial sort column (type, email, date, status)"`
	Direction  string `toml:"direction" env:"LIST_DIRECTION" config:"list.direction" default:"asc" desc:"Initial sort direction (asc or desc)"`
}

// MailConfig configures invite delivery.
type MailConfig struct {
	Provider string `toml:"provider" env:"MAIL_PROVIDER" config:"mail.provider" default:"none" desc:"Mail provider (none or resend)"`
	APIKey   string `toml:"api_key" env:"MAIL_API_KEY" config:"mail.api_key" desc:"Provider API key"`
	From     string `toml:"from" env:"MAIL_FROM" config:"mail.from" desc:"Sender address"`
	AppURL   string `toml:"app_url" env:"MAIL_APP_URL" config:"mail.app_url" desc:"Base URL invite links point to"`
	Workers  int    `toml:"workers" env:"MAIL_WORKERS" config:"mail.workers" default:"4" min:"1" max:"64" desc:"Concurrent sends for bulk resend"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	Level      string `toml:"level" env:"LOG_LEVEL" config:"log.level" default:"warn" desc:"Log level (debug, info, warn, error)"`
	Format     string `toml:"format" env:"LOG_FORMAT" config:"log.format" default:"console" desc:"Log format (console or json)"`
	File       string `toml:"file" env:"LOG_FILE" config:"log.file" desc:"Log file (empty = stderr, silenced in the browser)"`
	MaxSizeMB  int    `toml:"max_size_mb" env:"LOG_MAX_SIZE_MB" config:"log.max_size_mb" default:"10" min:"1" max:"1024" desc:"Rotate after this many MB"`
	MaxBackups int    `toml:"max_backups" env:"LOG_MAX_BACKUPS" config:"log.max_backups" default:"3" min:"0" max:"100" desc:"Rotated files to keep"`
	MaxDays    int    `toml:"max_days" env:"LOG_MAX_DAYS" config:"log.max_days" default:"14" min:"0" max:"3650" desc:"Days to keep rotated files"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	Locale string `toml:"locale" env:"LOCALE" config:"ui.locale" default:"en-US" desc:"Display language (en-US, de-DE)"`
}

// TelemetryConfig enables OTLP trace export.
type TelemetryConfig struct {
	Endpoint    string `toml:"endpoint" env:"OTLP_ENDPOINT" config:"telemetry.endpoint" desc:"OTLP/HTTP endpoint (empty = tracing off)"`
	ServiceName string `toml:"service_name" env:"SERVICE_NAME" config:"telemetry.service_name" default:"pinvite" desc:"Service name on exported spans"`
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "postgres"},
		List: ListConfig{
			PageSize:   25,
			DebounceMS: 500,
			Sort:       "type",
			Direction:  "asc",
		},
		Mail: MailConfig{Provider: "none", Workers: 4},
		Log: LogConfig{
			Level:      "warn",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxDays:    14,
		},
		UI:        UIConfig{Locale: "en-US"},
		Telemetry: TelemetryConfig{ServiceName: "pinvite"},
	}
}

// Dir returns the pinvite config directory.
// Follows XDG Base Directory spec on Linux, platform conventions elsewhere
func Dir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "pinvite")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "pinvite")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "pinvite")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pinvite")
	}
}

// Path returns the path to the config file. PINVITE_CONFIG overrides it.
func Path() string {
	if p := os.Getenv("PINVITE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// DefaultSQLitePath is where the sqlite store lives when database.path is
// unset.
func DefaultSQLitePath() string {
	return filepath.Join(Dir(), "invites.db")
}

// LoadFile reads the config file only, without env overrides. A missing
// file yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	cfg.backfill()
	return cfg, nil
}

// Load reads the config file and applies .env and environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFile(Path())
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.backfill()
	return cfg, nil
}

// backfill restores defaults for values a partial file left empty.
func (c *Config) backfill() {
	d := Default()
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.List.PageSize == 0 {
		c.List.PageSize = d.List.PageSize
	}
	if c.List.DebounceMS == 0 {
		c.List.DebounceMS = d.List.DebounceMS
	}
	if c.List.Sort == "" {
		c.List.Sort = d.List.Sort
	}
	if c.List.Direction == "" {
		c.List.Direction = d.List.Direction
	}
	if c.Mail.Provider == "" {
		c.Mail.Provider = d.Mail.Provider
	}
	if c.Mail.Workers == 0 {
		c.Mail.Workers = d.Mail.Workers
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	// NOTE: MaxBackups and MaxDays are not defaulted, 0 means unlimited.
	if c.UI.Locale == "" {
		c.UI.Locale = d.UI.Locale
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = d.Telemetry.ServiceName
	}
}

// SQLitePath returns the configured sqlite file or the default one.
func (c *Config) SQLitePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return DefaultSQLitePath()
}

// Save writes the config file.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// GetValue returns a config value by key.
func (c *Config) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a config value by key, validating against the field's tags.
func (c *Config) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}
