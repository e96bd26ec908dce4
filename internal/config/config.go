// Load envs from .env
// Load YAML config
// Override with env vars, apply defaults, validate

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

const (
	DriverBadger   = "badger"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	LogLevel      string `yaml:"log_level"`
	StartURL      string `yaml:"start_url"`
	Headless      bool   `yaml:"headless"`
	CookiesPath   string `yaml:"cookies_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Automation AutomationConfig `yaml:"automation"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Popup      PopupConfig      `yaml:"popup"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	// Driver is badger, file or postgres.
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
}

type AutomationConfig struct {
	MaxPages          int           `yaml:"max_pages"`
	PageDelayMin      time.Duration `yaml:"page_delay_min"`
	PageDelayMax      time.Duration `yaml:"page_delay_max"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	ScrollInterval    time.Duration `yaml:"scroll_interval"`
	ScrollMaxAttempts int           `yaml:"scroll_max_attempts"`

	InitialExtractDelay time.Duration `yaml:"initial_extract_delay"`
	// ObserveInterval re-extracts the page while idle; 0 turns it off.
	ObserveInterval time.Duration `yaml:"observe_interval"`
	// Schedule is a cron expression that starts automation; empty is off.
	Schedule string `yaml:"schedule"`
}

type TelegramConfig struct {
	Token      string        `yaml:"token"`
	ChatID     int64         `yaml:"chat_id"`
	CountEvery time.Duration `yaml:"count_every"`
}

func (t TelegramConfig) Enabled() bool { return t.Token != "" }

type PopupConfig struct {
	Server    string `yaml:"server"`
	ExportDir string `yaml:"export_dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		StartURL:      "https://www.linkedin.com/jobs/search/?keywords=golang",
		CookiesPath:   ".cookies/linkedin.json",
		ScreenshotDir: "logs/screenshots",
		Server: ServerConfig{
			Port:            "8787",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver: DriverBadger,
			Path:   "data/badger",
		},
		Automation: AutomationConfig{
			MaxPages:            40,
			PageDelayMin:        3 * time.Second,
			PageDelayMax:        7 * time.Second,
			SettleDelay:         3 * time.Second,
			ScrollInterval:      time.Second,
			ScrollMaxAttempts:   10,
			InitialExtractDelay: 2 * time.Second,
		},
		Telegram: TelegramConfig{
			CountEvery: time.Minute,
		},
		Popup: PopupConfig{
			Server:    "http://localhost:8787",
			ExportDir: ".",
		},
	}
}

// Load reads .env, then the YAML file at path over the defaults, then the
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, errors.Wrapf(err, "read %s", path)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("START_URL"); v != "" {
		c.StartURL = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.DatabaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid TELEGRAM_CHAT_ID")
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("EXTRACTOR_SERVER"); v != "" {
		c.Popup.Server = v
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string

	if c.StartURL == "" {
		problems = append(problems, "start_url is required")
	}
	if c.Server.Port == "" {
		problems = append(problems, "server.port is required")
	}

	switch c.Storage.Driver {
	case DriverBadger, DriverFile:
		if c.Storage.Path == "" {
			problems = append(problems, "storage.path is required for driver "+c.Storage.Driver)
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			problems = append(problems, "storage.database_url (DATABASE_URL) is required for driver postgres")
		}
	default:
		problems = append(problems, "storage.driver must be badger, file or postgres, got "+strconv.Quote(c.Storage.Driver))
	}

	a := c.Automation
	if a.MaxPages < 1 {
		problems = append(problems, "automation.max_pages must be at least 1")
	}
	if a.PageDelayMin < 0 || a.PageDelayMax < a.PageDelayMin {
		problems = append(problems, "automation.page_delay_min/max must satisfy 0 <= min <= max")
	}
	if a.ScrollMaxAttempts < 1 {
		problems = append(problems, "automation.scroll_max_attempts must be at least 1")
	}
	if a.SettleDelay < 0 || a.ScrollInterval < 0 || a.InitialExtractDelay < 0 || a.ObserveInterval < 0 {
		problems = append(problems, "automation delays must not be negative")
	}

	if c.Telegram.Enabled() && c.Telegram.ChatID == 0 {
		problems = append(problems, "telegram.chat_id (TELEGRAM_CHAT_ID) is required when a bot token is set")
	}

	if len(problems) > 0 {
		return errors.Newf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
