package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Provider struct {
		BaseURL   string  `yaml:"base_url"`
		Proxy     string  `yaml:"proxy"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"provider"`
	Monitor struct {
		RefreshInterval Duration `yaml:"refresh_interval"`
		Workers         int      `yaml:"workers"`
		MinFetchWait    Duration `yaml:"min_fetch_wait"`
		MinStartupWait  Duration `yaml:"min_startup_wait"`
	} `yaml:"monitor"`
	Storage struct {
		SymbolsFile  string `yaml:"symbols_file"`
		SettingsFile string `yaml:"settings_file"`
		SQLitePath   string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A local .env file is folded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Provider.Proxy = v
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Monitor.RefreshInterval = Duration(d)
		}
	}
	if v := os.Getenv("FETCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.Workers = n
		}
	}
	if v := os.Getenv("SYMBOLS_FILE"); v != "" {
		cfg.Storage.SymbolsFile = v
	}
	if v := os.Getenv("SETTINGS_FILE"); v != "" {
		cfg.Storage.SettingsFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}

	// Defaults
	if cfg.Provider.RateLimit == 0 {
		cfg.Provider.RateLimit = 4
	}
	if cfg.Monitor.RefreshInterval == 0 {
		cfg.Monitor.RefreshInterval = Duration(30 * time.Second)
	}
	if cfg.Monitor.Workers == 0 {
		cfg.Monitor.Workers = 5
	}
	if cfg.Monitor.MinFetchWait == 0 {
		cfg.Monitor.MinFetchWait = Duration(1 * time.Second)
	}
	if cfg.Monitor.MinStartupWait == 0 {
		cfg.Monitor.MinStartupWait = Duration(7 * time.Second)
	}
	if cfg.Storage.SymbolsFile == "" {
		cfg.Storage.SymbolsFile = "my_stocks.txt"
	}
	if cfg.Storage.SettingsFile == "" {
		cfg.Storage.SettingsFile = "timezone.txt"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/share_monitor.db"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8560"
	}

	return cfg, nil
}

// Validate checks that all required fields are sane.
func (c *Config) Validate() error {
	if c.Monitor.RefreshInterval.Std() < time.Second {
		return fmt.Errorf("monitor.refresh_interval must be at least 1s")
	}
	if c.Monitor.Workers < 1 {
		return fmt.Errorf("monitor.workers must be positive")
	}
	if c.Provider.RateLimit <= 0 {
		return fmt.Errorf("provider.rate_limit must be positive")
	}
	if c.Storage.SymbolsFile == "" || c.Storage.SettingsFile == "" {
		return fmt.Errorf("storage paths are required")
	}
	return nil
}
