package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Site is one bookable location with its own database and price list.
type Site struct {
	Name      string `yaml:"name"`
	Database  string `yaml:"database"`
	PriceList string `yaml:"price_list"`
}

type Config struct {
	Sites []Site `yaml:"sites"`

	Server struct {
		Port            int `yaml:"port"`
		HealthCheckPort int `yaml:"health_check_port"`
	} `yaml:"server"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Requests struct {
		RatePerMinute int `yaml:"rate_per_minute"`
		Burst         int `yaml:"burst"`
	} `yaml:"requests"`

	Telegram struct {
		BotToken string  `yaml:"bot_token"`
		Managers []int64 `yaml:"managers"`
	} `yaml:"telegram"`

	Backup BackupConfig `yaml:"backup"`
}

// BackupConfig controls the daily database file backup.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	StoragePath   string `yaml:"storage_path"`
	RetentionDays int    `yaml:"retention_days"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if len(cfg.Sites) == 0 {
		return nil, fmt.Errorf("config %s: at least one site is required", path)
	}
	for i, site := range cfg.Sites {
		if site.Name == "" {
			return nil, fmt.Errorf("config %s: site %d has no name", path, i)
		}
		if site.Database == "" {
			return nil, fmt.Errorf("config %s: site %q has no database path", path, site.Name)
		}
		if site.PriceList == "" {
			return nil, fmt.Errorf("config %s: site %q has no price list path", path, site.Name)
		}
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.HealthCheckPort == 0 {
		cfg.Server.HealthCheckPort = 8090
	}

	return &cfg, nil
}

// SiteByName finds a configured site.
func (c *Config) SiteByName(name string) (Site, bool) {
	for _, s := range c.Sites {
		if s.Name == name {
			return s, true
		}
	}
	return Site{}, false
}

// CacheTTL returns the redis cache TTL for availability reads.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// RequestRate returns the public request submission limit per minute.
func (c *Config) RequestRate() (perMinute, burst int) {
	perMinute = c.Requests.RatePerMinute
	if perMinute <= 0 {
		perMinute = 5
	}
	burst = c.Requests.Burst
	if burst <= 0 {
		burst = 3
	}
	return perMinute, burst
}
