package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	AppDirName = ".convodash"
	EnvPrefix  = "CONVODASH"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the proxy gateway.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type UpstreamConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Zero leaves the transport default in place.
	Timeout time.Duration `mapstructure:"timeout"`
}

type DashboardConfig struct {
	ProxyURL   string `mapstructure:"proxy_url"`
	ViewerHost string `mapstructure:"viewer_host"`
	PageSize   int    `mapstructure:"page_size"`
	// IANA zone used to interpret date filters; empty means the local zone.
	Timezone  string `mapstructure:"timezone"`
	PrefsPath string `mapstructure:"prefs_path"`
	LogFile   string `mapstructure:"log_file"`
}

// BackendConfig configures the local development upstream.
type BackendConfig struct {
	Addr string `mapstructure:"addr"`
	Dsn  string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Dir returns ~/.convodash.
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("upstream.base_url", "https://api.example.com")
	v.SetDefault("upstream.timeout", time.Duration(0))

	v.SetDefault("dashboard.proxy_url", "http://localhost:3000")
	v.SetDefault("dashboard.viewer_host", "argaam.vacts.online")
	v.SetDefault("dashboard.page_size", 10)
	v.SetDefault("dashboard.timezone", "")
	v.SetDefault("dashboard.prefs_path", filepath.Join(dir, "prefs.db"))
	v.SetDefault("dashboard.log_file", filepath.Join(dir, "dashboard.log"))

	v.SetDefault("backend.addr", ":8081")
	v.SetDefault("backend.dsn", filepath.Join(dir, "backend.db"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from path, or from config.yaml in ~/.convodash
// when path is empty. A missing default file is not an error. Environment
// variables prefixed with CONVODASH_ override the file; BACKEND_URL and then
// NEXT_PUBLIC_BACKEND_URL are also accepted for the upstream base URL.
func Load(path string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("upstream.base_url", EnvPrefix+"_UPSTREAM_BASE_URL", "BACKEND_URL", "NEXT_PUBLIC_BACKEND_URL"); err != nil {
		return nil, err
	}

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for _, p := range []*string{&cfg.Dashboard.PrefsPath, &cfg.Dashboard.LogFile, &cfg.Backend.Dsn} {
		if *p, err = homedir.Expand(*p); err != nil {
			return nil, fmt.Errorf("failed to expand path: %w", err)
		}
	}

	cfg.Upstream.BaseURL = strings.TrimSuffix(cfg.Upstream.BaseURL, "/")
	cfg.Dashboard.ProxyURL = strings.TrimSuffix(cfg.Dashboard.ProxyURL, "/")

	return &cfg, nil
}

// Location resolves the dashboard's time zone.
func (c DashboardConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
