package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockAssistant/internal/model"
)

// DateLayout is the format of date fields in the config file.
const DateLayout = "2006-01-02"

// DefaultFourierOrder applies when forecast.fourier_order is absent.
const DefaultFourierOrder = 12

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	DataSource struct {
		Provider      string        `yaml:"provider"` // yahoo, rest or mock
		BaseURL       string        `yaml:"base_url"`
		APIKey        string        `yaml:"api_key"`
		Suffix        string        `yaml:"suffix"`
		HistoryStart  string        `yaml:"history_start"`
		ForecastStart string        `yaml:"forecast_start"`
		Timeout       time.Duration `yaml:"timeout"`
		Retries       int           `yaml:"retries"`
	} `yaml:"data_source"`
	Forecast struct {
		FourierOrder   *int  `yaml:"fourier_order"`
		WeeklySeasonal bool  `yaml:"weekly_seasonal"`
		AutoRejection  *bool `yaml:"auto_rejection"`
	} `yaml:"forecast"`
	Chart struct {
		Theme        string `yaml:"theme"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"chart"`
	Schedule struct {
		DailyCron string   `yaml:"daily_cron"`
		Watchlist []string `yaml:"watchlist"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
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

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("FOURIER_ORDER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Forecast.FourierOrder = &n
		}
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Schedule.Watchlist = splitList(v)
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v, ok := os.LookupEnv("SQLITE_PATH"); ok {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "data/emiten_code_list.csv"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = "rest"
		}
	}
	if cfg.DataSource.Suffix == "" {
		cfg.DataSource.Suffix = ".JK"
	}
	if cfg.DataSource.HistoryStart == "" {
		cfg.DataSource.HistoryStart = "2021-01-01"
	}
	if cfg.DataSource.ForecastStart == "" {
		cfg.DataSource.ForecastStart = "2022-01-01"
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.Forecast.FourierOrder == nil {
		order := DefaultFourierOrder
		cfg.Forecast.FourierOrder = &order
	}
	if cfg.Forecast.AutoRejection == nil {
		on := true
		cfg.Forecast.AutoRejection = &on
	}
	if cfg.Chart.Theme == "" {
		cfg.Chart.Theme = "chalk"
	}
	if cfg.Chart.LookbackDays == 0 {
		cfg.Chart.LookbackDays = 7
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 16 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		if _, set := os.LookupEnv("SQLITE_PATH"); !set {
			cfg.Database.SQLitePath = "data/forecasts.db"
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider must be yahoo, rest or mock, got %q", c.DataSource.Provider)
	}
	hs, err := c.HistoryStart()
	if err != nil {
		return err
	}
	fcs, err := c.ForecastStart()
	if err != nil {
		return err
	}
	if fcs.Before(hs) {
		return fmt.Errorf("data_source.forecast_start must not precede history_start")
	}
	if c.Forecast.FourierOrder != nil && *c.Forecast.FourierOrder < 0 {
		return fmt.Errorf("forecast.fourier_order must be non-negative")
	}
	if c.DataSource.Retries < 0 {
		return fmt.Errorf("data_source.retries must be non-negative")
	}
	if c.Chart.LookbackDays < 0 {
		return fmt.Errorf("chart.lookback_days must be non-negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// HistoryStart parses data_source.history_start.
func (c *Config) HistoryStart() (time.Time, error) {
	return parseDate("data_source.history_start", c.DataSource.HistoryStart)
}

// ForecastStart parses data_source.forecast_start.
func (c *Config) ForecastStart() (time.Time, error) {
	return parseDate("data_source.forecast_start", c.DataSource.ForecastStart)
}

// ForecastOrder is the configured Fourier order, or DefaultFourierOrder when
// the config was built without Load.
func (c *Config) ForecastOrder() int {
	if c.Forecast.FourierOrder == nil {
		return DefaultFourierOrder
	}
	return *c.Forecast.FourierOrder
}

// TelegramEnabled reports whether chat notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, v, model.WIB)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
