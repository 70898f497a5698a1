package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Trading    TradingConfig    `mapstructure:"trading"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Specs use the seconds-enabled cron format.
	SnapshotSpec     string `mapstructure:"snapshot_spec"`
	SessionPurgeSpec string `mapstructure:"session_purge_spec"`
}

type MarketDataConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	QuoteTTL    time.Duration `mapstructure:"quote_ttl"`
	ValidateTTL time.Duration `mapstructure:"validate_ttl"`
}

type TradingConfig struct {
	// StartingBalance is the cash every user begins with; it is also the
	// all-time leaderboard baseline.
	StartingBalance  float64       `mapstructure:"starting_balance"`
	PriceConcurrency int           `mapstructure:"price_concurrency"`
	PriceTimeout     time.Duration `mapstructure:"price_timeout"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	// Daily valuation snapshots after US market close; hourly session purge.
	v.SetDefault("cron.snapshot_spec", "0 0 17 * * *")
	v.SetDefault("cron.session_purge_spec", "0 0 * * * *")
	v.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("market_data.timeout", "10s")
	v.SetDefault("market_data.quote_ttl", "2m")
	v.SetDefault("market_data.validate_ttl", "60m")
	v.SetDefault("trading.starting_balance", 100000)
	v.SetDefault("trading.price_concurrency", 10)
	v.SetDefault("trading.price_timeout", "5s")
	v.SetDefault("trading.session_ttl", "720h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
