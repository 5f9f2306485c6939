// Package config loads findata settings from YAML files and FINDATA_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FINDATA_SEC_USER_AGENT.
const EnvPrefix = "FINDATA"

// Config is the complete application configuration.
type Config struct {
	SEC        SECConfig        `mapstructure:"sec"        yaml:"sec"`
	Yahoo      YahooConfig      `mapstructure:"yahoo"      yaml:"yahoo"`
	KRX        KRXConfig        `mapstructure:"krx"        yaml:"krx"`
	HTTP       HTTPConfig       `mapstructure:"http"       yaml:"http"`
	Statements StatementsConfig `mapstructure:"statements" yaml:"statements"`
	Dates      DatesConfig      `mapstructure:"dates"      yaml:"dates"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// SECConfig holds EDGAR settings. EDGAR rejects requests without a
// descriptive User-Agent naming a contact.
type SECConfig struct {
	UserAgent   string `mapstructure:"user_agent"   yaml:"user_agent"   validate:"required"`
	DataURL     string `mapstructure:"data_url"     yaml:"data_url"     validate:"required,url"`
	WWWURL      string `mapstructure:"www_url"      yaml:"www_url"      validate:"required,url"`
	RateLimit   int    `mapstructure:"rate_limit"   yaml:"rate_limit"   validate:"min=1,max=10"` // requests per second
	CacheTTLSec int    `mapstructure:"cache_ttl"    yaml:"cache_ttl"    validate:"gte=0"`
}

// YahooConfig holds chart API settings.
type YahooConfig struct {
	ChartURL    string `mapstructure:"chart_url"  yaml:"chart_url"  validate:"required,url"`
	RateLimit   int    `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	CacheTTLSec int    `mapstructure:"cache_ttl"  yaml:"cache_ttl"  validate:"gte=0"`
}

// KRXConfig holds Korea Exchange settings.
type KRXConfig struct {
	CorpListURL  string `mapstructure:"corp_list_url"  yaml:"corp_list_url"  validate:"required,url"`
	PriceSuffix  string `mapstructure:"price_suffix"   yaml:"price_suffix"`
	CacheTTLSec  int    `mapstructure:"cache_ttl"      yaml:"cache_ttl"      validate:"gte=0"`
}

// HTTPConfig holds transport settings shared by all providers.
type HTTPConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec" validate:"min=1"`
}

// Timeout returns TimeoutSec as a duration.
func (h HTTPConfig) Timeout() time.Duration { return time.Duration(h.TimeoutSec) * time.Second }

// StatementsConfig controls standardization.
type StatementsConfig struct {
	TTM           string `mapstructure:"ttm"            yaml:"ttm"            validate:"oneof=none sum_last_four"`
	SchemaFile    string `mapstructure:"schema_file"    yaml:"schema_file"`
	DefaultPeriod string `mapstructure:"default_period" yaml:"default_period" validate:"oneof=annual quarter"`
}

// DatesConfig holds date-range policy.
type DatesConfig struct {
	StartFloor string `mapstructure:"start_floor" yaml:"start_floor" validate:"required"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"        yaml:"level"        validate:"oneof=trace debug info warn warning error"`
	Format     string `mapstructure:"format"       yaml:"format"       validate:"oneof=text json"`
	Output     string `mapstructure:"output"       yaml:"output"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days" validate:"gte=0"`
}

// Load reads configuration from the first config.yaml found in
//  1. ./config
//  2. ~/.findata
//  3. /etc/findata
//
// Environment variables override file values: FINDATA_<SECTION>_<KEY>.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".findata"))
	v.AddConfigPath("/etc/findata")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the built-in defaults with environment overrides applied.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic("config: defaults do not decode: " + err.Error())
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sec.user_agent", "findata/1.0 findata@example.com")
	v.SetDefault("sec.data_url", "https://data.sec.gov")
	v.SetDefault("sec.www_url", "https://www.sec.gov")
	v.SetDefault("sec.rate_limit", 10)
	v.SetDefault("sec.cache_ttl", 3600)

	v.SetDefault("yahoo.chart_url", "https://query2.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("yahoo.rate_limit", 5)
	v.SetDefault("yahoo.cache_ttl", 300)

	v.SetDefault("krx.corp_list_url", "https://kind.krx.co.kr/corpgeneral/corpList.do?method=download&searchType=13")
	v.SetDefault("krx.price_suffix", ".KS")
	v.SetDefault("krx.cache_ttl", 86400)

	v.SetDefault("http.timeout_sec", 30)

	v.SetDefault("statements.ttm", "none")
	v.SetDefault("statements.schema_file", "")
	v.SetDefault("statements.default_period", "annual")

	v.SetDefault("dates.start_floor", "1900-01-01")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_age_days", 0)
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
