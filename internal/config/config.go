package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultIndexURL      = "https://niadqe.jp/glossary/"
	DefaultSheetsBaseURL = "https://sheets.googleapis.com"
)

type Config struct {
	NIAD     NIADConfig     `mapstructure:"niad"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Glossary GlossaryConfig `mapstructure:"glossary"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
}

type NIADConfig struct {
	IndexURL          string  `mapstructure:"index_url" validate:"required,url"`
	IntervalSec       int     `mapstructure:"interval_sec" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
}

// RefreshInterval is the staleness interval of the cached index page.
func (c NIADConfig) RefreshInterval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

type SheetsConfig struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	SheetName     string `mapstructure:"sheet_name"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url" validate:"required,url"`
}

// Enabled reports whether the internal spreadsheet source is configured at all.
func (c SheetsConfig) Enabled() bool {
	return c.SpreadsheetID != ""
}

type GlossaryConfig struct {
	OverwriteExternalWithInternal bool `mapstructure:"overwrite_external_with_internal"`
}

type CacheConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

type OutputConfig struct {
	Directory      string `mapstructure:"directory" validate:"required"`
	NIADGlossary   string `mapstructure:"niad_glossary" validate:"required"`
	SheetsGlossary string `mapstructure:"sheets_glossary" validate:"required"`
	MergedGlossary string `mapstructure:"merged_glossary" validate:"required"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// ConfigError reports a configuration that is malformed or contradictory.
// It is always returned before any network access happens.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return "invalid configuration: " + e.Reason
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/termbase")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("niad.index_url", DefaultIndexURL)
	v.SetDefault("niad.interval_sec", 86400)
	v.SetDefault("niad.requests_per_second", 1)
	v.SetDefault("sheets.base_url", DefaultSheetsBaseURL)
	v.SetDefault("glossary.overwrite_external_with_internal", true)
	v.SetDefault("cache.directory", "temp")
	v.SetDefault("output.directory", "output")
	v.SetDefault("output.niad_glossary", "niad_glossary.tsv")
	v.SetDefault("output.sheets_glossary", "sheets_glossary.tsv")
	v.SetDefault("output.merged_glossary", "merged_glossary.tsv")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "termbase")
	v.SetDefault("database.username", "user")

	// Secrets are bound to environment variables only
	if err := v.BindEnv("sheets.api_key", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GOOGLE_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{
				Reason: "configuration file found but could not be read. Please check the file format and permissions",
				Err:    err,
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Reason: "invalid configuration format", Err: err}
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, &ConfigError{Reason: "validation failed", Err: err}
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, &ConfigError{Reason: strings.Join(errorMsgs, ", ")}
	}

	return &cfg, nil
}
