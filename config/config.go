package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	SearchModeLocal    = "local"
	SearchModeExternal = "external"

	ProviderNewsAPI = "newsapi"
	ProviderRSS     = "rss"
)

type AppConfig struct {
	Logging         LoggingConfig         `yaml:"logging"`
	Server          ServerConfig          `yaml:"server"`
	Mongo           MongoConfig           `yaml:"mongo"`
	Retention       RetentionConfig       `yaml:"retention"`
	NewsSource      NewsSourceConfig      `yaml:"news_source"`
	Gemini          GeminiConfig          `yaml:"gemini"`
	SummaryQuota    SummaryQuotaConfig    `yaml:"summary_quota"`
	Scheduler       SchedulerConfig       `yaml:"scheduler"`
	Retry           RetryConfig           `yaml:"retry"`
	ConversionQueue ConversionQueueConfig `yaml:"conversion_queue"`
	Query           QueryConfig           `yaml:"query"`
	Auth            AuthConfig            `yaml:"auth"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MongoConfig holds the database name. The connection URI is a secret and is
// read from MONGODB_URI.
type MongoConfig struct {
	URI            string        `yaml:"-"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// RetentionConfig drives the TTL indexes. Documents are removed by MongoDB
// itself once created_at is older than the window.
type RetentionConfig struct {
	Articles        time.Duration `yaml:"articles"`
	ConversionQueue time.Duration `yaml:"conversion_queue"`
}

type NewsSourceConfig struct {
	Provider      string        `yaml:"provider"`
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"-"`
	Language      string        `yaml:"language"`
	FetchSize     int           `yaml:"fetch_size"`
	QueryTemplate string        `yaml:"query_template"`
	Categories    []string      `yaml:"categories"`
	Timeout       time.Duration `yaml:"timeout"`
}

type GeminiConfig struct {
	APIKey  string        `yaml:"-"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SummaryQuotaConfig limits calls to the text model.
// A value of 0 or less disables that direction of the limit.
type SummaryQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

// SchedulerConfig holds cron specs (robfig/cron syntax, "@every 30m" works).
type SchedulerConfig struct {
	Ingest          string `yaml:"ingest"`
	Retry           string `yaml:"retry"`
	ConversionQueue string `yaml:"conversion_queue"`
	RunOnStart      bool   `yaml:"run_on_start"`
}

type RetryConfig struct {
	MaxRetries int `yaml:"max_retries"`
	BatchSize  int `yaml:"batch_size"`
}

type ConversionQueueConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxRetries int  `yaml:"max_retries"`
	BatchSize  int  `yaml:"batch_size"`
}

type QueryConfig struct {
	DefaultCategory string `yaml:"default_category"`
	DefaultLimit    int    `yaml:"default_limit"`
	MaxLimit        int    `yaml:"max_limit"`
	SearchMode      string `yaml:"search_mode"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"-"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// Default returns the configuration used when config.yaml leaves a value unset.
func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Server: ServerConfig{
			Addr:           ":5000",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Mongo: MongoConfig{
			Database:       "hinglish_snaps",
			ConnectTimeout: 10 * time.Second,
		},
		Retention: RetentionConfig{
			Articles:        24 * time.Hour,
			ConversionQueue: 7 * 24 * time.Hour,
		},
		NewsSource: NewsSourceConfig{
			Provider:      ProviderNewsAPI,
			BaseURL:       "https://newsapi.org",
			Language:      "en",
			FetchSize:     10,
			QueryTemplate: "india AND %s",
			Categories:    []string{"finance", "technology", "business"},
			Timeout:       10 * time.Second,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-flash",
			Timeout: 30 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Ingest:          "@every 30m",
			Retry:           "@every 2m",
			ConversionQueue: "@every 5m",
			RunOnStart:      true,
		},
		Retry: RetryConfig{MaxRetries: 3, BatchSize: 25},
		ConversionQueue: ConversionQueueConfig{
			Enabled:    true,
			MaxRetries: 3,
			BatchSize:  5,
		},
		Query: QueryConfig{
			DefaultCategory: "finance",
			DefaultLimit:    6,
			MaxLimit:        50,
			SearchMode:      SearchModeExternal,
		},
		Auth: AuthConfig{
			TokenTTL:   30 * 24 * time.Hour,
			BcryptCost: 10,
		},
	}
}

// Load reads .env and config.yaml from the base path, fills unset values
// with defaults and pulls secrets from the environment.
func Load() (AppConfig, error) {
	base := GetBasePath()
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load(filepath.Join(base, ENV_FILE))

	cfg := Default()
	if base != "" {
		data, err := os.ReadFile(filepath.Join(base, CONFIG_FILE))
		if err != nil {
			return AppConfig{}, fmt.Errorf("read %s: %w", CONFIG_FILE, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	cfg.Mongo.URI = os.Getenv("MONGODB_URI")
	cfg.NewsSource.APIKey = os.Getenv("NEWS_API_KEY")
	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET_KEY")
	if lv := os.Getenv("LOG_LEVEL"); lv != "" {
		cfg.Logging.Level = lv
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
}

// applyDefaults fills zero values left by a partial config.yaml.
func applyDefaults(cfg *AppConfig) {
	d := Default()
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = d.Mongo.Database
	}
	if cfg.Mongo.ConnectTimeout <= 0 {
		cfg.Mongo.ConnectTimeout = d.Mongo.ConnectTimeout
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
	if cfg.Retention.Articles <= 0 {
		cfg.Retention.Articles = d.Retention.Articles
	}
	if cfg.Retention.ConversionQueue <= 0 {
		cfg.Retention.ConversionQueue = d.Retention.ConversionQueue
	}
	ns := &cfg.NewsSource
	if ns.Provider == "" {
		ns.Provider = d.NewsSource.Provider
	}
	if ns.BaseURL == "" {
		switch ns.Provider {
		case ProviderRSS:
			ns.BaseURL = "https://news.google.com"
		default:
			ns.BaseURL = d.NewsSource.BaseURL
		}
	}
	if ns.Language == "" {
		ns.Language = d.NewsSource.Language
	}
	if ns.FetchSize <= 0 {
		ns.FetchSize = d.NewsSource.FetchSize
	}
	if ns.QueryTemplate == "" {
		ns.QueryTemplate = d.NewsSource.QueryTemplate
	}
	if len(ns.Categories) == 0 {
		ns.Categories = d.NewsSource.Categories
	}
	if ns.Timeout <= 0 {
		ns.Timeout = d.NewsSource.Timeout
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = d.Gemini.Model
	}
	if cfg.Gemini.Timeout <= 0 {
		cfg.Gemini.Timeout = d.Gemini.Timeout
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry.MaxRetries = d.Retry.MaxRetries
	}
	if cfg.Retry.BatchSize <= 0 {
		cfg.Retry.BatchSize = d.Retry.BatchSize
	}
	if cfg.ConversionQueue.MaxRetries <= 0 {
		cfg.ConversionQueue.MaxRetries = d.ConversionQueue.MaxRetries
	}
	if cfg.ConversionQueue.BatchSize <= 0 {
		cfg.ConversionQueue.BatchSize = d.ConversionQueue.BatchSize
	}
	q := &cfg.Query
	if q.DefaultCategory == "" {
		q.DefaultCategory = d.Query.DefaultCategory
	}
	if q.MaxLimit <= 0 {
		q.MaxLimit = d.Query.MaxLimit
	}
	if q.DefaultLimit <= 0 {
		q.DefaultLimit = d.Query.DefaultLimit
	}
	if q.DefaultLimit > q.MaxLimit {
		q.DefaultLimit = q.MaxLimit
	}
	if q.SearchMode == "" {
		q.SearchMode = d.Query.SearchMode
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = d.Auth.TokenTTL
	}
	if cfg.Auth.BcryptCost <= 0 {
		cfg.Auth.BcryptCost = d.Auth.BcryptCost
	}
	if cfg.Scheduler.Ingest == "" {
		cfg.Scheduler.Ingest = d.Scheduler.Ingest
	}
	if cfg.Scheduler.Retry == "" {
		cfg.Scheduler.Retry = d.Scheduler.Retry
	}
	if cfg.Scheduler.ConversionQueue == "" {
		cfg.Scheduler.ConversionQueue = d.Scheduler.ConversionQueue
	}
}

// Validate reports settings that cannot be defaulted.
func (c AppConfig) Validate() error {
	switch c.Query.SearchMode {
	case SearchModeLocal, SearchModeExternal:
	default:
		return fmt.Errorf("query.search_mode must be %q or %q, got %q", SearchModeLocal, SearchModeExternal, c.Query.SearchMode)
	}
	switch c.NewsSource.Provider {
	case ProviderNewsAPI, ProviderRSS:
	default:
		return fmt.Errorf("news_source.provider must be %q or %q, got %q", ProviderNewsAPI, ProviderRSS, c.NewsSource.Provider)
	}
	if !strings.Contains(c.NewsSource.QueryTemplate, "%s") {
		return fmt.Errorf("news_source.query_template must contain %%s")
	}
	return nil
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
