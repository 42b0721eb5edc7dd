package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"group-lead-scraper-go/internal/models"
)

// DefaultLLMMaxAttempts gives up on the first failed completion; retrying is opt-in
const DefaultLLMMaxAttempts = 1

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Groups    []models.Group  `mapstructure:"groups"`

	v *viper.Viper
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ScraperConfig holds scraping backend configuration
type ScraperConfig struct {
	Source        string        `mapstructure:"source"` // apify, sample
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	ActorID       string        `mapstructure:"actor_id"`
	WaitForFinish time.Duration `mapstructure:"wait_for_finish"`
	PageSize      int           `mapstructure:"page_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CutoffDays    int           `mapstructure:"cutoff_days"`
	SampleFile    string        `mapstructure:"sample_file"`
	SnapshotFile  string        `mapstructure:"snapshot_file"`
}

// LLMConfig holds language-model backend configuration
type LLMConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	APIBase           string        `mapstructure:"api_base"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialWait       time.Duration `mapstructure:"initial_wait"`
	MaxWait           time.Duration `mapstructure:"max_wait"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// StorageConfig holds output configuration
type StorageConfig struct {
	Backend       string `mapstructure:"backend"` // csv, sql
	PostsFile     string `mapstructure:"posts_file"`
	ProcessedFile string `mapstructure:"processed_file"`
	ImagesFile    string `mapstructure:"images_file"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite, mysql
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// NotifyConfig holds lead notification configuration
type NotifyConfig struct {
	NATSURL string `mapstructure:"nats_url"`
	Subject string `mapstructure:"subject"`
}

// LoadConfig loads configuration from .env, config.yaml and environment variables
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load loads configuration, reading configFile instead of searching for config.yaml when it is set
func Load(configFile string) (*Config, error) {
	if err := godotenv.Overload(); err != nil {
		logrus.Debug("No .env file found, using process environment")
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.v = v
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	for i := range cfg.Groups {
		if cfg.Groups[i].ViewOption == "" {
			cfg.Groups[i].ViewOption = models.SortChronological
		}
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("log.level", "info")

	v.SetDefault("scraper.source", "apify")
	v.SetDefault("scraper.base_url", "https://api.apify.com")
	v.SetDefault("scraper.actor_id", "apify~facebook-groups-scraper")
	v.SetDefault("scraper.wait_for_finish", "5m")
	v.SetDefault("scraper.page_size", 100)
	v.SetDefault("scraper.timeout", "6m")
	v.SetDefault("scraper.cutoff_days", 3)
	v.SetDefault("scraper.sample_file", "apify_sample_response.json")
	v.SetDefault("scraper.snapshot_file", "apify_response.json")

	v.SetDefault("llm.api_base", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_attempts", DefaultLLMMaxAttempts)
	v.SetDefault("llm.initial_wait", "1s")
	v.SetDefault("llm.max_wait", "30s")
	v.SetDefault("llm.requests_per_second", 0)

	v.SetDefault("storage.backend", "csv")
	v.SetDefault("storage.posts_file", "posts.csv")
	v.SetDefault("storage.processed_file", "processed_posts.csv")
	v.SetDefault("storage.images_file", "images.csv")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/leads.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval_minutes", 60)

	v.SetDefault("notify.subject", "leads.classified")

	v.SetDefault("groups", []map[string]interface{}{
		{
			"group_url":   "https://www.facebook.com/groups/468407051306591",
			"max_posts":   10,
			"view_option": string(models.SortChronological),
		},
	})
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")

	v.BindEnv("log.level", "LOG_LEVEL")

	// Scraper
	v.BindEnv("scraper.api_key", "APIFY_API_KEY", "API_KEY")
	v.BindEnv("scraper.source", "SCRAPER_SOURCE")

	// LLM
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.api_base", "OPENAI_API_BASE")
	v.BindEnv("llm.model", "OPENAI_MODEL")

	// Storage
	v.BindEnv("storage.backend", "STORAGE_BACKEND")

	// Database
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.path", "DB_PATH")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")

	// Scheduler
	v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	v.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")

	// Notify
	v.BindEnv("notify.nats_url", "NATS_URL")
}

// Watch reloads the config file on change and hands the new config to onChange.
// Invalid reloads are logged and dropped.
func (c *Config) Watch(onChange func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		logrus.Debug("No config file in use, skipping config watch")
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(c.v)
		if err != nil {
			logrus.Errorf("Failed to reload config %s: %v", e.Name, err)
			return
		}
		if err := next.Validate(); err != nil {
			logrus.Errorf("Reloaded config %s is invalid: %v", e.Name, err)
			return
		}
		next.v = c.v
		logrus.Infof("Config reloaded from %s", e.Name)
		onChange(next)
	})
	c.v.WatchConfig()
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.Path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Scraper.Source {
	case "apify":
		if c.Scraper.APIKey == "" {
			return fmt.Errorf("scraping backend key is required (APIFY_API_KEY)")
		}
		if c.Scraper.PageSize <= 0 {
			return fmt.Errorf("scraper page size must be greater than 0")
		}
		if c.Scraper.WaitForFinish <= 0 {
			return fmt.Errorf("scraper wait_for_finish must be greater than 0")
		}
	case "sample":
	default:
		return fmt.Errorf("unknown scraper source %q", c.Scraper.Source)
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("language model key is required (OPENAI_API_KEY)")
	}
	if c.LLM.MaxAttempts <= 0 {
		return fmt.Errorf("llm max attempts must be greater than 0")
	}

	switch c.Storage.Backend {
	case "csv":
		if c.Storage.PostsFile == "" || c.Storage.ProcessedFile == "" {
			return fmt.Errorf("posts and processed files are required for csv storage")
		}
	case "sql":
		switch c.Database.Driver {
		case "sqlite":
			if c.Database.Path == "" {
				return fmt.Errorf("database path is required for sqlite")
			}
		case "mysql":
			if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
				return fmt.Errorf("database host, user, and dbname are required")
			}
		default:
			return fmt.Errorf("unknown database driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if len(c.Groups) == 0 {
		return fmt.Errorf("at least one group is required")
	}
	for _, g := range c.Groups {
		if err := g.Validate(); err != nil {
			return err
		}
	}

	if c.Scheduler.Enabled && c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	return nil
}
