package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-lead-scraper-go/internal/models"
)

func validConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{Source: "apify", APIKey: "apify-key", PageSize: 100, WaitForFinish: 5 * time.Minute},
		LLM:     LLMConfig{APIKey: "openai-key", MaxAttempts: 5},
		Storage: StorageConfig{Backend: "csv", PostsFile: "posts.csv", ProcessedFile: "processed_posts.csv"},
		Groups: []models.Group{
			{URL: "https://www.facebook.com/groups/1", MaxPosts: 10, ViewOption: models.SortChronological},
		},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Scraper.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Scraper.WaitForFinish = 0
	assert.Error(t, cfg.Validate(), "apify runs need a positive wait budget")

	cfg.Scraper.Source = "sample"
	assert.NoError(t, cfg.Validate(), "sample source ignores the wait budget")

	cfg = validConfig()
	cfg.Scraper.Source = "sample"
	cfg.Scraper.APIKey = ""
	assert.NoError(t, cfg.Validate(), "sample source needs no scraping key")

	cfg = validConfig()
	cfg.LLM.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Groups = nil
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Groups[0].ViewOption = "NEWEST"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Storage.Backend = "sql"
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg.Database.Host = "localhost"
	cfg.Database.User = "leads"
	cfg.Database.DBName = "leads"
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Scheduler.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	mysqlCfg := DatabaseConfig{
		Driver:   "mysql",
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}
	assert.Equal(t, "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local", mysqlCfg.GetDSN())

	sqliteCfg := DatabaseConfig{Driver: "sqlite", Path: "data/leads.db"}
	assert.Equal(t, "data/leads.db?_journal_mode=WAL&_busy_timeout=5000", sqliteCfg.GetDSN())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APIFY_API_KEY", "apify-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "apify-key", cfg.Scraper.APIKey)
	assert.Equal(t, "openai-key", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, 1, cfg.LLM.MaxAttempts, "completion faults are not retried by default")
	assert.Equal(t, 3, cfg.Scraper.CutoffDays)
	assert.Equal(t, 5*time.Minute, cfg.Scraper.WaitForFinish)
	assert.Equal(t, "csv", cfg.Storage.Backend)
	assert.Equal(t, "posts.csv", cfg.Storage.PostsFile)
	require.Len(t, cfg.Groups, 1)
	assert.Equal(t, "https://www.facebook.com/groups/468407051306591", cfg.Groups[0].URL)
	assert.Equal(t, 10, cfg.Groups[0].MaxPosts)
	assert.Equal(t, models.SortChronological, cfg.Groups[0].ViewOption)
	assert.NoError(t, cfg.Validate())
}

func TestLoadLegacyAPIKeyName(t *testing.T) {
	t.Setenv("APIFY_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.Scraper.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "openai-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scraper:
  source: sample
storage:
  backend: sql
database:
  driver: sqlite
  path: /tmp/leads.db
groups:
  - group_url: https://www.facebook.com/groups/a
    max_posts: 20
    view_option: TOP_POSTS
  - group_url: https://www.facebook.com/groups/b
    max_posts: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sample", cfg.Scraper.Source)
	assert.Equal(t, "sql", cfg.Storage.Backend)
	require.Len(t, cfg.Groups, 2)
	assert.Equal(t, models.SortTopPosts, cfg.Groups[0].ViewOption)
	assert.Equal(t, 20, cfg.Groups[0].MaxPosts)
	assert.Equal(t, models.SortChronological, cfg.Groups[1].ViewOption, "empty view option defaults to chronological")
	assert.NoError(t, cfg.Validate())
}
