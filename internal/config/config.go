package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Provider ProviderConfig `yaml:"provider"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
	// Keywords seeds the scheduler with keywords to keep refreshed even
	// before anyone tracks them through the API or CLI.
	Keywords []string `yaml:"keywords"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProviderConfig selects and configures the SERP data provider.
type ProviderConfig struct {
	// Name is "dataforseo" or "googlenews".
	Name       string           `yaml:"name"`
	DataForSEO DataForSEOConfig `yaml:"dataforseo"`
	GoogleNews GoogleNewsConfig `yaml:"googlenews"`
}

// DataForSEOConfig for the DataForSEO SERP API.
type DataForSEOConfig struct {
	Login        string `yaml:"login"`
	Password     string `yaml:"password"`
	LocationName string `yaml:"location_name"`
	LanguageCode string `yaml:"language_code"`
	Depth        int    `yaml:"depth"`
}

// GoogleNewsConfig for the Google News RSS provider.
type GoogleNewsConfig struct {
	Language string `yaml:"language"`
	Limit    int    `yaml:"limit"`
}

// ScheduleConfig configures the periodic refresh loop.
type ScheduleConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
}

// ParseRefreshInterval returns the refresh interval as time.Duration.
func (s ScheduleConfig) ParseRefreshInterval() time.Duration {
	d, err := time.ParseDuration(s.RefreshInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// ScoringConfig selects the reputation scoring policy and history bound.
type ScoringConfig struct {
	// Policy is "weighted" (position-weighted sentiment average) or
	// "bucket" (signed position-bucket sum).
	Policy string `yaml:"policy"`
	// Escalation enables the stricter weighted variant that triples top-10
	// weights and caps the score at 60 when a top-10 negative exists.
	Escalation bool `yaml:"escalation"`
	// HistoryCap bounds the per-result rank history length.
	HistoryCap int `yaml:"history_cap"`
}

// AlertsConfig configures reputation alert conditions and destinations.
type AlertsConfig struct {
	// MinScore triggers an alert when a refresh lands below it.
	MinScore int `yaml:"min_score"`
	// DropThreshold triggers an alert when a refresh loses at least this
	// many points against the previous score.
	DropThreshold int           `yaml:"drop_threshold"`
	Slack         SlackConfig   `yaml:"slack"`
	Discord       DiscordConfig `yaml:"discord"`
	Webhook       WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./repradar.db"},
		Provider: ProviderConfig{
			Name: "dataforseo",
			DataForSEO: DataForSEOConfig{
				LocationName: "United States",
				LanguageCode: "en",
				Depth:        50,
			},
			GoogleNews: GoogleNewsConfig{Language: "en", Limit: 50},
		},
		Schedule: ScheduleConfig{RefreshInterval: "24h"},
		Scoring: ScoringConfig{
			Policy:     "weighted",
			HistoryCap: 30,
		},
		Alerts: AlertsConfig{
			MinScore:      40,
			DropThreshold: 10,
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
// A .env file in the working directory is honored for credentials.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("DATAFORSEO_LOGIN"); v != "" {
		cfg.Provider.DataForSEO.Login = v
	}
	if v := os.Getenv("DATAFORSEO_PASSWORD"); v != "" {
		cfg.Provider.DataForSEO.Password = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("ALERT_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Webhook.URL = v
		cfg.Alerts.Webhook.Enabled = true
	}
}
