package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Appliance ApplianceConfig `yaml:"appliance"`
	Poll      PollConfig      `yaml:"poll"`
	State     StateConfig     `yaml:"state"`
	Database  DatabaseConfig  `yaml:"database"`
	NATS      NATSConfig      `yaml:"nats"`
	Slack     SlackConfig     `yaml:"slack"`
	API       APIConfig       `yaml:"api"`
}

type ApplianceConfig struct {
	BaseURL       string `yaml:"base_url"`
	PublicToken   string `yaml:"public_token"`
	PrivateToken  string `yaml:"private_token"`
	SkipTLSVerify bool   `yaml:"skip_tls_verify"`
}

type PollConfig struct {
	ModelBreaches    bool          `yaml:"model_breaches"`
	AIAnalyst        bool          `yaml:"ai_analyst"`
	Interval         time.Duration `yaml:"interval"`
	BreachLookback   time.Duration `yaml:"breach_lookback"`
	IncidentLookback time.Duration `yaml:"incident_lookback"`
}

type StateConfig struct {
	FilePath string `yaml:"file_path"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type SlackConfig struct {
	BotToken    string `yaml:"bot_token"`
	Channel     string `yaml:"channel"`
	MentionTeam string `yaml:"mention_team"`
}

type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Load reads a YAML config file, applies environment overrides and
// validates the result.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.overrideWithEnv()
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) overrideWithEnv() {
	if val := os.Getenv("CASEBRIDGE_BASE_URL"); val != "" {
		c.Appliance.BaseURL = val
	}
	if val := os.Getenv("CASEBRIDGE_PUBLIC_TOKEN"); val != "" {
		c.Appliance.PublicToken = val
	}
	if val := os.Getenv("CASEBRIDGE_PRIVATE_TOKEN"); val != "" {
		c.Appliance.PrivateToken = val
	}
	if val := os.Getenv("CASEBRIDGE_SKIP_TLS_VERIFY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Appliance.SkipTLSVerify = b
		}
	}
	if val := os.Getenv("CASEBRIDGE_DATABASE_URL"); val != "" {
		c.Database.URL = val
	}
	if val := os.Getenv("CASEBRIDGE_NATS_URL"); val != "" {
		c.NATS.URL = val
	}
	if val := os.Getenv("CASEBRIDGE_SLACK_BOT_TOKEN"); val != "" {
		c.Slack.BotToken = val
	}
	if val := os.Getenv("CASEBRIDGE_API_LISTEN_ADDR"); val != "" {
		c.API.ListenAddr = val
	}
}

func (c *Config) applyDefaults() {
	if c.Poll.Interval == 0 {
		c.Poll.Interval = 5 * time.Minute
	}
	if c.Poll.BreachLookback == 0 {
		c.Poll.BreachLookback = 6 * time.Hour
	}
	if c.Poll.IncidentLookback == 0 {
		c.Poll.IncidentLookback = 24 * time.Hour
	}
	if c.State.FilePath == "" {
		c.State.FilePath = "casebridge-state.json"
	}
	if c.API.ListenAddr == "" {
		// Secure default - localhost only
		c.API.ListenAddr = "localhost:8080"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "casebridge.cases.created"
	}
}

func (c *Config) validate() error {
	if c.Appliance.BaseURL == "" {
		return fmt.Errorf("appliance.base_url cannot be empty")
	}
	if c.Appliance.PublicToken == "" {
		return fmt.Errorf("appliance.public_token cannot be empty")
	}
	if c.Appliance.PrivateToken == "" {
		return fmt.Errorf("appliance.private_token cannot be empty")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be > 0")
	}
	if c.Poll.BreachLookback <= 0 {
		return fmt.Errorf("poll.breach_lookback must be > 0")
	}
	if c.Poll.IncidentLookback <= 0 {
		return fmt.Errorf("poll.incident_lookback must be > 0")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url cannot be empty")
	}
	return nil
}
