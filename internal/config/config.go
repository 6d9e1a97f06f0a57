package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "CHEESE_AGENT_CONFIG"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	assistantAPIKeyEnv = "ASSISTANT_API_KEY"
	assistantModelEnv  = "ASSISTANT_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Agent         AgentConfig        `yaml:"agent"`
	Scraper       ScraperConfig      `yaml:"scraper"`
	Browser       BrowserConfig      `yaml:"browser"`
	Notifications NotificationConfig `yaml:"notifications"`
	Assistant     AssistantConfig    `yaml:"assistant"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig controls level and the per-day log file directory.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// AgentConfig describes the run orchestrator: target, state file, queue prefix.
type AgentConfig struct {
	DailyTarget      int    `yaml:"dailyTarget"`
	StateFile        string `yaml:"stateFile"`
	CollectionPrefix string `yaml:"collectionPrefix"`
}

// ScraperConfig drives the discovery session.
type ScraperConfig struct {
	OutputDir  string   `yaml:"outputDir"`
	Fetcher    string   `yaml:"fetcher"`
	Categories []string `yaml:"categories"`
}

// BrowserConfig tunes the rendered-page session.
type BrowserConfig struct {
	WaitTimeoutSeconds int `yaml:"waitTimeoutSeconds"`
	ScrollCount        int `yaml:"scrollCount"`
	ScrollDelaySeconds int `yaml:"scrollDelaySeconds"`
}

// WaitTimeout resolves the bounded wait for image elements to appear.
func (b BrowserConfig) WaitTimeout() time.Duration {
	if b.WaitTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(b.WaitTimeoutSeconds) * time.Second
}

// ScrollDelay resolves the settle delay after each scroll trigger.
func (b BrowserConfig) ScrollDelay() time.Duration {
	if b.ScrollDelaySeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(b.ScrollDelaySeconds) * time.Second
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// AssistantConfig defines how to reach the assistant hand-off endpoint.
type AssistantConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// SchedulerConfig defines the daemon-mode run cadence.
type SchedulerConfig struct {
	IntervalHours int `yaml:"intervalHours"`
}

// Interval resolves the daemon run interval, defaulting to one day.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.IntervalHours) * time.Hour
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An empty path falls back to the CHEESE_AGENT_CONFIG variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Scraper.Categories) == 0 {
		cfg.Scraper.Categories = defaultConfig().Scraper.Categories
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(assistantAPIKeyEnv); v != "" {
		c.Assistant.APIKey = v
	}

	if v := os.Getenv(assistantModelEnv); v != "" {
		c.Assistant.Model = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Dir != "" {
		base.Logging.Dir = override.Logging.Dir
	}

	if override.Agent.DailyTarget > 0 {
		base.Agent.DailyTarget = override.Agent.DailyTarget
	}
	if override.Agent.StateFile != "" {
		base.Agent.StateFile = override.Agent.StateFile
	}
	if override.Agent.CollectionPrefix != "" {
		base.Agent.CollectionPrefix = override.Agent.CollectionPrefix
	}

	if override.Scraper.OutputDir != "" {
		base.Scraper.OutputDir = override.Scraper.OutputDir
	}
	if override.Scraper.Fetcher != "" {
		base.Scraper.Fetcher = override.Scraper.Fetcher
	}
	if len(override.Scraper.Categories) > 0 {
		base.Scraper.Categories = override.Scraper.Categories
	}

	if override.Browser.WaitTimeoutSeconds > 0 {
		base.Browser.WaitTimeoutSeconds = override.Browser.WaitTimeoutSeconds
	}
	if override.Browser.ScrollCount > 0 {
		base.Browser.ScrollCount = override.Browser.ScrollCount
	}
	if override.Browser.ScrollDelaySeconds > 0 {
		base.Browser.ScrollDelaySeconds = override.Browser.ScrollDelaySeconds
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Assistant.Endpoint != "" {
		base.Assistant.Endpoint = override.Assistant.Endpoint
	}
	if override.Assistant.Model != "" {
		base.Assistant.Model = override.Assistant.Model
	}
	if override.Assistant.APIKey != "" {
		base.Assistant.APIKey = override.Assistant.APIKey
	}
	if override.Assistant.SystemPrompt != "" {
		base.Assistant.SystemPrompt = override.Assistant.SystemPrompt
	}

	if override.Scheduler.IntervalHours > 0 {
		base.Scheduler.IntervalHours = override.Scheduler.IntervalHours
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "cheese_agent_output/daily_logs",
		},
		Agent: AgentConfig{
			DailyTarget:      10,
			StateFile:        "cheese_agent_output/agent_state.json",
			CollectionPrefix: "cheese-collection",
		},
		Scraper: ScraperConfig{
			OutputDir: "scraped_cheese_images",
			Fetcher:   "chrome",
			Categories: []string{
				"semi soft", "bloomy", "blue", "hard", "washed rind", "fresh",
			},
		},
		Browser: BrowserConfig{
			WaitTimeoutSeconds: 20,
			ScrollCount:        3,
			ScrollDelaySeconds: 2,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Assistant: AssistantConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			APIKey:       "",
			SystemPrompt: "You manage a cheese image collection. Upload the queued images using your tools.",
		},
		Scheduler: SchedulerConfig{IntervalHours: 24},
	}
}
