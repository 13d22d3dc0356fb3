package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv          = "COURSEWATCHER_CONFIG"
	discordTokenEnv        = "DISCORD_BOT_TOKEN"
	discordNotifyEnv       = "DISCORD_NOTIFY_CHANNEL_ID"
	discordLogChannelEnv   = "DISCORD_LOG_CHANNEL_ID"
	discordLogLevelEnv     = "DISCORD_LOG_LEVEL"
	telegramTokenEnv       = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv      = "TELEGRAM_CHAT_ID"
	databaseDSNEnv         = "DATABASE_DSN"
	logLevelEnv            = "LOG_LEVEL"
	metricsListenEnv       = "METRICS_LISTEN"
	pollIntervalEnv        = "POLL_INTERVAL"
	insecureSkipVerifyEnv  = "MOODLE_INSECURE_SKIP_VERIFY"
	defaultPollingInterval = 120 * time.Second
)

// Config holds high-level settings required across the application.
type Config struct {
	Files         FilesConfig        `yaml:"files"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Notifications NotificationConfig `yaml:"notifications"`
	Database      DatabaseConfig     `yaml:"database"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// FilesConfig locates the persisted state, course list and cookie.
type FilesConfig struct {
	Snapshots  string `yaml:"snapshots"`
	CourseList string `yaml:"courseList"`
	Cookie     string `yaml:"cookie"`
}

// SchedulerConfig defines when polling cycles run. CronExpression wins over Interval.
type SchedulerConfig struct {
	Interval       time.Duration `yaml:"interval"`
	CronExpression string        `yaml:"cronExpression"`
}

// FetchConfig tunes course page downloads.
type FetchConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	UserAgent          string        `yaml:"userAgent"`
	InsecureSkipVerify bool          `yaml:"insecureSkipVerify"`
	RequestsPerSecond  float64       `yaml:"requestsPerSecond"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// DiscordConfig wires the bot used for update embeds and log forwarding.
type DiscordConfig struct {
	BotToken        string `yaml:"botToken"`
	NotifyChannelID string `yaml:"notifyChannelId"`
	LogChannelID    string `yaml:"logChannelId"`
	LogLevel        string `yaml:"logLevel"`
	APIBaseURL      string `yaml:"apiBaseUrl"`
	Mention         string `yaml:"mention"`
}

// Enabled reports whether update notifications can be sent.
func (d DiscordConfig) Enabled() bool {
	return d.BotToken != "" && d.NotifyChannelID != ""
}

// LogForwardingEnabled reports whether log records can be forwarded.
func (d DiscordConfig) LogForwardingEnabled() bool {
	return d.BotToken != "" && d.LogChannelID != ""
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken   string `yaml:"botToken"`
	ChatID     string `yaml:"chatId"`
	APIBaseURL string `yaml:"apiBaseUrl"`
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// DatabaseConfig describes the optional Postgres delivery log.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// MetricsConfig controls the Prometheus listener; empty Listen disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// LoggingConfig sets the console log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads .env files, YAML configuration (if present) and applies environment overrides.
// An empty path falls back to $COURSEWATCHER_CONFIG.
func Load(path string) Config {
	loadEnvFiles()
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	return LoadFile(path)
}

// LoadFile is Load without .env handling; an empty path means defaults plus environment.
func LoadFile(path string) Config {
	cfg := defaultConfig()

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

	if cfg.Scheduler.Interval <= 0 {
		log.Printf("config: non-positive polling interval, reverting to %s", defaultPollingInterval)
		cfg.Scheduler.Interval = defaultPollingInterval
	}

	return cfg
}

// loadEnvFiles loads .env.local then .env; variables already set are kept.
func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			log.Printf("config: cannot load %s: %v", name, err)
		}
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(discordTokenEnv); v != "" {
		c.Notifications.Discord.BotToken = v
	}
	if v := os.Getenv(discordNotifyEnv); v != "" {
		c.Notifications.Discord.NotifyChannelID = v
	}
	if v := os.Getenv(discordLogChannelEnv); v != "" {
		c.Notifications.Discord.LogChannelID = v
	}
	if v := os.Getenv(discordLogLevelEnv); v != "" {
		c.Notifications.Discord.LogLevel = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(metricsListenEnv); v != "" {
		c.Metrics.Listen = v
	}

	if v := os.Getenv(pollIntervalEnv); v != "" {
		if d, err := time.ParseDuration(v); err != nil {
			log.Printf("config: invalid %s=%q: %v", pollIntervalEnv, v, err)
		} else {
			c.Scheduler.Interval = d
		}
	}

	if v := os.Getenv(insecureSkipVerifyEnv); v != "" {
		if b, err := strconv.ParseBool(v); err != nil {
			log.Printf("config: invalid %s=%q: %v", insecureSkipVerifyEnv, v, err)
		} else {
			c.Fetch.InsecureSkipVerify = b
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Files.Snapshots != "" {
		base.Files.Snapshots = override.Files.Snapshots
	}
	if override.Files.CourseList != "" {
		base.Files.CourseList = override.Files.CourseList
	}
	if override.Files.Cookie != "" {
		base.Files.Cookie = override.Files.Cookie
	}

	if override.Scheduler.Interval != 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}

	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.InsecureSkipVerify {
		base.Fetch.InsecureSkipVerify = true
	}
	if override.Fetch.RequestsPerSecond > 0 {
		base.Fetch.RequestsPerSecond = override.Fetch.RequestsPerSecond
	}

	d, od := &base.Notifications.Discord, override.Notifications.Discord
	if od.BotToken != "" {
		d.BotToken = od.BotToken
	}
	if od.NotifyChannelID != "" {
		d.NotifyChannelID = od.NotifyChannelID
	}
	if od.LogChannelID != "" {
		d.LogChannelID = od.LogChannelID
	}
	if od.LogLevel != "" {
		d.LogLevel = od.LogLevel
	}
	if od.APIBaseURL != "" {
		d.APIBaseURL = od.APIBaseURL
	}
	if od.Mention != "" {
		d.Mention = od.Mention
	}

	tg, otg := &base.Notifications.Telegram, override.Notifications.Telegram
	if otg.BotToken != "" {
		tg.BotToken = otg.BotToken
	}
	if otg.ChatID != "" {
		tg.ChatID = otg.ChatID
	}
	if otg.APIBaseURL != "" {
		tg.APIBaseURL = otg.APIBaseURL
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.Metrics.Listen != "" {
		base.Metrics = override.Metrics
	}
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Files: FilesConfig{
			Snapshots:  "scraper_state.json",
			CourseList: "course_urls.json",
			Cookie:     "cookies.json",
		},
		Scheduler: SchedulerConfig{Interval: defaultPollingInterval},
		Fetch: FetchConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Mozilla/5.0",
			RequestsPerSecond: 2,
		},
		Notifications: NotificationConfig{
			Discord: DiscordConfig{LogLevel: "warning", Mention: "@here"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
