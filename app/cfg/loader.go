package cfg

import (
	"cmp"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/rss-brief/app/delivery"
	"github.com/lysyi3m/rss-brief/app/feed"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Inputs and outputs
	FeedsFile    string `long:"feeds-file" env:"FEEDS_FILE" default:"feeds.yml" description:"YAML file listing feeds and categories"`
	TemplateFile string `long:"template-file" env:"TEMPLATE_FILE" default:"templates/email_template.html" description:"HTML template for the newsletter"`
	OutputFile   string `long:"output-file" env:"OUTPUT_FILE" default:"newsletter.html" description:"Path of the archived HTML newsletter"`
	HistoryFile  string `long:"history-file" env:"HISTORY_FILE" default:"history.json" description:"History of delivered links (.json, or .db/.sqlite for SQLite)"`
	HistoryLimit int    `long:"history-limit" env:"HISTORY_LIMIT" default:"2000" description:"Number of links kept in history"`

	// Digest policy
	Title         string `long:"title" env:"NEWSLETTER_TITLE" default:"Daily Tech & AI Brief" description:"Newsletter title"`
	LookbackHours int    `long:"lookback-hours" env:"LOOKBACK_HOURS" default:"24" description:"Only include items published within this many hours"`
	MaxItems      int    `long:"max-items" env:"MAX_ITEMS" default:"12" description:"Maximum number of items in the newsletter"`
	Categorize    string `long:"categorize" env:"CATEGORIZE" default:"true" description:"Group items by the categories in the feeds file (true/false)"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"20" description:"Default per-feed fetch timeout in seconds"`

	// Email delivery
	EmailEnabled string `long:"email-enabled" env:"EMAIL_ENABLED" default:"true" description:"Send the newsletter by email when SMTP settings are present (true/false)"`
	SMTPHost     string `long:"smtp-host" env:"SMTP_HOST" description:"SMTP server host"`
	SMTPPort     int    `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP server port (465 for implicit TLS)"`
	SMTPUser     string `long:"smtp-user" env:"SMTP_USER" description:"SMTP user"`
	SMTPPass     string `long:"smtp-pass" env:"SMTP_PASS" description:"SMTP password"`
	EmailFrom    string `long:"email-from" env:"EMAIL_FROM" description:"Sender address (defaults to SMTP user)"`
	EmailTo      string `long:"email-to" env:"EMAIL_TO" description:"Recipient address (defaults to SMTP user)"`

	// Telegram delivery
	TelegramEnabled  string `long:"telegram-enabled" env:"TELEGRAM_ENABLED" default:"false" description:"Send the digest to Telegram (true/false)"`
	TelegramBotToken string `long:"telegram-bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token"`
	TelegramChatID   string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID"`
	TelegramAPIURL   string `long:"telegram-api-url" env:"TELEGRAM_API_URL" default:"https://api.telegram.org" description:"Telegram bot API base URL"`

	// Serve mode
	Port             string `long:"port" env:"PORT" description:"Serve the archive over HTTP on this port instead of running once"`
	ScheduleInterval int    `long:"schedule-interval" env:"SCHEDULE_INTERVAL" default:"0" description:"In serve mode, run every N seconds (0 disables periodic runs)"`
	APIAccessKey     string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the run endpoint (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Brief/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Paris)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help
// was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedsFile:        raw.FeedsFile,
		TemplateFile:     raw.TemplateFile,
		OutputFile:       raw.OutputFile,
		HistoryFile:      raw.HistoryFile,
		HistoryLimit:     raw.HistoryLimit,
		Title:            raw.Title,
		LookbackHours:    raw.LookbackHours,
		MaxItems:         raw.MaxItems,
		Categorize:       isTrue(raw.Categorize),
		FetchTimeout:     raw.FetchTimeout,
		EmailEnabled:     isTrue(raw.EmailEnabled),
		SMTPHost:         raw.SMTPHost,
		SMTPPort:         raw.SMTPPort,
		SMTPUser:         raw.SMTPUser,
		SMTPPass:         raw.SMTPPass,
		EmailFrom:        cmp.Or(raw.EmailFrom, raw.SMTPUser),
		EmailTo:          cmp.Or(raw.EmailTo, raw.SMTPUser),
		TelegramEnabled:  isTrue(raw.TelegramEnabled),
		TelegramBotToken: raw.TelegramBotToken,
		TelegramChatID:   raw.TelegramChatID,
		TelegramAPIURL:   raw.TelegramAPIURL,
		Port:             raw.Port,
		ScheduleInterval: raw.ScheduleInterval,
		APIAccessKey:     raw.APIAccessKey,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) validate() error {
	positiveFields := map[string]int{
		"lookback hours": c.LookbackHours,
		"max items":      c.MaxItems,
		"history limit":  c.HistoryLimit,
		"fetch timeout":  c.FetchTimeout,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.SMTPPort)
	}

	if c.ScheduleInterval < 0 {
		return fmt.Errorf("schedule interval must be non-negative")
	}

	return nil
}

// NewRunConfig resolves the template and feed categories into the value
// passed to every run. A missing template is fatal.
func NewRunConfig(c *Cfg, buckets []feed.Bucket) (*RunConfig, error) {
	template, err := os.ReadFile(c.TemplateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", c.TemplateFile, err)
	}

	bucketsCopy := make([]feed.Bucket, len(buckets))
	copy(bucketsCopy, buckets)

	return &RunConfig{
		Title:        c.Title,
		Lookback:     time.Duration(c.LookbackHours) * time.Hour,
		MaxItems:     c.MaxItems,
		Buckets:      bucketsCopy,
		Categorize:   c.Categorize && len(bucketsCopy) > 0,
		Template:     string(template),
		OutputPath:   c.OutputFile,
		HistoryPath:  c.HistoryFile,
		HistoryLimit: c.HistoryLimit,
		UserAgent:    c.UserAgent,
		FetchTimeout: time.Duration(c.FetchTimeout) * time.Second,
		EmailEnabled: c.EmailEnabled,
		Email: delivery.MailConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			User:     c.SMTPUser,
			Password: c.SMTPPass,
			From:     c.EmailFrom,
			To:       c.EmailTo,
		},
		TelegramEnabled: c.TelegramEnabled,
		Telegram: delivery.TelegramConfig{
			Token:  c.TelegramBotToken,
			ChatID: c.TelegramChatID,
			APIURL: c.TelegramAPIURL,
		},
	}, nil
}

func isTrue(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
