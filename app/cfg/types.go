package cfg

import (
	"time"

	"github.com/lysyi3m/rss-brief/app/delivery"
	"github.com/lysyi3m/rss-brief/app/feed"
)

type Cfg struct {
	// Inputs and outputs
	FeedsFile    string
	TemplateFile string
	OutputFile   string
	HistoryFile  string
	HistoryLimit int

	// Digest policy
	Title         string
	LookbackHours int
	MaxItems      int
	Categorize    bool
	FetchTimeout  int

	// Email delivery
	EmailEnabled bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	EmailFrom    string
	EmailTo      string

	// Telegram delivery
	TelegramEnabled  bool
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string

	// Serve mode
	Port             string
	ScheduleInterval int
	APIAccessKey     string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// RunConfig is everything one run needs. It is built once at startup and
// not modified afterwards.
type RunConfig struct {
	Title        string
	Lookback     time.Duration
	MaxItems     int
	Buckets      []feed.Bucket
	Categorize   bool
	Template     string
	OutputPath   string
	HistoryPath  string
	HistoryLimit int
	UserAgent    string
	FetchTimeout time.Duration

	EmailEnabled bool
	Email        delivery.MailConfig

	TelegramEnabled bool
	Telegram        delivery.TelegramConfig
}

func (rc *RunConfig) LookbackHours() int {
	return int(rc.Lookback / time.Hour)
}
