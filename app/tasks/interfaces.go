package tasks

import (
	"context"

	"github.com/lysyi3m/rss-brief/app/cfg"
	"github.com/lysyi3m/rss-brief/app/delivery"
	"github.com/lysyi3m/rss-brief/app/digest"
	"github.com/lysyi3m/rss-brief/app/feed"
	"github.com/lysyi3m/rss-brief/app/history"
)

// TaskSchedulerInterface is what the HTTP API needs from the scheduler.
//
//	scheduler := NewScheduler(brief, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Trigger(TriggerAPI)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Trigger(trigger string) error
}

type Aggregator interface {
	Run(ctx context.Context, sources []feed.Source, rc *cfg.RunConfig, seen *history.Seen) digest.Result
}

type MailSender interface {
	Send(ctx context.Context, subject, htmlBody string) error
}

type ChatSender interface {
	Send(ctx context.Context, text string) error
}

var (
	_ Aggregator = (*digest.Aggregator)(nil)
	_ MailSender = (*delivery.Mailer)(nil)
	_ ChatSender = (*delivery.TelegramNotifier)(nil)
)
