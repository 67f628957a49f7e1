package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rss-brief/app/cfg"
	"github.com/lysyi3m/rss-brief/app/delivery"
	"github.com/lysyi3m/rss-brief/app/feed"
	"github.com/lysyi3m/rss-brief/app/history"
	"github.com/lysyi3m/rss-brief/app/render"
)

// Brief holds everything needed to produce and deliver one newsletter.
// Runs are not safe to execute concurrently; the scheduler serializes them.
type Brief struct {
	rc         *cfg.RunConfig
	sources    []feed.Source
	store      history.Store
	aggregator Aggregator
	html       *render.HTMLRenderer
	text       *render.TextRenderer
	mailer     MailSender
	notifier   ChatSender

	// Now is the clock used for the generation timestamp.
	Now func() time.Time

	mu   sync.RWMutex
	last *RunSummary
}

func NewBrief(rc *cfg.RunConfig, sources []feed.Source, store history.Store, aggregator Aggregator, mailer MailSender, notifier ChatSender) *Brief {
	var categoryOrder []string
	if rc.Categorize {
		categoryOrder = feed.NewCategorizer(rc.Buckets).Names()
	}

	return &Brief{
		rc:         rc,
		sources:    sources,
		store:      store,
		aggregator: aggregator,
		html:       render.NewHTMLRenderer(rc.Template, categoryOrder),
		text:       render.NewTextRenderer(),
		mailer:     mailer,
		notifier:   notifier,
		Now:        time.Now,
	}
}

// Run performs one full pass: load history, aggregate, render and archive,
// deliver, then persist history. Source and delivery failures are recorded
// in the summary; any other failure aborts the run before history is saved.
func (b *Brief) Run(ctx context.Context) (*RunSummary, error) {
	startedAt := b.Now()

	seen, err := b.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	result := b.aggregator.Run(ctx, b.sources, b.rc, seen)

	html, err := b.html.Run(result.Items, b.rc.Title, b.rc.LookbackHours(), startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to render newsletter: %w", err)
	}

	if err := history.WriteFileAtomic(b.rc.OutputPath, []byte(html)); err != nil {
		return nil, fmt.Errorf("failed to write newsletter: %w", err)
	}
	slog.Info("Newsletter generated", "path", b.rc.OutputPath, "items", len(result.Items))

	text := b.text.Run(result.Items, b.rc.Title)

	deliveries := []delivery.Outcome{
		b.sendEmail(ctx, html),
		b.sendTelegram(ctx, text),
	}

	merged := seen.Clone()
	for _, id := range result.NewIDs {
		merged.Add(id)
	}
	if err := b.store.Save(ctx, merged.IDs(), b.rc.HistoryLimit); err != nil {
		return nil, fmt.Errorf("failed to save history: %w", err)
	}

	summary := &RunSummary{
		StartedAt:  startedAt,
		Duration:   b.Now().Sub(startedAt),
		Items:      len(result.Items),
		NewIDs:     len(result.NewIDs),
		OutputPath: b.rc.OutputPath,
		Sources:    result.Sources,
		Deliveries: deliveries,
	}

	b.mu.Lock()
	b.last = summary
	b.mu.Unlock()

	return summary, nil
}

// LastSummary returns the summary of the most recent successful run, or nil.
func (b *Brief) LastSummary() *RunSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

func (b *Brief) OutputPath() string {
	return b.rc.OutputPath
}

func (b *Brief) sendEmail(ctx context.Context, html string) delivery.Outcome {
	switch {
	case !b.rc.EmailEnabled:
		return b.logOutcome(delivery.Skip(delivery.ChannelEmail, "disabled"))
	case !b.rc.Email.Ready() || b.mailer == nil:
		return b.logOutcome(delivery.Skip(delivery.ChannelEmail, "missing SMTP settings"))
	}

	return b.logOutcome(delivery.Attempt(delivery.ChannelEmail, func() error {
		return b.mailer.Send(ctx, b.rc.Title, html)
	}))
}

func (b *Brief) sendTelegram(ctx context.Context, text string) delivery.Outcome {
	switch {
	case !b.rc.TelegramEnabled:
		return b.logOutcome(delivery.Skip(delivery.ChannelTelegram, "disabled"))
	case !b.rc.Telegram.Ready() || b.notifier == nil:
		return b.logOutcome(delivery.Skip(delivery.ChannelTelegram, "missing bot token or chat ID"))
	}

	slog.Debug("Sending Telegram message", "chat_id", b.rc.Telegram.ChatID, "token", delivery.MaskToken(b.rc.Telegram.Token))

	return b.logOutcome(delivery.Attempt(delivery.ChannelTelegram, func() error {
		return b.notifier.Send(ctx, text)
	}))
}

func (b *Brief) logOutcome(outcome delivery.Outcome) delivery.Outcome {
	switch {
	case outcome.Err != nil:
		slog.Error("Delivery failed", "channel", string(outcome.Channel), "kind", outcome.Kind(), "error", outcome.Err)
	case outcome.Skipped:
		slog.Info("Delivery skipped", "channel", string(outcome.Channel), "reason", outcome.Reason)
	default:
		slog.Info("Delivery sent", "channel", string(outcome.Channel))
	}
	return outcome
}
