package digest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/rss-brief/app/cfg"
	"github.com/lysyi3m/rss-brief/app/feed"
	"github.com/lysyi3m/rss-brief/app/history"
)

const (
	feedBurnerSource = "FeedBurner"
	maxErrorLength   = 300
)

type EntryFetcher interface {
	Fetch(ctx context.Context, src feed.Source) ([]feed.Entry, error)
}

type ArticleFetcher interface {
	FetchArticle(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

type TextExtractor interface {
	Run(data []byte, pageURL string) (string, error)
}

var (
	_ EntryFetcher   = (*feed.Fetcher)(nil)
	_ ArticleFetcher = (*feed.Fetcher)(nil)
	_ TextExtractor  = (*feed.ContentExtractor)(nil)
)

type Aggregator struct {
	fetcher   EntryFetcher
	articles  ArticleFetcher
	extractor TextExtractor

	// Now is the clock used for the lookback window.
	Now func() time.Time
}

func NewAggregator(fetcher EntryFetcher) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		Now:     time.Now,
	}
}

// WithContentExtraction enables article extraction for sources that ask for
// it with extract_content.
func (a *Aggregator) WithContentExtraction(articles ArticleFetcher, extractor TextExtractor) *Aggregator {
	a.articles = articles
	a.extractor = extractor
	return a
}

type candidate struct {
	item   Item
	source int
}

// Run fetches every source in order and returns at most rc.MaxItems recent
// items, none of which is in seen or repeated within the run. A source that
// fails is logged and skipped. seen is not modified.
func (a *Aggregator) Run(ctx context.Context, sources []feed.Source, rc *cfg.RunConfig, seen *history.Seen) Result {
	cutoff := a.Now().Add(-rc.Lookback)
	outcomes := make([]SourceOutcome, len(sources))

	var candidates []candidate
	for i, src := range sources {
		outcomes[i] = SourceOutcome{Name: src.Name, URL: src.URL}

		if src.Timeout <= 0 {
			src.Timeout = int(rc.FetchTimeout / time.Second)
		}

		entries, err := a.fetcher.Fetch(ctx, src)
		if err != nil {
			slog.Warn("Feed fetch failed", "feed", src.Name, "url", src.URL, "error", truncateError(err))
			outcomes[i].Err = err
			continue
		}
		outcomes[i].Fetched = len(entries)

		kept := 0
		for _, entry := range entries {
			if entry.PublishedAt != nil && entry.PublishedAt.Before(cutoff) {
				continue
			}
			candidates = append(candidates, candidate{item: normalize(entry, src.Name), source: i})
			kept++
		}

		slog.Debug("Feed fetched", "feed", src.Name, "entries", len(entries), "recent", kept)
	}

	known := seen.Clone()
	unique := candidates[:0]
	for _, c := range candidates {
		if c.item.ID != "" {
			if known.Has(c.item.ID) {
				continue
			}
			known.Add(c.item.ID)
		}
		unique = append(unique, c)
	}

	if len(unique) > rc.MaxItems {
		unique = unique[:rc.MaxItems]
	}

	if a.articles != nil && a.extractor != nil {
		for i := range unique {
			if unique[i].item.Excerpt != "" || !sources[unique[i].source].ExtractContent {
				continue
			}
			unique[i].item.Excerpt = a.extractExcerpt(ctx, unique[i].item, sources[unique[i].source], rc)
		}
	}

	var categorizer *feed.Categorizer
	if rc.Categorize && len(rc.Buckets) > 0 {
		categorizer = feed.NewCategorizer(rc.Buckets)
	}

	result := Result{
		Items:   make([]Item, 0, len(unique)),
		NewIDs:  make([]string, 0, len(unique)),
		Sources: outcomes,
	}
	for _, c := range unique {
		item := c.item
		if categorizer != nil {
			item.Category = categorizer.Run(item.Title, item.Excerpt)
		}
		if item.ID != "" {
			result.NewIDs = append(result.NewIDs, item.ID)
		}
		outcomes[c.source].Kept++
		result.Items = append(result.Items, item)
	}

	return result
}

func (a *Aggregator) extractExcerpt(ctx context.Context, item Item, src feed.Source, rc *cfg.RunConfig) string {
	if item.Link == "" {
		return ""
	}

	timeout := time.Duration(src.Timeout) * time.Second
	if timeout <= 0 {
		timeout = rc.FetchTimeout
	}

	data, err := a.articles.FetchArticle(ctx, item.Link, timeout)
	if err != nil {
		slog.Debug("Article fetch failed", "feed", src.Name, "link", item.Link, "error", err)
		return ""
	}

	text, err := a.extractor.Run(data, item.Link)
	if err != nil {
		slog.Debug("Content extraction failed", "feed", src.Name, "link", item.Link, "error", err)
		return ""
	}

	return feed.LeadingExcerpt(feed.StripMarkup(text), feed.DefaultExcerptSentences)
}

func normalize(entry feed.Entry, feedName string) Item {
	title := feed.StripMarkup(entry.Title)
	if title == "" {
		title = UntitledItem
	}

	link := strings.TrimSpace(entry.Link)

	return Item{
		ID:          link,
		Title:       title,
		Excerpt:     feed.LeadingExcerpt(feed.StripMarkup(entry.Summary), feed.DefaultExcerptSentences),
		Link:        link,
		Source:      sourceLabel(entry),
		PublishedAt: entry.PublishedAt,
		FeedName:    feedName,
	}
}

func sourceLabel(entry feed.Entry) string {
	if name := strings.TrimSpace(entry.SourceName); name != "" {
		return name
	}
	if author := strings.TrimSpace(entry.Author); author != "" {
		return author
	}
	if entry.FeedBurner {
		return feedBurnerSource
	}
	return ""
}

func truncateError(err error) string {
	msg := err.Error()
	count := 0
	for i := range msg {
		if count == maxErrorLength {
			return msg[:i]
		}
		count++
	}
	return msg
}
