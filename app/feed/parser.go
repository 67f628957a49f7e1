package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

const customSourceKey = "source"

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	p := gofeed.NewParser()
	p.RSSTranslator = &sourceTranslator{}
	return &Parser{
		gofeedParser: p,
	}
}

func (p *Parser) Run(data []byte) ([]Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item))
	}

	return entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		Title:       item.Title,
		Summary:     item.Description,
		Link:        strings.TrimSpace(item.Link),
		PublishedAt: item.PublishedParsed,
		SourceName:  item.Custom[customSourceKey],
		Author:      p.extractAuthor(item),
	}

	if entry.Summary == "" {
		entry.Summary = item.Content
	}

	if entry.Link == "" && len(item.Links) > 0 {
		entry.Link = strings.TrimSpace(item.Links[0])
	}

	if entry.PublishedAt == nil && item.UpdatedParsed != nil {
		entry.PublishedAt = item.UpdatedParsed
	}

	if fb, ok := item.Extensions["feedburner"]; ok && len(fb["origLink"]) > 0 {
		entry.FeedBurner = true
	}

	return entry
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author == nil {
			continue
		}
		if name := strings.TrimSpace(author.Name); name != "" {
			return name
		}
	}

	if item.Author != nil {
		if name := strings.TrimSpace(item.Author.Name); name != "" {
			return name
		}
		return strings.TrimSpace(item.Author.Email)
	}

	return ""
}

// sourceTranslator keeps the RSS <source> element, which the default
// translator discards, in the item's Custom map.
type sourceTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *sourceTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	translated, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}

	rssFeed, ok := feed.(*rss.Feed)
	if !ok || len(rssFeed.Items) != len(translated.Items) {
		return translated, nil
	}

	for i, item := range rssFeed.Items {
		if item == nil || item.Source == nil || translated.Items[i] == nil {
			continue
		}
		title := strings.TrimSpace(item.Source.Title)
		if title == "" {
			continue
		}
		if translated.Items[i].Custom == nil {
			translated.Items[i].Custom = make(map[string]string)
		}
		translated.Items[i].Custom[customSourceKey] = title
	}

	return translated, nil
}
