package feed

import (
	"time"
)

// Feed processing types

// Entry is a single raw entry as returned by a feed, before normalization.
type Entry struct {
	Title       string
	Summary     string // markup-bearing description or content
	Link        string
	PublishedAt *time.Time
	SourceName  string // feed-declared <source> title
	Author      string
	FeedBurner  bool // item carries a feedburner:origLink extension
}

// Configuration types

type Source struct {
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	Timeout        int    `yaml:"timeout"`         // seconds
	ExtractContent bool   `yaml:"extract_content"` // enable content extraction for summary-less entries
}

type Bucket struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type SourcesFile struct {
	Feeds      []Source `yaml:"feeds"`
	Categories []Bucket `yaml:"categories"`
}
