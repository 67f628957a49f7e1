package digest

import (
	"time"
)

// UntitledItem is the title given to entries whose title is empty once
// markup is removed.
const UntitledItem = "(untitled)"

// Item is one normalized entry of the brief.
type Item struct {
	ID          string // trimmed link, empty when the entry has none
	Title       string
	Excerpt     string
	Link        string
	Source      string
	PublishedAt *time.Time
	Category    string
	FeedName    string
}

// SourceOutcome records what happened to one configured source during a run.
type SourceOutcome struct {
	Name    string
	URL     string
	Fetched int
	Kept    int
	Err     error
}

func (o SourceOutcome) Failed() bool {
	return o.Err != nil
}

type Result struct {
	Items   []Item
	NewIDs  []string
	Sources []SourceOutcome
}

// FailedSources returns the number of sources that could not be fetched or parsed.
func (r Result) FailedSources() int {
	failed := 0
	for _, outcome := range r.Sources {
		if outcome.Failed() {
			failed++
		}
	}
	return failed
}
