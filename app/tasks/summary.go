package tasks

import (
	"time"

	"github.com/lysyi3m/rss-brief/app/delivery"
	"github.com/lysyi3m/rss-brief/app/digest"
)

// RunSummary describes one completed run.
type RunSummary struct {
	StartedAt  time.Time
	Duration   time.Duration
	Items      int
	NewIDs     int
	OutputPath string
	Sources    []digest.SourceOutcome
	Deliveries []delivery.Outcome
}

func (s *RunSummary) FailedSources() int {
	return digest.Result{Sources: s.Sources}.FailedSources()
}

func (s *RunSummary) FailedDeliveries() int {
	failed := 0
	for _, outcome := range s.Deliveries {
		if outcome.Err != nil {
			failed++
		}
	}
	return failed
}

// Delivery returns the outcome recorded for channel.
func (s *RunSummary) Delivery(channel delivery.Channel) (delivery.Outcome, bool) {
	for _, outcome := range s.Deliveries {
		if outcome.Channel == channel {
			return outcome, true
		}
	}
	return delivery.Outcome{}, false
}
