package api

import (
	"time"

	"github.com/lysyi3m/rss-brief/app/tasks"
)

type BriefInterface interface {
	LastSummary() *tasks.RunSummary
	OutputPath() string
}

var _ BriefInterface = (*tasks.Brief)(nil)

type Handler struct {
	brief       BriefInterface
	scheduler   tasks.TaskSchedulerInterface
	newTask     func(trigger string) tasks.TaskInterface
	sourceCount int
}

type sourceStatus struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Fetched int    `json:"fetched"`
	Kept    int    `json:"kept"`
	Error   string `json:"error,omitempty"`
}

type deliveryStatus struct {
	Channel string `json:"channel"`
	Sent    bool   `json:"sent"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
}

type runStatus struct {
	StartedAt  time.Time        `json:"started_at"`
	Duration   string           `json:"duration"`
	Items      int              `json:"items"`
	NewIDs     int              `json:"new_ids"`
	OutputPath string           `json:"output_path"`
	Sources    []sourceStatus   `json:"sources"`
	Deliveries []deliveryStatus `json:"deliveries"`
}

func newRunStatus(summary *tasks.RunSummary) runStatus {
	status := runStatus{
		StartedAt:  summary.StartedAt,
		Duration:   summary.Duration.String(),
		Items:      summary.Items,
		NewIDs:     summary.NewIDs,
		OutputPath: summary.OutputPath,
		Sources:    make([]sourceStatus, 0, len(summary.Sources)),
		Deliveries: make([]deliveryStatus, 0, len(summary.Deliveries)),
	}

	for _, source := range summary.Sources {
		s := sourceStatus{Name: source.Name, URL: source.URL, Fetched: source.Fetched, Kept: source.Kept}
		if source.Err != nil {
			s.Error = source.Err.Error()
		}
		status.Sources = append(status.Sources, s)
	}

	for _, outcome := range summary.Deliveries {
		d := deliveryStatus{
			Channel: string(outcome.Channel),
			Sent:    outcome.Sent,
			Skipped: outcome.Skipped,
			Reason:  outcome.Reason,
			Kind:    outcome.Kind(),
		}
		if outcome.Err != nil {
			d.Error = outcome.Err.Error()
		}
		status.Deliveries = append(status.Deliveries, d)
	}

	return status
}
