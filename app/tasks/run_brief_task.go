package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type RunBriefTask struct {
	Task
	brief *Brief
}

func NewRunBriefTask(trigger string, brief *Brief) *RunBriefTask {
	return &RunBriefTask{
		Task:  NewTask(TaskTypeRunBrief, trigger),
		brief: brief,
	}
}

func (t *RunBriefTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary, err := t.brief.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run brief: %w", err)
	}

	slog.Info("Task completed",
		"type", "RunBrief",
		"trigger", t.Trigger,
		"duration", t.GetDuration(),
		"sources", len(summary.Sources),
		"failed_sources", summary.FailedSources(),
		"items", summary.Items,
		"new", summary.NewIDs,
		"failed_deliveries", summary.FailedDeliveries())

	return nil
}

// RunOnce executes a single brief run outside the scheduler.
func RunOnce(ctx context.Context, brief *Brief) error {
	task := NewRunBriefTask(TriggerStartup, brief)
	task.Start()
	return task.Execute(ctx)
}
