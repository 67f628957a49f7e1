package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-brief/app/tasks"
)

func NewHandler(brief *tasks.Brief, scheduler tasks.TaskSchedulerInterface, sourceCount int) *Handler {
	return &Handler{
		brief:     brief,
		scheduler: scheduler,
		newTask: func(trigger string) tasks.TaskInterface {
			return tasks.NewRunBriefTask(trigger, brief)
		},
		sourceCount: sourceCount,
	}
}

func (h *Handler) GetNewsletter(c *gin.Context) {
	path := h.brief.OutputPath()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		c.String(http.StatusNotFound, "No newsletter generated yet")
		return
	}
	if err != nil {
		slog.Error("Failed to read newsletter", "path", path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   h.sourceCount,
	}

	if summary := h.brief.LastSummary(); summary != nil {
		health["last_run"] = map[string]interface{}{
			"started_at":        summary.StartedAt.In(time.Local).Format(time.RFC3339),
			"items":             summary.Items,
			"failed_sources":    summary.FailedSources(),
			"failed_deliveries": summary.FailedDeliveries(),
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIGetLastRun(c *gin.Context) {
	summary := h.brief.LastSummary()
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No run completed yet"})
		return
	}

	c.JSON(http.StatusOK, newRunStatus(summary))
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	task := h.newTask(tasks.TriggerAPI)

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing run task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue run task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Run enqueued",
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}
