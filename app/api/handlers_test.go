package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/rss-brief/app/delivery"
	"github.com/lysyi3m/rss-brief/app/digest"
	"github.com/lysyi3m/rss-brief/app/tasks"
)

type MockBrief struct {
	summary    *tasks.RunSummary
	outputPath string
}

func (m *MockBrief) LastSummary() *tasks.RunSummary {
	return m.summary
}

func (m *MockBrief) OutputPath() string {
	return m.outputPath
}

type MockScheduler struct {
	enqueued []tasks.TaskInterface
	err      error
}

func (m *MockScheduler) Start() {}
func (m *MockScheduler) Stop()  {}

func (m *MockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, task)
	return nil
}

func (m *MockScheduler) Trigger(trigger string) error {
	return m.EnqueueTask(tasks.NewRunBriefTask(trigger, nil))
}

func newTestHandler(brief *MockBrief, scheduler *MockScheduler) *Handler {
	return &Handler{
		brief:     brief,
		scheduler: scheduler,
		newTask: func(trigger string) tasks.TaskInterface {
			return tasks.NewRunBriefTask(trigger, nil)
		},
		sourceCount: 3,
	}
}

func serve(handler *Handler, apiKey string, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	NewServer(handler, apiKey).ServeHTTP(w, req)
	return w
}

func TestGetNewsletter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsletter.html")
	if err := os.WriteFile(path, []byte("<h1>Brief</h1>"), 0644); err != nil {
		t.Fatalf("Failed to write newsletter: %v", err)
	}
	handler := newTestHandler(&MockBrief{outputPath: path}, &MockScheduler{})

	w := serve(handler, "", httptest.NewRequest(http.MethodGet, "/newsletter", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected HTML content type, got: %s", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "<h1>Brief</h1>" {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestGetNewsletterMissing(t *testing.T) {
	handler := newTestHandler(&MockBrief{outputPath: filepath.Join(t.TempDir(), "none.html")}, &MockScheduler{})

	w := serve(handler, "", httptest.NewRequest(http.MethodGet, "/newsletter", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", w.Code)
	}
}

func TestGetHealth(t *testing.T) {
	summary := &tasks.RunSummary{
		StartedAt: time.Now(),
		Items:     5,
		Sources: []digest.SourceOutcome{
			{Name: "a"},
			{Name: "b", Err: errors.New("boom")},
		},
	}
	handler := newTestHandler(&MockBrief{summary: summary}, &MockScheduler{})

	w := serve(handler, "", httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["sources"] != float64(3) {
		t.Errorf("Expected 3 sources, got: %v", body["sources"])
	}
	lastRun, ok := body["last_run"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected last_run object, got: %v", body["last_run"])
	}
	if lastRun["items"] != float64(5) || lastRun["failed_sources"] != float64(1) {
		t.Errorf("Unexpected last run: %v", lastRun)
	}
}

func TestAPIRequiresKey(t *testing.T) {
	scheduler := &MockScheduler{}
	handler := newTestHandler(&MockBrief{}, scheduler)

	tests := []struct {
		name     string
		header   string
		value    string
		expected int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"header key", "X-API-Key", "secret", http.StatusAccepted},
		{"bearer key", "Authorization", "Bearer secret", http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			w := serve(handler, "secret", req)

			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got: %d", tt.expected, w.Code)
			}
		})
	}

	if len(scheduler.enqueued) != 2 {
		t.Errorf("Expected 2 enqueued runs, got: %d", len(scheduler.enqueued))
	}
	if scheduler.enqueued[0].GetTrigger() != tasks.TriggerAPI {
		t.Errorf("Expected api trigger, got: %s", scheduler.enqueued[0].GetTrigger())
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	handler := newTestHandler(&MockBrief{}, &MockScheduler{})

	w := serve(handler, "", httptest.NewRequest(http.MethodPost, "/api/run", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", w.Code)
	}
}

func TestAPITriggerRunQueueFull(t *testing.T) {
	handler := newTestHandler(&MockBrief{}, &MockScheduler{err: errors.New("task queue is full")})

	req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
	req.Header.Set("X-API-Key", "secret")
	w := serve(handler, "secret", req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got: %d", w.Code)
	}
}

func TestAPIGetLastRun(t *testing.T) {
	summary := &tasks.RunSummary{
		Items: 2,
		Sources: []digest.SourceOutcome{
			{Name: "a", URL: "https://a.example/feed", Fetched: 4, Kept: 2},
		},
		Deliveries: []delivery.Outcome{
			{Channel: delivery.ChannelTelegram, Err: &delivery.APIError{Code: 400, Description: "Bad Request: chat not found"}},
			delivery.Skip(delivery.ChannelEmail, "disabled"),
		},
	}
	handler := newTestHandler(&MockBrief{summary: summary}, &MockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/runs/last", nil)
	req.Header.Set("X-API-Key", "secret")
	w := serve(handler, "secret", req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var status runStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if status.Items != 2 || len(status.Sources) != 1 || status.Sources[0].Kept != 2 {
		t.Errorf("Unexpected status: %+v", status)
	}
	if len(status.Deliveries) != 2 || status.Deliveries[0].Kind != "api" || !status.Deliveries[1].Skipped {
		t.Errorf("Unexpected deliveries: %+v", status.Deliveries)
	}
}

func TestAPIGetLastRunBeforeFirstRun(t *testing.T) {
	handler := newTestHandler(&MockBrief{}, &MockScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/runs/last", nil)
	req.Header.Set("X-API-Key", "secret")
	w := serve(handler, "secret", req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", w.Code)
	}
}

func TestRootEndpoint(t *testing.T) {
	handler := newTestHandler(&MockBrief{}, &MockScheduler{})

	w := serve(handler, "", httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"service":"RSS Brief"`) {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(&MockBrief{}, &MockScheduler{})

	w := serve(handler, "secret", httptest.NewRequest(http.MethodOptions, "/api/run", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got: %d", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Expected allow-origin '*', got: %s", origin)
	}
	if headers := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(headers, "X-API-Key") {
		t.Errorf("Expected X-API-Key in allowed headers, got: %s", headers)
	}
}

func TestFavicon(t *testing.T) {
	handler := newTestHandler(&MockBrief{}, &MockScheduler{})

	w := serve(handler, "", httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got: %d", w.Code)
	}
}
