package render

import (
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/rss-brief/app/digest"
)

const testLayout = `<html><head><title>{{TITLE}}</title></head><body><h1>{{TITLE}}</h1><p>{{DATE}} · last {{LOOKBACK}}h · {{COUNT}} items</p>{{ITEMS}}</body></html>`

var testNow = time.Date(2025, 6, 1, 8, 30, 0, 0, time.Local)

func TestHTMLRendererPlaceholders(t *testing.T) {
	renderer := NewHTMLRenderer(testLayout, nil)
	items := []digest.Item{
		{Title: "First", Excerpt: "One.", Link: "https://a.example/1", Source: "A"},
		{Title: "Second", Excerpt: "Two.", Link: "https://a.example/2", Source: "B"},
	}

	html, err := renderer.Run(items, "Morning Brief", 24, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	checks := []string{
		"<title>Morning Brief</title>",
		"<p>2025-06-01 08:30 · last 24h · 2 items</p>",
		`<div class="item"><a class="title" href="https://a.example/1">First</a><p>One.</p><div class="source">A</div></div>`,
		`<div class="item"><a class="title" href="https://a.example/2">Second</a><p>Two.</p><div class="source">B</div></div>`,
	}
	for _, check := range checks {
		if !strings.Contains(html, check) {
			t.Errorf("Expected output to contain %q", check)
		}
	}
	if strings.Contains(html, "{{") {
		t.Error("Expected every placeholder to be substituted")
	}
	if strings.Index(html, "First") > strings.Index(html, "Second") {
		t.Error("Expected items in input order")
	}
}

func TestHTMLRendererEscapes(t *testing.T) {
	renderer := NewHTMLRenderer("{{TITLE}}|{{ITEMS}}", nil)
	items := []digest.Item{
		{Title: "Tom & Jerry <3", Excerpt: "a < b", Link: "https://a.example/?x=1&y=2", Source: "R&D"},
	}

	html, err := renderer.Run(items, "News & <Views>", 24, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.HasPrefix(html, "News &amp; &lt;Views&gt;|") {
		t.Errorf("Expected escaped title, got: %s", html)
	}
	for _, check := range []string{"Tom &amp; Jerry &lt;3", "a &lt; b", "x=1&amp;y=2", "R&amp;D"} {
		if !strings.Contains(html, check) {
			t.Errorf("Expected output to contain %q, got: %s", check, html)
		}
	}
}

func TestHTMLRendererMissingLink(t *testing.T) {
	renderer := NewHTMLRenderer("{{ITEMS}}", nil)

	html, err := renderer.Run([]digest.Item{{Title: "No link"}}, "t", 24, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(html, `href="#"`) {
		t.Errorf("Expected placeholder link, got: %s", html)
	}
}

func TestHTMLRendererEmpty(t *testing.T) {
	renderer := NewHTMLRenderer(testLayout, nil)

	html, err := renderer.Run(nil, "Brief", 12, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(html, "last 12h · 0 items</p></body>") {
		t.Errorf("Expected empty item list, got: %s", html)
	}
}

func TestHTMLRendererDeterministic(t *testing.T) {
	renderer := NewHTMLRenderer(testLayout, []string{"AI", "Other"})
	items := []digest.Item{
		{Title: "A", Link: "https://a.example/1", Category: "Other"},
		{Title: "B", Link: "https://a.example/2", Category: "AI"},
	}

	first, _ := renderer.Run(items, "Brief", 24, testNow)
	second, _ := renderer.Run(items, "Brief", 24, testNow)

	if first != second {
		t.Error("Expected identical output for identical input")
	}
}

func TestHTMLRendererGroupsByCategory(t *testing.T) {
	renderer := NewHTMLRenderer("{{ITEMS}}", []string{"AI", "Security", "Other"})
	items := []digest.Item{
		{Title: "misc-1", Link: "https://a.example/1", Category: "Other"},
		{Title: "ai-1", Link: "https://a.example/2", Category: "AI"},
		{Title: "misc-2", Link: "https://a.example/3", Category: "Other"},
		{Title: "ai-2", Link: "https://a.example/4", Category: "AI"},
	}

	html, err := renderer.Run(items, "t", 24, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	order := []string{
		`<h2 class="category">AI</h2>`, "ai-1", "ai-2",
		`<h2 class="category">Other</h2>`, "misc-1", "misc-2",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(html, marker)
		if idx < 0 {
			t.Fatalf("Expected output to contain %q, got: %s", marker, html)
		}
		if idx < last {
			t.Errorf("Expected %q after previous marker", marker)
		}
		last = idx
	}
	if strings.Contains(html, "Security") {
		t.Error("Expected empty categories to be omitted")
	}
}

func TestHTMLRendererUnlistedCategory(t *testing.T) {
	renderer := NewHTMLRenderer("{{ITEMS}}", []string{"AI"})
	items := []digest.Item{
		{Title: "x", Category: "Robots"},
		{Title: "y", Category: "AI"},
	}

	html, err := renderer.Run(items, "t", 24, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Index(html, ">AI</h2>") > strings.Index(html, ">Robots</h2>") {
		t.Errorf("Expected listed categories first, got: %s", html)
	}
}
