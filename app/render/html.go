package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/rss-brief/app/digest"
)

const (
	DateLayout = "2006-01-02 15:04"

	// Link used for items without one.
	missingLink = "#"
)

var itemTemplate = template.Must(template.New("item").Parse(
	`<div class="item"><a class="title" href="{{.Link}}">{{.Title}}</a><p>{{.Excerpt}}</p><div class="source">{{.Source}}</div></div>`,
))

var categoryTemplate = template.Must(template.New("category").Parse(
	`<h2 class="category">{{.}}</h2>`,
))

type HTMLRenderer struct {
	template      string
	categoryOrder []string
}

// NewHTMLRenderer returns a renderer for layout. categoryOrder sets the order
// of category groups; categories it does not list follow in order of first
// appearance.
func NewHTMLRenderer(layout string, categoryOrder []string) *HTMLRenderer {
	return &HTMLRenderer{
		template:      layout,
		categoryOrder: categoryOrder,
	}
}

// Run substitutes the {{TITLE}}, {{DATE}}, {{LOOKBACK}}, {{COUNT}} and
// {{ITEMS}} placeholders. The output depends only on its arguments.
func (r *HTMLRenderer) Run(items []digest.Item, title string, lookbackHours int, now time.Time) (string, error) {
	itemsHTML, err := r.renderItems(items)
	if err != nil {
		return "", err
	}

	replacer := strings.NewReplacer(
		"{{TITLE}}", template.HTMLEscapeString(title),
		"{{DATE}}", now.In(time.Local).Format(DateLayout),
		"{{LOOKBACK}}", strconv.Itoa(lookbackHours),
		"{{COUNT}}", strconv.Itoa(len(items)),
		"{{ITEMS}}", itemsHTML,
	)

	return replacer.Replace(r.template), nil
}

func (r *HTMLRenderer) renderItems(items []digest.Item) (string, error) {
	var buf bytes.Buffer

	if !hasCategories(items) {
		for _, item := range items {
			if err := r.writeItem(&buf, item); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	for _, group := range r.group(items) {
		if err := categoryTemplate.Execute(&buf, group.name); err != nil {
			return "", fmt.Errorf("failed to render category %s: %w", group.name, err)
		}
		buf.WriteByte('\n')
		for _, item := range group.items {
			if err := r.writeItem(&buf, item); err != nil {
				return "", err
			}
		}
	}

	return buf.String(), nil
}

func (r *HTMLRenderer) writeItem(buf *bytes.Buffer, item digest.Item) error {
	link := item.Link
	if link == "" {
		link = missingLink
	}

	data := struct {
		Link    string
		Title   string
		Excerpt string
		Source  string
	}{
		Link:    link,
		Title:   item.Title,
		Excerpt: item.Excerpt,
		Source:  item.Source,
	}

	if err := itemTemplate.Execute(buf, data); err != nil {
		return fmt.Errorf("failed to render item %s: %w", item.Link, err)
	}
	buf.WriteByte('\n')
	return nil
}

type categoryGroup struct {
	name  string
	items []digest.Item
}

func (r *HTMLRenderer) group(items []digest.Item) []categoryGroup {
	index := make(map[string]int)
	var groups []categoryGroup

	for _, name := range r.categoryOrder {
		if _, ok := index[name]; ok {
			continue
		}
		index[name] = len(groups)
		groups = append(groups, categoryGroup{name: name})
	}

	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, categoryGroup{name: item.Category})
		}
		groups[i].items = append(groups[i].items, item)
	}

	nonEmpty := groups[:0]
	for _, g := range groups {
		if len(g.items) > 0 {
			nonEmpty = append(nonEmpty, g)
		}
	}
	return nonEmpty
}

func hasCategories(items []digest.Item) bool {
	for _, item := range items {
		if item.Category != "" {
			return true
		}
	}
	return false
}
