package feed

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	DefaultExcerptSentences = 2
	ExcerptFallbackLength   = 240

	// Each pass decodes one layer of entities, so double-escaped markup
	// needs a second pass to come out tag-free.
	maxStripPasses = 8
)

// Elements whose text content is not part of the readable body.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Elements that separate words visually; a space is emitted in their place.
var breakTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "img": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// StripMarkup returns the human-readable text of raw with all tags removed,
// entities decoded and whitespace collapsed. Malformed markup is handled by
// the tokenizer's error recovery and never causes a failure.
//
// Contents of script and style elements are dropped on the first pass only.
// Later passes see text decoded from entities, so a literal "<script>" there
// loses its tag but keeps the words that follow it.
func StripMarkup(raw string) string {
	text := stripOnce(raw, true)
	for i := 0; i < maxStripPasses; i++ {
		next := stripOnce(text, false)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func stripOnce(raw string, skipContents bool) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	depthSkip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipContents && tt == html.StartTagToken && skipTags[tag] {
				depthSkip++
			}
			if breakTags[tag] {
				b.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] && depthSkip > 0 {
				depthSkip--
			}
			if breakTags[tag] {
				b.WriteByte(' ')
			}

		case html.TextToken:
			if depthSkip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// LeadingExcerpt returns the first maxSentences sentences of text. A
// sentence ends at '.', '!' or '?'; there is no abbreviation handling, so
// "Mr." ends a sentence. Text without any terminator is cut to its first
// ExcerptFallbackLength characters.
func LeadingExcerpt(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultExcerptSentences
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var parts []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		parts = append(parts, strings.TrimSpace(text[start:i+1]))
		start = i + 1
		if len(parts) >= maxSentences {
			break
		}
	}

	if len(parts) == 0 {
		return strings.TrimSpace(truncateRunes(text, ExcerptFallbackLength))
	}

	return strings.Join(parts, " ")
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
