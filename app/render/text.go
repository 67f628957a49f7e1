package render

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/rss-brief/app/digest"
)

type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Run returns a markup-free digest: a header line, then one bullet with the
// title and the link on the next line per item, separated by blank lines.
func (r *TextRenderer) Run(items []digest.Item, title string) string {
	blocks := make([]string, 0, len(items)+1)
	blocks = append(blocks, fmt.Sprintf("%s — %d items", title, len(items)))

	for _, item := range items {
		blocks = append(blocks, fmt.Sprintf("• %s\n%s", item.Title, item.Link))
	}

	return strings.Join(blocks, "\n\n")
}
