package feed

import (
	"strings"

	"golang.org/x/text/cases"
)

// OtherBucket collects items that match no configured keyword.
const OtherBucket = "Other"

type Categorizer struct {
	buckets []foldedBucket
}

type foldedBucket struct {
	name     string
	keywords []string
}

func NewCategorizer(buckets []Bucket) *Categorizer {
	fold := cases.Fold()

	folded := make([]foldedBucket, 0, len(buckets))
	for _, bucket := range buckets {
		fb := foldedBucket{name: bucket.Name}
		for _, keyword := range bucket.Keywords {
			if keyword == "" {
				continue
			}
			fb.keywords = append(fb.keywords, fold.String(keyword))
		}
		folded = append(folded, fb)
	}

	return &Categorizer{buckets: folded}
}

// Run returns the name of the first bucket, in configured order, with a
// keyword contained in title or excerpt. Matching is case-insensitive.
func (c *Categorizer) Run(title, excerpt string) string {
	value := cases.Fold().String(title + " " + excerpt)

	for _, bucket := range c.buckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(value, keyword) {
				return bucket.name
			}
		}
	}

	return OtherBucket
}

// Names returns bucket names in configured order followed by OtherBucket.
func (c *Categorizer) Names() []string {
	names := make([]string, 0, len(c.buckets)+1)
	for _, bucket := range c.buckets {
		names = append(names, bucket.name)
	}
	return append(names, OtherBucket)
}
