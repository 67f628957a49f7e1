package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultSourceTimeout = 20 // seconds

type SourceLoader struct {
	path           string
	defaultTimeout int
}

func NewSourceLoader(path string, defaultTimeout int) *SourceLoader {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultSourceTimeout
	}
	return &SourceLoader{
		path:           path,
		defaultTimeout: defaultTimeout,
	}
}

// Run reads the feeds file. A missing or invalid file is an error: without
// sources no digest can be produced.
func (l *SourceLoader) Run() (*SourcesFile, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	sources, err := l.parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid feeds file %s: %w", l.path, err)
	}

	slog.Debug("Feeds file loaded", "path", l.path, "feeds", len(sources.Feeds), "categories", len(sources.Categories))

	return sources, nil
}

func (l *SourceLoader) parse(data []byte) (*SourcesFile, error) {
	var sources SourcesFile
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range sources.Feeds {
		src := &sources.Feeds[i]
		src.URL = strings.TrimSpace(src.URL)
		if src.Name == "" {
			src.Name = deriveSourceName(src.URL)
		}
		if src.Timeout == 0 {
			src.Timeout = l.defaultTimeout
		}
	}

	if err := l.validate(&sources); err != nil {
		return nil, err
	}

	return &sources, nil
}

func (l *SourceLoader) validate(sources *SourcesFile) error {
	if len(sources.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}

	for i, src := range sources.Feeds {
		if src.URL == "" {
			return fmt.Errorf("feed URL is required at index %d", i)
		}
		if src.Timeout < 0 {
			return fmt.Errorf("timeout must be non-negative at index %d", i)
		}
	}

	names := make(map[string]bool, len(sources.Categories))
	for i, bucket := range sources.Categories {
		if strings.TrimSpace(bucket.Name) == "" {
			return fmt.Errorf("category name is required at index %d", i)
		}
		if strings.EqualFold(bucket.Name, OtherBucket) {
			return fmt.Errorf("category name %q is reserved", OtherBucket)
		}
		if names[bucket.Name] {
			return fmt.Errorf("duplicate category name: %s", bucket.Name)
		}
		names[bucket.Name] = true
		if len(bucket.Keywords) == 0 {
			return fmt.Errorf("category %s must have at least one keyword", bucket.Name)
		}
	}

	return nil
}

// UnmarshalYAML accepts both a bare URL string and a mapping.
func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.URL = node.Value
		return nil
	}

	type plain Source
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Source(p)
	return nil
}

func deriveSourceName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
