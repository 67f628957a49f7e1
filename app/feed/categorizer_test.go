package feed

import (
	"testing"
)

func TestCategorizer_FirstMatchingBucketWins(t *testing.T) {
	categorizer := NewCategorizer([]Bucket{
		{Name: "AI", Keywords: []string{"LLM", "machine learning"}},
		{Name: "Go", Keywords: []string{"golang", "llm"}},
	})

	tests := []struct {
		title    string
		excerpt  string
		expected string
	}{
		{"New LLM released", "", "AI"},
		{"Golang 1.24", "Faster maps.", "Go"},
		{"Weekly notes", "Training an llm in golang", "AI"},
		{"Intro to MACHINE LEARNING", "", "AI"},
		{"Weather report", "Sunny all week.", OtherBucket},
		{"", "", OtherBucket},
	}

	for _, tt := range tests {
		result := categorizer.Run(tt.title, tt.excerpt)
		if result != tt.expected {
			t.Errorf("Run(%q, %q): expected %q, got: %q", tt.title, tt.excerpt, tt.expected, result)
		}
	}
}

func TestCategorizer_MatchesAcrossTitleAndExcerpt(t *testing.T) {
	categorizer := NewCategorizer([]Bucket{
		{Name: "Security", Keywords: []string{"zero-day"}},
	})

	if result := categorizer.Run("Patch now", "A zero-day was found."); result != "Security" {
		t.Errorf("Expected excerpt keyword to match, got: %q", result)
	}
}

func TestCategorizer_UnicodeFolding(t *testing.T) {
	categorizer := NewCategorizer([]Bucket{
		{Name: "Education", Keywords: []string{"école"}},
	})

	if result := categorizer.Run("L'ÉCOLE rouvre", ""); result != "Education" {
		t.Errorf("Expected case-folded match, got: %q", result)
	}
}

func TestCategorizer_NoBuckets(t *testing.T) {
	categorizer := NewCategorizer(nil)

	if result := categorizer.Run("Anything", "at all"); result != OtherBucket {
		t.Errorf("Expected %q, got: %q", OtherBucket, result)
	}

	names := categorizer.Names()
	if len(names) != 1 || names[0] != OtherBucket {
		t.Errorf("Expected only %q, got: %v", OtherBucket, names)
	}
}

func TestCategorizer_Names(t *testing.T) {
	categorizer := NewCategorizer([]Bucket{
		{Name: "AI", Keywords: []string{"ai"}},
		{Name: "Go", Keywords: []string{"go"}},
	})

	names := categorizer.Names()
	expected := []string{"AI", "Go", OtherBucket}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d names, got: %d", len(expected), len(names))
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected name %d to be %q, got: %q", i, expected[i], names[i])
		}
	}
}
