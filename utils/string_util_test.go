package utils_test

import (
	"testing"

	"github.com/backflowdir/discovery/utils"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple city", input: "Tampa", expected: "tampa"},
		{name: "two words", input: "St. Petersburg", expected: "st-petersburg"},
		{name: "leading and trailing junk", input: "  Coeur d'Alene! ", expected: "coeur-d-alene"},
		{name: "already a slug", input: "miami-fl", expected: "miami-fl"},
		{name: "empty", input: "", expected: ""},
		{name: "only punctuation", input: "---", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := utils.Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeStateCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fl", "FL"},
		{" ny ", "NY"},
		{"FLA", ""},
		{"f1", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := utils.NormalizeStateCode(tt.input); got != tt.expected {
			t.Errorf("NormalizeStateCode(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
