package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "lowercase and trim",
			raw:      "  BBC One  ",
			expected: "bbc one",
		},
		{
			name:     "strips quality tokens",
			raw:      "BBC One HD",
			expected: "bbc one",
		},
		{
			name:     "strips multiple quality tokens",
			raw:      "4K Cinema UHD",
			expected: "cinema",
		},
		{
			name:     "strips timeshift suffix",
			raw:      "Channel 4+1",
			expected: "channel 4",
		},
		{
			name:     "strips east west",
			raw:      "AMC East",
			expected: "amc",
		},
		{
			name:     "removes parenthesized annotations",
			raw:      "KTLA (Los Angeles)",
			expected: "ktla",
		},
		{
			name:     "punctuation becomes spaces",
			raw:      "E! - Entertainment/TV",
			expected: "e entertainment tv",
		},
		{
			name:     "brackets and underscores",
			raw:      "7two_[Sydney]",
			expected: "7two sydney",
		},
		{
			name:     "quality token inside punctuation",
			raw:      "bbc-one-hd",
			expected: "bbc one",
		},
		{
			name:     "keeps digits and plus",
			raw:      "Canal+ Sport 2",
			expected: "canal+ sport 2",
		},
		{
			name:     "empty input",
			raw:      "",
			expected: "",
		},
		{
			name:     "whitespace only",
			raw:      "   \t ",
			expected: "",
		},
		{
			name:     "only removable tokens",
			raw:      "HD +1",
			expected: "",
		},
	}

	norm := NewNormalizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := norm.Normalize(tt.raw)
			assert.Equal(t, tt.expected, got)

			// Normalization must be idempotent.
			assert.Equal(t, got, norm.Normalize(got))
		})
	}
}

func TestNormalizeProviderTags(t *testing.T) {
	norm := NewNormalizer([]string{"Pluto", "sky", ""})

	assert.Equal(t, "tv comedy", norm.Normalize("Pluto TV Comedy"))
	assert.Equal(t, "news", norm.Normalize("Sky News HD"))
	// Tags match whole words only.
	assert.Equal(t, "skyline", norm.Normalize("Skyline"))
}

func TestNormalizeIdempotent(t *testing.T) {
	norm := NewNormalizer([]string{"pluto"})
	inputs := []string{
		"BBC One London HD",
		"Pluto TV: Movies (US) +1",
		"!!weird***name##",
		"a+1b",
		"x+12",
		"Seven (Sydney) [HD]",
	}
	for _, in := range inputs {
		once := norm.Normalize(in)
		assert.Equal(t, once, norm.Normalize(once), "normalize not idempotent for %q", in)
	}
}
