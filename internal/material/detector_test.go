package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		name          string
		text          string
		expectMatch   bool
		expectedLabel string
	}{
		{
			name:          "plain 100% cotton",
			text:          "100% Cotton",
			expectMatch:   true,
			expectedLabel: "100% Cotton",
		},
		{
			name:          "case and whitespace insensitive",
			text:          "100%   COTTON ",
			expectMatch:   true,
			expectedLabel: "100% Cotton",
		},
		{
			name:          "pure cotton qualifier",
			text:          "Pure Cotton",
			expectMatch:   true,
			expectedLabel: "Pure Cotton",
		},
		{
			name:          "all cotton qualifier",
			text:          "Soft all cotton jersey",
			expectMatch:   true,
			expectedLabel: "All Cotton",
		},
		{
			name:          "organic cotton",
			text:          "100% Organic Cotton",
			expectMatch:   true,
			expectedLabel: "100% Organic Cotton",
		},
		{
			name:          "bci cotton",
			text:          "100% BCI Cotton",
			expectMatch:   true,
			expectedLabel: "100% BCI Cotton",
		},
		{
			name:          "reversed percent order",
			text:          "Cotton 100%",
			expectMatch:   true,
			expectedLabel: "100% Cotton",
		},
		{
			name:          "composition prefix with punctuation",
			text:          "Composition: 100% cotton.",
			expectMatch:   true,
			expectedLabel: "100% Cotton",
		},
		{
			name:        "cotton blend with second percentage",
			text:        "80% Cotton, 20% Polyester",
			expectMatch: false,
		},
		{
			name:        "blend without percentages",
			text:        "Cotton blend",
			expectMatch: false,
		},
		{
			name:        "majority cotton is still a blend",
			text:        "95% cotton 5% elastane",
			expectMatch: false,
		},
		{
			name:        "pure cotton overridden by other material",
			text:        "Pure cotton body, 20% polyester trim",
			expectMatch: false,
		},
		{
			name:        "other fabric entirely",
			text:        "100% Polyester",
			expectMatch: false,
		},
		{
			name:        "empty input",
			text:        "",
			expectMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, label := detector.Detect(tt.text)

			if tt.expectMatch {
				require.True(t, matched, "expected %q to qualify", tt.text)
				assert.Equal(t, tt.expectedLabel, label)
			} else {
				assert.False(t, matched, "expected %q to be rejected", tt.text)
				assert.Empty(t, label)
			}
		})
	}
}

func TestDetectMemoized(t *testing.T) {
	detector := NewDetector()

	matched, label := detector.Detect("100% Cotton")
	require.True(t, matched)

	// Second call hits the cache and must agree with the first.
	matchedAgain, labelAgain := detector.Detect("100% Cotton")
	assert.Equal(t, matched, matchedAgain)
	assert.Equal(t, label, labelAgain)
}
