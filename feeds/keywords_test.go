package feeds_test

import (
	"testing"

	"curator/feeds"

	"github.com/stretchr/testify/assert"
)

func TestContainsKeyword(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		expected bool
	}{
		{
			name:     "empty text",
			text:     "",
			keywords: []string{"ai"},
			expected: false,
		},
		{
			name:     "empty keyword list",
			text:     "A big story about AI",
			keywords: nil,
			expected: false,
		},
		{
			name:     "case-insensitive match",
			text:     "OpenAI releases new LLM benchmark",
			keywords: []string{"llm"},
			expected: true,
		},
		{
			name:     "substring match without word boundary",
			text:     "The backhack scandal continues",
			keywords: []string{"hack"},
			expected: true,
		},
		{
			name:     "multi-word keyword",
			text:     "New machine learning framework announced",
			keywords: []string{"machine learning"},
			expected: true,
		},
		{
			name:     "no match",
			text:     "Local bakery wins award",
			keywords: []string{"vulnerability", "breach"},
			expected: false,
		},
		{
			name:     "blank keywords are ignored",
			text:     "anything at all",
			keywords: []string{"", "  "},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := feeds.ContainsKeyword(tt.text, tt.keywords)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMatchedKeywordsPreservesOrder(t *testing.T) {
	keywords := []string{"quantum", "space", "climate", "research"}
	text := "New research suggests climate shifts affect space weather"

	matched := feeds.MatchedKeywords(text, keywords)

	// Keyword list order, not text order
	assert.Equal(t, []string{"space", "climate", "research"}, matched)
}
