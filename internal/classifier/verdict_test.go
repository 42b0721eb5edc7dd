package classifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-lead-scraper-go/internal/models"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *Verdict
	}{
		{
			name:     "fenced json",
			input:    "```json\n{\"Relevant Intention\":\"Yes\",\"Category\":\"2\"}\n```",
			expected: &Verdict{RelevantIntention: "Yes", Category: "2"},
		},
		{
			name:     "plain fence with whitespace",
			input:    "  ```\n{\"Relevant Intention\": \"No\", \"Category\": \"\"}```  ",
			expected: &Verdict{RelevantIntention: "No", Category: ""},
		},
		{
			name:     "bare object",
			input:    `{"Relevant Intention": "Yes", "Category": "3, 5"}`,
			expected: &Verdict{RelevantIntention: "Yes", Category: "3, 5"},
		},
		{
			name:     "missing fields",
			input:    `{"reasoning": "nothing relevant"}`,
			expected: &Verdict{RelevantIntention: models.NotAvailable, Category: models.NotAvailable},
		},
		{
			name:     "non string values",
			input:    `{"Relevant Intention": true, "Category": [3, 5]}`,
			expected: &Verdict{RelevantIntention: "Yes", Category: "3, 5"},
		},
		{
			name:     "numeric category",
			input:    `{"Relevant Intention": "Yes", "Category": 4}`,
			expected: &Verdict{RelevantIntention: "Yes", Category: "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerdict(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseVerdict_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmptyResponse},
		{"sentinel", "NO DETAIL FOUND", ErrNoDetailFound},
		{"sentinel any case", "Sorry, no detail found in this post", ErrNoDetailFound},
		{"prose", "I think this is a lead.", ErrMalformedResponse},
		{"array", `["Yes"]`, ErrMalformedResponse},
		{"null", "null", ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerdict(tt.input)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
