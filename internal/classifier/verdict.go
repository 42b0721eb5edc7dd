package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"group-lead-scraper-go/internal/models"
)

var (
	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("empty response received from language model")
	// ErrNoDetailFound is returned when the model answered with the no-detail sentinel
	ErrNoDetailFound = errors.New("NO DETAIL FOUND response received from language model")
	// ErrMalformedResponse is returned when the response is not a JSON object
	ErrMalformedResponse = errors.New("failed to extract data")
)

const noDetailSentinel = "NO DETAIL FOUND"

// Verdict is the model's judgement on one post
type Verdict struct {
	RelevantIntention string `json:"Relevant Intention"`
	Category          string `json:"Category"`
}

// ParseVerdict interprets the raw completion text
func ParseVerdict(text string) (*Verdict, error) {
	if text == "" {
		return nil, ErrEmptyResponse
	}
	if strings.Contains(strings.ToUpper(text), noDetailSentinel) {
		return nil, ErrNoDetailFound
	}

	cleaned := stripCodeFences(text)

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: response is not an object", ErrMalformedResponse)
	}

	return &Verdict{
		RelevantIntention: fieldText(fields["Relevant Intention"]),
		Category:          fieldText(fields["Category"]),
	}, nil
}

// stripCodeFences removes surrounding whitespace and a markdown json fence
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func fieldText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return models.NotAvailable
	case string:
		return val
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fieldText(item))
		}
		return strings.Join(parts, ", ")
	default:
		data, _ := json.Marshal(val)
		return string(data)
	}
}
