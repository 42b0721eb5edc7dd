package scraper

import (
	"context"
	"encoding/json"

	"group-lead-scraper-go/internal/models"
)

// Fetcher retrieves raw post records for one group
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}

// FetchRequest describes one scrape of a group page
type FetchRequest struct {
	GroupURL     string
	ResultsLimit int
	ViewOption   models.SortOrder
	// NewerThan is the recency cutoff formatted as YYYY-MM-DD
	NewerThan string
}

// FetchResult holds the records of one scraper run
type FetchResult struct {
	RunID     string
	DatasetID string
	Records   []Record
}

// Record is one raw post item as returned by the scraper dataset.
// Nil pointers mean the field was absent.
type Record struct {
	ID          *string      `json:"id"`
	LegacyID    *string      `json:"legacyId"`
	User        *RecordUser  `json:"user"`
	Text        *string      `json:"text"`
	URL         *string      `json:"url"`
	FacebookURL *string      `json:"facebookUrl"`
	Time        *string      `json:"time"`
	Attachments []Attachment `json:"attachments"`

	// Raw keeps the item exactly as received so snapshots lose nothing
	Raw json.RawMessage `json:"-"`
}

// RecordUser is the author block of a record
type RecordUser struct {
	Name *string `json:"name"`
}

// Attachment is a media attachment of a record
type Attachment struct {
	ID         *string   `json:"id"`
	PhotoImage *ImageRef `json:"photo_image"`
	Image      *ImageRef `json:"image"`
}

// ImageRef points at an image resource
type ImageRef struct {
	URI string `json:"uri"`
}

type plainRecord Record

// UnmarshalJSON decodes the known fields and retains the raw item
func (r *Record) UnmarshalJSON(data []byte) error {
	var p plainRecord
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the raw item when available
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(plainRecord(r))
}
