package pipeline

import "time"

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// GroupReport summarizes one group run
type GroupReport struct {
	GroupURL         string        `json:"group_url"`
	Fetched          int           `json:"fetched"`
	Parsed           int           `json:"parsed"`
	Rejected         int           `json:"rejected"`
	NewPosts         int           `json:"new_posts"`
	Images           int           `json:"images"`
	Classified       int           `json:"classified"`
	ClassifyFailures int           `json:"classify_failures"`
	Leads            int           `json:"leads"`
	Error            string        `json:"error,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// Status reports whether the group run completed
func (r GroupReport) Status() string {
	if r.Error != "" {
		return StatusFailure
	}
	return StatusSuccess
}

// BatchReport summarizes one pass over all configured groups
type BatchReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Cutoff     string        `json:"cutoff"`
	Groups     []GroupReport `json:"groups"`
	Cancelled  bool          `json:"cancelled,omitempty"`
}

// Failed counts groups whose run ended with an error
func (b BatchReport) Failed() int {
	n := 0
	for _, g := range b.Groups {
		if g.Error != "" {
			n++
		}
	}
	return n
}
