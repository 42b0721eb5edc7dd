package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// SampleFetcher serves a saved scraper response instead of calling the backend.
// Used for debugging the pipeline without spending scraper credits.
type SampleFetcher struct {
	Path string
}

// NewSampleFetcher creates a SampleFetcher reading path
func NewSampleFetcher(path string) *SampleFetcher {
	return &SampleFetcher{Path: path}
}

// Fetch ignores the request and returns the records in the sample file.
// A missing or unreadable file yields no records.
func (f *SampleFetcher) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	logrus.Infof("Reading sample scraper response from %s for %s", f.Path, req.GroupURL)

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.Errorf("Sample response file %s not found", f.Path)
		} else {
			logrus.Errorf("Failed to read sample response file %s: %v", f.Path, err)
		}
		return &FetchResult{}, nil
	}

	if !utf8.Valid(data) {
		logrus.Errorf("Encoding error while reading the sample response file %s", f.Path)
		return &FetchResult{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logrus.Errorf("Failed to decode sample response file %s: %v", f.Path, err)
		return &FetchResult{}, nil
	}

	return &FetchResult{Records: records}, nil
}
