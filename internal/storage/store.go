package storage

import (
	"context"

	"group-lead-scraper-go/internal/models"
)

// Store persists scraped posts, their images and classifications.
// SeenPostIDs is the history the deduplicator filters against.
type Store interface {
	SeenPostIDs(ctx context.Context) (map[string]struct{}, error)
	SavePosts(ctx context.Context, posts []models.Post) error
	SaveImages(ctx context.Context, images []models.Image) error
	SaveClassifications(ctx context.Context, results []models.Classification) error
	Close() error
}

// RunRecorder is implemented by stores that keep a log of group runs
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.RunLog) error
}
