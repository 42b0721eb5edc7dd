package dedup

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"group-lead-scraper-go/internal/models"
)

// HistoryReader returns the scraper ids recorded by earlier runs
type HistoryReader interface {
	SeenPostIDs(ctx context.Context) (map[string]struct{}, error)
}

// Deduplicator drops posts that were already persisted
type Deduplicator struct {
	history HistoryReader
}

// New creates a Deduplicator reading from history
func New(history HistoryReader) *Deduplicator {
	return &Deduplicator{history: history}
}

// FilterNew returns the posts whose scraper id is not in the history, in input order.
// The history is re-read on every call. Repeated ids within posts are kept once.
func (d *Deduplicator) FilterNew(ctx context.Context, posts []models.Post) ([]models.Post, error) {
	logrus.Info("Filtering new posts")

	seen, err := d.history.SeenPostIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read post history: %w", err)
	}

	batch := make(map[string]struct{}, len(posts))
	newPosts := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.ScraperID]; ok {
			continue
		}
		if _, ok := batch[p.ScraperID]; ok {
			logrus.Debugf("Dropping repeated post %s within batch", p.ScraperID)
			continue
		}
		batch[p.ScraperID] = struct{}{}
		newPosts = append(newPosts, p)
	}

	logrus.Infof("Found %d new posts", len(newPosts))
	return newPosts, nil
}
