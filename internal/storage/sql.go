package storage

import (
	"context"

	"gorm.io/gorm"

	"group-lead-scraper-go/internal/db"
	"group-lead-scraper-go/internal/models"
	"group-lead-scraper-go/internal/repository"
)

// SQLStore keeps history and results in a relational database.
// Each save is one transaction and re-inserting a known post is a no-op.
type SQLStore struct {
	db   *gorm.DB
	repo *repository.Repository
}

// NewSQLStore creates a SQLStore over an initialized database
func NewSQLStore(gdb *gorm.DB) *SQLStore {
	return &SQLStore{db: gdb, repo: repository.New(gdb)}
}

// Repository exposes the query side for read-only API handlers
func (s *SQLStore) Repository() *repository.Repository {
	return s.repo
}

func (s *SQLStore) SeenPostIDs(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.repo.SeenScraperIDs(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}

func (s *SQLStore) SavePosts(ctx context.Context, posts []models.Post) error {
	rows := make([]models.ScrapedPost, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, models.ScrapedPost{
			ScraperID:    p.ScraperID,
			NativeID:     p.NativeID,
			AuthorName:   p.AuthorName,
			Content:      p.Content,
			URL:          p.URL,
			GroupURL:     p.GroupURL,
			CreationDate: p.CreationDate,
		})
	}
	return s.repo.InsertPosts(ctx, rows)
}

func (s *SQLStore) SaveImages(ctx context.Context, images []models.Image) error {
	rows := make([]models.PostImage, 0, len(images))
	for _, img := range images {
		rows = append(rows, models.PostImage{
			ImageID:      img.ImageID,
			PostNativeID: img.PostNativeID,
			ImageURL:     img.ImageURL,
		})
	}
	return s.repo.InsertImages(ctx, rows)
}

func (s *SQLStore) SaveClassifications(ctx context.Context, results []models.Classification) error {
	rows := make([]models.PostClassification, 0, len(results))
	for _, c := range results {
		rows = append(rows, models.PostClassification{
			PostNativeID:      c.PostNativeID,
			AuthorName:        c.AuthorName,
			RelevantIntention: c.RelevantIntention,
			Category:          c.Category,
			Content:           c.Content,
		})
	}
	return s.repo.InsertClassifications(ctx, rows)
}

func (s *SQLStore) RecordRun(ctx context.Context, run *models.RunLog) error {
	return s.repo.LogRun(ctx, run)
}

func (s *SQLStore) Close() error {
	return db.Close(s.db)
}
