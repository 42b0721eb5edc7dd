package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"group-lead-scraper-go/internal/models"
)

const insertBatchSize = 100

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SeenScraperIDs returns every scraper id already stored
func (r *Repository) SeenScraperIDs(ctx context.Context) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).Model(&models.ScrapedPost{}).Pluck("scraper_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load scraped post ids: %w", result.Error)
	}
	return ids, nil
}

// InsertPosts stores posts in one transaction. Rows whose scraper id already exists are left untouched.
func (r *Repository) InsertPosts(ctx context.Context, posts []models.ScrapedPost) error {
	if len(posts) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&posts, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert posts: %w", err)
	}
	return nil
}

// InsertImages stores images in one transaction, skipping known image ids
func (r *Repository) InsertImages(ctx context.Context, images []models.PostImage) error {
	if len(images) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&images, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert images: %w", err)
	}
	return nil
}

func (r *Repository) InsertClassifications(ctx context.Context, rows []models.PostClassification) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert classifications: %w", err)
	}
	return nil
}

func (r *Repository) LogRun(ctx context.Context, run *models.RunLog) error {
	result := r.db.WithContext(ctx).Create(run)
	if result.Error != nil {
		return fmt.Errorf("failed to log group run: %w", result.Error)
	}
	return nil
}

// RecentRuns returns the newest run logs first
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]models.RunLog, error) {
	var runs []models.RunLog
	result := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit).Find(&runs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get run logs: %w", result.Error)
	}
	return runs, nil
}

// RecentClassifications returns classified posts newest first, optionally only relevant ones
func (r *Repository) RecentClassifications(ctx context.Context, relevantOnly bool, limit int) ([]models.PostClassification, error) {
	var rows []models.PostClassification
	query := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit)
	if relevantOnly {
		query = query.Where("relevant_intention = ?", "Yes")
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get classifications: %w", err)
	}
	return rows, nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
