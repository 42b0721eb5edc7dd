package models

import (
	"time"
)

// ScrapedPost is the SQL history row for a fetched post
type ScrapedPost struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ScraperID    string    `json:"scraper_id" gorm:"type:varchar(255);not null;uniqueIndex"`
	NativeID     string    `json:"native_id" gorm:"type:varchar(255);not null;index"`
	AuthorName   string    `json:"author_name" gorm:"type:varchar(255)"`
	Content      string    `json:"content" gorm:"type:text"`
	URL          string    `json:"url" gorm:"type:varchar(1024)"`
	GroupURL     string    `json:"group_url" gorm:"type:varchar(1024);index"`
	CreationDate string    `json:"creation_date" gorm:"type:varchar(64)"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for ScrapedPost
func (ScrapedPost) TableName() string {
	return "scraped_posts"
}

// PostImage is the SQL row for an image attachment
type PostImage struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ImageID      string    `json:"image_id" gorm:"type:varchar(255);not null;uniqueIndex"`
	PostNativeID string    `json:"post_native_id" gorm:"type:varchar(255);not null;index"`
	ImageURL     string    `json:"image_url" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for PostImage
func (PostImage) TableName() string {
	return "post_images"
}

// PostClassification is the SQL row for a classified post
type PostClassification struct {
	ID                uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PostNativeID      string    `json:"post_native_id" gorm:"type:varchar(255);not null;index"`
	AuthorName        string    `json:"author_name" gorm:"type:varchar(255)"`
	RelevantIntention string    `json:"relevant_intention" gorm:"type:varchar(16);not null"`
	Category          string    `json:"category" gorm:"type:varchar(64)"`
	Content           string    `json:"content" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName specifies the table name for PostClassification
func (PostClassification) TableName() string {
	return "post_classifications"
}

// RunLog records the outcome of one group run
type RunLog struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	GroupURL        string    `json:"group_url" gorm:"type:varchar(1024);not null;index"`
	Cutoff          string    `json:"cutoff" gorm:"type:varchar(16)"`
	Fetched         int       `json:"fetched"`
	Rejected        int       `json:"rejected"`
	NewPosts        int       `json:"new_posts"`
	Classified      int       `json:"classified"`
	ClassifyFailure int       `json:"classify_failures"`
	Status          string    `json:"status" gorm:"type:varchar(50);not null"` // success, failure
	ErrorMsg        string    `json:"error_msg" gorm:"type:text"`
	DurationMillis  int64     `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for RunLog
func (RunLog) TableName() string {
	return "run_logs"
}
