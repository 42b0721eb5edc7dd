package models

// Post is a group post normalized from a scraper record
type Post struct {
	ScraperID    string `json:"scraper_id"`
	NativeID     string `json:"native_id"`
	AuthorName   string `json:"author_name"`
	Content      string `json:"content"`
	URL          string `json:"url"`
	GroupURL     string `json:"group_url"`
	CreationDate string `json:"creation_date"`
}

// Image is an image attachment of a post
type Image struct {
	ImageID      string `json:"image_id"`
	PostNativeID string `json:"post_native_id"`
	ImageURL     string `json:"image_url"`
}
