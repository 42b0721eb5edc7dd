package models

import "fmt"

// SortOrder is the post ordering requested from the scraping backend
type SortOrder string

const (
	SortChronological         SortOrder = "CHRONOLOGICAL"
	SortRecentActivity        SortOrder = "RECENT_ACTIVITY"
	SortTopPosts              SortOrder = "TOP_POSTS"
	SortChronologicalListings SortOrder = "CHRONOLOGICAL_LISTINGS"
)

// Valid reports whether o is one of the orderings the backend accepts
func (o SortOrder) Valid() bool {
	switch o {
	case SortChronological, SortRecentActivity, SortTopPosts, SortChronologicalListings:
		return true
	}
	return false
}

// Group is a target group page to scrape
type Group struct {
	URL        string    `json:"group_url" mapstructure:"group_url"`
	MaxPosts   int       `json:"max_posts" mapstructure:"max_posts"`
	ViewOption SortOrder `json:"view_option" mapstructure:"view_option"`
}

// Validate checks a single group entry
func (g Group) Validate() error {
	if g.URL == "" {
		return fmt.Errorf("group url is required")
	}
	if g.MaxPosts <= 0 {
		return fmt.Errorf("group %s: max_posts must be greater than 0", g.URL)
	}
	if !g.ViewOption.Valid() {
		return fmt.Errorf("group %s: unknown view option %q", g.URL, g.ViewOption)
	}
	return nil
}
