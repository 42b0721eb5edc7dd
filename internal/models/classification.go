package models

// NotAvailable is recorded when the model omits a verdict field
const NotAvailable = "N/A"

// Classification is the intent verdict for a single new post
type Classification struct {
	PostNativeID      string `json:"post_native_id"`
	AuthorName        string `json:"author_name"`
	RelevantIntention string `json:"relevant_intention"`
	Category          string `json:"category"`
	Content           string `json:"content"`
}

// IsRelevant reports whether the model flagged the post as a possible lead
func (c Classification) IsRelevant() bool {
	return c.RelevantIntention == "Yes"
}
