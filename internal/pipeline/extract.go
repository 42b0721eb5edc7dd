package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	"group-lead-scraper-go/internal/classifier"
	"group-lead-scraper-go/internal/models"
)

// Classifier judges the intent of a post text
type Classifier interface {
	Classify(ctx context.Context, text string) (*classifier.Verdict, error)
}

// ExtractClassifications classifies each post in order. Posts whose
// classification fails are logged and left out. The second return value is
// the number of failures.
func ExtractClassifications(ctx context.Context, c Classifier, posts []models.Post) ([]models.Classification, int) {
	results := make([]models.Classification, 0, len(posts))
	failures := 0

	for _, post := range posts {
		verdict, err := c.Classify(ctx, post.Content)
		if err != nil {
			logrus.Warnf("Failed to extract data for post %s: %v", post.NativeID, err)
			failures++
			continue
		}

		results = append(results, models.Classification{
			PostNativeID:      post.NativeID,
			AuthorName:        post.AuthorName,
			RelevantIntention: verdict.RelevantIntention,
			Category:          verdict.Category,
			Content:           post.Content,
		})
	}

	return results, failures
}
