package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"group-lead-scraper-go/internal/models"
	"group-lead-scraper-go/internal/scraper"
)

// ValidationError reports a raw record that lacks a required field
type ValidationError struct {
	Index     int
	ScraperID string
	Field     string
}

func (e *ValidationError) Error() string {
	if e.ScraperID != "" {
		return fmt.Sprintf("record %d (%s): missing required field %q", e.Index, e.ScraperID, e.Field)
	}
	return fmt.Sprintf("record %d: missing required field %q", e.Index, e.Field)
}

// Result is the normalized output of one batch of raw records
type Result struct {
	Posts    []models.Post
	Images   []models.Image
	Rejected []*ValidationError
}

// Err joins all rejections into one error, nil when every record was valid
func (r Result) Err() error {
	if len(r.Rejected) == 0 {
		return nil
	}
	errs := make([]error, len(r.Rejected))
	for i, v := range r.Rejected {
		errs[i] = v
	}
	return errors.Join(errs...)
}

// Parse converts raw scraper records into posts and images.
// Invalid records are skipped and listed in Result.Rejected.
func Parse(records []scraper.Record) Result {
	var res Result
	for i, rec := range records {
		post, images, verr := parseRecord(i, rec)
		if verr != nil {
			logrus.Warnf("Skipping scraped record: %v", verr)
			res.Rejected = append(res.Rejected, verr)
			continue
		}
		res.Posts = append(res.Posts, post)
		res.Images = append(res.Images, images...)
	}
	return res
}

// ParseStrict is like Parse but fails the whole batch on the first invalid record
func ParseStrict(records []scraper.Record) ([]models.Post, []models.Image, error) {
	var (
		posts  []models.Post
		images []models.Image
	)
	for i, rec := range records {
		post, imgs, verr := parseRecord(i, rec)
		if verr != nil {
			return nil, nil, verr
		}
		posts = append(posts, post)
		images = append(images, imgs...)
	}
	return posts, images, nil
}

func parseRecord(index int, rec scraper.Record) (models.Post, []models.Image, *ValidationError) {
	scraperID := deref(rec.ID)
	missing := func(field string) *ValidationError {
		return &ValidationError{Index: index, ScraperID: scraperID, Field: field}
	}

	switch {
	case rec.ID == nil:
		return models.Post{}, nil, missing("id")
	case rec.LegacyID == nil:
		return models.Post{}, nil, missing("legacyId")
	case rec.User == nil || rec.User.Name == nil:
		return models.Post{}, nil, missing("user.name")
	case rec.Text == nil:
		return models.Post{}, nil, missing("text")
	case rec.URL == nil:
		return models.Post{}, nil, missing("url")
	case rec.FacebookURL == nil:
		return models.Post{}, nil, missing("facebookUrl")
	case rec.Time == nil:
		return models.Post{}, nil, missing("time")
	}

	post := models.Post{
		ScraperID:    *rec.ID,
		NativeID:     *rec.LegacyID,
		AuthorName:   *rec.User.Name,
		Content:      *rec.Text,
		URL:          *rec.URL,
		GroupURL:     *rec.FacebookURL,
		CreationDate: *rec.Time,
	}

	return post, parseImages(post.NativeID, rec.Attachments), nil
}

// parseImages keeps attachments that carry an image URL. The sequence number
// used for synthesized ids counts every attachment, including skipped ones.
func parseImages(nativeID string, attachments []scraper.Attachment) []models.Image {
	var images []models.Image
	for i, att := range attachments {
		imageURL := imageURI(att)
		if imageURL == "" {
			continue
		}

		imageID := deref(att.ID)
		if att.ID == nil {
			logrus.Infof("Attachment ID is missing for post %s", nativeID)
			imageID = nativeID + "_" + strconv.Itoa(i+1)
		}

		images = append(images, models.Image{
			ImageID:      imageID,
			PostNativeID: nativeID,
			ImageURL:     imageURL,
		})
	}
	return images
}

func imageURI(att scraper.Attachment) string {
	if att.PhotoImage != nil && att.PhotoImage.URI != "" {
		return att.PhotoImage.URI
	}
	if att.Image != nil {
		return att.Image.URI
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
