package parser

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-lead-scraper-go/internal/scraper"
)

func decode(t *testing.T, raw string) []scraper.Record {
	t.Helper()
	var recs []scraper.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &recs))
	return recs
}

const sampleRecords = `[
  {
    "id": "a1", "legacyId": "p42", "user": {"name": "Jane"},
    "text": "Looking for an agent to lodge my 500 visa",
    "url": "https://www.facebook.com/groups/1/posts/42",
    "facebookUrl": "https://www.facebook.com/groups/1",
    "time": "2024-05-01T10:00:00.000Z",
    "attachments": [
      {"id": "img1", "photo_image": {"uri": "https://cdn/1.jpg"}},
      {"image": {"uri": "https://cdn/2.jpg"}},
      {"id": "vid", "url": "https://video"},
      {"photo_image": {"uri": ""}, "image": {"uri": "https://cdn/4.jpg"}}
    ]
  },
  {
    "id": "a2", "legacyId": "p43", "user": {"name": "Raj"},
    "text": "", "url": "https://www.facebook.com/groups/1/posts/43",
    "facebookUrl": "https://www.facebook.com/groups/1",
    "time": "2024-05-02T10:00:00.000Z"
  }
]`

func TestParse_PostsAndImages(t *testing.T) {
	res := Parse(decode(t, sampleRecords))
	require.NoError(t, res.Err())

	require.Len(t, res.Posts, 2)
	p := res.Posts[0]
	assert.Equal(t, "a1", p.ScraperID)
	assert.Equal(t, "p42", p.NativeID)
	assert.Equal(t, "Jane", p.AuthorName)
	assert.Equal(t, "Looking for an agent to lodge my 500 visa", p.Content)
	assert.Equal(t, "https://www.facebook.com/groups/1/posts/42", p.URL)
	assert.Equal(t, "https://www.facebook.com/groups/1", p.GroupURL)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", p.CreationDate)
	assert.Equal(t, "a2", res.Posts[1].ScraperID)
	assert.Equal(t, "", res.Posts[1].Content)

	require.Len(t, res.Images, 3)
	assert.Equal(t, "img1", res.Images[0].ImageID)
	assert.Equal(t, "https://cdn/1.jpg", res.Images[0].ImageURL)

	assert.Equal(t, "p42_2", res.Images[1].ImageID, "second attachment without id")
	assert.Equal(t, "p42", res.Images[1].PostNativeID)
	assert.Equal(t, "https://cdn/2.jpg", res.Images[1].ImageURL)

	// the video attachment is skipped but still counted
	assert.Equal(t, "p42_4", res.Images[2].ImageID)
	assert.Equal(t, "https://cdn/4.jpg", res.Images[2].ImageURL)
}

func TestParse_Idempotent(t *testing.T) {
	recs := decode(t, sampleRecords)
	first := Parse(recs)
	second := Parse(recs)
	assert.Equal(t, first, second)
}

func TestParse_SkipsInvalidRecords(t *testing.T) {
	recs := decode(t, `[
	  {"id": "a1", "legacyId": "p1", "user": {"name": "A"}, "text": "t", "url": "u", "facebookUrl": "g", "time": "x"},
	  {"id": "a2", "legacyId": "p2", "user": {}, "text": "t", "url": "u", "facebookUrl": "g", "time": "x"},
	  {"legacyId": "p3"},
	  {"id": "a4", "legacyId": "p4", "user": {"name": "D"}, "text": "t", "url": "u", "facebookUrl": "g", "time": "x"}
	]`)

	res := Parse(recs)
	require.Len(t, res.Posts, 2)
	assert.Equal(t, "a1", res.Posts[0].ScraperID)
	assert.Equal(t, "a4", res.Posts[1].ScraperID)

	require.Len(t, res.Rejected, 2)
	assert.Equal(t, &ValidationError{Index: 1, ScraperID: "a2", Field: "user.name"}, res.Rejected[0])
	assert.Equal(t, &ValidationError{Index: 2, Field: "id"}, res.Rejected[1])

	err := res.Err()
	require.Error(t, err)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), `"user.name"`)
}

func TestParseStrict(t *testing.T) {
	posts, images, err := ParseStrict(decode(t, sampleRecords))
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Len(t, images, 3)

	_, _, err = ParseStrict(decode(t, `[
	  {"id": "a1", "legacyId": "p1", "user": {"name": "A"}, "text": "t", "url": "u", "facebookUrl": "g"}
	]`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "time", verr.Field)
	assert.Equal(t, "a1", verr.ScraperID)
}

func TestParse_Empty(t *testing.T) {
	res := Parse(nil)
	assert.Empty(t, res.Posts)
	assert.Empty(t, res.Images)
	assert.NoError(t, res.Err())
}
