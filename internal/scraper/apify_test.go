package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-lead-scraper-go/internal/models"
)

func newTestClient(srv *httptest.Server, pageSize int) *ApifyClient {
	return NewApifyClient(ApifyConfig{
		BaseURL:       srv.URL,
		Token:         "secret",
		ActorID:       "apify~facebook-groups-scraper",
		WaitForFinish: 5 * time.Second,
		PageSize:      pageSize,
		Timeout:       5 * time.Second,
	})
}

func item(i int) map[string]interface{} {
	return map[string]interface{}{
		"id":          fmt.Sprintf("a%d", i),
		"legacyId":    fmt.Sprintf("p%d", i),
		"user":        map[string]interface{}{"name": "Jane"},
		"text":        "Need a visa agent",
		"url":         fmt.Sprintf("https://www.facebook.com/groups/1/posts/%d", i),
		"facebookUrl": "https://www.facebook.com/groups/1",
		"time":        "2024-05-01T10:00:00.000Z",
		"likesCount":  i,
	}
}

func TestFetch_Success(t *testing.T) {
	var gotInput runInput
	var polls int

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/acts/apify~facebook-groups-scraper/runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "5", r.URL.Query().Get("waitForFinish"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotInput))
		json.NewEncoder(w).Encode(runResponse{Data: runData{ID: "run1", Status: "RUNNING", DefaultDatasetID: "ds1"}})
	})
	mux.HandleFunc("/v2/actor-runs/run1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		json.NewEncoder(w).Encode(runResponse{Data: runData{ID: "run1", Status: "SUCCEEDED", DefaultDatasetID: "ds1"}})
	})
	mux.HandleFunc("/v2/datasets/ds1/items", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		var page []map[string]interface{}
		for i := offset; i < offset+limit && i < 5; i++ {
			page = append(page, item(i))
		}
		if page == nil {
			page = []map[string]interface{}{}
		}
		json.NewEncoder(w).Encode(page)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv, 2)
	res, err := c.Fetch(context.Background(), FetchRequest{
		GroupURL:     "https://www.facebook.com/groups/1",
		ResultsLimit: 10,
		ViewOption:   models.SortChronological,
		NewerThan:    "2024-04-28",
	})
	require.NoError(t, err)

	assert.Equal(t, "run1", res.RunID)
	assert.Equal(t, "ds1", res.DatasetID)
	assert.Equal(t, 1, polls)
	require.Len(t, res.Records, 5)
	for i, rec := range res.Records {
		assert.Equal(t, fmt.Sprintf("a%d", i), *rec.ID)
		assert.Contains(t, string(rec.Raw), "likesCount", "raw item must be retained")
	}

	require.Len(t, gotInput.StartURLs, 1)
	assert.Equal(t, "https://www.facebook.com/groups/1", gotInput.StartURLs[0].URL)
	assert.Equal(t, 10, gotInput.ResultsLimit)
	assert.Equal(t, "CHRONOLOGICAL", gotInput.ViewOption)
	assert.Equal(t, "2024-04-28", gotInput.OnlyPostsNewerThan)
}

func TestFetch_RunFailed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/acts/apify~facebook-groups-scraper/runs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(runResponse{Data: runData{ID: "run1", Status: "FAILED", DefaultDatasetID: "ds1"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := newTestClient(srv, 10).Fetch(context.Background(), FetchRequest{GroupURL: "g"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunFailed))
}

func TestFetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"user-or-token-not-found","message":"User was not found or authentication token is not valid"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 10).Fetch(context.Background(), FetchRequest{GroupURL: "g"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication token is not valid")
}

func TestFetch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 10).Fetch(context.Background(), FetchRequest{GroupURL: "g"})
	assert.Error(t, err)
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv, 10).Fetch(ctx, FetchRequest{GroupURL: "g"})
	assert.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"SUCCEEDED", true},
		{"FAILED", true},
		{"TIMED-OUT", true},
		{"ABORTED", true},
		{"RUNNING", false},
		{"READY", false},
		{"ABORTING", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isTerminal(tt.status), tt.status)
	}
}
