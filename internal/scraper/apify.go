package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrRunFailed is returned when an actor run ends in a non-successful state
var ErrRunFailed = errors.New("actor run did not succeed")

const (
	runSucceeded = "SUCCEEDED"
	// maxServerWait is the longest waitForFinish the API accepts per request
	maxServerWait = 60 * time.Second
)

// ApifyConfig configures the Apify client
type ApifyConfig struct {
	BaseURL       string
	Token         string
	ActorID       string
	WaitForFinish time.Duration
	PageSize      int
	Timeout       time.Duration
}

// ApifyClient runs the group scraper actor and pages its dataset
type ApifyClient struct {
	cfg    ApifyConfig
	client *http.Client
}

// NewApifyClient creates an ApifyClient with the given config
func NewApifyClient(cfg ApifyConfig) *ApifyClient {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 6 * time.Minute
	}
	return &ApifyClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type runInput struct {
	StartURLs          []startURL `json:"startUrls"`
	ResultsLimit       int        `json:"resultsLimit"`
	ViewOption         string     `json:"viewOption"`
	OnlyPostsNewerThan string     `json:"onlyPostsNewerThan"`
}

type startURL struct {
	URL string `json:"url"`
}

type runResponse struct {
	Data runData `json:"data"`
}

type runData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch starts an actor run for the group, waits for it and returns every dataset item
func (c *ApifyClient) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	run, err := c.startRun(ctx, req)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Started scraper run %s for %s", run.ID, req.GroupURL)

	run, err = c.waitForRun(ctx, run)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Scraping done, fetching results from dataset %s", run.DefaultDatasetID)

	records, err := c.fetchDataset(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		RunID:     run.ID,
		DatasetID: run.DefaultDatasetID,
		Records:   records,
	}, nil
}

func (c *ApifyClient) startRun(ctx context.Context, req FetchRequest) (runData, error) {
	input := runInput{
		StartURLs:          []startURL{{URL: req.GroupURL}},
		ResultsLimit:       req.ResultsLimit,
		ViewOption:         string(req.ViewOption),
		OnlyPostsNewerThan: req.NewerThan,
	}
	body, err := json.Marshal(input)
	if err != nil {
		return runData{}, fmt.Errorf("encode run input: %w", err)
	}

	q := url.Values{}
	q.Set("waitForFinish", strconv.Itoa(int(c.serverWait().Seconds())))
	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.ActorID), q.Encode())

	var resp runResponse
	if err := c.do(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return runData{}, fmt.Errorf("start actor run: %w", err)
	}
	return resp.Data, nil
}

// waitForRun polls the run until it reaches a terminal state or the wait budget runs out
func (c *ApifyClient) waitForRun(ctx context.Context, run runData) (runData, error) {
	deadline := time.Now().Add(c.cfg.WaitForFinish)

	for !isTerminal(run.Status) {
		if time.Now().After(deadline) {
			return run, fmt.Errorf("run %s still %s after %v: %w", run.ID, run.Status, c.cfg.WaitForFinish, ErrRunFailed)
		}

		q := url.Values{}
		q.Set("waitForFinish", strconv.Itoa(int(c.serverWait().Seconds())))
		endpoint := fmt.Sprintf("%s/v2/actor-runs/%s?%s", c.cfg.BaseURL, url.PathEscape(run.ID), q.Encode())

		var resp runResponse
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
			return run, fmt.Errorf("poll actor run %s: %w", run.ID, err)
		}
		run = resp.Data
	}

	if run.Status != runSucceeded {
		return run, fmt.Errorf("run %s finished with status %s: %w", run.ID, run.Status, ErrRunFailed)
	}
	return run, nil
}

func (c *ApifyClient) fetchDataset(ctx context.Context, datasetID string) ([]Record, error) {
	var records []Record
	offset := 0

	for {
		q := url.Values{}
		q.Set("format", "json")
		q.Set("clean", "true")
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(c.cfg.PageSize))
		endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?%s", c.cfg.BaseURL, url.PathEscape(datasetID), q.Encode())

		var page []Record
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, fmt.Errorf("dataset %s items at offset %d: %w", datasetID, offset, err)
		}
		records = append(records, page...)

		if len(page) < c.cfg.PageSize {
			return records, nil
		}
		offset += len(page)
	}
}

func (c *ApifyClient) do(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("http %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *ApifyClient) serverWait() time.Duration {
	if c.cfg.WaitForFinish > 0 && c.cfg.WaitForFinish < maxServerWait {
		return c.cfg.WaitForFinish
	}
	return maxServerWait
}

func isTerminal(status string) bool {
	switch status {
	case "SUCCEEDED", "FAILED", "TIMED-OUT", "ABORTED":
		return true
	}
	return false
}
