package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"group-lead-scraper-go/internal/models"
)

// CSVFiles names the delimited output files
type CSVFiles struct {
	Posts     string
	Processed string
	Images    string
}

// CSVStore appends records to delimited files. Every write opens the file in
// append mode and closes it again, so there is nothing to release on Close.
type CSVStore struct {
	files CSVFiles
}

// NewCSVStore creates a CSVStore over files
func NewCSVStore(files CSVFiles) *CSVStore {
	return &CSVStore{files: files}
}

// SeenPostIDs reads the first column of every row in the posts file.
// A missing or undecodable file is logged and treated as empty history.
func (s *CSVStore) SeenPostIDs(ctx context.Context) (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	data, err := os.ReadFile(s.files.Posts)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.Errorf("Posts file %s not found", s.files.Posts)
			return seen, nil
		}
		logrus.Errorf("Failed to read posts file %s: %v", s.files.Posts, err)
		return seen, nil
	}

	if !utf8.Valid(data) {
		logrus.Errorf("Encoding error while reading the posts file %s", s.files.Posts)
		return seen, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.Errorf("Failed to decode posts file %s: %v", s.files.Posts, err)
			return make(map[string]struct{}), nil
		}
		if len(row) > 0 {
			seen[strings.TrimSpace(row[0])] = struct{}{}
		}
	}
	return seen, nil
}

func (s *CSVStore) SavePosts(ctx context.Context, posts []models.Post) error {
	logrus.Info("Saving posts to CSV file")
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{p.ScraperID, p.NativeID, p.AuthorName, p.Content, p.URL, p.GroupURL, p.CreationDate})
	}
	return appendRows(s.files.Posts, rows)
}

func (s *CSVStore) SaveImages(ctx context.Context, images []models.Image) error {
	if s.files.Images == "" {
		return nil
	}
	logrus.Info("Saving images to CSV file")
	rows := make([][]string, 0, len(images))
	for _, img := range images {
		rows = append(rows, []string{img.ImageID, img.PostNativeID, img.ImageURL})
	}
	return appendRows(s.files.Images, rows)
}

func (s *CSVStore) SaveClassifications(ctx context.Context, results []models.Classification) error {
	logrus.Info("Saving processed posts to CSV file")
	rows := make([][]string, 0, len(results))
	for _, c := range results {
		rows = append(rows, []string{c.PostNativeID, c.AuthorName, c.RelevantIntention, c.Category, c.Content})
	}
	return appendRows(s.files.Processed, rows)
}

func (s *CSVStore) Close() error {
	return nil
}

// appendRows writes rows with every field quoted and CRLF line endings
func appendRows(path string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	var buf bytes.Buffer
	for _, row := range rows {
		writeQuotedRow(&buf, row)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// writeQuotedRow quotes every field unconditionally; encoding/csv only
// quotes fields that need it.
func writeQuotedRow(buf *bytes.Buffer, row []string) {
	for i, field := range row {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}
