// Package ingest loads customer reviews from CSV exports into the database.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"reviewly/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column headers expected in review CSV exports.
const (
	columnWorkspace   = "WSID"
	columnProductID   = "product_id"
	columnProductName = "product_name"
	columnTitle       = "review_title"
	columnText        = "review_text"
	columnRating      = "rating"
)

// ParseReviews reads review rows from CSV data. Each row gets a fresh review
// ID and starts unembedded. Files saved from Excel carry a BOM on the first
// header; it is stripped before header matching.
func ParseReviews(r io.Reader) ([]models.Review, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}

	for _, required := range []string{columnWorkspace, columnProductID, columnText} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("CSV missing required column %q", required)
		}
	}

	var reviews []models.Review
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		rating, _ := strconv.Atoi(field(columnRating))

		reviews = append(reviews, models.Review{
			ReviewID:    uuid.New().String(),
			WorkspaceID: field(columnWorkspace),
			ProductID:   field(columnProductID),
			ProductName: field(columnProductName),
			ReviewTitle: field(columnTitle),
			ReviewText:  field(columnText),
			Rating:      rating,
			Embedded:    false,
		})
	}

	return reviews, nil
}

// LoadFile parses a review CSV from disk and inserts the rows.
func LoadFile(db *gorm.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reviews, err := ParseReviews(f)
	if err != nil {
		return 0, err
	}

	if err := models.CreateReviews(db, reviews); err != nil {
		return 0, err
	}

	return len(reviews), nil
}
