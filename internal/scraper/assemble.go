package scraper

import (
	"path/filepath"
	"time"

	"CheeseAgent/internal/domain"
)

// Assemble builds the Candidate record for one validated file. Construction
// is pure and cannot fail: tags and context are fixed apart from the
// category and the scrape date.
func Assemble(filePath, category string, scrapedAt time.Time) domain.Candidate {
	return domain.Candidate{
		ID:       filepath.Base(filePath),
		FilePath: filePath,
		Category: category,
		Tags:     []string{"cheese", category},
		Context: []domain.ContextEntry{
			{Key: "source", Value: "google-images"},
			{Key: "license", Value: "creative-commons"},
			{Key: "scrape_date", Value: scrapedAt.Format("2006-01-02")},
		},
	}
}
