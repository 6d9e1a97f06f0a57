package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractPayloads scans the page snapshot for wrapper elements holding an
// image backed by an inline data URI. Each distinct payload is collected
// once, in document order, up to limit (limit <= 0 means unbounded).
// Wrappers without a usable data URI are skipped.
func extractPayloads(html string, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	seen := map[string]struct{}{}
	var payloads []string

	doc.Find("g-img img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok || !strings.HasPrefix(src, "data:image") {
			return true
		}
		if _, dup := seen[src]; dup {
			return true
		}
		seen[src] = struct{}{}
		payloads = append(payloads, src)
		return limit <= 0 || len(payloads) < limit
	})

	return payloads, nil
}
