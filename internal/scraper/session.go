package scraper

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"CheeseAgent/internal/domain"
	"CheeseAgent/internal/fetcher"
	"CheeseAgent/internal/ports"
)

// PayloadValidator persists one payload and enforces the acceptance
// criteria, returning the saved file's path.
type PayloadValidator interface {
	ValidateAndSave(payload, filename string) (string, error)
}

// Session discovers candidates by walking the configured categories through
// a rendered-page fetcher. A category that fails to fetch yields nothing;
// the session degrades rather than aborting.
type Session struct {
	fetcher    fetcher.PageFetcher
	validator  PayloadValidator
	categories []string
	logger     *slog.Logger
	now        func() time.Time
}

var _ ports.CandidateSource = (*Session)(nil)

// NewSession resolves the configured fetcher from the registry and binds it
// to the validator and category list.
func NewSession(reg *fetcher.Registry, name string, validator PayloadValidator, categories []string, log *slog.Logger) (*Session, error) {
	f, err := reg.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("resolve fetcher: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}

	return &Session{
		fetcher:    f,
		validator:  validator,
		categories: categories,
		logger:     log,
		now:        time.Now,
	}, nil
}

// Discover iterates the category list in order, funnels every payload
// through the validator, and assembles accepted files into candidates,
// stopping once target is reached.
func (s *Session) Discover(ctx context.Context, target int) ([]domain.Candidate, error) {
	if target <= 0 {
		return nil, nil
	}

	// +1 so integer division never starves the last categories.
	perCategory := target/len(s.categories) + 1

	s.info("starting candidate search", "target", target, "categories", len(s.categories))

	var found []domain.Candidate
	for _, category := range s.categories {
		if len(found) >= target {
			break
		}

		payloads, err := s.fetcher.Fetch(ctx, category, perCategory)
		if err != nil {
			s.warn("category fetch failed", "category", category, "error", err)
			continue
		}

		for _, payload := range payloads {
			if len(found) >= target {
				break
			}

			filename := payloadFilename(category, payload)
			path, err := s.validator.ValidateAndSave(payload, filename)
			if err != nil {
				continue
			}

			found = append(found, Assemble(path, category, s.now()))
			s.info("found candidate", "file", filename, "category", category)
		}
	}

	s.info("discovery session finished", "candidates", len(found))
	return found, nil
}

// payloadFilename derives a content-addressed name so identical payloads
// map to the same file.
func payloadFilename(category, payload string) string {
	sum := md5.Sum([]byte(payload))
	hash := hex.EncodeToString(sum[:])[:10]
	return fmt.Sprintf("%s_%s.jpg", strings.ReplaceAll(category, " ", "_"), hash)
}

func (s *Session) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Session) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
