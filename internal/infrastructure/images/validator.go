package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	maxPayloadBytes = 10 << 20
	minWidth        = 100
	minHeight       = 100
)

var (
	// ErrMalformedPayload marks payloads missing the header separator.
	ErrMalformedPayload = errors.New("payload has no header separator")
	// ErrPayloadTooLarge marks decoded payloads above the 10 MiB ceiling.
	ErrPayloadTooLarge = errors.New("decoded payload exceeds size ceiling")
	// ErrImageTooSmall marks images below the 100x100 dimension floor.
	ErrImageTooSmall = errors.New("image below minimum dimensions")
)

// Validator decodes inline payloads and persists the ones that pass the
// acceptance criteria into its output directory. Rejected files never stay
// on disk.
type Validator struct {
	outputDir string
	logger    *slog.Logger
}

// NewValidator creates the output directory and returns a validator bound
// to it.
func NewValidator(outputDir string, log *slog.Logger) (*Validator, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Validator{outputDir: outputDir, logger: log}, nil
}

// ValidateAndSave splits the payload at the first separator, decodes the
// body, enforces the size ceiling before any write, persists the bytes
// under filename, and enforces the dimension floor on the written file.
// It returns the saved file's path, or an error describing the rejection.
func (v *Validator) ValidateAndSave(payload, filename string) (string, error) {
	_, encoded, found := strings.Cut(payload, ",")
	if !found {
		v.warn("skipping malformed payload", "file", filename)
		return "", ErrMalformedPayload
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		v.warn("skipping undecodable payload", "file", filename, "error", err)
		return "", fmt.Errorf("decode payload: %w", err)
	}

	if len(raw) > maxPayloadBytes {
		v.warn("skipping oversized payload", "file", filename, "bytes", len(raw))
		return "", ErrPayloadTooLarge
	}

	path := filepath.Join(v.outputDir, filename)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	width, height, err := imageDimensions(path)
	if err != nil {
		_ = os.Remove(path)
		v.warn("skipping unreadable image", "file", filename, "error", err)
		return "", fmt.Errorf("read image dimensions: %w", err)
	}

	if width < minWidth || height < minHeight {
		_ = os.Remove(path)
		v.warn("skipping small image", "file", filename, "width", width, "height", height)
		return "", ErrImageTooSmall
	}

	return path, nil
}

func imageDimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func (v *Validator) warn(msg string, args ...any) {
	if v.logger != nil {
		v.logger.Warn(msg, args...)
	}
}
