package resume

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"talentscout/interview/internal/models"
)

// DefaultMaxBytes caps uploaded resumes.
const DefaultMaxBytes = 5 << 20

// Extractor turns an uploaded file into plain text.
type Extractor interface {
	Extract(fileName string, data []byte) (string, error)
}

// PlainTextExtractor accepts text documents only.
type PlainTextExtractor struct {
	MaxBytes int
}

var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".text":     true,
}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{MaxBytes: DefaultMaxBytes}
}

func (e *PlainTextExtractor) Extract(fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !textExtensions[ext] {
		return "", fmt.Errorf("%w: unsupported file type %q, upload a text resume", models.ErrValidation, ext)
	}
	if e.MaxBytes > 0 && len(data) > e.MaxBytes {
		return "", fmt.Errorf("%w: resume exceeds %d bytes", models.ErrValidation, e.MaxBytes)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: resume is not valid UTF-8 text", models.ErrValidation)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: resume is empty", models.ErrValidation)
	}
	return text, nil
}
