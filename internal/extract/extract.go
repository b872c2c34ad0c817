// Package extract converts raw document bytes into plain text by declared
// format. It is the first pipeline stage and has no side effects beyond
// allocating the returned text.
package extract

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/rfpflow/internal/domain"
)

// Extractor converts document bytes into plain text.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of the document.
// Returns domain.ErrUnsupportedFormat for a type outside the accepted set and
// domain.ErrCorruptDocument when the byte stream cannot be parsed.
func (e *Extractor) Extract(ctx context.Context, data []byte, typ domain.FileType) (string, error) {
	switch typ {
	case domain.FileTypePDF:
		return extractPDF(ctx, data)
	case domain.FileTypeDOCX:
		return extractDOCX(data)
	case domain.FileTypePlain:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid utf-8", domain.ErrCorruptDocument)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, typ)
	}
}
