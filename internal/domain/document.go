package domain

import (
	"path/filepath"
	"strings"
)

// KeyPrefix namespaces all keys written to the shared store.
const KeyPrefix = "rfpflow:"

// FileType is the declared document format.
type FileType string

// Accepted document formats. Plain is produced internally for raw text
// payloads; uploads are gated to PDF and DOCX by extension.
const (
	FileTypePDF   FileType = "pdf"
	FileTypeDOCX  FileType = "docx"
	FileTypePlain FileType = "plain"
)

// Document is one uploaded procurement document. Immutable once received,
// request-scoped.
type Document struct {
	Data     []byte
	Type     FileType
	Filename string
}

// FileTypeFromFilename resolves the document type from the upload filename.
// Only .pdf and .docx are accepted; anything else is rejected before the
// pipeline runs.
func FileTypeFromFilename(name string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FileTypePDF, nil
	case ".docx":
		return FileTypeDOCX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Chunk is a bounded slice of normalized document text used as a retrieval
// unit. Index is the stable position within the source document.
type Chunk struct {
	Index int
	Text  string
}
