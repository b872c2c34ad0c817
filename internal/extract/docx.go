package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/rfpflow/internal/domain"
)

// extractDOCX concatenates paragraph text in document order, one newline per
// paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: missing word/document.xml", domain.ErrCorruptDocument)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}
	defer rc.Close()

	paragraphs, err := parseParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}

	return strings.Join(paragraphs, "\n"), nil
}

// parseParagraphs streams word/document.xml collecting the character data of
// w:t runs, grouped by enclosing w:p paragraph.
func parseParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = true
			case "tab":
				if inParagraph {
					current.WriteByte('\t')
				}
			case "br":
				if inParagraph {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				inParagraph = false
				paragraphs = append(paragraphs, current.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
