package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/rfpflow/internal/domain"
)

// extractPDF concatenates per-page text strictly in page order, one newline
// per page boundary. Content streams are read sequentially (the pdfcpu
// context is not safe for concurrent access), then decoded concurrently;
// output position is fixed by page index, not completion order.
func extractPDF(ctx context.Context, data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}

	raw := make([][]byte, pdfCtx.PageCount)
	for p := 1; p <= pdfCtx.PageCount; p++ {
		r, err := pdfcpu.ExtractPageContent(pdfCtx, p)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", domain.ErrCorruptDocument, p, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", domain.ErrCorruptDocument, p, err)
		}
		raw[p-1] = content
	}

	texts := make([]string, len(raw))
	g, gctx := errgroup.WithContext(ctx)
	for i := range raw {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts[i] = decodePageText(raw[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("extract pdf pages: %w", err)
	}

	return strings.Join(texts, "\n"), nil
}

// decodePageText pulls the text show operands (Tj, TJ, ', ") out of a page
// content stream. Line advance operators become newlines; the normalizer
// owns all further whitespace cleanup.
func decodePageText(content []byte) string {
	var out strings.Builder
	var args []string

	n := len(content)
	i := 0
	for i < n {
		c := content[i]
		switch {
		case c == '(':
			s, next := parseLiteralString(content, i)
			args = append(args, s)
			i = next
		case c == '<':
			if i+1 < n && content[i+1] == '<' {
				i += 2
				continue
			}
			// Hex string: usually glyph codes from an embedded font subset,
			// not recoverable without the font's cmap. Skip.
			for i < n && content[i] != '>' {
				i++
			}
			i++
		case c == '%':
			for i < n && content[i] != '\n' {
				i++
			}
		case c == '\'' || c == '"':
			args = flushText(&out, args, "\n")
			i++
		case isOperatorChar(c):
			j := i
			for j < n && isOperatorChar(content[j]) {
				j++
			}
			switch string(content[i:j]) {
			case "Tj", "TJ":
				args = flushText(&out, args, " ")
			case "Td", "TD", "T*":
				out.WriteByte('\n')
				args = args[:0]
			default:
				args = args[:0]
			}
			i = j
		default:
			i++
		}
	}

	return out.String()
}

func flushText(out *strings.Builder, args []string, sep string) []string {
	for _, a := range args {
		out.WriteString(a)
	}
	if len(args) > 0 {
		out.WriteString(sep)
	}
	return args[:0]
}

// parseLiteralString reads a PDF literal string starting at the opening
// paren, handling balanced nesting and backslash escapes. Returns the
// decoded string and the index just past the closing paren.
func parseLiteralString(content []byte, start int) (string, int) {
	var b strings.Builder
	depth := 0
	i := start
	n := len(content)
	for i < n {
		c := content[i]
		switch c {
		case '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
			i++
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
			i++
		case '\\':
			if i+1 >= n {
				return b.String(), n
			}
			i++
			switch e := content[i]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
				// ignore
			case '(', ')', '\\':
				b.WriteByte(e)
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && i+1 < n && content[i+1] >= '0' && content[i+1] <= '7'; k++ {
						i++
						v = v*8 + int(content[i]-'0')
					}
					b.WriteByte(byte(v))
				} else {
					b.WriteByte(e)
				}
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), n
}

func isOperatorChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '*'
}
