package fetch

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// extractTextPrefix returns the text of the first maxPages pages of a PDF.
// Text is recovered from the page content streams' show-text operators,
// which is rough but sufficient for topical relevance prompts.
func extractTextPrefix(path string, maxPages int) (string, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	pages := ctx.PageCount
	if pages > maxPages {
		pages = maxPages
	}

	var sb strings.Builder
	for p := 1; p <= pages; p++ {
		r, err := pdfcpu.ExtractPageContent(ctx, p)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		if text := decodeShowTextOps(data); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// decodeShowTextOps pulls string literals out of a content stream. It keeps
// literals that precede Tj/TJ/' show operators and ignores everything else
// (hex strings, names, inline images).
func decodeShowTextOps(content []byte) string {
	var (
		sb       strings.Builder
		literal  strings.Builder
		inStr    bool
		escape   bool
		depth    int
		inArray  bool
		arrayBuf []string
	)

	shown := func(rest []byte) bool {
		// A literal counts as text when a show operator follows it closely.
		tail := rest
		if len(tail) > 8 {
			tail = tail[:8]
		}
		s := strings.TrimSpace(string(tail))
		return strings.HasPrefix(s, "Tj") || strings.HasPrefix(s, "TJ") || strings.HasPrefix(s, "'")
	}

	flush := func(rest []byte) {
		switch {
		case inArray:
			arrayBuf = append(arrayBuf, literal.String())
		case shown(rest):
			sb.WriteString(literal.String())
			sb.WriteString(" ")
		}
		literal.Reset()
	}

	for i := 0; i < len(content); i++ {
		c := content[i]
		if !inStr {
			switch c {
			case '(':
				inStr = true
				depth = 1
				literal.Reset()
			case '[':
				inArray = true
				arrayBuf = arrayBuf[:0]
			case ']':
				if inArray && shown(content[i+1:]) {
					sb.WriteString(strings.Join(arrayBuf, " "))
					sb.WriteString(" ")
				}
				inArray = false
			}
			continue
		}
		if escape {
			switch c {
			case 'n':
				literal.WriteByte('\n')
			case 't':
				literal.WriteByte('\t')
			case '(', ')', '\\':
				literal.WriteByte(c)
			}
			escape = false
			continue
		}
		switch c {
		case '\\':
			escape = true
		case '(':
			depth++
			literal.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				inStr = false
				flush(content[i+1:])
			} else {
				literal.WriteByte(c)
			}
		default:
			literal.WriteByte(c)
		}
	}
	return strings.TrimSpace(sb.String())
}
