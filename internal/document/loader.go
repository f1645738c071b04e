package document

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ImagePlaceholder is the text stored for non-textual inline content.
const ImagePlaceholder = "[image]"

// LoadFile reads a UTF-8 plain-text or markdown manuscript into an ordered
// block sequence. Paragraphs are separated by blank lines. Lines that look
// like markdown table rows become one table-cell block per cell. Image
// references collapse to an opaque placeholder block.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc := &Document{}
	var para []string

	flush := func() {
		if len(para) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(para, " "))
		para = para[:0]
		if text == "" {
			return
		}
		doc.Blocks = append(doc.Blocks, Block{
			Index: len(doc.Blocks),
			Text:  text,
			Kind:  KindParagraph,
		})
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flush()

		case isTableRow(trimmed):
			flush()
			for _, cell := range splitTableRow(trimmed) {
				doc.Blocks = append(doc.Blocks, Block{
					Index: len(doc.Blocks),
					Text:  cell,
					Kind:  KindTableCell,
				})
			}

		case isImageLine(trimmed):
			flush()
			doc.Blocks = append(doc.Blocks, Block{
				Index: len(doc.Blocks),
				Text:  ImagePlaceholder,
				Kind:  KindPlaceholder,
			})

		default:
			para = append(para, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	flush()

	return doc, nil
}

// isTableRow matches markdown-style table rows: |a|b|c|
func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|") && strings.Count(line, "|") >= 2
}

// isImageLine matches markdown image syntax and bare placeholders.
func isImageLine(line string) bool {
	return line == ImagePlaceholder || strings.HasPrefix(line, "![")
}

func splitTableRow(line string) []string {
	parts := strings.Split(strings.Trim(line, "|"), "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cell := strings.TrimSpace(p)
		if cell == "" || isSeparatorCell(cell) {
			continue
		}
		cells = append(cells, cell)
	}
	return cells
}

// isSeparatorCell matches markdown header separator cells like "---" or ":--:".
func isSeparatorCell(cell string) bool {
	for _, r := range cell {
		if r != '-' && r != ':' {
			return false
		}
	}
	return true
}
