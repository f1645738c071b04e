// Package document defines the ordered text-block view of a manuscript that
// the citation engine consumes. Parsing a source format (docx, PDF) into
// blocks is the caller's job; the engine only reads this representation.
package document

// BlockKind distinguishes paragraph text from table-cell text and opaque
// placeholders such as inline images.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindTableCell
	KindPlaceholder
)

// Block is one ordered unit of document content.
type Block struct {
	// Index is the stable position of the block in the document.
	Index int

	// Text is the block's plain text content.
	Text string

	// Kind indicates whether this is a paragraph, table cell, or placeholder.
	Kind BlockKind
}

// IsTableCell reports whether the block came from a table cell.
func (b Block) IsTableCell() bool {
	return b.Kind == KindTableCell
}

// Document is an ordered sequence of blocks. The engine never mutates it.
type Document struct {
	Blocks []Block
}

// Paragraphs returns the paragraph blocks in document order.
func (d *Document) Paragraphs() []Block {
	out := make([]Block, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Kind == KindParagraph {
			out = append(out, b)
		}
	}
	return out
}

// TableCells returns the table-cell blocks in document order.
func (d *Document) TableCells() []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.IsTableCell() {
			out = append(out, b)
		}
	}
	return out
}
