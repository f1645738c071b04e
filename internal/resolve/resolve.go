// Package resolve finds the best textual context around a citation marker.
//
// Resolution prefers paragraph-level context because it best approximates
// what the author was saying when they cited; table cells come next, and a
// raw character window is the last resort for irregular documents.
package resolve

import (
	"strings"
	"unicode/utf8"

	"github.com/jackzampolin/citecheck/internal/document"
	"github.com/jackzampolin/citecheck/internal/extract"
)

// Source identifies which fallback level produced the context.
type Source string

const (
	SourceParagraph  Source = "paragraph"
	SourceTableCell  Source = "table_cell"
	SourceCharWindow Source = "char_window"
	SourceNone       Source = "none"
)

// charWindowRadius is the fallback window size on each side of the marker.
const charWindowRadius = 100

// Context is the resolved text surrounding one citation marker.
type Context struct {
	Citation extract.Citation `json:"citation" yaml:"citation"`
	Text     string           `json:"text" yaml:"text"`
	Source   Source           `json:"source" yaml:"source"`
}

// Resolver resolves contexts against one document. It is read-only over the
// document and safe for concurrent use.
type Resolver struct {
	body   []document.Block // body paragraphs, in order
	cells  []document.Block // table cells, in order
	joined string           // all text, for the character fallback
}

// New builds a resolver. headingIndex is the reference-section block index
// from extraction, or -1 when the document has no reference section.
func New(doc *document.Document, headingIndex int) *Resolver {
	r := &Resolver{}
	var all []string
	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.KindParagraph:
			if headingIndex < 0 || b.Index < headingIndex {
				r.body = append(r.body, b)
			}
			all = append(all, b.Text)
		case document.KindTableCell:
			r.cells = append(r.cells, b)
			all = append(all, b.Text)
		}
	}
	r.joined = strings.Join(all, "\n")
	return r
}

// Resolve returns the most specific available context for the citation.
// Text is empty when the marker appears nowhere in the document.
func (r *Resolver) Resolve(c extract.Citation) Context {
	if ctx, ok := r.paragraphContext(c); ok {
		return ctx
	}
	if ctx, ok := r.tableContext(c); ok {
		return ctx
	}
	return r.charWindow(c)
}

// paragraphContext finds the first body paragraph containing the marker,
// either literally or inside a surviving range marker, and widens it with
// one adjacent non-empty paragraph on each side.
func (r *Resolver) paragraphContext(c extract.Citation) (Context, bool) {
	for i, b := range r.body {
		if !blockMentions(c, b.Text) {
			continue
		}
		var parts []string
		if i > 0 {
			if prev := strings.TrimSpace(r.body[i-1].Text); prev != "" {
				parts = append(parts, prev)
			}
		}
		parts = append(parts, strings.TrimSpace(b.Text))
		if i+1 < len(r.body) {
			if next := strings.TrimSpace(r.body[i+1].Text); next != "" {
				parts = append(parts, next)
			}
		}
		return Context{Citation: c, Text: strings.Join(parts, " "), Source: SourceParagraph}, true
	}
	return Context{}, false
}

func (r *Resolver) tableContext(c extract.Citation) (Context, bool) {
	for _, b := range r.cells {
		if blockMentions(c, b.Text) {
			return Context{Citation: c, Text: strings.TrimSpace(b.Text), Source: SourceTableCell}, true
		}
	}
	return Context{}, false
}

// charWindow extracts a fixed-radius window around the first literal
// occurrence of the marker in the concatenated document text. The radius
// counts characters, not bytes, so multibyte text gets the same coverage
// and the window never splits a rune.
func (r *Resolver) charWindow(c extract.Citation) Context {
	pos := strings.Index(r.joined, c.ID)
	if pos < 0 {
		return Context{Citation: c, Source: SourceNone}
	}
	start := pos
	for i := 0; i < charWindowRadius && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(r.joined[:start])
		start -= size
	}
	end := pos + len(c.ID)
	for i := 0; i < charWindowRadius && end < len(r.joined); i++ {
		_, size := utf8.DecodeRuneInString(r.joined[end:])
		end += size
	}
	return Context{Citation: c, Text: r.joined[start:end], Source: SourceCharWindow}
}

func blockMentions(c extract.Citation, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if strings.Contains(text, c.ID) {
		return true
	}
	return extract.InRangeMarker(c.Ordinal, text)
}
