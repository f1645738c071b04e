// Package extract pulls citation markers and reference entries out of an
// ordered block document and reconciles the two sets.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackzampolin/citecheck/internal/document"
)

var (
	markerPattern  = regexp.MustCompile(`\[\d+(?:-\d+)?\]`)
	rangePattern   = regexp.MustCompile(`\[(\d+)-(\d+)\]`)
	ordinalPattern = regexp.MustCompile(`^\[(\d+)\]`)
	doiPattern     = regexp.MustCompile(`(?i)doi:\s*([^\s,.;]+)`)
	urlPattern     = regexp.MustCompile(`https?://[^\s,.;]+`)
)

// headingTokens mark the start of the reference list. The match is a substring
// check, so "References" also covers "References and Notes".
var headingTokens = []string{"References", "参考文献"}

// Citation is one canonical in-text citation marker.
type Citation struct {
	ID      string `json:"id" yaml:"id"`
	Ordinal int    `json:"ordinal" yaml:"ordinal"`
}

// Reference is one entry of the reference list. Ordinal is 0 for entries
// without a leading [n] token; those entries can never satisfy a marker.
type Reference struct {
	RawText string `json:"raw_text" yaml:"raw_text"`
	Ordinal int    `json:"ordinal,omitempty" yaml:"ordinal,omitempty"`
	DOI     string `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Numbered reports whether the entry carries a leading [n] ordinal.
func (r Reference) Numbered() bool {
	return r.Ordinal > 0
}

// Result holds everything extracted from one document.
type Result struct {
	// Citations are deduplicated canonical markers, sorted by ordinal.
	Citations []Citation

	// References are the entries of the reference region, in document order.
	References []Reference

	// HeadingIndex is the block index of the reference-section heading,
	// or -1 when no heading was found and the whole document is body.
	HeadingIndex int
}

// CitationID renders the canonical marker form for an ordinal.
func CitationID(ordinal int) string {
	return fmt.Sprintf("[%d]", ordinal)
}

// Extract scans the document once: locates the reference-section heading,
// collects markers from body paragraphs (expanding range markers), and parses
// reference entries from the region after the heading.
func Extract(doc *document.Document) *Result {
	res := &Result{HeadingIndex: findHeading(doc)}

	seen := make(map[int]bool)
	for _, b := range doc.Blocks {
		if b.Kind != document.KindParagraph {
			continue
		}
		if res.HeadingIndex >= 0 && b.Index >= res.HeadingIndex {
			break
		}
		for _, ord := range ExpandMarkers(b.Text) {
			seen[ord] = true
		}
	}
	for ord := range seen {
		res.Citations = append(res.Citations, Citation{ID: CitationID(ord), Ordinal: ord})
	}
	sort.Slice(res.Citations, func(i, j int) bool {
		return res.Citations[i].Ordinal < res.Citations[j].Ordinal
	})

	if res.HeadingIndex < 0 {
		return res
	}
	for _, b := range doc.Blocks {
		if b.Kind != document.KindParagraph || b.Index <= res.HeadingIndex {
			continue
		}
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		res.References = append(res.References, parseReference(text))
	}
	return res
}

// ExpandMarkers returns the ordinals referenced by all markers in text.
// A range marker [a-b] contributes every integer in [a,b]. Expansion is
// idempotent: expanding "[2]" yields {2} again.
func ExpandMarkers(text string) []int {
	var ords []int
	for _, m := range markerPattern.FindAllString(text, -1) {
		if r := rangePattern.FindStringSubmatch(m); r != nil {
			start, _ := strconv.Atoi(r[1])
			end, _ := strconv.Atoi(r[2])
			for i := start; i <= end; i++ {
				ords = append(ords, i)
			}
			continue
		}
		ord, err := strconv.Atoi(strings.Trim(m, "[]"))
		if err != nil {
			continue
		}
		ords = append(ords, ord)
	}
	return ords
}

// InRangeMarker reports whether ordinal falls inside any still-present range
// marker in text. Needed because range expansion is lossy: the document may
// say [1-3] while the engine asks about [2].
func InRangeMarker(ordinal int, text string) bool {
	for _, r := range rangePattern.FindAllStringSubmatch(text, -1) {
		start, _ := strconv.Atoi(r[1])
		end, _ := strconv.Atoi(r[2])
		if start <= ordinal && ordinal <= end {
			return true
		}
	}
	return false
}

// ReferenceFor returns the entry whose leading ordinal matches the citation,
// or nil when no numbered entry matches.
func (res *Result) ReferenceFor(c Citation) *Reference {
	for i := range res.References {
		if res.References[i].Ordinal == c.Ordinal {
			return &res.References[i]
		}
	}
	return nil
}

func findHeading(doc *document.Document) int {
	for _, b := range doc.Blocks {
		if b.Kind != document.KindParagraph {
			continue
		}
		for _, tok := range headingTokens {
			if strings.Contains(b.Text, tok) {
				return b.Index
			}
		}
	}
	return -1
}

func parseReference(text string) Reference {
	ref := Reference{RawText: text}
	if m := ordinalPattern.FindStringSubmatch(text); m != nil {
		ref.Ordinal, _ = strconv.Atoi(m[1])
	}
	if m := doiPattern.FindStringSubmatch(text); m != nil {
		ref.DOI = m[1]
	}
	if m := urlPattern.FindString(text); m != "" {
		ref.URL = m
	}
	return ref
}
