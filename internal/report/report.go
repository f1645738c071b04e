package report

import (
	"github.com/jackzampolin/citecheck/internal/extract"
	"github.com/jackzampolin/citecheck/internal/resolve"
)

// CitationResult is one citation's relevance judgment with the context it
// was judged against.
type CitationResult struct {
	Citation extract.Citation `json:"citation" yaml:"citation"`
	Context  resolve.Context  `json:"context" yaml:"context"`
	Analysis string           `json:"analysis" yaml:"analysis"`
}

// Report is the ordered payload handed to a presentation layer. The engine
// is agnostic to how it is rendered.
type Report struct {
	// MissingCitations are markers with no numbered reference entry.
	MissingCitations []extract.Citation `json:"missing_citations" yaml:"missing_citations"`

	// UnusedReferences are numbered entries never cited in the body.
	UnusedReferences []extract.Reference `json:"unused_references" yaml:"unused_references"`

	// Results holds one entry per citation, ordinals strictly increasing.
	Results []CitationResult `json:"results" yaml:"results"`
}
