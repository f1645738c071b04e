package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackzampolin/citecheck/internal/extract"
	"github.com/jackzampolin/citecheck/internal/fetch"
)

// contentPreviewChars bounds how much fetched full text goes into a prompt
// before overall truncation.
const contentPreviewChars = 2000

// truncationNotice is appended when a prompt is cut at the length cap.
const truncationNotice = "\n\n...(content truncated)"

// promptData carries everything available for one citation's judgment.
type promptData struct {
	citation  extract.Citation
	reference *extract.Reference
	context   string
	info      fetch.PaperInfo
	content   string
}

// buildPrompt renders the relevance-judgment prompt. Sections for paper
// metadata and full text appear only when something was fetched; the whole
// prompt is truncated to maxChars.
func buildPrompt(d promptData, maxChars int) string {
	var sb strings.Builder

	sb.WriteString("Analyze whether the following citation in an academic manuscript is topically relevant to its surrounding text.\n\n")
	fmt.Fprintf(&sb, "Citation marker: %s\n", d.citation.ID)
	fmt.Fprintf(&sb, "Reference entry: %s\n", d.reference.RawText)
	fmt.Fprintf(&sb, "Citation context: %s\n", d.context)

	if !d.info.Empty() {
		title := valueOrNone(d.info.Title)
		abstract := valueOrNone(d.info.Abstract)
		fmt.Fprintf(&sb, "\nReference paper information:\nTitle: %s\nAbstract: %s\n", title, abstract)
	}

	if d.content != "" {
		preview := d.content
		if utf8.RuneCountInString(preview) > contentPreviewChars {
			preview = truncateRunes(preview, contentPreviewChars) + "..."
		}
		fmt.Fprintf(&sb, "\nPaper full text (first pages):\n%s\n", preview)
	}

	if d.info.Empty() && (d.reference.DOI != "" || d.reference.URL != "") {
		fmt.Fprintf(&sb, "\nNote: this reference lists DOI %s and URL %s, but neither could be resolved to paper metadata.\n",
			valueOrNone(d.reference.DOI), valueOrNone(d.reference.URL))
	}

	sb.WriteString(`
Answer strictly in this format:
1. Relevance: relevant / not relevant
2. Reasoning: explain how the cited paper's topic relates (or fails to relate) to what the context discusses
3. Issues: write "none" if relevant, otherwise point out the likely correct citation or the specific problem

Keep the answer concise and follow the format exactly.
`)

	prompt := sb.String()
	if maxChars > 0 && utf8.RuneCountInString(prompt) > maxChars {
		prompt = truncateRunes(prompt, maxChars) + truncationNotice
	}
	return prompt
}

// truncateRunes cuts s to at most max characters without splitting a rune.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func valueOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
