package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jackzampolin/citecheck/internal/extract"
	"github.com/jackzampolin/citecheck/internal/fetch"
)

func testPromptData() promptData {
	return promptData{
		citation:  extract.Citation{ID: "[1]", Ordinal: 1},
		reference: &extract.Reference{RawText: "[1] Smith. A Paper. 2020.", Ordinal: 1},
		context:   "The approach of [1] is extended here.",
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("base_sections", func(t *testing.T) {
		p := buildPrompt(testPromptData(), 0)
		for _, want := range []string{
			"Citation marker: [1]",
			"Reference entry: [1] Smith. A Paper. 2020.",
			"Citation context: The approach of [1] is extended here.",
			"1. Relevance:",
			"2. Reasoning:",
			"3. Issues:",
		} {
			if !strings.Contains(p, want) {
				t.Errorf("prompt missing %q", want)
			}
		}
		if strings.Contains(p, "Reference paper information") {
			t.Error("metadata section present without fetched info")
		}
		if strings.Contains(p, "full text") {
			t.Error("content section present without fetched content")
		}
	})

	t.Run("with_metadata", func(t *testing.T) {
		d := testPromptData()
		d.info = fetch.PaperInfo{Title: "A Paper", Abstract: "We study things."}
		p := buildPrompt(d, 0)
		if !strings.Contains(p, "Title: A Paper") || !strings.Contains(p, "Abstract: We study things.") {
			t.Errorf("metadata section malformed:\n%s", p)
		}
	})

	t.Run("with_content_preview", func(t *testing.T) {
		d := testPromptData()
		d.content = strings.Repeat("w", contentPreviewChars+50)
		p := buildPrompt(d, 0)
		if !strings.Contains(p, "Paper full text") {
			t.Error("content section missing")
		}
		if strings.Contains(p, strings.Repeat("w", contentPreviewChars+1)) {
			t.Error("content preview not bounded")
		}

		d.content = strings.Repeat("正文", contentPreviewChars)
		p = buildPrompt(d, 0)
		if !utf8.ValidString(p) {
			t.Error("preview cut split a rune")
		}
		if strings.Contains(p, strings.Repeat("正文", contentPreviewChars/2+1)) {
			t.Error("multibyte content preview not bounded")
		}
	})

	t.Run("unresolved_identifier_note", func(t *testing.T) {
		d := testPromptData()
		d.reference.DOI = "10.1/x"
		p := buildPrompt(d, 0)
		note := strings.Index(p, "neither could be resolved")
		if note < 0 {
			t.Fatal("unresolved-identifier note missing")
		}
		// Evidence precedes the answer-format instructions.
		if instr := strings.Index(p, "Answer strictly"); note > instr {
			t.Error("note appears after the answer-format instructions")
		}

		d.info = fetch.PaperInfo{Title: "Found"}
		p = buildPrompt(d, 0)
		if strings.Contains(p, "neither could be resolved") {
			t.Error("note present although metadata was resolved")
		}
	})

	t.Run("truncation", func(t *testing.T) {
		const max = 120
		p := buildPrompt(testPromptData(), max)
		if !strings.HasSuffix(p, truncationNotice) {
			t.Fatalf("truncated prompt missing notice: %q", p)
		}
		want := max + utf8.RuneCountInString(truncationNotice)
		if got := utf8.RuneCountInString(p); got != want {
			t.Errorf("prompt = %d characters, want %d", got, want)
		}
	})

	t.Run("truncation_counts_characters", func(t *testing.T) {
		// The cap is a character count: a Chinese context must keep the
		// same coverage as an ASCII one and the cut never splits a rune.
		d := testPromptData()
		d.context = strings.Repeat("这是一段中文语境。", 500)
		const max = 600
		p := buildPrompt(d, max)
		if !utf8.ValidString(p) {
			t.Fatal("truncated prompt is not valid UTF-8")
		}
		want := max + utf8.RuneCountInString(truncationNotice)
		if got := utf8.RuneCountInString(p); got != want {
			t.Errorf("prompt = %d characters, want %d", got, want)
		}
	})
}
