package extract

import (
	"reflect"
	"testing"

	"github.com/jackzampolin/citecheck/internal/document"
)

func doc(texts ...string) *document.Document {
	d := &document.Document{}
	for i, t := range texts {
		d.Blocks = append(d.Blocks, document.Block{Index: i, Text: t, Kind: document.KindParagraph})
	}
	return d
}

func TestExpandMarkers(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		got := ExpandMarkers("as shown in [3].")
		if !reflect.DeepEqual(got, []int{3}) {
			t.Fatalf("ExpandMarkers() = %v, want [3]", got)
		}
	})

	t.Run("range", func(t *testing.T) {
		got := ExpandMarkers("prior work [2-5] agrees")
		if !reflect.DeepEqual(got, []int{2, 3, 4, 5}) {
			t.Fatalf("ExpandMarkers() = %v, want [2 3 4 5]", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, ord := range ExpandMarkers("[2-4]") {
			again := ExpandMarkers(CitationID(ord))
			if !reflect.DeepEqual(again, []int{ord}) {
				t.Fatalf("re-expansion of %s = %v, want [%d]", CitationID(ord), again, ord)
			}
		}
	})

	t.Run("mixed", func(t *testing.T) {
		got := ExpandMarkers("see [1], [3-4] and [7]")
		if !reflect.DeepEqual(got, []int{1, 3, 4, 7}) {
			t.Fatalf("ExpandMarkers() = %v", got)
		}
	})
}

func TestExtract(t *testing.T) {
	t.Run("body_reference_split", func(t *testing.T) {
		d := doc(
			"Intro citing [1] and [2-3].",
			"More body text [2].",
			"References",
			"[1] Smith, J. Some paper. doi:10.1234/abc",
			"[2] Jones, K. Another paper. https://proceedings/paper42",
			"[3] Lee, M. Third paper.",
		)
		res := Extract(d)

		if res.HeadingIndex != 2 {
			t.Fatalf("HeadingIndex = %d, want 2", res.HeadingIndex)
		}
		wantIDs := []string{"[1]", "[2]", "[3]"}
		if len(res.Citations) != len(wantIDs) {
			t.Fatalf("got %d citations, want %d", len(res.Citations), len(wantIDs))
		}
		for i, c := range res.Citations {
			if c.ID != wantIDs[i] {
				t.Errorf("citation %d = %s, want %s", i, c.ID, wantIDs[i])
			}
		}
		if len(res.References) != 3 {
			t.Fatalf("got %d references, want 3", len(res.References))
		}
		if res.References[0].DOI != "10.1234/abc" {
			t.Errorf("DOI = %q, want 10.1234/abc", res.References[0].DOI)
		}
		if res.References[1].URL != "https://proceedings/paper42" {
			t.Errorf("URL = %q", res.References[1].URL)
		}
		if res.References[2].Ordinal != 3 {
			t.Errorf("ordinal = %d, want 3", res.References[2].Ordinal)
		}
	})

	t.Run("no_heading_is_all_body", func(t *testing.T) {
		d := doc("Text with [1] and [2].", "More text [3].")
		res := Extract(d)
		if res.HeadingIndex != -1 {
			t.Fatalf("HeadingIndex = %d, want -1", res.HeadingIndex)
		}
		if len(res.References) != 0 {
			t.Fatalf("got %d references, want 0", len(res.References))
		}
		if len(res.Citations) != 3 {
			t.Fatalf("got %d citations, want 3", len(res.Citations))
		}
	})

	t.Run("chinese_heading", func(t *testing.T) {
		d := doc("正文 [1]。", "参考文献", "[1] 王某. 论文题目.")
		res := Extract(d)
		if res.HeadingIndex != 1 {
			t.Fatalf("HeadingIndex = %d, want 1", res.HeadingIndex)
		}
		if len(res.References) != 1 {
			t.Fatalf("got %d references, want 1", len(res.References))
		}
	})

	t.Run("markers_after_heading_ignored", func(t *testing.T) {
		d := doc("Body [1].", "References", "[1] Entry.", "[9] Entry never cited.")
		res := Extract(d)
		if len(res.Citations) != 1 || res.Citations[0].Ordinal != 1 {
			t.Fatalf("citations = %v", res.Citations)
		}
	})

	t.Run("unnumbered_reference", func(t *testing.T) {
		d := doc("Body [1].", "References", "Smith, J. No leading ordinal here.")
		res := Extract(d)
		if len(res.References) != 1 {
			t.Fatalf("got %d references", len(res.References))
		}
		if res.References[0].Numbered() {
			t.Error("reference without leading [n] should not be numbered")
		}
	})
}

func TestInRangeMarker(t *testing.T) {
	tests := []struct {
		name    string
		ordinal int
		text    string
		want    bool
	}{
		{"inside", 2, "see [1-3] for details", true},
		{"boundary_low", 1, "see [1-3]", true},
		{"boundary_high", 3, "see [1-3]", true},
		{"outside", 4, "see [1-3]", false},
		{"no_range", 2, "see [2]", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InRangeMarker(tt.ordinal, tt.text); got != tt.want {
				t.Errorf("InRangeMarker(%d, %q) = %v, want %v", tt.ordinal, tt.text, got, tt.want)
			}
		})
	}
}

func TestReferenceFor(t *testing.T) {
	d := doc("Body [1] [2].", "References", "[1] First.", "[2] Second.")
	res := Extract(d)

	ref := res.ReferenceFor(Citation{ID: "[2]", Ordinal: 2})
	if ref == nil || ref.RawText != "[2] Second." {
		t.Fatalf("ReferenceFor([2]) = %v", ref)
	}
	if res.ReferenceFor(Citation{ID: "[5]", Ordinal: 5}) != nil {
		t.Error("ReferenceFor([5]) should be nil")
	}
}
