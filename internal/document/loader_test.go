package document

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manuscript.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("paragraphs", func(t *testing.T) {
		doc, err := LoadFile(writeDoc(t, "First paragraph\nspanning two lines.\n\nSecond paragraph.\n"))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		paras := doc.Paragraphs()
		if len(paras) != 2 {
			t.Fatalf("got %d paragraphs, want 2", len(paras))
		}
		if paras[0].Text != "First paragraph spanning two lines." {
			t.Errorf("paragraph 0 = %q", paras[0].Text)
		}
		if paras[1].Text != "Second paragraph." {
			t.Errorf("paragraph 1 = %q", paras[1].Text)
		}
	})

	t.Run("table_rows", func(t *testing.T) {
		doc, err := LoadFile(writeDoc(t, "| Method | Score |\n|---|---|\n| Ours [3] | 0.91 |\n"))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		cells := doc.TableCells()
		want := []string{"Method", "Score", "Ours [3]", "0.91"}
		if len(cells) != len(want) {
			t.Fatalf("got %d cells (%v), want %d", len(cells), cells, len(want))
		}
		for i, c := range cells {
			if c.Text != want[i] {
				t.Errorf("cell %d = %q, want %q", i, c.Text, want[i])
			}
			if !c.IsTableCell() {
				t.Errorf("cell %d not reported as table cell", i)
			}
		}
		for _, b := range doc.Paragraphs() {
			if b.IsTableCell() {
				t.Errorf("paragraph %d reported as table cell", b.Index)
			}
		}
	})

	t.Run("image_placeholder", func(t *testing.T) {
		doc, err := LoadFile(writeDoc(t, "Before.\n\n![figure 1](fig1.png)\n\nAfter.\n"))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if len(doc.Blocks) != 3 {
			t.Fatalf("got %d blocks, want 3", len(doc.Blocks))
		}
		if doc.Blocks[1].Kind != KindPlaceholder || doc.Blocks[1].Text != ImagePlaceholder {
			t.Errorf("block 1 = %+v", doc.Blocks[1])
		}
	})

	t.Run("indices_sequential", func(t *testing.T) {
		doc, err := LoadFile(writeDoc(t, "One.\n\n| a | b |\n\nTwo.\n"))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		for i, b := range doc.Blocks {
			if b.Index != i {
				t.Fatalf("block %d has Index %d", i, b.Index)
			}
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.md")); err == nil {
			t.Fatal("LoadFile: want error for missing file")
		}
	})

	t.Run("empty_file", func(t *testing.T) {
		doc, err := LoadFile(writeDoc(t, ""))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if len(doc.Blocks) != 0 {
			t.Fatalf("got %d blocks, want 0", len(doc.Blocks))
		}
	})
}
