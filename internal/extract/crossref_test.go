package extract

import "testing"

func TestValidate(t *testing.T) {
	t.Run("missing_and_unused", func(t *testing.T) {
		// citations {[1],[2]}, references [1],[3] => missing {[2]}, unused {[3]}
		d := doc("Body [1] and [2].", "References", "[1] First.", "[3] Third.")
		v := Validate(Extract(d))

		if len(v.Missing) != 1 || v.Missing[0].ID != "[2]" {
			t.Fatalf("Missing = %v, want [[2]]", v.Missing)
		}
		if len(v.Unused) != 1 || v.Unused[0].Ordinal != 3 {
			t.Fatalf("Unused = %v, want ordinal 3", v.Unused)
		}
	})

	t.Run("all_matched", func(t *testing.T) {
		d := doc("Body [1] [2] [3].", "References", "[1] a.", "[2] b.", "[3] c.")
		v := Validate(Extract(d))
		if len(v.Missing) != 0 || len(v.Unused) != 0 {
			t.Fatalf("Missing = %v, Unused = %v, want both empty", v.Missing, v.Unused)
		}
	})

	t.Run("missing_disjoint_from_referenced", func(t *testing.T) {
		d := doc("Body [1] [2] [4] [7].", "References", "[1] a.", "[4] d.")
		res := Extract(d)
		v := Validate(res)

		referenced := make(map[int]bool)
		for _, ref := range res.References {
			if ref.Numbered() {
				referenced[ref.Ordinal] = true
			}
		}
		for _, m := range v.Missing {
			if referenced[m.Ordinal] {
				t.Errorf("missing citation %s has a reference entry", m.ID)
			}
		}
	})

	t.Run("unnumbered_excluded_from_unused", func(t *testing.T) {
		d := doc("Body [1].", "References", "[1] a.", "Smith, J. Unnumbered entry.")
		v := Validate(Extract(d))
		if len(v.Unused) != 0 {
			t.Fatalf("Unused = %v, unnumbered entries must not be reported", v.Unused)
		}
	})

	t.Run("is_missing", func(t *testing.T) {
		d := doc("Body [1] [2].", "References", "[1] a.")
		v := Validate(Extract(d))
		if !v.IsMissing(Citation{ID: "[2]", Ordinal: 2}) {
			t.Error("IsMissing([2]) = false, want true")
		}
		if v.IsMissing(Citation{ID: "[1]", Ordinal: 1}) {
			t.Error("IsMissing([1]) = true, want false")
		}
	})
}
