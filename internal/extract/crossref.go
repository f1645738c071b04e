package extract

// Validation is the outcome of reconciling markers against the reference list.
type Validation struct {
	// Missing are citations with no numbered reference entry, by ordinal.
	Missing []Citation `json:"missing_citations" yaml:"missing_citations"`

	// Unused are numbered reference entries never cited in the body,
	// in document order. Unnumbered entries are excluded from matching
	// entirely: without an ordinal they cannot be tied to any marker,
	// so they are neither missing targets nor reported as unused.
	Unused []Reference `json:"unused_references" yaml:"unused_references"`
}

// Validate computes the missing-citation and unused-reference sets.
// Pure set reconciliation over extracted data; no I/O.
func Validate(res *Result) Validation {
	numbered := make(map[int]bool, len(res.References))
	for _, ref := range res.References {
		if ref.Numbered() {
			numbered[ref.Ordinal] = true
		}
	}

	cited := make(map[int]bool, len(res.Citations))
	for _, c := range res.Citations {
		cited[c.Ordinal] = true
	}

	var v Validation
	for _, c := range res.Citations {
		if !numbered[c.Ordinal] {
			v.Missing = append(v.Missing, c)
		}
	}
	for _, ref := range res.References {
		if ref.Numbered() && !cited[ref.Ordinal] {
			v.Unused = append(v.Unused, ref)
		}
	}
	return v
}

// IsMissing reports whether the citation is in the missing set.
func (v Validation) IsMissing(c Citation) bool {
	for _, m := range v.Missing {
		if m.Ordinal == c.Ordinal {
			return true
		}
	}
	return false
}
