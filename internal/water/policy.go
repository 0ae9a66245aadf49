package water

// Tiered is implemented by anything that may carry an explicit contamination level.
type Tiered interface {
	Contamination() (Tier, bool)
}

// Policy classifies resources by purity and thirst eligibility.
type Policy struct {
	Catalog *Catalog
}

// TierOf returns the explicit tier of r, or Untreated when none is set.
func (p Policy) TierOf(r Tiered) Tier {
	if r == nil {
		return Untreated
	}
	if t, ok := r.Contamination(); ok {
		return t
	}
	return Untreated
}

// IsSeekable reports whether items of kind may be drunk to satisfy thirst.
// Unknown kinds are never seekable.
func (p Policy) IsSeekable(kind string) bool {
	d, ok := p.Catalog.Def(kind)
	return ok && d.SeekForThirst
}
