package cache

// DynamicScore is the lexicographic key that orders providers at selection
// time. A lower DynamicScore means a more preferred provider. Failures
// dominate so a misbehaving mirror is quickly evicted from the top choice;
// usages come next so concurrent requests fan out rather than pile onto one
// provider; static rank is the final tiebreaker.
//
// DynamicScore is a pure value: it is computed on demand from the
// registry's live tallies and never stored.
type DynamicScore struct {
	Failures    int
	Usages      int
	InitialRank int64
}

// Less reports whether s is strictly preferred over other, comparing
// (Failures, Usages, InitialRank) lexicographically, ascending.
func (s DynamicScore) Less(other DynamicScore) bool {
	if s.Failures != other.Failures {
		return s.Failures < other.Failures
	}
	if s.Usages != other.Usages {
		return s.Usages < other.Usages
	}
	return s.InitialRank < other.InitialRank
}

// scoreOf computes the DynamicScore of p given the live failures/usages
// tallies. Missing entries default to zero.
func scoreOf(p Provider, failures map[Provider]int, usages map[Provider]int) DynamicScore {
	return DynamicScore{
		Failures:    failures[p],
		Usages:      usages[p],
		InitialRank: p.InitialScore(),
	}
}
