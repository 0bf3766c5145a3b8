package discovery

import "sort"

// RankMirrors filters descs by opts (mirroring mirror_fetch.rs's
// MirrorUrl.filter_predicate) and returns the survivors sorted ascending
// by StaticRank, so index 0 is the most preferred mirror.
func RankMirrors(descs []MirrorDescriptor, opts RankOptions) []MirrorDescriptor {
	out := make([]MirrorDescriptor, 0, len(descs))
	for _, d := range descs {
		if d.passes(opts) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StaticRank() < out[j].StaticRank()
	})
	return out
}
