// Package discovery fetches and ranks upstream mirrors, feeding the
// cache's Provider Registry a static rank for each one.
package discovery

import "time"

// scoreScale converts the floating-point scores reported by mirror-status
// endpoints into the integer static ranks the cache's DynamicScore
// tie-break compares. Mirrors mirror_fetch.rs's SCORE_SCALE constant so
// rank comparisons never rely on float equality.
const scoreScale = 1_000_000_000_000_000

// Protocol is the upstream transport a mirror is reachable over.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
	ProtocolRsync Protocol = "rsync"
)

// MirrorDescriptor is one entry from a mirror-status endpoint, plus
// whatever latency measurement has been taken for it.
type MirrorDescriptor struct {
	URL          string
	Protocol     Protocol
	Score        float64 // reported quality score, lower is better, 0..1
	CompletionPct float64
	DelaySeconds int
	Country      string
	IPv4         bool
	IPv6         bool

	// Latency is populated by MeasureLatency; zero until measured.
	Latency time.Duration
}

// StaticRank converts a MirrorDescriptor into the integer rank the cache
// registry sorts providers by: lower is more preferred. When Latency has
// been measured it dominates (a mirror that's slow to us is a bad choice
// regardless of its self-reported score); otherwise the endpoint's own
// score, scaled to an integer.
func (m MirrorDescriptor) StaticRank() int64 {
	if m.Latency > 0 {
		return m.Latency.Nanoseconds()
	}
	return int64(m.Score * scoreScale)
}

// RankOptions filters candidate mirrors, mirroring mirror_fetch.rs's
// MirrorUrl.filter_predicate.
type RankOptions struct {
	HTTPSRequired bool
	RequireIPv4   bool
	RequireIPv6   bool
	MaxScore      float64 // 0 means unset (no ceiling)
	Blacklist     map[string]bool
}

func (m MirrorDescriptor) passes(opts RankOptions) bool {
	if opts.HTTPSRequired && m.Protocol != ProtocolHTTPS {
		return false
	}
	if opts.RequireIPv4 && !m.IPv4 {
		return false
	}
	if opts.RequireIPv6 && !m.IPv6 {
		return false
	}
	if opts.MaxScore > 0 && m.Score > opts.MaxScore {
		return false
	}
	if opts.Blacklist[m.URL] {
		return false
	}
	return true
}
