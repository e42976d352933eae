package recommend

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"homeMatch/domain"
)

// ResultCache stores immutable ranked results under a request fingerprint.
// Writes never block the request path and write failures are swallowed by
// the caller; the cache is an optimization, not a correctness dependency.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.RecommendationResult, bool, error)
	Set(ctx context.Context, key string, result domain.RecommendationResult, ttl time.Duration) error
}

// Fingerprint hashes the ranking-relevant request parameters into a
// stable cache key.
func Fingerprint(req Request) string {
	excl := append([]uint64(nil), req.Exclude...)
	sort.Slice(excl, func(i, j int) bool { return excl[i] < excl[j] })

	types := append([]string(nil), req.Session.RecentTypes...)
	sort.Strings(types)
	locations := append([]string(nil), req.Session.RecentLocations...)
	sort.Strings(locations)

	var b strings.Builder
	fmt.Fprintf(&b, "u=%d|t=%s|n=%d|r=%s", req.UserID, req.RequestType, req.MaxResults, req.Region)
	for _, id := range excl {
		fmt.Fprintf(&b, "|x=%d", id)
	}
	for _, t := range types {
		fmt.Fprintf(&b, "|st=%s", t)
	}
	for _, l := range locations {
		fmt.Fprintf(&b, "|sl=%s", l)
	}
	fmt.Fprintf(&b, "|tod=%s|dev=%s", req.Session.TimeOfDay, req.Session.Device)

	h := fnv.New64a()
	_, _ = h.Write([]byte(b.String()))
	return fmt.Sprintf("%016x", h.Sum64())
}

// cacheTTL picks the TTL by strategy: session-driven results expire fast,
// cold-start results live longest.
func cacheTTL(requestType string, cfg Config) time.Duration {
	switch requestType {
	case domain.RequestContextual:
		return cfg.ContextualTTL
	case domain.RequestColdStart:
		return cfg.ColdStartTTL
	default:
		return cfg.ResultTTL
	}
}
