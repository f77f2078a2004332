// Package cache provides bounded in-memory caching with TTL expiry for
// dashboard query results.
//
// Each remote resource (map layer, overview counts, per-feature series,
// per-feature KPI) gets its own store with its own key namespace, so a
// month change never collides with a feature change. Key features:
//   - Lazy TTL expiry (default 5 minutes): stale entries read as absent
//     but are only physically removed by eviction or replacement
//   - Insertion-order eviction with a fixed entry cap, so the entry
//     evicted under pressure is always the oldest-written one
//   - Canonical string keys built from normalized selectors, so the
//     same logical request always lands in the same slot
//   - An optional Redis backend for sharing results across processes
//
// The stores hold only resolved payloads. De-duplication of concurrent
// identical requests happens one level up, in the fetch coordinator.
package cache
