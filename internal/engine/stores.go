package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/engine/cache"
	"github.com/droughtwatch/droughtwatch/internal/engine/fetch"
)

// Stores bundles the four per-resource caches. Each resource has its
// own key namespace and its own eviction pressure, so a burst of layer
// loads can never push KPI entries out.
type Stores struct {
	Layer    cache.Store[*api.FeatureCollection]
	Overview cache.Store[*api.Overview]
	Series   cache.Store[*api.Timeseries]
	KPI      cache.Store[*api.KPI]
}

// NewMemoryStores creates the default in-process store set.
func NewMemoryStores(ttl time.Duration, maxEntries int) Stores {
	return Stores{
		Layer:    cache.NewMemoryStore[*api.FeatureCollection](ttl, maxEntries),
		Overview: cache.NewMemoryStore[*api.Overview](ttl, maxEntries),
		Series:   cache.NewMemoryStore[*api.Timeseries](ttl, maxEntries),
		KPI:      cache.NewMemoryStore[*api.KPI](ttl, maxEntries),
	}
}

// NewRedisStores creates a store set backed by one Redis instance,
// sharing cached results across processes.
func NewRedisStores(redisURL string, ttl time.Duration) (Stores, error) {
	layer, err := cache.NewRedisStore[*api.FeatureCollection](redisURL, "dw:layer:", ttl)
	if err != nil {
		return Stores{}, err
	}
	overview, err := cache.NewRedisStore[*api.Overview](redisURL, "dw:overview:", ttl)
	if err != nil {
		return Stores{}, err
	}
	series, err := cache.NewRedisStore[*api.Timeseries](redisURL, "dw:series:", ttl)
	if err != nil {
		return Stores{}, err
	}
	kpi, err := cache.NewRedisStore[*api.KPI](redisURL, "dw:kpi:", ttl)
	if err != nil {
		return Stores{}, err
	}
	return Stores{Layer: layer, Overview: overview, Series: series, KPI: kpi}, nil
}

// NewDisabledStores creates a store set that never caches.
func NewDisabledStores() Stores {
	return Stores{
		Layer:    cache.NewDisabledStore[*api.FeatureCollection](),
		Overview: cache.NewDisabledStore[*api.Overview](),
		Series:   cache.NewDisabledStore[*api.Timeseries](),
		KPI:      cache.NewDisabledStore[*api.KPI](),
	}
}

// Stats collects counters from every backend that tracks them, keyed by
// resource name.
func (s Stores) Stats() map[string]cache.Stats {
	out := make(map[string]cache.Stats, 4)
	if r, ok := s.Layer.(cache.StatsReporter); ok {
		out["layer"] = r.Stats()
	}
	if r, ok := s.Overview.(cache.StatsReporter); ok {
		out["overview"] = r.Stats()
	}
	if r, ok := s.Series.(cache.StatsReporter); ok {
		out["series"] = r.Stats()
	}
	if r, ok := s.KPI.(cache.StatsReporter); ok {
		out["kpi"] = r.Stats()
	}
	return out
}

// coordinators pairs each store with its de-duplicating fetch front.
type coordinators struct {
	layer    *fetch.Coordinator[*api.FeatureCollection]
	overview *fetch.Coordinator[*api.Overview]
	series   *fetch.Coordinator[*api.Timeseries]
	kpi      *fetch.Coordinator[*api.KPI]
}

func newCoordinators(s Stores, logger zerolog.Logger) coordinators {
	return coordinators{
		layer:    fetch.NewCoordinator[*api.FeatureCollection](s.Layer, logger),
		overview: fetch.NewCoordinator[*api.Overview](s.Overview, logger),
		series:   fetch.NewCoordinator[*api.Timeseries](s.Series, logger),
		kpi:      fetch.NewCoordinator[*api.KPI](s.KPI, logger),
	}
}
