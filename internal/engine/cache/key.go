package cache

import (
	"fmt"
	"strings"
)

// Key namespace prefixes, one per store.
const (
	keyPrefixMap      = "map"
	keyPrefixOverview = "overview"
	keyPrefixSeries   = "series"
	keyPrefixKPI      = "kpi"
)

// bboxAll marks a map-layer request without a bounding box filter.
const bboxAll = "all"

// canonicalToken normalizes a key selector: surrounding whitespace is
// dropped and the token is lowercased so "SPI3" and "spi3" collide.
func canonicalToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LayerKey builds the canonical key for a map-layer request. The bbox
// argument is the canonical bounding-box string, or empty when the
// request is unfiltered.
func LayerKey(dataset, index, month, bbox string) (string, error) {
	dataset = canonicalToken(dataset)
	index = canonicalToken(index)
	month = strings.TrimSpace(month)
	bbox = strings.TrimSpace(bbox)
	if dataset == "" {
		return "", fmt.Errorf("%w: missing dataset", ErrInvalidCacheKey)
	}
	if index == "" {
		return "", fmt.Errorf("%w: missing index", ErrInvalidCacheKey)
	}
	if month == "" {
		return "", fmt.Errorf("%w: missing month", ErrInvalidCacheKey)
	}
	if bbox == "" {
		bbox = bboxAll
	}
	return strings.Join([]string{keyPrefixMap, dataset, index, month, bbox}, ":"), nil
}

// OverviewKey builds the canonical key for an aggregate overview request.
func OverviewKey(dataset, index, month string) (string, error) {
	dataset = canonicalToken(dataset)
	index = canonicalToken(index)
	month = strings.TrimSpace(month)
	if dataset == "" {
		return "", fmt.Errorf("%w: missing dataset", ErrInvalidCacheKey)
	}
	if index == "" {
		return "", fmt.Errorf("%w: missing index", ErrInvalidCacheKey)
	}
	if month == "" {
		return "", fmt.Errorf("%w: missing month", ErrInvalidCacheKey)
	}
	return strings.Join([]string{keyPrefixOverview, dataset, index, month}, ":"), nil
}

// SeriesKey builds the canonical key for a per-feature time series. The
// series covers the feature's whole coverage window, so no month is part
// of the key.
func SeriesKey(dataset, index, featureID string) (string, error) {
	dataset = canonicalToken(dataset)
	index = canonicalToken(index)
	featureID = strings.TrimSpace(featureID)
	if dataset == "" {
		return "", fmt.Errorf("%w: missing dataset", ErrInvalidCacheKey)
	}
	if index == "" {
		return "", fmt.Errorf("%w: missing index", ErrInvalidCacheKey)
	}
	if featureID == "" {
		return "", fmt.Errorf("%w: missing feature id", ErrInvalidCacheKey)
	}
	return strings.Join([]string{keyPrefixSeries, dataset, index, featureID}, ":"), nil
}

// KPIKey builds the canonical key for a per-feature KPI request.
func KPIKey(dataset, index, featureID, month string) (string, error) {
	dataset = canonicalToken(dataset)
	index = canonicalToken(index)
	featureID = strings.TrimSpace(featureID)
	month = strings.TrimSpace(month)
	if dataset == "" {
		return "", fmt.Errorf("%w: missing dataset", ErrInvalidCacheKey)
	}
	if index == "" {
		return "", fmt.Errorf("%w: missing index", ErrInvalidCacheKey)
	}
	if featureID == "" {
		return "", fmt.Errorf("%w: missing feature id", ErrInvalidCacheKey)
	}
	if month == "" {
		return "", fmt.Errorf("%w: missing month", ErrInvalidCacheKey)
	}
	return strings.Join([]string{keyPrefixKPI, dataset, index, featureID, month}, ":"), nil
}
