package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Trend carries the precomputed Mann-Kendall / Sen's slope statistics
// for a feature. The engine treats the numbers as opaque; only the
// category drives display decisions.
type Trend struct {
	Tau      float64 `json:"tau"`
	PValue   float64 `json:"p_value"`
	SenSlope float64 `json:"sen_slope"`
	Trend    string  `json:"trend"`
	Category string  `json:"trend_category"`
	LabelEN  string  `json:"trend_label_en"`
	LabelFA  string  `json:"trend_label_fa"`
	Symbol   string  `json:"trend_symbol"`
}

// NeutralTrend returns the trend block servers emit when a series is
// too short to test, also used for synthetic degraded KPIs.
func NeutralTrend() Trend {
	return Trend{
		Tau:      0,
		PValue:   1,
		SenSlope: 0,
		Trend:    "no trend",
		Category: "none",
		LabelEN:  "No Significant Trend",
		LabelFA:  "بدون روند معنی‌دار",
		Symbol:   "—",
	}
}

// KPI summarizes one feature's series for one index at one month. When
// the server substituted a month with data for the requested one, the
// requested/effective pair plus the note say how.
type KPI struct {
	Latest   float64 `json:"latest"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Severity string  `json:"severity"`
	Trend    Trend   `json:"trend"`

	RequestedMonth string `json:"requested_month,omitempty"`
	EffectiveMonth string `json:"effective_month,omitempty"`
	Note           string `json:"note,omitempty"`

	// Error is set instead of the numbers when the server has no series
	// for the selection.
	Error string `json:"error,omitempty"`
}

// SeriesPoint is one month of a feature's series. Value is nil for
// months inside the coverage window that carry no reading.
type SeriesPoint struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Timeseries is a feature's full monthly series. The bounds feed the
// panel slider; both are empty when the feature has no data at all.
type Timeseries struct {
	Feature  string        `json:"feature"`
	MinMonth string        `json:"min_month"`
	MaxMonth string        `json:"max_month"`
	Data     []SeriesPoint `json:"data"`
}

// FeatureProperties is the slim attribute set attached to each map
// feature.
type FeatureProperties struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Province *string  `json:"province"`
	Value    *float64 `json:"value"`
}

// Feature is one GeoJSON feature. The geometry stays raw: drawing it is
// someone else's job.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   json.RawMessage   `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// LayerMeta reports pagination of a layer response.
type LayerMeta struct {
	Total     *int `json:"total"`
	Returned  int  `json:"returned"`
	Limit     int  `json:"limit"`
	Offset    int  `json:"offset"`
	Truncated bool `json:"truncated"`
}

// FeatureCollection is a map layer for one dataset, index and month.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Meta     LayerMeta `json:"meta"`
}

// Overview carries the server-side aggregation for the dashboard cards:
// how many features fall into each severity class at one month.
type Overview struct {
	Date      string `json:"date"`
	Index     string `json:"index"`
	WithValue int    `json:"with_value"`
	Missing   int    `json:"missing"`
	NormalWet int    `json:"Normal/Wet"`
	D0        int    `json:"D0"`
	D1        int    `json:"D1"`
	D2        int    `json:"D2"`
	D3        int    `json:"D3"`
	D4        int    `json:"D4"`
}

// DatasetInfo is one row of the dataset listing.
type DatasetInfo struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	GeomType string `json:"geom_type"`
	MinMonth string `json:"min_month"`
	MaxMonth string `json:"max_month"`
}

// DatasetMeta is the per-dataset metadata used to initialize the map:
// available indices and the dataset's coverage window.
type DatasetMeta struct {
	DatasetKey   string   `json:"dataset_key"`
	Title        string   `json:"title"`
	GeomType     string   `json:"geom_type"`
	FeatureCount int      `json:"feature_count"`
	Indices      []string `json:"indices"`
	MinMonth     string   `json:"min_month"`
	MaxMonth     string   `json:"max_month"`
}

// Health is the server's liveness report.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Cache   string `json:"cache,omitempty"`
}

// Bounds is a geographic bounding box in lon/lat order.
type Bounds struct {
	West  float64
	South float64
	East  float64
	North float64
}

// ParseBounds parses "minLon,minLat,maxLon,maxLat". Inverted corners
// are accepted and reordered.
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("bounds must be minLon,minLat,maxLon,maxLat: %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("bounds component %d: %w", i+1, err)
		}
		vals[i] = v
	}
	b := Bounds{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}
	return b.Canonical(), nil
}

// Canonical returns the bounds with corners ordered west<=east and
// south<=north.
func (b Bounds) Canonical() Bounds {
	if b.East < b.West {
		b.West, b.East = b.East, b.West
	}
	if b.North < b.South {
		b.South, b.North = b.North, b.South
	}
	return b
}

// String renders the canonical wire form "west,south,east,north".
func (b Bounds) String() string {
	b = b.Canonical()
	coords := []float64{b.West, b.South, b.East, b.North}
	parts := make([]string, len(coords))
	for i, v := range coords {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
