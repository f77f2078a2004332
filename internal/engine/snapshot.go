package engine

import (
	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/engine/cache"
	"github.com/droughtwatch/droughtwatch/internal/engine/resolve"
	"github.com/droughtwatch/droughtwatch/internal/engine/timeline"
)

// EventKind says which part of the state an event concerns.
type EventKind int

const (
	// EventDataset marks catalog, dataset or index changes.
	EventDataset EventKind = iota
	// EventTimeline marks axis bounds or current-month changes.
	EventTimeline
	// EventMap marks layer or overview updates, including degradations.
	EventMap
	// EventPanel marks selection, series or KPI updates.
	EventPanel
)

// Event notifies a consumer that state changed. It carries no payload;
// consumers pull a Snapshot for the full picture.
type Event struct {
	Kind EventKind
}

// AxisView is an axis's externally visible state.
type AxisView struct {
	Bounded bool
	Min     timeline.Month
	Max     timeline.Month
	Current timeline.Month
}

// Snapshot is a self-consistent copy of everything a renderer needs.
// Payload pointers are shared and must be treated as read-only.
type Snapshot struct {
	Dataset  string
	Index    string
	Datasets []api.DatasetInfo
	Indices  []string

	Global AxisView
	Panel  AxisView

	Selection *FeatureSelection

	Layer    *api.FeatureCollection
	Overview *api.Overview
	Series   *api.Timeseries
	KPI      *api.KPI

	// PanelNote records how the displayed panel month relates to the
	// requested one.
	PanelNote resolve.Note

	// PanelNoData is the explicit "no data for this selection" state,
	// distinct from a transport failure.
	PanelNoData bool

	MapLoading   bool
	PanelLoading bool

	// MapError and PanelError carry the last degradation causes; empty
	// when the latest loads succeeded.
	MapError   string
	PanelError string

	CacheStats map[string]cache.Stats
}

// Snapshot returns a copy of the engine's current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Dataset:      e.dataset,
		Index:        e.index,
		Datasets:     append([]api.DatasetInfo(nil), e.datasets...),
		Indices:      append([]string(nil), e.indices...),
		Global:       axisView(e.global),
		Panel:        axisView(e.panel),
		Layer:        e.layer,
		Overview:     e.overview,
		Series:       e.series,
		KPI:          e.kpi,
		PanelNote:    e.panelNote,
		PanelNoData:  e.panelNoData,
		MapLoading:   e.mapLoading,
		PanelLoading: e.panelLoading,
		CacheStats:   e.stores.Stats(),
	}
	if e.selection != nil {
		sel := *e.selection
		snap.Selection = &sel
	}
	if e.mapErr != nil {
		snap.MapError = e.mapErr.Error()
	}
	if e.panelErr != nil {
		snap.PanelError = e.panelErr.Error()
	}
	return snap
}

func axisView(a *timeline.Axis) AxisView {
	view := AxisView{
		Bounded: a.Bounded(),
		Current: a.Current(),
	}
	if min, max, ok := a.Bounds(); ok {
		view.Min = min
		view.Max = max
	}
	return view
}
