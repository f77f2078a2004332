package engine

import (
	"slices"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/engine/resolve"
	"github.com/droughtwatch/droughtwatch/internal/engine/timeline"
)

// SetDataset switches the active dataset layer. The selection and the
// panel belong to the old layer and are dropped; the global axis is
// re-seeded from the new layer's coverage before the map reloads.
func (e *Engine) SetDataset(key string) {
	e.mu.Lock()
	if key == "" || key == e.dataset {
		e.mu.Unlock()
		return
	}
	e.dataset = key
	e.clearPanelLocked()
	e.mu.Unlock()

	e.notify(EventDataset)
	e.notify(EventPanel)
	e.loadDataset()
}

// SetIndex switches the drought index within the current dataset. The
// selection survives; both lanes reload because series coverage is
// per-index.
func (e *Engine) SetIndex(index string) {
	e.mu.Lock()
	if index == "" || index == e.index {
		e.mu.Unlock()
		return
	}
	if len(e.indices) > 0 && !slices.Contains(e.indices, index) {
		e.mu.Unlock()
		e.logger.Warn().Str("index", index).Msg("unknown index for dataset")
		return
	}
	e.index = index
	hasSelection := e.selection != nil
	e.mu.Unlock()

	e.notify(EventDataset)
	e.loadMapLane()
	if hasSelection {
		e.loadPanelLane()
	}
}

// SetGlobalMonth moves the map month. Out-of-bounds targets are
// rejected. The reload is debounced so slider drags cost one fetch.
func (e *Engine) SetGlobalMonth(m timeline.Month) {
	e.globalNav(func(a *timeline.Axis) bool { return a.Set(m) })
}

// StepGlobalMonth moves the map month by delta months.
func (e *Engine) StepGlobalMonth(delta int) {
	e.globalNav(func(a *timeline.Axis) bool { return a.Step(delta) })
}

// JumpGlobalStart moves the map month to the first covered month.
func (e *Engine) JumpGlobalStart() {
	e.globalNav(func(a *timeline.Axis) bool { return a.JumpStart() })
}

// JumpGlobalEnd moves the map month to the last covered month.
func (e *Engine) JumpGlobalEnd() {
	e.globalNav(func(a *timeline.Axis) bool { return a.JumpEnd() })
}

func (e *Engine) globalNav(apply func(*timeline.Axis) bool) {
	e.mu.Lock()
	moved := apply(e.global)
	e.mu.Unlock()

	if !moved {
		return
	}
	e.notify(EventTimeline)
	e.globalDebounce.Trigger(struct{}{})
}

// SetViewport restricts map loads to a bounding box, or lifts the
// restriction when b is nil. Reloads are debounced: panning arrives in
// bursts.
func (e *Engine) SetViewport(b *api.Bounds) {
	e.mu.Lock()
	if b != nil {
		canonical := b.Canonical()
		e.viewport = &canonical
	} else {
		e.viewport = nil
	}
	e.mu.Unlock()

	e.globalDebounce.Trigger(struct{}{})
}

// SelectFeature opens the panel for a map feature. The panel axis
// starts unbounded until the feature's series reports its coverage.
// The load is immediate; clicks are never debounced.
func (e *Engine) SelectFeature(id, name, province string, value *float64) {
	if id == "" {
		return
	}
	e.mu.Lock()
	if e.selection != nil && e.selection.ID == id {
		e.mu.Unlock()
		return
	}
	e.selection = &FeatureSelection{ID: id, Name: name, Province: province, Value: value}
	e.panel = timeline.NewAxis()
	e.series = nil
	e.kpi = nil
	e.panelNote = resolve.NoteNone
	e.panelNoData = false
	e.panelErr = nil
	e.mu.Unlock()

	e.notify(EventPanel)
	e.loadPanelLane()
}

// ClearSelection closes the panel and aborts its in-flight work.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	if e.selection == nil {
		e.mu.Unlock()
		return
	}
	e.clearPanelLocked()
	e.mu.Unlock()

	e.notify(EventPanel)
}

// clearPanelLocked drops the selection and all panel state. Caller
// holds e.mu.
func (e *Engine) clearPanelLocked() {
	e.selection = nil
	e.series = nil
	e.kpi = nil
	e.panel = timeline.NewAxis()
	e.panelNote = resolve.NoteNone
	e.panelNoData = false
	e.panelErr = nil
	e.panelLoading = false
	e.panelLane.Cancel()
}

// SetPanelMonth moves the panel month. The KPI reload is debounced.
func (e *Engine) SetPanelMonth(m timeline.Month) {
	e.panelNav(func(a *timeline.Axis) bool { return a.Set(m) })
}

// StepPanelMonth moves the panel month by delta months.
func (e *Engine) StepPanelMonth(delta int) {
	e.panelNav(func(a *timeline.Axis) bool { return a.Step(delta) })
}

func (e *Engine) panelNav(apply func(*timeline.Axis) bool) {
	e.mu.Lock()
	if e.selection == nil {
		e.mu.Unlock()
		return
	}
	moved := apply(e.panel)
	e.mu.Unlock()

	if !moved {
		return
	}
	e.notify(EventTimeline)
	e.panelDebounce.Trigger(struct{}{})
}

// SyncPanelToMap snaps the panel month to the map month, clamped into
// the panel's own coverage. Explicit action, so the reload is
// immediate.
func (e *Engine) SyncPanelToMap() {
	e.mu.Lock()
	if e.selection == nil || !e.global.Bounded() || !e.panel.Bounded() {
		e.mu.Unlock()
		return
	}
	moved := e.panel.SetClamped(e.global.Current())
	e.mu.Unlock()

	if !moved {
		return
	}
	e.notify(EventTimeline)
	e.loadPanelLane()
}

// Reload forces fresh data for the current view, dropping the cached
// entries it would otherwise be served from. Never debounced.
func (e *Engine) Reload() {
	e.mu.Lock()
	mapReq, mapOK := e.mapRequestLocked()
	panelReq, panelOK := e.panelRequestLocked()
	e.mu.Unlock()

	if mapOK {
		if key, err := mapReq.layerKey(); err == nil {
			_ = e.stores.Layer.Remove(e.rootCtx, key)
		}
		if key, err := mapReq.overviewKey(); err == nil {
			_ = e.stores.Overview.Remove(e.rootCtx, key)
		}
		e.loadMapLane()
	}
	if panelOK {
		if key, err := panelReq.seriesKey(); err == nil {
			_ = e.stores.Series.Remove(e.rootCtx, key)
		}
		if key, err := panelReq.kpiKey(); err == nil {
			_ = e.stores.KPI.Remove(e.rootCtx, key)
		}
		e.loadPanelLane()
	}
}
