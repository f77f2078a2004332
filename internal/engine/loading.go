package engine

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/engine/cache"
	"github.com/droughtwatch/droughtwatch/internal/engine/resolve"
	"github.com/droughtwatch/droughtwatch/internal/engine/timeline"
)

// mapRequest is the immutable parameter set one map-lane load works
// from, captured under the engine mutex at launch.
type mapRequest struct {
	dataset  string
	index    string
	month    string
	viewport *api.Bounds
	limit    int
}

func (r mapRequest) layerKey() (string, error) {
	return cache.LayerKey(r.dataset, r.index, r.month, bboxString(r.viewport))
}

func (r mapRequest) overviewKey() (string, error) {
	return cache.OverviewKey(r.dataset, r.index, r.month)
}

// panelRequest is the parameter set one panel-lane load works from.
// requested is zero on the first load after a selection, before the
// feature's series has reported its coverage.
type panelRequest struct {
	dataset   string
	index     string
	featureID string
	requested timeline.Month
}

// monthParam is the date the KPI request asks for; empty means "the
// latest month with data", which the service resolves itself.
func (r panelRequest) monthParam() string {
	if r.requested.IsZero() {
		return ""
	}
	return r.requested.String()
}

func (r panelRequest) seriesKey() (string, error) {
	return cache.SeriesKey(r.dataset, r.index, r.featureID)
}

func (r panelRequest) kpiKey() (string, error) {
	month := r.monthParam()
	if month == "" {
		month = "latest"
	}
	return cache.KPIKey(r.dataset, r.index, r.featureID, month)
}

// mapRequestLocked captures the map lane's parameters. Caller holds
// e.mu. Not ok until a dataset and its month coverage are known.
func (e *Engine) mapRequestLocked() (mapRequest, bool) {
	if e.dataset == "" || e.index == "" || !e.global.Bounded() {
		return mapRequest{}, false
	}
	return mapRequest{
		dataset:  e.dataset,
		index:    e.index,
		month:    e.global.Current().String(),
		viewport: e.viewport,
		limit:    e.layerLimit,
	}, true
}

// panelRequestLocked captures the panel lane's parameters. Caller holds
// e.mu. Not ok without a selection.
func (e *Engine) panelRequestLocked() (panelRequest, bool) {
	if e.selection == nil || e.dataset == "" || e.index == "" {
		return panelRequest{}, false
	}
	return panelRequest{
		dataset:   e.dataset,
		index:     e.index,
		featureID: e.selection.ID,
		requested: e.panel.Current(),
	}, true
}

// loadDataset refreshes the active dataset's metadata and then its
// layer, all under one map-lane epoch so a dataset switch mid-chain
// abandons the whole chain.
func (e *Engine) loadDataset() {
	e.mu.Lock()
	dataset := e.dataset
	if dataset == "" {
		e.mu.Unlock()
		return
	}
	epoch, ctx := e.mapLane.Begin(e.rootCtx)
	e.mapLoading = true
	e.mu.Unlock()
	e.notify(EventMap)

	go e.runDatasetLoad(ctx, epoch, dataset)
}

func (e *Engine) runDatasetLoad(ctx context.Context, epoch uint64, dataset string) {
	meta, err := e.client.DatasetMeta(ctx, dataset)

	e.mu.Lock()
	if !e.mapLane.IsCurrent(epoch) {
		e.mu.Unlock()
		e.logger.Debug().Str("dataset", dataset).Msg("dropping superseded dataset metadata")
		return
	}
	if err != nil {
		e.mapLoading = false
		e.mapErr = err
		e.global.SetBounds(0, 0)
		e.mu.Unlock()
		e.logger.Error().Err(err).Str("dataset", dataset).Msg("dataset metadata load failed")
		e.notify(EventTimeline)
		e.notify(EventMap)
		return
	}

	e.indices = append([]string(nil), meta.Indices...)
	if len(e.indices) > 0 && !slices.Contains(e.indices, e.index) {
		e.index = e.indices[0]
	}

	// Unparseable coverage months count as absent bounds and disable
	// the timeline rather than pointing it at garbage.
	min, minErr := timeline.ParseMonth(meta.MinMonth)
	max, maxErr := timeline.ParseMonth(meta.MaxMonth)
	if minErr != nil || maxErr != nil {
		min, max = 0, 0
	}
	tr := e.global.SetBounds(min, max)

	req, ok := e.mapRequestLocked()
	if !ok {
		e.mapLoading = false
	}
	e.mu.Unlock()

	if tr.Clamp != timeline.ClampNone {
		e.logger.Info().
			Str("dataset", dataset).
			Str("direction", tr.Clamp.String()).
			Msg("map month moved into new coverage")
	}
	e.notify(EventDataset)
	e.notify(EventTimeline)
	if !ok {
		e.logger.Warn().Str("dataset", dataset).Msg("dataset reports no usable month coverage")
		e.notify(EventMap)
		return
	}

	e.runMapLoad(ctx, epoch, req)
}

// loadMapLane reloads the layer and overview for the current map
// selection, superseding any map-lane work still in flight.
func (e *Engine) loadMapLane() {
	e.mu.Lock()
	req, ok := e.mapRequestLocked()
	if !ok {
		e.mu.Unlock()
		return
	}
	epoch, ctx := e.mapLane.Begin(e.rootCtx)
	e.mapLoading = true
	e.mu.Unlock()
	e.notify(EventMap)

	go e.runMapLoad(ctx, epoch, req)
}

func (e *Engine) runMapLoad(ctx context.Context, epoch uint64, req mapRequest) {
	var (
		g     errgroup.Group
		fc    *api.FeatureCollection
		fcErr error
		ov    *api.Overview
		ovErr error
	)
	g.Go(func() error {
		key, err := req.layerKey()
		if err != nil {
			fcErr = err
			return nil
		}
		fc, fcErr = e.coords.layer.Fetch(ctx, key, func(ctx context.Context) (*api.FeatureCollection, error) {
			return e.client.MapData(ctx, api.LayerParams{
				Dataset: req.dataset,
				Index:   req.index,
				Month:   req.month,
				Bounds:  req.viewport,
				Limit:   req.limit,
			})
		})
		return nil
	})
	g.Go(func() error {
		key, err := req.overviewKey()
		if err != nil {
			ovErr = err
			return nil
		}
		ov, ovErr = e.coords.overview.Fetch(ctx, key, func(ctx context.Context) (*api.Overview, error) {
			return e.client.Overview(ctx, req.dataset, req.index, req.month)
		})
		return nil
	})
	_ = g.Wait()
	loadErr := errors.Join(fcErr, ovErr)

	e.mu.Lock()
	if !e.mapLane.IsCurrent(epoch) {
		e.mu.Unlock()
		e.logger.Debug().Str("month", req.month).Msg("dropping superseded map result")
		return
	}
	e.mapLoading = false
	// Partial results still apply; a failed half keeps its last-known
	// value so the map never blanks.
	if fcErr == nil {
		e.layer = fc
	}
	if ovErr == nil {
		e.overview = ov
	}
	e.mapErr = loadErr
	e.mu.Unlock()

	if loadErr != nil {
		e.logger.Warn().Err(loadErr).Str("month", req.month).Msg("map load degraded, keeping previous layer")
	}
	e.notify(EventMap)
}

// loadPanelLane reloads the selected feature's series and KPI,
// superseding any panel-lane work still in flight.
func (e *Engine) loadPanelLane() {
	e.mu.Lock()
	req, ok := e.panelRequestLocked()
	if !ok {
		e.mu.Unlock()
		return
	}
	epoch, ctx := e.panelLane.Begin(e.rootCtx)
	e.panelLoading = true
	e.mu.Unlock()
	e.notify(EventPanel)

	go e.runPanelLoad(ctx, epoch, req)
}

func (e *Engine) runPanelLoad(ctx context.Context, epoch uint64, req panelRequest) {
	var (
		g      errgroup.Group
		series *api.Timeseries
		sErr   error
		kpi    *api.KPI
		kErr   error
	)
	g.Go(func() error {
		key, err := req.seriesKey()
		if err != nil {
			sErr = err
			return nil
		}
		series, sErr = e.coords.series.Fetch(ctx, key, func(ctx context.Context) (*api.Timeseries, error) {
			return e.client.Timeseries(ctx, req.dataset, req.index, req.featureID)
		})
		return nil
	})
	g.Go(func() error {
		key, err := req.kpiKey()
		if err != nil {
			kErr = err
			return nil
		}
		kpi, kErr = e.coords.kpi.Fetch(ctx, key, func(ctx context.Context) (*api.KPI, error) {
			return e.client.KPI(ctx, req.dataset, req.index, req.featureID, req.monthParam())
		})
		return nil
	})
	_ = g.Wait()

	e.mu.Lock()
	if !e.panelLane.IsCurrent(epoch) {
		e.mu.Unlock()
		e.logger.Debug().Str("feature", req.featureID).Msg("dropping superseded panel result")
		return
	}
	e.panelLoading = false
	axisChanged := e.applySeriesLocked(series, sErr)
	monthMoved := e.applyKPILocked(req, kpi, kErr, sErr)
	e.mu.Unlock()

	if sErr != nil || kErr != nil {
		e.logger.Warn().
			AnErr("series", sErr).
			AnErr("kpi", kErr).
			Str("feature", req.featureID).
			Msg("panel load degraded")
	}
	e.notify(EventPanel)
	if axisChanged || monthMoved {
		e.notify(EventTimeline)
	}
}

// applySeriesLocked folds a series result into panel state and re-seeds
// the panel axis from the feature's coverage. Reports whether the axis
// changed. Caller holds e.mu.
func (e *Engine) applySeriesLocked(series *api.Timeseries, sErr error) bool {
	if sErr != nil {
		// A transport blip must not blank a chart that is already
		// showing; the axis keeps its previous coverage too.
		return false
	}
	e.series = series

	var min, max timeline.Month
	if series != nil {
		min, _ = timeline.ParseMonth(series.MinMonth)
		max, _ = timeline.ParseMonth(series.MaxMonth)
	}
	wasBounded := e.panel.Bounded()
	tr := e.panel.SetBounds(min, max)
	if !tr.Bounded {
		e.panelNoData = true
	}
	return tr.Moved || wasBounded != tr.Bounded
}

// applyKPILocked folds a KPI result into panel state. Reports whether
// the panel month was re-pointed. Caller holds e.mu.
func (e *Engine) applyKPILocked(req panelRequest, kpi *api.KPI, kErr, sErr error) bool {
	switch {
	case kErr == nil:
		e.kpi = kpi
		e.panelErr = sErr
		e.panelNoData = false
		return e.resyncPanelLocked(req, kpi)
	case errors.Is(kErr, api.ErrNoData):
		// A definitive answer: this feature has nothing for this index.
		e.kpi = nil
		e.panelErr = sErr
		e.panelNoData = true
		e.panelNote = resolve.NoteNoData
		return false
	default:
		// Transport failure: show a neutral placeholder instead of
		// tearing the panel down.
		e.kpi = naKPI(req.monthParam())
		e.panelErr = errors.Join(sErr, kErr)
		e.panelNote = resolve.NoteNone
		return false
	}
}

// resyncPanelLocked points the panel month at the month the KPI
// actually describes, preferring the service's own resolution and
// falling back to resolving locally against the loaded series. The move
// is advisory: it never triggers another fetch. Caller holds e.mu.
func (e *Engine) resyncPanelLocked(req panelRequest, kpi *api.KPI) bool {
	requested := req.requested
	if requested.IsZero() {
		requested = e.panel.Current()
	}

	var (
		effective timeline.Month
		note      resolve.Note
	)
	if kpi != nil && kpi.EffectiveMonth != "" {
		if m, err := timeline.ParseMonth(kpi.EffectiveMonth); err == nil {
			effective = m
			note = resolve.Note(kpi.Note)
		}
	}
	if effective.IsZero() {
		min, max, ok := e.panel.Bounds()
		if !ok {
			e.panelNote = resolve.NoteNone
			return false
		}
		out := resolve.EffectiveMonth(requested, min, max, seriesAvailability(e.series))
		effective = out.Effective
		note = out.Note
	}

	e.panelNote = note
	if note == resolve.NoteNoData {
		e.panelNoData = true
	}
	if effective.IsZero() || !e.panel.Bounded() {
		return false
	}
	return e.panel.SetClamped(effective)
}

// seriesAvailability indexes which months of a series carry values.
func seriesAvailability(series *api.Timeseries) resolve.HasValue {
	if series == nil {
		return nil
	}
	months := make([]timeline.Month, 0, len(series.Data))
	for _, p := range series.Data {
		if p.Value == nil || len(p.Date) < 7 {
			continue
		}
		m, err := timeline.ParseMonth(p.Date[:7])
		if err != nil {
			continue
		}
		months = append(months, m)
	}
	return resolve.Availability(months)
}

// naKPI builds the neutral placeholder shown while the real KPI is
// unreachable.
func naKPI(month string) *api.KPI {
	return &api.KPI{
		Severity:       api.ClassNA,
		Trend:          api.NeutralTrend(),
		RequestedMonth: month,
		EffectiveMonth: month,
	}
}

func bboxString(b *api.Bounds) string {
	if b == nil {
		return ""
	}
	return b.String()
}
