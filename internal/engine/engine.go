// Package engine keeps the dashboard's two time axes, its feature
// selection and its caches consistent while requests resolve out of
// order. All mutations funnel through one mutex; asynchronous
// completions re-acquire it and are only applied while their lane epoch
// is still current, so a slow response can never overwrite a newer one.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/engine/debounce"
	"github.com/droughtwatch/droughtwatch/internal/engine/lane"
	"github.com/droughtwatch/droughtwatch/internal/engine/resolve"
	"github.com/droughtwatch/droughtwatch/internal/engine/timeline"
)

// DefaultLayerLimit caps how many features a single layer request asks
// for.
const DefaultLayerLimit = 2000

// eventBuffer sizes the notification channel. Consumers pull full
// snapshots, so dropped notifications coalesce harmlessly.
const eventBuffer = 16

// Config carries the engine's tunables.
type Config struct {
	// Dataset and Index select the initial layer.
	Dataset string
	Index   string

	// DebounceWindow coalesces rapid month changes. Zero means the
	// default window.
	DebounceWindow time.Duration

	// LayerLimit bounds the feature count per layer request. Zero means
	// DefaultLayerLimit.
	LayerLimit int
}

// FeatureSelection is the currently selected map feature with its last
// known attribute snapshot.
type FeatureSelection struct {
	ID       string
	Name     string
	Province string
	Value    *float64
}

// Engine orchestrates fetches for one dashboard session.
type Engine struct {
	mu sync.Mutex

	client *api.Client
	stores Stores
	coords coordinators
	logger zerolog.Logger

	rootCtx context.Context
	cancel  context.CancelFunc

	mapLane   *lane.Lane
	panelLane *lane.Lane

	global *timeline.Axis
	panel  *timeline.Axis

	globalDebounce *debounce.Debouncer[struct{}]
	panelDebounce  *debounce.Debouncer[struct{}]

	dataset    string
	index      string
	datasets   []api.DatasetInfo
	indices    []string
	viewport   *api.Bounds
	layerLimit int

	selection *FeatureSelection

	layer    *api.FeatureCollection
	overview *api.Overview
	series   *api.Timeseries
	kpi      *api.KPI

	panelNote   resolve.Note
	panelNoData bool

	mapLoading   bool
	panelLoading bool
	mapErr       error
	panelErr     error

	events    chan Event
	closeOnce sync.Once
}

// New creates an engine over the given client and stores. Call Init to
// load the dataset catalog and issue the first fetches, and Close when
// done.
func New(client *api.Client, stores Stores, cfg Config, logger zerolog.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	limit := cfg.LayerLimit
	if limit <= 0 {
		limit = DefaultLayerLimit
	}

	e := &Engine{
		client:     client,
		stores:     stores,
		coords:     newCoordinators(stores, logger),
		logger:     logger.With().Str("component", "engine").Logger(),
		rootCtx:    ctx,
		cancel:     cancel,
		mapLane:    lane.New("map"),
		panelLane:  lane.New("panel"),
		global:     timeline.NewAxis(),
		panel:      timeline.NewAxis(),
		dataset:    cfg.Dataset,
		index:      cfg.Index,
		layerLimit: limit,
		events:     make(chan Event, eventBuffer),
	}
	e.globalDebounce = debounce.New(cfg.DebounceWindow, func(struct{}) { e.loadMapLane() })
	e.panelDebounce = debounce.New(cfg.DebounceWindow, func(struct{}) { e.loadPanelLane() })
	return e
}

// Init loads the dataset catalog, activates the configured dataset and
// issues the initial fetches. The passed context bounds only the
// catalog call; everything after runs on the engine's own lifetime.
func (e *Engine) Init(ctx context.Context) error {
	datasets, err := e.client.Datasets(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.datasets = datasets
	dataset := e.dataset
	if dataset == "" && len(datasets) > 0 {
		dataset = datasets[0].Key
	}
	e.dataset = ""
	e.mu.Unlock()

	if dataset == "" {
		e.logger.Warn().Msg("no datasets available")
		e.notify(EventDataset)
		return nil
	}
	e.SetDataset(dataset)
	return nil
}

// Events returns the notification channel. Each event means "state
// changed, pull a fresh Snapshot"; the channel drops notifications
// rather than block the engine.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Close cancels in-flight work and stops the debouncers. The engine
// must not be used afterwards.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.globalDebounce.Stop()
		e.panelDebounce.Stop()
		e.mapLane.Cancel()
		e.panelLane.Cancel()
		e.cancel()
	})
}

// notify publishes a state-change event without ever blocking.
func (e *Engine) notify(kind EventKind) {
	select {
	case e.events <- Event{Kind: kind}:
	default:
	}
}
