package engine_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/engine"
	"github.com/droughtwatch/droughtwatch/internal/engine/resolve"
	"github.com/droughtwatch/droughtwatch/internal/engine/timeline"
)

// fakeService is an in-process stand-in for the dashboard API. It
// counts calls per endpoint, records /mapdata query parameters in
// arrival order and can hold a /mapdata response open until released,
// which lets tests overlap in-flight loads deliberately.
type fakeService struct {
	mu sync.Mutex

	srv *httptest.Server

	datasets []api.DatasetInfo
	meta     map[string]api.DatasetMeta
	series   map[string]*api.Timeseries
	kpis     map[string]*api.KPI

	kpiStatus int
	holdDates map[string]chan struct{}

	calls     map[string]int
	mapDates  []string
	mapBboxes []string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		datasets: []api.DatasetInfo{
			{Key: "counties", Title: "Counties", GeomType: "polygon", MinMonth: "2018-01", MaxMonth: "2020-12"},
			{Key: "basins", Title: "Basins", GeomType: "polygon", MinMonth: "2015-01", MaxMonth: "2019-06"},
		},
		meta: map[string]api.DatasetMeta{
			"counties": {
				DatasetKey:   "counties",
				Title:        "Counties",
				GeomType:     "polygon",
				FeatureCount: 2,
				Indices:      []string{"spi3", "spei6"},
				MinMonth:     "2018-01",
				MaxMonth:     "2020-12",
			},
			"basins": {
				DatasetKey:   "basins",
				Title:        "Basins",
				GeomType:     "polygon",
				FeatureCount: 1,
				Indices:      []string{"spi3"},
				MinMonth:     "2015-01",
				MaxMonth:     "2019-06",
			},
		},
		series: map[string]*api.Timeseries{
			"C001": seriesFixture("C001", "2018-01", "2020-12"),
		},
		kpis: map[string]*api.KPI{
			"C001": {Latest: -1.42, Min: -2.31, Max: 1.05, Mean: -0.38, Severity: api.ClassD1, Trend: api.NeutralTrend()},
		},
		holdDates: map[string]chan struct{}{},
		calls:     map[string]int{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.mu.Unlock()

	switch r.URL.Path {
	case "/datasets":
		f.mu.Lock()
		datasets := f.datasets
		f.mu.Unlock()
		writeJSON(w, datasets)

	case "/meta":
		f.mu.Lock()
		meta, ok := f.meta[r.URL.Query().Get("level")]
		f.mu.Unlock()
		if !ok {
			http.Error(w, `{"detail":"unknown dataset"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, meta)

	case "/mapdata":
		date := r.URL.Query().Get("date")
		f.mu.Lock()
		f.mapDates = append(f.mapDates, date)
		f.mapBboxes = append(f.mapBboxes, r.URL.Query().Get("bbox"))
		gate := f.holdDates[date]
		f.mu.Unlock()
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, layerFixture(date))

	case "/overview":
		writeJSON(w, api.Overview{
			Date:      r.URL.Query().Get("date"),
			Index:     r.URL.Query().Get("index"),
			WithValue: 2,
			NormalWet: 1,
			D1:        1,
		})

	case "/timeseries":
		f.mu.Lock()
		ts, ok := f.series[r.URL.Query().Get("region_id")]
		f.mu.Unlock()
		if !ok {
			http.Error(w, `{"detail":"unknown region"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, ts)

	case "/kpi":
		f.mu.Lock()
		status := f.kpiStatus
		kpi, ok := f.kpis[r.URL.Query().Get("region_id")]
		f.mu.Unlock()
		if status != 0 {
			http.Error(w, `{"detail":"kpi backend unavailable"}`, status)
			return
		}
		if !ok {
			writeJSON(w, api.KPI{Error: "No series for region"})
			return
		}
		out := *kpi
		if date := r.URL.Query().Get("date"); date != "" && out.RequestedMonth == "" {
			out.RequestedMonth = date
		}
		writeJSON(w, out)

	case "/health":
		writeJSON(w, api.Health{Status: "ok", Version: "1.2.0"})

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeService) dates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mapDates...)
}

func (f *fakeService) bboxes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mapBboxes...)
}

// hold makes /mapdata block for the given month until the returned
// channel is closed.
func (f *fakeService) hold(date string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.holdDates[date] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeService) setSeries(featureID string, ts *api.Timeseries) {
	f.mu.Lock()
	f.series[featureID] = ts
	f.mu.Unlock()
}

func (f *fakeService) setKPI(featureID string, kpi *api.KPI) {
	f.mu.Lock()
	f.kpis[featureID] = kpi
	f.mu.Unlock()
}

func (f *fakeService) setKPIStatus(code int) {
	f.mu.Lock()
	f.kpiStatus = code
	f.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// layerFixture smuggles the answered month through the first feature's
// name so tests can tell layer responses apart.
func layerFixture(date string) api.FeatureCollection {
	value := -1.2
	total := 2
	return api.FeatureCollection{
		Type: "FeatureCollection",
		Features: []api.Feature{
			{
				Type:       "Feature",
				Geometry:   json.RawMessage(`{"type":"Point","coordinates":[51.4,35.7]}`),
				Properties: api.FeatureProperties{ID: "C001", Name: date, Value: &value},
			},
		},
		Meta: api.LayerMeta{Total: &total, Returned: 1, Limit: 2000},
	}
}

// seriesFixture builds a gapless monthly series over [minMonth,
// maxMonth]; months listed in gaps stay inside the coverage but carry
// no value.
func seriesFixture(feature, minMonth, maxMonth string, gaps ...string) *api.Timeseries {
	lo, err := timeline.ParseMonth(minMonth)
	if err != nil {
		panic(err)
	}
	hi, err := timeline.ParseMonth(maxMonth)
	if err != nil {
		panic(err)
	}
	data := make([]api.SeriesPoint, 0, int(hi-lo)+1)
	for m := lo; m <= hi; m++ {
		point := api.SeriesPoint{Date: m.String() + "-01"}
		if !slices.Contains(gaps, m.String()) {
			v := -0.9
			point.Value = &v
		}
		data = append(data, point)
	}
	return &api.Timeseries{Feature: feature, MinMonth: minMonth, MaxMonth: maxMonth, Data: data}
}

func newEngine(t *testing.T, f *fakeService, cfg engine.Config) *engine.Engine {
	t.Helper()
	if cfg.DebounceWindow == 0 {
		cfg.DebounceWindow = 5 * time.Millisecond
	}
	client := api.NewClient(f.srv.URL, zerolog.Nop())
	eng := engine.New(client, engine.NewMemoryStores(time.Minute, 64), cfg, zerolog.Nop())
	t.Cleanup(eng.Close)
	return eng
}

func initEngine(t *testing.T, eng *engine.Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, eng.Init(ctx))
	waitMapSettled(t, eng)
}

func waitMapSettled(t *testing.T, eng *engine.Engine) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap := eng.Snapshot()
		return !snap.MapLoading && snap.Layer != nil
	}, 3*time.Second, 5*time.Millisecond, "map lane never settled")
}

func waitPanelSettled(t *testing.T, eng *engine.Engine) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap := eng.Snapshot()
		return !snap.PanelLoading && (snap.KPI != nil || snap.PanelNoData)
	}, 3*time.Second, 5*time.Millisecond, "panel lane never settled")
}

func month(t *testing.T, s string) timeline.Month {
	t.Helper()
	m, err := timeline.ParseMonth(s)
	require.NoError(t, err)
	return m
}

func layerMonth(snap engine.Snapshot) string {
	if snap.Layer == nil || len(snap.Layer.Features) == 0 {
		return ""
	}
	return snap.Layer.Features[0].Properties.Name
}

func TestInitActivatesFirstDataset(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	snap := eng.Snapshot()
	assert.Equal(t, "counties", snap.Dataset)
	assert.Equal(t, "spi3", snap.Index)
	assert.Equal(t, []string{"spi3", "spei6"}, snap.Indices)
	assert.Len(t, snap.Datasets, 2)

	require.True(t, snap.Global.Bounded)
	assert.Equal(t, "2018-01", snap.Global.Min.String())
	assert.Equal(t, "2020-12", snap.Global.Max.String())
	assert.Equal(t, "2020-12", snap.Global.Current.String(), "a fresh dataset opens on its latest month")

	assert.Equal(t, "2020-12", layerMonth(snap))
	require.NotNil(t, snap.Overview)
	assert.Equal(t, "2020-12", snap.Overview.Date)
	assert.Empty(t, snap.MapError)

	assert.False(t, snap.Panel.Bounded)
	assert.Nil(t, snap.Selection)
}

func TestInitHonorsConfiguredDataset(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{Dataset: "basins"})
	initEngine(t, eng)

	snap := eng.Snapshot()
	assert.Equal(t, "basins", snap.Dataset)
	assert.Equal(t, "spi3", snap.Index)
	assert.Equal(t, "2019-06", snap.Global.Current.String())
}

func TestSliderDragCollapsesToOneRequest(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{DebounceWindow: 40 * time.Millisecond})
	initEngine(t, eng)

	for _, s := range []string{"2020-01", "2020-02", "2020-03", "2020-04"} {
		eng.SetGlobalMonth(month(t, s))
	}

	// The axis follows the drag immediately even though the fetch waits.
	assert.Equal(t, "2020-04", eng.Snapshot().Global.Current.String())

	require.Eventually(t, func() bool {
		return layerMonth(eng.Snapshot()) == "2020-04"
	}, 3*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"2020-12", "2020-04"}, f.dates(),
		"intermediate drag positions must never reach the network")
}

func TestSupersededMapResultNeverLands(t *testing.T) {
	f := newFakeService(t)
	release := f.hold("2020-01")
	eng := newEngine(t, f, engine.Config{DebounceWindow: time.Millisecond})
	initEngine(t, eng)

	eng.SetGlobalMonth(month(t, "2020-01"))
	require.Eventually(t, func() bool {
		return slices.Contains(f.dates(), "2020-01")
	}, 3*time.Second, time.Millisecond, "first load never started")

	// A newer month arrives while 2020-01 is still in flight.
	eng.SetGlobalMonth(month(t, "2020-06"))
	require.Eventually(t, func() bool {
		snap := eng.Snapshot()
		return layerMonth(snap) == "2020-06" && !snap.MapLoading
	}, 3*time.Second, time.Millisecond)

	close(release)
	time.Sleep(30 * time.Millisecond)

	snap := eng.Snapshot()
	assert.Equal(t, "2020-06", layerMonth(snap), "the late response must not overwrite the newer one")
	assert.Empty(t, snap.MapError)
}

func TestGlobalMonthLeavesPanelAlone(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	seriesCalls := f.count("/timeseries")
	kpiCalls := f.count("/kpi")

	eng.SetGlobalMonth(month(t, "2019-03"))
	require.Eventually(t, func() bool {
		return layerMonth(eng.Snapshot()) == "2019-03"
	}, 3*time.Second, 5*time.Millisecond)

	assert.Equal(t, seriesCalls, f.count("/timeseries"), "map month changes must not refetch the series")
	assert.Equal(t, kpiCalls, f.count("/kpi"), "map month changes must not refetch the KPI")

	snap := eng.Snapshot()
	assert.Equal(t, "2020-12", snap.Panel.Current.String(), "the panel keeps its own month")
}

func TestPanelSeedsFromSeriesCoverage(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	snap := eng.Snapshot()
	require.NotNil(t, snap.Selection)
	assert.Equal(t, "C001", snap.Selection.ID)
	require.NotNil(t, snap.Series)
	require.NotNil(t, snap.KPI)
	assert.Equal(t, api.ClassD1, snap.KPI.Severity)

	require.True(t, snap.Panel.Bounded)
	assert.Equal(t, "2018-01", snap.Panel.Min.String())
	assert.Equal(t, "2020-12", snap.Panel.Max.String())
	assert.Equal(t, "2020-12", snap.Panel.Current.String())
	assert.Equal(t, resolve.NoteNone, snap.PanelNote)
}

func TestPanelResyncsToNearestMonthWithData(t *testing.T) {
	f := newFakeService(t)
	f.setSeries("C001", seriesFixture("C001", "2018-01", "2020-12", "2020-10", "2020-11", "2020-12"))
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	snap := eng.Snapshot()
	assert.Equal(t, "2020-09", snap.Panel.Current.String(),
		"an empty latest month falls back to the nearest earlier month with data")
	assert.Equal(t, resolve.NoteNearestPrevious, snap.PanelNote)
	assert.Equal(t, "2020-12", snap.Panel.Max.String(), "coverage bounds keep the empty months")
}

func TestServerEffectiveMonthWins(t *testing.T) {
	f := newFakeService(t)
	f.setKPI("C001", &api.KPI{
		Latest:         -0.7,
		Severity:       api.ClassD0,
		Trend:          api.NeutralTrend(),
		RequestedMonth: "2020-12",
		EffectiveMonth: "2019-06",
		Note:           "nearest-previous",
	})
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	snap := eng.Snapshot()
	assert.Equal(t, "2019-06", snap.Panel.Current.String(),
		"the service's own resolution outranks the local one")
	assert.Equal(t, resolve.NoteNearestPrevious, snap.PanelNote)
}

func TestKPITransportFailureDegrades(t *testing.T) {
	f := newFakeService(t)
	f.setKPIStatus(http.StatusBadGateway)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	snap := eng.Snapshot()
	require.NotNil(t, snap.KPI)
	assert.Equal(t, api.ClassNA, snap.KPI.Severity)
	assert.Equal(t, api.NeutralTrend(), snap.KPI.Trend)
	assert.NotEmpty(t, snap.PanelError)
	assert.False(t, snap.PanelNoData, "a transport failure is not the no-data state")
	assert.NotNil(t, snap.Series, "the series half of the panel still loads")

	// Failures are not cached: the next reload reaches the recovered
	// service.
	f.setKPIStatus(0)
	eng.Reload()
	require.Eventually(t, func() bool {
		snap := eng.Snapshot()
		return snap.KPI != nil && snap.KPI.Severity == api.ClassD1 && !snap.PanelLoading
	}, 3*time.Second, 5*time.Millisecond)
	assert.Empty(t, eng.Snapshot().PanelError)
}

func TestExplicitNoDataAnswer(t *testing.T) {
	f := newFakeService(t)
	f.setSeries("X002", seriesFixture("X002", "2018-01", "2020-12"))
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("X002", "Empty County", "", nil)
	waitPanelSettled(t, eng)

	snap := eng.Snapshot()
	assert.True(t, snap.PanelNoData)
	assert.Nil(t, snap.KPI)
	assert.Equal(t, resolve.NoteNoData, snap.PanelNote)
	assert.Empty(t, snap.PanelError, "an explicit no-data answer is not an error")
}

func TestDatasetSwitchResetsSelection(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	eng.SetDataset("basins")
	require.Eventually(t, func() bool {
		snap := eng.Snapshot()
		return snap.Dataset == "basins" && !snap.MapLoading && layerMonth(snap) == "2019-06"
	}, 3*time.Second, 5*time.Millisecond)

	snap := eng.Snapshot()
	assert.Nil(t, snap.Selection, "the selection belongs to the old dataset")
	assert.Nil(t, snap.Series)
	assert.Nil(t, snap.KPI)
	assert.False(t, snap.Panel.Bounded)

	assert.Equal(t, []string{"spi3"}, snap.Indices)
	assert.Equal(t, "2019-06", snap.Global.Current.String(),
		"the map month clamps into the new dataset's coverage")
}

func TestSetIndexReloadsBothLanes(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	mapCalls := f.count("/mapdata")
	kpiCalls := f.count("/kpi")
	seriesCalls := f.count("/timeseries")

	eng.SetIndex("spei6")
	require.Eventually(t, func() bool {
		snap := eng.Snapshot()
		return snap.Index == "spei6" && !snap.MapLoading && !snap.PanelLoading &&
			f.count("/mapdata") == mapCalls+1 &&
			f.count("/kpi") == kpiCalls+1 &&
			f.count("/timeseries") == seriesCalls+1
	}, 3*time.Second, 5*time.Millisecond)

	snap := eng.Snapshot()
	require.NotNil(t, snap.Selection)
	assert.Equal(t, "C001", snap.Selection.ID, "the selection survives an index switch")

	eng.SetIndex("nope")
	assert.Equal(t, "spei6", eng.Snapshot().Index, "unknown indices are rejected")
}

func TestViewportChangesLayerRequests(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	b, err := api.ParseBounds("44.05,25.06,63.33,39.78")
	require.NoError(t, err)
	eng.SetViewport(&b)

	require.Eventually(t, func() bool {
		return f.count("/mapdata") == 2
	}, 3*time.Second, 5*time.Millisecond)
	waitMapSettled(t, eng)

	bboxes := f.bboxes()
	assert.Equal(t, "44.05,25.06,63.33,39.78", bboxes[len(bboxes)-1])
	assert.Equal(t, 1, f.count("/overview"), "the overview is viewport-independent and stays cached")

	// Lifting the viewport goes back to the full-extent entry, which is
	// still cached from the initial load.
	eng.SetViewport(nil)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, f.count("/mapdata"))
}

func TestSyncPanelToMap(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	eng.SetGlobalMonth(month(t, "2019-03"))
	require.Eventually(t, func() bool {
		return layerMonth(eng.Snapshot()) == "2019-03"
	}, 3*time.Second, 5*time.Millisecond)

	kpiCalls := f.count("/kpi")
	eng.SyncPanelToMap()
	require.Eventually(t, func() bool {
		snap := eng.Snapshot()
		return snap.Panel.Current.String() == "2019-03" && !snap.PanelLoading &&
			f.count("/kpi") == kpiCalls+1
	}, 3*time.Second, 5*time.Millisecond)

	assert.Equal(t, resolve.NoteNone, eng.Snapshot().PanelNote)
}

func TestReloadForcesFreshData(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.Reload()
	require.Eventually(t, func() bool {
		snap := eng.Snapshot()
		return f.count("/mapdata") == 2 && f.count("/overview") == 2 && !snap.MapLoading
	}, 3*time.Second, 5*time.Millisecond, "reload must bypass the cache")
}

func TestClearSelection(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	eng.ClearSelection()
	snap := eng.Snapshot()
	assert.Nil(t, snap.Selection)
	assert.Nil(t, snap.Series)
	assert.Nil(t, snap.KPI)
	assert.False(t, snap.Panel.Bounded)
	assert.False(t, snap.PanelLoading)
}

func TestGlobalNavigation(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.StepGlobalMonth(-1)
	assert.Equal(t, "2020-11", eng.Snapshot().Global.Current.String())

	eng.JumpGlobalStart()
	assert.Equal(t, "2018-01", eng.Snapshot().Global.Current.String())

	eng.StepGlobalMonth(-1)
	assert.Equal(t, "2018-01", eng.Snapshot().Global.Current.String(), "stepping past the start is rejected")

	eng.JumpGlobalEnd()
	assert.Equal(t, "2020-12", eng.Snapshot().Global.Current.String())

	eng.SetGlobalMonth(month(t, "2017-05"))
	assert.Equal(t, "2020-12", eng.Snapshot().Global.Current.String(), "out-of-coverage months are rejected")
}

func TestPanelNavigationIsIndependent(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})
	initEngine(t, eng)

	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)

	mapCalls := f.count("/mapdata")
	kpiCalls := f.count("/kpi")

	eng.SetPanelMonth(month(t, "2019-07"))
	require.Eventually(t, func() bool {
		return f.count("/kpi") == kpiCalls+1 && !eng.Snapshot().PanelLoading
	}, 3*time.Second, 5*time.Millisecond)

	snap := eng.Snapshot()
	assert.Equal(t, "2019-07", snap.Panel.Current.String())
	assert.Equal(t, "2020-12", snap.Global.Current.String(), "the map month is untouched")
	assert.Equal(t, mapCalls, f.count("/mapdata"), "panel navigation must not reload the map")
}

func TestEventsNeverBlockTheEngine(t *testing.T) {
	f := newFakeService(t)
	eng := newEngine(t, f, engine.Config{})

	// Nobody drains the channel while the engine works through a full
	// session's worth of changes.
	initEngine(t, eng)
	eng.SelectFeature("C001", "Qom", "Qom Province", nil)
	waitPanelSettled(t, eng)
	eng.SetGlobalMonth(month(t, "2019-01"))
	waitMapSettled(t, eng)

	drained := 0
	for {
		select {
		case <-eng.Events():
			drained++
			continue
		default:
		}
		break
	}
	assert.Positive(t, drained)
}
