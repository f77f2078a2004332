package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/cli"
	"github.com/droughtwatch/droughtwatch/internal/engine/cache"
)

// fakeAPI is a canned drought server for CLI tests. It records the
// query values of every request so tests can assert on parameter
// plumbing.
type fakeAPI struct {
	mu      sync.Mutex
	srv     *httptest.Server
	queries map[string][]url.Values

	datasets []api.DatasetInfo
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		queries: make(map[string][]url.Values),
		datasets: []api.DatasetInfo{
			{Key: "counties", Title: "Counties", GeomType: "polygon", MinMonth: "2018-01", MaxMonth: "2020-12"},
			{Key: "basins", Title: "River Basins", GeomType: "polygon", MinMonth: "2015-01", MaxMonth: "2019-06"},
		},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries[r.URL.Path] = append(f.queries[r.URL.Path], r.URL.Query())
}

// lastQuery returns the most recent query for a path, or nil.
func (f *fakeAPI) lastQuery(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	qs := f.queries[path]
	if len(qs) == 0 {
		return nil
	}
	return qs[len(qs)-1]
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	q := r.URL.Query()

	switch r.URL.Path {
	case "/datasets":
		writeJSON(w, f.datasets)

	case "/meta":
		switch q.Get("level") {
		case "counties":
			writeJSON(w, api.DatasetMeta{
				DatasetKey: "counties", Title: "Counties", GeomType: "polygon",
				FeatureCount: 12847, Indices: []string{"spi3", "spei6"},
				MinMonth: "2018-01", MaxMonth: "2020-12",
			})
		case "basins":
			writeJSON(w, api.DatasetMeta{
				DatasetKey: "basins", Title: "River Basins", GeomType: "polygon",
				FeatureCount: 32, Indices: []string{"spi3"},
				MinMonth: "2015-01", MaxMonth: "2019-06",
			})
		default:
			http.Error(w, "unknown dataset", http.StatusNotFound)
		}

	case "/overview":
		date := q.Get("date")
		if date == "" {
			date = "2020-12"
		}
		writeJSON(w, api.Overview{
			Date: date, Index: q.Get("index"),
			WithValue: 170, Missing: 8,
			NormalWet: 1204, D0: 30, D1: 12, D2: 5, D3: 2, D4: 1,
		})

	case "/kpi":
		if q.Get("region_id") == "X404" {
			writeJSON(w, api.KPI{Error: "No series for region"})
			return
		}
		kpi := api.KPI{
			Latest: -1.17, Min: -2.1, Max: 0.8, Mean: -0.4,
			Severity:       api.ClassD1,
			Trend:          api.Trend{Symbol: "-", LabelEN: "Worsening"},
			RequestedMonth: q.Get("date"),
			EffectiveMonth: "2020-06",
		}
		if kpi.RequestedMonth != "" && kpi.RequestedMonth != kpi.EffectiveMonth {
			kpi.Note = "nearest-previous"
		}
		writeJSON(w, kpi)

	case "/timeseries":
		if q.Get("region_id") != "PT-11" {
			writeJSON(w, api.Timeseries{Feature: q.Get("region_id")})
			return
		}
		v := func(x float64) *float64 { return &x }
		writeJSON(w, api.Timeseries{
			Feature: "PT-11", MinMonth: "2020-01", MaxMonth: "2020-06",
			Data: []api.SeriesPoint{
				{Date: "2020-01-01", Value: v(0.4)},
				{Date: "2020-02-01", Value: v(-0.2)},
				{Date: "2020-03-01", Value: nil},
				{Date: "2020-04-01", Value: v(-1.1)},
				{Date: "2020-05-01", Value: v(-1.6)},
				{Date: "2020-06-01", Value: v(-1.37)},
			},
		})

	case "/health":
		writeJSON(w, api.Health{Status: "ok", Version: "1.2.0", Cache: "redis"})

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// clearEnvOverrides pins every DROUGHTWATCH_* variable to empty so the
// host environment cannot leak into command behavior.
func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DROUGHTWATCH_CONFIG",
		"DROUGHTWATCH_SERVER_URL",
		"DROUGHTWATCH_DATASET",
		"DROUGHTWATCH_INDEX",
		"DROUGHTWATCH_LOG_LEVEL",
		"DROUGHTWATCH_LOG_FORMAT",
		cache.EnvTTLSeconds,
		cache.EnvCacheEnabled,
		cache.EnvMaxEntries,
		cache.EnvRedisURL,
	} {
		t.Setenv(key, "")
	}
}

// runDW executes the root command against the fake server and returns
// stdout, stderr and the execution error.
func runDW(t *testing.T, f *fakeAPI, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	return runDWConfig(t, f, cfgPath, args...)
}

// runDWConfig is runDW with an explicit config path, for tests that
// pre-write a config file.
func runDWConfig(t *testing.T, f *fakeAPI, cfgPath string, args ...string) (string, string, error) {
	t.Helper()
	clearEnvOverrides(t)

	full := []string{"--config", cfgPath}
	if f != nil {
		full = append(full, "--server", f.srv.URL)
	}
	full = append(full, args...)

	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(full)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
