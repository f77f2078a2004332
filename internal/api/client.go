// Package api is the HTTP client for the drought dashboard backend.
// Payload shapes are owned by the server; this package only moves them,
// reporting transport and status failures in a form the orchestration
// layer can degrade on.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 15 * time.Second

// maxErrorBodyBytes caps how much of an error response body lands in
// the error message.
const maxErrorBodyBytes = 512

// ErrNoData marks a selection the server has no series for. It is a
// user-visible condition, distinct from transport failures.
var ErrNoData = errors.New("no data for this selection")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Endpoint, e.Code, e.Body)
}

// Client talks to one backend instance.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return NewClientWithHTTPClient(baseURL, &http.Client{Timeout: DefaultTimeout}, logger)
}

// NewClientWithHTTPClient creates a client using an existing transport.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LayerParams selects a map layer slice.
type LayerParams struct {
	Dataset string
	Index   string
	Month   string
	Bounds  *Bounds
	Limit   int
	Offset  int
}

// MapData fetches the GeoJSON layer for one dataset, index and month,
// optionally restricted to a viewport.
func (c *Client) MapData(ctx context.Context, p LayerParams) (*FeatureCollection, error) {
	q := url.Values{}
	q.Set("level", p.Dataset)
	q.Set("index", p.Index)
	q.Set("date", p.Month)
	if p.Bounds != nil {
		q.Set("bbox", p.Bounds.String())
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}

	var fc FeatureCollection
	if err := c.getJSON(ctx, "/mapdata", q, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// Overview fetches the aggregate severity counts for one month.
func (c *Client) Overview(ctx context.Context, dataset, index, month string) (*Overview, error) {
	q := url.Values{}
	q.Set("level", dataset)
	q.Set("index", index)
	q.Set("date", month)

	var ov Overview
	if err := c.getJSON(ctx, "/overview", q, &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}

// Timeseries fetches a feature's full monthly series, including its
// coverage bounds.
func (c *Client) Timeseries(ctx context.Context, dataset, index, featureID string) (*Timeseries, error) {
	q := url.Values{}
	q.Set("region_id", featureID)
	q.Set("level", dataset)
	q.Set("index", index)

	var ts Timeseries
	if err := c.getJSON(ctx, "/timeseries", q, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

// KPI fetches a feature's summary for one month. A server with no
// series for the selection yields ErrNoData.
func (c *Client) KPI(ctx context.Context, dataset, index, featureID, month string) (*KPI, error) {
	q := url.Values{}
	q.Set("region_id", featureID)
	q.Set("level", dataset)
	q.Set("index", index)
	if month != "" {
		q.Set("date", month)
	}

	var kpi KPI
	if err := c.getJSON(ctx, "/kpi", q, &kpi); err != nil {
		return nil, err
	}
	if kpi.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoData, kpi.Error)
	}
	return &kpi, nil
}

// Datasets lists the available dataset layers.
func (c *Client) Datasets(ctx context.Context) ([]DatasetInfo, error) {
	var datasets []DatasetInfo
	if err := c.getJSON(ctx, "/datasets", nil, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// DatasetMeta fetches one dataset's indices and coverage window.
func (c *Client) DatasetMeta(ctx context.Context, dataset string) (*DatasetMeta, error) {
	q := url.Values{}
	q.Set("level", dataset)

	var meta DatasetMeta
	if err := c.getJSON(ctx, "/meta", q, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Health fetches the server's liveness report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// getJSON performs one GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &StatusError{
			Endpoint: path,
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("decode %s response: %w", path, decodeErr)
	}
	return nil
}
