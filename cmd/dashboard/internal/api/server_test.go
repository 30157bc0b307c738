package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/alerts"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/api"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/dashboard"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/insights"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/repository"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/testutils"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

type harness struct {
	srv   *httptest.Server
	ai    *testutils.MockInsights
	store *testutils.MockKVStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ai:    &testutils.MockInsights{Text: "fine"},
		store: &testutils.MockKVStore{},
	}
	source := &testutils.MockSource{
		Quotes: []models.Quote{
			{Symbol: "AAPL", Name: "Apple", Sector: "Technology", Price: 190, ChangePercent: 1.5, RSI: 25, Recommendation: models.Buy},
			{Symbol: "F", Name: "Ford", Sector: "Automotive", Price: 12, ChangePercent: -0.5, RSI: 75, Recommendation: models.Sell},
		},
		Points: []models.HistoricalPoint{{Date: time.Unix(0, 0), Price: 190}},
	}
	wl, err := repository.LoadWatchlist(context.Background(), h.store)
	require.NoError(t, err)

	dash := dashboard.New(zap.NewNop(), source, &testutils.MockStream{}, insights.NewDegraded(h.ai, zap.NewNop()), wl)
	require.NoError(t, dash.Load(context.Background()))

	h.srv = httptest.NewServer(api.NewServer(zap.NewNop(), dash, h.store).Handler())
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestQuotes_FilterSearchSort(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/api/quotes?sort=price_asc", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decodeBody[[]models.Quote](t, resp)
	require.Len(t, rows, 2)
	assert.Equal(t, "F", rows[0].Symbol)

	rows = decodeBody[[]models.Quote](t, h.do(t, http.MethodGet, "/api/quotes?search=app", ""))
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].Symbol)

	rows = decodeBody[[]models.Quote](t, h.do(t, http.MethodGet, "/api/quotes?filter=Sell", ""))
	require.Len(t, rows, 1)
	assert.Equal(t, "F", rows[0].Symbol)

	resp = h.do(t, http.MethodGet, "/api/quotes?filter=bogus", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWatchlist_AddRemove(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/watchlist/aapl", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, true, body["inWatchlist"])

	// adding twice keeps it in
	body = decodeBody[map[string]any](t, h.do(t, http.MethodPost, "/api/watchlist/AAPL", ""))
	assert.Equal(t, true, body["inWatchlist"])

	rows := decodeBody[[]models.Quote](t, h.do(t, http.MethodGet, "/api/quotes?filter=watchlist", ""))
	require.Len(t, rows, 1)

	body = decodeBody[map[string]any](t, h.do(t, http.MethodDelete, "/api/watchlist/AAPL", ""))
	assert.Equal(t, false, body["inWatchlist"])

	resp = h.do(t, http.MethodPost, "/api/watchlist/NOPE", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatchlist_ConcurrentAddsKeepSymbol(t *testing.T) {
	h := newHarness(t)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodPost, h.srv.URL+"/api/watchlist/F", nil)
			resp, err := http.DefaultClient.Do(req)
			if assert.NoError(t, err) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	list := decodeBody[[]string](t, h.do(t, http.MethodGet, "/api/watchlist", ""))
	assert.Equal(t, []string{"F"}, list)
}

func TestAlerts_Lifecycle(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPut, "/api/alerts/AAPL", `{"targetPrice": 180, "condition": "above"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decodeBody[alerts.Record](t, resp)
	assert.Equal(t, models.AlertTriggered, rec.State)

	notes := decodeBody[[]models.Notification](t, h.do(t, http.MethodGet, "/api/notifications", ""))
	require.Len(t, notes, 1)

	resp = h.do(t, http.MethodDelete, "/api/notifications/"+notes[0].ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = h.do(t, http.MethodDelete, "/api/notifications/"+notes[0].ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = h.do(t, http.MethodDelete, "/api/alerts/AAPL", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = h.do(t, http.MethodDelete, "/api/alerts/AAPL", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAlerts_BadInput(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPut, "/api/alerts/AAPL", `{"targetPrice": 180, "condition": "sideways"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodPut, "/api/alerts/AAPL", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodPut, "/api/alerts/NOPE", `{"targetPrice": 1, "condition": "below"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScreener(t *testing.T) {
	h := newHarness(t)
	h.ai.Criteria = models.ScreenerCriteria{Sectors: []string{"Automotive"}}

	resp := h.do(t, http.MethodPost, "/api/screener", `{"query": "car makers"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rows := decodeBody[[]models.Quote](t, h.do(t, http.MethodGet, "/api/quotes", ""))
	require.Len(t, rows, 1)
	assert.Equal(t, "F", rows[0].Symbol)

	resp = h.do(t, http.MethodPost, "/api/screener", `{"query": "   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	h.ai.Err = errors.New("model down")
	resp = h.do(t, http.MethodPost, "/api/screener", `{"query": "banks"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	status := decodeBody[dashboard.Status](t, h.do(t, http.MethodGet, "/api/status", ""))
	assert.Equal(t, "car makers", status.Screener)

	resp = h.do(t, http.MethodDelete, "/api/screener", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	rows = decodeBody[[]models.Quote](t, h.do(t, http.MethodGet, "/api/quotes", ""))
	assert.Len(t, rows, 2)
}

func TestDetail(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/api/stocks/AAPL?range=1w", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	d := decodeBody[dashboard.Detail](t, resp)
	assert.Equal(t, models.Range1W, d.Range)
	assert.Equal(t, "fine", d.Analysis)

	resp = h.do(t, http.MethodGet, "/api/stocks/AAPL?range=5y", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/stocks/NOPE", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTheme(t *testing.T) {
	h := newHarness(t)

	body := decodeBody[map[string]string](t, h.do(t, http.MethodGet, "/api/theme", ""))
	assert.Equal(t, repository.DefaultTheme, body["theme"])

	resp := h.do(t, http.MethodPut, "/api/theme", `{"theme": "light"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody[map[string]string](t, h.do(t, http.MethodGet, "/api/theme", ""))
	assert.Equal(t, "light", body["theme"])

	resp = h.do(t, http.MethodPut, "/api/theme", `{"theme": "neon"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsAndSummary(t *testing.T) {
	h := newHarness(t)

	m := decodeBody[dashboard.Metrics](t, h.do(t, http.MethodGet, "/api/metrics", ""))
	require.Len(t, m.Gainers, 1)
	assert.Equal(t, "AAPL", m.Gainers[0].Symbol)
	require.Len(t, m.Losers, 1)
	assert.Len(t, m.Sectors, 2)

	idx := decodeBody[[]models.MarketIndex](t, h.do(t, http.MethodGet, "/api/summary", ""))
	assert.NotEmpty(t, idx)

	resp := h.do(t, http.MethodPost, "/api/reload", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
