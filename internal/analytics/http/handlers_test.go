package analytichttp

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/analytics/export"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/observability"
	"github.com/agrilens/dashboard/internal/query"
	"github.com/agrilens/dashboard/internal/shared"
	"github.com/agrilens/dashboard/internal/view"
)

type staticData struct {
	ds *companies.Dataset
}

func (s staticData) Current(context.Context) *companies.Dataset { return s.ds }

type stubPDF struct {
	err  error
	last export.ReportPayload
}

func (s *stubPDF) RenderReport(ctx context.Context, payload export.ReportPayload) ([]byte, error) {
	s.last = payload
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4\n"), nil
}

type stubSnapshots struct {
	err    error
	states []query.State
}

func (s *stubSnapshots) EnqueueSnapshot(ctx context.Context, state query.State) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.states = append(s.states, state)
	return fmt.Sprintf("task-%d", len(s.states)), nil
}

func ptrFloat(v float64) *float64 { return &v }

func dataset(n int) *companies.Dataset {
	ds := &companies.Dataset{Fingerprint: "fixture"}
	for i := 1; i <= n; i++ {
		ds.Companies = append(ds.Companies, companies.Record{
			Name:     fmt.Sprintf("Company %02d", i),
			Category: []string{"Robotics", "Biologicals", "Imagery"}[i%3],
			Stage:    []string{"Seed", "Series A", "Series B"}[i%3],
			Country:  "USA",
			Funding:  ptrFloat(float64(i * 10)),
		})
	}
	ds.Technologies.Categories = []companies.NamedValue{{Name: "Robotics", Value: 12}}
	return ds
}

type harness struct {
	handler   *Handler
	router    chi.Router
	sess      *shared.Session
	pdf       *stubPDF
	snapshots *stubSnapshots
	metrics   *observability.Metrics
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	hs := &harness{
		sess:      &shared.Session{ID: "3f2b8c1e-4d5a-4e6f-9a7b-0c1d2e3f4a5b"},
		pdf:       &stubPDF{},
		snapshots: &stubSnapshots{},
		metrics:   observability.NewMetrics(),
	}
	hs.handler = NewHandler(Params{
		Data:      staticData{ds: dataset(n)},
		Charts:    analytics.NewService(nil, nil, nil),
		Templates: templates,
		PDF:       hs.pdf,
		Snapshots: hs.snapshots,
		Metrics:   hs.metrics,
	})
	hs.handler.WithNow(func() time.Time { return time.Date(2025, 2, 15, 9, 30, 0, 0, time.UTC) })
	hs.router = chi.NewRouter()
	hs.handler.MountRoutes(hs.router)
	return hs
}

func (hs *harness) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), hs.sess))
	rr := httptest.NewRecorder()
	hs.router.ServeHTTP(rr, req)
	return rr
}

func (hs *harness) state(t *testing.T) query.State {
	t.Helper()
	state, ok := hs.sess.QueryState()
	require.True(t, ok, "query state must be stored in the session")
	return state
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestDashboardPageRendersFirstPage(t *testing.T) {
	hs := newHarness(t, 45)
	rr := hs.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "Showing 1-20 of 45 companies")
	assert.Contains(t, body, "Company 45")
	assert.NotContains(t, body, `<td class="company-name">Company 25</td>`)
	assert.Contains(t, body, `<figure class="chart chart-doughnut"`)
	assert.Contains(t, body, `href="/companies/page/2#results"`)
	assert.Equal(t, query.DefaultState(), hs.state(t))
}

func TestDashboardPageEmptyDataset(t *testing.T) {
	hs := newHarness(t, 0)
	rr := hs.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No companies found")
	assert.NotContains(t, rr.Body.String(), `class="pagination"`)
}

func TestFilterFormUpdatesStateAndRedirects(t *testing.T) {
	hs := newHarness(t, 45)
	rr := hs.do(http.MethodGet, "/companies?q=&category=Robotics&stage=all&country=all&sort=name-asc", "")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/#results", rr.Header().Get("Location"))

	state := hs.state(t)
	assert.Equal(t, "Robotics", state.Category)
	assert.Equal(t, query.SortNameAsc, state.SortKey)
	assert.Equal(t, 1, state.CurrentPage)

	page := hs.do(http.MethodGet, "/", "").Body.String()
	assert.Contains(t, page, "Showing 1-15 of 15 companies")
	assert.Contains(t, page, `<option value="Robotics" selected>`)
}

func TestFilterFormStoresSearchTermVerbatim(t *testing.T) {
	hs := newHarness(t, 45)
	rr := hs.do(http.MethodGet, "/companies?q=Tel+&country=+Israel+", "")
	require.Equal(t, http.StatusSeeOther, rr.Code)

	state := hs.state(t)
	assert.Equal(t, "Tel ", state.SearchTerm)
	assert.Equal(t, "Israel", state.Country)
}

func TestFilterFormWithoutParamsIsNoop(t *testing.T) {
	hs := newHarness(t, 45)
	rr := hs.do(http.MethodGet, "/companies", "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	_, ok := hs.sess.QueryState()
	assert.False(t, ok)
}

func TestFilterFormRejectsOversizedSearch(t *testing.T) {
	hs := newHarness(t, 45)
	rr := hs.do(http.MethodGet, "/companies?q="+strings.Repeat("a", 201), "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid filter")
}

func TestNavigationAcceptsAndRejects(t *testing.T) {
	hs := newHarness(t, 45)

	hs.do(http.MethodGet, "/companies/page/next", "")
	assert.Equal(t, 2, hs.state(t).CurrentPage)

	hs.do(http.MethodGet, "/companies/page/99", "")
	assert.Equal(t, 2, hs.state(t).CurrentPage, "out of range navigation is ignored")

	hs.do(http.MethodGet, "/companies/page/last", "")
	assert.Equal(t, 3, hs.state(t).CurrentPage)

	hs.do(http.MethodGet, "/companies/page/next", "")
	assert.Equal(t, 3, hs.state(t).CurrentPage)

	hs.do(http.MethodGet, "/companies/page/bogus", "")
	assert.Equal(t, 3, hs.state(t).CurrentPage)

	page := hs.do(http.MethodGet, "/", "").Body.String()
	assert.Contains(t, page, "Showing 41-45 of 45 companies")

	hs.do(http.MethodGet, "/companies?stage=Seed", "")
	assert.Equal(t, 1, hs.state(t).CurrentPage, "filter changes return to page one")
}

func TestResetRestoresDefaults(t *testing.T) {
	hs := newHarness(t, 45)
	hs.do(http.MethodGet, "/companies?q=company&sort=name-desc", "")
	hs.do(http.MethodGet, "/companies/page/2", "")

	rr := hs.do(http.MethodGet, "/companies/reset", "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, query.DefaultState(), hs.state(t))
}

func TestCSVExportContainsFullFilteredView(t *testing.T) {
	hs := newHarness(t, 45)
	hs.do(http.MethodGet, "/companies?category=Imagery&sort=name-asc", "")
	hs.do(http.MethodGet, "/companies/page/2", "")

	rr := hs.do(http.MethodGet, "/companies/export.csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "agtech-companies-20250215.csv")

	rows, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 16)
	assert.Equal(t, "Company 02", rows[1][0])
	assert.Equal(t, "Company 44", rows[15][0])
}

func TestPDFExport(t *testing.T) {
	hs := newHarness(t, 45)
	rr := hs.do(http.MethodGet, "/companies/export.pdf", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Len(t, hs.pdf.last.Rows, 45)
	assert.Equal(t, "45", hs.pdf.last.Overview.TotalCompanies)

	hs.pdf.err = errors.New("gotenberg down")
	rr = hs.do(http.MethodGet, "/companies/export.pdf", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestPDFExportUnavailable(t *testing.T) {
	hs := newHarness(t, 5)
	hs.handler.pdf = nil
	rr := hs.do(http.MethodGet, "/companies/export.pdf", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestExportsAreRateLimited(t *testing.T) {
	hs := newHarness(t, 5)
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, hs.do(http.MethodGet, "/companies/export.csv", "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hs.do(http.MethodGet, "/companies/export.csv", "").Code)
}

func TestAPIViewAndFilters(t *testing.T) {
	hs := newHarness(t, 45)

	out := decodeView(t, hs.do(http.MethodGet, "/api/view", ""))
	view := out["view"].(map[string]any)
	assert.Equal(t, "Showing 1-20 of 45 companies", view["counter"].(map[string]any)["text"])
	assert.Equal(t, "fixture", out["fingerprint"])

	rr := hs.do(http.MethodPost, "/api/filters", `{"searchTerm":"company 0","sortKey":"name-asc"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	out = decodeView(t, rr)
	rows := out["view"].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 9)
	assert.Equal(t, "Company 01", rows[0].(map[string]any)["name"])
	assert.Equal(t, "company 0", hs.state(t).SearchTerm)
}

func TestAPIFiltersValidation(t *testing.T) {
	hs := newHarness(t, 45)

	rr := hs.do(http.MethodPost, "/api/filters", fmt.Sprintf(`{"searchTerm":%q}`, strings.Repeat("x", 201)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "SearchTerm failed max")

	rr = hs.do(http.MethodPost, "/api/filters", `{"unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestAPIUnknownSortKeyKeepsOrder(t *testing.T) {
	hs := newHarness(t, 3)
	rr := hs.do(http.MethodPost, "/api/filters", `{"sortKey":"random"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rows := decodeView(t, rr)["view"].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 3)
	assert.Equal(t, "Company 01", rows[0].(map[string]any)["name"])
	assert.Equal(t, query.SortKey("random"), hs.state(t).SortKey)
}

func TestAPINavigate(t *testing.T) {
	hs := newHarness(t, 45)

	rr := hs.do(http.MethodPost, "/api/navigate", `{"action":"page","page":3}`)
	require.Equal(t, http.StatusOK, rr.Code)
	out := decodeView(t, rr)
	assert.Equal(t, true, out["accepted"])
	assert.Equal(t, true, out["view"].(map[string]any)["scroll"])
	assert.Equal(t, 3, hs.state(t).CurrentPage)

	rr = hs.do(http.MethodPost, "/api/navigate", `{"action":"next"}`)
	out = decodeView(t, rr)
	assert.Equal(t, false, out["accepted"])
	assert.Equal(t, false, out["view"].(map[string]any)["scroll"])
	assert.Equal(t, "Showing 41-45 of 45 companies", out["view"].(map[string]any)["counter"].(map[string]any)["text"])

	rr = hs.do(http.MethodPost, "/api/navigate", `{"action":"jump"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = hs.do(http.MethodPost, "/api/navigate", `{"action":"page"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPIReset(t *testing.T) {
	hs := newHarness(t, 45)
	hs.do(http.MethodPost, "/api/filters", `{"category":"Robotics"}`)
	rr := hs.do(http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, query.DefaultState(), hs.state(t))
}

func TestAPIChartsAndOverview(t *testing.T) {
	hs := newHarness(t, 45)

	rr := hs.do(http.MethodGet, "/api/charts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var charts []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &charts))
	assert.Len(t, charts, 8)
	assert.Contains(t, charts[0]["svg"], "<svg")

	rr = hs.do(http.MethodGet, "/api/charts?format=data", "")
	var data []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
	assert.Len(t, data, 8)
	assert.NotContains(t, data[0], "svg")

	rr = hs.do(http.MethodGet, "/api/overview", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var ov overviewResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ov))
	assert.Equal(t, 45, ov.Overview.TotalCompanies)
	assert.Equal(t, "45", ov.Cards.TotalCompanies)
}

func TestAPISnapshot(t *testing.T) {
	hs := newHarness(t, 45)
	hs.do(http.MethodPost, "/api/filters", `{"country":"USA"}`)

	rr := hs.do(http.MethodPost, "/api/snapshots", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	var resp snapshotResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "task-1", resp.TaskID)
	require.Len(t, hs.snapshots.states, 1)
	assert.Equal(t, "USA", hs.snapshots.states[0].Country)

	hs.snapshots.err = errors.New("redis down")
	assert.Equal(t, http.StatusServiceUnavailable, hs.do(http.MethodPost, "/api/snapshots", "").Code)

	hs.handler.snapshots = nil
	assert.Equal(t, http.StatusServiceUnavailable, hs.do(http.MethodPost, "/api/snapshots", "").Code)
}

func TestHandlerRecordsMetrics(t *testing.T) {
	hs := newHarness(t, 45)
	hs.do(http.MethodGet, "/companies?category=Robotics", "")
	hs.do(http.MethodGet, "/companies/page/5", "")
	hs.do(http.MethodGet, "/companies/export.csv", "")

	rr := httptest.NewRecorder()
	hs.metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	assert.Contains(t, body, "dashboard_filter_updates_total 1")
	assert.Contains(t, body, `dashboard_navigations_total{result="rejected"} 1`)
	assert.Contains(t, body, `dashboard_exports_total{format="csv"} 1`)
}
