package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilens/dashboard/internal/analytics/ui"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/query"
)

func ptrFloat(v float64) *float64 { return &v }

func ptrInt(v int) *int { return &v }

func TestWriteCompaniesCSV(t *testing.T) {
	records := []companies.Record{
		{Name: "FarmWise", Category: "Robotics", Stage: "Series B", Country: "USA", Funding: ptrFloat(65.5), Founded: ptrInt(2016), Tech: companies.TechList{"Computer Vision", "Robotics"}},
		{Name: "Bare, Inc."},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCompaniesCSV(buf, records))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CompanyHeader, rows[0])
	assert.Equal(t, []string{"FarmWise", "Robotics", "Series B", "USA", "", "65.5", "2016", "", "Active", "Computer Vision; Robotics"}, rows[1])
	assert.Equal(t, "Bare, Inc.", rows[2][0])
	assert.Equal(t, "", rows[2][5])
}

func TestWriteCompaniesCSVEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCompaniesCSV(buf, nil))
	assert.Equal(t, strings.Join(CompanyHeader, ",")+"\n", buf.String())
}

func TestBuildHTMLEscapesAndDescribesFilters(t *testing.T) {
	state := query.DefaultState()
	state.SearchTerm = "<drone>"
	state.Country = "Israel"
	out := BuildHTML(ReportPayload{
		State: state,
		Rows:  []ui.Row{{Name: "A & B", Funding: "$10M"}},
	})
	assert.Contains(t, out, "<h1>AgTech Companies</h1>")
	assert.Contains(t, out, "A &amp; B")
	assert.Contains(t, out, "&lt;drone&gt;")
	assert.Contains(t, out, "country Israel")
	assert.NotContains(t, out, "category all")
	assert.Contains(t, out, "sorted by funding-desc")
}

func TestBuildHTMLNoRows(t *testing.T) {
	out := BuildHTML(ReportPayload{State: query.DefaultState()})
	assert.Contains(t, out, ui.NoResultsMessage)
	assert.NotContains(t, out, "<thead>")
}

func TestPDFExporterRender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/chromium/convert/html" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("unexpected parse error: %v", err)
			return
		}
		file, _, err := r.FormFile("files")
		if err != nil {
			t.Errorf("missing html file: %v", err)
			return
		}
		defer file.Close()
		html, _ := io.ReadAll(file)
		if !strings.Contains(string(html), "FarmWise") {
			t.Errorf("html missing row: %s", html)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("PDF"))
	}))
	defer srv.Close()

	exporter := &PDFExporter{Endpoint: srv.URL + "/"}
	data, err := exporter.RenderReport(context.Background(), ReportPayload{
		State: query.DefaultState(),
		Rows:  []ui.Row{{Name: "FarmWise"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PDF", string(data))
}

func TestPDFExporterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	exporter := &PDFExporter{Endpoint: srv.URL}
	_, err := exporter.RenderReport(context.Background(), ReportPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "chromium crashed")
}

func TestPDFExporterDisabled(t *testing.T) {
	var exporter *PDFExporter
	assert.False(t, exporter.Enabled())
	_, err := exporter.RenderReport(context.Background(), ReportPayload{})
	assert.ErrorIs(t, err, ErrNoEndpoint)

	_, err = (&PDFExporter{Endpoint: "  "}).RenderReport(context.Background(), ReportPayload{})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestPDFExporterPing(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	exporter := &PDFExporter{Endpoint: srv.URL + "/", Client: srv.Client()}
	require.NoError(t, exporter.Ping(context.Background()))

	healthy.Store(false)
	err := exporter.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	assert.ErrorIs(t, (&PDFExporter{}).Ping(context.Background()), ErrNoEndpoint)
}
