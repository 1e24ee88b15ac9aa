package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/query"
)

type stubLoader struct {
	ds  *companies.Dataset
	err error
}

func (s stubLoader) Load(context.Context) (*companies.Dataset, error) { return s.ds, s.err }

func ptrFloat(v float64) *float64 { return &v }

func sampleLoader() stubLoader {
	return stubLoader{ds: &companies.Dataset{
		Fingerprint: "f00d",
		Companies: []companies.Record{
			{Name: "Taranis", Category: "Imagery", Country: "Israel", Funding: ptrFloat(100)},
			{Name: "FarmWise", Category: "Robotics", Country: "USA", Funding: ptrFloat(65)},
			{Name: "CropX", Category: "Soil Sensing", Country: "Israel", Funding: ptrFloat(65)},
		},
	}}
}

func runQuery(t *testing.T, loader DatasetLoader, opts QueryOptions) (int, string, string) {
	t.Helper()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	opts.Stdout = stdout
	opts.Stderr = stderr
	code := NewQueryCLI(loader).QueryCommand(context.Background(), opts)
	return code, stdout.String(), stderr.String()
}

func TestQueryCommandJSON(t *testing.T) {
	code, stdout, stderr := runQuery(t, sampleLoader(), QueryOptions{Sort: "name-asc", Format: "json"})
	require.Equal(t, ExitOK, code, stderr)

	var summary QuerySummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, "CropX", summary.Rows[0].Name)
	assert.Equal(t, "Taranis", summary.Rows[2].Name)
	assert.Equal(t, "Showing 1-3 of 3 companies", summary.Counter.Text)
	assert.Equal(t, query.SortNameAsc, summary.State.SortKey)
	assert.Equal(t, 1, summary.Pagination.TotalPages)
}

func TestQueryCommandFiltersAndPages(t *testing.T) {
	code, stdout, _ := runQuery(t, sampleLoader(), QueryOptions{Country: "Israel", PageSize: 1, Page: 2, Sort: "name-asc", Format: "json"})
	require.Equal(t, ExitOK, code)

	var summary QuerySummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	require.Len(t, summary.Rows, 1)
	assert.Equal(t, "Taranis", summary.Rows[0].Name)
	assert.Equal(t, 2, summary.State.CurrentPage)
	assert.Equal(t, "Showing 2-2 of 2 companies", summary.Counter.Text)
}

func TestQueryCommandTable(t *testing.T) {
	code, stdout, _ := runQuery(t, sampleLoader(), QueryOptions{})
	require.Equal(t, ExitOK, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "Taranis"), "funding-desc is the default order")
	assert.Equal(t, "Showing 1-3 of 3 companies (page 1 of 1)", lines[4])

	code, stdout, _ = runQuery(t, sampleLoader(), QueryOptions{Search: "blockchain"})
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "No companies found\n", stdout)
}

func TestQueryCommandCSVWritesAllResults(t *testing.T) {
	code, stdout, _ := runQuery(t, sampleLoader(), QueryOptions{PageSize: 1, Format: "csv"})
	require.Equal(t, ExitOK, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Name,"))
}

func TestQueryCommandErrors(t *testing.T) {
	code, _, stderr := runQuery(t, sampleLoader(), QueryOptions{Page: 9})
	assert.Equal(t, ExitOutOfRange, code)
	assert.Contains(t, stderr, "page 9 out of range (1-1)")

	code, _, stderr = runQuery(t, sampleLoader(), QueryOptions{Format: "xml"})
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "unknown format")

	code, _, stderr = runQuery(t, sampleLoader(), QueryOptions{Sort: "stars-desc"})
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "unknown sort")

	code, _, stderr = runQuery(t, stubLoader{err: companies.ErrUnavailable}, QueryOptions{})
	assert.Equal(t, ExitUnavailable, code)
	assert.Contains(t, stderr, "data source unavailable")
}

func TestQueryOptionsState(t *testing.T) {
	state := QueryOptions{Search: "drone", Stage: "Seed"}.State()
	assert.Equal(t, "drone", state.SearchTerm)
	assert.Equal(t, "Seed", state.Stage)
	assert.Equal(t, query.All, state.Category)
	assert.Equal(t, query.DefaultSort, state.SortKey)
}

func TestFlushChartsBumpsVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := analytics.NewCache(client, time.Minute)

	stdout := new(bytes.Buffer)
	code := FlushCharts(context.Background(), cache, stdout, new(bytes.Buffer))
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "chart cache version is now 2\n", stdout.String())

	mr.Close()
	stderr := new(bytes.Buffer)
	code = FlushCharts(context.Background(), cache, new(bytes.Buffer), stderr)
	assert.Equal(t, ExitUnavailable, code)
	assert.Contains(t, stderr.String(), "charts flush")
}

func TestPublishCommand(t *testing.T) {
	var published *companies.Dataset
	publish := func(_ context.Context, ds *companies.Dataset) (int64, error) {
		published = ds
		return 7, nil
	}
	stdout := new(bytes.Buffer)
	code := PublishCommand(context.Background(), sampleLoader(), publish, stdout, new(bytes.Buffer))
	require.Equal(t, ExitOK, code)
	require.NotNil(t, published)
	assert.Equal(t, "published revision 7 (3 companies, fingerprint f00d)\n", stdout.String())

	stderr := new(bytes.Buffer)
	code = PublishCommand(context.Background(), stubLoader{ds: companies.Empty()}, publish, new(bytes.Buffer), stderr)
	assert.Equal(t, ExitUsage, code)

	failing := func(context.Context, *companies.Dataset) (int64, error) { return 0, errors.New("tx aborted") }
	stderr.Reset()
	code = PublishCommand(context.Background(), sampleLoader(), failing, new(bytes.Buffer), stderr)
	assert.Equal(t, ExitUnavailable, code)
	assert.Contains(t, stderr.String(), "tx aborted")
}
