package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/agrilens/dashboard/internal/analytics/ui"
	"github.com/agrilens/dashboard/internal/query"
)

// ErrNoEndpoint is returned when no Gotenberg endpoint is configured.
var ErrNoEndpoint = errors.New("export: gotenberg endpoint required")

// ReportPayload is the filtered company view destined for PDF rendering.
type ReportPayload struct {
	Title       string
	GeneratedAt time.Time
	State       query.State
	Overview    ui.OverviewCards
	Rows        []ui.Row
}

// PDFExporter wraps Gotenberg interactions for dashboard exports.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// Enabled reports whether an endpoint is configured.
func (p *PDFExporter) Enabled() bool {
	return p != nil && strings.TrimSpace(p.Endpoint) != ""
}

// Ping checks that the Gotenberg service answers its health endpoint.
func (p *PDFExporter) Ping(ctx context.Context) error {
	if !p.Enabled() {
		return ErrNoEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(p.Endpoint, "/")+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.client().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("export: gotenberg health status %d", resp.StatusCode)
	}
	return nil
}

func (p *PDFExporter) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

// RenderReport sends the report HTML to Gotenberg and returns the PDF bytes.
func (p *PDFExporter) RenderReport(ctx context.Context, payload ReportPayload) ([]byte, error) {
	if !p.Enabled() {
		return nil, ErrNoEndpoint
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, BuildHTML(payload)); err != nil {
		return nil, err
	}
	if err := writer.WriteField("landscape", "true"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("export: gotenberg response %d: %s", resp.StatusCode, string(data))
	}
	return io.ReadAll(resp.Body)
}

// BuildHTML renders the standalone report document.
func BuildHTML(payload ReportPayload) string {
	title := payload.Title
	if title == "" {
		title = "AgTech Companies"
	}
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;font-size:11px;}h1{font-size:20px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:4px 6px;text-align:left;}th{background:#f5f5f5;}.num{text-align:right;}.meta{color:#666;}")
	b.WriteString("</style></head><body>")
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(title))
	if !payload.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "<p class=\"meta\">Generated %s</p>", payload.GeneratedAt.UTC().Format(time.RFC1123))
	}
	fmt.Fprintf(&b, "<p class=\"meta\">%s</p>", html.EscapeString(describeState(payload.State)))

	b.WriteString("<table><tbody>")
	writeMetricRow(&b, "Total companies", payload.Overview.TotalCompanies)
	writeMetricRow(&b, "Market size", payload.Overview.MarketSize)
	writeMetricRow(&b, "GitHub repositories", payload.Overview.GitHubRepos)
	writeMetricRow(&b, "Total funding", payload.Overview.TotalFunding)
	b.WriteString("</tbody></table>")

	if len(payload.Rows) == 0 {
		fmt.Fprintf(&b, "<p>%s</p>", ui.NoResultsMessage)
		b.WriteString("</body></html>")
		return b.String()
	}
	b.WriteString("<table><thead><tr><th>Company</th><th>Technology</th><th>Funding</th><th>Stage</th><th>Category</th><th>Location</th><th>Founded</th><th>Status</th></tr></thead><tbody>")
	for _, row := range payload.Rows {
		b.WriteString("<tr>")
		for i, cell := range []string{row.Name, row.Tech, row.Funding, row.Stage, row.Category, row.Location, row.Founded, row.Status} {
			if i == 2 || i == 6 {
				b.WriteString("<td class=\"num\">")
			} else {
				b.WriteString("<td>")
			}
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

func writeMetricRow(b *strings.Builder, label, value string) {
	b.WriteString("<tr><th>")
	b.WriteString(html.EscapeString(label))
	b.WriteString("</th><td>")
	b.WriteString(html.EscapeString(value))
	b.WriteString("</td></tr>")
}

func describeState(s query.State) string {
	parts := make([]string, 0, 5)
	if s.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("search %q", s.SearchTerm))
	}
	for _, f := range []struct{ name, value string }{
		{"category", s.Category},
		{"stage", s.Stage},
		{"country", s.Country},
	} {
		if f.value != "" && f.value != query.All {
			parts = append(parts, f.name+" "+f.value)
		}
	}
	parts = append(parts, "sorted by "+string(s.SortKey))
	return "Filters: " + strings.Join(parts, ", ")
}
