package analytichttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/analytics/export"
	"github.com/agrilens/dashboard/internal/analytics/ui"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/observability"
	"github.com/agrilens/dashboard/internal/query"
	"github.com/agrilens/dashboard/internal/shared"
	"github.com/agrilens/dashboard/internal/view"
)

const (
	chartTimeout = 5 * time.Second
	pdfTimeout   = 30 * time.Second
)

// DatasetProvider returns the dataset currently being served.
type DatasetProvider interface {
	Current(ctx context.Context) *companies.Dataset
}

// ChartService builds the dataset-wide panels.
type ChartService interface {
	Charts(ctx context.Context, ds *companies.Dataset) ([]analytics.RenderedChart, error)
	ChartData(ds *companies.Dataset) []analytics.Chart
	Overview(ds *companies.Dataset) companies.Overview
}

// PDFService renders the filtered view to PDF bytes.
type PDFService interface {
	RenderReport(ctx context.Context, payload export.ReportPayload) ([]byte, error)
}

// SnapshotEnqueuer schedules a background CSV snapshot of a query state.
type SnapshotEnqueuer interface {
	EnqueueSnapshot(ctx context.Context, state query.State) (string, error)
}

// Params groups the handler dependencies. PDF, Snapshots and Metrics are
// optional.
type Params struct {
	Logger    *slog.Logger
	Data      DatasetProvider
	Charts    ChartService
	Templates *view.Engine
	PDF       PDFService
	Snapshots SnapshotEnqueuer
	Metrics   *observability.Metrics
	Paginator query.Paginator
	Locale    language.Tag
}

// Handler serves the company dashboard. Every request rebuilds a
// query.Coordinator from the state stored in the visitor's session.
type Handler struct {
	logger    *slog.Logger
	data      DatasetProvider
	charts    ChartService
	templates *view.Engine
	pdf       PDFService
	snapshots SnapshotEnqueuer
	metrics   *observability.Metrics
	pager     query.Paginator
	sorter    query.Sorter
	format    ui.Formatter
	validate  *validator.Validate
	csvPool   sync.Pool
	now       func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(p Params) *Handler {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locale := p.Locale
	if locale == language.Und {
		locale = language.English
	}
	h := &Handler{
		logger:    logger,
		data:      p.Data,
		charts:    p.Charts,
		templates: p.Templates,
		pdf:       p.PDF,
		snapshots: p.Snapshots,
		metrics:   p.Metrics,
		pager:     query.NewPaginator(p.Paginator.Size, p.Paginator.WindowSize),
		sorter:    query.Sorter{Locale: locale},
		format:    ui.NewFormatter(locale),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// dashboard is the per-request coordinator bound to the visitor session.
type dashboard struct {
	ds    *companies.Dataset
	coord *query.Coordinator
	sink  *ui.ViewSink
	sess  *shared.Session
}

func (h *Handler) open(r *http.Request) dashboard {
	ds := h.data.Current(r.Context())
	sess := shared.SessionFromContext(r.Context())
	opts := []query.Option{query.WithPaginator(h.pager), query.WithSorter(h.sorter)}
	if state, ok := sess.QueryState(); ok {
		opts = append(opts, query.WithState(state))
	}
	sink := ui.NewViewSink(h.format)
	return dashboard{
		ds:    ds,
		coord: query.NewCoordinator(ds, sink.Sinks(), opts...),
		sink:  sink,
		sess:  sess,
	}
}

func (d dashboard) save() {
	d.sess.SetQueryState(d.coord.State())
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := h.open(r)
	d.coord.Refresh()
	d.save()

	ctx, cancel := context.WithTimeout(r.Context(), chartTimeout)
	defer cancel()
	charts, err := h.charts.Charts(ctx, d.ds)
	if err != nil {
		h.logError("render charts", err)
		charts = nil
	}

	state := d.coord.State()
	vm := ui.DashboardViewModel{
		Overview:    h.format.Cards(h.charts.Overview(d.ds)),
		Options:     d.ds.Options(),
		SortOptions: ui.SortOptions(state.SortKey),
		State:       state,
		View:        d.sink,
		Charts:      charts,
	}
	data := view.TemplateData{
		Title:       "AgTech Companies",
		CurrentPath: r.URL.Path,
		GeneratedAt: h.now(),
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleFilters(w http.ResponseWriter, r *http.Request) {
	update := updateFromQuery(r)
	if update.IsZero() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := h.validateUpdate(update); err != nil {
		h.renderError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	d := h.open(r)
	d.coord.UpdateFilters(update)
	d.save()
	h.metrics.FilterUpdated()
	http.Redirect(w, r, "/#results", http.StatusSeeOther)
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	d := h.open(r)
	accepted := navigate(d.coord, pageParam(r), 0)
	h.metrics.Navigated(accepted)
	if accepted {
		d.save()
	}
	http.Redirect(w, r, "/#results", http.StatusSeeOther)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	d := h.open(r)
	d.coord.ResetFilters()
	d.save()
	h.metrics.FilterUpdated()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	d := h.open(r)

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteCompaniesCSV(buf, d.coord.Results()); err != nil {
		h.handleServerError(w, "write companies csv", err)
		return
	}
	h.metrics.Exported("csv")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", h.filename("csv")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.renderError(w, http.StatusServiceUnavailable, "PDF export unavailable", "No PDF renderer is configured.")
		return
	}
	d := h.open(r)

	ctx, cancel := context.WithTimeout(r.Context(), pdfTimeout)
	defer cancel()

	payload := export.ReportPayload{
		Title:       "AgTech Companies",
		GeneratedAt: h.now(),
		State:       d.coord.State(),
		Overview:    h.format.Cards(h.charts.Overview(d.ds)),
		Rows:        h.format.Rows(d.coord.Results()),
	}
	pdfBytes, err := h.pdf.RenderReport(ctx, payload)
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}
	h.metrics.Exported("pdf")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", h.filename("pdf")))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) filename(ext string) string {
	return fmt.Sprintf("agtech-companies-%s.%s", h.now().UTC().Format("20060102"), ext)
}

// updateFromQuery maps the filter form onto a partial update. Parameters
// absent from the query leave the stored selection untouched.
func updateFromQuery(r *http.Request) query.FilterUpdate {
	values := r.URL.Query()
	pick := func(key string) *string {
		if !values.Has(key) {
			return nil
		}
		v := strings.TrimSpace(values.Get(key))
		return &v
	}
	var u query.FilterUpdate
	if values.Has("q") {
		term := values.Get("q")
		u.SearchTerm = &term
	}
	u.Category = pick("category")
	u.Stage = pick("stage")
	u.Country = pick("country")
	if sort := pick("sort"); sort != nil {
		key := query.SortKey(*sort)
		u.SortKey = &key
	}
	return u
}

// navigate applies a navigation action: first, last, next, prev, page (with
// an explicit number) or a bare page number.
func navigate(c *query.Coordinator, action string, page int) bool {
	switch strings.ToLower(action) {
	case "first":
		return c.First()
	case "last":
		return c.Last()
	case "next":
		return c.Step(1)
	case "prev":
		return c.Step(-1)
	case "page":
		return c.GoTo(page)
	}
	n, err := strconv.Atoi(action)
	if err != nil {
		return false
	}
	return c.GoTo(n)
}

func (h *Handler) renderError(w http.ResponseWriter, status int, title, detail string) {
	if h.templates == nil {
		http.Error(w, title, status)
		return
	}
	data := view.TemplateData{Title: title, GeneratedAt: h.now(), Data: detail}
	if err := h.templates.RenderStatus(w, status, "pages/error.html", data); err != nil {
		h.logError("render error page", err)
		http.Error(w, title, status)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, action string, err error) {
	h.logError(action, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(action string, err error) {
	if h.logger == nil || err == nil {
		return
	}
	h.logger.Error("dashboard handler error", slog.String("action", action), slog.Any("error", err))
}
