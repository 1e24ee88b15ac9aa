package analytichttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/analytics/ui"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/platform/httpx"
	"github.com/agrilens/dashboard/internal/query"
)

type filterRequest struct {
	SearchTerm *string `json:"searchTerm" validate:"omitempty,max=200"`
	Category   *string `json:"category" validate:"omitempty,max=100"`
	Stage      *string `json:"stage" validate:"omitempty,max=100"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
	SortKey    *string `json:"sortKey" validate:"omitempty,max=32"`
}

func (f filterRequest) update() query.FilterUpdate {
	u := query.FilterUpdate{
		SearchTerm: f.SearchTerm,
		Category:   f.Category,
		Stage:      f.Stage,
		Country:    f.Country,
	}
	if f.SortKey != nil {
		key := query.SortKey(*f.SortKey)
		u.SortKey = &key
	}
	return u
}

type navigateRequest struct {
	Action string `json:"action" validate:"required,oneof=first prev next last page"`
	Page   int    `json:"page" validate:"required_if=Action page"`
}

type viewResponse struct {
	State       query.State             `json:"state"`
	View        *ui.ViewSink            `json:"view"`
	Options     companies.FilterOptions `json:"options"`
	SortOptions []ui.SortOption         `json:"sortOptions"`
	Fingerprint string                  `json:"fingerprint,omitempty"`
}

type navigateResponse struct {
	Accepted bool `json:"accepted"`
	viewResponse
}

type overviewResponse struct {
	Overview companies.Overview `json:"overview"`
	Cards    ui.OverviewCards   `json:"cards"`
}

type snapshotResponse struct {
	TaskID string      `json:"taskId"`
	State  query.State `json:"state"`
}

func (h *Handler) viewOf(d dashboard) viewResponse {
	state := d.coord.State()
	return viewResponse{
		State:       state,
		View:        d.sink,
		Options:     d.ds.Options(),
		SortOptions: ui.SortOptions(state.SortKey),
		Fingerprint: d.ds.Fingerprint,
	}
}

func (h *Handler) handleAPIView(w http.ResponseWriter, r *http.Request) {
	d := h.open(r)
	d.coord.Refresh()
	d.save()
	httpx.JSON(w, http.StatusOK, h.viewOf(d))
}

func (h *Handler) handleAPIFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}
	d := h.open(r)
	d.coord.UpdateFilters(req.update())
	d.save()
	h.metrics.FilterUpdated()
	httpx.JSON(w, http.StatusOK, h.viewOf(d))
}

func (h *Handler) handleAPINavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}
	d := h.open(r)
	accepted := navigate(d.coord, req.Action, req.Page)
	h.metrics.Navigated(accepted)
	if accepted {
		d.save()
	} else {
		d.coord.Refresh()
	}
	httpx.JSON(w, http.StatusOK, navigateResponse{Accepted: accepted, viewResponse: h.viewOf(d)})
}

func (h *Handler) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	d := h.open(r)
	d.coord.ResetFilters()
	d.save()
	h.metrics.FilterUpdated()
	httpx.JSON(w, http.StatusOK, h.viewOf(d))
}

func (h *Handler) handleAPICharts(w http.ResponseWriter, r *http.Request) {
	ds := h.data.Current(r.Context())
	if r.URL.Query().Get("format") == "data" {
		httpx.JSON(w, http.StatusOK, h.charts.ChartData(ds))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), chartTimeout)
	defer cancel()
	charts, err := h.charts.Charts(ctx, ds)
	if err != nil {
		h.logError("render charts", err)
		httpx.RespondError(w, err)
		return
	}
	if charts == nil {
		charts = []analytics.RenderedChart{}
	}
	httpx.JSON(w, http.StatusOK, charts)
}

func (h *Handler) handleAPIOverview(w http.ResponseWriter, r *http.Request) {
	ov := h.charts.Overview(h.data.Current(r.Context()))
	httpx.JSON(w, http.StatusOK, overviewResponse{Overview: ov, Cards: h.format.Cards(ov)})
}

func (h *Handler) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		httpx.RespondError(w, fmt.Errorf("%w: snapshots are not configured", httpx.ErrUnavailable))
		return
	}
	d := h.open(r)
	state := d.coord.State()
	id, err := h.snapshots.EnqueueSnapshot(r.Context(), state)
	if err != nil {
		h.logError("enqueue snapshot", err)
		httpx.RespondError(w, fmt.Errorf("%w: snapshot queue unavailable", httpx.ErrUnavailable))
		return
	}
	h.metrics.Exported("snapshot")
	httpx.JSON(w, http.StatusAccepted, snapshotResponse{TaskID: id, State: state})
}

func (h *Handler) validateUpdate(u query.FilterUpdate) error {
	req := filterRequest{SearchTerm: u.SearchTerm, Category: u.Category, Stage: u.Stage, Country: u.Country}
	if u.SortKey != nil {
		key := string(*u.SortKey)
		req.SortKey = &key
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(fields, "; "))
}

func pageParam(r *http.Request) string {
	return chi.URLParam(r, "page")
}
