package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/agrilens/dashboard/internal/shared"
)

// MountRoutes registers the dashboard pages and the JSON API onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", h.handleDashboard)
	r.Route("/companies", func(r chi.Router) {
		r.Get("/", h.handleFilters)
		r.Get("/reset", h.handleReset)
		r.Get("/page/{page}", h.handleNavigate)
		r.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/export.csv", h.handleCSV)
			gr.Get("/export.pdf", h.handlePDF)
		})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/view", h.handleAPIView)
		r.Post("/filters", h.handleAPIFilters)
		r.Post("/navigate", h.handleAPINavigate)
		r.Post("/reset", h.handleAPIReset)
		r.Get("/charts", h.handleAPICharts)
		r.Get("/overview", h.handleAPIOverview)
		r.With(limiter).Post("/snapshots", h.handleAPISnapshot)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if id := shared.SessionIDFromContext(r.Context()); id != "" {
		return "session:" + id, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
