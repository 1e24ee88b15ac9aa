package analytics

import (
	"context"
	"html/template"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/agrilens/dashboard/internal/companies"
)

// RenderedChart is a chart description together with its markup.
type RenderedChart struct {
	Chart
	SVG template.HTML `json:"svg"`
}

// Service builds the dataset-wide dashboard panels and caches the rendered
// charts per dataset fingerprint.
type Service struct {
	cache    *Cache
	renderer ChartRenderer
	logger   *slog.Logger
	fills    singleflight.Group
}

// NewService wires a renderer with a Cache helper. The cache may be nil.
func NewService(cache *Cache, renderer ChartRenderer, logger *slog.Logger) *Service {
	if renderer == nil {
		renderer = SVGRenderer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cache: cache, renderer: renderer, logger: logger}
}

// Overview returns the headline scalars. A missing company count falls back
// to the number of loaded records.
func (s *Service) Overview(ds *companies.Dataset) companies.Overview {
	if ds == nil {
		return companies.Overview{}
	}
	ov := ds.Overview
	if ov.TotalCompanies == 0 {
		ov.TotalCompanies = len(ds.Records())
	}
	return ov
}

// Charts renders every chart of the dataset. Concurrent callers for the same
// dataset share a single render.
func (s *Service) Charts(ctx context.Context, ds *companies.Dataset) ([]RenderedChart, error) {
	fingerprint := "empty"
	if ds != nil && ds.Fingerprint != "" {
		fingerprint = ds.Fingerprint
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "charts", fingerprint)
	if err != nil {
		s.logger.Warn("chart cache unavailable", slog.Any("error", err))
		return s.render(ctx, ds)
	}
	v, err, _ := s.fills.Do(key, func() (any, error) {
		var out []RenderedChart
		hit, err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return s.render(ctx, ds)
		})
		if err != nil {
			return nil, err
		}
		if !hit {
			s.logger.Debug("chart cache filled", slog.String("key", key), slog.Int("charts", len(out)))
		}
		return out, nil
	})
	if err != nil {
		s.logger.Warn("chart cache fill failed", slog.String("key", key), slog.Any("error", err))
		return s.render(ctx, ds)
	}
	return v.([]RenderedChart), nil
}

// ChartData returns the chart descriptions without markup.
func (s *Service) ChartData(ds *companies.Dataset) []Chart {
	return BuildCharts(ds)
}

func (s *Service) render(ctx context.Context, ds *companies.Dataset) ([]RenderedChart, error) {
	charts := BuildCharts(ds)
	out := make([]RenderedChart, len(charts))
	g, ctx := errgroup.WithContext(ctx)
	for i, chart := range charts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			markup, err := s.renderer.Render(chart)
			if err != nil {
				return err
			}
			out[i] = RenderedChart{Chart: chart, SVG: markup}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
