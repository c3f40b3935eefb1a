// Package handler serves the dashboard views over HTTP with chi.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/aggregation"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard"
)

// Service is the part of dashboard.Service the handlers use
type Service interface {
	GetMonthlyAggregate(ctx context.Context) (*dashboard.MonthlyAggregate, error)
	GetWeeklyAggregate(ctx context.Context) (*dashboard.WeeklyAggregate, error)
	GetRegionalAggregate(ctx context.Context) (*dashboard.RegionalAggregate, error)
	GetSummary(ctx context.Context) (*dashboard.Summary, error)
	GetStoreRanking(ctx context.Context, n int) (*dashboard.StoreRanking, error)
	GetStorePerformance(ctx context.Context) (*dashboard.StorePerformance, error)
	SearchStores(ctx context.Context, q string, limit int) (*dashboard.StoreSearch, error)
	GetBestSellers(ctx context.Context, n int) (*dashboard.ProductList, error)
	GetWorstSellers(ctx context.Context, n int) (*dashboard.ProductList, error)
	GetSalesAnalytics(ctx context.Context, q dashboard.SalesQuery) (*dashboard.SalesAnalytics, error)
	ExportDimension(ctx context.Context, dim aggregation.Dimension, f dashboard.SalesFilter) ([]aggregation.Bucket, dashboard.Source, error)
	GetWeeklyMeeting(ctx context.Context) (*dashboard.WeeklyMeeting, error)
	ResetCache()
}

// Handler serves the dashboard API
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// NewHandler creates a dashboard handler
func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the dashboard routes on r, which is mounted at /api
func (h *Handler) Routes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/monthly", h.Monthly)
		r.Get("/weekly", h.Weekly)
		r.Get("/regional", h.Regional)
		r.Get("/summary", h.Summary)
	})

	r.Route("/stores", func(r chi.Router) {
		r.Get("/ranking", h.StoreRanking)
		r.Get("/performance", h.StorePerformance)
		r.Get("/search", h.SearchStores)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/best", h.BestSellers)
		r.Get("/worst", h.WorstSellers)
	})

	r.Get("/sales", h.Sales)
	r.Get("/sales/export.csv", h.ExportSales)
	r.Get("/weekly-meeting", h.WeeklyMeeting)
	r.Post("/cache/reset", h.ResetCache)
}

// Monthly handles GET /api/dashboard/monthly
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetMonthlyAggregate(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, len(out.Months))
}

// Weekly handles GET /api/dashboard/weekly
func (h *Handler) Weekly(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetWeeklyAggregate(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, len(out.Weeks))
}

// Regional handles GET /api/dashboard/regional
func (h *Handler) Regional(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetRegionalAggregate(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, len(out.Regions))
}

// Summary handles GET /api/dashboard/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetSummary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, -1)
}

// StoreRanking handles GET /api/stores/ranking?n=
func (h *Handler) StoreRanking(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", dashboard.DefaultRankingLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.GetStoreRanking(r.Context(), n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, len(out.Stores))
}

// StorePerformance handles GET /api/stores/performance
func (h *Handler) StorePerformance(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetStorePerformance(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, len(out.Areas))
}

// SearchStores handles GET /api/stores/search?q=
func (h *Handler) SearchStores(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", dashboard.DefaultSearchLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.SearchStores(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, len(out.Hits))
}

// BestSellers handles GET /api/products/best?n=
func (h *Handler) BestSellers(w http.ResponseWriter, r *http.Request) {
	h.products(w, r, h.svc.GetBestSellers)
}

// WorstSellers handles GET /api/products/worst?n=
func (h *Handler) WorstSellers(w http.ResponseWriter, r *http.Request) {
	h.products(w, r, h.svc.GetWorstSellers)
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request, get func(context.Context, int) (*dashboard.ProductList, error)) {
	n, err := intParam(r, "n", dashboard.DefaultProductLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := get(r.Context(), n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, len(out.Products))
}

// Sales handles GET /api/sales
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	view, err := dashboard.ParseSalesView(r.URL.Query().Get("view"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	filter, err := salesFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := intParam(r, "page", 1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pageSize, err := intParam(r, "pageSize", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out, err := h.svc.GetSalesAnalytics(r.Context(), dashboard.SalesQuery{
		View:     view,
		Filter:   filter,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, -1)
}

// ExportSales handles GET /api/sales/export.csv?dimension=
func (h *Handler) ExportSales(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("dimension")
	if name == "" {
		name = string(aggregation.DimensionStore)
	}
	dim, ok := aggregation.ParseDimension(name)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: unknown dimension %q", dashboard.ErrInvalidQuery, name))
		return
	}
	filter, err := salesFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	buckets, src, err := h.svc.ExportDimension(r.Context(), dim, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	body, err := gocsv.MarshalBytes(&buckets)
	if err != nil {
		h.fail(w, r, fmt.Errorf("failed to encode csv: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sales-%s.csv"`, dim))
	if src.IsSample {
		w.Header().Set("X-Sample-Data", "true")
	}
	w.WriteHeader(http.StatusOK)
	// BOM so spreadsheet apps read the Korean labels as UTF-8
	_, _ = w.Write([]byte("\ufeff"))
	_, _ = w.Write(body)
}

// WeeklyMeeting handles GET /api/weekly-meeting
func (h *Handler) WeeklyMeeting(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetWeeklyMeeting(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, out, out.Source, len(out.Areas)+len(out.Channels))
}

// ResetCache handles POST /api/cache/reset
func (h *Handler) ResetCache(w http.ResponseWriter, r *http.Request) {
	h.svc.ResetCache()
	respond(w, r, map[string]string{"message": "cache reset"}, dashboard.Source{}, -1)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", dashboard.ErrInvalidQuery, name)
	}
	return v, nil
}

func salesFilter(r *http.Request) (dashboard.SalesFilter, error) {
	q := r.URL.Query()
	f := dashboard.SalesFilter{
		StoreType: q.Get("storeType"),
		Brand:     q.Get("brand"),
		Region:    q.Get("region"),
	}

	if raw := q.Get("onlineOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("%w: onlineOnly must be true or false", dashboard.ErrInvalidQuery)
		}
		f.OnlineOnly = &v
	}

	kind, ok := aggregation.ParseWindowKind(q.Get("window"))
	if !ok {
		return f, fmt.Errorf("%w: unknown window %q", dashboard.ErrInvalidQuery, q.Get("window"))
	}
	f.Window = kind

	if raw := q.Get("anchor"); raw != "" {
		anchor, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return f, fmt.Errorf("%w: anchor must be YYYY-MM-DD", dashboard.ErrInvalidQuery)
		}
		f.Anchor = anchor
	}
	return f, nil
}
