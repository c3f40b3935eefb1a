package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/aggregation"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/cache"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/classification"
)

// SalesView selects the part of the sales analytics to return
type SalesView string

const (
	ViewSummary  SalesView = "summary"
	ViewStores   SalesView = "stores"
	ViewDaily    SalesView = "daily"
	ViewTypes    SalesView = "types"
	ViewProducts SalesView = "products"
)

// ErrInvalidQuery is returned for an unknown view, window or dimension
var ErrInvalidQuery = errors.New("invalid query")

// ParseSalesView validates a view name. An empty name is the summary view.
func ParseSalesView(v string) (SalesView, error) {
	switch sv := SalesView(v); sv {
	case "":
		return ViewSummary, nil
	case ViewSummary, ViewStores, ViewDaily, ViewTypes, ViewProducts:
		return sv, nil
	}
	return "", fmt.Errorf("%w: unknown view %q", ErrInvalidQuery, v)
}

const (
	defaultPageSize = 30
	maxPageSize     = 100
	productViewTop  = 20
)

// SalesFilter narrows the sales report before aggregation. Zero values do
// not filter.
type SalesFilter struct {
	StoreType  string // type code or its Korean label
	Brand      string
	Region     string
	OnlineOnly *bool
	Window     aggregation.WindowKind
	Anchor     time.Time // defaults to the last day of the report
}

func (f SalesFilter) keep(l aggregation.Line) bool {
	if f.StoreType != "" && f.StoreType != string(l.Store.Type) && f.StoreType != classification.TypeLabel(l.Store.Type) {
		return false
	}
	if f.Brand != "" && f.Brand != l.Store.BrandName() {
		return false
	}
	if f.Region != "" && f.Region != l.Store.Region {
		return false
	}
	if f.OnlineOnly != nil && *f.OnlineOnly != l.Store.IsOnline {
		return false
	}
	return true
}

func (f SalesFilter) filters() map[string]string {
	m := map[string]string{
		"storeType": f.StoreType,
		"brand":     f.Brand,
		"region":    f.Region,
	}
	if f.OnlineOnly != nil {
		m["onlineOnly"] = strconv.FormatBool(*f.OnlineOnly)
	}
	return m
}

// SalesQuery is one request for sales analytics
type SalesQuery struct {
	View     SalesView
	Filter   SalesFilter
	Page     int
	PageSize int
}

// DateRange is the span of days with sales
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Pagination describes one page of a list
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination clamps page and size and counts pages
func NewPagination(page, size, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	pages := (total + size - 1) / size
	return Pagination{Page: page, PageSize: size, Total: total, TotalPages: pages}
}

// StorePage is one page of store buckets
type StorePage struct {
	Stores     []aggregation.Bucket `json:"stores"`
	Pagination Pagination           `json:"pagination"`
}

// TypeBreakdown splits sales by store type, department brand, region and
// channel.
type TypeBreakdown struct {
	StoreTypes    []aggregation.Bucket `json:"storeTypeStats"`
	Brands        []aggregation.Bucket `json:"departmentBrandStats"`
	Regions       []aggregation.Bucket `json:"regionStats"`
	OnlineOffline aggregation.Split    `json:"onlineOfflineStats"`
}

// ProductBreakdown splits sales by item and season
type ProductBreakdown struct {
	Items       []aggregation.Bucket      `json:"itemStats"`
	Seasons     []aggregation.Bucket      `json:"seasonStats"`
	BestSellers []aggregation.ProductStat `json:"bestSellers"`
}

// SalesAnalytics is the sales report view. Only the part for View is set.
type SalesAnalytics struct {
	View      SalesView                `json:"view"`
	Window    string                   `json:"window"`
	DateRange DateRange                `json:"dateRange"`
	Summary   *aggregation.Summary     `json:"summary,omitempty"`
	Stores    *StorePage               `json:"stores,omitempty"`
	Daily     []aggregation.DailyTotal `json:"dailyTotals,omitempty"`
	Types     *TypeBreakdown           `json:"types,omitempty"`
	Products  *ProductBreakdown        `json:"products,omitempty"`
	Source
}

// GetSalesAnalytics filters the sales report and returns the requested view
func (s *Service) GetSalesAnalytics(ctx context.Context, q SalesQuery) (*SalesAnalytics, error) {
	if q.View == "" {
		q.View = ViewSummary
	}
	if q.Filter.Window == "" {
		q.Filter.Window = aggregation.WindowAll
	}

	data, err := s.salesLines(ctx)
	if err != nil {
		if src, ok := s.fallback(err); ok {
			return &SalesAnalytics{View: q.View, Window: string(aggregation.WindowAll), Source: src}, nil
		}
		return nil, err
	}

	window := s.window(q.Filter, data)
	filters := q.Filter.filters()
	if q.View == ViewStores {
		p := NewPagination(q.Page, q.PageSize, 0)
		filters["page"] = strconv.Itoa(p.Page)
		filters["pageSize"] = strconv.Itoa(p.PageSize)
	}
	key := cache.Key{Dataset: s.files.SalesReport, View: "sales-" + string(q.View), Window: window.String(), Filters: filters}

	return cached(ctx, s, "GetSalesAnalytics", key, func(context.Context) (*SalesAnalytics, error) {
		lines := s.filter(data.lines, q.Filter, window)
		out := &SalesAnalytics{
			View:      q.View,
			Window:    window.String(),
			DateRange: DateRange{Start: data.start, End: data.end},
		}

		switch q.View {
		case ViewSummary:
			sum := aggregation.Summarize(lines)
			out.Summary = &sum
		case ViewStores:
			stores := aggregation.Aggregate(lines, aggregation.DimensionStore)
			p := NewPagination(q.Page, q.PageSize, len(stores))
			out.Stores = &StorePage{Stores: page(stores, p), Pagination: p}
		case ViewDaily:
			out.Daily = aggregation.DailyTotals(lines)
		case ViewTypes:
			out.Types = &TypeBreakdown{
				StoreTypes:    aggregation.Aggregate(lines, aggregation.DimensionType),
				Brands:        aggregation.Aggregate(lines, aggregation.DimensionBrand),
				Regions:       aggregation.Aggregate(lines, aggregation.DimensionRegion),
				OnlineOffline: aggregation.OnlineOffline(lines),
			}
		case ViewProducts:
			out.Products = &ProductBreakdown{
				Items:       aggregation.Aggregate(lines, aggregation.DimensionItem),
				Seasons:     aggregation.Aggregate(lines, aggregation.DimensionSeason),
				BestSellers: aggregation.BestSellers(lines, productViewTop),
			}
		default:
			return nil, fmt.Errorf("%w: unknown view %q", ErrInvalidQuery, q.View)
		}
		return out, nil
	})
}

// ExportDimension aggregates the filtered sales report along dim for CSV
// export.
func (s *Service) ExportDimension(ctx context.Context, dim aggregation.Dimension, f SalesFilter) ([]aggregation.Bucket, Source, error) {
	ctx, span := s.startSpan(ctx, "ExportDimension")
	defer span.End()

	data, err := s.salesLines(ctx)
	if err != nil {
		if src, ok := s.fallback(err); ok {
			return []aggregation.Bucket{}, src, nil
		}
		return nil, Source{}, err
	}
	lines := s.filter(data.lines, f, s.window(f, data))
	return aggregation.Aggregate(lines, dim), Source{}, nil
}

// window resolves the filter's window against the report. Without an anchor
// the window ends on the report's last day.
func (s *Service) window(f SalesFilter, data *salesData) aggregation.Window {
	w := aggregation.Window{Kind: f.Window, Anchor: f.Anchor}
	if w.Kind == "" {
		w.Kind = aggregation.WindowAll
	}
	if w.Kind != aggregation.WindowAll && w.Anchor.IsZero() && data.end != "" {
		if end, err := time.Parse(time.DateOnly, data.end); err == nil {
			w.Anchor = end
		}
	}
	return w
}

func (s *Service) filter(lines []aggregation.Line, f SalesFilter, w aggregation.Window) []aggregation.Line {
	kept := make([]aggregation.Line, 0, len(lines))
	for _, l := range lines {
		if f.keep(l) {
			kept = append(kept, l)
		}
	}
	if w.Kind == aggregation.WindowAll {
		return kept
	}
	return aggregation.FilterWindow(kept, w)
}

func page[T any](items []T, p Pagination) []T {
	start := (p.Page - 1) * p.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.PageSize, len(items))
	return items[start:end]
}
