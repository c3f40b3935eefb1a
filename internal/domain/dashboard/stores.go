package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/aggregation"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/cache"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/classification"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/metric"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/sheet"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/store"
)

const (
	// DefaultProductLimit is the best and worst seller list length
	DefaultProductLimit = 50
	// DefaultRankingLimit is the store ranking length
	DefaultRankingLimit = 20
	// DefaultSearchLimit caps store search results
	DefaultSearchLimit = 20
	// MaxListLimit bounds every requested list length
	MaxListLimit = 200
)

// listLimit applies the default for n <= 0 and clamps n to MaxListLimit
func listLimit(n, def int) int {
	switch {
	case n <= 0:
		return def
	case n > MaxListLimit:
		return MaxListLimit
	default:
		return n
	}
}

// StoreRanking is the top stores by sales
type StoreRanking struct {
	Stores []aggregation.Bucket `json:"stores"`
	Total  int                  `json:"total"` // stores before truncation
	Source
}

// GetStoreRanking returns the n best-selling stores. Ranks are assigned over
// every store before truncation.
func (s *Service) GetStoreRanking(ctx context.Context, n int) (*StoreRanking, error) {
	n = listLimit(n, DefaultRankingLimit)
	key := cache.Key{Dataset: s.files.SalesReport, View: "ranking", Filters: map[string]string{"n": strconv.Itoa(n)}}
	out, err := cached(ctx, s, "GetStoreRanking", key, func(ctx context.Context) (*StoreRanking, error) {
		data, err := s.salesLines(ctx)
		if err != nil {
			return nil, err
		}
		all := aggregation.Aggregate(data.lines, aggregation.DimensionStore)
		return &StoreRanking{Stores: aggregation.TopN(all, n), Total: len(all)}, nil
	})
	if err != nil {
		if src, ok := s.fallback(err); ok {
			return &StoreRanking{Stores: []aggregation.Bucket{}, Source: src}, nil
		}
		return nil, err
	}
	return out, nil
}

// ProductList is a best or worst seller list
type ProductList struct {
	Products []aggregation.ProductStat `json:"products"`
	Source
}

// GetBestSellers returns the n products with the most units sold
func (s *Service) GetBestSellers(ctx context.Context, n int) (*ProductList, error) {
	return s.products(ctx, "best", n, aggregation.BestSellers)
}

// GetWorstSellers returns the n products with the fewest units sold,
// including products that sold nothing.
func (s *Service) GetWorstSellers(ctx context.Context, n int) (*ProductList, error) {
	return s.products(ctx, "worst", n, aggregation.WorstSellers)
}

func (s *Service) products(ctx context.Context, view string, n int, pick func([]aggregation.Line, int) []aggregation.ProductStat) (*ProductList, error) {
	n = listLimit(n, DefaultProductLimit)
	key := cache.Key{Dataset: s.files.SalesReport, View: "products-" + view, Filters: map[string]string{"n": strconv.Itoa(n)}}
	out, err := cached(ctx, s, "products", key, func(ctx context.Context) (*ProductList, error) {
		data, err := s.salesLines(ctx)
		if err != nil {
			return nil, err
		}
		return &ProductList{Products: pick(data.lines, n)}, nil
	})
	if err != nil {
		if src, ok := s.fallback(err); ok {
			return &ProductList{Products: []aggregation.ProductStat{}, Source: src}, nil
		}
		return nil, err
	}
	return out, nil
}

// AreaPerformance groups the stores of one trade area
type AreaPerformance struct {
	Area       string                    `json:"area"`
	Stores     []parser.StorePerformance `json:"stores"` // current year descending
	Current    float64                   `json:"current"`
	Prior      float64                   `json:"prior"`
	GrowthRate int                       `json:"growthRate"`
}

// StorePerformance is the month's store figures grouped by trade area
type StorePerformance struct {
	Areas []AreaPerformance `json:"areas"`
	Source
}

// GetStorePerformance reads the monthly store sheet and groups it by the
// trade areas of the store area sheet. Names missing from the area sheet are
// matched fuzzily; stores that still have no area go to 기타.
func (s *Service) GetStorePerformance(ctx context.Context) (*StorePerformance, error) {
	key := cache.Key{Dataset: s.files.BackData, View: "store-performance"}
	out, err := cached(ctx, s, "GetStorePerformance", key, s.storePerformance)
	if err != nil {
		if src, ok := s.fallback(err); ok {
			return &StorePerformance{Areas: []AreaPerformance{}, Source: src}, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *Service) storePerformance(ctx context.Context) (*StorePerformance, error) {
	wb, err := s.open(ctx, s.files.BackData)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, name, err := s.rows(wb, sheet.StorePerformance)
	if err != nil {
		return nil, err
	}
	stores, result := s.parser.ParseStorePerformance(rows, parser.DefaultStorePerformanceLayout)
	s.logParse(wb.Name, name, result)

	areas, err := s.areasFrom(wb)
	if err != nil && !errors.Is(err, sheet.ErrSheetNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Warn("store performance without trade areas", slog.Any("error", err))
	}

	return groupByArea(stores, store.NewResolver(areas, store.DefaultThreshold), s.logger), nil
}

func groupByArea(stores []parser.StorePerformance, resolver *store.Resolver, logger *slog.Logger) *StorePerformance {
	out := &StorePerformance{Areas: []AreaPerformance{}}
	idx := make(map[string]int)

	for _, sp := range stores {
		area := classification.RegionOther
		if r, ok := resolver.Resolve(sp.StoreName); ok {
			area = r.Area
			if r.Score < 100 {
				logger.Debug("store area matched fuzzily",
					slog.String("store", sp.StoreName),
					slog.String("matched", r.Matched),
					slog.Int("score", r.Score),
				)
			}
		}
		sp.Area = area

		i, ok := idx[area]
		if !ok {
			i = len(out.Areas)
			idx[area] = i
			out.Areas = append(out.Areas, AreaPerformance{Area: area})
		}
		a := &out.Areas[i]
		a.Stores = append(a.Stores, sp)
		a.Current += sp.Current
		a.Prior += sp.Prior
	}

	for i := range out.Areas {
		a := &out.Areas[i]
		sort.SliceStable(a.Stores, func(i, j int) bool { return a.Stores[i].Current > a.Stores[j].Current })
		a.GrowthRate = metric.ParserGrowth(a.Current, a.Prior)
	}
	return out
}

// StoreSearch is the result of a store directory query
type StoreSearch struct {
	Query string      `json:"query"`
	Hits  []store.Hit `json:"hits"`
	Source
}

// SearchStores queries the store directory. The sales report is loaded first
// so the directory reflects the current export.
func (s *Service) SearchStores(ctx context.Context, q string, limit int) (*StoreSearch, error) {
	limit = listLimit(limit, DefaultSearchLimit)
	ctx, span := s.startSpan(ctx, "SearchStores")
	defer span.End()

	out := &StoreSearch{Query: q, Hits: []store.Hit{}}
	if _, err := s.salesLines(ctx); err != nil {
		if src, ok := s.fallback(err); ok {
			out.Source = src
			return out, nil
		}
		return nil, err
	}
	if s.directory == nil {
		return out, nil
	}

	hits, err := s.directory.Search(q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search stores: %w", err)
	}
	out.Hits = hits
	return out, nil
}
