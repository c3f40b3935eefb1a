package dashboard_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/aggregation"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/cache"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/classification"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/salestest"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/sheet"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/store"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/workbook"
	"github.com/FACorreiaa/sales-dashboard/pkg/config"
	"github.com/FACorreiaa/sales-dashboard/pkg/storage"
)

const (
	backData    = "backdata.xlsx"
	forecast    = "forecast.xlsx"
	salesReport = "report.xlsx"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	mu      sync.Mutex
	sources []string
}

func (r *recorder) ObserveLoad(source string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

func newService(t *testing.T, st storage.Storage, sample bool, opts ...dashboard.Option) *dashboard.Service {
	t.Helper()
	logger := discard()

	dir, err := store.NewDirectory("")
	require.NoError(t, err)
	t.Cleanup(func() { dir.Close() })

	cfg := &config.Config{
		Workbook: config.WorkbookConfig{
			BackData:    backData,
			Forecast:    forecast,
			SalesReport: salesReport,
		},
		Fallback: config.FallbackConfig{SampleOnUnavailable: sample},
	}

	return dashboard.NewService(
		workbook.NewOpener(st, 5*time.Second, logger),
		parser.New(logger),
		classification.NewClassifier(classification.DefaultRules, logger),
		cache.New(time.Minute),
		dir,
		cfg,
		logger,
		opts...,
	)
}

func localStorage(t *testing.T, dir string) storage.Storage {
	t.Helper()
	st, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return st
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func writeBackData(t *testing.T, dir string) {
	t.Helper()
	actual := repeat(90, 11)
	actual[10] = 50

	salestest.WriteWorkbook(t, dir, backData,
		salestest.MonthlySheet(repeat(100, 11), actual, repeat(90, 11)),
		salestest.Sheet{Name: "주차별매출", Rows: [][]any{
			{"", "1주", "2주", "3주"},
			{"금년", 100.0, 120.0, 90.0},
			{"작년", 80.0, 100.0, 100.0},
		}},
		salestest.Sheet{Name: "11월실적", Rows: [][]any{
			{"매장명", "25년 11월", "24년 11월"},
			{"현대판교", 700.0, 1000.0},
			{"신세계강남", 1000.0, 800.0},
			{"롯데본점", 500.0, 500.0},
			{"무명매장", 100.0, 0.0},
		}},
		salestest.Sheet{Name: "상권구분", Rows: [][]any{
			{"매장명", "상권별"},
			{"신세계강남", "강남권"},
			{"현대판교", "강남권"},
			{"롯데 본점", "도심권"},
		}},
	)
}

func summaryRow(name string, target, forecast, lastYear float64) []any {
	row := make([]any, 19)
	row[0] = "-"
	row[6] = name
	row[7] = target
	row[8] = forecast
	row[10] = lastYear
	return row
}

func writeForecast(t *testing.T, dir string) {
	t.Helper()
	writeForecastKPI(t, dir, 1000, 1100, 1000)
}

func writeForecastKPI(t *testing.T, dir string, target, forecastAmount, lastYear float64) {
	t.Helper()
	rows := [][]any{{"요약"}}
	for i := 0; i < 5; i++ {
		rows = append(rows, summaryRow("", 0, 0, 0))
	}
	rows = append(rows, summaryRow("SUM", target, forecastAmount, lastYear))
	salestest.WriteWorkbook(t, dir, forecast, salestest.Sheet{Name: "요약", Rows: rows})
}

var reportDates = []string{"2025-11-03", "2025-11-04"}

func reportLines() []parser.SalesLine {
	return []parser.SalesLine{
		{
			StoreCode: "S001", StoreName: "신세계강남", Item: "TS", Season: "25F",
			ProductCode: "P1", ProductName: "로고 티셔츠",
			TotalQuantity: 10, TotalSales: 1000,
			DailyQuantity: map[string]float64{"2025-11-03": 4, "2025-11-04": 6},
		},
		{
			StoreCode: "S002", StoreName: "롯데본점", Item: "SW", Season: "25F",
			ProductCode: "P2", ProductName: "후드 스웨트",
			TotalQuantity: 5, TotalSales: 500,
			DailyQuantity: map[string]float64{"2025-11-04": 5},
		},
		{
			StoreCode: "S003", StoreName: "무신사(제휴몰)", Item: "PT", Season: "25S",
			ProductCode: "P3", ProductName: "와이드 팬츠",
			TotalQuantity: 2, TotalSales: 300,
			DailyQuantity: map[string]float64{"2025-11-03": 2},
		},
		{
			StoreCode: "S004", StoreName: "성수(직)", Item: "CP", Season: "24F",
			ProductCode: "P4", ProductName: "볼캡",
		},
	}
}

func writeReport(t *testing.T, dir string) {
	t.Helper()
	salestest.WriteWorkbook(t, dir, salesReport, salestest.SalesReportSheet(reportLines(), reportDates))
}

func fixture(t *testing.T) (string, *dashboard.Service) {
	t.Helper()
	dir := t.TempDir()
	writeBackData(t, dir)
	writeForecast(t, dir)
	writeReport(t, dir)
	return dir, newService(t, localStorage(t, dir), false)
}

func TestGetMonthlyAggregate(t *testing.T) {
	obs := &recorder{}
	dir := t.TempDir()
	writeBackData(t, dir)
	writeForecast(t, dir)
	svc := newService(t, localStorage(t, dir), false, dashboard.WithLoadObserver(obs))

	m, err := svc.GetMonthlyAggregate(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Months, 12)
	assert.False(t, m.IsSample)
	assert.Equal(t, "1월", m.Months[0].Month)
	assert.Equal(t, 90.0, m.Months[0].Actual)
	require.NotNil(t, m.Months[0].AchievementRate)
	assert.Equal(t, 90.0, *m.Months[0].AchievementRate)

	nov := m.Months[10]
	assert.True(t, nov.Forecast, "november carries the month-end forecast")
	assert.Equal(t, 1100.0, nov.Actual)
	assert.Equal(t, 1122, nov.GrowthRate)
	assert.InDelta(t, 990.0, nov.Band.Lower, 1e-9)
	assert.InDelta(t, 1210.0, nov.Band.Upper, 1e-9)

	dec := m.Months[11]
	assert.Zero(t, dec.Actual)
	assert.Nil(t, dec.AchievementRate, "no target means no achievement rate")

	assert.Equal(t, 1122.2, m.Change, "change compares the last reported months")
	assert.Contains(t, obs.sources, backData)
	assert.Contains(t, obs.sources, forecast)
}

func TestGetMonthlyAggregate_WithoutForecast(t *testing.T) {
	dir := t.TempDir()
	writeBackData(t, dir)
	svc := newService(t, localStorage(t, dir), false)

	m, err := svc.GetMonthlyAggregate(context.Background())
	require.NoError(t, err)
	assert.False(t, m.Months[10].Forecast)
	assert.Equal(t, 50.0, m.Months[10].Actual)
}

func TestGetWeeklyAggregate(t *testing.T) {
	_, svc := fixture(t)

	w, err := svc.GetWeeklyAggregate(context.Background())
	require.NoError(t, err)
	require.Len(t, w.Weeks, 3)

	assert.Equal(t, "1주", w.Weeks[0].Week)
	assert.Equal(t, 25, w.Weeks[0].GrowthRate)
	assert.Nil(t, w.Weeks[0].Change)
	require.NotNil(t, w.Weeks[1].Change)
	assert.Equal(t, 20.0, *w.Weeks[1].Change)
	assert.Equal(t, -10, w.Weeks[2].GrowthRate)
}

func TestGetWeeklyAggregate_NoSheet(t *testing.T) {
	dir := t.TempDir()
	salestest.WriteWorkbook(t, dir, backData, salestest.MonthlySheet(repeat(100, 3), repeat(90, 3), repeat(80, 3)))
	svc := newService(t, localStorage(t, dir), false)

	w, err := svc.GetWeeklyAggregate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.Weeks)
}

func TestGetSummary(t *testing.T) {
	_, svc := fixture(t)

	s, err := svc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "110.0% 달성 예상", s.Cards.SalesTarget.Change)
	assert.Equal(t, "up", s.Cards.SalesTarget.Trend)
	assert.Equal(t, "110.0% 달성률", s.Cards.Forecast.Change)
	assert.Equal(t, "10.0% 신장", s.Cards.LastYear.Change)
	assert.Equal(t, "10.0%", s.Cards.GrowthRate.Value)
	assert.Equal(t, "전년 대비", s.Cards.GrowthRate.Change)
	assert.Equal(t, "₩1,100", s.Cards.Forecast.Value)
	assert.Equal(t, "0억", s.Cards.Forecast.Compact)
	require.NotNil(t, s.ForecastAchievement)
	assert.Equal(t, 110.0, *s.ForecastAchievement)
}

func TestGetSummary_UndefinedRatios(t *testing.T) {
	summaryWith := func(t *testing.T, target, forecastAmount, lastYear float64) *dashboard.Summary {
		t.Helper()
		dir := t.TempDir()
		writeForecastKPI(t, dir, target, forecastAmount, lastYear)
		s, err := newService(t, localStorage(t, dir), false).GetSummary(context.Background())
		require.NoError(t, err)
		return s
	}

	t.Run("no target and no prior year", func(t *testing.T) {
		s := summaryWith(t, 0, 250_000_000, 0)

		assert.Nil(t, s.ForecastAchievement)
		assert.Nil(t, s.Growth)
		assert.Equal(t, "— 달성 예상", s.Cards.SalesTarget.Change)
		assert.Equal(t, "flat", s.Cards.SalesTarget.Trend)
		assert.Equal(t, "— 달성률", s.Cards.Forecast.Change)
		assert.Equal(t, "— 신장", s.Cards.LastYear.Change)
		assert.Equal(t, "—", s.Cards.GrowthRate.Value)
		assert.Equal(t, "flat", s.Cards.GrowthRate.Trend)
		assert.Equal(t, "3억", s.Cards.Forecast.Compact)
	})

	t.Run("zero forecast against a target", func(t *testing.T) {
		s := summaryWith(t, 100, 0, 100)

		require.NotNil(t, s.ForecastAchievement)
		assert.Zero(t, *s.ForecastAchievement)
		assert.Equal(t, "0.0% 달성 예상", s.Cards.SalesTarget.Change)
		assert.Equal(t, "down", s.Cards.SalesTarget.Trend)
		assert.Equal(t, "-100.0%", s.Cards.GrowthRate.Value)
	})
}

func TestGetStoreRanking(t *testing.T) {
	_, svc := fixture(t)

	r, err := svc.GetStoreRanking(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 4, r.Total)
	require.Len(t, r.Stores, 2)
	assert.Equal(t, "S001", r.Stores[0].Key)
	assert.Equal(t, 1, r.Stores[0].Rank)
	assert.Equal(t, "S002", r.Stores[1].Key)
	assert.Equal(t, 2, r.Stores[1].Rank)
	assert.InDelta(t, 1000.0/1800*100, r.Stores[0].Share, 1e-9)
}

func TestListLengthsAreBounded(t *testing.T) {
	dir, svc := fixture(t)
	ctx := context.Background()

	_, err := svc.GetStoreRanking(ctx, dashboard.MaxListLimit)
	require.NoError(t, err)
	_, err = svc.GetWorstSellers(ctx, dashboard.MaxListLimit)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, salesReport)))

	r, err := svc.GetStoreRanking(ctx, 1_000_000)
	require.NoError(t, err, "an oversized n shares the entry of the largest allowed n")
	assert.Len(t, r.Stores, 4)

	p, err := svc.GetWorstSellers(ctx, 1_000_000)
	require.NoError(t, err)
	assert.Len(t, p.Products, 4)
}

func TestBestAndWorstSellers(t *testing.T) {
	_, svc := fixture(t)
	ctx := context.Background()

	best, err := svc.GetBestSellers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, best.Products, 1)
	assert.Equal(t, "P1", best.Products[0].ProductCode)

	worst, err := svc.GetWorstSellers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, worst.Products, 1)
	assert.Equal(t, "P4", worst.Products[0].ProductCode, "products that sold nothing are kept")
	assert.Zero(t, worst.Products[0].Quantity)

	all, err := svc.GetBestSellers(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all.Products, 4)
}

func TestGetStorePerformance(t *testing.T) {
	_, svc := fixture(t)

	p, err := svc.GetStorePerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Areas, 3)

	gangnam := p.Areas[0]
	assert.Equal(t, "강남권", gangnam.Area)
	require.Len(t, gangnam.Stores, 2)
	assert.Equal(t, "신세계강남", gangnam.Stores[0].StoreName, "stores sort by current year")
	assert.Equal(t, 1700.0, gangnam.Current)
	assert.Equal(t, 1800.0, gangnam.Prior)
	assert.Equal(t, -6, gangnam.GrowthRate)

	downtown := p.Areas[1]
	assert.Equal(t, "도심권", downtown.Area)
	require.Len(t, downtown.Stores, 1)
	assert.Equal(t, "롯데본점", downtown.Stores[0].StoreName, "matched after whitespace normalization")

	other := p.Areas[2]
	assert.Equal(t, classification.RegionOther, other.Area)
	assert.Equal(t, "무명매장", other.Stores[0].StoreName)
	assert.Zero(t, other.GrowthRate)
}

func TestGetRegionalAggregate(t *testing.T) {
	_, svc := fixture(t)

	r, err := svc.GetRegionalAggregate(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, r.Regions)

	var share float64
	for i, b := range r.Regions {
		share += b.Share
		if i > 0 {
			assert.LessOrEqual(t,
				classification.RegionOrder(r.Regions[i-1].Key),
				classification.RegionOrder(b.Key),
			)
		}
	}
	assert.InDelta(t, 100.0, share, 0.01)
	assert.NotNil(t, r.Achievement)
}

func TestGetSalesAnalytics(t *testing.T) {
	_, svc := fixture(t)
	ctx := context.Background()

	t.Run("summary", func(t *testing.T) {
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{View: dashboard.ViewSummary})
		require.NoError(t, err)
		require.NotNil(t, a.Summary)
		assert.Equal(t, 1800.0, a.Summary.TotalSales)
		assert.Equal(t, 4, a.Summary.StoreCount)
		assert.Equal(t, dashboard.DateRange{Start: "2025-11-03", End: "2025-11-04"}, a.DateRange)
		assert.Equal(t, "all", a.Window)
	})

	t.Run("online only", func(t *testing.T) {
		online := true
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{
			View:   dashboard.ViewSummary,
			Filter: dashboard.SalesFilter{OnlineOnly: &online},
		})
		require.NoError(t, err)
		assert.Equal(t, 300.0, a.Summary.TotalSales)
		assert.Equal(t, 1, a.Summary.StoreCount)
	})

	t.Run("store type label", func(t *testing.T) {
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{
			View:   dashboard.ViewSummary,
			Filter: dashboard.SalesFilter{StoreType: classification.TypeLabel(classification.TypeDepartment)},
		})
		require.NoError(t, err)
		assert.Equal(t, 1500.0, a.Summary.TotalSales)
	})

	t.Run("separators in a filter value", func(t *testing.T) {
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{
			View:   dashboard.ViewSummary,
			Filter: dashboard.SalesFilter{Region: "서울&storeType=" + classification.TypeLabel(classification.TypeDepartment)},
		})
		require.NoError(t, err)
		assert.Zero(t, a.Summary.TotalSales)

		a, err = svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{
			View: dashboard.ViewSummary,
			Filter: dashboard.SalesFilter{
				Region:    "서울",
				StoreType: classification.TypeLabel(classification.TypeDepartment),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1500.0, a.Summary.TotalSales)
		assert.Equal(t, 2, a.Summary.StoreCount)
	})

	t.Run("stores page", func(t *testing.T) {
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{View: dashboard.ViewStores, Page: 2, PageSize: 3})
		require.NoError(t, err)
		require.NotNil(t, a.Stores)
		assert.Equal(t, dashboard.Pagination{Page: 2, PageSize: 3, Total: 4, TotalPages: 2}, a.Stores.Pagination)
		require.Len(t, a.Stores.Stores, 1)
		assert.Equal(t, 4, a.Stores.Stores[0].Rank)
	})

	t.Run("daily window", func(t *testing.T) {
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{
			View:   dashboard.ViewSummary,
			Filter: dashboard.SalesFilter{Window: aggregation.WindowDaily},
		})
		require.NoError(t, err)
		assert.Equal(t, "daily@2025-11-04", a.Window)
		assert.InDelta(t, 1100.0, a.Summary.TotalSales, 1e-9)
	})

	t.Run("daily totals", func(t *testing.T) {
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{View: dashboard.ViewDaily})
		require.NoError(t, err)
		require.Len(t, a.Daily, 2)
		assert.Equal(t, "2025-11-03", a.Daily[0].Date)
		assert.InDelta(t, 700.0, a.Daily[0].Sales, 1e-9)
	})

	t.Run("types", func(t *testing.T) {
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{View: dashboard.ViewTypes})
		require.NoError(t, err)
		require.NotNil(t, a.Types)
		assert.Equal(t, 1, a.Types.OnlineOffline.Online.MemberCount)
		assert.Equal(t, 3, a.Types.OnlineOffline.Offline.MemberCount)
	})

	t.Run("products", func(t *testing.T) {
		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{View: dashboard.ViewProducts})
		require.NoError(t, err)
		require.NotNil(t, a.Products)
		assert.Len(t, a.Products.Items, 4)
		assert.Equal(t, "P1", a.Products.BestSellers[0].ProductCode)
	})
}

func TestParseSalesView(t *testing.T) {
	v, err := dashboard.ParseSalesView("")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ViewSummary, v)

	_, err = dashboard.ParseSalesView("analytics")
	assert.ErrorIs(t, err, dashboard.ErrInvalidQuery)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, dashboard.Pagination{Page: 1, PageSize: 30, Total: 0, TotalPages: 0}, dashboard.NewPagination(0, 0, 0))
	assert.Equal(t, dashboard.Pagination{Page: 1, PageSize: 100, Total: 250, TotalPages: 3}, dashboard.NewPagination(1, 500, 250))
}

func TestExportDimension(t *testing.T) {
	_, svc := fixture(t)

	buckets, src, err := svc.ExportDimension(context.Background(), aggregation.DimensionSeason, dashboard.SalesFilter{})
	require.NoError(t, err)
	assert.False(t, src.IsSample)
	require.Len(t, buckets, 3)
	assert.Equal(t, "25F", buckets[0].Key)
	assert.Equal(t, 1500.0, buckets[0].Sales)
}

func TestSearchStores(t *testing.T) {
	_, svc := fixture(t)

	res, err := svc.SearchStores(context.Background(), "강남", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "신세계강남", res.Hits[0].Store.Name)
	assert.Equal(t, "강남권", res.Hits[0].Store.Area)
}

func TestGetWeeklyMeeting_MissingSheet(t *testing.T) {
	_, svc := fixture(t)

	_, err := svc.GetWeeklyMeeting(context.Background())
	assert.ErrorIs(t, err, sheet.ErrSheetNotFound)
}

func TestCacheAndReset(t *testing.T) {
	dir, svc := fixture(t)
	ctx := context.Background()

	_, err := svc.GetStoreRanking(ctx, 3)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, salesReport)))

	r, err := svc.GetStoreRanking(ctx, 3)
	require.NoError(t, err, "served from cache")
	assert.Len(t, r.Stores, 3)

	svc.ResetCache()

	_, err = svc.GetStoreRanking(ctx, 3)
	assert.ErrorIs(t, err, workbook.ErrSourceUnavailable)
}

func TestSampleFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc := newService(t, localStorage(t, t.TempDir()), false)
		_, err := svc.GetMonthlyAggregate(ctx)
		assert.ErrorIs(t, err, workbook.ErrSourceUnavailable)
	})

	t.Run("enabled", func(t *testing.T) {
		svc := newService(t, localStorage(t, t.TempDir()), true)

		m, err := svc.GetMonthlyAggregate(ctx)
		require.NoError(t, err)
		assert.True(t, m.IsSample)
		assert.NotEmpty(t, m.Notice)
		require.Len(t, m.Months, 12)
		assert.Equal(t, 85_000_000.0, m.Months[0].Actual)
		assert.Equal(t, 13, m.Months[0].GrowthRate)
		assert.Zero(t, m.Months[6].Actual)

		r, err := svc.GetRegionalAggregate(ctx)
		require.NoError(t, err)
		assert.True(t, r.IsSample)
		assert.Len(t, r.Achievement, 6)

		s, err := svc.GetSummary(ctx)
		require.NoError(t, err)
		assert.True(t, s.IsSample)
		assert.Equal(t, "— 달성 예상", s.Cards.SalesTarget.Change)
		assert.Equal(t, "flat", s.Cards.SalesTarget.Trend)

		a, err := svc.GetSalesAnalytics(ctx, dashboard.SalesQuery{View: dashboard.ViewSummary})
		require.NoError(t, err)
		assert.True(t, a.IsSample)
	})
}

type blockingStorage struct{}

func (blockingStorage) Open(ctx context.Context, _ string) (io.ReadCloser, *storage.FileInfo, error) {
	<-ctx.Done()
	return nil, nil, ctx.Err()
}

func (blockingStorage) Stat(ctx context.Context, _ string) (*storage.FileInfo, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStorage) List(context.Context) ([]*storage.FileInfo, error) {
	return nil, nil
}

func TestTimeoutSurfaces(t *testing.T) {
	logger := discard()
	dir, err := store.NewDirectory("")
	require.NoError(t, err)
	defer dir.Close()

	cfg := &config.Config{
		Workbook: config.WorkbookConfig{BackData: backData, SalesReport: salesReport},
		Fallback: config.FallbackConfig{SampleOnUnavailable: true},
	}
	svc := dashboard.NewService(
		workbook.NewOpener(blockingStorage{}, 20*time.Millisecond, logger),
		parser.New(logger),
		classification.NewClassifier(classification.DefaultRules, logger),
		cache.New(time.Minute),
		dir,
		cfg,
		logger,
	)

	_, err = svc.GetMonthlyAggregate(context.Background())
	require.ErrorIs(t, err, workbook.ErrTimeout, "a timeout is never answered with sample data")
	assert.Contains(t, err.Error(), backData)
}
