package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/aggregation"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard/handler"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/sheet"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/workbook"
)

type fakeService struct {
	err     error
	source  dashboard.Source
	n       int
	query   dashboard.SalesQuery
	filter  dashboard.SalesFilter
	dim     aggregation.Dimension
	search  string
	buckets []aggregation.Bucket
	resets  int
}

func (f *fakeService) GetMonthlyAggregate(context.Context) (*dashboard.MonthlyAggregate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dashboard.MonthlyAggregate{
		Months: []dashboard.MonthlyPoint{{Month: "1월", Target: 100, Actual: 90}},
		Source: f.source,
	}, nil
}

func (f *fakeService) GetWeeklyAggregate(context.Context) (*dashboard.WeeklyAggregate, error) {
	return &dashboard.WeeklyAggregate{Weeks: []dashboard.WeeklyPoint{}}, f.err
}

func (f *fakeService) GetRegionalAggregate(context.Context) (*dashboard.RegionalAggregate, error) {
	return &dashboard.RegionalAggregate{}, f.err
}

func (f *fakeService) GetSummary(context.Context) (*dashboard.Summary, error) {
	return &dashboard.Summary{Source: f.source}, f.err
}

func (f *fakeService) GetStoreRanking(_ context.Context, n int) (*dashboard.StoreRanking, error) {
	f.n = n
	return &dashboard.StoreRanking{Stores: []aggregation.Bucket{}}, f.err
}

func (f *fakeService) GetStorePerformance(context.Context) (*dashboard.StorePerformance, error) {
	return &dashboard.StorePerformance{}, f.err
}

func (f *fakeService) SearchStores(_ context.Context, q string, limit int) (*dashboard.StoreSearch, error) {
	f.search, f.n = q, limit
	return &dashboard.StoreSearch{Query: q}, f.err
}

func (f *fakeService) GetBestSellers(_ context.Context, n int) (*dashboard.ProductList, error) {
	f.n = n
	return &dashboard.ProductList{Products: []aggregation.ProductStat{}}, f.err
}

func (f *fakeService) GetWorstSellers(_ context.Context, n int) (*dashboard.ProductList, error) {
	f.n = -n
	return &dashboard.ProductList{Products: []aggregation.ProductStat{}}, f.err
}

func (f *fakeService) GetSalesAnalytics(_ context.Context, q dashboard.SalesQuery) (*dashboard.SalesAnalytics, error) {
	f.query = q
	return &dashboard.SalesAnalytics{View: q.View}, f.err
}

func (f *fakeService) ExportDimension(_ context.Context, dim aggregation.Dimension, filter dashboard.SalesFilter) ([]aggregation.Bucket, dashboard.Source, error) {
	f.dim, f.filter = dim, filter
	return f.buckets, f.source, f.err
}

func (f *fakeService) GetWeeklyMeeting(context.Context) (*dashboard.WeeklyMeeting, error) {
	return &dashboard.WeeklyMeeting{}, f.err
}

func (f *fakeService) ResetCache() { f.resets++ }

func newRouter(svc handler.Service) http.Handler {
	h := handler.NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Route("/api", h.Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta handler.Meta    `json:"meta"`
}

func TestMonthlyEnvelope(t *testing.T) {
	svc := &fakeService{source: dashboard.Source{IsSample: true, Notice: "sample"}}
	rec := do(t, newRouter(svc), http.MethodGet, "/api/dashboard/monthly")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Meta.IsSample)
	assert.Equal(t, "sample", body.Meta.Notice)
	assert.NotEmpty(t, body.Meta.RequestID)
	require.NotNil(t, body.Meta.Count)
	assert.Equal(t, 1, *body.Meta.Count)

	var data dashboard.MonthlyAggregate
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Len(t, data.Months, 1)
	assert.Equal(t, "1월", data.Months[0].Month)
	assert.True(t, data.IsSample)
}

func TestSummaryOmitsCount(t *testing.T) {
	rec := do(t, newRouter(&fakeService{}), http.MethodGet, "/api/dashboard/summary")

	require.Equal(t, http.StatusOK, rec.Code)
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Meta.Count)
	assert.False(t, body.Meta.IsSample)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unavailable", fmt.Errorf("open backdata: %w", workbook.ErrSourceUnavailable), http.StatusServiceUnavailable, handler.CodeSourceUnavailable},
		{"timeout", fmt.Errorf("open backdata: %w", workbook.ErrTimeout), http.StatusGatewayTimeout, handler.CodeSourceTimeout},
		{"sheet", fmt.Errorf("locate: %w", sheet.ErrSheetNotFound), http.StatusNotFound, handler.CodeSheetNotFound},
		{"query", fmt.Errorf("%w: bad", dashboard.ErrInvalidQuery), http.StatusBadRequest, handler.CodeInvalidParameter},
		{"other", errors.New("boom"), http.StatusInternalServerError, handler.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newRouter(&fakeService{err: tt.err}), http.MethodGet, "/api/dashboard/monthly")

			assert.Equal(t, tt.status, rec.Code)
			var body handler.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.RequestID)
			assert.False(t, body.Error.Timestamp.IsZero())
		})
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := do(t, newRouter(&fakeService{err: errors.New("secret path /data/x.xlsx")}), http.MethodGet, "/api/dashboard/weekly")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret path")
}

func TestLimitParams(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	rec := do(t, r, http.MethodGet, "/api/stores/ranking")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.DefaultRankingLimit, svc.n)

	do(t, r, http.MethodGet, "/api/products/best?n=5")
	assert.Equal(t, 5, svc.n)

	do(t, r, http.MethodGet, "/api/products/worst?n=3")
	assert.Equal(t, -3, svc.n)

	do(t, r, http.MethodGet, "/api/stores/search?q=%EA%B0%95%EB%82%A8&limit=7")
	assert.Equal(t, "강남", svc.search)
	assert.Equal(t, 7, svc.n)

	for _, target := range []string{"/api/stores/ranking?n=abc", "/api/products/best?n=-1"} {
		rec := do(t, r, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSalesQuery(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	rec := do(t, r, http.MethodGet, "/api/sales?view=stores&page=2&pageSize=10&storeType=DS&brand=%EC%8B%A0%EC%84%B8%EA%B3%84&onlineOnly=false&window=weekly&anchor=2025-11-05")
	require.Equal(t, http.StatusOK, rec.Code)

	q := svc.query
	assert.Equal(t, dashboard.ViewStores, q.View)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, "DS", q.Filter.StoreType)
	assert.Equal(t, "신세계", q.Filter.Brand)
	require.NotNil(t, q.Filter.OnlineOnly)
	assert.False(t, *q.Filter.OnlineOnly)
	assert.Equal(t, aggregation.WindowWeekly, q.Filter.Window)
	assert.Equal(t, time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), q.Filter.Anchor)

	rec = do(t, r, http.MethodGet, "/api/sales")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.ViewSummary, svc.query.View)
	assert.Equal(t, 1, svc.query.Page)
	assert.Nil(t, svc.query.Filter.OnlineOnly)
	assert.Equal(t, aggregation.WindowAll, svc.query.Filter.Window)

	for _, target := range []string{
		"/api/sales?view=nope",
		"/api/sales?onlineOnly=maybe",
		"/api/sales?window=hourly",
		"/api/sales?anchor=11/05/2025",
		"/api/sales?page=x",
	} {
		rec := do(t, r, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestExportCSV(t *testing.T) {
	svc := &fakeService{
		source: dashboard.Source{IsSample: true},
		buckets: []aggregation.Bucket{
			{Dimension: aggregation.DimensionRegion, Key: "강남권", Label: "강남권", Sales: 1500, Quantity: 3, MemberCount: 2, Share: 75, Rank: 1, AveragePerMember: 750, StoreType: "DS"},
		},
	}
	rec := do(t, newRouter(svc), http.MethodGet, "/api/sales/export.csv?dimension=region&region=%EA%B0%95%EB%82%A8%EA%B6%8C")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, aggregation.DimensionRegion, svc.dim)
	assert.Equal(t, "강남권", svc.filter.Region)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="sales-region.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "true", rec.Header().Get("X-Sample-Data"))

	body := strings.TrimPrefix(rec.Body.String(), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "dimension,key,label,sales,quantity,member_count,share,rank,average_per_member", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "region,강남권,강남권,1500,3,2,75,1,750"))
}

func TestExportDefaultsAndRejects(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	rec := do(t, r, http.MethodGet, "/api/sales/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, aggregation.DimensionStore, svc.dim)
	assert.Empty(t, rec.Header().Get("X-Sample-Data"))

	rec = do(t, r, http.MethodGet, "/api/sales/export.csv?dimension=planet")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetCache(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	rec := do(t, r, http.MethodPost, "/api/cache/reset")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.resets)

	rec = do(t, r, http.MethodGet, "/api/cache/reset")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 1, svc.resets)
}

func TestWeeklyMeetingMissingSheet(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("failed to locate weekly meeting: %w", sheet.ErrSheetNotFound)}
	rec := do(t, newRouter(svc), http.MethodGet, "/api/weekly-meeting")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
