// Package dashboard assembles the dashboard views from the workbook exports.
// Every method returns plain structs; the handler package serializes them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/aggregation"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/cache"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/classification"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/sheet"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/store"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/workbook"
	"github.com/FACorreiaa/sales-dashboard/pkg/config"
)

const tracerName = "github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard"

// Opener reads a workbook by source name
type Opener interface {
	Open(ctx context.Context, source string) (*workbook.Workbook, error)
}

// LoadObserver is told about every workbook load
type LoadObserver interface {
	ObserveLoad(source string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveLoad(string, time.Duration, error) {}

// Source tells the client whether a payload is real or sample data
type Source struct {
	IsSample bool   `json:"isSample"`
	Notice   string `json:"notice,omitempty"`
}

// Service builds dashboard views
type Service struct {
	opener     Opener
	parser     *parser.Parser
	classifier *classification.Classifier
	locator    *sheet.Locator
	cache      *cache.Cache
	directory  *store.Directory
	files      config.WorkbookConfig
	sample     bool
	observer   LoadObserver
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLoadObserver reports workbook loads to o
func WithLoadObserver(o LoadObserver) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithTracer replaces the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLocator replaces the default sheet alias table
func WithLocator(l *sheet.Locator) Option {
	return func(s *Service) {
		if l != nil {
			s.locator = l
		}
	}
}

// NewService creates a dashboard service
func NewService(
	opener Opener,
	p *parser.Parser,
	classifier *classification.Classifier,
	c *cache.Cache,
	directory *store.Directory,
	cfg *config.Config,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		opener:     opener,
		parser:     p,
		classifier: classifier,
		locator:    sheet.NewLocator(nil),
		cache:      c,
		directory:  directory,
		files:      cfg.Workbook,
		sample:     cfg.Fallback.SampleOnUnavailable,
		observer:   nopObserver{},
		tracer:     otel.Tracer(tracerName),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResetCache drops every cached view. The next request reloads from source.
func (s *Service) ResetCache() {
	s.cache.Reset()
	s.logger.Info("dashboard cache reset")
}

// Warm loads the sales report into the cache and reindexes the store
// directory.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.salesLines(ctx)
	return err
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "dashboard."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// cached wraps a view loader with the cache and a trace span. T is the
// payload type stored under key.
func cached[T any](ctx context.Context, s *Service, name string, key cache.Key, load func(context.Context) (T, error)) (T, error) {
	ctx, span := s.startSpan(ctx, name, attribute.String("cache.key", key.String()))
	var zero T

	v, hit, err := s.cache.GetOrLoad(ctx, key.String(), func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	endSpan(span, err)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("failed to read cached %s: unexpected type %T", name, v)
	}
	return out, nil
}

// open reads a workbook and records the load
func (s *Service) open(ctx context.Context, source string) (*workbook.Workbook, error) {
	ctx, span := s.startSpan(ctx, "open", attribute.String("workbook.source", source))
	start := time.Now()

	wb, err := s.opener.Open(ctx, source)
	s.observer.ObserveLoad(source, time.Since(start), err)
	endSpan(span, err)
	return wb, err
}

// rows locates the sheet for concept and returns its rows
func (s *Service) rows(wb *workbook.Workbook, concept sheet.Concept) ([]parser.Row, string, error) {
	name, err := s.locator.Locate(wb.SheetNames(), concept)
	if err != nil {
		return nil, "", fmt.Errorf("failed to locate %s in %s: %w", concept, wb.Name, err)
	}
	rows, err := wb.Rows(name)
	if err != nil {
		return nil, "", err
	}
	return rows, name, nil
}

func (s *Service) logParse(source, sheetName string, result *parser.ParseResult) {
	attrs := []any{
		slog.String("source", source),
		slog.String("sheet", sheetName),
		slog.Int("total_rows", result.TotalRows),
		slog.Int("parsed_rows", result.ParsedRows),
		slog.Int("skipped_rows", result.SkippedRows),
	}
	if result.Malformed > 0 {
		s.logger.Warn("sheet parsed with malformed cells", append(attrs, slog.Int("malformed", result.Malformed))...)
		return
	}
	s.logger.Debug("sheet parsed", attrs...)
}

// fallback decides whether err may be answered with sample data
func (s *Service) fallback(err error) (Source, bool) {
	if !s.sample || !errors.Is(err, workbook.ErrSourceUnavailable) {
		return Source{}, false
	}
	s.logger.Warn("serving sample data", slog.Any("error", err))
	return Source{IsSample: true, Notice: sampleNotice}, true
}

// salesLines loads and classifies the sales report. A fresh load also
// reindexes the store directory.
func (s *Service) salesLines(ctx context.Context) (*salesData, error) {
	key := cache.Key{Dataset: s.files.SalesReport, View: "lines"}
	return cached(ctx, s, "salesLines", key, func(ctx context.Context) (*salesData, error) {
		wb, err := s.open(ctx, s.files.SalesReport)
		if err != nil {
			return nil, err
		}
		defer wb.Close()

		rows, name, err := s.rows(wb, sheet.SalesReport)
		if err != nil {
			return nil, err
		}

		report, result := s.parser.ParseSalesReport(rows, parser.DefaultSalesReportLayout)
		s.logParse(wb.Name, name, result)

		data := &salesData{
			lines: aggregation.Classify(s.classifier, report.Lines),
		}
		data.start, data.end, _ = report.DateRange()

		s.index(ctx, data.lines)
		return data, nil
	})
}

type salesData struct {
	lines      []aggregation.Line
	start, end string
}

// index replaces the store directory with the stores in lines. Trade areas
// come from the backdata workbook when it can be read.
func (s *Service) index(ctx context.Context, lines []aggregation.Line) {
	if s.directory == nil {
		return
	}

	var resolver *store.Resolver
	if areas, err := s.storeAreas(ctx); err != nil {
		s.logger.Warn("indexing stores without trade areas", slog.Any("error", err))
	} else {
		resolver = store.NewResolver(areas, store.DefaultThreshold)
	}

	seen := make(map[string]struct{})
	entries := make([]store.Entry, 0)
	for _, l := range lines {
		if _, ok := seen[l.StoreCode]; ok {
			continue
		}
		seen[l.StoreCode] = struct{}{}

		e := store.Entry{Code: l.StoreCode, Name: l.StoreName, Info: l.Store}
		if resolver != nil {
			if r, ok := resolver.Resolve(l.StoreName); ok {
				e.Area = r.Area
			}
		}
		entries = append(entries, e)
	}

	if err := s.directory.Replace(entries); err != nil {
		s.logger.Error("failed to index stores", slog.Any("error", err))
		return
	}
	s.logger.Debug("store directory indexed", slog.Int("stores", len(entries)))
}

// storeAreas reads the store → trade area map from the backdata workbook
func (s *Service) storeAreas(ctx context.Context) (map[string]string, error) {
	wb, err := s.open(ctx, s.files.BackData)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return s.areasFrom(wb)
}

func (s *Service) areasFrom(wb *workbook.Workbook) (map[string]string, error) {
	rows, name, err := s.rows(wb, sheet.StoreArea)
	if err != nil {
		return nil, err
	}
	areas, result := s.parser.ParseStoreAreas(rows, parser.DefaultStoreAreaLayout)
	s.logParse(wb.Name, name, result)
	return areas, nil
}

// summarySheet reads the 요약 sheet of the forecast workbook
func (s *Service) summarySheet(ctx context.Context) (*parser.Summary, error) {
	key := cache.Key{Dataset: s.files.Forecast, View: "summary-sheet"}
	return cached(ctx, s, "summarySheet", key, func(ctx context.Context) (*parser.Summary, error) {
		wb, err := s.open(ctx, s.files.Forecast)
		if err != nil {
			return nil, err
		}
		defer wb.Close()

		rows, name, err := s.rows(wb, sheet.Summary)
		if err != nil {
			return nil, err
		}
		summary, result := s.parser.ParseSummary(rows, parser.DefaultSummaryLayout)
		s.logParse(wb.Name, name, result)
		return summary, nil
	})
}
