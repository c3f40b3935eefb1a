package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/aggregation"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/cache"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/classification"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/metric"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/sheet"
	"github.com/FACorreiaa/sales-dashboard/pkg/money"
)

// forecastMonth is the month whose actual is replaced by the month-end
// forecast from the summary sheet.
const forecastMonth = 11

// MonthlyPoint is one month of the target chart
type MonthlyPoint struct {
	Month           string      `json:"month"`
	Target          float64     `json:"target"`
	Actual          float64     `json:"actual"`
	PriorYear       float64     `json:"priorYear"`
	GrowthRate      int         `json:"growthRate"`
	AchievementRate *float64    `json:"achievementRate"`
	Band            metric.Band `json:"band"`
	Forecast        bool        `json:"forecast,omitempty"`
}

// MonthlyAggregate is the twelve-month target chart
type MonthlyAggregate struct {
	Months          []MonthlyPoint `json:"months"`
	TotalTarget     float64        `json:"totalTarget"`
	TotalActual     float64        `json:"totalActual"`
	AchievementRate *float64       `json:"achievementRate"`
	Change          float64        `json:"change"` // last reported month against the one before, percent
	Source
}

// GetMonthlyAggregate reads the monthly target sheet. When the forecast
// workbook has a month-end forecast, November's actual is replaced by it.
func (s *Service) GetMonthlyAggregate(ctx context.Context) (*MonthlyAggregate, error) {
	key := cache.Key{Dataset: s.files.BackData, View: "monthly"}
	out, err := cached(ctx, s, "GetMonthlyAggregate", key, s.monthly)
	if err != nil {
		if src, ok := s.fallback(err); ok {
			m := sampleMonthly()
			m.Source = src
			return m, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *Service) monthly(ctx context.Context) (*MonthlyAggregate, error) {
	wb, err := s.open(ctx, s.files.BackData)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, name, err := s.rows(wb, sheet.MonthlyTarget)
	if err != nil {
		return nil, err
	}
	records, result := s.parser.ParseTransposed(rows, parser.MonthlyLayout, parser.PeriodMonth)
	s.logParse(wb.Name, name, result)

	var forecast float64
	if s.files.Forecast != "" {
		summary, err := s.summarySheet(ctx)
		switch {
		case err != nil:
			s.logger.Warn("monthly actuals without month-end forecast", slog.Any("error", err))
		default:
			forecast = summary.KPI.Forecast
		}
	}

	return buildMonthly(records, forecast), nil
}

func buildMonthly(records []parser.SalesRecord, forecast float64) *MonthlyAggregate {
	out := &MonthlyAggregate{Months: make([]MonthlyPoint, 0, len(records))}
	for i, r := range records {
		p := MonthlyPoint{
			Month:      r.Period,
			Target:     r.Target,
			Actual:     r.Actual,
			PriorYear:  r.PriorYear,
			GrowthRate: r.GrowthRate,
		}
		if i+1 == forecastMonth && forecast > 0 {
			p.Actual = forecast
			p.GrowthRate = metric.ParserGrowth(p.Actual, p.PriorYear)
			p.Forecast = true
		}
		p.AchievementRate = metric.AchievementRate(p.Actual, p.Target)
		p.Band = metric.ForecastBand(p.Actual)

		out.TotalTarget += p.Target
		out.TotalActual += p.Actual
		out.Months = append(out.Months, p)
	}

	out.AchievementRate = metric.AchievementRateFixed(out.TotalActual, out.TotalTarget)
	out.Change = metric.ChangePercent(reportedActuals(out.Months))
	return out
}

// reportedActuals returns the actual series up to the last month with sales,
// so unreported months at the end of the year do not read as a collapse.
func reportedActuals(months []MonthlyPoint) []float64 {
	last := -1
	for i, m := range months {
		if m.Actual != 0 {
			last = i
		}
	}
	series := make([]float64, 0, last+1)
	for _, m := range months[:last+1] {
		series = append(series, m.Actual)
	}
	return series
}

// WeeklyPoint is one week of the weekly sales chart
type WeeklyPoint struct {
	Week       string   `json:"week"`
	Actual     float64  `json:"actual"`
	PriorYear  float64  `json:"priorYear"`
	GrowthRate int      `json:"growthRate"`
	Change     *float64 `json:"change"` // against the previous week, one decimal
}

// WeeklyAggregate is the weekly sales chart
type WeeklyAggregate struct {
	Weeks []WeeklyPoint `json:"weeks"`
	Source
}

// GetWeeklyAggregate reads the weekly sales sheet. A workbook without one
// yields an empty chart.
func (s *Service) GetWeeklyAggregate(ctx context.Context) (*WeeklyAggregate, error) {
	key := cache.Key{Dataset: s.files.BackData, View: "weekly"}
	out, err := cached(ctx, s, "GetWeeklyAggregate", key, s.weekly)
	if err != nil {
		if src, ok := s.fallback(err); ok {
			return &WeeklyAggregate{Weeks: []WeeklyPoint{}, Source: src}, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *Service) weekly(ctx context.Context) (*WeeklyAggregate, error) {
	wb, err := s.open(ctx, s.files.BackData)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	out := &WeeklyAggregate{Weeks: []WeeklyPoint{}}
	rows, name, err := s.rows(wb, sheet.WeeklySales)
	if errors.Is(err, sheet.ErrSheetNotFound) {
		s.logger.Info("no weekly sales sheet", slog.String("source", wb.Name))
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	records, result := s.parser.ParseTransposed(rows, parser.WeeklyLayout, parser.PeriodWeek)
	s.logParse(wb.Name, name, result)

	for i, r := range records {
		p := WeeklyPoint{
			Week:       r.Period,
			Actual:     r.Actual,
			PriorYear:  r.PriorYear,
			GrowthRate: r.GrowthRate,
		}
		if i > 0 {
			p.Change = metric.PeriodGrowth(r.Actual, records[i-1].Actual)
		}
		out.Weeks = append(out.Weeks, p)
	}
	return out, nil
}

// AreaAchievement is one trade area's forecast against its target
type AreaAchievement struct {
	Area            string   `json:"area"`
	Target          float64  `json:"target"`
	Forecast        float64  `json:"forecast"`
	AchievementRate *float64 `json:"achievementRate"`
	GrowthRate      int      `json:"growthRate"`
}

// RegionalAggregate combines the summary sheet's per-area achievement with
// the sales report's per-region totals.
type RegionalAggregate struct {
	Achievement []AreaAchievement    `json:"achievement"`
	Regions     []aggregation.Bucket `json:"regions"` // display order, Rank by sales
	Source
}

// GetRegionalAggregate builds the regional view
func (s *Service) GetRegionalAggregate(ctx context.Context) (*RegionalAggregate, error) {
	key := cache.Key{Dataset: s.files.SalesReport, View: "regional"}
	out, err := cached(ctx, s, "GetRegionalAggregate", key, s.regional)
	if err != nil {
		if src, ok := s.fallback(err); ok {
			r := sampleRegional()
			r.Source = src
			return r, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *Service) regional(ctx context.Context) (*RegionalAggregate, error) {
	data, err := s.salesLines(ctx)
	if err != nil {
		return nil, err
	}

	regions := aggregation.Aggregate(data.lines, aggregation.DimensionRegion)
	sort.SliceStable(regions, func(i, j int) bool {
		return classification.RegionOrder(regions[i].Key) < classification.RegionOrder(regions[j].Key)
	})

	out := &RegionalAggregate{Achievement: []AreaAchievement{}, Regions: regions}
	if s.files.Forecast == "" {
		return out, nil
	}

	summary, err := s.summarySheet(ctx)
	if err != nil {
		s.logger.Warn("regional view without area achievement", slog.Any("error", err))
		return out, nil
	}
	for _, a := range summary.ByArea {
		out.Achievement = append(out.Achievement, AreaAchievement{
			Area:            a.Name,
			Target:          a.Target,
			Forecast:        a.Forecast,
			AchievementRate: metric.AchievementRate(a.Forecast, a.Target),
			GrowthRate:      a.ForecastGrowth,
		})
	}
	return out, nil
}

// KPICard is one headline card
type KPICard struct {
	Value string `json:"value"`
	// Compact is the amount in 억 for the amount cards
	Compact string `json:"compact,omitempty"`
	Change  string `json:"change"`
	Trend   string `json:"trend"` // up, down or flat
}

// KPICards are the four headline cards of the dashboard
type KPICards struct {
	SalesTarget KPICard `json:"salesTarget"`
	Forecast    KPICard `json:"forecast"`
	LastYear    KPICard `json:"lastYear"`
	GrowthRate  KPICard `json:"growthRate"`
}

// Summary is the headline view built from the summary sheet
type Summary struct {
	Cards               KPICards            `json:"kpis"`
	ForecastAchievement *float64            `json:"forecastAchievementRate"`
	Growth              *float64            `json:"growthRate"`
	KPI                 parser.SummaryRow   `json:"kpi"`
	ByArea              []parser.SummaryRow `json:"byArea"`
	ByTeam              []parser.SummaryRow `json:"byTeam"`
	ByChannel           []parser.SummaryRow `json:"byChannel"`
	Source
}

// GetSummary builds the KPI cards and the area, team and channel tables
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	key := cache.Key{Dataset: s.files.Forecast, View: "summary"}
	out, err := cached(ctx, s, "GetSummary", key, func(ctx context.Context) (*Summary, error) {
		raw, err := s.summarySheet(ctx)
		if err != nil {
			return nil, err
		}
		return buildSummary(raw), nil
	})
	if err != nil {
		if src, ok := s.fallback(err); ok {
			sum := buildSummary(&parser.Summary{})
			sum.Source = src
			return sum, nil
		}
		return nil, err
	}
	return out, nil
}

func buildSummary(raw *parser.Summary) *Summary {
	kpi := raw.KPI
	achievement := metric.AchievementRateFixed(kpi.Forecast, kpi.Target)
	growth := metric.PeriodGrowth(kpi.Forecast, kpi.LastYear)

	achievementText := percentText(achievement)
	growthText := percentText(growth)

	return &Summary{
		Cards: KPICards{
			SalesTarget: KPICard{
				Value:   money.FormatKRW(kpi.Target),
				Compact: money.Eok(kpi.Target),
				Change:  achievementText + " 달성 예상",
				Trend:   trend(achievement, 100),
			},
			Forecast: KPICard{
				Value:   money.FormatKRW(kpi.Forecast),
				Compact: money.Eok(kpi.Forecast),
				Change:  achievementText + " 달성률",
				Trend:   trend(achievement, 100),
			},
			LastYear: KPICard{
				Value:   money.FormatKRW(kpi.LastYear),
				Compact: money.Eok(kpi.LastYear),
				Change:  growthText + " 신장",
				Trend:   trend(growth, 0),
			},
			GrowthRate: KPICard{
				Value:  growthText,
				Change: "전년 대비",
				Trend:  trend(growth, 0),
			},
		},
		ForecastAchievement: achievement,
		Growth:              growth,
		KPI:                 kpi,
		ByArea:              nonNil(raw.ByArea),
		ByTeam:              nonNil(raw.ByTeam),
		ByChannel:           nonNil(raw.ByChannel),
	}
}

// noRatio stands in for a ratio whose denominator is zero
const noRatio = "—"

// percentText renders a one-decimal percent such as "12.5%"
func percentText(p *float64) string {
	if p == nil {
		return noRatio
	}
	return money.FormatFixed(*p, 1) + "%"
}

// trend compares p with the threshold it must reach to count as up
func trend(p *float64, threshold float64) string {
	switch {
	case p == nil:
		return "flat"
	case *p >= threshold:
		return "up"
	default:
		return "down"
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
