package dashboard

import (
	"strconv"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/aggregation"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/metric"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
)

const sampleNotice = "엑셀 원본을 읽을 수 없어 샘플 데이터를 표시합니다."

// sampleMonthly is the first half-year shown when the backdata workbook is
// unavailable and the fallback policy allows it.
func sampleMonthly() *MonthlyAggregate {
	figures := []struct {
		actual, target, prior float64
	}{
		{85_000_000, 80_000_000, 75_000_000},
		{92_000_000, 85_000_000, 80_000_000},
		{78_000_000, 90_000_000, 85_000_000},
		{105_000_000, 95_000_000, 90_000_000},
		{98_000_000, 100_000_000, 95_000_000},
		{120_000_000, 110_000_000, 100_000_000},
	}

	records := make([]parser.SalesRecord, 12)
	for i := range records {
		period := strconv.Itoa(i+1) + "월"
		records[i] = parser.SalesRecord{EntityName: period, Period: period}
		if i < len(figures) {
			f := figures[i]
			records[i].Actual = f.actual
			records[i].Target = f.target
			records[i].PriorYear = f.prior
			records[i].GrowthRate = metric.ParserGrowth(f.actual, f.prior)
		}
	}
	return buildMonthly(records, 0)
}

// sampleRegional is the regional achievement placeholder
func sampleRegional() *RegionalAggregate {
	regions := []struct {
		name string
		rate float64
	}{
		{"서울", 95},
		{"부산", 87},
		{"대구", 82},
		{"인천", 91},
		{"광주", 78},
		{"대전", 88},
	}

	out := &RegionalAggregate{
		Achievement: make([]AreaAchievement, 0, len(regions)),
		Regions:     []aggregation.Bucket{},
	}
	for _, r := range regions {
		rate := r.rate
		out.Achievement = append(out.Achievement, AreaAchievement{
			Area:            r.name,
			Target:          100,
			Forecast:        rate,
			AchievementRate: &rate,
		})
	}
	return out
}
