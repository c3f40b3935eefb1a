package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// summaryLine places values at the default summary columns.
func summaryLine(marker, name string, target, forecast, lastYear, forecastGrowth, periodActual, prior, periodGrowth float64) Row {
	row := make(Row, 19)
	row[0] = TextCell("·")
	row[4] = TextCell(marker)
	row[6] = TextCell(name)
	row[7] = NumberCell(target)
	row[8] = NumberCell(forecast)
	row[10] = NumberCell(lastYear)
	row[11] = NumberCell(forecastGrowth)
	row[16] = NumberCell(periodActual)
	row[17] = NumberCell(prior)
	row[18] = NumberCell(periodGrowth)
	return row
}

func filler() Row { return TextRow("·") }

func TestParseSummary(t *testing.T) {
	data := []Row{
		filler(), filler(), filler(), filler(), filler(),
		summaryLine("상권", "상권 SUM", 1000, 900, 800, 0.125, 500, 400, 0.25), // 5
		summaryLine("", "서울", 500, 450, 400, 0.1, 200, 150, 0.3),
		summaryLine("", "제외매장", 10, 10, 10, 0, 0, 0, 0),
		summaryLine("", "", 10, 10, 10, 0, 0, 0, 0),
		summaryLine("", "경기", 0, 0, 10, 0, 0, 0, 0),
		summaryLine("TEAM", "TEAM SUM", 1000, 900, 800, 0, 0, 0, 0), // 10
		summaryLine("", "A팀", 300, 0, 0, 0, 0, 0, 0),
		summaryLine("유통별", "유통 SUM", 1, 1, 1, 0, 0, 0, 0), // 12
		filler(), filler(), filler(), filler(), filler(), filler(), filler(),
		summaryLine("", "유통 SUM", 1000, 900, 0, 0, 0, 0, 0), // 20
		summaryLine("", "백화점", 600, 0, 0, 0, 0, 0, 0),
		summaryLine("", "", 600, 0, 0, 0, 0, 0, 0),
		summaryLine("", "온라인", 0, 0, 100, 0, 0, 0, 0),
	}

	rows := []Row{TextRow("header")}
	rows = append(rows, data[:3]...)
	rows = append(rows, TextRow("", nil)) // blank rows do not count
	rows = append(rows, data[3:]...)

	summary, result := testParser().ParseSummary(rows, DefaultSummaryLayout)
	require.NotNil(t, summary)
	assert.Zero(t, result.Malformed)

	t.Run("kpi row", func(t *testing.T) {
		kpi := summary.KPI
		assert.Equal(t, "TTL", kpi.Name)
		assert.Equal(t, 1000.0, kpi.Target)
		assert.Equal(t, 900.0, kpi.Forecast)
		assert.Equal(t, 800.0, kpi.LastYear)
		assert.Equal(t, 500.0, kpi.PeriodActual)
		assert.Equal(t, 400.0, kpi.PriorPeriod)
		assert.Equal(t, 13, kpi.ForecastGrowth)
		assert.Equal(t, 25, kpi.PeriodGrowth)
	})

	t.Run("area block", func(t *testing.T) {
		require.Len(t, summary.ByArea, 2)
		assert.Equal(t, "상권 TTL", summary.ByArea[0].Name)
		assert.Equal(t, "서울", summary.ByArea[1].Name)
		assert.Equal(t, 30, summary.ByArea[1].PeriodGrowth)
	})

	t.Run("team block", func(t *testing.T) {
		require.Len(t, summary.ByTeam, 2)
		assert.Equal(t, "TEAM TTL", summary.ByTeam[0].Name)
		assert.Equal(t, "A팀", summary.ByTeam[1].Name)
	})

	t.Run("channel rows", func(t *testing.T) {
		require.Len(t, summary.ByChannel, 2)
		assert.Equal(t, "TTL", summary.ByChannel[0].Name)
		assert.Equal(t, "백화점", summary.ByChannel[1].Name)
	})
}

func TestParseSummary_Short(t *testing.T) {
	summary, _ := testParser().ParseSummary([]Row{TextRow("header")}, DefaultSummaryLayout)
	assert.Equal(t, "", summary.KPI.Name)
	assert.Empty(t, summary.ByArea)
	assert.Empty(t, summary.ByChannel)
}

func salesRow(code, name string, qty, sales, returns float64, daily ...any) Row {
	row := make(Row, 20, 20+len(daily))
	row[1] = TextCell(code)
	row[2] = TextCell(name)
	row[3] = TextCell("TS")
	row[4] = TextCell("25F")
	row[5] = TextCell("P1")
	row[6] = TextCell("티셔츠")
	row[7] = NumberCell(39000)
	row[11] = NumberCell(qty)
	row[12] = NumberCell(sales)
	row[18] = NumberCell(returns)
	return append(row, TextRow(daily...)...)
}

func TestParseSalesReport(t *testing.T) {
	header := make(Row, 20)
	header = append(header, NumberCell(45962), TextCell("2025-11-02"), TextCell("비고"))

	rows := []Row{
		TextRow("일주월별 판매"),
		header,
		salesRow("S1", "롯데본점", 3, 117000, -39000, 2, "1", "x"),
		salesRow("", "현대판교", 1, 1, 0),
		salesRow("S2", "현대판교", 1, 39000, 0, 0, nil),
	}

	report, result := testParser().ParseSalesReport(rows, DefaultSalesReportLayout)

	assert.Equal(t, []string{"2025-11-01", "2025-11-02"}, report.Dates)
	require.Len(t, report.Lines, 2)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.SkippedRows)

	line := report.Lines[0]
	assert.Equal(t, "S1", line.StoreCode)
	assert.Equal(t, "롯데본점", line.StoreName)
	assert.Equal(t, "TS", line.Item)
	assert.Equal(t, 39000.0, line.RetailPrice)
	assert.Equal(t, 3.0, line.TotalQuantity)
	assert.Equal(t, 117000.0, line.TotalSales)
	assert.Equal(t, -39000.0, line.ReturnSales)
	assert.Equal(t, map[string]float64{"2025-11-01": 2, "2025-11-02": 1}, line.DailyQuantity)

	assert.Empty(t, report.Lines[1].DailyQuantity, "zero quantities are not kept")

	start, end, dates := report.DateRange()
	assert.Equal(t, "2025-11-01", start)
	assert.Equal(t, "2025-11-02", end)
	assert.Len(t, dates, 2)
}

func TestExcelSerialToDate(t *testing.T) {
	assert.Equal(t, "1970-01-01", ExcelSerialToDate(25569))
	assert.Equal(t, "2025-11-01", ExcelSerialToDate(45962.75))
}

func TestParseStorePerformance(t *testing.T) {
	rows := []Row{
		TextRow("매장명", "25년 11월", "24년 11월"),
		TextRow("롯데본점", 1200, 1000),
		TextRow("", 1, 1),
		TextRow("현대판교", "500", 0),
	}

	perf, result := testParser().ParseStorePerformance(rows, DefaultStorePerformanceLayout)

	require.Len(t, perf, 2)
	assert.Equal(t, StorePerformance{StoreName: "롯데본점", Current: 1200, Prior: 1000, GrowthRate: 20}, perf[0])
	assert.Equal(t, 0, perf[1].GrowthRate)
	assert.Equal(t, 500.0, perf[1].Current)
	assert.Equal(t, 1, result.SkippedRows)
}

func TestParseStoreAreas(t *testing.T) {
	t.Run("maps store to area", func(t *testing.T) {
		rows := []Row{
			TextRow("No", "매장명", "상권별"),
			TextRow(1, "롯데본점", "서울 A"),
			TextRow(2, "현대판교", ""),
			TextRow(3, " 롯데본점 ", "서울 B"),
		}

		areas, result := testParser().ParseStoreAreas(rows, DefaultStoreAreaLayout)
		assert.Equal(t, map[string]string{"롯데본점": "서울 B"}, areas)
		assert.Equal(t, 1, result.SkippedRows)
	})

	t.Run("missing header", func(t *testing.T) {
		areas, result := testParser().ParseStoreAreas([]Row{TextRow("name", "area")}, DefaultStoreAreaLayout)
		assert.Empty(t, areas)
		assert.Len(t, result.Errors, 1)
	})
}

func TestParseWeeklyMeeting(t *testing.T) {
	rows := make([]Row, 21)
	for i := range rows {
		rows[i] = TextRow()
	}

	total := make(Row, 20)
	total[0] = TextCell("합계")
	total[1] = NumberCell(100)
	total[2] = NumberCell(90)
	total[5] = TextCell("0.9")
	total[9] = NumberCell(30)
	total[17] = NumberCell(7)
	total[19] = TextCell("-")
	rows[3] = total
	rows[4] = TextRow(2025, 1)
	rows[5] = TextRow("국내")
	rows[12] = TextRow("백화점", 50)

	board, result := testParser().ParseWeeklyMeeting(rows, DefaultWeeklyMeetingLayout)

	require.Len(t, board.Areas, 2)
	sum := board.Areas[0]
	assert.Equal(t, "합계", sum.Name)
	require.NotNil(t, sum.Yearly.Target)
	assert.Equal(t, 100.0, *sum.Yearly.Target)
	assert.Equal(t, 0.9, *sum.Yearly.AchievementRate)
	assert.Nil(t, sum.Yearly.LastYear)
	assert.Equal(t, 30.0, *sum.Monthly.Actual)
	assert.Equal(t, 7.0, *sum.Weekly.Actual)
	assert.Nil(t, sum.Weekly.GrowthRate, "non-numeric cells are nil")

	assert.Equal(t, "국내", board.Areas[1].Name)
	assert.Nil(t, board.Areas[1].Yearly.Target)

	require.Len(t, board.Channels, 1)
	assert.Equal(t, 50.0, *board.Channels[0].Yearly.Target)

	assert.Equal(t, 3, result.ParsedRows)
	assert.Zero(t, result.Malformed)
}
