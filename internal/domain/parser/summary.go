package parser

import (
	"strings"

	"github.com/FACorreiaa/sales-dashboard/pkg/money"
)

// SummaryLayout locates the figures on the 요약 sheet.
//
// Row offsets count data rows: rows after the header row, with fully blank
// rows removed, which is how the sheet's own notes number them (data row 5 is
// sheet row 7). Column offsets are zero-based sheet columns.
type SummaryLayout struct {
	NameCol           int
	TargetCol         int
	ForecastCol       int
	LastYearCol       int
	ForecastGrowthCol int
	PeriodActualCol   int
	PriorPeriodCol    int
	PeriodGrowthCol   int

	KPIRow         int
	BlockMarkerCol int
	AreaMarker     string
	TeamMarker     string
	ChannelMarker  string // substring
	AreaScanFrom   int
	BlockMaxRows   int
	AreaExclude    string
	ChannelRows    []int // first row is the channel total
}

// DefaultSummaryLayout matches the month-end forecast workbook
var DefaultSummaryLayout = SummaryLayout{
	NameCol:           6,
	TargetCol:         7,
	ForecastCol:       8,
	LastYearCol:       10,
	ForecastGrowthCol: 11,
	PeriodActualCol:   16,
	PriorPeriodCol:    17,
	PeriodGrowthCol:   18,

	KPIRow:         5,
	BlockMarkerCol: 4,
	AreaMarker:     "상권",
	TeamMarker:     "TEAM",
	ChannelMarker:  "유통",
	AreaScanFrom:   5,
	BlockMaxRows:   14,
	AreaExclude:    "제외",
	ChannelRows:    []int{20, 21, 22, 23, 24, 25, 26},
}

const (
	sumLabel   = "SUM"
	totalLabel = "TTL"
)

// SummaryRow is one line of a summary block. Growth figures are integer
// percents; the sheet stores them as fractions.
type SummaryRow struct {
	Name           string  `json:"name"`
	Target         float64 `json:"target"`
	Forecast       float64 `json:"forecast"`
	LastYear       float64 `json:"lastYear"`
	PeriodActual   float64 `json:"periodPerformance"`
	PriorPeriod    float64 `json:"lastYearPeriod"`
	PeriodGrowth   int     `json:"periodGrowthRate"`
	ForecastGrowth int     `json:"forecastGrowthRate"`
}

// Summary is the parsed 요약 sheet
type Summary struct {
	KPI       SummaryRow   `json:"kpi"`
	ByArea    []SummaryRow `json:"byArea"`
	ByTeam    []SummaryRow `json:"byTeam"`
	ByChannel []SummaryRow `json:"byChannel"`
}

// ParseSummary reads the KPI row and the area, team and channel blocks.
func (p *Parser) ParseSummary(rows []Row, layout SummaryLayout) (*Summary, *ParseResult) {
	result := &ParseResult{Errors: make([]ParseError, 0)}
	data, sheetRow := dataRows(rows)
	result.TotalRows = len(data)

	read := func(i int) SummaryRow {
		row := data[i]
		num := func(col int) float64 {
			return p.number(result, sheetRow[i], col, row.At(col))
		}
		return SummaryRow{
			Name:           row.Text(layout.NameCol),
			Target:         roundAmount(num(layout.TargetCol)),
			Forecast:       roundAmount(num(layout.ForecastCol)),
			LastYear:       roundAmount(num(layout.LastYearCol)),
			PeriodActual:   roundAmount(num(layout.PeriodActualCol)),
			PriorPeriod:    roundAmount(num(layout.PriorPeriodCol)),
			PeriodGrowth:   fractionPercent(num(layout.PeriodGrowthCol)),
			ForecastGrowth: fractionPercent(num(layout.ForecastGrowthCol)),
		}
	}

	summary := &Summary{
		ByArea:    make([]SummaryRow, 0),
		ByTeam:    make([]SummaryRow, 0),
		ByChannel: make([]SummaryRow, 0),
	}

	if layout.KPIRow < len(data) {
		summary.KPI = read(layout.KPIRow)
		summary.KPI.Name = totalLabel
	}

	isMarker := func(i int) bool {
		m := data[i].Text(layout.BlockMarkerCol)
		return m == layout.AreaMarker || m == layout.TeamMarker ||
			(layout.ChannelMarker != "" && strings.Contains(m, layout.ChannelMarker))
	}

	block := func(from int, marker, exclude string) []SummaryRow {
		out := make([]SummaryRow, 0)
		for i := from; i < len(data); i++ {
			if data[i].Text(layout.BlockMarkerCol) != marker {
				continue
			}

			total := read(i)
			total.Name = strings.Replace(total.Name, sumLabel, totalLabel, 1)
			if total.Name != "" {
				out = append(out, total)
			}

			for j := i + 1; j <= i+layout.BlockMaxRows && j < len(data); j++ {
				if isMarker(j) {
					break
				}
				r := read(j)
				if r.Name == "" || (r.Target <= 0 && r.Forecast <= 0) {
					continue
				}
				if exclude != "" && strings.Contains(r.Name, exclude) {
					continue
				}
				out = append(out, r)
			}
			break
		}
		return out
	}

	summary.ByArea = block(layout.AreaScanFrom, layout.AreaMarker, layout.AreaExclude)
	summary.ByTeam = block(0, layout.TeamMarker, "")

	for k, i := range layout.ChannelRows {
		if i >= len(data) {
			break
		}
		r := read(i)
		if k == 0 {
			r.Name = totalLabel
		}
		if r.Name == "" || (r.Target <= 0 && r.Forecast <= 0) {
			continue
		}
		summary.ByChannel = append(summary.ByChannel, r)
	}

	result.ParsedRows = len(summary.ByArea) + len(summary.ByTeam) + len(summary.ByChannel)
	return summary, result
}

// dataRows drops the header row and blank rows, returning the remaining rows
// with their zero-based sheet positions.
func dataRows(rows []Row) ([]Row, []int) {
	if len(rows) == 0 {
		return nil, nil
	}
	data := make([]Row, 0, len(rows)-1)
	pos := make([]int, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if rows[i].IsBlank() {
			continue
		}
		data = append(data, rows[i])
		pos = append(pos, i)
	}
	return data, pos
}

func roundAmount(v float64) float64 {
	return float64(money.RoundInt(v))
}

func fractionPercent(v float64) int {
	return int(money.RoundInt(v * 100))
}
