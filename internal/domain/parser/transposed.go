package parser

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/metric"
)

// PeriodKind selects how period labels are canonicalized
type PeriodKind int

const (
	PeriodNone PeriodKind = iota
	PeriodMonth
	PeriodWeek
	PeriodDate
)

const (
	monthsPerYear = 12
	weeksPerYear  = 52
	isoDate       = "2006-01-02"
)

var periodPattern = regexp.MustCompile(`(\d{1,2})\s*(월|주)?`)

// monthPattern only accepts an English month name that starts the label as
// a whole word, so "Summary" or "합계(Dec 기준)" are not months.
var monthPattern = regexp.MustCompile(`(?i)^(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`)

var monthByPrefix = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// PeriodIndex extracts the 1-based month or week number from a label such as
// "1월", "01", "12주", "Week 3" or "November". Labels whose unit contradicts
// kind, or whose number is out of range, are rejected.
func PeriodIndex(label string, kind PeriodKind) (int, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, false
	}

	if kind == PeriodMonth {
		if m := monthPattern.FindStringSubmatch(label); m != nil {
			return monthByPrefix[strings.ToLower(m[1][:3])], true
		}
	}

	// Prefer a number carrying the unit, so "2025년 3월" reads as 3.
	matches := periodPattern.FindAllStringSubmatch(label, -1)
	if len(matches) == 0 {
		return 0, false
	}
	match := matches[0]
	for _, m := range matches {
		if m[2] != "" {
			match = m
			break
		}
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}

	switch kind {
	case PeriodMonth:
		if match[2] == "주" || n < 1 || n > monthsPerYear {
			return 0, false
		}
	case PeriodWeek:
		if match[2] == "월" || n < 1 || n > weeksPerYear {
			return 0, false
		}
	default:
		return 0, false
	}
	return n, true
}

// CanonicalPeriod maps a label to its canonical bucket: "N월", "N주" or an
// ISO date.
func CanonicalPeriod(label string, kind PeriodKind) (string, bool) {
	if kind == PeriodDate {
		d, err := time.Parse(isoDate, strings.TrimSpace(label))
		if err != nil {
			return "", false
		}
		return d.Format(isoDate), true
	}

	n, ok := PeriodIndex(label, kind)
	if !ok {
		return "", false
	}
	return periodLabel(n, kind), true
}

func periodLabel(n int, kind PeriodKind) string {
	if kind == PeriodWeek {
		return strconv.Itoa(n) + "주"
	}
	return strconv.Itoa(n) + "월"
}

// RoleRows names which zero-based row holds each measure in a transposed sheet.
// Column 0 of every role row is a row label and is ignored.
type RoleRows struct {
	Label             int
	Target            *int
	Actual            int
	PriorYear         *int
	PriorYearFallback *int // used when PriorYear is beyond the sheet
}

func rowIndex(i int) *int { return &i }

// MonthlyLayout is the 월별목표 sheet: months across row 1, then target,
// actual and prior-year rows. Prior year sits on the fifth row, or the fourth
// when the sheet is shorter.
var MonthlyLayout = RoleRows{
	Label:             0,
	Target:            rowIndex(1),
	Actual:            2,
	PriorYear:         rowIndex(4),
	PriorYearFallback: rowIndex(3),
}

// WeeklyLayout is the 주차별매출 sheet: weeks across row 1, this year, last year.
var WeeklyLayout = RoleRows{
	Label:     0,
	Actual:    1,
	PriorYear: rowIndex(2),
}

// ParseTransposed reads a sheet whose periods run across columns.
// Month output always has twelve records ordered 1월..12월 with zero records
// for missing months. Week output keeps only the weeks present, in order.
func (p *Parser) ParseTransposed(rows []Row, roles RoleRows, kind PeriodKind) ([]SalesRecord, *ParseResult) {
	result := &ParseResult{Errors: make([]ParseError, 0)}

	at := func(i *int) (Row, int, bool) {
		if i == nil || *i < 0 || *i >= len(rows) {
			return nil, -1, false
		}
		return rows[*i], *i, true
	}

	labels, _, hasLabels := at(&roles.Label)
	actuals, actualIdx, hasActuals := at(&roles.Actual)
	targets, targetIdx, _ := at(roles.Target)
	priors, priorIdx, hasPrior := at(roles.PriorYear)
	if !hasPrior {
		priors, priorIdx, _ = at(roles.PriorYearFallback)
	}

	byIndex := make(map[int]SalesRecord)
	if hasLabels && hasActuals {
		lastCol := len(labels) - 1
		if kind == PeriodWeek && lastCol > weeksPerYear {
			lastCol = weeksPerYear
		}

		for col := 1; col <= lastCol; col++ {
			label := labels.Text(col)
			if label == "" {
				continue
			}
			result.TotalRows++

			n, ok := PeriodIndex(label, kind)
			if !ok {
				result.SkippedRows++
				p.logger.Debug("skipping period column",
					slog.Int("column", col),
					slog.String("label", label),
				)
				continue
			}
			if _, dup := byIndex[n]; dup {
				result.SkippedRows++
				continue
			}

			rec := SalesRecord{
				EntityName: periodLabel(n, kind),
				Period:     periodLabel(n, kind),
				Actual:     p.number(result, actualIdx, col, actuals.At(col)),
			}
			if targets != nil {
				rec.Target = p.number(result, targetIdx, col, targets.At(col))
			}
			if priors != nil {
				rec.PriorYear = p.number(result, priorIdx, col, priors.At(col))
			}
			rec.GrowthRate = growth(rec.Actual, rec.PriorYear)

			byIndex[n] = rec
			result.ParsedRows++
		}
	}

	if kind == PeriodMonth {
		records := make([]SalesRecord, 0, monthsPerYear)
		for n := 1; n <= monthsPerYear; n++ {
			rec, ok := byIndex[n]
			if !ok {
				rec = SalesRecord{EntityName: periodLabel(n, kind), Period: periodLabel(n, kind)}
			}
			records = append(records, rec)
		}
		return records, result
	}

	indices := make([]int, 0, len(byIndex))
	for n := range byIndex {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	records := make([]SalesRecord, 0, len(indices))
	for _, n := range indices {
		records = append(records, byIndex[n])
	}
	return records, result
}

func growth(actual, prior float64) int {
	return metric.ParserGrowth(actual, prior)
}
