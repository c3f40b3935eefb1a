package salestest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
)

// Sheet is a named sheet of literal rows. Values are written with their Go
// types, so numbers land as numeric cells.
type Sheet struct {
	Name string
	Rows [][]any
}

// WriteWorkbook writes an xlsx file with the given sheets, in order, to dir
// and returns its path.
func WriteWorkbook(t testing.TB, dir, name string, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("new sheet %s: %v", s.Name, err)
		}

		for r, row := range s.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := row
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				t.Fatalf("set row %d of %s: %v", r+1, s.Name, err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// WriteFile writes raw bytes to dir/name
func WriteFile(t testing.TB, dir, name string, body []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// MonthlySheet is a 월별목표 sheet with the given targets, actuals and prior
// year values for months 1..len(actual).
func MonthlySheet(target, actual, prior []float64) Sheet {
	labels := []any{""}
	targets := []any{"목표"}
	actuals := []any{"실적"}
	priors := []any{"작년"}
	for i := range actual {
		labels = append(labels, monthLabel(i+1))
		targets = append(targets, target[i])
		actuals = append(actuals, actual[i])
		priors = append(priors, prior[i])
	}
	return Sheet{
		Name: "월별목표",
		Rows: [][]any{labels, targets, actuals, {"달성률"}, priors},
	}
}

func monthLabel(m int) string {
	return time.Month(m).String()[:3]
}

// SalesReportSheet renders lines in the report layout. The header row
// carries an excel serial per date.
func SalesReportSheet(lines []parser.SalesLine, dates []string) Sheet {
	header := make([]any, 20, 20+len(dates))
	header[1] = "매장코드"
	header[2] = "매장명"
	for _, d := range dates {
		t, _ := time.Parse("2006-01-02", d)
		header = append(header, float64(t.Unix()/86400+25569))
	}

	rows := [][]any{{"일주월별 판매"}, header}
	for _, l := range lines {
		row := []any{
			"", l.StoreCode, l.StoreName, l.Item, l.Season, l.ProductCode, l.ProductName,
			l.RetailPrice, l.SalesType, l.CustomerType, l.DiscountRate,
			l.TotalQuantity, l.TotalSales, l.TotalTagPrice,
			l.NormalQuantity, l.NormalSales, l.NormalTagPrice,
			l.ReturnQuantity, l.ReturnSales, l.ReturnTagPrice,
		}
		for _, d := range dates {
			if q, ok := l.DailyQuantity[d]; ok {
				row = append(row, q)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return Sheet{Name: "report", Rows: rows}
}
