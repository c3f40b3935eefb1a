package parser

import (
	"math"
	"sort"
	"time"
)

// SalesReportLayout locates the columns of the daily line-item report.
// Offsets are zero-based sheet rows and columns.
type SalesReportLayout struct {
	HeaderRow int
	FirstData int

	StoreCodeCol    int
	StoreNameCol    int
	ItemCol         int
	SeasonCol       int
	ProductCodeCol  int
	ProductNameCol  int
	RetailPriceCol  int
	SalesTypeCol    int
	CustomerTypeCol int
	DiscountRateCol int

	TotalQuantityCol  int
	TotalSalesCol     int
	TotalTagPriceCol  int
	NormalQuantityCol int
	NormalSalesCol    int
	NormalTagCol      int
	ReturnQuantityCol int
	ReturnSalesCol    int
	ReturnTagCol      int

	FirstDailyCol int // daily quantity columns, headed by an excel serial date
}

// DefaultSalesReportLayout matches the 일주월별 판매 export
var DefaultSalesReportLayout = SalesReportLayout{
	HeaderRow: 1,
	FirstData: 2,

	StoreCodeCol:    1,
	StoreNameCol:    2,
	ItemCol:         3,
	SeasonCol:       4,
	ProductCodeCol:  5,
	ProductNameCol:  6,
	RetailPriceCol:  7,
	SalesTypeCol:    8,
	CustomerTypeCol: 9,
	DiscountRateCol: 10,

	TotalQuantityCol:  11,
	TotalSalesCol:     12,
	TotalTagPriceCol:  13,
	NormalQuantityCol: 14,
	NormalSalesCol:    15,
	NormalTagCol:      16,
	ReturnQuantityCol: 17,
	ReturnSalesCol:    18,
	ReturnTagCol:      19,

	FirstDailyCol: 20,
}

// SalesLine is one store × product row of the sales report
type SalesLine struct {
	StoreCode    string  `csv:"store_code" json:"storeCode"`
	StoreName    string  `csv:"store_name" json:"storeName"`
	Item         string  `csv:"item" json:"item"`
	Season       string  `csv:"season" json:"season"`
	ProductCode  string  `csv:"product_code" json:"productCode"`
	ProductName  string  `csv:"product_name" json:"productName"`
	RetailPrice  float64 `csv:"retail_price" json:"retailPrice"`
	SalesType    string  `csv:"sales_type" json:"salesType"`
	CustomerType string  `csv:"customer_type" json:"customerType"`
	DiscountRate string  `csv:"discount_rate" json:"discountRate"`

	TotalQuantity  float64 `csv:"total_quantity" json:"totalQuantity"`
	TotalSales     float64 `csv:"total_sales" json:"totalSales"`
	TotalTagPrice  float64 `csv:"total_tag_price" json:"totalTagPrice"`
	NormalQuantity float64 `csv:"normal_quantity" json:"normalQuantity"`
	NormalSales    float64 `csv:"normal_sales" json:"normalSales"`
	NormalTagPrice float64 `csv:"normal_tag_price" json:"normalTagPrice"`
	ReturnQuantity float64 `csv:"return_quantity" json:"returnQuantity"`
	ReturnSales    float64 `csv:"return_sales" json:"returnSales"`
	ReturnTagPrice float64 `csv:"return_tag_price" json:"returnTagPrice"`

	// DailyQuantity maps an ISO date to the units sold that day. Only
	// positive quantities are kept.
	DailyQuantity map[string]float64 `csv:"-" json:"dailySales"`
}

// SalesReport is the parsed report sheet
type SalesReport struct {
	Lines []SalesLine
	Dates []string // every date column in the sheet, ascending
}

// excel serial day 25569 is 1970-01-01
const excelEpochOffset = 25569

// ExcelSerialToDate converts an excel serial day number to an ISO date
func ExcelSerialToDate(serial float64) string {
	days := math.Floor(serial - excelEpochOffset)
	return time.Unix(int64(days)*86400, 0).UTC().Format(isoDate)
}

// ParseSalesReport reads the daily line-item report. Rows without a store
// code or name are skipped.
func (p *Parser) ParseSalesReport(rows []Row, layout SalesReportLayout) (*SalesReport, *ParseResult) {
	result := &ParseResult{Errors: make([]ParseError, 0)}
	report := &SalesReport{Lines: make([]SalesLine, 0, len(rows))}

	if layout.HeaderRow >= len(rows) {
		return report, result
	}

	// Date header cells may be typed serials or, from CSV, ISO text.
	header := rows[layout.HeaderRow]
	dateCols := make(map[int]string)
	for col := layout.FirstDailyCol; col < len(header); col++ {
		c := header.At(col)
		if c.IsNumber {
			dateCols[col] = ExcelSerialToDate(c.Number)
			continue
		}
		if d, ok := CanonicalPeriod(c.String(), PeriodDate); ok {
			dateCols[col] = d
		}
	}

	for i := layout.FirstData; i < len(rows); i++ {
		row := rows[i]
		if row.IsBlank() {
			continue
		}
		result.TotalRows++

		code, name := row.Text(layout.StoreCodeCol), row.Text(layout.StoreNameCol)
		if code == "" || name == "" {
			result.SkippedRows++
			continue
		}

		num := func(col int) float64 {
			return p.number(result, i, col, row.At(col))
		}

		line := SalesLine{
			StoreCode:    code,
			StoreName:    name,
			Item:         row.Text(layout.ItemCol),
			Season:       row.Text(layout.SeasonCol),
			ProductCode:  row.Text(layout.ProductCodeCol),
			ProductName:  row.Text(layout.ProductNameCol),
			RetailPrice:  num(layout.RetailPriceCol),
			SalesType:    row.Text(layout.SalesTypeCol),
			CustomerType: row.Text(layout.CustomerTypeCol),
			DiscountRate: row.Text(layout.DiscountRateCol),

			TotalQuantity:  num(layout.TotalQuantityCol),
			TotalSales:     num(layout.TotalSalesCol),
			TotalTagPrice:  num(layout.TotalTagPriceCol),
			NormalQuantity: num(layout.NormalQuantityCol),
			NormalSales:    num(layout.NormalSalesCol),
			NormalTagPrice: num(layout.NormalTagCol),
			ReturnQuantity: num(layout.ReturnQuantityCol),
			ReturnSales:    num(layout.ReturnSalesCol),
			ReturnTagPrice: num(layout.ReturnTagCol),

			DailyQuantity: make(map[string]float64),
		}

		for col, date := range dateCols {
			c := row.At(col)
			if c.IsEmpty() {
				continue
			}
			if qty, ok := ParseNumber(c); ok && qty > 0 {
				line.DailyQuantity[date] += qty
			}
		}

		report.Lines = append(report.Lines, line)
		result.ParsedRows++
	}

	seen := make(map[string]struct{}, len(dateCols))
	for _, d := range dateCols {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		report.Dates = append(report.Dates, d)
	}
	sort.Strings(report.Dates)

	return report, result
}

// DateRange returns the first and last date with any quantity sold
func (r *SalesReport) DateRange() (start, end string, dates []string) {
	set := make(map[string]struct{})
	for _, l := range r.Lines {
		for d := range l.DailyQuantity {
			set[d] = struct{}{}
		}
	}
	dates = make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) == 0 {
		return "", "", dates
	}
	return dates[0], dates[len(dates)-1], dates
}
