package aggregation

import (
	"math"
	"sort"
)

// DailyTotal is the sales of one day across every line
type DailyTotal struct {
	Date         string  `json:"date" csv:"date"`
	Sales        float64 `json:"sales" csv:"sales"`
	Quantity     float64 `json:"quantity" csv:"quantity"`
	Transactions int     `json:"transactions" csv:"transactions"` // lines with a sale that day
}

// DailyTotals splits each line's sales across its days in proportion to
// the quantity sold each day.
func DailyTotals(lines []Line) []DailyTotal {
	byDate := make(map[string]*DailyTotal)
	for _, l := range lines {
		var unit float64
		if l.TotalQuantity != 0 {
			unit = l.TotalSales / l.TotalQuantity
		}
		for d, q := range l.DailyQuantity {
			t, ok := byDate[d]
			if !ok {
				t = &DailyTotal{Date: d}
				byDate[d] = t
			}
			t.Quantity += q
			t.Sales += unit * q
			t.Transactions++
		}
	}

	out := make([]DailyTotal, 0, len(byDate))
	for _, t := range byDate {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Summary holds the headline figures of a set of lines. Ratios are nil when
// their denominator is zero.
type Summary struct {
	TotalSales    float64  `json:"totalSales"`
	TotalQuantity float64  `json:"totalQuantity"`
	AveragePrice  *float64 `json:"averagePrice"`
	ReturnRate    *float64 `json:"returnRate"` // percent of sales
	StoreCount    int      `json:"storeCount"`
	ProductCount  int      `json:"productCount"`
}

// Summarize totals lines
func Summarize(lines []Line) Summary {
	var s Summary
	var returns float64
	stores := make(map[string]struct{})
	products := make(map[string]struct{})

	for _, l := range lines {
		s.TotalSales += l.TotalSales
		s.TotalQuantity += l.TotalQuantity
		returns += math.Abs(l.ReturnSales)
		stores[l.StoreCode] = struct{}{}
		products[l.ProductCode] = struct{}{}
	}

	s.StoreCount = len(stores)
	s.ProductCount = len(products)

	if s.TotalQuantity != 0 {
		v := s.TotalSales / s.TotalQuantity
		s.AveragePrice = &v
	}
	if s.TotalSales != 0 {
		v := returns / s.TotalSales * 100
		s.ReturnRate = &v
	}
	return s
}
