// Package salestest builds realistic sales fixtures for tests: generated
// sales-report lines and on-disk workbooks.
package salestest

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
)

// Generator generates sales-report lines using gofakeit
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a fixed seed for reproducibility
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Stores is a set of store names covering every store type and several regions
var Stores = []string{
	"롯데본점",
	"현대판교",
	"신세계강남",
	"갤러리아센터시티",
	"AK수원",
	"성수(직)",
	"부산서면(대-위)",
	"무신사(제휴몰)",
	"여주(상-위)",
	"롯데면세 명동",
	"쇼피파이 온라인",
	"제주 팝업",
}

var (
	items   = []string{"TS", "SW", "PT", "JK", "CP"}
	seasons = []string{"24F", "25S", "25F"}
)

// StoreCode returns a stable code for a store in Stores
func StoreCode(i int) string {
	return fmt.Sprintf("S%03d", i+1)
}

// Line generates a single sales line for the given store
func (g *Generator) Line(storeIdx int, dates []string) parser.SalesLine {
	price := float64(g.faker.Number(19, 199)) * 1000
	daily := make(map[string]float64)
	var qty float64
	for _, d := range dates {
		if g.faker.Number(0, 2) == 0 {
			continue
		}
		n := float64(g.faker.Number(1, 5))
		daily[d] = n
		qty += n
	}

	returns := float64(g.faker.Number(0, 1))
	item := g.faker.RandomString(items)
	code := fmt.Sprintf("%s%s", item, g.faker.DigitN(4))

	return parser.SalesLine{
		StoreCode:      StoreCode(storeIdx),
		StoreName:      Stores[storeIdx],
		Item:           item,
		Season:         g.faker.RandomString(seasons),
		ProductCode:    code,
		ProductName:    g.faker.Adjective() + " " + item,
		RetailPrice:    price,
		TotalQuantity:  qty,
		TotalSales:     qty * price,
		TotalTagPrice:  qty * price,
		NormalQuantity: qty + returns,
		NormalSales:    (qty + returns) * price,
		ReturnQuantity: -returns,
		ReturnSales:    -returns * price,
		DailyQuantity:  daily,
	}
}

// Lines generates n lines spread across every store
func (g *Generator) Lines(n int, dates []string) []parser.SalesLine {
	lines := make([]parser.SalesLine, n)
	for i := range lines {
		lines[i] = g.Line(i%len(Stores), dates)
	}
	return lines
}

// Dates returns n consecutive ISO dates starting at start
func Dates(start time.Time, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i).Format("2006-01-02")
	}
	return out
}
