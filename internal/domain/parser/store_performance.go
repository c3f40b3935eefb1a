package parser

// StorePerformanceLayout names the header columns of the monthly store
// performance sheet.
type StorePerformanceLayout struct {
	NameKey    string
	CurrentKey string
	PriorKey   string
}

// DefaultStorePerformanceLayout matches the 11월실적 sheet
var DefaultStorePerformanceLayout = StorePerformanceLayout{
	NameKey:    "매장명",
	CurrentKey: "25년 11월",
	PriorKey:   "24년 11월",
}

// StoreAreaLayout names the header columns of the store → area sheet
type StoreAreaLayout struct {
	NameKey string
	AreaKey string
}

// DefaultStoreAreaLayout matches the 상권구분 sheet
var DefaultStoreAreaLayout = StoreAreaLayout{
	NameKey: "매장명",
	AreaKey: "상권별",
}

// StorePerformance is one store's figure for the month against last year
type StorePerformance struct {
	StoreName  string  `json:"storeName"`
	Current    float64 `json:"current"`
	Prior      float64 `json:"prior"`
	GrowthRate int     `json:"growthRate"`
	Area       string  `json:"area,omitempty"`
}

// ParseStorePerformance reads the per-store monthly sheet. The header is the
// first row; growth follows the period-record convention.
func (p *Parser) ParseStorePerformance(rows []Row, layout StorePerformanceLayout) ([]StorePerformance, *ParseResult) {
	records, result := p.ParseRows(rows, ColumnAliases{
		FieldEntity:    {layout.NameKey},
		FieldActual:    {layout.CurrentKey},
		FieldPriorYear: {layout.PriorKey},
	}, RowOptions{})

	out := make([]StorePerformance, 0, len(records))
	for _, r := range records {
		out = append(out, StorePerformance{
			StoreName:  r.EntityName,
			Current:    roundAmount(r.Actual),
			Prior:      roundAmount(r.PriorYear),
			GrowthRate: r.GrowthRate,
		})
	}
	return out, result
}

// ParseStoreAreas reads the store → area sheet. Rows missing either value
// are skipped; a later row for the same store wins.
func (p *Parser) ParseStoreAreas(rows []Row, layout StoreAreaLayout) (map[string]string, *ParseResult) {
	result := &ParseResult{Errors: make([]ParseError, 0)}
	areas := make(map[string]string)
	if len(rows) == 0 {
		return areas, result
	}

	index := headerIndex(rows[0])
	nameCol, okName := index[layout.NameKey]
	areaCol, okArea := index[layout.AreaKey]
	if !okName || !okArea {
		result.Errors = append(result.Errors, ParseError{
			Row:     1,
			Message: "store area header not found",
		})
		return areas, result
	}

	for i := 1; i < len(rows); i++ {
		if rows[i].IsBlank() {
			continue
		}
		result.TotalRows++

		name, area := rows[i].Text(nameCol), rows[i].Text(areaCol)
		if name == "" || area == "" {
			result.SkippedRows++
			continue
		}
		areas[name] = area
		result.ParsedRows++
	}
	return areas, result
}
