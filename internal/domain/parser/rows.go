package parser

import (
	"strings"
)

// Field names a SalesRecord field that a row-oriented sheet can populate
type Field string

const (
	FieldEntity      Field = "entity"
	FieldPeriod      Field = "period"
	FieldTarget      Field = "target"
	FieldActual      Field = "actual"
	FieldPriorYear   Field = "priorYear"
	FieldQuantity    Field = "quantity"
	FieldItem        Field = "item"
	FieldSeason      Field = "season"
	FieldProductCode Field = "productCode"
	FieldProductName Field = "productName"
	FieldStoreCode   Field = "storeCode"
)

// ColumnAliases maps a field to header names, tried in order
type ColumnAliases map[Field][]string

// RowOptions controls the row-oriented strategy
type RowOptions struct {
	HeaderRow  int        // zero-based header row; data starts on the next row
	KeyField   Field      // rows with an empty key are dropped, default FieldEntity
	PeriodKind PeriodKind // when set, the period field is canonicalized and required
}

// ParseRows parses a sheet where each row after the header is one record.
// Each field takes the first non-empty value among its aliases.
func (p *Parser) ParseRows(rows []Row, aliases ColumnAliases, opts RowOptions) ([]SalesRecord, *ParseResult) {
	result := &ParseResult{Errors: make([]ParseError, 0)}
	if opts.KeyField == "" {
		opts.KeyField = FieldEntity
	}
	if opts.HeaderRow >= len(rows) {
		return nil, result
	}

	columns := resolveColumns(rows[opts.HeaderRow], aliases)
	records := make([]SalesRecord, 0, len(rows)-opts.HeaderRow-1)

	for i := opts.HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]
		if row.IsBlank() {
			continue
		}
		result.TotalRows++

		text := func(f Field) string {
			for _, col := range columns[f] {
				if v := row.Text(col); v != "" {
					return v
				}
			}
			return ""
		}
		num := func(f Field) float64 {
			for _, col := range columns[f] {
				if c := row.At(col); !c.IsEmpty() {
					return p.number(result, i, col, c)
				}
			}
			return 0
		}

		if text(opts.KeyField) == "" {
			result.SkippedRows++
			continue
		}

		rec := SalesRecord{
			EntityName:  text(FieldEntity),
			Target:      num(FieldTarget),
			Actual:      num(FieldActual),
			PriorYear:   num(FieldPriorYear),
			Quantity:    num(FieldQuantity),
			Item:        text(FieldItem),
			Season:      text(FieldSeason),
			ProductCode: text(FieldProductCode),
			ProductName: text(FieldProductName),
			StoreCode:   text(FieldStoreCode),
		}

		if opts.PeriodKind != PeriodNone {
			period, ok := CanonicalPeriod(text(FieldPeriod), opts.PeriodKind)
			if !ok {
				result.SkippedRows++
				result.Errors = append(result.Errors, ParseError{
					Row:     i + 1,
					Column:  string(FieldPeriod),
					Message: "unrecognized period",
					RawData: text(FieldPeriod),
				})
				continue
			}
			rec.Period = period
		}
		rec.GrowthRate = growth(rec.Actual, rec.PriorYear)

		records = append(records, rec)
		result.ParsedRows++
	}

	return records, result
}

// resolveColumns maps each field to the column indices of its aliases,
// preserving alias order. Header matching ignores surrounding whitespace.
func resolveColumns(header Row, aliases ColumnAliases) map[Field][]int {
	index := headerIndex(header)
	columns := make(map[Field][]int, len(aliases))
	for field, names := range aliases {
		for _, name := range names {
			if col, ok := index[strings.TrimSpace(name)]; ok {
				columns[field] = append(columns[field], col)
			}
		}
	}
	return columns
}

// headerIndex maps trimmed header text to its first column
func headerIndex(header Row) map[string]int {
	index := make(map[string]int, len(header))
	for col := range header {
		name := header.Text(col)
		if name == "" {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = col
		}
	}
	return index
}
