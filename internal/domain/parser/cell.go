package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cell is one spreadsheet cell. Text is always the raw cell string; Number is
// set when the source typed the cell as numeric.
type Cell struct {
	Text     string
	Number   float64
	IsNumber bool
}

// TextCell builds an untyped cell
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NumberCell builds a numeric cell
func NumberCell(v float64) Cell {
	return Cell{Text: strconv.FormatFloat(v, 'f', -1, 64), Number: v, IsNumber: true}
}

// String returns the trimmed cell text
func (c Cell) String() string {
	return strings.TrimSpace(c.Text)
}

// IsEmpty reports whether the cell holds nothing
func (c Cell) IsEmpty() bool {
	return !c.IsNumber && c.String() == ""
}

// Row is an ordered sequence of cells indexed by column position
type Row []Cell

// At returns the cell at col, or an empty cell past the end of a ragged row
func (r Row) At(col int) Cell {
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// Text returns the trimmed text at col
func (r Row) Text(col int) string {
	return r.At(col).String()
}

// IsBlank reports whether every cell in the row is empty
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// TextRow is a convenience for building rows from literals
func TextRow(values ...any) Row {
	row := make(Row, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			row[i] = Cell{}
		case string:
			row[i] = TextCell(x)
		case int:
			row[i] = NumberCell(float64(x))
		case int64:
			row[i] = NumberCell(float64(x))
		case float64:
			row[i] = NumberCell(x)
		case Cell:
			row[i] = x
		default:
			row[i] = TextCell(fmt.Sprint(x))
		}
	}
	return row
}

var numberStripper = strings.NewReplacer(
	",", "",
	"₩", "",
	"$", "",
	"€", "",
	"¥", "",
)

// ParseNumber coerces a cell to a number. Thousands separators, whitespace and
// currency glyphs are stripped. Numeric cells are returned unchanged and empty
// cells are 0. Anything else that does not parse yields 0 and ok=false.
func ParseNumber(c Cell) (float64, bool) {
	if c.IsNumber {
		return c.Number, true
	}

	s := strings.Join(strings.Fields(numberStripper.Replace(c.Text)), "")
	if s == "" {
		return 0, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
