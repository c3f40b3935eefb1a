// Package parser turns spreadsheet rows into typed sales records.
//
// Two strategies cover the sheet shapes in use: row-oriented sheets where
// each row is one record and columns are found by header alias, and
// transposed sheets where periods run across columns and each row is one
// measure. Sheets with fixed cell positions are described by layout structs
// so offsets never appear in control flow.
package parser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// SalesRecord is one line of period or transactional data
type SalesRecord struct {
	EntityName  string    `json:"entityName"`
	Period      string    `json:"period,omitempty"`
	Target      float64   `json:"target"`
	Actual      float64   `json:"actual"`
	PriorYear   float64   `json:"priorYear"`
	Quantity    float64   `json:"quantity,omitempty"`
	Item        string    `json:"item,omitempty"`
	Season      string    `json:"season,omitempty"`
	ProductCode string    `json:"productCode,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	StoreCode   string    `json:"storeCode,omitempty"`
	Date        time.Time `json:"date,omitzero"`
	GrowthRate  int       `json:"growthRate"`
}

// ParseError represents a parsing problem for a specific cell or row
type ParseError struct {
	Row     int
	Column  string
	Message string
	RawData string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// ParseResult carries the bookkeeping for a parse
type ParseResult struct {
	Errors      []ParseError
	TotalRows   int
	ParsedRows  int
	SkippedRows int
	Malformed   int
}

// Counter is incremented once per malformed cell
type Counter interface {
	Inc()
}

type noopCounter struct{}

func (noopCounter) Inc() {}

// Parser holds the collaborators shared by every parse strategy
type Parser struct {
	logger    *slog.Logger
	malformed Counter
}

// Option configures a Parser
type Option func(*Parser)

// WithMalformedCounter reports malformed cells to c
func WithMalformedCounter(c Counter) Option {
	return func(p *Parser) {
		if c != nil {
			p.malformed = c
		}
	}
}

// New creates a parser
func New(logger *slog.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{logger: logger, malformed: noopCounter{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// number coerces a cell and records malformed input against result.
// rowIdx and col are zero-based positions in the sheet.
func (p *Parser) number(result *ParseResult, rowIdx, col int, c Cell) float64 {
	v, ok := ParseNumber(c)
	if ok {
		return v
	}

	column := columnName(col)
	result.Malformed++
	result.Errors = append(result.Errors, ParseError{
		Row:     rowIdx + 1,
		Column:  column,
		Message: "malformed numeric cell, using 0",
		RawData: c.Text,
	})
	p.malformed.Inc()
	p.logger.Warn("malformed numeric cell",
		slog.Int("row", rowIdx+1),
		slog.String("column", column),
		slog.String("raw", c.Text),
	)
	return 0
}

// optionalNumber is like number but maps empty and unparsable cells to nil
func (p *Parser) optionalNumber(c Cell) *float64 {
	if c.IsEmpty() {
		return nil
	}
	v, ok := ParseNumber(c)
	if !ok {
		return nil
	}
	return &v
}

func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return fmt.Sprintf("#%d", col)
	}
	return name
}
