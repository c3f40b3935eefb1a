// Package workbook opens spreadsheet exports and extracts their sheets as
// rows. Everything is read eagerly; no file handle outlives Open.
package workbook

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/sheet"
	"github.com/FACorreiaa/sales-dashboard/pkg/storage"
)

var (
	// ErrSourceUnavailable is returned when a workbook is missing or unreadable.
	ErrSourceUnavailable = errors.New("workbook source unavailable")
	// ErrTimeout is returned when reading a workbook exceeds the open timeout.
	ErrTimeout = errors.New("workbook read timed out")
)

// Workbook holds the extracted rows of every sheet
type Workbook struct {
	Name   string
	sheets []string
	rows   map[string][]parser.Row
}

// New builds a workbook from already-extracted rows. Sheet order is the
// order of sheets.
func New(name string, sheets []string, rows map[string][]parser.Row) *Workbook {
	if rows == nil {
		rows = make(map[string][]parser.Row)
	}
	return &Workbook{Name: name, sheets: sheets, rows: rows}
}

// SheetNames returns sheet names in workbook order
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.sheets))
	copy(out, w.sheets)
	return out
}

// Rows returns every row of a sheet, including the header
func (w *Workbook) Rows(name string) ([]parser.Row, error) {
	rows, ok := w.rows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", sheet.ErrSheetNotFound, name, w.Name)
	}
	return rows, nil
}

// Close drops the extracted rows
func (w *Workbook) Close() error {
	w.rows = nil
	return nil
}

// FromExcel extracts every sheet of an excelize file. Cells are read raw so
// dates stay as serial numbers and percentages as fractions.
func FromExcel(name string, f *excelize.File) (*Workbook, error) {
	sheets := f.GetSheetList()
	wb := New(name, sheets, make(map[string][]parser.Row, len(sheets)))

	for _, s := range sheets {
		raw, err := f.GetRows(s, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", s, err)
		}
		wb.rows[s] = toRows(raw)
	}
	return wb, nil
}

// FromCSV reads a CSV export as a single-sheet workbook named after the file
func FromCSV(name string, r io.Reader) (*Workbook, error) {
	reader := gocsv.LazyCSVReader(r)
	if cr, ok := reader.(*csv.Reader); ok {
		cr.FieldsPerRecord = -1 // ragged exports
	}

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(raw) > 0 && len(raw[0]) > 0 {
		raw[0][0] = strings.TrimPrefix(raw[0][0], "\ufeff")
	}

	sheetName := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return New(name, []string{sheetName}, map[string][]parser.Row{sheetName: toRows(raw)}), nil
}

func toRows(raw [][]string) []parser.Row {
	rows := make([]parser.Row, len(raw))
	for i, r := range raw {
		row := make(parser.Row, len(r))
		for j, v := range r {
			row[j] = cellFromRaw(v)
		}
		rows[i] = row
	}
	return rows
}

// cellFromRaw types a raw cell value as numeric when it parses as one
func cellFromRaw(s string) parser.Cell {
	t := strings.TrimSpace(s)
	if t == "" {
		return parser.TextCell(s)
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return parser.TextCell(s)
	}
	return parser.Cell{Text: s, Number: v, IsNumber: true}
}

// Opener loads workbooks from storage with a bounded read time
type Opener struct {
	storage storage.Storage
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpener creates an opener. A zero timeout disables the bound.
func NewOpener(store storage.Storage, timeout time.Duration, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{storage: store, timeout: timeout, logger: logger}
}

type openResult struct {
	wb  *Workbook
	err error
}

// Open reads the named source. When the read does not finish within the
// timeout it returns ErrTimeout and discards whatever was read.
func (o *Opener) Open(ctx context.Context, source string) (*Workbook, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan openResult, 1)
	go func() {
		wb, err := o.load(ctx, source)
		done <- openResult{wb: wb, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, o.contextError(source, ctx.Err())
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) || errors.Is(r.err, context.Canceled) {
				return nil, o.contextError(source, r.err)
			}
			o.logger.Error("failed to open workbook",
				slog.String("source", source),
				slog.Any("error", r.err),
			)
			return nil, r.err
		}
		o.logger.Debug("workbook loaded",
			slog.String("source", source),
			slog.Int("sheets", len(r.wb.sheets)),
			slog.Duration("elapsed", time.Since(start)),
		)
		return r.wb, nil
	}
}

func (o *Opener) contextError(source string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		o.logger.Warn("workbook read timed out",
			slog.String("source", source),
			slog.Duration("timeout", o.timeout),
		)
		return fmt.Errorf("%w: %s after %s", ErrTimeout, source, o.timeout)
	}
	return fmt.Errorf("failed to open %s: %w", source, err)
}

func (o *Opener) load(ctx context.Context, source string) (*Workbook, error) {
	rc, info, err := o.storage.Open(ctx, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
	}
	defer rc.Close()

	if strings.EqualFold(filepath.Ext(info.Name), ".csv") {
		wb, err := FromCSV(source, rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
		}
		return wb, nil
	}

	f, err := excelize.OpenReader(rc, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
	}
	defer f.Close()

	wb, err := FromExcel(source, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
	}
	return wb, nil
}
