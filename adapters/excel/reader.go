package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"godesign/domain/table"
	"godesign/internal"
	apperrors "godesign/internal/errors"
	"godesign/ports"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is read when no sheet is configured.
const DefaultSheet = "Sheet1"

// IndexColumn, when it is the first column and holds distinct integers,
// supplies the row labels instead of becoming a data column.
const IndexColumn = "index"

// DataReader loads population tables from Excel or CSV files.
type DataReader struct {
	sheet  string
	logger *internal.Logger
}

var _ ports.TableReader = (*DataReader)(nil)

// NewDataReader creates a reader for xlsx and csv files. An empty sheet
// means DefaultSheet.
func NewDataReader(sheet string) *DataReader {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &DataReader{sheet: sheet, logger: internal.DefaultLogger.With("excel")}
}

// ReadTable reads path into a table indexed 0..n-1 unless the file carries
// an IndexColumn. Cells are typed
// per column: numeric if every non-empty cell parses as a number, boolean
// if every one parses as a bool, string otherwise. Empty cells become nil.
func (r *DataReader) ReadTable(ctx context.Context, path string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NotFound(fmt.Sprintf("table file %s", path))
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch fileType(path) {
	case "csv":
		rows, err = readCSV(path)
	case "xlsx":
		rows, err = r.readExcel(path)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported table file type: %s", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("read %s (%d rows) in %.2fms", path, len(rows), float64(time.Since(start).Nanoseconds())/1e6)

	return processRows(rows)
}

func fileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return ""
	}
}

func (r *DataReader) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read sheet %q", r.sheet)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read CSV file")
	}
	return rows, nil
}

// processRows turns a header row plus data rows into typed columns.
func processRows(rows [][]string) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, apperrors.ValidationError("table file must have a header row")
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(headers))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, apperrors.ValidationError(fmt.Sprintf("column %d has an empty header", i+1))
		}
		if seen[h] {
			return nil, apperrors.ValidationError(fmt.Sprintf("duplicate column header %q", h))
		}
		seen[h] = true
		headers[i] = h
	}

	data := rows[1:]
	cols := make([]table.Column, len(headers))
	for j, h := range headers {
		raw := make([]string, len(data))
		for i, row := range data {
			if j < len(row) {
				raw[i] = strings.TrimSpace(row[j])
			}
		}
		cols[j] = table.NewColumn(h, inferColumn(raw))
	}

	index := table.RangeIndex(len(data))
	if len(cols) > 0 && cols[0].Name == IndexColumn {
		if labels, ok := indexLabels(cols[0].Values); ok {
			index = labels
			cols = cols[1:]
			for j := range cols {
				cols[j].Index = labels
			}
		}
	}

	t := table.New(index)
	if err := t.Concat(cols...); err != nil {
		return nil, err
	}
	return t, nil
}

// indexLabels accepts a column of distinct integers as row labels.
func indexLabels(values []any) ([]int, bool) {
	labels := make([]int, len(values))
	seen := make(map[int]bool, len(values))
	for i, v := range values {
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) || seen[int(f)] {
			return nil, false
		}
		labels[i] = int(f)
		seen[labels[i]] = true
	}
	return labels, true
}

// inferColumn picks one type for the whole column so formulas see
// consistent values.
func inferColumn(raw []string) []any {
	numeric, boolean := true, true
	for _, s := range raw {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			numeric = false
		}
		if _, err := strconv.ParseBool(s); err != nil {
			boolean = false
		}
	}

	values := make([]any, len(raw))
	for i, s := range raw {
		switch {
		case s == "":
			values[i] = nil
		case numeric:
			values[i], _ = strconv.ParseFloat(s, 64)
		case boolean:
			values[i], _ = strconv.ParseBool(s)
		default:
			values[i] = s
		}
	}
	return values
}
