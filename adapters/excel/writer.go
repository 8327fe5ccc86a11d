package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"godesign/domain/table"
	apperrors "godesign/internal/errors"
	"godesign/ports"

	"github.com/xuri/excelize/v2"
)

// DataWriter saves drawn tables as xlsx or csv, chosen by file extension.
type DataWriter struct {
	sheet string
}

var _ ports.TableWriter = (*DataWriter)(nil)

// NewDataWriter creates a writer. An empty sheet means DefaultSheet.
func NewDataWriter(sheet string) *DataWriter {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &DataWriter{sheet: sheet}
}

// WriteTable writes a header row then one row per table row. The index is
// written as the first column, named IndexColumn.
func (w *DataWriter) WriteTable(ctx context.Context, t *table.Table, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.Wrap(err, "failed to create output directory")
		}
	}

	switch fileType(path) {
	case "csv":
		return writeCSV(t, path)
	case "xlsx":
		return w.writeExcel(t, path)
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unsupported table file type: %s", filepath.Ext(path)))
	}
}

func header(t *table.Table) []string {
	return append([]string{IndexColumn}, t.Columns()...)
}

func writeCSV(t *table.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()
	return WriteCSV(file, t)
}

// WriteCSV writes t as CSV to w, index first.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(t)); err != nil {
		return apperrors.Wrap(err, "failed to write CSV header")
	}
	names := t.Columns()
	for i, label := range t.Index() {
		record := make([]string, 0, len(names)+1)
		record = append(record, fmt.Sprint(label))
		for _, name := range names {
			record = append(record, table.FormatValue(t.Value(name, i)))
		}
		if err := cw.Write(record); err != nil {
			return apperrors.Wrap(err, "failed to write CSV row")
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *DataWriter) writeExcel(t *table.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if w.sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, w.sheet); err != nil {
			return apperrors.Wrap(err, "failed to name sheet")
		}
	}

	head := header(t)
	row := make([]any, len(head))
	for i, h := range head {
		row[i] = h
	}
	if err := f.SetSheetRow(w.sheet, "A1", &row); err != nil {
		return apperrors.Wrap(err, "failed to write header row")
	}

	names := t.Columns()
	for i, label := range t.Index() {
		row := make([]any, 0, len(names)+1)
		row = append(row, label)
		for _, name := range names {
			row = append(row, t.Value(name, i))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(w.sheet, cell, &row); err != nil {
			return apperrors.Wrapf(err, "failed to write row %d", i)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.Wrap(err, "failed to save Excel file")
	}
	return nil
}
