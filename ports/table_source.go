package ports

import (
	"context"

	"godesign/domain/table"
)

// TableReader loads a baseline table from an external source (CSV, XLSX).
type TableReader interface {
	ReadTable(ctx context.Context, path string) (*table.Table, error)
}

// TableWriter persists a drawn table to a file.
type TableWriter interface {
	WriteTable(ctx context.Context, t *table.Table, path string) error
}
