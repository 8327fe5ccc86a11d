package ports

import (
	"context"
	"time"

	"godesign/domain/core"
	"godesign/domain/table"
)

// DrawRecord is an archived draw: the request that produced it and its rows.
type DrawRecord struct {
	ID        core.DrawID  `json:"id" db:"id"`
	Design    string       `json:"design" db:"design"`
	Replicate int          `json:"replicate" db:"replicate"`
	Seed      int64        `json:"seed" db:"seed"`
	N         *int         `json:"n,omitempty" db:"n"`
	Frac      *float64     `json:"frac,omitempty" db:"frac"`
	Rows      int          `json:"rows" db:"row_count"`
	Columns   []string     `json:"columns" db:"-"`
	Table     *table.Table `json:"-" db:"-"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// DrawRepository archives draws so a dataset handed to downstream analysis
// can be recovered later.
type DrawRepository interface {
	Save(ctx context.Context, rec *DrawRecord) error
	Get(ctx context.Context, id core.DrawID) (*DrawRecord, error)
	List(ctx context.Context, design string, limit int) ([]*DrawRecord, error)
}
