package table

import (
	"context"
	"database/sql"

	"github.com/ovlad32/colstore/sources"
	"github.com/pkg/errors"
)

// Loader appends streamed rows to a table. Fields map to columns by
// position; fields beyond the last column are an error.
type Loader struct {
	t           *Table
	normalizers []sources.Normalizer
	values      []interface{}
	loaded      int
}

func NewLoader(t *Table) *Loader {
	return &Loader{t: t}
}

// Normalize sets the normalizer applied to the fields of column.
func (l *Loader) Normalize(column string, n sources.Normalizer) error {
	c, err := l.t.Column(column)
	if err != nil {
		return err
	}
	if len(l.normalizers) < len(l.t.columns) {
		grown := make([]sources.Normalizer, len(l.t.columns))
		copy(grown, l.normalizers)
		l.normalizers = grown
	}
	l.normalizers[c.ordinal] = n
	return nil
}

func (l *Loader) Handle(_ context.Context, rowNumber int, fields []sql.NullString) error {
	if len(fields) > len(l.t.columns) {
		return errors.Errorf("table %v: row #%v has %v fields for %v columns",
			l.t.name, rowNumber, len(fields), len(l.t.columns))
	}
	l.values = l.values[:0]
	for i, f := range fields {
		if i < len(l.normalizers) && l.normalizers[i] != nil {
			f = l.normalizers[i].Normalize(f)
		}
		if !f.Valid {
			l.values = append(l.values, nil)
			continue
		}
		l.values = append(l.values, f.String)
	}
	if _, err := l.t.NewRow(l.values...); err != nil {
		return errors.Wrapf(err, "row #%v", rowNumber)
	}
	l.loaded++
	return nil
}

// Loaded is the number of rows appended so far.
func (l *Loader) Loaded() int {
	return l.loaded
}
