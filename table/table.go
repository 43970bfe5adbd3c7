// Package table owns the row index space shared by a set of typed column
// storages.
package table

import (
	"github.com/ovlad32/colstore/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var logger = log.StandardLogger()

func SetLogger(l *log.Logger) {
	logger = l
}

var ErrColumnNotFound = errors.New("column not found")
var ErrDuplicateColumn = errors.New("duplicate column")

const minCapacity = 16

type Column struct {
	name    string
	ordinal int
	store   storage.Storage
}

func (c *Column) Name() string {
	return c.name
}

func (c *Column) Ordinal() int {
	return c.ordinal
}

func (c *Column) Kind() storage.Kind {
	return c.store.Kind()
}

func (c *Column) Storage() storage.Storage {
	return c.store
}

// Table is a set of columns with a common row count. It is not safe for
// concurrent use.
type Table struct {
	name     string
	columns  []*Column
	byName   map[string]*Column
	rowCount int
	capacity int
	format   *storage.FormatProvider
	collator storage.Collator
}

type Option func(*Table)

func WithFormat(fp *storage.FormatProvider) Option {
	return func(t *Table) {
		if fp != nil {
			t.format = fp
		}
	}
}

func WithCollation(c storage.Collator) Option {
	return func(t *Table) {
		if c != nil {
			t.collator = c
		}
	}
}

func New(name string, opts ...Option) *Table {
	t := &Table{
		name:     name,
		byName:   make(map[string]*Column),
		format:   storage.Invariant,
		collator: storage.Ordinal,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) RowCount() int {
	return t.rowCount
}

func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

func (t *Table) Column(name string) (*Column, error) {
	c, ok := t.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrColumnNotFound, "table %v: %q", t.name, name)
	}
	return c, nil
}

// AddColumn creates a storage of kind at the current capacity. Existing
// rows are null in the new column.
func (t *Table) AddColumn(name string, kind storage.Kind) (*Column, error) {
	if _, ok := t.byName[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateColumn, "table %v: %q", t.name, name)
	}
	s, err := storage.New(kind,
		storage.WithFormat(t.format),
		storage.WithCollation(t.collator),
		storage.WithCapacity(t.capacity),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "table %v: adding column %q", t.name, name)
	}
	for row := 0; row < t.rowCount; row++ {
		// a null Set never fails
		_ = s.Set(row, nil)
	}
	c := &Column{name: name, ordinal: len(t.columns), store: s}
	t.columns = append(t.columns, c)
	t.byName[name] = c
	logger.Debugf("table %v: added %v column %q", t.name, kind, name)
	return c, nil
}

func (t *Table) ensureCapacity(rows int) {
	if rows <= t.capacity {
		return
	}
	capacity := t.capacity * 2
	if capacity < minCapacity {
		capacity = minCapacity
	}
	for capacity < rows {
		capacity *= 2
	}
	for _, c := range t.columns {
		c.store.SetCapacity(capacity)
	}
	logger.Debugf("table %v: capacity %v -> %v", t.name, t.capacity, capacity)
	t.capacity = capacity
}

// NewRow appends a row holding values in column order; missing trailing
// values are null. Nothing is committed unless every value is stored.
func (t *Table) NewRow(values ...interface{}) (int, error) {
	if len(values) > len(t.columns) {
		return -1, errors.Errorf("table %v: %v values for %v columns", t.name, len(values), len(t.columns))
	}
	converted := make([]interface{}, len(t.columns))
	for i, v := range values {
		cv, err := t.columns[i].store.ConvertValue(v)
		if err != nil {
			return -1, errors.Wrapf(err, "table %v: column %q", t.name, t.columns[i].name)
		}
		converted[i] = cv
	}
	row := t.rowCount
	t.ensureCapacity(row + 1)
	for i, c := range t.columns {
		if err := c.store.Set(row, converted[i]); err != nil {
			// roll back to null, which cannot fail
			for _, done := range t.columns[:i] {
				_ = done.store.Set(row, nil)
			}
			return -1, errors.Wrapf(err, "table %v: column %q", t.name, c.name)
		}
	}
	t.rowCount++
	return row, nil
}

func (t *Table) checkRow(row int) error {
	if row < 0 || row >= t.rowCount {
		return errors.Errorf("table %v: row %v is out of range [0,%v)", t.name, row, t.rowCount)
	}
	return nil
}

func (t *Table) SetValue(row int, column string, v interface{}) error {
	c, err := t.Column(column)
	if err != nil {
		return err
	}
	if err = t.checkRow(row); err != nil {
		return err
	}
	if err = c.store.Set(row, v); err != nil {
		return errors.Wrapf(err, "table %v: column %q row %v", t.name, column, row)
	}
	return nil
}

func (t *Table) Value(row int, column string) (interface{}, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if err = t.checkRow(row); err != nil {
		return nil, err
	}
	return c.store.Get(row), nil
}

// Row returns the values of row in column order.
func (t *Table) Row(row int) ([]interface{}, error) {
	if err := t.checkRow(row); err != nil {
		return nil, err
	}
	values := make([]interface{}, len(t.columns))
	for i, c := range t.columns {
		values[i] = c.store.Get(row)
	}
	return values, nil
}

func (t *Table) allRows() []int {
	rows := make([]int, t.rowCount)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// Aggregate computes kind over rows of column; nil rows means every row.
func (t *Table) Aggregate(column string, rows []int, kind storage.AggregateKind) (interface{}, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = t.allRows()
	}
	for _, row := range rows {
		if err = t.checkRow(row); err != nil {
			return nil, err
		}
	}
	v, err := c.store.Aggregate(rows, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "table %v: column %q", t.name, column)
	}
	return v, nil
}

// SetCollation changes the string order of every String column.
func (t *Table) SetCollation(collator storage.Collator) {
	if collator == nil {
		return
	}
	t.collator = collator
	for _, c := range t.columns {
		if s, ok := c.store.(interface{ SetCollator(storage.Collator) }); ok {
			s.SetCollator(collator)
		}
	}
}

// Copy forks the table; the copy shares no state with t.
func (t *Table) Copy() (*Table, error) {
	dst := New(t.name, WithFormat(t.format), WithCollation(t.collator))
	dst.rowCount = t.rowCount
	dst.capacity = t.capacity
	for _, c := range t.columns {
		s, err := storage.New(c.Kind(),
			storage.WithFormat(t.format),
			storage.WithCollation(t.collator),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "table %v: copying column %q", t.name, c.name)
		}
		snapshot := c.store.GetEmptyStorage(t.capacity)
		for row := 0; row < t.capacity; row++ {
			c.store.CopyValue(row, snapshot, row)
		}
		if err = s.SetStorage(snapshot); err != nil {
			return nil, errors.Wrapf(err, "table %v: copying column %q", t.name, c.name)
		}
		nc := &Column{name: c.name, ordinal: c.ordinal, store: s}
		dst.columns = append(dst.columns, nc)
		dst.byName[nc.name] = nc
	}
	return dst, nil
}
