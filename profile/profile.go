// Package profile collects per-column statistics: the rows holding null
// and an approximate count of distinct values.
package profile

import (
	"io"
	"sort"

	"github.com/ovlad32/colstore/storage"
	"github.com/pkg/errors"
)

// Strategy consumes one cell: the canonical text of a non-null value, or
// null.
type Strategy interface {
	Collect(column string, row int, text string, null bool) error
}

// Collector fans cells out to registered strategies.
type Collector struct {
	strategies []Strategy
}

func (c *Collector) Register(s Strategy) int {
	c.strategies = append(c.strategies, s)
	return len(c.strategies)
}

func (c *Collector) Collect(column string, row int, text string, null bool) (err error) {
	for i := range c.strategies {
		err = c.strategies[i].Collect(column, row, text, null)
		if err != nil {
			err = errors.WithStack(err)
			return
		}
	}
	return
}

type NullRowsStrategy struct {
	nulls *NullRows
}

func NewNullRowsStrategy(s *NullRows) *NullRowsStrategy {
	return &NullRowsStrategy{nulls: s}
}

func (s *NullRowsStrategy) Collect(column string, row int, _ string, null bool) error {
	if null {
		s.nulls.Add(column, row)
	}
	return nil
}

type CardinalityStrategy struct {
	cardinality *Cardinality
}

func NewCardinalityStrategy(s *Cardinality) *CardinalityStrategy {
	return &CardinalityStrategy{cardinality: s}
}

func (s *CardinalityStrategy) Collect(column string, _ int, text string, null bool) error {
	if null {
		return nil
	}
	return s.cardinality.Add(column, text)
}

type ColumnStats struct {
	Name        string
	Kind        storage.Kind
	NullCount   uint
	UniqueCount uint
}

type Profile struct {
	Table   string
	Rows    int
	Columns []ColumnStats
}

func (p *Profile) Column(name string) (ColumnStats, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Builder gathers null rows and distinct counts for a table.
type Builder struct {
	Collector
	nulls       *NullRows
	cardinality *Cardinality
}

func NewBuilder() *Builder {
	b := &Builder{
		nulls:       NewNullRows(),
		cardinality: NewCardinality(),
	}
	b.Register(NewNullRowsStrategy(b.nulls))
	b.Register(NewCardinalityStrategy(b.cardinality))
	return b
}

func (b *Builder) NullRows() *NullRows {
	return b.nulls
}

func (b *Builder) Cardinality() *Cardinality {
	return b.cardinality
}

type ColumnDesc struct {
	Name string
	Kind storage.Kind
}

// Build summarizes what was collected for columns.
func (b *Builder) Build(table string, rows int, columns []ColumnDesc) *Profile {
	p := &Profile{Table: table, Rows: rows}
	for _, c := range columns {
		stats := ColumnStats{Name: c.Name, Kind: c.Kind, NullCount: b.nulls.Count(c.Name)}
		if n, err := b.cardinality.Cardinality(c.Name); err == nil {
			stats.UniqueCount = n
		}
		p.Columns = append(p.Columns, stats)
	}
	return p
}

func (b *Builder) WriteTo(w io.Writer) (total int64, err error) {
	total, err = b.nulls.WriteTo(w)
	if err != nil {
		err = errors.Wrap(err, "writing null rows")
		return
	}
	n64, err := b.cardinality.WriteTo(w)
	total += n64
	if err != nil {
		err = errors.Wrap(err, "writing cardinalities")
	}
	return
}

func (b *Builder) ReadFrom(r io.Reader) (total int64, err error) {
	total, err = b.nulls.ReadFrom(r)
	if err != nil {
		err = errors.Wrap(err, "reading null rows")
		return
	}
	n64, err := b.cardinality.ReadFrom(r)
	total += n64
	if err != nil {
		err = errors.Wrap(err, "reading cardinalities")
	}
	return
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
