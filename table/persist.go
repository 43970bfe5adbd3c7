package table

import (
	"io"

	"github.com/ovlad32/colstore/misc/serde"
	"github.com/ovlad32/colstore/profile"
	"github.com/ovlad32/colstore/storage"
	"github.com/pkg/errors"
)

// WriteTo writes the table name, the row count and every column's name,
// kind and storage.
func (t *Table) WriteTo(w io.Writer) (total int64, err error) {
	write := func(n int64, e error) error {
		total += n
		return e
	}
	if err = write(serde.StringWriteTo(w, t.name)); err != nil {
		err = errors.Wrap(err, "writing table name")
		return
	}
	if err = write(serde.IntWriteTo(w, int64(t.rowCount))); err != nil {
		err = errors.Wrap(err, "writing row count")
		return
	}
	if err = write(serde.IntWriteTo(w, int64(len(t.columns)))); err != nil {
		err = errors.Wrap(err, "writing column count")
		return
	}
	for _, c := range t.columns {
		if err = write(serde.StringWriteTo(w, c.name)); err != nil {
			err = errors.Wrapf(err, "writing column name %q", c.name)
			return
		}
		if err = write(serde.IntWriteTo(w, int64(c.Kind()))); err != nil {
			err = errors.Wrapf(err, "writing column kind %q", c.name)
			return
		}
		if err = write(c.store.WriteTo(w)); err != nil {
			err = errors.Wrapf(err, "writing column %q", c.name)
			return
		}
	}
	return
}

// ReadFrom replaces the content of t with a stream written by WriteTo.
func (t *Table) ReadFrom(r io.Reader) (total int64, err error) {
	read := func(n int64, e error) error {
		total += n
		return e
	}
	var name string
	var rowCount, columnCount int64
	if err = read(serde.StringReadFrom(&name, r)); err != nil {
		err = errors.Wrap(err, "reading table name")
		return
	}
	if err = read(serde.IntReadFrom(&rowCount, r)); err != nil {
		err = errors.Wrap(err, "reading row count")
		return
	}
	if err = read(serde.IntReadFrom(&columnCount, r)); err != nil {
		err = errors.Wrap(err, "reading column count")
		return
	}
	restored := New(name, WithFormat(t.format), WithCollation(t.collator))
	for i := int64(0); i < columnCount; i++ {
		var columnName string
		var kind int64
		if err = read(serde.StringReadFrom(&columnName, r)); err != nil {
			err = errors.Wrapf(err, "reading column #%v name", i)
			return
		}
		if err = read(serde.IntReadFrom(&kind, r)); err != nil {
			err = errors.Wrapf(err, "reading column %q kind", columnName)
			return
		}
		var c *Column
		if c, err = restored.AddColumn(columnName, storage.Kind(kind)); err != nil {
			return
		}
		if err = read(c.store.ReadFrom(r)); err != nil {
			err = errors.Wrapf(err, "reading column %q", columnName)
			return
		}
		if c.store.Capacity() < int(rowCount) {
			err = errors.Errorf("column %q holds %v rows, expected %v", columnName, c.store.Capacity(), rowCount)
			return
		}
		restored.capacity = c.store.Capacity()
	}
	for _, c := range restored.columns {
		c.store.SetCapacity(restored.capacity)
	}
	restored.rowCount = int(rowCount)
	*t = *restored
	logger.Debugf("table %v: restored %v rows of %v columns", t.name, t.rowCount, len(t.columns))
	return
}

// Profile collects null counts and distinct value estimates per column.
func (t *Table) Profile() (*profile.Profile, error) {
	return t.ProfileWith(profile.NewBuilder())
}

// ProfileWith feeds every cell to b as canonical XML text and builds the
// profile from it. b can be persisted afterwards.
func (t *Table) ProfileWith(b *profile.Builder) (*profile.Profile, error) {
	columns := make([]profile.ColumnDesc, len(t.columns))
	for i, c := range t.columns {
		columns[i] = profile.ColumnDesc{Name: c.name, Kind: c.Kind()}
		for row := 0; row < t.rowCount; row++ {
			if c.store.IsNull(row) {
				if err := b.Collect(c.name, row, "", true); err != nil {
					return nil, err
				}
				continue
			}
			text, err := c.store.ConvertObjectToXml(c.store.Get(row))
			if err != nil {
				return nil, errors.Wrapf(err, "table %v: column %q row %v", t.name, c.name, row)
			}
			if err = b.Collect(c.name, row, text, false); err != nil {
				return nil, err
			}
		}
	}
	logger.Debugf("table %v: profiled %v rows", t.name, t.rowCount)
	return b.Build(t.name, t.rowCount, columns), nil
}

// Lookup returns the rows of column equal to v through idx, which must
// have been collected from t.
func (t *Table) Lookup(idx *profile.ValueIndex, column string, v interface{}) ([]int, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if storage.IsNull(v) {
		return nil, nil
	}
	cv, err := c.store.ConvertValue(v)
	if err != nil {
		return nil, errors.Wrapf(err, "table %v: column %q", t.name, column)
	}
	text, err := c.store.ConvertObjectToXml(cv)
	if err != nil {
		return nil, errors.Wrapf(err, "table %v: column %q", t.name, column)
	}
	return idx.Rows(column, text), nil
}
