package storage

import (
	"io"

	"github.com/ovlad32/colstore/misc/serde"
	"github.com/pkg/errors"
)

// writeStorage writes the kind, the capacity, the null rows and then the
// row number and xml text of every non-null row.
func writeStorage(w io.Writer, s Storage) (total int64, err error) {
	write := func(n int64, e error) error {
		total += n
		return e
	}
	capacity := s.Capacity()
	if err = write(serde.IntWriteTo(w, int64(s.Kind()))); err != nil {
		err = errors.Wrap(err, "writing storage kind")
		return
	}
	nulls := NewNullBits(capacity)
	for row := 0; row < capacity; row++ {
		if s.IsNull(row) {
			nulls.Set(row, true)
		}
	}
	if err = write(nulls.WriteTo(w)); err != nil {
		err = errors.Wrapf(err, "writing %v null rows", s.Kind())
		return
	}
	if err = write(serde.IntWriteTo(w, int64(capacity-nulls.Count()))); err != nil {
		err = errors.Wrap(err, "writing value count")
		return
	}
	for row := 0; row < capacity; row++ {
		if nulls.Get(row) {
			continue
		}
		var text string
		text, err = s.ConvertObjectToXml(s.Get(row))
		if err != nil {
			err = errors.Wrapf(err, "converting %v row %v", s.Kind(), row)
			return
		}
		if err = write(serde.IntWriteTo(w, int64(row))); err != nil {
			err = errors.Wrapf(err, "writing row number %v", row)
			return
		}
		if err = write(serde.StringWriteTo(w, text)); err != nil {
			err = errors.Wrapf(err, "writing %v row %v", s.Kind(), row)
			return
		}
	}
	return
}

// readStorage replaces the content of s with a stream written by
// writeStorage. On error s is left as it was.
func readStorage(r io.Reader, s Storage) (total int64, err error) {
	read := func(n int64, e error) error {
		total += n
		return e
	}
	var kind int64
	if err = read(serde.IntReadFrom(&kind, r)); err != nil {
		err = errors.Wrap(err, "reading storage kind")
		return
	}
	if Kind(kind) != s.Kind() {
		err = errors.Wrapf(ErrSnapshotKind, "cannot read %v data into %v storage", Kind(kind), s.Kind())
		return
	}
	nulls := NewNullBits(0)
	if err = read(nulls.ReadFrom(r)); err != nil {
		err = errors.Wrapf(err, "reading %v null rows", s.Kind())
		return
	}
	var count int64
	if err = read(serde.IntReadFrom(&count, r)); err != nil {
		err = errors.Wrap(err, "reading value count")
		return
	}
	capacity := nulls.Capacity()
	if count < 0 || count > int64(capacity) {
		err = errors.Errorf("got %v values for capacity %v", count, capacity)
		return
	}
	// decode into scratch so s keeps its content when the stream is bad
	scratch, err := New(s.Kind(), WithCapacity(capacity))
	if err != nil {
		return
	}
	for row := 0; row < capacity; row++ {
		if nulls.Get(row) {
			// null never fails conversion or validation
			_ = scratch.Set(row, nil)
		}
	}
	for i := int64(0); i < count; i++ {
		var row int64
		var text string
		if err = read(serde.IntReadFrom(&row, r)); err != nil {
			err = errors.Wrapf(err, "reading row number #%v", i)
			return
		}
		if row < 0 || row >= int64(capacity) || nulls.Get(int(row)) {
			err = errors.Errorf("unexpected value for row %v", row)
			return
		}
		if err = read(serde.StringReadFrom(&text, r)); err != nil {
			err = errors.Wrapf(err, "reading %v row %v", s.Kind(), row)
			return
		}
		var v interface{}
		if v, err = scratch.ConvertXmlToObject(text); err != nil {
			err = errors.Wrapf(err, "converting %v row %v", s.Kind(), row)
			return
		}
		if err = scratch.Set(int(row), v); err != nil {
			err = errors.Wrapf(err, "restoring %v row %v", s.Kind(), row)
			return
		}
	}
	snapshot := scratch.GetEmptyStorage(capacity)
	for row := 0; row < capacity; row++ {
		scratch.CopyValue(row, snapshot, row)
	}
	err = s.SetStorage(snapshot)
	return
}
