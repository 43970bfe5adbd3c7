package profile

import (
	"io"

	"github.com/RoaringBitmap/roaring"
	"github.com/ovlad32/colstore/misc/serde"
	"github.com/pkg/errors"
)

// ValueIndex maps the canonical text of each non-null value to the rows of
// every column holding it.
type ValueIndex struct {
	mem map[string]map[string]*roaring.Bitmap
}

func NewValueIndex() *ValueIndex {
	return &ValueIndex{mem: make(map[string]map[string]*roaring.Bitmap)}
}

func (s *ValueIndex) Add(column, value string, row int) {
	rcs, found := s.mem[value]
	if !found {
		rcs = make(map[string]*roaring.Bitmap)
		s.mem[value] = rcs
	}
	rows, found := rcs[column]
	if !found {
		rows = roaring.NewBitmap()
		rcs[column] = rows
	}
	rows.AddInt(row)
}

// Len is the number of distinct values over all columns.
func (s *ValueIndex) Len() int {
	return len(s.mem)
}

// Columns lists the columns holding value, sorted.
func (s *ValueIndex) Columns(value string) []string {
	return sortedKeys(s.mem[value])
}

// Rows lists in order the rows of column holding value.
func (s *ValueIndex) Rows(column, value string) []int {
	rows, found := s.mem[value][column]
	if !found {
		return nil
	}
	res := make([]int, 0, rows.GetCardinality())
	it := rows.Iterator()
	for it.HasNext() {
		res = append(res, int(it.Next()))
	}
	return res
}

func (s *ValueIndex) WriteTo(w io.Writer) (total int64, err error) {
	write := func(n int64, e error) error {
		total += n
		return e
	}
	if err = write(serde.IntWriteTo(w, int64(len(s.mem)))); err != nil {
		err = errors.Wrap(err, "couldn't write value index capacity")
		return
	}
	values := sortedKeys(s.mem)
	for _, value := range values {
		rcs := s.mem[value]
		if err = write(serde.StringWriteTo(w, value)); err != nil {
			err = errors.Wrapf(err, "couldn't write a value index key %v", value)
			return
		}
		if err = write(serde.IntWriteTo(w, int64(len(rcs)))); err != nil {
			err = errors.Wrapf(err, "couldn't write column count of %v", value)
			return
		}
		for _, column := range sortedKeys(rcs) {
			if err = write(serde.StringWriteTo(w, column)); err != nil {
				err = errors.Wrap(err, "could not serialize column identifier")
				return
			}
			var data []byte
			if data, err = rcs[column].ToBytes(); err != nil {
				err = errors.Wrapf(err, "encoding rows of %v in %v", value, column)
				return
			}
			if err = write(serde.BytesWriteTo(w, data)); err != nil {
				err = errors.Wrapf(err, "couldn't serialize rows of %v in %v", value, column)
				return
			}
		}
	}
	return
}

func (s *ValueIndex) ReadFrom(r io.Reader) (total int64, err error) {
	read := func(n int64, e error) error {
		total += n
		return e
	}
	var count int64
	if err = read(serde.IntReadFrom(&count, r)); err != nil {
		err = errors.Wrap(err, "couldn't deserialize the value index capacity")
		return
	}
	mem := make(map[string]map[string]*roaring.Bitmap, count)
	for i := int64(0); i < count; i++ {
		var value string
		var columns int64
		if err = read(serde.StringReadFrom(&value, r)); err != nil {
			err = errors.Wrap(err, "couldn't deserialize value index key")
			return
		}
		if err = read(serde.IntReadFrom(&columns, r)); err != nil {
			err = errors.Wrapf(err, "couldn't deserialize column count of %v", value)
			return
		}
		rcs := make(map[string]*roaring.Bitmap, columns)
		for j := int64(0); j < columns; j++ {
			var column string
			var data []byte
			if err = read(serde.StringReadFrom(&column, r)); err != nil {
				err = errors.Wrap(err, "couldn't deserialize column identifier")
				return
			}
			if err = read(serde.BytesReadFrom(&data, r)); err != nil {
				err = errors.Wrapf(err, "couldn't deserialize rows of %v in %v", value, column)
				return
			}
			rows := roaring.NewBitmap()
			if err = rows.UnmarshalBinary(data); err != nil {
				err = errors.Wrapf(err, "decoding rows of %v in %v", value, column)
				return
			}
			rcs[column] = rows
		}
		mem[value] = rcs
	}
	s.mem = mem
	return
}

type ValueIndexStrategy struct {
	index *ValueIndex
}

func NewValueIndexStrategy(s *ValueIndex) *ValueIndexStrategy {
	return &ValueIndexStrategy{index: s}
}

func (s *ValueIndexStrategy) Collect(column string, row int, text string, null bool) error {
	if !null {
		s.index.Add(column, text, row)
	}
	return nil
}
