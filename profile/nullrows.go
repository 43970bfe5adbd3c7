package profile

import (
	"io"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/ovlad32/colstore/misc/serde"
	"github.com/pkg/errors"
)

// NullRows keeps the null rows of each column.
type NullRows struct {
	onceInit    sync.Once
	columnState map[string]*roaring.Bitmap
}

func NewNullRows() *NullRows {
	return &NullRows{}
}

func (s *NullRows) init() {
	s.columnState = make(map[string]*roaring.Bitmap)
}

func (s *NullRows) Add(column string, row int) {
	s.onceInit.Do(s.init)
	state, found := s.columnState[column]
	if !found {
		state = roaring.NewBitmap()
		s.columnState[column] = state
	}
	state.AddInt(row)
}

// AddBitmap merges a set of null rows into column.
func (s *NullRows) AddBitmap(column string, rows *roaring.Bitmap) {
	s.onceInit.Do(s.init)
	if state, found := s.columnState[column]; found {
		state.Or(rows)
		return
	}
	s.columnState[column] = rows.Clone()
}

func (s *NullRows) Contains(column string, row int) bool {
	state, found := s.columnState[column]
	return found && state.ContainsInt(row)
}

// Row lists the columns that are null in row.
func (s *NullRows) Row(row int) map[string]bool {
	res := make(map[string]bool)
	for column, state := range s.columnState {
		if state.ContainsInt(row) {
			res[column] = true
		}
	}
	return res
}

func (s *NullRows) Count(column string) uint {
	if state, found := s.columnState[column]; found {
		return uint(state.GetCardinality())
	}
	return 0
}

func (s *NullRows) Counts(consume func(string, uint) error) error {
	for _, column := range sortedKeys(s.columnState) {
		if err := consume(column, uint(s.columnState[column].GetCardinality())); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (s *NullRows) WriteTo(w io.Writer) (total int64, err error) {
	var n64 int64
	total, err = serde.IntWriteTo(w, int64(len(s.columnState)))
	if err != nil {
		err = errors.Wrap(err, "# of entries")
		return
	}
	for _, column := range sortedKeys(s.columnState) {
		n64, err = serde.StringWriteTo(w, column)
		total += n64
		if err != nil {
			err = errors.Wrapf(err, "entry key = column %v", column)
			return
		}
		var data []byte
		data, err = s.columnState[column].ToBytes()
		if err != nil {
			err = errors.Wrapf(err, "encoding null rows of %v", column)
			return
		}
		n64, err = serde.BytesWriteTo(w, data)
		total += n64
		if err != nil {
			err = errors.Wrapf(err, "entry value of %v", column)
			return
		}
	}
	return
}

func (s *NullRows) ReadFrom(r io.Reader) (total int64, err error) {
	var mLen, n64 int64
	s.onceInit.Do(s.init)
	total, err = serde.IntReadFrom(&mLen, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't read null rows map length")
		return
	}
	for i := int64(0); i < mLen; i++ {
		var column string
		n64, err = serde.StringReadFrom(&column, r)
		total += n64
		if err != nil {
			err = errors.Wrap(err, "couldn't read null rows map key")
			return
		}
		var data []byte
		n64, err = serde.BytesReadFrom(&data, r)
		total += n64
		if err != nil {
			err = errors.Wrapf(err, "couldn't read null rows of %v", column)
			return
		}
		state := roaring.NewBitmap()
		if err = state.UnmarshalBinary(data); err != nil {
			err = errors.Wrapf(err, "couldn't decode null rows of %v", column)
			return
		}
		s.columnState[column] = state
	}
	return
}
