package profile

import (
	"hash/fnv"
	"io"
	"sync"

	hll "github.com/clarkduvall/hyperloglog"
	"github.com/ovlad32/colstore/misc/serde"
	"github.com/pkg/errors"
)

const Precision = uint8(14)

// Cardinality estimates the number of distinct values per column.
type Cardinality struct {
	precision   uint8
	onceInit    sync.Once
	columnState map[string]*hll.HyperLogLogPlus
}

func NewCardinality() *Cardinality {
	return &Cardinality{}
}

func (s *Cardinality) init() {
	s.precision = Precision
	s.columnState = make(map[string]*hll.HyperLogLogPlus)
}

func (s *Cardinality) Add(column string, value string) (err error) {
	s.onceInit.Do(s.init)
	state, found := s.columnState[column]
	if !found {
		state, err = hll.NewPlus(s.precision)
		if err != nil {
			err = errors.WithStack(err)
			return
		}
		s.columnState[column] = state
	}
	h := fnv.New64()
	if _, err = h.Write([]byte(value)); err != nil {
		err = errors.WithStack(err)
		return
	}
	state.Add(h)
	return
}

func (s *Cardinality) Cardinality(column string) (n uint, err error) {
	state, found := s.columnState[column]
	if !found {
		err = errors.Errorf("no distinct value state registered for column %v", column)
		return
	}
	return uint(state.Count()), nil
}

func (s *Cardinality) Cardinalities(consume func(string, uint) error) error {
	for _, column := range sortedKeys(s.columnState) {
		if err := consume(column, uint(s.columnState[column].Count())); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (s *Cardinality) WriteTo(w io.Writer) (total int64, err error) {
	s.onceInit.Do(s.init)
	var n64 int64
	total, err = serde.IntWriteTo(w, int64(len(s.columnState)))
	if err != nil {
		err = errors.Wrap(err, "# of entries")
		return
	}
	n64, err = serde.IntWriteTo(w, int64(s.precision))
	total += n64
	if err != nil {
		err = errors.Wrap(err, "precision")
		return
	}
	for _, column := range sortedKeys(s.columnState) {
		n64, err = serde.StringWriteTo(w, column)
		total += n64
		if err != nil {
			err = errors.Wrapf(err, "entry key = column %v", column)
			return
		}
		b, erre := s.columnState[column].GobEncode()
		if erre != nil {
			err = errors.Wrapf(erre, "entry value of %v: state.GobEncode", column)
			return
		}
		n64, err = serde.BytesWriteTo(w, b)
		total += n64
		if err != nil {
			err = errors.Wrapf(err, "entry value of %v: state.data", column)
			return
		}
	}
	return
}

func (s *Cardinality) ReadFrom(r io.Reader) (total int64, err error) {
	var mLen, precision, n64 int64
	s.onceInit.Do(s.init)
	total, err = serde.IntReadFrom(&mLen, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't read storage map length")
		return
	}
	n64, err = serde.IntReadFrom(&precision, r)
	total += n64
	if err != nil {
		err = errors.Wrap(err, "couldn't read storage precision")
		return
	}
	s.precision = uint8(precision)
	for i := int64(0); i < mLen; i++ {
		var column string
		n64, err = serde.StringReadFrom(&column, r)
		total += n64
		if err != nil {
			err = errors.Wrap(err, "couldn't read storage map key")
			return
		}
		var b []byte
		n64, err = serde.BytesReadFrom(&b, r)
		total += n64
		if err != nil {
			err = errors.Wrapf(err, "couldn't read state data of %v", column)
			return
		}
		var state *hll.HyperLogLogPlus
		state, err = hll.NewPlus(s.precision)
		if err != nil {
			err = errors.Wrap(err, "couldn't initialize hll state")
			return
		}
		if err = state.GobDecode(b); err != nil {
			err = errors.Wrapf(err, "couldn't decode state of %v", column)
			return
		}
		s.columnState[column] = state
	}
	return
}
