package storage

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

var bigIntegerTraits = &traits[*big.Int]{
	kind:      KindBigInteger,
	isDefault: func(v *big.Int) bool { return v == nil || v.Sign() == 0 },
	compare: func(a, b *big.Int) int {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -b.Sign()
		case b == nil:
			return a.Sign()
		}
		return a.Cmp(b)
	},
	convert: convertBigInt,
	toXML:   (*big.Int).String,
	fromXML: func(s string) (*big.Int, error) {
		v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return nil, errors.Wrapf(ErrConversion, "%q is not an xml integer", s)
		}
		return v, nil
	},
	// an untouched row holds nil and reads as zero
	clone: func(v *big.Int) *big.Int {
		if v == nil {
			return new(big.Int)
		}
		return new(big.Int).Set(v)
	},
}

// BigIntegerStorage stores arbitrary precision integers. Values are copied
// on the way in and out.
type BigIntegerStorage struct {
	column[*big.Int]
}

func NewBigIntegerStorage(fp *FormatProvider) *BigIntegerStorage {
	s := &BigIntegerStorage{column: newColumn(bigIntegerTraits, fp)}
	s.self = s
	return s
}

// Aggregate supports Count only.
func (s *BigIntegerStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	if kind == Count {
		return s.countNonNull(rows), nil
	}
	return nil, unsupported(kind, s.kind)
}
