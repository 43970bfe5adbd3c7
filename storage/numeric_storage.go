package storage

import (
	"cmp"
	"math"
	"math/big"
	"strconv"

	"golang.org/x/exp/constraints"
)

// Number is the set of fixed width numeric value types.
type Number interface {
	constraints.Integer | constraints.Float
}

func numericTraits[T Number](k Kind) *traits[T] {
	bitSize := 64
	if k == KindSingle {
		bitSize = 32
	}
	return &traits[T]{
		kind:      k,
		isDefault: func(v T) bool { return v == 0 },
		compare:   cmp.Compare[T],
		convert: func(v interface{}, fp *FormatProvider) (T, error) {
			switch {
			case k.isSigned():
				i, err := convertSigned(v, k, fp)
				return T(i), err
			case k.isUnsigned():
				u, err := convertUnsigned(v, k, fp)
				return T(u), err
			}
			f, err := convertFloat(v, k, fp)
			return T(f), err
		},
		toXML: func(v T) string {
			switch {
			case k.isSigned():
				return strconv.FormatInt(int64(v), 10)
			case k.isUnsigned():
				return strconv.FormatUint(uint64(v), 10)
			}
			return formatXMLFloat(float64(v), bitSize)
		},
		fromXML: func(s string) (T, error) {
			switch {
			case k.isSigned():
				i, err := parseXMLSigned(s, k)
				return T(i), err
			case k.isUnsigned():
				u, err := parseXMLUnsigned(s, k)
				return T(u), err
			}
			f, err := parseXMLFloat(s, bitSize)
			return T(f), err
		},
	}
}

// NumericStorage stores signed, unsigned and floating point values.
type NumericStorage[T Number] struct {
	column[T]
}

func NewNumericStorage[T Number](k Kind, fp *FormatProvider) *NumericStorage[T] {
	s := &NumericStorage[T]{column: newColumn(numericTraits[T](k), fp)}
	s.self = s
	return s
}

// Aggregate supports every aggregate kind. Sum accumulates signed values in
// int64 and unsigned values in uint64; Mean is returned in the column type;
// Var and StdDev are float64.
func (s *NumericStorage[T]) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	switch kind {
	case Sum:
		return s.sum(rows)
	case Mean:
		return s.mean(rows), nil
	case Min:
		return s.extreme(rows, -1), nil
	case Max:
		return s.extreme(rows, 1), nil
	case First:
		return s.first(rows), nil
	case Count:
		return s.countNonNull(rows), nil
	case Var, StdDev:
		var sum, squares float64
		count := 0
		for _, row := range rows {
			if !s.hasValue(row) {
				continue
			}
			f := float64(s.values[row])
			sum += f
			squares += f * f
			count++
		}
		v, ok := variance(count, sum, squares)
		if !ok {
			return nil, nil
		}
		if kind == StdDev {
			return math.Sqrt(v), nil
		}
		return v, nil
	}
	return nil, unsupported(kind, s.kind)
}

func (s *NumericStorage[T]) sum(rows []int) (interface{}, error) {
	switch {
	case s.kind.isSigned():
		var total int64
		for _, row := range rows {
			if !s.hasValue(row) {
				continue
			}
			var ok bool
			if total, ok = addSigned(total, int64(s.values[row])); !ok {
				return nil, overflowError("sum", KindInt64)
			}
		}
		return total, nil
	case s.kind.isUnsigned():
		var total uint64
		for _, row := range rows {
			if !s.hasValue(row) {
				continue
			}
			var ok bool
			if total, ok = addUnsigned(total, uint64(s.values[row])); !ok {
				return nil, overflowError("sum", KindUInt64)
			}
		}
		return total, nil
	}
	var total float64
	for _, row := range rows {
		if s.hasValue(row) {
			total += float64(s.values[row])
		}
	}
	if s.kind == KindSingle {
		return float32(total), nil
	}
	return total, nil
}

func (s *NumericStorage[T]) mean(rows []int) interface{} {
	count := 0
	if s.kind.isFloat() {
		var total float64
		for _, row := range rows {
			if s.hasValue(row) {
				total += float64(s.values[row])
				count++
			}
		}
		if count == 0 {
			return nil
		}
		return T(total / float64(count))
	}
	total, term := new(big.Int), new(big.Int)
	for _, row := range rows {
		if !s.hasValue(row) {
			continue
		}
		if s.kind.isSigned() {
			term.SetInt64(int64(s.values[row]))
		} else {
			term.SetUint64(uint64(s.values[row]))
		}
		total.Add(total, term)
		count++
	}
	if count == 0 {
		return nil
	}
	total.Quo(total, big.NewInt(int64(count)))
	if s.kind.isSigned() {
		return T(total.Int64())
	}
	return T(total.Uint64())
}
