package storage

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var decimalTraits = &traits[decimal.Decimal]{
	kind:      KindDecimal,
	isDefault: func(v decimal.Decimal) bool { return v.IsZero() },
	compare:   func(a, b decimal.Decimal) int { return a.Cmp(b) },
	convert:   convertDecimal,
	toXML:     func(v decimal.Decimal) string { return v.String() },
	fromXML: func(s string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Zero, errors.Wrapf(ErrConversion, "%q is not an xml decimal", s)
		}
		return d, nil
	},
}

type DecimalStorage struct {
	column[decimal.Decimal]
}

func NewDecimalStorage(fp *FormatProvider) *DecimalStorage {
	s := &DecimalStorage{column: newColumn(decimalTraits, fp)}
	s.self = s
	return s
}

// Aggregate supports every aggregate kind; Var and StdDev go through
// float64.
func (s *DecimalStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	switch kind {
	case Sum, Mean:
		total := decimal.Zero
		count := 0
		for _, row := range rows {
			if s.hasValue(row) {
				total = total.Add(s.values[row])
				count++
			}
		}
		if kind == Sum {
			return total, nil
		}
		if count == 0 {
			return nil, nil
		}
		return total.Div(decimal.New(int64(count), 0)), nil
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
			f, _ := s.values[row].Float64()
			sum += f
			squares += f * f
			count++
		}
		v, ok := variance(count, sum, squares)
		if !ok {
			return nil, nil
		}
		if kind == StdDev {
			v = math.Sqrt(v)
		}
		return decimal.NewFromFloat(v), nil
	}
	return nil, unsupported(kind, s.kind)
}
