package storage

import (
	"cmp"
	"math"
	"math/big"
	"time"
)

var timeSpanTraits = &traits[time.Duration]{
	kind:      KindTimeSpan,
	isDefault: func(v time.Duration) bool { return v == 0 },
	compare:   cmp.Compare[time.Duration],
	convert:   func(v interface{}, _ *FormatProvider) (time.Duration, error) { return convertDuration(v) },
	toXML:     formatXsdDuration,
	fromXML:   parseXsdDuration,
}

type TimeSpanStorage struct {
	column[time.Duration]
}

func NewTimeSpanStorage(fp *FormatProvider) *TimeSpanStorage {
	s := &TimeSpanStorage{column: newColumn(timeSpanTraits, fp)}
	s.self = s
	return s
}

// Aggregate supports Sum, Mean, Min, Max, First, Count and StdDev.
func (s *TimeSpanStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	switch kind {
	case Sum:
		var total int64
		for _, row := range rows {
			if !s.hasValue(row) {
				continue
			}
			var ok bool
			if total, ok = addSigned(total, int64(s.values[row])); !ok {
				return nil, overflowError("sum", s.kind)
			}
		}
		return time.Duration(total), nil
	case Mean:
		total := new(big.Int)
		count := 0
		for _, row := range rows {
			if s.hasValue(row) {
				total.Add(total, big.NewInt(int64(s.values[row])))
				count++
			}
		}
		if count == 0 {
			return nil, nil
		}
		return time.Duration(total.Quo(total, big.NewInt(int64(count))).Int64()), nil
	case Min:
		return s.extreme(rows, -1), nil
	case Max:
		return s.extreme(rows, 1), nil
	case First:
		return s.first(rows), nil
	case Count:
		return s.countNonNull(rows), nil
	case StdDev:
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
		return time.Duration(math.Sqrt(v)), nil
	}
	return nil, unsupported(kind, s.kind)
}
