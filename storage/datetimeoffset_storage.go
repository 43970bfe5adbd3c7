package storage

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

var dateTimeOffsetTraits = &traits[time.Time]{
	kind:      KindDateTimeOffset,
	isDefault: time.Time.IsZero,
	compare:   compareTime,
	convert: func(v interface{}, _ *FormatProvider) (time.Time, error) {
		return convertTime(v, KindDateTimeOffset)
	},
	toXML: func(v time.Time) string { return v.Format(OffsetLayout) },
	fromXML: func(s string) (time.Time, error) {
		t, err := time.Parse(OffsetLayout, strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, errors.Wrapf(ErrConversion, "%q is not an xml dateTimeOffset", s)
		}
		return t, nil
	},
}

// DateTimeOffsetStorage keeps each value's zone offset and orders values
// by instant.
type DateTimeOffsetStorage struct {
	column[time.Time]
}

func NewDateTimeOffsetStorage(fp *FormatProvider) *DateTimeOffsetStorage {
	s := &DateTimeOffsetStorage{column: newColumn(dateTimeOffsetTraits, fp)}
	s.self = s
	return s
}

func (s *DateTimeOffsetStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	switch kind {
	case Min:
		return s.extreme(rows, -1), nil
	case Max:
		return s.extreme(rows, 1), nil
	case First:
		return s.first(rows), nil
	case Count:
		count := 0
		for _, row := range rows {
			if s.hasValue(row) {
				count++
			}
		}
		return count, nil
	}
	return nil, unsupported(kind, s.kind)
}
