package storage

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

var dateTimeTraits = &traits[time.Time]{
	kind:      KindDateTime,
	isDefault: time.Time.IsZero,
	compare:   compareTime,
	convert: func(v interface{}, _ *FormatProvider) (time.Time, error) {
		return convertTime(v, KindDateTime)
	},
	toXML: func(v time.Time) string { return v.Format(time.RFC3339Nano) },
	fromXML: func(s string) (time.Time, error) {
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, errors.Wrapf(ErrConversion, "%q is not an xml dateTime", s)
		}
		return t, nil
	},
}

// DateTimeStorage orders values by instant.
type DateTimeStorage struct {
	column[time.Time]
}

func NewDateTimeStorage(fp *FormatProvider) *DateTimeStorage {
	s := &DateTimeStorage{column: newColumn(dateTimeTraits, fp)}
	s.self = s
	return s
}

func (s *DateTimeStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	switch kind {
	case Min:
		return s.extreme(rows, -1), nil
	case Max:
		return s.extreme(rows, 1), nil
	case First:
		return s.first(rows), nil
	case Count:
		return s.countNonNull(rows), nil
	}
	return nil, unsupported(kind, s.kind)
}
