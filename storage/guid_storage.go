package storage

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var guidTraits = &traits[uuid.UUID]{
	kind:      KindGuid,
	isDefault: func(v uuid.UUID) bool { return v == uuid.Nil },
	compare:   func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) },
	convert:   func(v interface{}, _ *FormatProvider) (uuid.UUID, error) { return convertUUID(v) },
	toXML:     uuid.UUID.String,
	fromXML: func(s string) (uuid.UUID, error) {
		u, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return uuid.Nil, errors.Wrapf(ErrConversion, "%q is not an xml guid", s)
		}
		return u, nil
	},
}

// GuidStorage orders values byte-wise.
type GuidStorage struct {
	column[uuid.UUID]
}

func NewGuidStorage(fp *FormatProvider) *GuidStorage {
	s := &GuidStorage{column: newColumn(guidTraits, fp)}
	s.self = s
	return s
}

func (s *GuidStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
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
