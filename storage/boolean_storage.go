package storage

var booleanTraits = &traits[bool]{
	kind:      KindBoolean,
	isDefault: func(v bool) bool { return !v },
	compare: func(a, b bool) int {
		switch {
		case a == b:
			return 0
		case a:
			return 1
		}
		return -1
	},
	convert: func(v interface{}, _ *FormatProvider) (bool, error) { return convertBool(v) },
	toXML:   formatXMLBool,
	fromXML: parseXMLBool,
}

type BooleanStorage struct {
	column[bool]
}

func NewBooleanStorage(fp *FormatProvider) *BooleanStorage {
	s := &BooleanStorage{column: newColumn(booleanTraits, fp)}
	s.self = s
	return s
}

// Aggregate supports Min (logical AND), Max (logical OR), First and Count.
func (s *BooleanStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	switch kind {
	case Min, Max:
		result := kind == Min
		found := false
		for _, row := range rows {
			if s.IsNull(row) {
				continue
			}
			if kind == Min {
				result = result && s.values[row]
			} else {
				result = result || s.values[row]
			}
			found = true
		}
		if found {
			return result, nil
		}
		return nil, nil
	case First:
		return s.first(rows), nil
	case Count:
		return s.countNonNull(rows), nil
	}
	return nil, unsupported(kind, s.kind)
}
