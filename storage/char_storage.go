package storage

import (
	"cmp"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var charTraits = &traits[rune]{
	kind:      KindChar,
	isDefault: func(v rune) bool { return v == 0 },
	compare:   cmp.Compare[rune],
	convert:   func(v interface{}, _ *FormatProvider) (rune, error) { return convertRune(v) },
	toXML:     func(v rune) string { return string(v) },
	fromXML: func(s string) (rune, error) {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) || (r == utf8.RuneError && size == 1) {
			return 0, errors.Wrapf(ErrConversion, "%q is not a single character", s)
		}
		return r, nil
	},
	validate: validateChar,
}

// validateChar rejects surrogate halves and the tab, line feed and carriage
// return controls.
func validateChar(r rune) error {
	if (r >= 0xd800 && r <= 0xdfff) || r == '\t' || r == '\n' || r == '\r' {
		return errors.Wrapf(ErrInvalidChar, "%U", r)
	}
	return nil
}

type CharStorage struct {
	column[rune]
}

func NewCharStorage(fp *FormatProvider) *CharStorage {
	s := &CharStorage{column: newColumn(charTraits, fp)}
	s.self = s
	return s
}

func (s *CharStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
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
