package storage

import (
	"reflect"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// stringSlot marks null in the slot itself; String storages keep no
// null bitmap.
type stringSlot struct {
	s     string
	valid bool
}

// StringStorage orders values with its Collator.
type StringStorage struct {
	base
	values   []stringSlot
	collator Collator
}

func NewStringStorage(fp *FormatProvider, collator Collator) *StringStorage {
	if collator == nil {
		collator = Ordinal
	}
	s := &StringStorage{
		base:     base{kind: KindString, format: fp.orInvariant()},
		values:   []stringSlot{},
		collator: collator,
	}
	s.self = s
	return s
}

func (s *StringStorage) SetCollator(collator Collator) {
	if collator != nil {
		s.collator = collator
	}
}

func (s *StringStorage) Collator() Collator {
	return s.collator
}

func (s *StringStorage) DataType() reflect.Type {
	return reflect.TypeOf("")
}

func (s *StringStorage) Capacity() int {
	return len(s.values)
}

func (s *StringStorage) IsNull(row int) bool {
	return !s.values[row].valid
}

func (s *StringStorage) Value(row int) Nullable[string] {
	slot := s.values[row]
	return Nullable[string]{V: slot.s, Valid: slot.valid}
}

func (s *StringStorage) Get(row int) interface{} {
	if slot := s.values[row]; slot.valid {
		return slot.s
	}
	return nil
}

func (s *StringStorage) SetValue(row int, v Nullable[string]) error {
	s.values[row] = stringSlot{s: v.V, valid: v.Valid}
	if !v.Valid {
		s.values[row].s = ""
	}
	return nil
}

func (s *StringStorage) Set(row int, v interface{}) error {
	if IsNull(v) {
		return s.SetValue(row, Nullable[string]{})
	}
	str, err := convertString(v, s.format)
	if err != nil {
		return err
	}
	return s.SetValue(row, Of(str))
}

func (s *StringStorage) Copy(src, dst int) {
	s.values[dst] = s.values[src]
}

func (s *StringStorage) SetCapacity(capacity int) {
	values := make([]stringSlot, capacity)
	copy(values, s.values)
	s.values = values
}

func (s *StringStorage) compareSlots(a, b stringSlot) int {
	switch {
	case !a.valid && !b.valid:
		return 0
	case !a.valid:
		return -1
	case !b.valid:
		return 1
	}
	return s.collator.Compare(a.s, b.s)
}

func (s *StringStorage) Compare(a, b int) int {
	return s.compareSlots(s.values[a], s.values[b])
}

func (s *StringStorage) CompareValueTo(row int, v interface{}) (int, error) {
	if IsNull(v) {
		return s.compareSlots(s.values[row], stringSlot{}), nil
	}
	str, err := convertString(v, s.format)
	if err != nil {
		return 0, err
	}
	return s.compareSlots(s.values[row], stringSlot{s: str, valid: true}), nil
}

func (s *StringStorage) ConvertValue(v interface{}) (interface{}, error) {
	if IsNull(v) {
		return nil, nil
	}
	str, err := convertString(v, s.format)
	if err != nil {
		return nil, err
	}
	return str, nil
}

// Aggregate supports Min, Max and Count.
func (s *StringStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	switch kind {
	case Min, Max:
		var result stringSlot
		for _, row := range rows {
			slot := s.values[row]
			if !slot.valid {
				continue
			}
			if !result.valid {
				result = slot
				continue
			}
			c := s.collator.Compare(slot.s, result.s)
			if (kind == Min && c < 0) || (kind == Max && c > 0) {
				result = slot
			}
		}
		if result.valid {
			return result.s, nil
		}
		return nil, nil
	case Count:
		count := 0
		for _, row := range rows {
			if s.values[row].valid {
				count++
			}
		}
		return count, nil
	}
	return nil, unsupported(kind, s.kind)
}

func (s *StringStorage) ConvertXmlToObject(text string) (interface{}, error) {
	return text, nil
}

func (s *StringStorage) ConvertObjectToXml(v interface{}) (string, error) {
	if IsNull(v) {
		return "", errors.Wrapf(ErrConversion, "null has no %v xml text", s.kind)
	}
	return convertString(v, Invariant)
}

// GetStringLength counts the runes of the value; null has length 0.
func (s *StringStorage) GetStringLength(row int) int {
	return utf8.RuneCountInString(s.values[row].s)
}

func (s *StringStorage) GetEmptyStorage(rowCount int) *Snapshot {
	return &Snapshot{
		kind:   s.kind,
		values: make([]stringSlot, rowCount),
	}
}

func (s *StringStorage) CopyValue(row int, dst *Snapshot, dstIndex int) {
	dst.values.([]stringSlot)[dstIndex] = s.values[row]
}

func (s *StringStorage) SetStorage(snapshot *Snapshot) error {
	if snapshot.kind != s.kind {
		return errors.Wrapf(ErrSnapshotKind, "cannot set %v snapshot into %v storage", snapshot.kind, s.kind)
	}
	s.values = snapshot.values.([]stringSlot)
	snapshot.consume()
	return nil
}
