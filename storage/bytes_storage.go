package storage

import (
	"bytes"
	"encoding/base64"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// BytesStorage stores byte arrays; a nil slot is null. Values are copied
// on Set and Get.
type BytesStorage struct {
	base
	values [][]byte
}

func NewBytesStorage(fp *FormatProvider) *BytesStorage {
	s := &BytesStorage{
		base:   base{kind: KindByteArray, format: fp.orInvariant()},
		values: [][]byte{},
	}
	s.self = s
	return s
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}

func (s *BytesStorage) DataType() reflect.Type {
	return reflect.TypeOf([]byte(nil))
}

func (s *BytesStorage) Capacity() int {
	return len(s.values)
}

func (s *BytesStorage) IsNull(row int) bool {
	return s.values[row] == nil
}

func (s *BytesStorage) Value(row int) Nullable[[]byte] {
	if v := s.values[row]; v != nil {
		return Of(cloneBytes(v))
	}
	return Nullable[[]byte]{}
}

func (s *BytesStorage) Get(row int) interface{} {
	if v := s.values[row]; v != nil {
		return cloneBytes(v)
	}
	return nil
}

func (s *BytesStorage) SetValue(row int, v Nullable[[]byte]) error {
	if !v.Valid || v.V == nil {
		s.values[row] = nil
		return nil
	}
	s.values[row] = cloneBytes(v.V)
	return nil
}

func (s *BytesStorage) Set(row int, v interface{}) error {
	if IsNull(v) {
		return s.SetValue(row, Nullable[[]byte]{})
	}
	b, err := convertBytes(v)
	if err != nil {
		return err
	}
	return s.SetValue(row, Of(b))
}

func (s *BytesStorage) Copy(src, dst int) {
	s.values[dst] = s.values[src]
}

func (s *BytesStorage) SetCapacity(capacity int) {
	values := make([][]byte, capacity)
	copy(values, s.values)
	s.values = values
}

func compareBytes(a, b []byte) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return bytes.Compare(a, b)
}

func (s *BytesStorage) Compare(a, b int) int {
	return compareBytes(s.values[a], s.values[b])
}

func (s *BytesStorage) CompareValueTo(row int, v interface{}) (int, error) {
	if IsNull(v) {
		return compareBytes(s.values[row], nil), nil
	}
	b, err := convertBytes(v)
	if err != nil {
		return 0, err
	}
	return compareBytes(s.values[row], b), nil
}

func (s *BytesStorage) ConvertValue(v interface{}) (interface{}, error) {
	if IsNull(v) {
		return nil, nil
	}
	b, err := convertBytes(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Aggregate supports First and Count.
func (s *BytesStorage) Aggregate(rows []int, kind AggregateKind) (interface{}, error) {
	switch kind {
	case First:
		if len(rows) == 0 || s.values[rows[0]] == nil {
			return nil, nil
		}
		return cloneBytes(s.values[rows[0]]), nil
	case Count:
		count := 0
		for _, row := range rows {
			if s.values[row] != nil {
				count++
			}
		}
		return count, nil
	}
	return nil, unsupported(kind, s.kind)
}

func (s *BytesStorage) ConvertXmlToObject(text string) (interface{}, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, errors.Wrapf(ErrConversion, "%q is not xml base64 binary", text)
	}
	return b, nil
}

func (s *BytesStorage) ConvertObjectToXml(v interface{}) (string, error) {
	if IsNull(v) {
		return "", errors.Wrapf(ErrConversion, "null has no %v xml text", s.kind)
	}
	b, err := convertBytes(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (s *BytesStorage) GetEmptyStorage(rowCount int) *Snapshot {
	return &Snapshot{
		kind:   s.kind,
		values: make([][]byte, rowCount),
	}
}

func (s *BytesStorage) CopyValue(row int, dst *Snapshot, dstIndex int) {
	dst.values.([][]byte)[dstIndex] = s.values[row]
}

func (s *BytesStorage) SetStorage(snapshot *Snapshot) error {
	if snapshot.kind != s.kind {
		return errors.Wrapf(ErrSnapshotKind, "cannot set %v snapshot into %v storage", snapshot.kind, s.kind)
	}
	s.values = snapshot.values.([][]byte)
	snapshot.consume()
	return nil
}
