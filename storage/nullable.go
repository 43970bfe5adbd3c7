package storage

import (
	"database/sql"
	"reflect"
)

// Nullable carries a typed value together with its null state,
// shaped like sql.NullString.
type Nullable[T any] struct {
	V     T
	Valid bool
}

// Of wraps a non-null value.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{V: v, Valid: true}
}

// Null returns the null Nullable of T.
func Null[T any]() Nullable[T] {
	return Nullable[T]{}
}

type validity interface {
	isValid() bool
}

func (n Nullable[T]) isValid() bool { return n.Valid }

// IsNull reports whether v is the null token: nil, an invalid sql.Null* or
// Nullable value, or a typed nil pointer, slice or map.
func IsNull(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case validity:
		return !t.isValid()
	case sql.NullString:
		return !t.Valid
	case sql.NullInt64:
		return !t.Valid
	case sql.NullInt32:
		return !t.Valid
	case sql.NullInt16:
		return !t.Valid
	case sql.NullByte:
		return !t.Valid
	case sql.NullFloat64:
		return !t.Valid
	case sql.NullBool:
		return !t.Valid
	case sql.NullTime:
		return !t.Valid
	case []byte:
		return t == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// unwrap strips sql.Null* and Nullable wrappers off a non-null value.
func unwrap(v interface{}) interface{} {
	switch t := v.(type) {
	case sql.NullString:
		return t.String
	case sql.NullInt64:
		return t.Int64
	case sql.NullInt32:
		return t.Int32
	case sql.NullInt16:
		return t.Int16
	case sql.NullByte:
		return t.Byte
	case sql.NullFloat64:
		return t.Float64
	case sql.NullBool:
		return t.Bool
	case sql.NullTime:
		return t.Time
	case interface{ value() interface{} }:
		return t.value()
	}
	return v
}

func (n Nullable[T]) value() interface{} { return n.V }
