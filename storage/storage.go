// Package storage implements typed column storages: dense arrays of raw
// values with a side bitmap of null rows, value comparison, aggregation
// and canonical XML text conversion.
package storage

import (
	"io"
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// Storage is the column storage contract. Row indexes are owned by the
// caller; a row outside [0, Capacity()) panics.
type Storage interface {
	Kind() Kind
	DataType() reflect.Type
	Capacity() int

	IsNull(row int) bool
	Get(row int) interface{}
	Set(row int, v interface{}) error
	Copy(src, dst int)
	SetCapacity(capacity int)

	Compare(a, b int) int
	CompareValueTo(row int, v interface{}) (int, error)
	ConvertValue(v interface{}) (interface{}, error)
	Aggregate(rows []int, kind AggregateKind) (interface{}, error)

	ConvertXmlToObject(s string) (interface{}, error)
	ConvertObjectToXml(v interface{}) (string, error)

	GetEmptyStorage(rowCount int) *Snapshot
	CopyValue(row int, dst *Snapshot, dstIndex int)
	SetStorage(s *Snapshot) error

	GetStringLength(row int) int

	io.WriterTo
	io.ReaderFrom
}

// Snapshot is a detached value array filled through CopyValue and handed
// over to a storage by SetStorage, which consumes it.
type Snapshot struct {
	kind   Kind
	values interface{}
	nulls  *NullBits
}

func (s *Snapshot) Kind() Kind {
	return s.kind
}

func (s *Snapshot) Len() int {
	if s.values == nil {
		return 0
	}
	return reflect.ValueOf(s.values).Len()
}

func (s *Snapshot) consume() {
	s.values = nil
	s.nulls = nil
}

type config struct {
	format   *FormatProvider
	collator Collator
	capacity int
}

type Option func(*config)

// WithFormat sets the culture used by value conversions.
func WithFormat(fp *FormatProvider) Option {
	return func(c *config) {
		if fp != nil {
			c.format = fp
		}
	}
}

// WithCollation sets the string order of String storages.
func WithCollation(collator Collator) Option {
	return func(c *config) {
		if collator != nil {
			c.collator = collator
		}
	}
}

func WithCapacity(capacity int) Option {
	return func(c *config) {
		c.capacity = capacity
	}
}

// New creates an empty storage of the given kind.
func New(kind Kind, opts ...Option) (Storage, error) {
	c := config{
		format:   Invariant,
		collator: Ordinal,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.capacity < 0 {
		return nil, errors.Errorf("negative capacity %v", c.capacity)
	}
	var s Storage
	switch kind {
	case KindBoolean:
		s = NewBooleanStorage(c.format)
	case KindChar:
		s = NewCharStorage(c.format)
	case KindSByte:
		s = NewNumericStorage[int8](kind, c.format)
	case KindByte:
		s = NewNumericStorage[uint8](kind, c.format)
	case KindInt16:
		s = NewNumericStorage[int16](kind, c.format)
	case KindUInt16:
		s = NewNumericStorage[uint16](kind, c.format)
	case KindInt32:
		s = NewNumericStorage[int32](kind, c.format)
	case KindUInt32:
		s = NewNumericStorage[uint32](kind, c.format)
	case KindInt64:
		s = NewNumericStorage[int64](kind, c.format)
	case KindUInt64:
		s = NewNumericStorage[uint64](kind, c.format)
	case KindSingle:
		s = NewNumericStorage[float32](kind, c.format)
	case KindDouble:
		s = NewNumericStorage[float64](kind, c.format)
	case KindDecimal:
		s = NewDecimalStorage(c.format)
	case KindDateTime:
		s = NewDateTimeStorage(c.format)
	case KindTimeSpan:
		s = NewTimeSpanStorage(c.format)
	case KindString:
		s = NewStringStorage(c.format, c.collator)
	case KindGuid:
		s = NewGuidStorage(c.format)
	case KindByteArray:
		s = NewBytesStorage(c.format)
	case KindBigInteger:
		s = NewBigIntegerStorage(c.format)
	case KindDateTimeOffset:
		s = NewDateTimeOffsetStorage(c.format)
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "cannot create storage of %v", kind)
	}
	if c.capacity > 0 {
		s.SetCapacity(c.capacity)
	}
	return s, nil
}

// base holds what every storage shares.
type base struct {
	kind   Kind
	format *FormatProvider
	self   Storage
}

func (b *base) Kind() Kind {
	return b.kind
}

// GetStringLength is only meaningful for String storages.
func (b *base) GetStringLength(row int) int {
	return math.MaxInt32
}

func (b *base) WriteTo(w io.Writer) (int64, error) {
	return writeStorage(w, b.self)
}

func (b *base) ReadFrom(r io.Reader) (int64, error) {
	return readStorage(r, b.self)
}

// traits describe a value type stored in a column.
type traits[T any] struct {
	kind Kind
	// isDefault reports whether v equals the type default. Only such rows
	// consult the null bitmap.
	isDefault func(v T) bool
	compare   func(a, b T) int
	convert   func(v interface{}, fp *FormatProvider) (T, error)
	toXML     func(v T) string
	fromXML   func(s string) (T, error)
	// optional
	validate func(v T) error
	clone    func(v T) T
}

// column is a dense array of T with a side bitmap of null rows.
type column[T any] struct {
	base
	values []T
	nulls  *NullBits
	tr     *traits[T]
}

func newColumn[T any](tr *traits[T], fp *FormatProvider) column[T] {
	return column[T]{
		base:   base{kind: tr.kind, format: fp.orInvariant()},
		values: []T{},
		nulls:  NewNullBits(0),
		tr:     tr,
	}
}

func (c *column[T]) DataType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (c *column[T]) Capacity() int {
	return len(c.values)
}

func (c *column[T]) IsNull(row int) bool {
	return c.nulls.Get(row)
}

// hasValue checks the bitmap only when the stored value is the default.
func (c *column[T]) hasValue(row int) bool {
	if !c.tr.isDefault(c.values[row]) {
		return true
	}
	return !c.nulls.Get(row)
}

func (c *column[T]) out(v T) T {
	if c.tr.clone != nil {
		return c.tr.clone(v)
	}
	return v
}

// Value returns the typed value of row.
func (c *column[T]) Value(row int) Nullable[T] {
	if c.hasValue(row) {
		return Of(c.out(c.values[row]))
	}
	return Nullable[T]{}
}

func (c *column[T]) Get(row int) interface{} {
	if c.hasValue(row) {
		return c.out(c.values[row])
	}
	return nil
}

// SetValue stores a typed value. The row stays unchanged on error.
func (c *column[T]) SetValue(row int, v Nullable[T]) error {
	if !v.Valid || IsNull(v.V) {
		var zero T
		c.values[row] = zero
		c.nulls.Set(row, true)
		return nil
	}
	if c.tr.validate != nil {
		if err := c.tr.validate(v.V); err != nil {
			return err
		}
	}
	c.nulls.checkRow(row)
	c.values[row] = c.out(v.V)
	c.nulls.Set(row, false)
	return nil
}

func (c *column[T]) Set(row int, v interface{}) error {
	if IsNull(v) {
		return c.SetValue(row, Nullable[T]{})
	}
	t, err := c.tr.convert(v, c.format)
	if err != nil {
		return err
	}
	return c.SetValue(row, Of(t))
}

func (c *column[T]) Copy(src, dst int) {
	c.values[dst] = c.values[src]
	c.nulls.Set(dst, c.nulls.Get(src))
}

func (c *column[T]) SetCapacity(capacity int) {
	values := make([]T, capacity)
	copy(values, c.values)
	c.values = values
	c.nulls.Resize(capacity)
}

func (c *column[T]) compareBits(a, b int) int {
	return compareBits(c.nulls, a, b)
}

func (c *column[T]) Compare(a, b int) int {
	va, vb := c.values[a], c.values[b]
	if c.tr.isDefault(va) || c.tr.isDefault(vb) {
		if bits := c.compareBits(a, b); bits != 0 {
			return bits
		}
	}
	return c.tr.compare(va, vb)
}

func (c *column[T]) CompareValueTo(row int, v interface{}) (int, error) {
	if IsNull(v) {
		if c.IsNull(row) {
			return 0, nil
		}
		return 1, nil
	}
	t, err := c.tr.convert(v, c.format)
	if err != nil {
		return 0, err
	}
	current := c.values[row]
	if c.tr.isDefault(current) && c.IsNull(row) {
		return -1, nil
	}
	return c.tr.compare(current, t), nil
}

func (c *column[T]) ConvertValue(v interface{}) (interface{}, error) {
	if IsNull(v) {
		return nil, nil
	}
	t, err := c.tr.convert(v, c.format)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (c *column[T]) ConvertXmlToObject(s string) (interface{}, error) {
	t, err := c.tr.fromXML(s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (c *column[T]) ConvertObjectToXml(v interface{}) (string, error) {
	if IsNull(v) {
		return "", errors.Wrapf(ErrConversion, "null has no %v xml text", c.kind)
	}
	t, ok := unwrap(v).(T)
	if !ok {
		var err error
		if t, err = c.tr.convert(v, Invariant); err != nil {
			return "", err
		}
	}
	return c.tr.toXML(t), nil
}

func (c *column[T]) GetEmptyStorage(rowCount int) *Snapshot {
	return &Snapshot{
		kind:   c.kind,
		values: make([]T, rowCount),
		nulls:  NewNullBits(rowCount),
	}
}

func (c *column[T]) CopyValue(row int, dst *Snapshot, dstIndex int) {
	values := dst.values.([]T)
	values[dstIndex] = c.values[row]
	dst.nulls.Set(dstIndex, !c.hasValue(row))
}

func (c *column[T]) SetStorage(s *Snapshot) error {
	if s.kind != c.kind {
		return errors.Wrapf(ErrSnapshotKind, "cannot set %v snapshot into %v storage", s.kind, c.kind)
	}
	c.values = s.values.([]T)
	c.nulls = s.nulls
	s.consume()
	return nil
}

// countNonNull counts rows whose null bit is clear.
func (c *column[T]) countNonNull(rows []int) int {
	count := 0
	for _, row := range rows {
		if !c.nulls.Get(row) {
			count++
		}
	}
	return count
}

// first returns the raw value of the first row without consulting nulls.
func (c *column[T]) first(rows []int) interface{} {
	if len(rows) == 0 {
		return nil
	}
	return c.out(c.values[rows[0]])
}

// extreme scans non-null rows for the minimum (sign < 0) or maximum.
func (c *column[T]) extreme(rows []int, sign int) interface{} {
	var result T
	found := false
	for _, row := range rows {
		if !c.hasValue(row) {
			continue
		}
		v := c.values[row]
		if !found || c.tr.compare(v, result)*sign > 0 {
			result = v
			found = true
		}
	}
	if !found {
		return nil
	}
	return c.out(result)
}

// NullBits exposes a copy of the null rows of the storage.
func (c *column[T]) NullBits() *NullBits {
	return c.nulls.Clone()
}
