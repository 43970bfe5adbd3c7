package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedAggregate = errors.New("unsupported aggregate")
	ErrOverflow             = errors.New("arithmetic overflow")
	ErrConversion           = errors.New("value conversion failed")
	ErrInvalidChar          = errors.New("problematic character")
	ErrSnapshotKind         = errors.New("snapshot kind mismatch")
	ErrUnknownKind          = errors.New("unknown storage kind")
)

// AggregateError reports an aggregate the storage kind does not define.
type AggregateError struct {
	Aggregate AggregateKind
	Kind      Kind
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%v: %v is not defined for %v", ErrUnsupportedAggregate, e.Aggregate, e.Kind)
}

func (e *AggregateError) Is(target error) bool {
	return target == ErrUnsupportedAggregate
}

func unsupported(a AggregateKind, k Kind) error {
	return &AggregateError{Aggregate: a, Kind: k}
}

func conversionError(v interface{}, k Kind) error {
	return errors.Wrapf(ErrConversion, "cannot convert %T(%v) to %v", v, v, k)
}

func overflowError(v interface{}, k Kind) error {
	return errors.Wrapf(ErrOverflow, "value %v is out of %v range", v, k)
}
