package storage

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	signedBounds = map[Kind][2]int64{
		KindSByte: {math.MinInt8, math.MaxInt8},
		KindInt16: {math.MinInt16, math.MaxInt16},
		KindInt32: {math.MinInt32, math.MaxInt32},
		KindInt64: {math.MinInt64, math.MaxInt64},
	}
	unsignedBounds = map[Kind]uint64{
		KindByte:   math.MaxUint8,
		KindUInt16: math.MaxUint16,
		KindUInt32: math.MaxUint32,
		KindUInt64: math.MaxUint64,
	}
)

func bigToSigned(b *big.Int, k Kind) (int64, error) {
	bounds := signedBounds[k]
	if !b.IsInt64() {
		return 0, overflowError(b, k)
	}
	i := b.Int64()
	if i < bounds[0] || i > bounds[1] {
		return 0, overflowError(b, k)
	}
	return i, nil
}

func bigToUnsigned(b *big.Int, k Kind) (uint64, error) {
	if b.Sign() < 0 || !b.IsUint64() {
		return 0, overflowError(b, k)
	}
	u := b.Uint64()
	if u > unsignedBounds[k] {
		return 0, overflowError(b, k)
	}
	return u, nil
}

// integral reduces v to an integer. Floats and decimals round half to even.
func integral(v interface{}, k Kind, fp *FormatProvider) (*big.Int, error) {
	switch t := v.(type) {
	case *big.Int:
		return t, nil
	case big.Int:
		return &t, nil
	case decimal.Decimal:
		return t.RoundBank(0).BigInt(), nil
	case string:
		return fp.ParseInteger(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := math.RoundToEven(rv.Float())
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, overflowError(v, k)
		}
		b, _ := big.NewFloat(f).Int(nil)
		return b, nil
	case reflect.Bool:
		if rv.Bool() {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case reflect.String:
		return fp.ParseInteger(rv.String())
	}
	return nil, conversionError(v, k)
}

func convertSigned(v interface{}, k Kind, fp *FormatProvider) (int64, error) {
	v = unwrap(v)
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bounds := signedBounds[k]
		if i := rv.Int(); i >= bounds[0] && i <= bounds[1] {
			return i, nil
		}
		return 0, overflowError(v, k)
	}
	b, err := integral(v, k, fp)
	if err != nil {
		return 0, err
	}
	return bigToSigned(b, k)
}

func convertUnsigned(v interface{}, k Kind, fp *FormatProvider) (uint64, error) {
	v = unwrap(v)
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= unsignedBounds[k] {
			return u, nil
		}
		return 0, overflowError(v, k)
	}
	b, err := integral(v, k, fp)
	if err != nil {
		return 0, err
	}
	return bigToUnsigned(b, k)
}

func convertFloat(v interface{}, k Kind, fp *FormatProvider) (float64, error) {
	v = unwrap(v)
	bitSize := 64
	if k == KindSingle {
		bitSize = 32
	}
	switch t := v.(type) {
	case decimal.Decimal:
		f, _ := t.Float64()
		return f, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(t).Float64()
		return f, nil
	case string:
		return fp.ParseFloat(t, bitSize)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		return fp.ParseFloat(rv.String(), bitSize)
	}
	return 0, conversionError(v, k)
}

func convertDecimal(v interface{}, fp *FormatProvider) (decimal.Decimal, error) {
	v = unwrap(v)
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case *big.Int:
		return decimal.NewFromBigInt(t, 0), nil
	case string:
		return fp.ParseDecimal(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.New(rv.Int(), 0), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0), nil
	case reflect.Float32:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, overflowError(v, KindDecimal)
		}
		return decimal.NewFromString(strconv.FormatFloat(f, 'g', -1, 32))
	case reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, overflowError(v, KindDecimal)
		}
		return decimal.NewFromFloat(f), nil
	case reflect.Bool:
		if rv.Bool() {
			return decimal.New(1, 0), nil
		}
		return decimal.Zero, nil
	case reflect.String:
		return fp.ParseDecimal(rv.String())
	}
	return decimal.Zero, conversionError(v, KindDecimal)
}

func convertBool(v interface{}) (bool, error) {
	v = unwrap(v)
	switch t := v.(type) {
	case bool:
		return t, nil
	case decimal.Decimal:
		return !t.IsZero(), nil
	case *big.Int:
		return t.Sign() != 0, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		switch {
		case strings.EqualFold(s, "true"):
			return true, nil
		case strings.EqualFold(s, "false"):
			return false, nil
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		}
	}
	return false, conversionError(v, KindBoolean)
}

func convertRune(v interface{}) (rune, error) {
	v = unwrap(v)
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i := rv.Int(); i >= 0 && i <= unicode.MaxRune {
			return rune(i), nil
		}
		return 0, overflowError(v, KindChar)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= unicode.MaxRune {
			return rune(u), nil
		}
		return 0, overflowError(v, KindChar)
	case reflect.String:
		s := rv.String()
		if utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			return r, nil
		}
	}
	return 0, conversionError(v, KindChar)
}

func convertString(v interface{}, fp *FormatProvider) (string, error) {
	v = unwrap(v)
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case decimal.Decimal:
		return fp.FormatDecimal(t), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return fp.FormatFloat(rv.Float(), 32), nil
	case reflect.Float64:
		return fp.FormatFloat(rv.Float(), 64), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	}
	return fmt.Sprint(v), nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTime(s string, k Kind) (time.Time, error) {
	t := strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if tm, err := time.Parse(layout, t); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, conversionError(s, k)
}

func convertTime(v interface{}, k Kind) (time.Time, error) {
	v = unwrap(v)
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTime(t, k)
	}
	return time.Time{}, conversionError(v, k)
}

// convertDuration treats integers as nanoseconds.
func convertDuration(v interface{}) (time.Duration, error) {
	v = unwrap(v)
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
		return parseXsdDuration(s)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return time.Duration(u), nil
		}
		return 0, overflowError(v, KindTimeSpan)
	}
	return 0, conversionError(v, KindTimeSpan)
}

func convertUUID(v interface{}) (uuid.UUID, error) {
	v = unwrap(v)
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case [16]byte:
		return uuid.UUID(t), nil
	case []byte:
		if u, err := uuid.FromBytes(t); err == nil {
			return u, nil
		}
	case string:
		if u, err := uuid.Parse(strings.TrimSpace(t)); err == nil {
			return u, nil
		}
	}
	return uuid.Nil, conversionError(v, KindGuid)
}

func convertBytes(v interface{}) ([]byte, error) {
	v = unwrap(v)
	switch t := v.(type) {
	case []byte:
		return append(make([]byte, 0, len(t)), t...), nil
	case string:
		return []byte(t), nil
	}
	return nil, conversionError(v, KindByteArray)
}

// convertBigInt accepts fixed width integers, big integers and
// culture formatted integer strings.
func convertBigInt(v interface{}, fp *FormatProvider) (*big.Int, error) {
	v = unwrap(v)
	switch t := v.(type) {
	case *big.Int:
		return new(big.Int).Set(t), nil
	case big.Int:
		return new(big.Int).Set(&t), nil
	case string:
		return fp.ParseInteger(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, conversionError(v, KindBigInteger)
}

// ConvertFromBigInteger narrows v into a value of kind k.
func ConvertFromBigInteger(v *big.Int, k Kind, fp *FormatProvider) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch k {
	case KindString:
		return v.String(), nil
	case KindSByte, KindInt16, KindInt32, KindInt64:
		i, err := bigToSigned(v, k)
		if err != nil {
			return nil, err
		}
		return castSigned(i, k), nil
	case KindByte, KindUInt16, KindUInt32, KindUInt64:
		u, err := bigToUnsigned(v, k)
		if err != nil {
			return nil, err
		}
		return castUnsigned(u, k), nil
	case KindSingle:
		f, _ := new(big.Float).SetInt(v).Float32()
		return f, nil
	case KindDouble:
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, nil
	case KindDecimal:
		return decimal.NewFromBigInt(v, 0), nil
	case KindBigInteger:
		return new(big.Int).Set(v), nil
	}
	return nil, errors.Wrapf(ErrConversion, "cannot convert BigInteger to %v", k)
}

func castSigned(i int64, k Kind) interface{} {
	switch k {
	case KindSByte:
		return int8(i)
	case KindInt16:
		return int16(i)
	case KindInt32:
		return int32(i)
	}
	return i
}

func castUnsigned(u uint64, k Kind) interface{} {
	switch k {
	case KindByte:
		return uint8(u)
	case KindUInt16:
		return uint16(u)
	case KindUInt32:
		return uint32(u)
	}
	return u
}
