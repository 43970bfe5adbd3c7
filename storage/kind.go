package storage

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind tags every concrete storage variant.
type Kind int

const (
	KindEmpty Kind = iota
	KindBoolean
	KindChar
	KindSByte
	KindByte
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindSingle
	KindDouble
	KindDecimal
	KindDateTime
	KindTimeSpan
	KindString
	KindGuid
	KindByteArray
	KindBigInteger
	KindDateTimeOffset
)

var kindNames = [...]string{
	KindEmpty:          "Empty",
	KindBoolean:        "Boolean",
	KindChar:           "Char",
	KindSByte:          "SByte",
	KindByte:           "Byte",
	KindInt16:          "Int16",
	KindUInt16:         "UInt16",
	KindInt32:          "Int32",
	KindUInt32:         "UInt32",
	KindInt64:          "Int64",
	KindUInt64:         "UInt64",
	KindSingle:         "Single",
	KindDouble:         "Double",
	KindDecimal:        "Decimal",
	KindDateTime:       "DateTime",
	KindTimeSpan:       "TimeSpan",
	KindString:         "String",
	KindGuid:           "Guid",
	KindByteArray:      "ByteArray",
	KindBigInteger:     "BigInteger",
	KindDateTimeOffset: "DateTimeOffset",
}

// aliases map database type names onto kinds.
var kindAliases = map[string]Kind{
	"bool":             KindBoolean,
	"bit":              KindBoolean,
	"char":             KindChar,
	"tinyint":          KindSByte,
	"int8":             KindSByte,
	"uint8":            KindByte,
	"smallint":         KindInt16,
	"int2":             KindInt16,
	"uint16":           KindUInt16,
	"int":              KindInt32,
	"integer":          KindInt32,
	"int4":             KindInt32,
	"int32":            KindInt32,
	"uint":             KindUInt32,
	"uint32":           KindUInt32,
	"bigint":           KindInt64,
	"long":             KindInt64,
	"int64":            KindInt64,
	"uint64":           KindUInt64,
	"float":            KindSingle,
	"real":             KindSingle,
	"float32":          KindSingle,
	"float4":           KindSingle,
	"float64":          KindDouble,
	"float8":           KindDouble,
	"double":           KindDouble,
	"numeric":          KindDecimal,
	"number":           KindDecimal,
	"money":            KindDecimal,
	"date":             KindDateTime,
	"datetime":         KindDateTime,
	"timestamp":        KindDateTime,
	"time":             KindTimeSpan,
	"interval":         KindTimeSpan,
	"duration":         KindTimeSpan,
	"varchar":          KindString,
	"nvarchar":         KindString,
	"text":             KindString,
	"uuid":             KindGuid,
	"uniqueidentifier": KindGuid,
	"bytea":            KindByteArray,
	"blob":             KindByteArray,
	"binary":           KindByteArray,
	"varbinary":        KindByteArray,
	"bytes":            KindByteArray,
	"timestamptz":      KindDateTimeOffset,
	"datetimeoffset":   KindDateTimeOffset,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// IsNumeric reports whether values of the kind support Sum and Mean.
func (k Kind) IsNumeric() bool {
	return k.isSigned() || k.isUnsigned() || k.isFloat() || k == KindDecimal
}

func (k Kind) isSigned() bool {
	return k == KindSByte || k == KindInt16 || k == KindInt32 || k == KindInt64
}

func (k Kind) isUnsigned() bool {
	return k == KindByte || k == KindUInt16 || k == KindUInt32 || k == KindUInt64
}

func (k Kind) isFloat() bool {
	return k == KindSingle || k == KindDouble
}

// ParseKind maps a kind name or a common database type name onto a Kind.
// Length and precision suffixes like varchar(20) are ignored.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i > 0 {
		n = strings.TrimSpace(n[:i])
	}
	for k, kn := range kindNames {
		if strings.ToLower(kn) == n {
			return Kind(k), nil
		}
	}
	if k, ok := kindAliases[n]; ok {
		return k, nil
	}
	return KindEmpty, errors.Wrapf(ErrUnknownKind, "%q", name)
}
