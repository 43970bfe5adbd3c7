package meta

import (
	"strconv"
	"strings"

	"github.com/ovlad32/colstore/sources"
)

// TextRowHandlerAdapter feeds a dump file described by a TableDescription
// to a row handler.
type TextRowHandlerAdapter struct {
	sources.RowHandler
	td        *TableDescription
	separator []byte
}

// toByte reads a separator given literally or as a decimal, 0x hex or
// leading-zero octal byte code.
func toByte(sValue string) byte {
	if len(sValue) == 1 {
		return sValue[0]
	}
	var base = 10
	cleaned := sValue
	if strings.HasPrefix(sValue, "0x") || strings.HasPrefix(sValue, "0X") {
		cleaned, base = sValue[2:], 16
	} else if strings.HasPrefix(sValue, "0") {
		base = 8
	}
	result, err := strconv.ParseUint(cleaned, base, 8)
	if err != nil {
		return sValue[0]
	}
	return byte(result)
}

func (d *TextRowHandlerAdapter) Separator() []byte {
	return d.separator
}

func (d *TextRowHandlerAdapter) NullToken() string {
	return d.td.NullToken
}

// NewTextRowHandlerAdapter defaults the separator to a tab.
func NewTextRowHandlerAdapter(rh sources.RowHandler, td *TableDescription) *TextRowHandlerAdapter {
	separator := []byte{'\t'}
	if td.ColumnSeparator != "" {
		separator = []byte{toByte(td.ColumnSeparator)}
	}
	return &TextRowHandlerAdapter{
		RowHandler: rh,
		td:         td,
		separator:  separator,
	}
}
