// Package sources streams rows out of delimited text dumps and database
// result sets into a RowHandler.
package sources

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var logger = log.StandardLogger()

func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// RowHandler receives one row at a time. Values are reused between calls.
type RowHandler interface {
	Handle(cx context.Context, rowNumber int, values []sql.NullString) error
}

type ITextRowHandler interface {
	RowHandler
	Separator() []byte
	// NullToken is the field text read as null in addition to an empty field.
	NullToken() string
}

const maxLineSize = 16 << 20

func TextStream(
	cx context.Context,
	stream io.Reader,
	rh ITextRowHandler,
) (lineNumber int, err error) {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(bufio.ScanLines)
	separator := rh.Separator()
	nullToken := []byte(rh.NullToken())
	tickTime := time.Now()
	tickLineNumber := 0
	var values []sql.NullString
	for scanner.Scan() {
		if err = cx.Err(); err != nil {
			err = errors.WithStack(err)
			return
		}
		lineNumber++
		line := bytes.TrimSuffix(scanner.Bytes(), []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		fields := bytes.Split(line, separator)
		values = values[:0]
		for _, b := range fields {
			if len(b) == 0 || (len(nullToken) > 0 && bytes.Equal(b, nullToken)) {
				values = append(values, sql.NullString{})
				continue
			}
			values = append(values, sql.NullString{String: string(b), Valid: true})
		}
		err = rh.Handle(cx, lineNumber, values)
		if err != nil {
			err = errors.Wrapf(err, "handling line #%v", lineNumber)
			return
		}
		if time.Since(tickTime).Seconds() >= 1 {
			tickTime = time.Now()
			logger.Infof("Processed %v lines. Speed %v lps", lineNumber, lineNumber-tickLineNumber)
			tickLineNumber = lineNumber
		}
	}
	if err = scanner.Err(); err != nil {
		err = errors.Wrapf(err, "reading line #%v", lineNumber+1)
		return
	}
	return
}
