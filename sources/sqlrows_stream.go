package sources

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

func SqlRowsStream(
	cx context.Context,
	stream *sql.Rows,
	rh RowHandler,
) (rowCount int, err error) {
	var valueRefs []interface{}
	var sqlValues []sql.NullString
	tickTime := time.Now()
	tickRowNumber := 0
	for stream.Next() {
		if err = cx.Err(); err != nil {
			err = errors.WithStack(err)
			return
		}
		rowCount++
		if valueRefs == nil {
			columns, erre := stream.Columns()
			if erre != nil {
				err = errors.Wrapf(erre, "reading number of columns")
				return
			}
			valueRefs = make([]interface{}, len(columns))
			sqlValues = make([]sql.NullString, len(columns))
			for i := range valueRefs {
				valueRefs[i] = &sqlValues[i]
			}
		}
		err = stream.Scan(valueRefs...)
		if err != nil {
			err = errors.Wrapf(err, "scanning row #%v", rowCount)
			return
		}
		err = rh.Handle(cx, rowCount, sqlValues)
		if err != nil {
			err = errors.Wrapf(err, "handling row #%v", rowCount)
			return
		}
		if time.Since(tickTime).Seconds() >= 1 {
			tickTime = time.Now()
			logger.Infof("Processed %v rows. Speed %v rps", rowCount, rowCount-tickRowNumber)
			tickRowNumber = rowCount
		}
	}
	if err = stream.Err(); err != nil {
		err = errors.WithStack(err)
		return
	}
	return
}
