package meta

import (
	"bufio"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type ID = sql.NullString

type Table struct {
	ID         ID             `json:"id"`
	DatabaseID ID             `json:"database-id"`
	SchemaName sql.NullString `json:"schema-name"`
	Name       string         `json:"table-name"`
	TableStats
	DumpingQuery sql.NullString `json:"dumping-query"`
}

type Column struct {
	ID       ID             `json:"id"`
	TableID  ID             `json:"table-id"`
	Name     string         `json:"column-name"`
	Position int            `json:"column-position"`
	DataType sql.NullString `json:"data-type"`
	// Kind is the storage kind name the column was loaded as.
	Kind sql.NullString `json:"kind"`
	ColumnStats
}

type TableStats struct {
	RowCount  sql.NullInt64 `json:"table-row-count"`
	SizeBytes sql.NullInt64 `json:"table-size-bytes"`
}

type ColumnStats struct {
	UniqueCount sql.NullInt64 `json:"column-unique-count"`
	EmptyCount  sql.NullInt64 `json:"column-empty-count"`
}

var TableStorageFileName = "table.bin"
var ProfileStorageFileName = "profile.bin"
var IndexStorageFileName = "index.bin"

type Columns []*Column

func (cs Columns) ByPosition(i, j int) bool {
	if cs[i].Position == cs[j].Position {
		return cs.ByID(i, j)
	}
	return cs[i].Position < cs[j].Position
}
func (cs Columns) ByID(i, j int) bool {
	return cs[i].ID.String < cs[j].ID.String
}

func MakeID(s ...string) ID {
	return ID{String: strings.Join(s, "."), Valid: true}
}

func MakeTableID(t *Table) ID {
	if t.SchemaName.Valid && t.SchemaName.String != "" {
		return MakeID(t.DatabaseID.String, t.SchemaName.String, t.Name)
	}
	return MakeID(t.DatabaseID.String, t.Name)
}

func MakeColumnID(c *Column) ID {
	return MakeID(c.TableID.String, c.Name)
}

// WriteToStorageFile writes xs to dir/fileName, creating dir when missing.
func WriteToStorageFile(dir string, fileName string, xs io.WriterTo) (written int64, err error) {
	if err = os.MkdirAll(dir, 0777); err != nil {
		err = errors.Wrapf(err, "creating storage directory %v", dir)
		return
	}
	fl, err := os.Create(filepath.Join(dir, fileName))
	if err != nil {
		err = errors.Wrapf(err, "creating %v storage file in %v", fileName, dir)
		return
	}
	defer func() {
		if cerr := fl.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %v storage file in %v", fileName, dir)
		}
	}()
	buf := bufio.NewWriter(fl)
	written, err = xs.WriteTo(buf)
	if err != nil {
		err = errors.Wrapf(err, "storing data to file %v in %v", fileName, dir)
		return
	}
	if err = buf.Flush(); err != nil {
		err = errors.Wrapf(err, "flushing file %v in %v", fileName, dir)
		return
	}
	logger.Debugf("%v bytes written to %v", written, filepath.Join(dir, fileName))
	return
}

func ReadFromStorageFile(xs io.ReaderFrom, dir string, fileName string) (read int64, err error) {
	fl, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		err = errors.Wrapf(err, "opening %v storage file in %v", fileName, dir)
		return
	}
	defer fl.Close()
	read, err = xs.ReadFrom(bufio.NewReader(fl))
	if err != nil {
		err = errors.Wrapf(err, "restoring data from file %v in %v", fileName, dir)
		return
	}
	return
}
