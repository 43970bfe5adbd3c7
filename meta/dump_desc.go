package meta

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ovlad32/colstore/storage"
	"github.com/pkg/errors"
)

type TableDescription struct {
	Tag             string `json:"tag"`
	DatabaseName    string `json:"database-name"`
	SchemaName      string `json:"schema-name"`
	TableName       string `json:"table-name"`
	DumpFile        string `json:"dump-file"`
	ColumnSeparator string `json:"dump-file-column-separator"`
	// NullToken is read as null from the dump file, as is an empty field.
	NullToken   string              `json:"dump-file-null-token"`
	DbDescFile  string              `json:"db-desc-file"`
	DbQueryFile string              `json:"db-query-file"`
	StopWords   string              `json:"stop-words"`
	Culture     string              `json:"culture"`
	Collation   string              `json:"collation"`
	Columns     []ColumnDescription `json:"columns"`
	dumpingQuery string
}

type ColumnDescription struct {
	Name            string `json:"name"`
	Position        int    `json:"position"`
	DataType        string `json:"data-type"`
	RuntimeDataType string `json:"-"`
	LeadingChar     string `json:"leading-char,omitempty"`
	StopWords       string `json:"stop-words,omitempty"`
}

// Kind maps the declared data type to a storage kind; String when none is
// declared.
func (c ColumnDescription) Kind() (storage.Kind, error) {
	if strings.TrimSpace(c.DataType) == "" {
		return storage.KindString, nil
	}
	kind, err := storage.ParseKind(c.DataType)
	if err != nil {
		return storage.KindEmpty, errors.Wrapf(err, "column %v", c.Name)
	}
	return kind, nil
}

type DbCredsDesc struct {
	Driver                  string `json:"driver"`
	ConnectionString        string `json:"connection-string"`
	DbIdentifierQuoteString string `json:"db-identifier-qoute-string"`
	OneRowQueryTemplate     string `json:"one-row-query-template"`
}

type DumpDesc struct {
	tables []TableDescription
}

func (dbCreds *DbCredsDesc) Load(fileName string) (err error) {
	fl, err := os.Open(fileName)
	if err != nil {
		err = errors.Wrapf(err, "Opening file %v", fileName)
		return
	}
	defer fl.Close()
	if err = json.NewDecoder(fl).Decode(dbCreds); err != nil {
		err = errors.Wrapf(err, "Parsing json dbCreds details")
		return
	}
	return
}

func (dbCreds DbCredsDesc) RunQuery(ctx context.Context, consumerFunc func(r *sql.Rows) error, query string, args ...interface{}) (err error) {
	db, err := sql.Open(dbCreds.Driver, dbCreds.ConnectionString)
	if err != nil {
		err = errors.Wrapf(err, "connecting to the source db")
		return
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		err = errors.Wrapf(err, "running query")
		return
	}
	defer rows.Close()
	if err = consumerFunc(rows); err != nil {
		return
	}
	if err = rows.Err(); err != nil {
		err = errors.Wrapf(err, "iterating over rows")
		return
	}
	return
}

func (dbCreds DbCredsDesc) ToDbIdentifier(item string) string {
	if len(dbCreds.DbIdentifierQuoteString) > 0 {
		return dbCreds.DbIdentifierQuoteString + item + dbCreds.DbIdentifierQuoteString
	}
	return item
}

func (dbCreds DbCredsDesc) collectQueryColumns(ctx context.Context, query string) (columns []ColumnDescription, err error) {
	columns = make([]ColumnDescription, 0, 10)
	err = dbCreds.RunQuery(ctx, func(r *sql.Rows) (err error) {
		columnTypes, err := r.ColumnTypes()
		if err != nil {
			err = errors.Wrapf(err, "collecting query column types")
			return
		}
		for i, ct := range columnTypes {
			c := ColumnDescription{
				Name:     ct.Name(),
				Position: i + 1,
				DataType: ct.DatabaseTypeName(),
			}
			if st := ct.ScanType(); st != nil {
				c.RuntimeDataType = st.Name()
			}
			columns = append(columns, c)
		}
		return
	}, query)
	if err != nil {
		err = errors.Wrapf(err, "gathering metadata for query %v", query)
	}
	return
}

func (dbCreds DbCredsDesc) tableIdentifier(td *TableDescription) string {
	name := dbCreds.ToDbIdentifier(td.TableName)
	if len(td.SchemaName) > 0 {
		name = dbCreds.ToDbIdentifier(td.SchemaName) + "." + name
	}
	return name
}

func (dbCreds DbCredsDesc) buildDumpingQuery(td *TableDescription) string {
	queryColumns := make([]string, 0, len(td.Columns))
	for _, c := range td.Columns {
		queryColumns = append(queryColumns, dbCreds.ToDbIdentifier(c.Name))
	}
	return fmt.Sprintf("select %v from %v", strings.Join(queryColumns, ","), dbCreds.tableIdentifier(td))
}

// DetermineDumpingColumns reads the result columns of the custom dumping
// query or of the table itself and merges them into td.
func (dbCreds DbCredsDesc) DetermineDumpingColumns(ctx context.Context, td *TableDescription) (err error) {
	var columns []ColumnDescription
	if len(td.DbQueryFile) > 0 {
		if td.dumpingQuery, err = td.customDumpingQuery(); err != nil {
			return
		}
		oneRowQuery := td.dumpingQuery
		if len(dbCreds.OneRowQueryTemplate) > 0 {
			oneRowQuery = fmt.Sprintf(dbCreds.OneRowQueryTemplate, td.dumpingQuery)
		}
		logger.Debugf("Collecting columns of %v", oneRowQuery)
		columns, err = dbCreds.collectQueryColumns(ctx, oneRowQuery)
		if err != nil {
			err = errors.Wrapf(err, "Collecting column metadata for defined dumping query %v", oneRowQuery)
			return
		}
		td.MergeColumns(columns)
		return
	}
	logger.Infof("Collecting %v columns...", dbCreds.tableIdentifier(td))
	query := fmt.Sprintf("select * from %v where 1=0", dbCreds.tableIdentifier(td))
	columns, err = dbCreds.collectQueryColumns(ctx, query)
	if err != nil {
		err = errors.Wrapf(err, "Collecting column metadata for %v", dbCreds.tableIdentifier(td))
		return
	}
	td.MergeColumns(columns)
	td.dumpingQuery = dbCreds.buildDumpingQuery(td)
	return
}

func (dd *DumpDesc) Load(metaFile string) (err error) {
	f, err := os.Open(metaFile)
	if err != nil {
		err = errors.Wrapf(err, "couldn't open dump description file: %v", metaFile)
		return err
	}
	defer f.Close()
	return dd.Decode(f)
}

// Decode reads a JSON array of table descriptions.
func (dd *DumpDesc) Decode(r io.Reader) (err error) {
	dd.tables = make([]TableDescription, 0, 10)
	dec := json.NewDecoder(r)
	// read opening bracket
	tok, err := dec.Token()
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		err = errors.Errorf("dump description is not a JSON array: %v", tok)
		return
	}
	for dec.More() {
		var table TableDescription
		if err = dec.Decode(&table); err != nil {
			err = errors.WithStack(err)
			return
		}
		if len(table.StopWords) > 0 {
			for i := range table.Columns {
				table.Columns[i].StopWords = mergeStopWords(",", table.Columns[i].StopWords, table.StopWords)
			}
		}
		dd.tables = append(dd.tables, table)
	}
	// read closing bracket
	if _, err = dec.Token(); err != nil {
		err = errors.WithStack(err)
		return
	}
	return
}

func (dd *DumpDesc) Table(db, schema, name string) (ret *TableDescription, found bool) {
	for i := range dd.tables {
		if dd.tables[i].DatabaseName == db && dd.tables[i].SchemaName == schema && dd.tables[i].TableName == name {
			return &dd.tables[i], true
		}
	}
	return
}
func (dd *DumpDesc) TaggedTable(tag string) (ret *TableDescription, found bool) {
	for i := range dd.tables {
		if dd.tables[i].Tag == tag {
			return &dd.tables[i], true
		}
	}
	return
}

func mergeStopWords(sep string, stopWords ...string) string {
	var sm = make(map[string]bool)
	for _, sw := range stopWords {
		for _, w := range strings.Split(sw, sep) {
			w = strings.TrimSpace(w)
			if len(w) > 0 {
				sm[w] = true
			}
		}
	}
	var ss = make([]string, 0, len(sm))
	for w := range sm {
		ss = append(ss, w)
	}
	sort.Strings(ss)
	return strings.Join(ss, sep)
}

// MergeColumns takes the source columns in their order and keeps the
// declared load settings of columns with the same name. Declared columns
// missing from the source go last.
func (td *TableDescription) MergeColumns(columns []ColumnDescription) {
outer:
	for i := range td.Columns {
		for j := range columns {
			if strings.EqualFold(td.Columns[i].Name, columns[j].Name) {
				columns[j].LeadingChar = td.Columns[i].LeadingChar
				columns[j].StopWords = mergeStopWords(",", columns[j].StopWords, td.Columns[i].StopWords)
				if td.Columns[i].DataType != "" {
					columns[j].DataType = td.Columns[i].DataType
				}
				continue outer
			}
		}
		td.Columns[i].Position = len(columns) + 1
		columns = append(columns, td.Columns[i])
	}
	td.Columns = columns
	sort.SliceStable(td.Columns, func(i, j int) bool {
		return td.Columns[i].Position < td.Columns[j].Position
	})
}

func (td TableDescription) customDumpingQuery() (text string, err error) {
	b, err := os.ReadFile(td.DbQueryFile)
	if err != nil {
		err = errors.Wrapf(err, "Reading SQL statement from %v", td.DbQueryFile)
		return
	}
	text = string(b)
	return
}

func (td TableDescription) GetDumpingQuery() string {
	return td.dumpingQuery
}

// MetaTable is the metadata entity of the described table.
func (td TableDescription) MetaTable() *Table {
	t := &Table{
		DatabaseID: MakeID(td.DatabaseName),
		Name:       td.TableName,
	}
	if td.SchemaName != "" {
		t.SchemaName = sql.NullString{String: td.SchemaName, Valid: true}
	}
	t.ID = MakeTableID(t)
	return t
}

// StorageDir is the directory under root holding the persisted table.
func (td TableDescription) StorageDir(root string) string {
	name := td.TableName
	if td.SchemaName != "" {
		name = td.SchemaName + "." + name
	}
	return filepath.Join(root, name)
}

// Options returns the culture format and collation the table is loaded with.
func (td TableDescription) Options(defaultCulture, defaultCollation string) (fp *storage.FormatProvider, collator storage.Collator, err error) {
	culture, collation := td.Culture, td.Collation
	if culture == "" {
		culture = defaultCulture
	}
	if collation == "" {
		collation = defaultCollation
	}
	fp = storage.Invariant
	if culture != "" {
		if fp, err = storage.ParseFormatProvider(culture); err != nil {
			err = errors.Wrapf(err, "table %v", td.TableName)
			return
		}
	}
	collator = storage.Ordinal
	if collation != "" {
		if collator, err = storage.ParseCollation(collation); err != nil {
			err = errors.Wrapf(err, "table %v", td.TableName)
			return
		}
	}
	return
}
