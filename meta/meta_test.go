package meta

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ovlad32/colstore/profile"
	"github.com/ovlad32/colstore/sources"
	"github.com/ovlad32/colstore/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dumpDescJSON = `[
  {
    "tag": "orders",
    "database-name": "shop",
    "schema-name": "sales",
    "table-name": "orders",
    "dump-file": "./orders.csv",
    "dump-file-column-separator": "0x7C",
    "dump-file-null-token": "\\N",
    "stop-words": "n/a",
    "culture": "de",
    "collation": "en-ci",
    "columns": [
      {"name": "id", "position": 1, "data-type": "bigint"},
      {"name": "amount", "position": 2, "data-type": "numeric(10,2)", "leading-char": "$"},
      {"name": "note", "position": 3, "stop-words": "none"}
    ]
  },
  {
    "tag": "raw",
    "database-name": "shop",
    "table-name": "raw",
    "columns": [{"name": "blob", "position": 1, "data-type": "geometry"}]
  }
]`

func loadDumpDesc(t *testing.T) *DumpDesc {
	t.Helper()
	dd := &DumpDesc{}
	require.NoError(t, dd.Decode(strings.NewReader(dumpDescJSON)))
	return dd
}

func TestDumpDesc(t *testing.T) {
	dd := loadDumpDesc(t)
	td, found := dd.TaggedTable("orders")
	require.True(t, found)
	assert.Equal(t, `\N`, td.NullToken)
	assert.Equal(t, "n/a", td.Columns[0].StopWords)
	assert.Equal(t, "n/a,none", td.Columns[2].StopWords)

	same, found := dd.Table("shop", "sales", "orders")
	require.True(t, found)
	assert.Same(t, td, same)
	_, found = dd.TaggedTable("missing")
	assert.False(t, found)

	kinds := make([]storage.Kind, 0, len(td.Columns))
	for _, c := range td.Columns {
		k, err := c.Kind()
		require.NoError(t, err)
		kinds = append(kinds, k)
	}
	assert.Equal(t, []storage.Kind{storage.KindInt64, storage.KindDecimal, storage.KindString}, kinds)

	raw, _ := dd.TaggedTable("raw")
	_, err := raw.Columns[0].Kind()
	assert.True(t, errors.Is(err, storage.ErrUnknownKind))

	fp, collator, err := td.Options("", "")
	require.NoError(t, err)
	assert.Equal(t, ",", fp.DecimalSeparator())
	assert.Equal(t, 0, collator.Compare("ABC", "abc"))

	fp, collator, err = raw.Options("", "")
	require.NoError(t, err)
	assert.Same(t, storage.Invariant, fp)
	assert.Equal(t, storage.Ordinal, collator)

	assert.Equal(t, "shop.sales.orders", td.MetaTable().ID.String)
	assert.Equal(t, "shop.raw", raw.MetaTable().ID.String)
	assert.Equal(t, "fs/sales.orders", td.StorageDir("fs"))

	assert.Error(t, dd.Decode(strings.NewReader(`{"tag":"x"}`)))
}

func TestMergeColumns(t *testing.T) {
	td := &TableDescription{Columns: []ColumnDescription{
		{Name: "AMOUNT", Position: 1, DataType: "decimal", LeadingChar: "$"},
		{Name: "extra", Position: 2},
	}}
	td.MergeColumns([]ColumnDescription{
		{Name: "id", Position: 1, DataType: "INTEGER"},
		{Name: "amount", Position: 2, DataType: "REAL"},
	})
	require.Len(t, td.Columns, 3)
	assert.Equal(t, "id", td.Columns[0].Name)
	assert.Equal(t, ColumnDescription{Name: "amount", Position: 2, DataType: "decimal", LeadingChar: "$"}, td.Columns[1])
	assert.Equal(t, "extra", td.Columns[2].Name)
	assert.Equal(t, 3, td.Columns[2].Position)
}

func TestToByte(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want byte
	}{
		{",", ','},
		{"44", ','},
		{"0x7C", '|'},
		{"011", '\t'},
		{"\t", '\t'},
	} {
		assert.Equal(t, tc.want, toByte(tc.in), tc.in)
	}
}

type rowCounter struct {
	rows [][]sql.NullString
}

func (c *rowCounter) Handle(_ context.Context, _ int, values []sql.NullString) error {
	c.rows = append(c.rows, append([]sql.NullString(nil), values...))
	return nil
}

func TestTextRowHandlerAdapter(t *testing.T) {
	td, _ := loadDumpDesc(t).TaggedTable("orders")
	rc := &rowCounter{}
	a := NewTextRowHandlerAdapter(rc, td)
	_, err := sources.TextStream(context.Background(), strings.NewReader("1|$5|\\N\n"), a)
	require.NoError(t, err)
	require.Len(t, rc.rows, 1)
	assert.Equal(t, []sql.NullString{{String: "1", Valid: true}, {String: "$5", Valid: true}, {}}, rc.rows[0])

	assert.Equal(t, []byte{'\t'}, NewTextRowHandlerAdapter(rc, &TableDescription{}).Separator())
}

func openDb(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Init(context.Background(), db))
	require.NoError(t, Init(context.Background(), db))
	return db
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()
	db := openDb(t)
	mds := NewMetadataService(db)
	td, _ := loadDumpDesc(t).TaggedTable("orders")

	p := &profile.Profile{Table: "orders", Rows: 10, Columns: []profile.ColumnStats{
		{Name: "note", Kind: storage.KindString, NullCount: 4, UniqueCount: 3},
		{Name: "id", Kind: storage.KindInt64, UniqueCount: 10},
	}}
	table, columns, err := mds.SaveProfile(ctx, td, p)
	require.NoError(t, err)
	assert.Equal(t, "shop.sales.orders", table.ID.String)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Name)

	found, err := mds.FindFirstTableByDatabaseAndSchemaAndName(ctx, "shop", "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(10), found.RowCount.Int64)
	_, err = mds.FindFirstTableByDatabaseAndSchemaAndName(ctx, "shop", "", "orders")
	assert.True(t, errors.Is(err, ItemNotFoundError))

	p.Rows = 12
	p.Columns[0].NullCount = 5
	_, _, err = mds.SaveProfile(ctx, td, p)
	require.NoError(t, err)

	cache := NewTableMetaCache(mds, table.ID)
	rows, err := cache.TotalRowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, rows)
	cs, err := cache.Columns(ctx)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, []string{"id", "note"}, []string{cs[0].Name, cs[1].Name})

	note, err := cache.ColumnByName(ctx, "note")
	require.NoError(t, err)
	assert.Equal(t, int64(5), note.EmptyCount.Int64)
	assert.Equal(t, int64(3), note.UniqueCount.Int64)
	assert.Equal(t, "String", note.Kind.String)
	assert.Equal(t, 3, note.Position)
	assert.False(t, note.DataType.Valid)

	id, err := cache.ColumnByName(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, "bigint", id.DataType.String)

	_, err = cache.ColumnByName(ctx, "amount")
	assert.True(t, errors.Is(err, ItemNotFoundError))

	tables, err := mds.FindTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1)

	missing := NewTableMetaCache(mds, MakeID("nope"))
	_, err = missing.Table(ctx)
	assert.True(t, errors.Is(err, ItemNotFoundError))
}

func TestStorageFile(t *testing.T) {
	dir := t.TempDir() + "/nested"
	written, err := WriteToStorageFile(dir, "data.bin", bytes.NewBufferString("payload"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), written)

	var restored bytes.Buffer
	read, err := ReadFromStorageFile(&restored, dir, "data.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(7), read)
	assert.Equal(t, "payload", restored.String())

	_, err = ReadFromStorageFile(&restored, dir, "missing.bin")
	assert.Error(t, err)
}
