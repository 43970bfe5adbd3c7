package table

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ovlad32/colstore/profile"
	"github.com/ovlad32/colstore/storage"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func people(t *testing.T) *Table {
	t.Helper()
	tbl := New("people")
	for _, c := range []struct {
		name string
		kind storage.Kind
	}{
		{"id", storage.KindInt32},
		{"name", storage.KindString},
		{"score", storage.KindDecimal},
		{"born", storage.KindDateTime},
		{"initial", storage.KindChar},
	} {
		_, err := tbl.AddColumn(c.name, c.kind)
		require.NoError(t, err)
	}
	rows := [][]interface{}{
		{1, "bob", "12.5", "1990-05-01", "b"},
		{2, "alice", nil, "1985-01-31T10:00:00Z", "a"},
		{3, nil, "7", nil, nil},
		{"4", "Carol", 9.25, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 'C'},
	}
	for i, r := range rows {
		row, err := tbl.NewRow(r...)
		require.NoError(t, err)
		require.Equal(t, i, row)
	}
	return tbl
}

func TestNewRowConvertsValues(t *testing.T) {
	tbl := people(t)
	assert.Equal(t, 4, tbl.RowCount())

	v, err := tbl.Value(3, "id")
	require.NoError(t, err)
	assert.Equal(t, int32(4), v)
	v, err = tbl.Value(0, "score")
	require.NoError(t, err)
	assert.True(t, decimal.New(125, -1).Equal(v.(decimal.Decimal)))
	v, err = tbl.Value(2, "name")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = tbl.Value(4, "id")
	assert.Error(t, err)
	_, err = tbl.Value(0, "missing")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestNewRowIsAllOrNothing(t *testing.T) {
	tbl := people(t)
	_, err := tbl.NewRow(5, "dave", "not a number")
	assert.True(t, errors.Is(err, storage.ErrConversion))
	assert.Equal(t, 4, tbl.RowCount())

	_, err = tbl.NewRow(5, "dave", 1, nil, '\t')
	assert.True(t, errors.Is(err, storage.ErrInvalidChar))
	assert.Equal(t, 4, tbl.RowCount())

	row, err := tbl.NewRow(5)
	require.NoError(t, err)
	assert.Equal(t, 4, row)
	values, err := tbl.Row(row)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int32(5), nil, nil, nil, nil}, values)

	_, err = tbl.NewRow(1, 2, 3, 4, 5, 6)
	assert.Error(t, err)
}

func TestCapacityGrows(t *testing.T) {
	tbl := New("wide")
	_, err := tbl.AddColumn("n", storage.KindInt64)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		_, err = tbl.NewRow(i)
		require.NoError(t, err)
	}
	assert.Equal(t, 128, tbl.capacity)

	_, err = tbl.AddColumn("late", storage.KindBoolean)
	require.NoError(t, err)
	v, err := tbl.Value(99, "late")
	require.NoError(t, err)
	assert.Nil(t, v, "existing rows are null in a new column")

	sum, err := tbl.Aggregate("n", nil, storage.Sum)
	require.NoError(t, err)
	assert.Equal(t, int64(4950), sum)

	_, err = tbl.AddColumn("n", storage.KindInt64)
	assert.True(t, errors.Is(err, ErrDuplicateColumn))
}

func TestSortAndSelect(t *testing.T) {
	tbl := people(t)

	rows, err := tbl.Sort(SortKey{Column: "name"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1, 0}, rows, "null first, ordinal order")

	tbl.SetCollation(storage.NewCultureCollator(language.English, false))
	rows, err = tbl.Sort(SortKey{Column: "name"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0, 3}, rows)

	rows, err = tbl.Sort(SortKey{Column: "score", Descending: true}, SortKey{Column: "id"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 2, 1}, rows)

	rows, err = tbl.Select("score", GreaterOrEqual, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, rows)
	rows, err = tbl.Select("born", IsNull, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, rows)
	rows, err = tbl.Select("id", NotEqual, "2")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, rows)

	_, err = tbl.Select("id", Equal, "two")
	assert.True(t, errors.Is(err, storage.ErrConversion))

	op, err := ParseOp(" is  NOT null ")
	require.NoError(t, err)
	assert.Equal(t, IsNotNull, op)
}

func TestAggregate(t *testing.T) {
	tbl := people(t)
	v, err := tbl.Aggregate("score", nil, storage.Mean)
	require.NoError(t, err)
	assert.Equal(t, "9.5833333333333333", v.(decimal.Decimal).String())

	v, err = tbl.Aggregate("name", []int{0, 1}, storage.Min)
	require.NoError(t, err)
	assert.Equal(t, "alice", v)

	v, err = tbl.Aggregate("initial", nil, storage.Count)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = tbl.Aggregate("name", nil, storage.Sum)
	assert.True(t, errors.Is(err, storage.ErrUnsupportedAggregate))
	_, err = tbl.Aggregate("id", []int{10}, storage.Sum)
	assert.Error(t, err)
}

func TestCopyIsIndependent(t *testing.T) {
	tbl := people(t)
	fork, err := tbl.Copy()
	require.NoError(t, err)
	assert.Equal(t, tbl.RowCount(), fork.RowCount())

	require.NoError(t, fork.SetValue(0, "name", "robert"))
	_, err = fork.NewRow(9)
	require.NoError(t, err)

	v, err := tbl.Value(0, "name")
	require.NoError(t, err)
	assert.Equal(t, "bob", v)
	assert.Equal(t, 4, tbl.RowCount())

	for row := 1; row < tbl.RowCount(); row++ {
		want, err := tbl.Row(row)
		require.NoError(t, err)
		got, err := fork.Row(row)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestXMLDocumentRoundTrip(t *testing.T) {
	tbl := people(t)
	require.NoError(t, tbl.SetValue(0, "name", " spaced <&> "))
	var buf bytes.Buffer
	require.NoError(t, tbl.WriteXML(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
	assert.Contains(t, buf.String(), `<Column name="score" kind="Decimal"></Column>`)

	restored, err := ReadXML(&buf)
	require.NoError(t, err)
	assert.Equal(t, "people", restored.Name())
	require.Equal(t, tbl.RowCount(), restored.RowCount())
	for row := 0; row < tbl.RowCount(); row++ {
		for _, c := range tbl.Columns() {
			want, err := tbl.Value(row, c.Name())
			require.NoError(t, err)
			got, err := restored.Value(row, c.Name())
			require.NoError(t, err)
			switch w := want.(type) {
			case decimal.Decimal:
				assert.True(t, w.Equal(got.(decimal.Decimal)))
			case time.Time:
				assert.True(t, w.Equal(got.(time.Time)))
			default:
				assert.Equal(t, want, got, "row %v column %v", row, c.Name())
			}
		}
	}
}

func TestXMLDocumentKeepsControlCharacters(t *testing.T) {
	tbl := New("raw")
	_, err := tbl.AddColumn("c", storage.KindChar)
	require.NoError(t, err)
	_, err = tbl.AddColumn("s", storage.KindString)
	require.NoError(t, err)
	_, err = tbl.NewRow(rune(0), "a\x01b")
	require.NoError(t, err)
	_, err = tbl.NewRow('x', "plain \t tab")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteXML(&buf))
	assert.Contains(t, buf.String(), `encoding="base64"`)
	assert.NotContains(t, buf.String(), "\uFFFD")

	restored, err := ReadXML(&buf)
	require.NoError(t, err)
	got, err := restored.Row(0)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{rune(0), "a\x01b"}, got)
	got, err = restored.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{'x', "plain \t tab"}, got)
}

func TestReadXMLRejectsUnknownEncoding(t *testing.T) {
	doc := `<Table name="raw"><Columns><Column name="s" kind="String"></Column></Columns>` +
		`<Row><Value column="s" encoding="rot13">nop</Value></Row></Table>`
	_, err := ReadXML(strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrConversion))
}

func TestBinaryRoundTrip(t *testing.T) {
	tbl := people(t)
	var buf bytes.Buffer
	written, err := tbl.WriteTo(&buf)
	require.NoError(t, err)

	restored := New("")
	read, err := restored.ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, written, read)
	assert.Equal(t, "people", restored.Name())
	assert.Equal(t, tbl.RowCount(), restored.RowCount())
	got, err := restored.Row(1)
	require.NoError(t, err)
	want, err := tbl.Row(1)
	require.NoError(t, err)
	assert.Equal(t, want[0], got[0])
	assert.Equal(t, want[1], got[1])
	assert.Nil(t, got[2])

	_, err = restored.NewRow(5, "eve")
	require.NoError(t, err)
}

func TestProfile(t *testing.T) {
	tbl := people(t)
	_, err := tbl.NewRow(5, "bob")
	require.NoError(t, err)
	p, err := tbl.Profile()
	require.NoError(t, err)
	assert.Equal(t, 5, p.Rows)

	name, ok := p.Column("name")
	require.True(t, ok)
	assert.Equal(t, uint(1), name.NullCount)
	assert.Equal(t, uint(3), name.UniqueCount)
	assert.Equal(t, storage.KindString, name.Kind)

	for _, c := range tbl.Columns() {
		stats, _ := p.Column(c.Name())
		rows, err := tbl.Select(c.Name(), IsNull, nil)
		require.NoError(t, err)
		assert.Equal(t, uint(len(rows)), stats.NullCount, c.Name())
	}
}

func TestLookup(t *testing.T) {
	tbl := people(t)
	_, err := tbl.NewRow(5, "bob", 7)
	require.NoError(t, err)
	idx := profile.NewValueIndex()
	b := profile.NewBuilder()
	b.Register(profile.NewValueIndexStrategy(idx))
	_, err = tbl.ProfileWith(b)
	require.NoError(t, err)

	rows, err := tbl.Lookup(idx, "name", "bob")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, rows)
	rows, err = tbl.Lookup(idx, "score", "7.0")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, rows)
	rows, err = tbl.Lookup(idx, "id", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	_, err = tbl.Lookup(idx, "id", "x")
	assert.True(t, errors.Is(err, storage.ErrConversion))
}
