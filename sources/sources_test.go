package sources

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	separator []byte
	nullToken string
	rows      [][]sql.NullString
	numbers   []int
	failAt    int
}

func (c *collector) Separator() []byte { return c.separator }
func (c *collector) NullToken() string { return c.nullToken }

func (c *collector) Handle(_ context.Context, rowNumber int, values []sql.NullString) error {
	if rowNumber == c.failAt {
		return errors.New("boom")
	}
	c.numbers = append(c.numbers, rowNumber)
	c.rows = append(c.rows, append([]sql.NullString(nil), values...))
	return nil
}

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestTextStream(t *testing.T) {
	input := "1|alice|\\N\r\n\n2||x\n3|bob|y"
	c := &collector{separator: []byte{'|'}, nullToken: `\N`}
	lines, err := TextStream(context.Background(), strings.NewReader(input), c)
	require.NoError(t, err)
	assert.Equal(t, 4, lines)
	assert.Equal(t, []int{1, 3, 4}, c.numbers)
	assert.Equal(t, [][]sql.NullString{
		{str("1"), str("alice"), {}},
		{str("2"), {}, str("x")},
		{str("3"), str("bob"), str("y")},
	}, c.rows)
}

func TestTextStreamStops(t *testing.T) {
	c := &collector{separator: []byte{','}, failAt: 2}
	_, err := TextStream(context.Background(), strings.NewReader("a\nb\nc"), c)
	assert.EqualError(t, err, "handling line #2: boom")
	assert.Len(t, c.rows, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = TextStream(ctx, strings.NewReader("a"), &collector{separator: []byte{','}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSqlRowsStream(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`create table t(id int, name text)`)
	require.NoError(t, err)
	_, err = db.Exec(`insert into t values (1, 'alice'), (2, null)`)
	require.NoError(t, err)

	rows, err := db.Query(`select id, name from t order by id`)
	require.NoError(t, err)
	defer rows.Close()
	c := &collector{}
	n, err := SqlRowsStream(context.Background(), rows, c)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]sql.NullString{
		{str("1"), str("alice")},
		{str("2"), {}},
	}, c.rows)
}

func TestNormalizer(t *testing.T) {
	assert.Nil(t, NewNormalizer("", ""))

	n := NewNormalizer("0", "n/a, none")
	assert.Equal(t, str("42"), n.Normalize(str("0042")))
	assert.Equal(t, sql.NullString{}, n.Normalize(str(" N/A ")))
	assert.Equal(t, sql.NullString{}, n.Normalize(sql.NullString{}))
	assert.Equal(t, str("nothing"), n.Normalize(str("nothing")))

	cs := NewStopWordsStrategy(true, []string{"NULL"})
	assert.Equal(t, str("null"), cs.Normalize(str("null")))
	assert.Equal(t, sql.NullString{}, cs.Normalize(str("NULL")))
}
