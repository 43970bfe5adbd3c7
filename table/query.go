package table

import (
	"sort"
	"strings"

	"github.com/ovlad32/colstore/misc"
	"github.com/ovlad32/colstore/storage"
	"github.com/pkg/errors"
)

type SortKey struct {
	Column     string
	Descending bool
}

func (k SortKey) String() string {
	if k.Descending {
		return k.Column + " DESC"
	}
	return k.Column
}

// Sort returns the rows ordered by keys. Equal rows keep their order.
func (t *Table) Sort(keys ...SortKey) ([]int, error) {
	stores := make([]storage.Storage, len(keys))
	for i, k := range keys {
		c, err := t.Column(k.Column)
		if err != nil {
			return nil, err
		}
		stores[i] = c.store
	}
	rows := t.allRows()
	sort.SliceStable(rows, func(i, j int) bool {
		for k, s := range stores {
			c := s.Compare(rows[i], rows[j])
			if c == 0 {
				continue
			}
			if keys[k].Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	logger.Debugf("table %v: sorted %v rows by %v", t.name, len(rows),
		misc.JoinSlice(len(keys), ", ", func(i int) string { return keys[i].String() }))
	return rows, nil
}

// Op is a row filter comparison.
type Op int

const (
	Equal Op = iota
	NotEqual
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
	IsNull
	IsNotNull
)

var opNames = map[string]Op{
	"=":           Equal,
	"==":          Equal,
	"<>":          NotEqual,
	"!=":          NotEqual,
	"<":           Less,
	"<=":          LessOrEqual,
	">":           Greater,
	">=":          GreaterOrEqual,
	"is null":     IsNull,
	"is not null": IsNotNull,
}

func ParseOp(s string) (Op, error) {
	op, ok := opNames[strings.ToLower(strings.Join(strings.Fields(s), " "))]
	if !ok {
		return Equal, errors.Errorf("unknown comparison %q", s)
	}
	return op, nil
}

func (op Op) match(c int) bool {
	switch op {
	case Equal:
		return c == 0
	case NotEqual:
		return c != 0
	case Less:
		return c < 0
	case LessOrEqual:
		return c <= 0
	case Greater:
		return c > 0
	case GreaterOrEqual:
		return c >= 0
	}
	return false
}

// Select returns the rows of column matching op against v in row order.
// Null rows only match IsNull.
func (t *Table) Select(column string, op Op, v interface{}) ([]int, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	var rows []int
	for row := 0; row < t.rowCount; row++ {
		null := c.store.IsNull(row)
		switch op {
		case IsNull:
			if null {
				rows = append(rows, row)
			}
			continue
		case IsNotNull:
			if !null {
				rows = append(rows, row)
			}
			continue
		}
		if null {
			continue
		}
		cmp, err := c.store.CompareValueTo(row, v)
		if err != nil {
			return nil, errors.Wrapf(err, "table %v: filtering column %q", t.name, column)
		}
		if op.match(cmp) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
