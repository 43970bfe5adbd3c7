package meta

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

type iMetadataService interface {
	FindTableByID(ctx context.Context, tableID ID) (*Table, error)
	FindColumnsByTableId(ctx context.Context, tableID ID) ([]*Column, error)
}

// TableMetaCache loads a table and its columns once.
type TableMetaCache struct {
	tableID   ID
	mds       iMetadataService
	initOnce  sync.Once
	initErr   error
	columnMap map[string]*Column
	columns   []*Column
	table     *Table
}

func NewTableMetaCache(mds iMetadataService, tableID ID) (p *TableMetaCache) {
	p = &TableMetaCache{
		tableID: tableID,
		mds:     mds,
	}
	return
}

func (p *TableMetaCache) init(ctx context.Context) error {
	p.initOnce.Do(func() {
		table, err := p.mds.FindTableByID(ctx, p.tableID)
		if err != nil {
			p.initErr = errors.WithStack(err)
			return
		}
		cs, err := p.mds.FindColumnsByTableId(ctx, p.tableID)
		if err != nil {
			p.initErr = errors.WithStack(err)
			return
		}
		p.table = table
		p.columns = cs
		p.columnMap = make(map[string]*Column, len(cs))
		for _, c := range cs {
			p.columnMap[c.Name] = c
		}
		sort.Slice(p.columns, Columns(p.columns).ByPosition)
	})
	return p.initErr
}

func (p *TableMetaCache) Columns(ctx context.Context) ([]*Column, error) {
	if err := p.init(ctx); err != nil {
		return nil, err
	}
	return p.columns, nil
}

func (p *TableMetaCache) Table(ctx context.Context) (*Table, error) {
	if err := p.init(ctx); err != nil {
		return nil, err
	}
	return p.table, nil
}

func (p *TableMetaCache) ColumnByName(ctx context.Context, name string) (*Column, error) {
	if err := p.init(ctx); err != nil {
		return nil, err
	}
	c, found := p.columnMap[name]
	if !found {
		return nil, errors.Wrapf(ItemNotFoundError, "column %v of table %v", name, p.tableID.String)
	}
	return c, nil
}

func (p *TableMetaCache) TotalRowCount(ctx context.Context) (int, error) {
	if err := p.init(ctx); err != nil {
		return 0, err
	}
	return int(p.table.RowCount.Int64), nil
}
