package meta

import (
	"context"
	"database/sql"
	"sort"

	"github.com/ovlad32/colstore/profile"
	"github.com/pkg/errors"
)

type iTableMetadataRepository interface {
	FindByID(ctx context.Context, tableID ID) (*Table, error)
	FindByDatabaseAndSchemaAndName(ctx context.Context, dbName, schemaName, tableName string) ([]*Table, error)
	FindAll(ctx context.Context) ([]*Table, error)
	Save(ctx context.Context, table *Table) (*Table, error)
}
type iColumnMetadataRepository interface {
	FindByTableID(ctx context.Context, tableID ID) ([]*Column, error)
	Save(ctx context.Context, column *Column) (*Column, error)
}

type MetadataService struct {
	db         *sql.DB
	tableRepo  iTableMetadataRepository
	columnRepo iColumnMetadataRepository
}

// NewMetadataService stores metadata in db through the SQLite repositories.
func NewMetadataService(db *sql.DB) MetadataService {
	return MetadataService{
		db:         db,
		tableRepo:  SqliteTableRepo{Db: db},
		columnRepo: SqliteColumnRepo{Db: db},
	}
}

func (s MetadataService) FindFirstTableByDatabaseAndSchemaAndName(ctx context.Context, dbName, schemaName, tableName string) (*Table, error) {
	tables, err := s.tableRepo.FindByDatabaseAndSchemaAndName(ctx, dbName, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, errors.Wrapf(ItemNotFoundError, "table %v.%v.%v", dbName, schemaName, tableName)
	}
	return tables[0], nil
}

func (s MetadataService) FindTableByID(ctx context.Context, tableID ID) (*Table, error) {
	return s.tableRepo.FindByID(ctx, tableID)
}

func (s MetadataService) FindTables(ctx context.Context) ([]*Table, error) {
	return s.tableRepo.FindAll(ctx)
}

func (s MetadataService) FindColumnsByTableId(ctx context.Context, tableId ID) ([]*Column, error) {
	return s.columnRepo.FindByTableID(ctx, tableId)
}

func (s MetadataService) SaveTable(ctx context.Context, table *Table) (saved *Table, err error) {
	return s.tableRepo.Save(ctx, table)
}
func (s MetadataService) SaveColumn(ctx context.Context, column *Column) (saved *Column, err error) {
	return s.columnRepo.Save(ctx, column)
}

// SaveProfile records the row count and per column null and distinct
// counts of p under the table td describes, in one transaction.
func (s MetadataService) SaveProfile(ctx context.Context, td *TableDescription, p *profile.Profile) (table *Table, columns []*Column, err error) {
	table = td.MetaTable()
	table.RowCount = sql.NullInt64{Int64: int64(p.Rows), Valid: true}
	if q := td.GetDumpingQuery(); q != "" {
		table.DumpingQuery = sql.NullString{String: q, Valid: true}
	}
	positions := make(map[string]ColumnDescription)
	for _, cd := range td.Columns {
		positions[cd.Name] = cd
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	txCtx := WithTx(ctx, tx)
	if table, err = s.tableRepo.Save(txCtx, table); err != nil {
		return
	}
	for i, stats := range p.Columns {
		c := &Column{
			TableID:  table.ID,
			Name:     stats.Name,
			Position: i + 1,
			Kind:     sql.NullString{String: stats.Kind.String(), Valid: true},
			ColumnStats: ColumnStats{
				UniqueCount: sql.NullInt64{Int64: int64(stats.UniqueCount), Valid: true},
				EmptyCount:  sql.NullInt64{Int64: int64(stats.NullCount), Valid: true},
			},
		}
		if cd, ok := positions[stats.Name]; ok {
			c.Position = cd.Position
			if cd.DataType != "" {
				c.DataType = sql.NullString{String: cd.DataType, Valid: true}
			}
		}
		if c, err = s.columnRepo.Save(txCtx, c); err != nil {
			return
		}
		columns = append(columns, c)
	}
	if err = tx.Commit(); err != nil {
		err = errors.WithStack(err)
		return
	}
	sort.Slice(columns, Columns(columns).ByPosition)
	logger.Infof("Saved profile of %v: %v rows, %v columns", table.ID.String, p.Rows, len(columns))
	return
}
