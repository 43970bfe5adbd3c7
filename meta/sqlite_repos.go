package meta

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

var ItemNotFoundError = errors.New("Not found")

type SqliteTableRepo struct {
	Db *sql.DB
}

type SqliteColumnRepo struct {
	Db *sql.DB
}

type sqlExecutor interface {
	ExecContext(c context.Context, sql string, p ...interface{}) (sql.Result, error)
}

type txKey struct{}

// WithTx makes repositories write through tx.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func executor(ctx context.Context, db *sql.DB) sqlExecutor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}

var ddls = []string{
	`create table if not exists mtd_tabs(
		id text,
		mtd_db_id text,
		table_name text,
		schema_name text,
		row_count bigint,
		size_bytes bigint,
		dumping_query text,
		constraint mtd_tabs__pk primary key(id)
	) WITHOUT ROWID`,
	`create table if not exists mtd_cols(
		id text,
		mtd_tab_id text,
		column_name text,
		position int,
		data_type text,
		kind text,
		empty_count bigint,
		unique_count bigint,
		constraint cols__pk primary key(id)
	) WITHOUT ROWID`,
	`create index if not exists mtd_cols__tab on mtd_cols(mtd_tab_id, position)`,
}

// Init creates the metadata schema when it does not exist.
func Init(ctx context.Context, db *sql.DB) (err error) {
	for _, ddlText := range ddls {
		if _, err = db.ExecContext(ctx, ddlText); err != nil {
			err = errors.Wrapf(err, "executing DDL: %v", ddlText)
			return
		}
	}
	return
}

func (r SqliteTableRepo) fieldReferences(table *Table) (refs []interface{}) {
	refs = make([]interface{}, 0, 7)
	refs = append(refs, &table.ID)
	refs = append(refs, &table.DatabaseID)
	refs = append(refs, &table.Name)
	refs = append(refs, &table.SchemaName)
	refs = append(refs, &table.RowCount)
	refs = append(refs, &table.SizeBytes)
	refs = append(refs, &table.DumpingQuery)
	return
}

func (r SqliteTableRepo) findBy(ctx context.Context, whereExpr string, params []interface{}) (entities []*Table, err error) {
	rs, err := r.Db.QueryContext(ctx,
		`select id, mtd_db_id, table_name, schema_name, row_count, size_bytes, dumping_query from mtd_tabs `+whereExpr, params...)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	defer rs.Close()
	entities = make([]*Table, 0)
	for rs.Next() {
		entity := &Table{}
		if err = rs.Scan(r.fieldReferences(entity)...); err != nil {
			err = errors.WithStack(err)
			return
		}
		entities = append(entities, entity)
	}
	err = errors.WithStack(rs.Err())
	return
}

func (r SqliteTableRepo) FindByID(ctx context.Context, tableID ID) (table *Table, err error) {
	tables, err := r.findBy(ctx, ` where id = ? `, []interface{}{tableID})
	if err != nil {
		return
	}
	if len(tables) == 0 {
		err = errors.Wrapf(ItemNotFoundError, "table ID %v", tableID.String)
		return
	}
	table = tables[0]
	return
}

func (r SqliteTableRepo) FindByDatabaseAndSchemaAndName(ctx context.Context, dbName string, schemaName, tableName string) (tables []*Table, err error) {
	return r.findBy(ctx, ` where mtd_db_id = ? and coalesce(schema_name, '') = ? and table_name = ?`,
		[]interface{}{dbName, schemaName, tableName},
	)
}

func (r SqliteTableRepo) FindAll(ctx context.Context) ([]*Table, error) {
	return r.findBy(ctx, ` order by id`, nil)
}

func (r SqliteTableRepo) Save(ctx context.Context, entity *Table) (saved *Table, err error) {
	var sqlText = "insert into mtd_tabs(id, mtd_db_id, table_name, schema_name, row_count, size_bytes, dumping_query) " +
		" values (?1, ?2, ?3, ?4, ?5, ?6, ?7) " +
		" on conflict (id) do update set row_count=?5, size_bytes=?6, dumping_query=?7 "
	if !entity.ID.Valid {
		entity.ID = MakeTableID(entity)
	}
	_, err = executor(ctx, r.Db).ExecContext(ctx, sqlText, r.fieldReferences(entity)...)
	if err != nil {
		err = errors.Wrapf(err, "saving table %v", entity.ID.String)
		return
	}
	saved = entity
	return
}

func (r SqliteColumnRepo) fieldReferences(c *Column) (refs []interface{}) {
	refs = make([]interface{}, 0, 8)
	refs = append(refs, &c.ID)
	refs = append(refs, &c.TableID)
	refs = append(refs, &c.Name)
	refs = append(refs, &c.Position)
	refs = append(refs, &c.DataType)
	refs = append(refs, &c.Kind)
	refs = append(refs, &c.EmptyCount)
	refs = append(refs, &c.UniqueCount)
	return
}

func (r SqliteColumnRepo) findBy(ctx context.Context, whereExpr string, params []interface{}) (entities []*Column, err error) {
	sqlText := "select id, mtd_tab_id, column_name, position, data_type, " +
		"kind, empty_count, unique_count " +
		"from mtd_cols "

	rs, err := r.Db.QueryContext(ctx, sqlText+whereExpr, params...)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	defer rs.Close()
	entities = make([]*Column, 0)
	for rs.Next() {
		entity := &Column{}
		if err = rs.Scan(r.fieldReferences(entity)...); err != nil {
			err = errors.WithStack(err)
			return
		}
		entities = append(entities, entity)
	}
	err = errors.WithStack(rs.Err())
	return
}

func (r SqliteColumnRepo) FindByTableID(ctx context.Context, tableID ID) (cc []*Column, err error) {
	return r.findBy(ctx, "where mtd_tab_id=? order by position, id", []interface{}{tableID})
}

func (r SqliteColumnRepo) Save(ctx context.Context, entity *Column) (saved *Column, err error) {
	var sqlText = "insert into mtd_cols(id, mtd_tab_id, column_name, position, data_type, " +
		"kind, empty_count, unique_count) " +
		" values (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8) " +
		" on conflict (id) do update set position=?4, data_type=?5, kind=?6, empty_count=?7, unique_count=?8"
	if !entity.ID.Valid {
		entity.ID = MakeColumnID(entity)
	}
	_, err = executor(ctx, r.Db).ExecContext(ctx, sqlText, r.fieldReferences(entity)...)
	if err != nil {
		err = errors.Wrapf(err, "saving column %v", entity.ID.String)
		return
	}
	saved = entity
	return
}
