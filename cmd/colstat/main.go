package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ovlad32/colstore/meta"
	log "github.com/sirupsen/logrus"
)

var sqlDbFile string
var tableID string
var logger = log.New()

func nullInt(v sql.NullInt64) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprint(v.Int64)
}

func main() {
	flag.StringVar(&sqlDbFile, "db", "file:./colstore.db3?mode=ro", "sqlite metadata database")
	flag.StringVar(&tableID, "table", "", "table ID to print; every table when empty")
	flag.Parse()
	meta.SetLogger(logger)

	db, err := sql.Open("sqlite3", sqlDbFile)
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	mds := meta.NewMetadataService(db)
	var ids []meta.ID
	if tableID != "" {
		ids = append(ids, meta.ID{String: tableID, Valid: true})
	} else {
		tables, err := mds.FindTables(ctx)
		if err != nil {
			logger.Fatalf("%+v", err)
		}
		for _, t := range tables {
			ids = append(ids, t.ID)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	for _, id := range ids {
		cache := meta.NewTableMetaCache(mds, id)
		t, err := cache.Table(ctx)
		if err != nil {
			logger.Fatalf("%+v", err)
		}
		columns, err := cache.Columns(ctx)
		if err != nil {
			logger.Fatalf("%+v", err)
		}
		fmt.Fprintf(w, "%v\trows: %v\t\t\t\n", t.ID.String, nullInt(t.RowCount))
		fmt.Fprintln(w, "#\tcolumn\tkind\tnulls\tdistinct")
		for _, c := range columns {
			fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
				c.Position, c.Name, c.Kind.String, nullInt(c.EmptyCount), nullInt(c.UniqueCount))
		}
		fmt.Fprintln(w, "\t\t\t\t")
	}
}
