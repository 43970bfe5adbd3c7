package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ovlad32/colstore/meta"
	"github.com/ovlad32/colstore/sources"
	"github.com/ovlad32/colstore/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

/*
rm colstore.db3; go run . -mode=init
go run . -mode=load -tag="orders"
go run . -mode=restore -tag="orders" -xml=./orders.xml -find=42
go run ./cmd/colstat
*/
var logger = log.New()

var mode string
var metaFile string
var workConfFile string
var tableTag string
var xmlFile string
var findValue string

func init() {
	flag.StringVar(&mode, "mode", "", "usage mode: init,load,restore")
	flag.StringVar(&workConfFile, "conf", "./workconf.mtdsc.json", "config json file")
	flag.StringVar(&metaFile, "meta", "./tables.mtdsc.json", "Metadata json file")
	flag.StringVar(&tableTag, "tag", "", "Tag of the table to load or restore")
	flag.StringVar(&xmlFile, "xml", "", "File to write the restored table to as XML")
	flag.StringVar(&findValue, "find", "", "Value to look up in the restored table")

	flag.Parse()
	logger.Out = os.Stdout

	table.SetLogger(logger)
	meta.SetLogger(logger)
	sources.SetLogger(logger)
}

type WorkConfType struct {
	SqliteConnString string `json:"sqlite-conn-string"`
	ShowCallerInLog  bool   `json:"show-caller-in-log"`
	LogLevel         string `json:"log-level"`
	// Culture and Collation apply to tables whose description sets neither.
	Culture    string `json:"culture"`
	Collation  string `json:"collation"`
	StorageDir string `json:"storage-dir"`
}

func readWorkConf() (wc WorkConfType, err error) {
	fl, err := os.Open(workConfFile)
	if err != nil {
		err = errors.Wrapf(err, "Opening file %v", workConfFile)
		return
	}
	defer fl.Close()
	err = json.NewDecoder(fl).Decode(&wc)
	if err != nil {
		err = errors.Wrapf(err, "Parsing json work config")
		return
	}
	if wc.SqliteConnString == "" {
		wc.SqliteConnString = "file:./colstore.db3"
	}
	if wc.StorageDir == "" {
		wc.StorageDir = "./fs"
	}
	return
}

func main() {
	logger.SetLevel(log.InfoLevel)
	logger.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	ctx := context.Background()
	wc, err := readWorkConf()
	if err != nil {
		logger.Fatal(errors.Wrap(err, "couldn't load work conf file"))
	}
	logger.SetReportCaller(wc.ShowCallerInLog)
	if wc.LogLevel != "" {
		level, err := log.ParseLevel(wc.LogLevel)
		if err != nil {
			logger.Fatal(err)
		}
		logger.SetLevel(level)
	}

	db, err := sql.Open("sqlite3", wc.SqliteConnString)
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()

	if strings.ToLower(mode) == "init" {
		if err = sqliteInit(ctx, db); err != nil {
			logger.Fatalf("%+v", err)
		}
		return
	}

	var dumpDesc = meta.DumpDesc{}
	if err = dumpDesc.Load(metaFile); err != nil {
		logger.Fatal(errors.Wrap(err, "couldn't load dump description file"))
	}
	if tableTag == "" {
		logger.Fatal("Table tag has not been specified")
	}
	tableDesc, found := dumpDesc.TaggedTable(tableTag)
	if !found {
		logger.Fatalf("Table with %v tag has not been found", tableTag)
	}

	switch strings.ToLower(mode) {
	case "load":
		mdService := meta.NewMetadataService(db)
		if err = mainLoad(ctx, wc, mdService, tableDesc); err != nil {
			logger.Fatalf("%+v", err)
		}
	case "restore":
		if err = mainRestore(wc, tableDesc, xmlFile, findValue); err != nil {
			logger.Fatalf("%+v", err)
		}
	default:
		flag.PrintDefaults()
		logger.Fatalf("\n\nunknown mode: %v", mode)
	}
}
