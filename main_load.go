package main

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"time"

	pb "github.com/cheggaaa/pb"
	"github.com/ovlad32/colstore/meta"
	"github.com/ovlad32/colstore/profile"
	"github.com/ovlad32/colstore/sources"
	"github.com/ovlad32/colstore/storage"
	"github.com/ovlad32/colstore/table"
	"github.com/pkg/errors"
)

type progressHandler struct {
	sources.RowHandler
	bar *pb.ProgressBar
}

func (h progressHandler) Handle(cx context.Context, rowNumber int, values []sql.NullString) error {
	h.bar.Increment()
	return h.RowHandler.Handle(cx, rowNumber, values)
}

func newTable(wc WorkConfType, tableDesc *meta.TableDescription) (*table.Table, error) {
	fp, collator, err := tableDesc.Options(wc.Culture, wc.Collation)
	if err != nil {
		return nil, err
	}
	return table.New(tableDesc.TableName, table.WithFormat(fp), table.WithCollation(collator)), nil
}

func mainLoad(ctx context.Context, wc WorkConfType, mdService meta.MetadataService, tableDesc *meta.TableDescription) (err error) {
	loadStartTime := time.Now()
	var creds *meta.DbCredsDesc
	if len(tableDesc.DumpFile) == 0 {
		if len(tableDesc.DbDescFile) == 0 {
			return errors.Errorf("Neither path to dump file nor datasource connection details configured for table %v", tableDesc.Tag)
		}
		creds = &meta.DbCredsDesc{}
		logger.Infof("Reading table datasource configuration...")
		if err = creds.Load(tableDesc.DbDescFile); err != nil {
			return err
		}
		if err = creds.DetermineDumpingColumns(ctx, tableDesc); err != nil {
			return err
		}
	}
	if len(tableDesc.Columns) == 0 {
		return errors.Errorf("No columns described for table %v", tableDesc.Tag)
	}

	t, err := newTable(wc, tableDesc)
	if err != nil {
		return err
	}
	loader := table.NewLoader(t)
	for _, cd := range tableDesc.Columns {
		kind, erre := cd.Kind()
		if erre != nil {
			return erre
		}
		if _, err = t.AddColumn(cd.Name, kind); err != nil {
			return err
		}
		if n := sources.NewNormalizer(cd.LeadingChar, cd.StopWords); n != nil {
			if err = loader.Normalize(cd.Name, n); err != nil {
				return err
			}
		}
	}

	if creds == nil {
		fl, erre := os.Open(tableDesc.DumpFile)
		if erre != nil {
			return errors.Wrapf(erre, "Opening file %v", tableDesc.DumpFile)
		}
		defer fl.Close()
		info, erre := fl.Stat()
		if erre != nil {
			return errors.Wrapf(erre, "Reading size of %v", tableDesc.DumpFile)
		}
		bar := pb.New64(info.Size()).SetUnits(pb.U_BYTES)
		bar.Start()
		logger.Infof("Start loading dump file %v", tableDesc.DumpFile)
		_, err = sources.TextStream(ctx,
			bar.NewProxyReader(bufio.NewReader(fl)),
			meta.NewTextRowHandlerAdapter(loader, tableDesc),
		)
		bar.Finish()
		if err != nil {
			return err
		}
	} else {
		bar := pb.New(0)
		bar.Start()
		logger.Info("Start loading. Requesting data from the database...")
		err = creds.RunQuery(ctx,
			func(rows *sql.Rows) (err error) {
				_, err = sources.SqlRowsStream(ctx, rows, progressHandler{RowHandler: loader, bar: bar})
				return err
			},
			tableDesc.GetDumpingQuery(),
		)
		bar.Finish()
		if err != nil {
			return err
		}
	}
	logger.Infof("Loaded %v rows into %v columns", loader.Loaded(), len(t.Columns()))

	storageDir := tableDesc.StorageDir(wc.StorageDir)
	if _, err = meta.WriteToStorageFile(storageDir, meta.TableStorageFileName, t); err != nil {
		return errors.Wrapf(err, "Storing %v table data", tableDesc.Tag)
	}
	builder := profile.NewBuilder()
	index := profile.NewValueIndex()
	builder.Register(profile.NewValueIndexStrategy(index))
	p, err := t.ProfileWith(builder)
	if err != nil {
		return err
	}
	if _, err = meta.WriteToStorageFile(storageDir, meta.ProfileStorageFileName, builder); err != nil {
		return errors.Wrapf(err, "Storing %v table profile", tableDesc.Tag)
	}
	if _, err = meta.WriteToStorageFile(storageDir, meta.IndexStorageFileName, index); err != nil {
		return errors.Wrapf(err, "Storing %v table value index", tableDesc.Tag)
	}
	if _, _, err = mdService.SaveProfile(ctx, tableDesc, p); err != nil {
		return err
	}
	logger.Infof("Finish loading. Total time: %v", time.Since(loadStartTime))
	return
}

func mainRestore(wc WorkConfType, tableDesc *meta.TableDescription, xmlFile, findValue string) (err error) {
	t, err := newTable(wc, tableDesc)
	if err != nil {
		return err
	}
	storageDir := tableDesc.StorageDir(wc.StorageDir)
	if _, err = meta.ReadFromStorageFile(t, storageDir, meta.TableStorageFileName); err != nil {
		return err
	}
	builder := profile.NewBuilder()
	if _, err = meta.ReadFromStorageFile(builder, storageDir, meta.ProfileStorageFileName); err != nil {
		return err
	}
	logger.Infof("Table %v: %v rows", t.Name(), t.RowCount())
	for _, c := range t.Columns() {
		fields := map[string]interface{}{
			"column": c.Name(),
			"kind":   c.Kind().String(),
			"nulls":  builder.NullRows().Count(c.Name()),
		}
		if n, erre := builder.Cardinality().Cardinality(c.Name()); erre == nil {
			fields["distinct"] = n
		}
		for _, agg := range []storage.AggregateKind{storage.Min, storage.Max} {
			v, erre := t.Aggregate(c.Name(), nil, agg)
			if errors.Is(erre, storage.ErrUnsupportedAggregate) {
				continue
			}
			if erre != nil {
				return erre
			}
			fields[agg.String()] = v
		}
		logger.WithFields(fields).Info("column")
	}
	if findValue != "" {
		index := profile.NewValueIndex()
		if _, err = meta.ReadFromStorageFile(index, storageDir, meta.IndexStorageFileName); err != nil {
			return err
		}
		for _, c := range t.Columns() {
			rows, erre := t.Lookup(index, c.Name(), findValue)
			if erre != nil {
				logger.Debugf("%v is not a %v value: %v", findValue, c.Kind(), erre)
				continue
			}
			if len(rows) > 0 {
				logger.WithField("column", c.Name()).Infof("%v found in rows %v", findValue, rows)
			}
		}
	}
	if xmlFile == "" {
		return
	}
	fl, err := os.Create(xmlFile)
	if err != nil {
		return errors.Wrapf(err, "Creating file %v", xmlFile)
	}
	defer func() {
		if cerr := fl.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing file %v", xmlFile)
		}
	}()
	buf := bufio.NewWriter(fl)
	if err = t.WriteXML(buf); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return errors.WithStack(err)
	}
	logger.Infof("Table %v written to %v", t.Name(), xmlFile)
	return
}
