package main

import (
	"context"
	"database/sql"

	"github.com/ovlad32/colstore/meta"
	"github.com/pkg/errors"
)

func sqliteInit(ctx context.Context, db *sql.DB) error {
	if err := meta.Init(ctx, db); err != nil {
		return errors.Wrap(err, "creating metadata schema")
	}
	logger.Info("Metadata schema is ready")
	return nil
}
