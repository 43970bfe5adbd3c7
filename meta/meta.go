// Package meta keeps table and column metadata: dump descriptions read
// from JSON and profile statistics persisted in SQLite.
package meta

import (
	log "github.com/sirupsen/logrus"
)

var logger = log.StandardLogger()

func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}
