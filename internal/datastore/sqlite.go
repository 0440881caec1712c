package datastore

import (
	"net/url"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/graphing-app/internal/errors"
)

// sqliteBusyTimeoutMs bounds how long a writer waits for the database lock.
const sqliteBusyTimeoutMs = "5000"

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
}

// Backend names the storage engine.
func (store *SQLiteStore) Backend() string { return "sqlite" }

// sqliteDSN enables foreign key enforcement on every pooled connection.
func sqliteDSN(path string) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", sqliteBusyTimeoutMs)
	params.Set("_journal_mode", "WAL")
	return "file:" + path + "?" + params.Encode()
}

// Open creates the database file if needed and migrates the schema.
func (store *SQLiteStore) Open() error {
	path := store.Settings.Output.SQLite.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(err).
				Component(componentDatastore).
				Category(errors.CategoryFileIO).
				Context("path", dir).
				Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), store.gormConfig())
	if err != nil {
		return dbError(err, "open", "")
	}

	return store.attach(db, "SQLite", path)
}
