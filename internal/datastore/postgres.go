package datastore

import (
	"fmt"
	"net"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tphakala/graphing-app/internal/logger"
)

// PostgresStore implements Interface for PostgreSQL via pgx.
type PostgresStore struct {
	DataStore
}

// Backend names the storage engine.
func (store *PostgresStore) Backend() string { return "postgres" }

// postgresURL builds a libpq connection URL from settings.
func (store *PostgresStore) postgresURL() string {
	s := store.Settings.Output.Postgres
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.Username, s.Password),
		Host:     net.JoinHostPort(s.Host, s.Port),
		Path:     "/" + s.Database,
		RawQuery: url.Values{"sslmode": []string{s.SSLMode}}.Encode(),
	}
	return u.String()
}

// Open connects through the pgx stdlib adapter and migrates the schema.
func (store *PostgresStore) Open() error {
	connConfig, err := pgx.ParseConfig(store.postgresURL())
	if err != nil {
		return dbError(err, "open", "")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: stdlib.OpenDB(*connConfig),
	}), store.gormConfig())
	if err != nil {
		store.log.Error("failed to open PostgreSQL database",
			logger.String("host", connConfig.Host),
			logger.String("database", connConfig.Database),
			logger.Error(err))
		return dbError(err, "open", "")
	}

	return store.attach(db, "PostgreSQL", fmt.Sprintf("%s:%d/%s", connConfig.Host, connConfig.Port, connConfig.Database))
}
