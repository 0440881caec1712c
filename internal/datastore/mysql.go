package datastore

import (
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
}

// Backend names the storage engine.
func (store *MySQLStore) Backend() string { return "mysql" }

// mysqlConfig builds the driver configuration from settings. Credentials are
// set on the parsed config so they need no DSN escaping.
func (store *MySQLStore) mysqlConfig() (*mysql.Config, error) {
	s := store.Settings.Output.MySQL
	cfg, err := mysql.ParseDSN(fmt.Sprintf("tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		net.JoinHostPort(s.Host, s.Port), s.Database))
	if err != nil {
		return nil, err
	}
	cfg.User = s.Username
	cfg.Passwd = s.Password
	return cfg, nil
}

// Open connects to MySQL and migrates the schema.
func (store *MySQLStore) Open() error {
	cfg, err := store.mysqlConfig()
	if err != nil {
		return errors.New(err).
			Component(componentDatastore).
			Category(errors.CategoryConfiguration).
			Build()
	}

	db, err := gorm.Open(gormmysql.Open(cfg.FormatDSN()), store.gormConfig())
	if err != nil {
		store.log.Error("failed to open MySQL database",
			logger.String("address", cfg.Addr),
			logger.String("database", cfg.DBName),
			logger.Error(err))
		return dbError(err, "open", "")
	}

	return store.attach(db, "MySQL", cfg.Addr+"/"+cfg.DBName)
}
