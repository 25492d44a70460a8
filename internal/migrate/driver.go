package migrate

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4/database"
	mysqlmigrate "github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"go.uber.org/zap"

	"github.com/tordrt/schoolschema/internal/ddl"
)

// newDriver wraps db in the golang-migrate driver for d. The drivers keep
// the version in TrackingTable and lock it across processes
// (pg_advisory_lock, GET_LOCK); the SQLite driver only locks in-process.
func newDriver(db *sql.DB, d ddl.Dialect) (database.Driver, error) {
	var (
		drv database.Driver
		err error
	)
	switch d.Name() {
	case ddl.PostgresName:
		drv, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{MigrationsTable: TrackingTable})
	case ddl.MySQLName:
		drv, err = mysqlmigrate.WithInstance(db, &mysqlmigrate.Config{MigrationsTable: TrackingTable})
	case ddl.SQLiteName:
		drv, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{MigrationsTable: TrackingTable})
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", d.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	return drv, nil
}

// zapLog adapts a zap logger to golang-migrate's Logger
type zapLog struct {
	log *zap.SugaredLogger
}

func (l zapLog) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l zapLog) Verbose() bool {
	return false
}
