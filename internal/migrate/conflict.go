package migrate

import (
	"context"
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4/database"

	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/migrations"
)

// tableExists looks t up in the store's catalog
func tableExists(ctx context.Context, db *sql.DB, d ddl.Dialect, table string) (bool, error) {
	var query string
	switch d.Name() {
	case ddl.PostgresName:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
	case ddl.MySQLName:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	default:
		query = "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
	}

	var n int
	if err := db.QueryRowContext(ctx, query, table).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// checkConflicts fails with *dberr.SchemaConflict when a pending migration
// would create a table that already exists
func checkConflicts(ctx context.Context, db *sql.DB, d ddl.Dialect, pending []migrations.Migration) error {
	for _, mig := range pending {
		for _, t := range mig.Tables {
			exists, err := tableExists(ctx, db, d, t.Name)
			if err != nil {
				return err
			}
			if exists {
				return &dberr.SchemaConflict{Object: "table", Name: t.Name}
			}
		}
	}
	return nil
}

// driverCause returns the database error behind a golang-migrate driver error
func driverCause(err error) error {
	var ptr *database.Error
	if errors.As(err, &ptr) && ptr.OrigErr != nil {
		return ptr.OrigErr
	}
	var val database.Error
	if errors.As(err, &val) && val.OrigErr != nil {
		return val.OrigErr
	}
	return err
}

// classifyDDL turns "already exists" driver errors into *dberr.SchemaConflict
func classifyDDL(err error) error {
	var conflict *dberr.SchemaConflict
	if errors.As(dberr.Classify(driverCause(err)), &conflict) {
		return conflict
	}
	return err
}
