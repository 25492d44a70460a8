package migrate

import (
	"fmt"
	"slices"
	"strings"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/migrations"
)

// fileName is the source file golang-migrate expects for one direction of mig
func fileName(mig migrations.Migration, direction string) string {
	return fmt.Sprintf("%d_%s.%s.sql", mig.Version, mig.Name, direction)
}

// upSQL creates the tables of mig with their indexes
func upSQL(d ddl.Dialect, mig migrations.Migration) string {
	var stmts []string
	for _, t := range mig.Tables {
		stmts = append(stmts, ddl.CreateTable(d, t)...)
	}
	return strings.Join(stmts, ";\n\n") + ";\n"
}

// downSQL drops the tables of mig, last created first
func downSQL(d ddl.Dialect, mig migrations.Migration) string {
	var stmts []string
	for _, t := range slices.Backward(mig.Tables) {
		stmts = append(stmts, ddl.DropTable(d, t))
	}
	return strings.Join(stmts, ";\n") + ";\n"
}

// sourceFS renders every migration for d as up/down SQL files
func sourceFS(d ddl.Dialect, list []migrations.Migration) fstest.MapFS {
	fsys := make(fstest.MapFS, 2*len(list))
	for _, mig := range list {
		fsys[fileName(mig, "up")] = &fstest.MapFile{Data: []byte(upSQL(d, mig))}
		fsys[fileName(mig, "down")] = &fstest.MapFile{Data: []byte(downSQL(d, mig))}
	}
	return fsys
}

func newSource(d ddl.Dialect, list []migrations.Migration) (source.Driver, error) {
	src, err := iofs.New(sourceFS(d, list), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load migration files: %w", err)
	}
	return src, nil
}
