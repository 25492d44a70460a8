// Package migrate applies and reverts the school migrations against a live
// database with golang-migrate. Each migration is rendered to up and down
// SQL for the connected dialect.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/migrations"
)

// TrackingTable records the applied version
const TrackingTable = "schema_migrations"

// runMu serializes runs within the process. Across processes the
// PostgreSQL and MySQL drivers hold a database lock for each run.
var runMu sync.Mutex

// Status describes one migration and whether it has been applied. Dirty
// marks a migration that failed part way and needs manual repair.
type Status struct {
	Version int64
	Name    string
	Applied bool
	Dirty   bool
}

// Migrator runs migrations for one database
type Migrator struct {
	db      *sql.DB
	dialect ddl.Dialect
	list    []migrations.Migration
	logger  *zap.Logger
	engine  *migrate.Migrate
}

// New creates a Migrator. A nil logger discards output.
func New(db *sql.DB, dialect ddl.Dialect, list []migrations.Migration, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{
		db:      db,
		dialect: dialect,
		list:    list,
		logger:  logger,
	}
}

// state is the applied position of the database
type state struct {
	version int64
	has     bool
	dirty   bool
	applied int
}

// Up applies every pending migration in order and returns how many it
// applied. A table that already exists aborts the run with
// *dberr.SchemaConflict before anything is created.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := migrations.Validate(m.list); err != nil {
		return 0, err
	}

	var count int
	err := m.run(ctx, "up", func(log *zap.Logger, e *migrate.Migrate) error {
		before, err := m.state(e)
		if err != nil {
			return err
		}
		if before.dirty {
			return fmt.Errorf("migration %d failed earlier and left the database dirty", before.version)
		}
		if err := checkConflicts(ctx, m.db, m.dialect, m.pending(before)); err != nil {
			return err
		}

		upErr := e.Up()
		if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
			m.recover(log, e)
		}
		after, err := m.state(e)
		if err != nil {
			return err
		}
		count = after.applied - before.applied

		if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
			log.Error("migration failed", zap.Int("applied", count), zap.Error(upErr))
			return fmt.Errorf("migration failed: %w", classifyDDL(upErr))
		}
		log.Info("migrations applied", zap.Int("count", count), zap.Int64("version", after.version))
		return nil
	})
	return count, err
}

// Down reverts the last steps applied migrations, newest first. steps <= 0
// reverts all of them.
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	var count int
	err := m.run(ctx, "down", func(log *zap.Logger, e *migrate.Migrate) error {
		before, err := m.state(e)
		if err != nil {
			return err
		}
		if before.applied == 0 {
			return nil
		}

		if steps <= 0 || steps >= before.applied {
			err = e.Down()
		} else {
			err = e.Steps(-steps)
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("revert failed: %w", err)
		}

		after, err := m.state(e)
		if err != nil {
			return err
		}
		count = before.applied - after.applied
		log.Info("migrations reverted", zap.Int("count", count))
		return nil
	})
	return count, err
}

// Status reports every known migration, plus an applied version this build
// does not know, ordered by version
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	var out []Status
	err := m.run(ctx, "status", func(_ *zap.Logger, e *migrate.Migrate) error {
		st, err := m.state(e)
		if err != nil {
			return err
		}

		known := false
		for _, mig := range m.list {
			s := Status{Version: mig.Version, Name: mig.Name}
			if st.has && mig.Version <= st.version {
				s.Dirty = st.dirty && mig.Version == st.version
				s.Applied = !s.Dirty
			}
			known = known || mig.Version == st.version
			out = append(out, s)
		}
		if st.has && !known {
			out = append(out, Status{Version: st.version, Name: "unknown", Applied: !st.dirty, Dirty: st.dirty})
			slices.SortFunc(out, func(a, b Status) int { return compareInt64(a.Version, b.Version) })
		}
		return nil
	})
	return out, err
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// run takes the process lock, opens the engine on first use and calls fn.
// Cancelling ctx stops the engine after the migration in progress.
func (m *Migrator) run(ctx context.Context, op string, fn func(*zap.Logger, *migrate.Migrate) error) error {
	runMu.Lock()
	defer runMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := m.open()
	if err != nil {
		return err
	}

	log := m.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("op", op),
		zap.String("dialect", m.dialect.Name()))

	stopCh := make(chan bool, 1)
	e.GracefulStop = stopCh
	stop := context.AfterFunc(ctx, func() {
		select {
		case stopCh <- true:
		default:
		}
	})
	defer stop()

	err = fn(log, e)
	if ctx.Err() != nil {
		// a stopped engine stays stopped
		m.engine = nil
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// open builds the golang-migrate engine once per Migrator. It is not
// closed: closing a driver closes the *sql.DB it wraps.
func (m *Migrator) open() (*migrate.Migrate, error) {
	if m.engine != nil {
		return m.engine, nil
	}

	src, err := newSource(m.dialect, m.list)
	if err != nil {
		return nil, err
	}
	drv, err := newDriver(m.db, m.dialect)
	if err != nil {
		return nil, err
	}
	e, err := migrate.NewWithInstance("iofs", src, m.dialect.Name(), drv)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}
	e.Log = zapLog{log: m.logger.Sugar()}
	m.engine = e
	return e, nil
}

func (m *Migrator) state(e *migrate.Migrate) (state, error) {
	v, dirty, err := e.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return state{}, nil
	}
	if err != nil {
		return state{}, fmt.Errorf("failed to read %s: %w", TrackingTable, err)
	}

	st := state{version: int64(v), has: true, dirty: dirty}
	for _, mig := range m.list {
		if mig.Version < st.version || (mig.Version == st.version && !dirty) {
			st.applied++
		}
	}
	return st, nil
}

func (m *Migrator) pending(st state) []migrations.Migration {
	var out []migrations.Migration
	for _, mig := range m.list {
		if !st.has || mig.Version > st.version {
			out = append(out, mig)
		}
	}
	return out
}

// recover resets a dirty version left by a failed migration to the one
// before it. PostgreSQL and SQLite roll the failed DDL back; on MySQL every
// statement commits, so tables the failed migration created are dropped.
// Conflicts are checked beforehand, so none of them predate the run.
func (m *Migrator) recover(log *zap.Logger, e *migrate.Migrate) {
	v, dirty, err := e.Version()
	if err != nil || !dirty {
		return
	}
	i := slices.IndexFunc(m.list, func(mig migrations.Migration) bool { return mig.Version == int64(v) })
	if i < 0 {
		return
	}

	if m.dialect.Name() == ddl.MySQLName {
		for _, t := range slices.Backward(m.list[i].Tables) {
			if _, err := m.db.Exec(ddl.DropTableIfExists(m.dialect, t)); err != nil {
				log.Warn("failed to drop partially created table", zap.String("table", t.Name), zap.Error(err))
			}
		}
	}

	prev := -1
	if i > 0 {
		prev = int(m.list[i-1].Version)
	}
	if err := e.Force(prev); err != nil {
		log.Warn("failed to reset dirty version", zap.Uint("version", v), zap.Error(err))
	}
}
