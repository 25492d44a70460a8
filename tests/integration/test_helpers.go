//go:build integration
// +build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/tordrt/schoolschema"
	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/internal/migrate"
	"github.com/tordrt/schoolschema/internal/migrations"
	"github.com/tordrt/schoolschema/internal/schema"
	m "github.com/tordrt/schoolschema/model"
	"github.com/tordrt/schoolschema/store"
)

// declaredTables lists every table the migrations create
func declaredTables() []string {
	var names []string
	for _, t := range migrations.NewCatalog(migrations.All()).Tables() {
		names = append(names, t.Name)
	}
	return names
}

// freshSchema reverts anything a previous run left behind and applies
// every migration
func freshSchema(t *testing.T, url string) {
	t.Helper()
	ctx := context.Background()

	if _, err := schoolschema.RevertSchema(ctx, url, 0, nil); err != nil {
		t.Fatalf("Failed to reset database: %v", err)
	}
	n, err := schoolschema.ApplySchema(ctx, url, nil)
	if err != nil {
		t.Fatalf("ApplySchema failed: %v", err)
	}
	if want := len(migrations.All()); n != want {
		t.Errorf("Expected %d migrations applied, got %d", want, n)
	}
	if n, err := schoolschema.ApplySchema(ctx, url, nil); err != nil || n != 0 {
		t.Errorf("Expected second ApplySchema to be a no-op, got %d, %v", n, err)
	}
}

// runSchemaSuite applies the migrations to the database at url and checks
// the live schema, the drift check and the error mapping against it
func runSchemaSuite(t *testing.T, url, schemaName string) {
	ctx := context.Background()
	freshSchema(t, url)

	drifts, err := schoolschema.VerifySchema(ctx, url, &schoolschema.Options{SchemaName: schemaName})
	if err != nil {
		t.Fatalf("VerifySchema failed: %v", err)
	}
	for _, d := range drifts {
		t.Errorf("Unexpected drift: %s", d)
	}

	s, err := schoolschema.ExtractSchema(ctx, url, &schoolschema.Options{
		SchemaName:    schemaName,
		ExcludeTables: []string{migrate.TrackingTable},
	})
	if err != nil {
		t.Fatalf("Failed to extract schema: %v", err)
	}
	verifyTablesExist(t, s, declaredTables())

	users := findTable(s, m.TableUsers)
	if users == nil {
		t.Fatal("Users table not found")
	}
	verifyPrimaryKey(t, users, []string{"id"})
	verifyColumns(t, users, []string{"id", "name", "email", "role", "phone", "created_at", "updated_at"})
	verifyUniqueConstraint(t, s, m.TableUsers, "email")
	verifyEnumValues(t, s, m.TableUsers, "role", m.UserRoleValues())

	verifyForeignKey(t, s, m.TableStudents, "user_id", m.TableUsers, "CASCADE")
	verifyForeignKey(t, s, m.TableCourses, "teacher_id", m.TableTeachers, "SET NULL")
	verifyForeignKey(t, s, m.TableCantineItems, "cantine_id", m.TableCantines, "CASCADE")
	verifyIndex(t, s, m.TablePayments, "idx_payments_student_id_status", []string{"student_id", "status"})
	verifyIndex(t, s, m.TableCourseEnrollments, "uq_course_enrollments_course_id_student_id", []string{"course_id", "student_id"})

	runConstraintChecks(t, url, schemaName)

	n, err := schoolschema.RevertSchema(ctx, url, 0, nil)
	if err != nil {
		t.Fatalf("RevertSchema failed: %v", err)
	}
	if want := len(migrations.All()); n != want {
		t.Errorf("Expected %d migrations reverted, got %d", want, n)
	}
}

// runConstraintChecks writes through the store and checks each driver's
// errors come back as the same typed violations
func runConstraintChecks(t *testing.T, url, schemaName string) {
	t.Helper()
	ctx := context.Background()

	conn, err := schoolschema.Connect(ctx, url, schemaName)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer func() { _ = conn.Close() }()
	s := store.New(conn.DB, conn.Dialect, nil)

	u := &m.User{Name: "Grace Hopper", Email: "grace@school.test"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	dup := &m.User{Name: "Grace Again", Email: u.Email}
	v := expectViolation(t, s.CreateUser(ctx, dup), dberr.KindUnique)
	if v.Table != m.TableUsers || v.Column != "email" {
		t.Errorf("Expected users.email, got %s.%s", v.Table, v.Column)
	}

	orphan := &m.Student{UserID: 424242, StudentNumber: "S-ORPHAN", Level: "Grade 9"}
	v = expectViolation(t, s.CreateStudent(ctx, orphan), dberr.KindForeignKey)
	if v.Table != m.TableStudents || v.Column != "user_id" {
		t.Errorf("Expected students.user_id, got %s.%s", v.Table, v.Column)
	}

	_, err = conn.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, role, created_at, updated_at) VALUES ('Eve', 'eve@school.test', 'janitor', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)")
	v = expectViolation(t, dberr.Classify(err), dberr.KindCheck)
	if v.Constraint != "chk_users_role" {
		t.Errorf("Expected constraint chk_users_role, got %q", v.Constraint)
	}
	migrations.NewCatalog(migrations.All()).Resolve(v)
	if v.Kind != dberr.KindEnum || v.Column != "role" {
		t.Errorf("Expected enum violation on role, got %s on %s", v.Kind, v.Column)
	}

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if err := s.DeleteUser(ctx, u.ID); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func expectViolation(t *testing.T, err error, kind dberr.Kind) *dberr.ConstraintViolation {
	t.Helper()
	var v *dberr.ConstraintViolation
	if !errors.As(err, &v) {
		t.Fatalf("Expected a constraint violation, got %v", err)
	}
	if v.Kind != kind {
		t.Fatalf("Expected %s violation, got %s: %v", kind, v.Kind, err)
	}
	return v
}

// verifyTablesExist checks that all expected tables are present in the schema
func verifyTablesExist(t *testing.T, s *schema.Schema, expectedTables []string) {
	t.Helper()

	if len(s.Tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(s.Tables))
	}

	for _, tableName := range expectedTables {
		if s.FindTable(tableName) == nil {
			t.Errorf("Expected table %s not found in schema", tableName)
		}
	}
}

// verifyColumns checks that expected columns exist in a table
func verifyColumns(t *testing.T, table *schema.Table, expectedColumns []string) {
	t.Helper()

	for _, colName := range expectedColumns {
		if table.FindColumn(colName) == nil {
			t.Errorf("Expected column %s not found in %s table", colName, table.Name)
		}
	}
}

// verifyPrimaryKey checks that a table has the expected primary key
func verifyPrimaryKey(t *testing.T, table *schema.Table, expectedPK []string) {
	t.Helper()

	if len(table.PrimaryKey) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
		return
	}

	for i, pk := range expectedPK {
		if table.PrimaryKey[i] != pk {
			t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
			return
		}
	}
}

// verifyUniqueConstraint checks that a column has a unique constraint
func verifyUniqueConstraint(t *testing.T, s *schema.Schema, tableName, columnName string) {
	t.Helper()

	col := findColumn(t, s, tableName, columnName)
	if col != nil && !col.IsUnique {
		t.Errorf("Expected %s column to have unique constraint", columnName)
	}
}

// verifyForeignKey checks that a foreign key exists and deletes as expected
func verifyForeignKey(t *testing.T, s *schema.Schema, tableName, sourceColumn, targetTable, onDelete string) {
	t.Helper()

	table := findTable(s, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
	}

	for _, rel := range table.Relations {
		if rel.TargetTable == targetTable && rel.SourceColumn == sourceColumn {
			if rel.OnDelete != onDelete {
				t.Errorf("Expected %s.%s on delete %s, got %q", tableName, sourceColumn, onDelete, rel.OnDelete)
			}
			return
		}
	}

	t.Errorf("Expected foreign key relationship from %s.%s to %s not found", tableName, sourceColumn, targetTable)
}

// verifyIndex checks that an index exists with the expected columns
func verifyIndex(t *testing.T, s *schema.Schema, tableName, indexName string, expectedColumns []string) {
	t.Helper()

	table := findTable(s, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
	}

	for _, idx := range table.Indexes {
		if idx.Name == indexName {
			if len(idx.Columns) != len(expectedColumns) {
				t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
				return
			}
			for i, col := range expectedColumns {
				if idx.Columns[i] != col {
					t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
					return
				}
			}
			return
		}
	}

	t.Errorf("Expected index %s on %s table not found", indexName, tableName)
}

// verifyEnumValues checks the allowed values of an enum column when the
// extractor reports them
func verifyEnumValues(t *testing.T, s *schema.Schema, tableName, columnName string, expectedValues []string) {
	t.Helper()

	col := findColumn(t, s, tableName, columnName)
	if col == nil || len(col.EnumValues) == 0 {
		return
	}
	if len(col.EnumValues) != len(expectedValues) {
		t.Errorf("Expected %d enum values for %s, got %d", len(expectedValues), columnName, len(col.EnumValues))
	}
}

func findTable(s *schema.Schema, tableName string) *schema.Table {
	return s.FindTable(tableName)
}

func findColumn(t *testing.T, s *schema.Schema, tableName, columnName string) *schema.Column {
	t.Helper()

	table := findTable(s, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
	}
	col := table.FindColumn(columnName)
	if col == nil {
		t.Errorf("Column %s not found in table %s", columnName, tableName)
	}
	return col
}
