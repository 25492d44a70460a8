package migrate

import (
	"strings"
	"testing"

	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/migrations"
)

func TestSourceFS(t *testing.T) {
	list := migrations.All()
	fsys := sourceFS(ddl.SQLite{}, list)

	if len(fsys) != 2*len(list) {
		t.Fatalf("Expected %d files, got %d", 2*len(list), len(fsys))
	}

	first := list[0]
	up, ok := fsys["20240101000001_create_users_table.up.sql"]
	if !ok {
		t.Fatalf("Expected an up file for %d_%s", first.Version, first.Name)
	}
	if !strings.Contains(string(up.Data), `CREATE TABLE "users"`) {
		t.Errorf("Expected users DDL, got:\n%s", up.Data)
	}
}

func TestDownSQLDropsInReverse(t *testing.T) {
	var courses migrations.Migration
	for _, mig := range migrations.All() {
		if mig.Name == "create_courses_table" {
			courses = mig
		}
	}

	down := downSQL(ddl.Postgres{}, courses)
	enrollments := strings.Index(down, `DROP TABLE "course_enrollments"`)
	parent := strings.Index(down, `DROP TABLE "courses"`)
	if enrollments < 0 || parent < 0 {
		t.Fatalf("Expected both tables dropped, got:\n%s", down)
	}
	if enrollments > parent {
		t.Errorf("Expected course_enrollments dropped before courses, got:\n%s", down)
	}
}

func TestUpSQLIncludesIndexes(t *testing.T) {
	var payments migrations.Migration
	for _, mig := range migrations.All() {
		if mig.Name == "create_payments_table" {
			payments = mig
		}
	}

	up := upSQL(ddl.MySQL{}, payments)
	for _, want := range []string{"CREATE TABLE `payments`", "CREATE INDEX `idx_payments_due_date`", "CREATE INDEX `idx_payments_student_id_status`"} {
		if !strings.Contains(up, want) {
			t.Errorf("Expected %q in:\n%s", want, up)
		}
	}
	if strings.Count(up, ";") != strings.Count(up, "CREATE ") {
		t.Errorf("Expected one terminator per statement, got:\n%s", up)
	}
}
