package schoolschema_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tordrt/schoolschema"
	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/model"
)

func TestOpenStoreSurfacesTypedErrors(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "school.db")
	if _, err := schoolschema.ApplySchema(ctx, url, nil); err != nil {
		t.Fatalf("ApplySchema failed: %v", err)
	}

	s, closer, err := schoolschema.OpenStore(ctx, url, nil)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer func() { _ = closer.Close() }()

	newCourse := func(name string) *model.Course {
		return &model.Course{
			Code: "MATH101", Name: name, Level: "Grade 10", Subject: "Mathematics",
			AcademicYear: "2024-2025", Semester: model.SemesterFirst,
		}
	}
	if err := s.CreateCourse(ctx, newCourse("Algebra")); err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}

	err = s.CreateCourse(ctx, newCourse("Algebra, again"))
	var v *dberr.ConstraintViolation
	if !errors.As(err, &v) {
		t.Fatalf("Expected *dberr.ConstraintViolation, got %T: %v", err, err)
	}
	if v.Kind != dberr.KindUnique || v.Table != model.TableCourses || v.Column != "code" {
		t.Errorf("Expected unique violation on courses.code, got %s on %s.%s", v.Kind, v.Table, v.Column)
	}

	if _, err := s.GetCourse(ctx, 9999); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("Expected dberr.ErrNotFound for an unknown id, got %v", err)
	}
}

func TestApplySchemaSurfacesSchemaConflict(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "school.db")

	conn, err := schoolschema.Connect(ctx, url, "")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := conn.DB.ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("failed to create conflicting table: %v", err)
	}
	_ = conn.Close()

	_, err = schoolschema.ApplySchema(ctx, url, nil)
	var conflict *dberr.SchemaConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected *dberr.SchemaConflict, got %v", err)
	}
	if conflict.Name != "users" {
		t.Errorf("Expected conflict on users, got %q", conflict.Name)
	}
}

func TestOpenStoreRejectsBadURL(t *testing.T) {
	if _, _, err := schoolschema.OpenStore(context.Background(), "oracle://school", nil); err == nil {
		t.Error("Expected an error for an unsupported URL")
	}
}
