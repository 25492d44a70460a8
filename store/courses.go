package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/internal/ddl"
	m "github.com/tordrt/schoolschema/model"
)

func courseFields(c *m.Course) []field {
	return []field{
		{"code", c.Code, &c.Code},
		{"name", c.Name, &c.Name},
		{"description", c.Description, &c.Description},
		{"level", c.Level, &c.Level},
		{"subject", c.Subject, &c.Subject},
		{"teacher_id", c.TeacherID, &c.TeacherID},
		{"credits", c.Credits, &c.Credits},
		{"max_students", c.MaxStudents, &c.MaxStudents},
		{"schedule", asJSON(&c.Schedule), asJSON(&c.Schedule)},
		{"status", string(c.Status), &c.Status},
		{"academic_year", c.AcademicYear, &c.AcademicYear},
		{"semester", string(c.Semester), &c.Semester},
		{"created_at", c.CreatedAt, &c.CreatedAt},
		{"updated_at", c.UpdatedAt, &c.UpdatedAt},
	}
}

// CreateCourse inserts c with its enrolled students, in order, and sets its
// ID. Status defaults to active. A course code already in use is rejected
// with a unique violation on code.
func (s *Store) CreateCourse(ctx context.Context, c *m.Course) error {
	if c.Status == "" {
		c.Status = m.CourseActive
	}
	if err := s.check(m.TableCourses, c); err != nil {
		return err
	}
	if c.MaxStudents > 0 && len(c.EnrolledStudents) > c.MaxStudents {
		return courseFull(c.MaxStudents)
	}
	s.touch(&c.Timestamps)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		id, err := s.insert(ctx, tx, m.TableCourses, courseFields(c))
		if err != nil {
			return err
		}
		for i, studentID := range c.EnrolledStudents {
			if err := s.insertEnrollment(ctx, tx, id, studentID, i); err != nil {
				return err
			}
		}
		c.ID = id
		s.logger.Debug("course created", zap.Int64("id", id), zap.String("code", c.Code))
		return nil
	})
}

func (s *Store) insertEnrollment(ctx context.Context, q dbtx, courseID, studentID int64, position int) error {
	now := s.stamp()
	_, err := s.insert(ctx, q, m.TableCourseEnrollments, []field{
		{col: "course_id", val: courseID},
		{col: "student_id", val: studentID},
		{col: "position", val: position},
		{col: "created_at", val: now},
		{col: "updated_at", val: now},
	})
	return err
}

func courseFull(max int) error {
	return &dberr.ConstraintViolation{
		Kind:   dberr.KindRange,
		Table:  m.TableCourseEnrollments,
		Column: "student_id",
		Detail: fmt.Sprintf("course is full (max_students=%d)", max),
	}
}

// GetCourse returns the course with its enrolled students in enrollment order
func (s *Store) GetCourse(ctx context.Context, id int64) (*m.Course, error) {
	c := &m.Course{ID: id}
	if err := s.get(ctx, s.db, m.TableCourses, id, courseFields(c)); err != nil {
		return nil, err
	}
	enrolled, err := s.enrolledStudents(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	c.EnrolledStudents = enrolled
	return c, nil
}

func (s *Store) enrolledStudents(ctx context.Context, q dbtx, courseID int64) ([]int64, error) {
	return queryList[int64](ctx, q, ddl.Rebind(s.dialect,
		"SELECT student_id FROM course_enrollments WHERE course_id = ? ORDER BY position, id"), courseID)
}

// lockCourseQuery reads a course's capacity and locks its row until the
// transaction ends, so concurrent enrollments count the list one at a time.
// SQLite transactions begin immediate and already hold the write lock.
func (s *Store) lockCourseQuery() string {
	q := "SELECT max_students FROM courses WHERE id = ?"
	if s.dialect.Name() != ddl.SQLiteName {
		q += " FOR UPDATE"
	}
	return ddl.Rebind(s.dialect, q)
}

// Enroll appends a student to a course's enrollment list. Enrolling the
// same student twice is a unique violation; enrolling past max_students
// (when set) is rejected.
func (s *Store) Enroll(ctx context.Context, courseID, studentID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var maxStudents, enrolled, last int
		err := tx.QueryRowContext(ctx, s.lockCourseQuery(), courseID).Scan(&maxStudents)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s %d: %w", m.TableCourses, courseID, dberr.ErrNotFound)
		}
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, ddl.Rebind(s.dialect,
			"SELECT COUNT(*), COALESCE(MAX(position), -1) FROM course_enrollments WHERE course_id = ?"),
			courseID).Scan(&enrolled, &last)
		if err != nil {
			return err
		}
		if maxStudents > 0 && enrolled >= maxStudents {
			return courseFull(maxStudents)
		}
		return s.insertEnrollment(ctx, tx, courseID, studentID, last+1)
	})
}

// SetCourseStatus moves a course to status
func (s *Store) SetCourseStatus(ctx context.Context, id int64, status m.CourseStatus) error {
	if err := s.enumValue(m.TableCourses, "status", string(status), status.Valid()); err != nil {
		return err
	}
	return s.update(ctx, s.db, m.TableCourses, id, []field{{col: "status", val: string(status)}})
}

// DeleteCourse removes a course with its grades, assignments and enrollments
func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableCourses, id)
}

func gradeFields(g *m.Grade) []field {
	return []field{
		{"student_id", g.StudentID, &g.StudentID},
		{"course_id", g.CourseID, &g.CourseID},
		{"teacher_id", g.TeacherID, &g.TeacherID},
		{"exam_type", string(g.ExamType), &g.ExamType},
		{"marks", g.Marks, &g.Marks},
		{"total_marks", g.TotalMarks, &g.TotalMarks},
		{"percentage", nullableDecimal(g.Percentage), &g.Percentage},
		{"grade", nullableString(g.Grade), &g.Grade},
		{"remarks", g.Remarks, &g.Remarks},
		{"academic_year", g.AcademicYear, &g.AcademicYear},
		{"semester", string(g.Semester), &g.Semester},
		{"exam_date", dateOnly(g.ExamDate), &g.ExamDate},
		{"created_at", g.CreatedAt, &g.CreatedAt},
		{"updated_at", g.UpdatedAt, &g.UpdatedAt},
	}
}

// CreateGrade inserts g and sets its ID. Percentage and letter grade are
// derived from the marks when not given.
func (s *Store) CreateGrade(ctx context.Context, g *m.Grade) error {
	if err := s.check(m.TableGrades, g); err != nil {
		return err
	}
	if !g.TotalMarks.IsPositive() {
		return &dberr.ConstraintViolation{
			Kind: dberr.KindRange, Table: m.TableGrades, Column: "total_marks",
			Value: g.TotalMarks.String(), Detail: "must be greater than 0",
		}
	}
	if g.Marks.IsNegative() {
		return &dberr.ConstraintViolation{
			Kind: dberr.KindRange, Table: m.TableGrades, Column: "marks",
			Value: g.Marks.String(), Detail: "must not be negative",
		}
	}
	g.Derive()

	amounts := []amount{{"marks", g.Marks}, {"total_marks", g.TotalMarks}}
	if g.Percentage != nil {
		amounts = append(amounts, amount{"percentage", *g.Percentage})
	}
	if err := s.checkDecimals(m.TableGrades, amounts...); err != nil {
		return err
	}
	s.touch(&g.Timestamps)

	id, err := s.insert(ctx, s.db, m.TableGrades, gradeFields(g))
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

// GetGrade returns the grade with the given id
func (s *Store) GetGrade(ctx context.Context, id int64) (*m.Grade, error) {
	g := &m.Grade{ID: id}
	if err := s.get(ctx, s.db, m.TableGrades, id, gradeFields(g)); err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGrade removes a grade
func (s *Store) DeleteGrade(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableGrades, id)
}

// nullableString converts an optional enum value to a driver value
func nullableString[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// queryList scans a single-column result into a slice
func queryList[T any](ctx context.Context, q dbtx, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var v T
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
