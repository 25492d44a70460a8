package store

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/internal/ddl"
	m "github.com/tordrt/schoolschema/model"
)

// school is a small but complete set of related records
type school struct {
	teacher     *m.Teacher
	student     *m.Student
	course      *m.Course
	grade       *m.Grade
	assignment  *m.Assignment
	message     *m.Message
	event       *m.Event
	participant *m.User
}

func newGrade(studentID, courseID, teacherID int64) *m.Grade {
	return &m.Grade{
		StudentID: studentID, CourseID: courseID, TeacherID: teacherID,
		ExamType: m.ExamFinal, Marks: decimal.NewFromInt(45), TotalMarks: decimal.NewFromInt(50),
		AcademicYear: "2024-2025", Semester: m.SemesterFirst,
		ExamDate: time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC),
	}
}

func seedSchool(t *testing.T, s *Store) *school {
	t.Helper()
	ctx := context.Background()

	sc := &school{teacher: seedTeacher(t, s), student: seedStudent(t, s)}
	sc.course = seedCourse(t, s, &sc.teacher.ID, 0)
	if err := s.Enroll(ctx, sc.course.ID, sc.student.ID); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	sc.grade = newGrade(sc.student.ID, sc.course.ID, sc.teacher.ID)
	if err := s.CreateGrade(ctx, sc.grade); err != nil {
		t.Fatalf("CreateGrade failed: %v", err)
	}

	sc.assignment = &m.Assignment{
		CourseID: sc.course.ID, TeacherID: sc.teacher.ID,
		Title: "Quadratics", Subject: "Mathematics", Level: "Grade 10",
		DueDate: time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC),
	}
	if err := s.CreateAssignment(ctx, sc.assignment); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	sender, recipient := seedUser(t, s, m.RoleStaff), seedUser(t, s, m.RoleParent)
	sc.message = &m.Message{SenderID: sender.ID, RecipientID: recipient.ID, Subject: "Report", Content: "Term report attached"}
	if err := s.CreateMessage(ctx, sc.message); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	sc.participant = seedUser(t, s, m.RoleStudent)
	start := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	sc.event = &m.Event{
		Title: "Science fair", Type: m.EventAcademic,
		StartDate: start, EndDate: start.Add(4 * time.Hour),
		Participants: []int64{sc.participant.ID},
	}
	if err := s.CreateEvent(ctx, sc.event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return sc
}

func countRows(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestDeleteCascades(t *testing.T) {
	tests := []struct {
		name  string
		del   func(context.Context, *Store, *school) error
		check func(*testing.T, *Store, *school)
	}{
		{
			name: "teacher removes grade",
			del:  func(ctx context.Context, s *Store, sc *school) error { return s.DeleteTeacher(ctx, sc.teacher.ID) },
			check: func(t *testing.T, s *Store, sc *school) {
				_, err := s.GetGrade(context.Background(), sc.grade.ID)
				requireNotFound(t, err, "grade")
			},
		},
		{
			name: "teacher removes assignment",
			del:  func(ctx context.Context, s *Store, sc *school) error { return s.DeleteTeacher(ctx, sc.teacher.ID) },
			check: func(t *testing.T, s *Store, sc *school) {
				_, err := s.GetAssignment(context.Background(), sc.assignment.ID)
				requireNotFound(t, err, "assignment")
			},
		},
		{
			name: "course removes grade",
			del:  func(ctx context.Context, s *Store, sc *school) error { return s.DeleteCourse(ctx, sc.course.ID) },
			check: func(t *testing.T, s *Store, sc *school) {
				_, err := s.GetGrade(context.Background(), sc.grade.ID)
				requireNotFound(t, err, "grade")
			},
		},
		{
			name: "course removes assignment",
			del:  func(ctx context.Context, s *Store, sc *school) error { return s.DeleteCourse(ctx, sc.course.ID) },
			check: func(t *testing.T, s *Store, sc *school) {
				_, err := s.GetAssignment(context.Background(), sc.assignment.ID)
				requireNotFound(t, err, "assignment")
			},
		},
		{
			name: "sender removes message",
			del:  func(ctx context.Context, s *Store, sc *school) error { return s.DeleteUser(ctx, sc.message.SenderID) },
			check: func(t *testing.T, s *Store, sc *school) {
				_, err := s.GetMessage(context.Background(), sc.message.ID)
				requireNotFound(t, err, "message")
			},
		},
		{
			name: "recipient removes message",
			del:  func(ctx context.Context, s *Store, sc *school) error { return s.DeleteUser(ctx, sc.message.RecipientID) },
			check: func(t *testing.T, s *Store, sc *school) {
				_, err := s.GetMessage(context.Background(), sc.message.ID)
				requireNotFound(t, err, "message")
			},
		},
		{
			name: "student removes enrollments",
			del:  func(ctx context.Context, s *Store, sc *school) error { return s.DeleteStudent(ctx, sc.student.ID) },
			check: func(t *testing.T, s *Store, sc *school) {
				if n := countRows(t, s, "SELECT COUNT(*) FROM course_enrollments WHERE student_id = ?", sc.student.ID); n != 0 {
					t.Errorf("Expected enrollments to be removed, %d left", n)
				}
				got, err := s.GetCourse(context.Background(), sc.course.ID)
				if err != nil {
					t.Fatalf("Expected course to survive student deletion: %v", err)
				}
				if len(got.EnrolledStudents) != 0 {
					t.Errorf("Expected no enrolled students, got %v", got.EnrolledStudents)
				}
			},
		},
		{
			name: "user removes participation",
			del:  func(ctx context.Context, s *Store, sc *school) error { return s.DeleteUser(ctx, sc.participant.ID) },
			check: func(t *testing.T, s *Store, sc *school) {
				if n := countRows(t, s, "SELECT COUNT(*) FROM event_participants WHERE user_id = ?", sc.participant.ID); n != 0 {
					t.Errorf("Expected participation to be removed, %d left", n)
				}
				got, err := s.GetEvent(context.Background(), sc.event.ID)
				if err != nil {
					t.Fatalf("Expected event to survive participant deletion: %v", err)
				}
				if len(got.Participants) != 0 {
					t.Errorf("Expected no participants, got %v", got.Participants)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			sc := seedSchool(t, s)
			if err := tt.del(context.Background(), s, sc); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			tt.check(t, s, sc)
		})
	}
}

func TestGradeRejectsUnknownExamType(t *testing.T) {
	s := newStore(t)
	teacher, student := seedTeacher(t, s), seedStudent(t, s)
	course := seedCourse(t, s, &teacher.ID, 0)

	g := newGrade(student.ID, course.ID, teacher.ID)
	g.ExamType = "unknown"
	v := violation(t, s.CreateGrade(context.Background(), g), dberr.KindEnum)
	if v.Table != m.TableGrades || v.Column != "exam_type" {
		t.Errorf("Expected grades.exam_type, got %s.%s", v.Table, v.Column)
	}
	if v.Constraint != "chk_grades_exam_type" {
		t.Errorf("Expected constraint chk_grades_exam_type, got %q", v.Constraint)
	}
	if v.Value != m.ExamType("unknown") && v.Value != "unknown" {
		t.Errorf("Expected offending value unknown, got %v", v.Value)
	}
}

func TestBlankReceiptNumberIsNone(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	student := seedStudent(t, s)

	var ids []int64
	for _, receipt := range []string{"", "  "} {
		p := newPayment(student.ID)
		p.ReceiptNumber = &receipt
		if err := s.CreatePayment(ctx, p); err != nil {
			t.Fatalf("Expected blank receipt %q to count as none: %v", receipt, err)
		}
		if p.ReceiptNumber != nil {
			t.Errorf("Expected blank receipt to be stored as NULL, got %q", *p.ReceiptNumber)
		}
		ids = append(ids, p.ID)
	}

	// a blank value written around the store
	if err := s.update(ctx, s.db, m.TablePayments, ids[0], []field{{col: "receipt_number", val: ""}}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	paid, err := s.MarkPaymentPaid(ctx, ids[0], m.MethodCash, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MarkPaymentPaid failed: %v", err)
	}
	if paid.ReceiptNumber == nil || strings.TrimSpace(*paid.ReceiptNumber) == "" {
		t.Errorf("Expected a receipt number to be issued, got %v", paid.ReceiptNumber)
	}
}

func TestLockCourseQuery(t *testing.T) {
	tests := []struct {
		dialect ddl.Dialect
		want    string
	}{
		{ddl.Postgres{}, "SELECT max_students FROM courses WHERE id = $1 FOR UPDATE"},
		{ddl.MySQL{}, "SELECT max_students FROM courses WHERE id = ? FOR UPDATE"},
		{ddl.SQLite{}, "SELECT max_students FROM courses WHERE id = ?"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			s := New(nil, tt.dialect, nil)
			if got := s.lockCourseQuery(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConcurrentEnrollRespectsCapacity(t *testing.T) {
	s := newStore(t)
	const capacity, applicants = 3, 8
	course := seedCourse(t, s, nil, capacity)

	students := make([]*m.Student, applicants)
	for i := range students {
		students[i] = seedStudent(t, s)
	}

	var wg sync.WaitGroup
	errs := make([]error, applicants)
	for i, st := range students {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Enroll(context.Background(), course.ID, st.ID)
		}()
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case !dberr.IsViolation(err, dberr.KindRange):
			t.Errorf("Expected a capacity violation, got %v", err)
		}
	}
	if accepted != capacity {
		t.Errorf("Expected %d enrollments, got %d", capacity, accepted)
	}
	if n := countRows(t, s, "SELECT COUNT(*) FROM course_enrollments WHERE course_id = ?", course.ID); n != capacity {
		t.Errorf("Expected %d enrollment rows, got %d", capacity, n)
	}
}
