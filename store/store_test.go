package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/internal/dbtest"
	m "github.com/tordrt/schoolschema/model"
)

var seq int

func newStore(t *testing.T) *Store {
	t.Helper()
	conn := dbtest.Migrated(t)
	return New(conn.DB, conn.Dialect, nil)
}

func unique(prefix string) string {
	seq++
	return fmt.Sprintf("%s-%d", prefix, seq)
}

func seedUser(t *testing.T, s *Store, role m.UserRole) *m.User {
	t.Helper()
	u := &m.User{Name: "Ada Lovelace", Email: unique("ada") + "@school.test", Role: role}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func seedStudent(t *testing.T, s *Store) *m.Student {
	t.Helper()
	u := seedUser(t, s, m.RoleStudent)
	st := &m.Student{UserID: u.ID, StudentNumber: unique("S"), Level: "Grade 10", ClassName: "10A"}
	if err := s.CreateStudent(context.Background(), st); err != nil {
		t.Fatalf("CreateStudent failed: %v", err)
	}
	return st
}

func seedTeacher(t *testing.T, s *Store) *m.Teacher {
	t.Helper()
	u := seedUser(t, s, m.RoleTeacher)
	tc := &m.Teacher{UserID: u.ID, EmployeeNumber: unique("E"), Subject: "Mathematics"}
	if err := s.CreateTeacher(context.Background(), tc); err != nil {
		t.Fatalf("CreateTeacher failed: %v", err)
	}
	return tc
}

func seedCourse(t *testing.T, s *Store, teacherID *int64, maxStudents int) *m.Course {
	t.Helper()
	c := &m.Course{
		Code:         unique("MATH"),
		Name:         "Algebra",
		Level:        "Grade 10",
		Subject:      "Mathematics",
		TeacherID:    teacherID,
		Credits:      3,
		MaxStudents:  maxStudents,
		AcademicYear: "2024-2025",
		Semester:     m.SemesterFirst,
		Schedule:     []m.ScheduleSlot{{Day: "monday", Start: "09:00", End: "10:30", Room: "B12"}},
	}
	if err := s.CreateCourse(context.Background(), c); err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}
	return c
}

func newPayment(studentID int64) *m.Payment {
	return &m.Payment{
		StudentID: studentID,
		Type:      m.PaymentTuition,
		Amount:    decimal.RequireFromString("1250.50"),
		DueDate:   time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func violation(t *testing.T, err error, kind dberr.Kind) *dberr.ConstraintViolation {
	t.Helper()
	var v *dberr.ConstraintViolation
	if !errors.As(err, &v) {
		t.Fatalf("Expected *dberr.ConstraintViolation, got %T: %v", err, err)
	}
	if v.Kind != kind {
		t.Fatalf("Expected kind %s, got %s: %v", kind, v.Kind, v)
	}
	return v
}

func requireNotFound(t *testing.T, err error, what string) {
	t.Helper()
	if !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("Expected %s to be gone, got %v", what, err)
	}
}

func TestCreateUserDefaults(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u := &m.User{Name: "Grace Hopper", Email: "grace@school.test"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Role != m.RoleStudent {
		t.Errorf("Expected default role student, got %s", got.Role)
	}
	if got.Email != "grace@school.test" {
		t.Errorf("Expected email to round trip, got %s", got.Email)
	}
}

func TestDeleteStudentCascades(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	teacher := seedTeacher(t, s)
	student := seedStudent(t, s)
	course := seedCourse(t, s, &teacher.ID, 0)

	grade := &m.Grade{
		StudentID: student.ID, CourseID: course.ID, TeacherID: teacher.ID,
		ExamType: m.ExamMidterm, Marks: decimal.NewFromInt(42), TotalMarks: decimal.NewFromInt(50),
		AcademicYear: "2024-2025", Semester: m.SemesterFirst, ExamDate: time.Now(),
	}
	if err := s.CreateGrade(ctx, grade); err != nil {
		t.Fatalf("CreateGrade failed: %v", err)
	}
	payment := newPayment(student.ID)
	if err := s.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	order := &m.Cantine{StudentID: student.ID, MealType: m.MealLunch,
		Items: []m.CantineItem{{Name: "Soup", Quantity: 1, UnitPrice: decimal.RequireFromString("3.50")}}}
	if err := s.CreateCantine(ctx, order); err != nil {
		t.Fatalf("CreateCantine failed: %v", err)
	}

	if err := s.DeleteStudent(ctx, student.ID); err != nil {
		t.Fatalf("DeleteStudent failed: %v", err)
	}

	_, err := s.GetGrade(ctx, grade.ID)
	requireNotFound(t, err, "grade")
	_, err = s.GetPayment(ctx, payment.ID)
	requireNotFound(t, err, "payment")
	_, err = s.GetCantine(ctx, order.ID)
	requireNotFound(t, err, "cantine")

	var items int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM cantine_items").Scan(&items); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if items != 0 {
		t.Errorf("Expected cantine items to be removed, %d left", items)
	}
}

func TestDeleteUserCascadesToParent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u := seedUser(t, s, m.RoleParent)
	p := &m.Parent{UserID: u.ID, Relationship: m.RelationshipGuardian, City: "Lyon"}
	if err := s.CreateParent(ctx, p); err != nil {
		t.Fatalf("CreateParent failed: %v", err)
	}
	if p.Status != m.StatusActive {
		t.Errorf("Expected default status active, got %s", p.Status)
	}

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	_, err := s.GetParent(ctx, p.ID)
	requireNotFound(t, err, "parent")
}

func TestDeleteTeacherNullifiesCourse(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	teacher := seedTeacher(t, s)
	course := seedCourse(t, s, &teacher.ID, 0)

	if err := s.DeleteTeacher(ctx, teacher.ID); err != nil {
		t.Fatalf("DeleteTeacher failed: %v", err)
	}
	got, err := s.GetCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("Expected course to survive teacher deletion: %v", err)
	}
	if got.TeacherID != nil {
		t.Errorf("Expected teacher_id to be NULL, got %d", *got.TeacherID)
	}
}

func TestDeleteUserNullifiesOrganizer(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	organizer := seedUser(t, s, m.RoleStaff)
	start := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	e := &m.Event{
		Title: "Open day", Type: m.EventAcademic,
		StartDate: start, EndDate: start.Add(6 * time.Hour),
		OrganizerID: &organizer.ID, IsPublic: true,
	}
	if err := s.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if err := s.DeleteUser(ctx, organizer.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	got, err := s.GetEvent(ctx, e.ID)
	if err != nil {
		t.Fatalf("Expected event to survive organizer deletion: %v", err)
	}
	if got.OrganizerID != nil {
		t.Errorf("Expected organizer_id to be NULL, got %d", *got.OrganizerID)
	}
	if !got.IsPublic {
		t.Error("Expected is_public to round trip")
	}
}

func TestEnumRejectedBeforeWrite(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u := &m.User{Name: "Mallory", Email: "mallory@school.test", Role: "superuser"}
	v := violation(t, s.CreateUser(ctx, u), dberr.KindEnum)
	if v.Table != m.TableUsers || v.Column != "role" {
		t.Errorf("Expected users.role, got %s.%s", v.Table, v.Column)
	}
	if v.Constraint != "chk_users_role" {
		t.Errorf("Expected constraint chk_users_role, got %q", v.Constraint)
	}
	if len(v.Allowed) != len(m.UserRoleValues()) {
		t.Errorf("Expected allowed values %v, got %v", m.UserRoleValues(), v.Allowed)
	}
}

func TestEnumRejectedByDatabase(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := s.stamp()

	_, err := s.insert(ctx, s.db, m.TableUsers, []field{
		{col: "name", val: "Mallory"},
		{col: "email", val: "mallory@school.test"},
		{col: "role", val: "superuser"},
		{col: "created_at", val: now},
		{col: "updated_at", val: now},
	})
	v := violation(t, err, dberr.KindEnum)
	if v.Table != m.TableUsers || v.Column != "role" {
		t.Errorf("Expected users.role, got %s.%s", v.Table, v.Column)
	}
	if v.Value != "superuser" {
		t.Errorf("Expected offending value superuser, got %v", v.Value)
	}
}

func TestLifecycleRejectsUnknownStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := seedCourse(t, s, nil, 0)

	v := violation(t, s.SetCourseStatus(ctx, course.ID, "archived"), dberr.KindEnum)
	if v.Column != "status" {
		t.Errorf("Expected column status, got %s", v.Column)
	}
	if err := s.SetCourseStatus(ctx, course.ID, m.CourseCompleted); err != nil {
		t.Fatalf("SetCourseStatus failed: %v", err)
	}
	requireNotFound(t, s.SetCourseStatus(ctx, course.ID+100, m.CourseInactive), "missing course")
}

func TestDuplicateCourseCode(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first := seedCourse(t, s, nil, 0)
	dup := &m.Course{
		Code: first.Code, Name: "Algebra II", Level: "Grade 11", Subject: "Mathematics",
		AcademicYear: "2024-2025", Semester: m.SemesterSecond,
	}
	v := violation(t, s.CreateCourse(ctx, dup), dberr.KindUnique)
	if v.Table != m.TableCourses || v.Column != "code" {
		t.Errorf("Expected courses.code, got %s.%s", v.Table, v.Column)
	}
	if v.Constraint != "uq_courses_code" {
		t.Errorf("Expected constraint uq_courses_code, got %q", v.Constraint)
	}
}

func TestReceiptNumberUniqueWhenPresent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	student := seedStudent(t, s)

	for range 2 {
		if err := s.CreatePayment(ctx, newPayment(student.ID)); err != nil {
			t.Fatalf("Expected payments without receipt to coexist: %v", err)
		}
	}

	receipt := "RCPT-0001"
	p := newPayment(student.ID)
	p.ReceiptNumber = &receipt
	if err := s.CreatePayment(ctx, p); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	dup := newPayment(student.ID)
	dup.ReceiptNumber = &receipt
	v := violation(t, s.CreatePayment(ctx, dup), dberr.KindUnique)
	if v.Column != "receipt_number" {
		t.Errorf("Expected column receipt_number, got %s", v.Column)
	}
}

func TestMissingReferenceNamesColumn(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	student := seedStudent(t, s)

	g := &m.Grade{
		StudentID: student.ID, CourseID: 9999, TeacherID: 9999,
		ExamType: m.ExamQuiz, Marks: decimal.NewFromInt(5), TotalMarks: decimal.NewFromInt(10),
		AcademicYear: "2024-2025", Semester: m.SemesterSummer, ExamDate: time.Now(),
	}
	v := violation(t, s.CreateGrade(ctx, g), dberr.KindForeignKey)
	if v.Table != m.TableGrades || v.Column != "course_id" {
		t.Errorf("Expected grades.course_id, got %s.%s", v.Table, v.Column)
	}
	if v.Value != int64(9999) {
		t.Errorf("Expected offending value 9999, got %v (%T)", v.Value, v.Value)
	}
}

func TestDecimalPrecision(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	student := seedStudent(t, s)

	tests := []struct {
		name   string
		amount string
	}{
		{"too many decimal places", "10.005"},
		{"too many integer digits", "123456789.00"},
		{"negative", "-1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPayment(student.ID)
			p.Amount = decimal.RequireFromString(tt.amount)
			v := violation(t, s.CreatePayment(ctx, p), dberr.KindRange)
			if v.Column != "amount" {
				t.Errorf("Expected column amount, got %s", v.Column)
			}
		})
	}

	p := newPayment(student.ID)
	p.Amount = decimal.RequireFromString("99999999.99")
	if err := s.CreatePayment(ctx, p); err != nil {
		t.Fatalf("Expected largest decimal(10,2) to fit: %v", err)
	}
	got, err := s.GetPayment(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPayment failed: %v", err)
	}
	if !got.Amount.Equal(p.Amount) {
		t.Errorf("Expected amount %s, got %s", p.Amount, got.Amount)
	}
	if got.Currency != "USD" || got.Status != m.PaymentPending {
		t.Errorf("Expected USD/pending defaults, got %s/%s", got.Currency, got.Status)
	}
}

func TestGradeDerivation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	teacher := seedTeacher(t, s)
	student := seedStudent(t, s)
	course := seedCourse(t, s, &teacher.ID, 0)

	g := &m.Grade{
		StudentID: student.ID, CourseID: course.ID, TeacherID: teacher.ID,
		ExamType: m.ExamFinal, Marks: decimal.RequireFromString("37.5"), TotalMarks: decimal.NewFromInt(50),
		AcademicYear: "2024-2025", Semester: m.SemesterSecond, ExamDate: time.Now(),
	}
	if err := s.CreateGrade(ctx, g); err != nil {
		t.Fatalf("CreateGrade failed: %v", err)
	}

	got, err := s.GetGrade(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGrade failed: %v", err)
	}
	if got.Percentage == nil || !got.Percentage.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected percentage 75, got %v", got.Percentage)
	}
	if got.Grade == nil || *got.Grade != m.GradeBPlus {
		t.Errorf("Expected grade B+, got %v", got.Grade)
	}

	zero := *g
	zero.TotalMarks = decimal.Zero
	v := violation(t, s.CreateGrade(ctx, &zero), dberr.KindRange)
	if v.Column != "total_marks" {
		t.Errorf("Expected column total_marks, got %s", v.Column)
	}
}

func TestMarkPaymentPaid(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	student := seedStudent(t, s)

	p := newPayment(student.ID)
	if err := s.CreatePayment(ctx, p); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	paidOn := time.Date(2024, 8, 28, 15, 30, 0, 0, time.UTC)
	got, err := s.MarkPaymentPaid(ctx, p.ID, m.MethodBankTransfer, paidOn)
	if err != nil {
		t.Fatalf("MarkPaymentPaid failed: %v", err)
	}
	if got.Status != m.PaymentPaid {
		t.Errorf("Expected status paid, got %s", got.Status)
	}
	if got.PaymentMethod == nil || *got.PaymentMethod != m.MethodBankTransfer {
		t.Errorf("Expected method bank-transfer, got %v", got.PaymentMethod)
	}
	if got.PaidDate == nil || !got.PaidDate.Equal(time.Date(2024, 8, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected paid date 2024-08-28, got %v", got.PaidDate)
	}
	if got.ReceiptNumber == nil || len(*got.ReceiptNumber) != len("RCPT-")+16 {
		t.Fatalf("Expected a generated receipt number, got %v", got.ReceiptNumber)
	}

	again, err := s.MarkPaymentPaid(ctx, p.ID, m.MethodCash, paidOn)
	if err != nil {
		t.Fatalf("second MarkPaymentPaid failed: %v", err)
	}
	if *again.ReceiptNumber != *got.ReceiptNumber {
		t.Errorf("Expected receipt %s to be kept, got %s", *got.ReceiptNumber, *again.ReceiptNumber)
	}

	violation(t, mustErr(s.MarkPaymentPaid(ctx, p.ID, "barter", paidOn)), dberr.KindEnum)
}

func mustErr[T any](_ T, err error) error {
	return err
}

func TestMarkMessageRead(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	from := seedUser(t, s, m.RoleTeacher)
	to := seedUser(t, s, m.RoleParent)
	msg := &m.Message{SenderID: from.ID, RecipientID: to.ID, Subject: "Trip", Content: "Permission slip due Friday"}
	if err := s.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
	if msg.Priority != m.PriorityNormal || msg.Category != m.CategoryGeneral {
		t.Errorf("Expected normal/general defaults, got %s/%s", msg.Priority, msg.Category)
	}

	read, err := s.MarkMessageRead(ctx, msg.ID)
	if err != nil {
		t.Fatalf("MarkMessageRead failed: %v", err)
	}
	if !read.IsRead || read.ReadAt == nil {
		t.Fatalf("Expected message to be read with read_at, got %+v", read)
	}

	again, err := s.MarkMessageRead(ctx, msg.ID)
	if err != nil {
		t.Fatalf("second MarkMessageRead failed: %v", err)
	}
	if !again.ReadAt.Equal(*read.ReadAt) {
		t.Errorf("Expected first read_at %v to be kept, got %v", read.ReadAt, again.ReadAt)
	}
}

func TestEventDates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	start := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	e := &m.Event{Title: "Winter break", Type: m.EventHoliday, StartDate: start, EndDate: start.Add(-time.Hour)}
	v := violation(t, s.CreateEvent(ctx, e), dberr.KindRange)
	if v.Column != "end_date" {
		t.Errorf("Expected column end_date, got %s", v.Column)
	}

	e.EndDate = start
	e.Levels = []string{"Grade 9", "Grade 10"}
	if err := s.CreateEvent(ctx, e); err != nil {
		t.Fatalf("Expected a zero-length event to be accepted: %v", err)
	}
	if err := s.SetEventStatus(ctx, e.ID, m.EventCancelled); err != nil {
		t.Fatalf("SetEventStatus failed: %v", err)
	}
	got, err := s.GetEvent(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if got.Status != m.EventCancelled || got.TargetAudience != m.AudienceAll {
		t.Errorf("Expected cancelled/all, got %s/%s", got.Status, got.TargetAudience)
	}
	if len(got.Levels) != 2 || got.Levels[0] != "Grade 9" {
		t.Errorf("Expected levels in order, got %v", got.Levels)
	}
}

func TestEnrollKeepsOrderAndCapacity(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a, b, c := seedStudent(t, s), seedStudent(t, s), seedStudent(t, s)
	course := seedCourse(t, s, nil, 2)

	for _, st := range []*m.Student{b, a} {
		if err := s.Enroll(ctx, course.ID, st.ID); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}
	}
	violation(t, s.Enroll(ctx, course.ID, c.ID), dberr.KindRange)

	got, err := s.GetCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourse failed: %v", err)
	}
	if len(got.EnrolledStudents) != 2 || got.EnrolledStudents[0] != b.ID || got.EnrolledStudents[1] != a.ID {
		t.Errorf("Expected enrollment order [%d %d], got %v", b.ID, a.ID, got.EnrolledStudents)
	}
	if len(got.Schedule) != 1 || got.Schedule[0].Room != "B12" {
		t.Errorf("Expected schedule to round trip, got %+v", got.Schedule)
	}

	open := seedCourse(t, s, nil, 0)
	if err := s.Enroll(ctx, open.ID, a.ID); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	violation(t, s.Enroll(ctx, open.ID, a.ID), dberr.KindUnique)
	requireNotFound(t, s.Enroll(ctx, open.ID+100, a.ID), "missing course")
}

func TestCantineTotalDefaultsToItems(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	student := seedStudent(t, s)

	order := &m.Cantine{
		StudentID: student.ID,
		MealType:  m.MealLunch,
		Items: []m.CantineItem{
			{Name: "Pasta", Quantity: 2, UnitPrice: decimal.RequireFromString("4.25")},
			{Name: "Juice", Quantity: 1, UnitPrice: decimal.RequireFromString("1.50")},
		},
	}
	if err := s.CreateCantine(ctx, order); err != nil {
		t.Fatalf("CreateCantine failed: %v", err)
	}
	if err := s.MarkCantinePaid(ctx, order.ID); err != nil {
		t.Fatalf("MarkCantinePaid failed: %v", err)
	}
	if err := s.SetCantineStatus(ctx, order.ID, m.CantineServed); err != nil {
		t.Fatalf("SetCantineStatus failed: %v", err)
	}

	got, err := s.GetCantine(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetCantine failed: %v", err)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("Expected total 10.00, got %s", got.TotalAmount)
	}
	if got.PaymentStatus != m.CantinePaid || got.Status != m.CantineServed {
		t.Errorf("Expected paid/served, got %s/%s", got.PaymentStatus, got.Status)
	}
	if len(got.Items) != 2 || got.Items[0].Name != "Pasta" {
		t.Errorf("Expected items in order, got %+v", got.Items)
	}

	bad := &m.Cantine{StudentID: student.ID, MealType: m.MealSnack,
		Items: []m.CantineItem{{Name: "Apple", Quantity: 0, UnitPrice: decimal.NewFromInt(1)}}}
	v := violation(t, s.CreateCantine(ctx, bad), dberr.KindRange)
	if v.Table != m.TableCantineItems || v.Column != "quantity" {
		t.Errorf("Expected cantine_items.quantity, got %s.%s", v.Table, v.Column)
	}
}

func TestBlobs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	teacher := seedTeacher(t, s)
	student := seedStudent(t, s)
	course := seedCourse(t, s, &teacher.ID, 0)

	a := &m.Assignment{
		CourseID: course.ID, TeacherID: teacher.ID, Title: "Essay", Subject: "Mathematics",
		Level: "Grade 10", DueDate: time.Now().Add(72 * time.Hour),
		Attachments: []string{"brief.pdf", "rubric.pdf"},
		Submissions: []m.Submission{{StudentID: student.ID, FilePath: "essay.docx"}},
	}
	if err := s.CreateAssignment(ctx, a); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	blobs, err := s.Blobs(ctx, m.TableAssignments, a.ID)
	if err != nil {
		t.Fatalf("Blobs failed: %v", err)
	}
	if blobs["attachments"] != `["brief.pdf","rubric.pdf"]` {
		t.Errorf("Unexpected attachments blob: %s", blobs["attachments"])
	}
	var subs []m.Submission
	if err := sonic.UnmarshalString(blobs["submissions"], &subs); err != nil {
		t.Fatalf("submissions blob is not JSON: %v", err)
	}
	if len(subs) != 1 || subs[0].StudentID != student.ID {
		t.Errorf("Unexpected submissions blob: %s", blobs["submissions"])
	}

	blobs, err = s.Blobs(ctx, m.TableCourses, course.ID)
	if err != nil {
		t.Fatalf("Blobs failed: %v", err)
	}
	if blobs["enrolled_students"] != "[]" {
		t.Errorf("Expected empty enrolled_students blob, got %s", blobs["enrolled_students"])
	}

	if _, err := s.Blobs(ctx, m.TableUsers, 1); err == nil {
		t.Error("Expected an error for a table without list columns")
	}
}
