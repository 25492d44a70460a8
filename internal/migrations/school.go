// Package migrations is the ordered list of school schema migrations.
// Referenced tables are always created by an earlier step than the tables
// that reference them; Validate enforces this.
package migrations

import (
	"github.com/tordrt/schoolschema/internal/ddl"
	m "github.com/tordrt/schoolschema/model"
)

// Migration is one versioned step creating a group of tables
type Migration struct {
	Version int64
	Name    string
	Tables  []*ddl.Table
}

// All returns the school migrations in application order
func All() []Migration {
	return []Migration{
		{Version: 2024_01_01_000001, Name: "create_users_table", Tables: []*ddl.Table{users()}},
		{Version: 2024_01_01_000002, Name: "create_students_and_teachers_tables", Tables: []*ddl.Table{students(), teachers()}},
		{Version: 2024_01_01_000003, Name: "create_parents_table", Tables: []*ddl.Table{parents()}},
		{Version: 2024_01_01_000004, Name: "create_courses_table", Tables: []*ddl.Table{courses(), courseEnrollments()}},
		{Version: 2024_01_01_000005, Name: "create_grades_table", Tables: []*ddl.Table{grades()}},
		{Version: 2024_01_01_000006, Name: "create_assignments_table", Tables: []*ddl.Table{assignments(), assignmentAttachments(), assignmentSubmissions()}},
		{Version: 2024_01_01_000007, Name: "create_payments_table", Tables: []*ddl.Table{payments()}},
		{Version: 2024_01_01_000008, Name: "create_events_table", Tables: []*ddl.Table{events(), eventParticipants(), eventLevels()}},
		{Version: 2024_01_01_000009, Name: "create_messages_table", Tables: []*ddl.Table{messages()}},
		{Version: 2024_01_01_000010, Name: "create_cantines_table", Tables: []*ddl.Table{cantines(), cantineItems()}},
	}
}

func users() *ddl.Table {
	return ddl.NewTable(m.TableUsers, func(t *ddl.Table) {
		t.ID()
		t.String("name", 255)
		t.String("email", 255).Unique()
		t.Enum("role", m.UserRoleValues()...).Default(string(m.RoleStudent))
		t.String("phone", 32).Nullable()
		t.Timestamps()
	})
}

func students() *ddl.Table {
	return ddl.NewTable(m.TableStudents, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("user_id", m.TableUsers).CascadeOnDelete()
		t.String("student_number", 64).Unique()
		t.String("level", 64)
		t.String("class_name", 64).Default("")
		t.Date("date_of_birth").Nullable()
		t.Enum("status", m.StudentStatusValues()...).Default(string(m.StudentActive))
		t.Timestamps()
		t.Index("level", "class_name")
	})
}

func teachers() *ddl.Table {
	return ddl.NewTable(m.TableTeachers, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("user_id", m.TableUsers).CascadeOnDelete()
		t.String("employee_number", 64).Unique()
		t.String("subject", 128).Default("")
		t.Date("hire_date").Nullable()
		t.Enum("status", m.RecordStatusValues()...).Default(string(m.StatusActive))
		t.Timestamps()
	})
}

func parents() *ddl.Table {
	return ddl.NewTable(m.TableParents, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("user_id", m.TableUsers).CascadeOnDelete()
		t.Enum("relationship", m.RelationshipValues()...)
		t.String("phone", 32).Default("")
		t.String("address", 255).Default("")
		t.String("city", 128).Default("")
		t.String("postal_code", 16).Default("")
		t.String("country", 128).Default("")
		t.String("occupation", 128).Default("")
		t.String("emergency_contact", 255).Default("")
		t.String("emergency_phone", 32).Default("")
		t.Enum("status", m.RecordStatusValues()...).Default(string(m.StatusActive))
		t.Timestamps()
	})
}

func courses() *ddl.Table {
	return ddl.NewTable(m.TableCourses, func(t *ddl.Table) {
		t.ID()
		t.String("code", 32).Unique()
		t.String("name", 255)
		t.Text("description").Nullable()
		t.String("level", 64)
		t.String("subject", 128)
		t.ForeignID("teacher_id", m.TableTeachers).NullOnDelete()
		t.Integer("credits").Default(0)
		t.Integer("max_students").Default(0)
		t.Text("schedule").Nullable()
		t.Enum("status", m.CourseStatusValues()...).Default(string(m.CourseActive))
		t.String("academic_year", 16)
		t.Enum("semester", m.SemesterValues()...)
		t.Timestamps()
		t.Index("academic_year", "semester")
		t.Index("level", "subject")
	})
}

func courseEnrollments() *ddl.Table {
	return ddl.NewTable(m.TableCourseEnrollments, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("course_id", m.TableCourses).CascadeOnDelete()
		t.ForeignID("student_id", m.TableStudents).CascadeOnDelete()
		t.Integer("position")
		t.Timestamps()
		t.UniqueIndex("course_id", "student_id")
		t.Index("student_id")
	})
}

func grades() *ddl.Table {
	return ddl.NewTable(m.TableGrades, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("student_id", m.TableStudents).CascadeOnDelete()
		t.ForeignID("course_id", m.TableCourses).CascadeOnDelete()
		t.Enum("exam_type", m.ExamTypeValues()...)
		t.Decimal("marks", 10, 2)
		t.Decimal("total_marks", 10, 2)
		t.Decimal("percentage", 5, 2).Nullable()
		t.Enum("grade", m.LetterGradeValues()...).Nullable()
		t.Text("remarks").Nullable()
		t.ForeignID("teacher_id", m.TableTeachers).CascadeOnDelete()
		t.String("academic_year", 16)
		t.Enum("semester", m.SemesterValues()...)
		t.Date("exam_date")
		t.Timestamps()
		t.Index("student_id", "course_id")
		t.Index("academic_year", "semester")
	})
}

func assignments() *ddl.Table {
	return ddl.NewTable(m.TableAssignments, func(t *ddl.Table) {
		t.ID()
		t.String("title", 255)
		t.Text("description").Nullable()
		t.ForeignID("course_id", m.TableCourses).CascadeOnDelete()
		t.ForeignID("teacher_id", m.TableTeachers).CascadeOnDelete()
		t.String("subject", 128)
		t.String("level", 64)
		t.String("class_name", 64).Default("")
		t.Timestamp("due_date")
		t.Integer("total_marks").Default(100)
		t.Enum("status", m.AssignmentStatusValues()...).Default(string(m.AssignmentActive))
		t.Timestamps()
		t.Index("due_date")
		t.Index("course_id", "status")
	})
}

func assignmentAttachments() *ddl.Table {
	return ddl.NewTable(m.TableAssignmentAttachments, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("assignment_id", m.TableAssignments).CascadeOnDelete()
		t.Integer("position")
		t.String("file_path", 512)
		t.Timestamps()
		t.Index("assignment_id", "position")
	})
}

func assignmentSubmissions() *ddl.Table {
	return ddl.NewTable(m.TableAssignmentSubmissions, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("assignment_id", m.TableAssignments).CascadeOnDelete()
		t.ForeignID("student_id", m.TableStudents).CascadeOnDelete()
		t.Integer("position")
		t.String("file_path", 512).Default("")
		t.Timestamp("submitted_at").UseCurrent()
		t.Decimal("marks", 10, 2).Nullable()
		t.Timestamps()
		t.UniqueIndex("assignment_id", "student_id")
		t.Index("student_id")
	})
}

func payments() *ddl.Table {
	return ddl.NewTable(m.TablePayments, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("student_id", m.TableStudents).CascadeOnDelete()
		t.Enum("type", m.PaymentTypeValues()...)
		t.Decimal("amount", 10, 2)
		t.Char("currency", 3).Default("USD")
		t.Enum("status", m.PaymentStatusValues()...).Default(string(m.PaymentPending))
		t.Date("due_date")
		t.Date("paid_date").Nullable()
		t.Enum("payment_method", m.PaymentMethodValues()...).Nullable()
		t.String("receipt_number", 64).Nullable().Unique()
		t.Text("description").Nullable()
		t.Timestamps()
		t.Index("due_date")
		t.Index("student_id", "status")
		t.Index("paid_date")
	})
}

func events() *ddl.Table {
	return ddl.NewTable(m.TableEvents, func(t *ddl.Table) {
		t.ID()
		t.String("title", 255)
		t.Text("description").Nullable()
		t.Enum("type", m.EventTypeValues()...)
		t.Timestamp("start_date")
		t.Timestamp("end_date")
		t.String("location", 255).Default("")
		t.ForeignID("organizer_id", m.TableUsers).NullOnDelete()
		t.Enum("target_audience", m.AudienceValues()...).Default(string(m.AudienceAll))
		t.Enum("status", m.EventStatusValues()...).Default(string(m.EventScheduled))
		t.Boolean("is_public").Default(true)
		t.Integer("max_participants").Nullable()
		t.Timestamps()
		t.Index("type", "status")
		t.Index("start_date")
	})
}

func eventParticipants() *ddl.Table {
	return ddl.NewTable(m.TableEventParticipants, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("event_id", m.TableEvents).CascadeOnDelete()
		t.ForeignID("user_id", m.TableUsers).CascadeOnDelete()
		t.Integer("position")
		t.Timestamps()
		t.UniqueIndex("event_id", "user_id")
		t.Index("user_id")
	})
}

func eventLevels() *ddl.Table {
	return ddl.NewTable(m.TableEventLevels, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("event_id", m.TableEvents).CascadeOnDelete()
		t.Integer("position")
		t.String("level", 64)
		t.Timestamps()
		t.Index("event_id", "position")
	})
}

func messages() *ddl.Table {
	return ddl.NewTable(m.TableMessages, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("sender_id", m.TableUsers).CascadeOnDelete()
		t.ForeignID("recipient_id", m.TableUsers).CascadeOnDelete()
		t.String("subject", 255)
		t.Text("content")
		t.Boolean("is_read").Default(false)
		t.Timestamp("read_at").Nullable()
		t.Enum("priority", m.PriorityValues()...).Default(string(m.PriorityNormal))
		t.Enum("category", m.MessageCategoryValues()...).Default(string(m.CategoryGeneral))
		t.Timestamps()
		t.Index("recipient_id", "is_read")
		t.Index("sender_id")
	})
}

func cantines() *ddl.Table {
	return ddl.NewTable(m.TableCantines, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("student_id", m.TableStudents).CascadeOnDelete()
		t.Date("date").UseCurrent()
		t.Enum("meal_type", m.MealTypeValues()...)
		t.Decimal("total_amount", 10, 2)
		t.Enum("status", m.CantineStatusValues()...).Default(string(m.CantinePending))
		t.Enum("payment_status", m.CantinePaymentStatusValues()...).Default(string(m.CantineUnpaid))
		t.Timestamps()
		t.Index("student_id", "date")
		t.Index("date", "meal_type")
	})
}

func cantineItems() *ddl.Table {
	return ddl.NewTable(m.TableCantineItems, func(t *ddl.Table) {
		t.ID()
		t.ForeignID("cantine_id", m.TableCantines).CascadeOnDelete()
		t.Integer("position")
		t.String("name", 255)
		t.Integer("quantity").Default(1)
		t.Decimal("unit_price", 10, 2)
		t.Timestamps()
		t.Index("cantine_id", "position")
	})
}
