// Package model holds the school entities, their closed enum types and the
// derivations that belong to the data itself (grade percentages, receipt numbers).
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table names
const (
	TableUsers                 = "users"
	TableStudents              = "students"
	TableTeachers              = "teachers"
	TableParents               = "parents"
	TableCourses               = "courses"
	TableCourseEnrollments     = "course_enrollments"
	TableGrades                = "grades"
	TableAssignments           = "assignments"
	TableAssignmentAttachments = "assignment_attachments"
	TableAssignmentSubmissions = "assignment_submissions"
	TablePayments              = "payments"
	TableEvents                = "events"
	TableEventParticipants     = "event_participants"
	TableEventLevels           = "event_levels"
	TableMessages              = "messages"
	TableCantines              = "cantines"
	TableCantineItems          = "cantine_items"
)

// Timestamps are set by the store on insert and on every update
type Timestamps struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type User struct {
	ID    int64    `db:"id"`
	Name  string   `db:"name" validate:"required,max=255"`
	Email string   `db:"email" validate:"required,email,max=255"`
	Role  UserRole `db:"role" validate:"enum"`
	Phone *string  `db:"phone" validate:"omitempty,max=32"`
	Timestamps
}

type Student struct {
	ID            int64         `db:"id"`
	UserID        int64         `db:"user_id" validate:"required"`
	StudentNumber string        `db:"student_number" validate:"required,max=64"`
	Level         string        `db:"level" validate:"required,max=64"`
	ClassName     string        `db:"class_name" validate:"max=64"`
	DateOfBirth   *time.Time    `db:"date_of_birth"`
	Status        StudentStatus `db:"status" validate:"enum"`
	Timestamps
}

type Teacher struct {
	ID             int64        `db:"id"`
	UserID         int64        `db:"user_id" validate:"required"`
	EmployeeNumber string       `db:"employee_number" validate:"required,max=64"`
	Subject        string       `db:"subject" validate:"max=128"`
	HireDate       *time.Time   `db:"hire_date"`
	Status         RecordStatus `db:"status" validate:"enum"`
	Timestamps
}

type Parent struct {
	ID               int64        `db:"id"`
	UserID           int64        `db:"user_id" validate:"required"`
	Relationship     Relationship `db:"relationship" validate:"enum"`
	Phone            string       `db:"phone" validate:"max=32"`
	Address          string       `db:"address" validate:"max=255"`
	City             string       `db:"city" validate:"max=128"`
	PostalCode       string       `db:"postal_code" validate:"max=16"`
	Country          string       `db:"country" validate:"max=128"`
	Occupation       string       `db:"occupation" validate:"max=128"`
	EmergencyContact string       `db:"emergency_contact" validate:"max=255"`
	EmergencyPhone   string       `db:"emergency_phone" validate:"max=32"`
	Status           RecordStatus `db:"status" validate:"enum"`
	Timestamps
}

// ScheduleSlot is one weekly meeting of a course
type ScheduleSlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
	Room  string `json:"room,omitempty"`
}

type Course struct {
	ID           int64          `db:"id"`
	Code         string         `db:"code" validate:"required,max=32"`
	Name         string         `db:"name" validate:"required,max=255"`
	Description  string         `db:"description"`
	Level        string         `db:"level" validate:"required,max=64"`
	Subject      string         `db:"subject" validate:"required,max=128"`
	TeacherID    *int64         `db:"teacher_id"`
	Credits      int            `db:"credits" validate:"gte=0"`
	MaxStudents  int            `db:"max_students" validate:"gte=0"`
	Schedule     []ScheduleSlot `db:"schedule"`
	Status       CourseStatus   `db:"status" validate:"enum"`
	AcademicYear string         `db:"academic_year" validate:"required,max=16"`
	Semester     Semester       `db:"semester" validate:"enum"`
	// EnrolledStudents keeps enrollment order; stored in course_enrollments
	EnrolledStudents []int64 `db:"-"`
	Timestamps
}

type Grade struct {
	ID           int64            `db:"id"`
	StudentID    int64            `db:"student_id" validate:"required"`
	CourseID     int64            `db:"course_id" validate:"required"`
	TeacherID    int64            `db:"teacher_id" validate:"required"`
	ExamType     ExamType         `db:"exam_type" validate:"enum"`
	Marks        decimal.Decimal  `db:"marks"`
	TotalMarks   decimal.Decimal  `db:"total_marks"`
	Percentage   *decimal.Decimal `db:"percentage"`
	Grade        *LetterGrade     `db:"grade" validate:"omitempty,enum"`
	Remarks      string           `db:"remarks"`
	AcademicYear string           `db:"academic_year" validate:"required,max=16"`
	Semester     Semester         `db:"semester" validate:"enum"`
	ExamDate     time.Time        `db:"exam_date" validate:"required"`
	Timestamps
}

// Submission is one student's hand-in for an assignment
type Submission struct {
	StudentID   int64            `db:"student_id" json:"student_id" validate:"required"`
	FilePath    string           `db:"file_path" json:"file_path"`
	SubmittedAt time.Time        `db:"submitted_at" json:"submitted_at"`
	Marks       *decimal.Decimal `db:"marks" json:"marks,omitempty"`
}

type Assignment struct {
	ID          int64            `db:"id"`
	CourseID    int64            `db:"course_id" validate:"required"`
	TeacherID   int64            `db:"teacher_id" validate:"required"`
	Title       string           `db:"title" validate:"required,max=255"`
	Description string           `db:"description"`
	Subject     string           `db:"subject" validate:"required,max=128"`
	Level       string           `db:"level" validate:"required,max=64"`
	ClassName   string           `db:"class_name" validate:"max=64"`
	DueDate     time.Time        `db:"due_date" validate:"required"`
	TotalMarks  int              `db:"total_marks" validate:"gte=0"`
	Status      AssignmentStatus `db:"status" validate:"enum"`
	Attachments []string         `db:"-"`
	Submissions []Submission     `db:"-" validate:"dive"`
	Timestamps
}

type Payment struct {
	ID            int64           `db:"id"`
	StudentID     int64           `db:"student_id" validate:"required"`
	Type          PaymentType     `db:"type" validate:"enum"`
	Amount        decimal.Decimal `db:"amount"`
	Currency      string          `db:"currency" validate:"omitempty,len=3,uppercase"`
	Status        PaymentStatus   `db:"status" validate:"enum"`
	DueDate       time.Time       `db:"due_date" validate:"required"`
	PaidDate      *time.Time      `db:"paid_date"`
	PaymentMethod *PaymentMethod  `db:"payment_method" validate:"omitempty,enum"`
	ReceiptNumber *string         `db:"receipt_number" validate:"omitempty,max=64"`
	Description   string          `db:"description"`
	Timestamps
}

type Event struct {
	ID              int64       `db:"id"`
	Title           string      `db:"title" validate:"required,max=255"`
	Description     string      `db:"description"`
	Type            EventType   `db:"type" validate:"enum"`
	StartDate       time.Time   `db:"start_date" validate:"required"`
	EndDate         time.Time   `db:"end_date" validate:"required"`
	Location        string      `db:"location" validate:"max=255"`
	OrganizerID     *int64      `db:"organizer_id"`
	TargetAudience  Audience    `db:"target_audience" validate:"enum"`
	Status          EventStatus `db:"status" validate:"enum"`
	IsPublic        bool        `db:"is_public"`
	MaxParticipants *int        `db:"max_participants" validate:"omitempty,gt=0"`
	Participants    []int64     `db:"-"`
	Levels          []string    `db:"-"`
	Timestamps
}

type Message struct {
	ID          int64           `db:"id"`
	SenderID    int64           `db:"sender_id" validate:"required"`
	RecipientID int64           `db:"recipient_id" validate:"required"`
	Subject     string          `db:"subject" validate:"required,max=255"`
	Content     string          `db:"content" validate:"required"`
	IsRead      bool            `db:"is_read"`
	ReadAt      *time.Time      `db:"read_at"`
	Priority    Priority        `db:"priority" validate:"enum"`
	Category    MessageCategory `db:"category" validate:"enum"`
	Timestamps
}

// CantineItem is one line of a cafeteria order
type CantineItem struct {
	Name      string          `db:"name" json:"name" validate:"required,max=255"`
	Quantity  int             `db:"quantity" json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// Total is quantity times unit price
func (i CantineItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cantine struct {
	ID            int64                `db:"id"`
	StudentID     int64                `db:"student_id" validate:"required"`
	Date          time.Time            `db:"date"`
	MealType      MealType             `db:"meal_type" validate:"enum"`
	Items         []CantineItem        `db:"-" validate:"dive"`
	TotalAmount   decimal.Decimal      `db:"total_amount"`
	Status        CantineStatus        `db:"status" validate:"enum"`
	PaymentStatus CantinePaymentStatus `db:"payment_status" validate:"enum"`
	Timestamps
}
