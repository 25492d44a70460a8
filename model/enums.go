package model

import "slices"

// Each enum type lists its closed value set once; the same list feeds the
// CHECK constraints in the migrations and the validator's "enum" rule.

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
	RoleParent  UserRole = "parent"
	RoleStaff   UserRole = "staff"
)

var userRoles = []UserRole{RoleAdmin, RoleTeacher, RoleStudent, RoleParent, RoleStaff}

func (v UserRole) Valid() bool { return slices.Contains(userRoles, v) }
func UserRoleValues() []string { return enumStrings(userRoles) }

// RecordStatus is the active/inactive flag shared by parents and teachers
type RecordStatus string

const (
	StatusActive   RecordStatus = "active"
	StatusInactive RecordStatus = "inactive"
)

var recordStatuses = []RecordStatus{StatusActive, StatusInactive}

func (v RecordStatus) Valid() bool { return slices.Contains(recordStatuses, v) }
func RecordStatusValues() []string { return enumStrings(recordStatuses) }

type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentGraduated StudentStatus = "graduated"
)

var studentStatuses = []StudentStatus{StudentActive, StudentInactive, StudentGraduated}

func (v StudentStatus) Valid() bool { return slices.Contains(studentStatuses, v) }
func StudentStatusValues() []string { return enumStrings(studentStatuses) }

type Relationship string

const (
	RelationshipFather   Relationship = "father"
	RelationshipMother   Relationship = "mother"
	RelationshipGuardian Relationship = "guardian"
)

var relationships = []Relationship{RelationshipFather, RelationshipMother, RelationshipGuardian}

func (v Relationship) Valid() bool { return slices.Contains(relationships, v) }
func RelationshipValues() []string { return enumStrings(relationships) }

type CourseStatus string

const (
	CourseActive    CourseStatus = "active"
	CourseInactive  CourseStatus = "inactive"
	CourseCompleted CourseStatus = "completed"
)

var courseStatuses = []CourseStatus{CourseActive, CourseInactive, CourseCompleted}

func (v CourseStatus) Valid() bool { return slices.Contains(courseStatuses, v) }
func CourseStatusValues() []string { return enumStrings(courseStatuses) }

type Semester string

const (
	SemesterFirst  Semester = "1"
	SemesterSecond Semester = "2"
	SemesterSummer Semester = "Summer"
)

var semesters = []Semester{SemesterFirst, SemesterSecond, SemesterSummer}

func (v Semester) Valid() bool { return slices.Contains(semesters, v) }
func SemesterValues() []string { return enumStrings(semesters) }

type ExamType string

const (
	ExamQuiz       ExamType = "quiz"
	ExamMidterm    ExamType = "midterm"
	ExamFinal      ExamType = "final"
	ExamAssignment ExamType = "assignment"
	ExamProject    ExamType = "project"
	ExamPractical  ExamType = "practical"
)

var examTypes = []ExamType{ExamQuiz, ExamMidterm, ExamFinal, ExamAssignment, ExamProject, ExamPractical}

func (v ExamType) Valid() bool { return slices.Contains(examTypes, v) }
func ExamTypeValues() []string { return enumStrings(examTypes) }

type LetterGrade string

const (
	GradeAPlus LetterGrade = "A+"
	GradeA     LetterGrade = "A"
	GradeBPlus LetterGrade = "B+"
	GradeB     LetterGrade = "B"
	GradeCPlus LetterGrade = "C+"
	GradeC     LetterGrade = "C"
	GradeD     LetterGrade = "D"
	GradeF     LetterGrade = "F"
)

var letterGrades = []LetterGrade{GradeAPlus, GradeA, GradeBPlus, GradeB, GradeCPlus, GradeC, GradeD, GradeF}

func (v LetterGrade) Valid() bool { return slices.Contains(letterGrades, v) }
func LetterGradeValues() []string { return enumStrings(letterGrades) }

type AssignmentStatus string

const (
	AssignmentActive AssignmentStatus = "active"
	AssignmentClosed AssignmentStatus = "closed"
	AssignmentDraft  AssignmentStatus = "draft"
)

var assignmentStatuses = []AssignmentStatus{AssignmentActive, AssignmentClosed, AssignmentDraft}

func (v AssignmentStatus) Valid() bool { return slices.Contains(assignmentStatuses, v) }
func AssignmentStatusValues() []string { return enumStrings(assignmentStatuses) }

type PaymentType string

const (
	PaymentTuition   PaymentType = "tuition"
	PaymentTransport PaymentType = "transport"
	PaymentLibrary   PaymentType = "library"
	PaymentSports    PaymentType = "sports"
	PaymentExam      PaymentType = "exam"
	PaymentHostel    PaymentType = "hostel"
	PaymentOther     PaymentType = "other"
)

var paymentTypes = []PaymentType{PaymentTuition, PaymentTransport, PaymentLibrary, PaymentSports, PaymentExam, PaymentHostel, PaymentOther}

func (v PaymentType) Valid() bool { return slices.Contains(paymentTypes, v) }
func PaymentTypeValues() []string { return enumStrings(paymentTypes) }

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

var paymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentOverdue, PaymentCancelled, PaymentRefunded}

func (v PaymentStatus) Valid() bool { return slices.Contains(paymentStatuses, v) }
func PaymentStatusValues() []string { return enumStrings(paymentStatuses) }

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank-transfer"
	MethodCheque       PaymentMethod = "cheque"
	MethodOnline       PaymentMethod = "online"
)

var paymentMethods = []PaymentMethod{MethodCash, MethodCard, MethodBankTransfer, MethodCheque, MethodOnline}

func (v PaymentMethod) Valid() bool { return slices.Contains(paymentMethods, v) }
func PaymentMethodValues() []string { return enumStrings(paymentMethods) }

type EventType string

const (
	EventAcademic EventType = "academic"
	EventSports   EventType = "sports"
	EventCultural EventType = "cultural"
	EventHoliday  EventType = "holiday"
	EventExam     EventType = "exam"
	EventMeeting  EventType = "meeting"
	EventOther    EventType = "other"
)

var eventTypes = []EventType{EventAcademic, EventSports, EventCultural, EventHoliday, EventExam, EventMeeting, EventOther}

func (v EventType) Valid() bool { return slices.Contains(eventTypes, v) }
func EventTypeValues() []string { return enumStrings(eventTypes) }

type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStudents Audience = "students"
	AudienceTeachers Audience = "teachers"
	AudienceParents  Audience = "parents"
	AudienceStaff    Audience = "staff"
)

var audiences = []Audience{AudienceAll, AudienceStudents, AudienceTeachers, AudienceParents, AudienceStaff}

func (v Audience) Valid() bool { return slices.Contains(audiences, v) }
func AudienceValues() []string { return enumStrings(audiences) }

type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

var eventStatuses = []EventStatus{EventScheduled, EventOngoing, EventCompleted, EventCancelled}

func (v EventStatus) Valid() bool { return slices.Contains(eventStatuses, v) }
func EventStatusValues() []string { return enumStrings(eventStatuses) }

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

var priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh}

func (v Priority) Valid() bool { return slices.Contains(priorities, v) }
func PriorityValues() []string { return enumStrings(priorities) }

type MessageCategory string

const (
	CategoryAcademic       MessageCategory = "academic"
	CategoryAdministrative MessageCategory = "administrative"
	CategoryGeneral        MessageCategory = "general"
	CategoryUrgent         MessageCategory = "urgent"
)

var messageCategories = []MessageCategory{CategoryAcademic, CategoryAdministrative, CategoryGeneral, CategoryUrgent}

func (v MessageCategory) Valid() bool { return slices.Contains(messageCategories, v) }
func MessageCategoryValues() []string { return enumStrings(messageCategories) }

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealSnack     MealType = "snack"
	MealDinner    MealType = "dinner"
)

var mealTypes = []MealType{MealBreakfast, MealLunch, MealSnack, MealDinner}

func (v MealType) Valid() bool { return slices.Contains(mealTypes, v) }
func MealTypeValues() []string { return enumStrings(mealTypes) }

type CantineStatus string

const (
	CantinePending   CantineStatus = "pending"
	CantineConfirmed CantineStatus = "confirmed"
	CantineServed    CantineStatus = "served"
	CantineCancelled CantineStatus = "cancelled"
)

var cantineStatuses = []CantineStatus{CantinePending, CantineConfirmed, CantineServed, CantineCancelled}

func (v CantineStatus) Valid() bool { return slices.Contains(cantineStatuses, v) }
func CantineStatusValues() []string { return enumStrings(cantineStatuses) }

type CantinePaymentStatus string

const (
	CantineUnpaid CantinePaymentStatus = "pending"
	CantinePaid   CantinePaymentStatus = "paid"
)

var cantinePaymentStatuses = []CantinePaymentStatus{CantineUnpaid, CantinePaid}

func (v CantinePaymentStatus) Valid() bool { return slices.Contains(cantinePaymentStatuses, v) }
func CantinePaymentStatusValues() []string { return enumStrings(cantinePaymentStatuses) }

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
